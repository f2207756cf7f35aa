package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

type Index interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	Search(ctx context.Context, q string, from, size int) (int64, []models.Product, error)
}

// SQLSearcher is satisfied by the GORM repository.
type SQLSearcher interface {
	SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error)
}

// DB searches with SQL and has nothing to keep in sync.
type DB struct {
	Repo SQLSearcher
}

func (d DB) IndexProduct(context.Context, *models.Product) error { return nil }
func (d DB) DeleteProduct(context.Context, string) error         { return nil }

func (d DB) Search(ctx context.Context, q string, from, size int) (int64, []models.Product, error) {
	return d.Repo.SearchProducts(ctx, q, from, size)
}

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

type Elastic struct {
	client *elasticsearch.Client
	index  string
}

func NewElastic(cfg Config) (*Elastic, error) {
	if cfg.URL == "" {
		return nil, errors.New("elasticsearch: empty url")
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: new client: %w", err)
	}
	return &Elastic{client: client, index: cfg.Index}, nil
}

// Ping checks the cluster answers; startup falls back to SQL search when it
// does not.
func (e *Elastic) Ping(ctx context.Context) error {
	res, err := e.client.Info(e.client.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("info", res.Status(), res.Body)
	}
	return nil
}

type document struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`
	Featured    bool   `json:"featured"`
	CategoryID  string `json:"category_id,omitempty"`
}

func toDocument(p *models.Product) document {
	d := document{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Price:       p.Price.StringFixed(2),
		Stock:       p.Stock,
		Featured:    p.Featured,
	}
	if p.CategoryID != nil {
		d.CategoryID = *p.CategoryID
	}
	return d
}

func (d document) toProduct() models.Product {
	p := models.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		Stock:       d.Stock,
		Featured:    d.Featured,
	}
	if price, err := decimal.NewFromString(d.Price); err == nil {
		p.Price = price
	}
	if d.CategoryID != "" {
		id := d.CategoryID
		p.CategoryID = &id
	}
	return p
}

func (e *Elastic) IndexProduct(ctx context.Context, p *models.Product) error {
	body, err := json.Marshal(toDocument(p))
	if err != nil {
		return fmt.Errorf("elasticsearch: marshal: %w", err)
	}

	res, err := e.client.Index(
		e.index,
		bytes.NewReader(body),
		e.client.Index.WithDocumentID(p.ID),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch: index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res.Status(), res.Body)
	}
	return nil
}

func (e *Elastic) DeleteProduct(ctx context.Context, id string) error {
	res, err := e.client.Delete(e.index, id, e.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch: delete: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return responseError("delete", res.Status(), res.Body)
	}
	return nil
}

func (e *Elastic) Search(ctx context.Context, q string, from, size int) (int64, []models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("elasticsearch: encode query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("elasticsearch: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res.Status(), res.Body)
	}

	total, docs, err := decodeHits(res.Body)
	if err != nil {
		return 0, nil, err
	}

	prods := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		prods = append(prods, d.toProduct())
	}
	return total, prods, nil
}

func decodeHits(r io.Reader) (int64, []document, error) {
	var resp struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return 0, nil, fmt.Errorf("elasticsearch: decode: %w", err)
	}

	docs := make([]document, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		docs = append(docs, h.Source)
	}
	return resp.Hits.Total.Value, docs, nil
}

func responseError(op, status string, body io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(body, 1024))
	return fmt.Errorf("elasticsearch: %s: %s: %s", op, status, strings.TrimSpace(string(b)))
}
