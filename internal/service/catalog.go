package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/cache"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/pagination"
)

type CatalogService struct {
	Repo      *repo.GormRepo
	Search    search.Index
	Publisher events.Publisher

	listings   *cache.Listing[transport.ProductList]
	categories *cache.Listing[[]models.Category]
}

func NewCatalogService(r *repo.GormRepo, idx search.Index, pub events.Publisher, ttl time.Duration) *CatalogService {
	if idx == nil {
		idx = search.DB{Repo: r}
	}
	return &CatalogService{
		Repo:       r,
		Search:     idx,
		Publisher:  pub,
		listings:   cache.NewListing[transport.ProductList](ttl),
		categories: cache.NewListing[[]models.Category](ttl),
	}
}

type ProductEvent struct {
	Type      string `json:"type"`
	ProductID string `json:"productID"`
	Name      string `json:"name,omitempty"`
	Price     string `json:"price,omitempty"`
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter, page, size int) (transport.ProductList, error) {
	offset, limit := pagination.Calculate(page, size)
	featured := "any"
	if f.Featured != nil {
		featured = fmt.Sprint(*f.Featured)
	}
	key := fmt.Sprintf("products|%s|%s|%d|%d", f.CategorySlug, featured, offset, limit)

	return s.listings.GetOrLoad(ctx, key, func(ctx context.Context) (transport.ProductList, error) {
		total, items, err := s.Repo.GetProducts(ctx, f, offset, limit)
		if err != nil {
			return transport.ProductList{}, err
		}
		return transport.ProductList{
			Data: items,
			Meta: pagination.NewMeta(page, offset, limit, total),
		}, nil
	})
}

func (s *CatalogService) ListProductsByCategory(ctx context.Context, slug string, page, size int) (transport.ProductList, error) {
	if _, err := s.Repo.GetCategoryBySlug(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return transport.ProductList{}, ErrNotFound
		}
		return transport.ProductList{}, err
	}
	return s.ListProducts(ctx, repo.ProductFilter{CategorySlug: slug}, page, size)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.GetOrLoad(ctx, "categories", s.Repo.GetCategories)
}

func (s *CatalogService) SearchProducts(ctx context.Context, q string, page, size int) (transport.ProductList, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return transport.ProductList{}, fieldError("q", "is required")
	}
	offset, limit := pagination.Calculate(page, size)

	total, items, err := s.Search.Search(ctx, q, offset, limit)
	if err != nil {
		return transport.ProductList{}, err
	}
	return transport.ProductList{
		Data: items,
		Meta: pagination.NewMeta(page, offset, limit, total),
	}, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, fieldError("price", "must be at least 0")
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	prod := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       req.Price.Round(2),
		Stock:       req.Stock,
		Featured:    req.Featured,
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		prod.CategoryID = req.CategoryID
	}

	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.productChanged(ctx, "product_created", prod)
	return prod, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, req transport.PatchProductRequest, id string) (*models.Product, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fieldError("price", "must be at least 0")
		}
		rounded := req.Price.Round(2)
		req.Price = &rounded
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	prod, err := s.Repo.PatchProduct(ctx, req, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.productChanged(ctx, "product_updated", prod)
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.productChanged(ctx, "product_deleted", &models.Product{ID: id})
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (*models.Category, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	cat := &models.Category{
		Name:        req.Name,
		Slug:        strings.ToLower(strings.TrimSpace(req.Slug)),
		Description: req.Description,
	}
	if err := s.Repo.CreateCategory(ctx, cat); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: slug %q already exists", ErrConflict, cat.Slug)
		}
		return nil, err
	}
	s.Invalidate()
	return cat, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.Invalidate()
	return nil
}

// Invalidate drops every cached listing and category view.
func (s *CatalogService) Invalidate() {
	s.listings.Invalidate()
	s.categories.Invalidate()
}

func (s *CatalogService) checkCategory(ctx context.Context, id *string) error {
	if id == nil || *id == "" {
		return nil
	}
	ok, err := s.Repo.CategoryExists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return fieldError("category_id", "unknown category")
	}
	return nil
}

// productChanged runs after a committed mutation. Search sync and events are
// best effort; their failures are logged and never returned.
func (s *CatalogService) productChanged(ctx context.Context, kind string, p *models.Product) {
	l := logging.FromContext(ctx).With("service", "catalog")
	s.Invalidate()

	var err error
	if kind == "product_deleted" {
		err = s.Search.DeleteProduct(ctx, p.ID)
	} else {
		err = s.Search.IndexProduct(ctx, p)
	}
	if err != nil {
		l.Error("search_sync_error", "product_id", p.ID, "event", kind, "error", err)
	}

	ev := ProductEvent{Type: kind, ProductID: p.ID, Name: p.Name}
	if kind != "product_deleted" {
		ev.Price = p.Price.StringFixed(2)
	}
	events.Emit(ctx, s.Publisher, events.TopicProducts, p.ID, ev)
}
