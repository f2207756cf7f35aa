package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type GormRepo struct {
	DB *gorm.DB
}

type ProductFilter struct {
	CategorySlug string
	Featured     *bool
}

func (r *GormRepo) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product := models.Product{}
	if err := r.DB.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) listQuery(ctx context.Context, f ProductFilter) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if f.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", f.CategorySlug)
	}
	if f.Featured != nil {
		q = q.Where("products.featured = ?", *f.Featured)
	}
	return q
}

func (r *GormRepo) GetProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.listQuery(ctx, f).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := r.listQuery(ctx, f).
		Preload("Category").
		Order("products.created_at DESC").
		Order("products.id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

// FindByIDs returns the live products among ids. Soft-deleted rows are
// excluded, so a caller can compare lengths to detect vanished products.
func (r *GormRepo) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	var items []models.Product
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Create(prod).Error
}

func (r *GormRepo) PatchProduct(ctx context.Context, req transport.PatchProductRequest, id string) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&prod).Error; err != nil {
		return nil, err
	}

	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.ImageURL != nil {
		prod.ImageURL = *req.ImageURL
	}
	if req.Price != nil {
		prod.Price = *req.Price
	}
	if req.Stock != nil {
		prod.Stock = *req.Stock
	}
	if req.Featured != nil {
		prod.Featured = *req.Featured
	}
	if req.CategoryID != nil {
		if *req.CategoryID == "" {
			prod.CategoryID = nil
		} else {
			prod.CategoryID = req.CategoryID
		}
	}
	prod.Category = nil

	if err := r.DB.WithContext(ctx).Save(&prod).Error; err != nil {
		return nil, err
	}

	return &prod, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SearchProducts is the LIKE fallback used when no search cluster is configured.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	where := "LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\'"

	var total int64
	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where(where, pattern, pattern).
		Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := r.DB.WithContext(ctx).
		Where(where, pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *GormRepo) GetCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *GormRepo) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var cat models.Category
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *GormRepo) CategoryExists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, cat *models.Category) error {
	return r.DB.WithContext(ctx).Create(cat).Error
}

// DeleteCategory keeps the category's products, including soft-deleted ones,
// and leaves them without a category.
func (r *GormRepo) DeleteCategory(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Model(&models.Product{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
