package repo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

type StatusCount struct {
	Status models.OrderStatus `json:"status"`
	Count  int64              `json:"count"`
}

func (r *GormRepo) CountOrders(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Order{}).Count(&n).Error
	return n, err
}

func (r *GormRepo) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&n).Error
	return n, err
}

func (r *GormRepo) CountCategories(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Category{}).Count(&n).Error
	return n, err
}

// Revenue sums totals of every order that was not cancelled.
func (r *GormRepo) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var totals []decimal.Decimal
	err := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("status <> ?", models.StatusCancelled).
		Pluck("total_amount", &totals).Error
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Sum(decimal.Zero, totals...), nil
}

func (r *GormRepo) OrdersByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *GormRepo) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	orders := make([]models.Order, 0, limit)
	err := r.DB.WithContext(ctx).Order("created_at DESC").Order("id ASC").Limit(limit).Find(&orders).Error
	return orders, err
}

func (r *GormRepo) LowStockProducts(ctx context.Context, threshold, limit int) ([]models.Product, error) {
	items := make([]models.Product, 0, limit)
	err := r.DB.WithContext(ctx).
		Where("stock <= ?", threshold).
		Order("stock ASC").
		Order("name ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}
