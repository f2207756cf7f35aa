package service

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

const recentOrdersLimit = 5

type DashboardService struct {
	Repo              *repo.GormRepo
	LowStockThreshold int
}

type Dashboard struct {
	OrderCount     int64              `json:"order_count"`
	Revenue        decimal.Decimal    `json:"revenue"`
	ProductCount   int64              `json:"product_count"`
	CategoryCount  int64              `json:"category_count"`
	OrdersByStatus []repo.StatusCount `json:"orders_by_status"`
	RecentOrders   []models.Order     `json:"recent_orders"`
	LowStock       []models.Product   `json:"low_stock"`
}

func (s *DashboardService) Get(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.OrderCount, err = s.Repo.CountOrders(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Revenue, err = s.Repo.Revenue(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.ProductCount, err = s.Repo.CountProducts(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.CategoryCount, err = s.Repo.CountCategories(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.OrdersByStatus, err = s.Repo.OrdersByStatus(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.RecentOrders, err = s.Repo.RecentOrders(ctx, recentOrdersLimit)
		return err
	})
	g.Go(func() (err error) {
		d.LowStock, err = s.Repo.LowStockProducts(ctx, s.LowStockThreshold, 20)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
