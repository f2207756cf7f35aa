package service

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return &repo.GormRepo{DB: db}
}

func seedProduct(t *testing.T, r *repo.GormRepo, id, name, price string) models.Product {
	t.Helper()
	p := models.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Stock: 10}
	require.NoError(t, r.DB.Create(&p).Error)
	return p
}

type published struct {
	Topic string
	Key   string
	Event any
}

type recorder struct {
	mu     sync.Mutex
	events []published
}

func (r *recorder) PublishEvent(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{Topic: topic, Key: key, Event: event})
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) All() []published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]published(nil), r.events...)
}

func countRows(t *testing.T, r *repo.GormRepo, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, r.DB.Model(model).Count(&n).Error)
	return n
}
