package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/dashprint/backend/internal/domain/dashboard"
	"github.com/dashprint/backend/internal/infrastructure/persistence/models"
)

// GormDashboardRepository implements dashboard.Repository using GORM
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewGormDashboardRepository creates a new GormDashboardRepository
func NewGormDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// FindByID loads a dashboard with its pages in display order and each
// page's widgets in insertion order.
func (r *GormDashboardRepository) FindByID(ctx context.Context, id uint64) (*dashboard.Dashboard, error) {
	if id == 0 {
		return nil, dashboard.ErrUnavailable
	}

	var model models.DashboardModel
	err := r.db.WithContext(ctx).
		Preload("Pages", func(db *gorm.DB) *gorm.DB {
			return db.Order("sortorder ASC, dashboard_pageid ASC")
		}).
		Preload("Pages.Widgets", func(db *gorm.DB) *gorm.DB {
			return db.Order("widgetid ASC")
		}).
		First(&model, "dashboardid = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dashboard.ErrUnavailable
		}
		return nil, fmt.Errorf("failed to load dashboard %d: %w", id, err)
	}
	return model.ToDomain(), nil
}

var _ dashboard.Repository = (*GormDashboardRepository)(nil)
