package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xamuel98/ZoneFlow-sub001/internal/model"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, businessID, orderID uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", orderID, businessID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID, status *model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	query := r.db.WithContext(ctx).Where("business_id = ?", businessID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) Update(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// ListOverdue returns in-transit orders whose estimated delivery time
// has passed, for the background sweep.
func (r *OrderRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("status = ?", model.OrderStatusInTransit).
		Where("estimated_delivery IS NOT NULL AND estimated_delivery < ?", asOf).
		Order("estimated_delivery ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
