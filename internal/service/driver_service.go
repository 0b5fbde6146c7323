package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/xamuel98/ZoneFlow-sub001/internal/model"
)

type DriverService struct {
	driverStore DriverStore
}

func NewDriverService(driverStore DriverStore) *DriverService {
	return &DriverService{driverStore: driverStore}
}

type CreateDriverInput struct {
	Name  string
	Phone string
}

func (s *DriverService) Create(ctx context.Context, businessID uuid.UUID, input CreateDriverInput) (*model.Driver, error) {
	if input.Name == "" {
		return nil, ErrInvalidInput
	}

	driver := &model.Driver{
		BusinessID: businessID,
		Name:       input.Name,
		Phone:      input.Phone,
		Active:     true,
	}

	if err := s.driverStore.Create(ctx, driver); err != nil {
		return nil, err
	}

	return driver, nil
}

func (s *DriverService) List(ctx context.Context, businessID uuid.UUID) ([]model.Driver, error) {
	return s.driverStore.ListByBusiness(ctx, businessID)
}

func (s *DriverService) Get(ctx context.Context, businessID, driverID uuid.UUID) (*model.Driver, error) {
	driver, err := s.driverStore.GetByID(ctx, businessID, driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, ErrNotFound
	}
	return driver, nil
}
