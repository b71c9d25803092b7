// Package mocks provides test doubles for the facility store.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	model "github.com/galtpos/oasara-sub004/internal/model"
	store "github.com/galtpos/oasara-sub004/internal/store"
)

// MockStore is a mock type for the Store interface.
type MockStore struct {
	mock.Mock
}

// InsertFacilities provides a mock function with given fields: ctx, facilities
func (_m *MockStore) InsertFacilities(ctx context.Context, facilities []model.Facility) (int, error) {
	ret := _m.Called(ctx, facilities)
	if rf, ok := ret.Get(0).(func(context.Context, []model.Facility) (int, error)); ok {
		return rf(ctx, facilities)
	}
	return ret.Int(0), ret.Error(1)
}

// GetFacility provides a mock function with given fields: ctx, id
func (_m *MockStore) GetFacility(ctx context.Context, id string) (*model.Facility, error) {
	ret := _m.Called(ctx, id)
	var r0 *model.Facility
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Facility)
	}
	return r0, ret.Error(1)
}

// ListFacilities provides a mock function with given fields: ctx, filter
func (_m *MockStore) ListFacilities(ctx context.Context, filter store.FacilityFilter) ([]model.Facility, error) {
	ret := _m.Called(ctx, filter)
	var r0 []model.Facility
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Facility)
	}
	return r0, ret.Error(1)
}

// ApplyContactUpdate provides a mock function with given fields: ctx, id, u
func (_m *MockStore) ApplyContactUpdate(ctx context.Context, id string, u model.ContactUpdate) error {
	return _m.Called(ctx, id, u).Error(0)
}

// SetContactEmail provides a mock function with given fields: ctx, id, email
func (_m *MockStore) SetContactEmail(ctx context.Context, id string, email string) error {
	return _m.Called(ctx, id, email).Error(0)
}

// UpdateClassification provides a mock function with given fields: ctx, id, specialties, procedures
func (_m *MockStore) UpdateClassification(ctx context.Context, id string, specialties []string, procedures []model.PopularProcedure) error {
	return _m.Called(ctx, id, specialties, procedures).Error(0)
}

// SaveExtraction provides a mock function with given fields: ctx, facilityID, result
func (_m *MockStore) SaveExtraction(ctx context.Context, facilityID string, result model.ExtractionResult) error {
	return _m.Called(ctx, facilityID, result).Error(0)
}

// Stats provides a mock function with given fields: ctx
func (_m *MockStore) Stats(ctx context.Context) (*store.Stats, error) {
	ret := _m.Called(ctx)
	var r0 *store.Stats
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*store.Stats)
	}
	return r0, ret.Error(1)
}

// Migrate provides a mock function with given fields: ctx
func (_m *MockStore) Migrate(ctx context.Context) error {
	return _m.Called(ctx).Error(0)
}

// Close provides a mock function with no fields
func (_m *MockStore) Close() error {
	return _m.Called().Error(0)
}

// NewMockStore creates a new instance of MockStore. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStore {
	m := &MockStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
