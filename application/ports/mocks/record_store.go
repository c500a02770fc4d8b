// Package mocks provides testify mocks of the application ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"teamchat/application/ports"
	"teamchat/domain/core/entities"
	"teamchat/domain/keys"
)

// RecordStore is a mock of ports.RecordStore
type RecordStore[T entities.Entity] struct {
	mock.Mock
}

var _ ports.RecordStore[entities.Team] = (*RecordStore[entities.Team])(nil)

func (m *RecordStore[T]) Put(ctx context.Context, entity T) error {
	return m.Called(ctx, entity).Error(0)
}

func (m *RecordStore[T]) Get(ctx context.Context, key keys.Key) (T, error) {
	args := m.Called(ctx, key)
	v, _ := args.Get(0).(T)
	return v, args.Error(1)
}

func (m *RecordStore[T]) BatchGet(ctx context.Context, batch []keys.Key) ([]T, error) {
	args := m.Called(ctx, batch)
	v, _ := args.Get(0).([]T)
	return v, args.Error(1)
}

func (m *RecordStore[T]) Update(ctx context.Context, key keys.Key, updates map[string]any) (T, error) {
	args := m.Called(ctx, key, updates)
	v, _ := args.Get(0).(T)
	return v, args.Error(1)
}

func (m *RecordStore[T]) AddToSet(ctx context.Context, key keys.Key, path string, members ...string) error {
	return m.Called(ctx, key, path, members).Error(0)
}

func (m *RecordStore[T]) RemoveFromSet(ctx context.Context, key keys.Key, path string, members ...string) error {
	return m.Called(ctx, key, path, members).Error(0)
}

func (m *RecordStore[T]) Query(ctx context.Context, req ports.QueryRequest) (ports.Page[T], error) {
	args := m.Called(ctx, req)
	v, _ := args.Get(0).(ports.Page[T])
	return v, args.Error(1)
}

func (m *RecordStore[T]) Delete(ctx context.Context, key keys.Key) error {
	return m.Called(ctx, key).Error(0)
}
