package property

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/metacatalog/catalog/internal/core/catalog"
)

// mockStore is a minimal Store keyed by id.
type mockStore struct {
	rows      map[uuid.UUID]*Property
	createErr error
}

func newMockStore() *mockStore {
	return &mockStore{rows: make(map[uuid.UUID]*Property)}
}

func (m *mockStore) Create(_ context.Context, p *Property) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *mockStore) GetByID(_ context.Context, id uuid.UUID, withDeleted bool) (*Property, error) {
	p, ok := m.rows[id]
	if !ok || (p.DeletedAt != nil && !withDeleted) {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockStore) Find(_ context.Context, filter Filter, _ catalog.FindOptions) ([]*Property, error) {
	var out []*Property
	for _, p := range m.rows {
		if p.DeletedAt != nil {
			continue
		}
		if filter.EntityType != nil && p.EntityType != *filter.EntityType {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockStore) Update(_ context.Context, p *Property) error {
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *mockStore) SoftDelete(_ context.Context, p *Property) error {
	now := p.UpdatedAt
	m.rows[p.ID].DeletedAt = &now
	p.DeletedAt = &now
	return nil
}

func (m *mockStore) HardDelete(_ context.Context, id uuid.UUID) error {
	delete(m.rows, id)
	return nil
}

type mockInvalidator struct {
	calls [][]catalog.EntityType
	err   error
}

func (m *mockInvalidator) Invalidate(_ context.Context, entityTypes ...catalog.EntityType) error {
	m.calls = append(m.calls, entityTypes)
	return m.err
}

func newTestService(t *testing.T) (*Service, *mockStore, *mockInvalidator) {
	store := newMockStore()
	inv := &mockInvalidator{}
	return NewService(store, inv, zaptest.NewLogger(t), nil), store, inv
}

func TestService_CreateInvalidatesEntityType(t *testing.T) {
	svc, store, inv := newTestService(t)

	p, err := svc.Create(context.Background(), &CreatePropertyRequest{
		PropertyName: "color",
		DataType:     DataTypeString,
		EntityType:   catalog.EntityMetric,
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Contains(t, store.rows, p.ID)
	assert.Equal(t, [][]catalog.EntityType{{catalog.EntityMetric}}, inv.calls)
}

func TestService_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		req  CreatePropertyRequest
	}{
		{"empty name", CreatePropertyRequest{PropertyName: "  ", DataType: DataTypeString, EntityType: catalog.EntityMetric}},
		{"digits", CreatePropertyRequest{PropertyName: "scope3", DataType: DataTypeString, EntityType: catalog.EntityMetric}},
		{"too long", CreatePropertyRequest{PropertyName: strings.Repeat("a", 101), DataType: DataTypeString, EntityType: catalog.EntityMetric}},
		{"data type", CreatePropertyRequest{PropertyName: "color", DataType: "blob", EntityType: catalog.EntityMetric}},
		{"entity type", CreatePropertyRequest{PropertyName: "color", DataType: DataTypeString, EntityType: "dashboard"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, inv := newTestService(t)

			_, err := svc.Create(context.Background(), &tt.req)
			assert.ErrorIs(t, err, catalog.ErrInvalid)
			assert.Empty(t, store.rows)
			assert.Empty(t, inv.calls)
		})
	}
}

func TestService_CreateStoreFailureSkipsInvalidation(t *testing.T) {
	svc, store, inv := newTestService(t)
	store.createErr = &catalog.Error{Code: catalog.EConflict}

	_, err := svc.Create(context.Background(), &CreatePropertyRequest{
		PropertyName: "color", DataType: DataTypeString, EntityType: catalog.EntityMetric,
	})
	assert.ErrorIs(t, err, catalog.ErrConflict)
	assert.Empty(t, inv.calls)
}

func TestService_GetNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Get(context.Background(), uuid.New(), false)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestService_UpdatePartial(t *testing.T) {
	svc, _, inv := newTestService(t)
	ctx := context.Background()

	desc := "paint colour"
	p, err := svc.Create(ctx, &CreatePropertyRequest{
		PropertyName: "color", PropertyDescription: &desc, DataType: DataTypeString, EntityType: catalog.EntityMetric,
	})
	require.NoError(t, err)

	required := true
	updated, err := svc.Update(ctx, p.ID, &UpdatePropertyRequest{IsRequired: &required})
	require.NoError(t, err)

	assert.Equal(t, "color", updated.PropertyName)
	assert.Equal(t, &desc, updated.PropertyDescription)
	assert.True(t, updated.IsRequired)
	assert.Len(t, inv.calls, 2)
	assert.Equal(t, []catalog.EntityType{catalog.EntityMetric}, inv.calls[1])
}

func TestService_UpdateEntityTypeInvalidatesBoth(t *testing.T) {
	svc, _, inv := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, &CreatePropertyRequest{
		PropertyName: "color", DataType: DataTypeString, EntityType: catalog.EntityMetric,
	})
	require.NoError(t, err)

	target := catalog.EntityMetricSet
	_, err = svc.Update(ctx, p.ID, &UpdatePropertyRequest{EntityType: &target})
	require.NoError(t, err)

	assert.Equal(t, []catalog.EntityType{catalog.EntityMetric, catalog.EntityMetricSet}, inv.calls[1])
}

func TestService_UpdateMissing(t *testing.T) {
	svc, _, inv := newTestService(t)
	name := "color"

	_, err := svc.Update(context.Background(), uuid.New(), &UpdatePropertyRequest{PropertyName: &name})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Empty(t, inv.calls)
}

func TestService_SoftDelete(t *testing.T) {
	svc, _, inv := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, &CreatePropertyRequest{
		PropertyName: "color", DataType: DataTypeString, EntityType: catalog.EntityMetric,
	})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, p.ID, false)
	require.NoError(t, err)
	assert.NotNil(t, deleted.DeletedAt)

	_, err = svc.Get(ctx, p.ID, false)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	got, err := svc.Get(ctx, p.ID, true)
	require.NoError(t, err)
	assert.NotNil(t, got.DeletedAt)

	_, err = svc.Delete(ctx, p.ID, false)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	all, err := svc.FindAll(ctx, catalog.EntityMetric)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Len(t, inv.calls, 2)
}

func TestService_HardDeleteReachesSoftDeleted(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, &CreatePropertyRequest{
		PropertyName: "color", DataType: DataTypeString, EntityType: catalog.EntityMetric,
	})
	require.NoError(t, err)
	_, err = svc.Delete(ctx, p.ID, false)
	require.NoError(t, err)

	_, err = svc.Delete(ctx, p.ID, true)
	require.NoError(t, err)
	assert.NotContains(t, store.rows, p.ID)
}

func TestService_InvalidationFailureIsNotFatal(t *testing.T) {
	svc, _, inv := newTestService(t)
	inv.err = errors.New("redis down")

	p, err := svc.Create(context.Background(), &CreatePropertyRequest{
		PropertyName: "color", DataType: DataTypeString, EntityType: catalog.EntityMetric,
	})
	require.NoError(t, err)
	assert.Equal(t, "color", p.PropertyName)
}

func TestService_FindReturnsEmptySlice(t *testing.T) {
	svc, _, _ := newTestService(t)

	got, err := svc.Find(context.Background(), Filter{}, catalog.FindOptions{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
