package event

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metacatalog/catalog/internal/core/catalog"
)

type mockStore struct {
	rows map[uuid.UUID]*Event
}

func (m *mockStore) Create(_ context.Context, e *Event) error {
	cp := *e
	m.rows[e.ID] = &cp
	return nil
}

func (m *mockStore) GetByID(_ context.Context, id uuid.UUID, withDeleted bool) (*Event, error) {
	e, ok := m.rows[id]
	if !ok || (e.DeletedAt != nil && !withDeleted) {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (m *mockStore) Find(_ context.Context, filter Filter, _ catalog.FindOptions) ([]*Event, error) {
	var out []*Event
	for _, e := range m.rows {
		if filter.NodeID != nil && e.NodeID != *filter.NodeID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockStore) SoftDelete(_ context.Context, e *Event) error {
	now := e.Timestamp
	m.rows[e.ID].DeletedAt = &now
	e.DeletedAt = &now
	return nil
}

type payload struct {
	Name     string         `json:"name"`
	MetaData map[string]any `json:"metaData"`
}

func TestService_RecordKeepsIntegerPrecision(t *testing.T) {
	store := &mockStore{rows: make(map[uuid.UUID]*Event)}
	svc := NewService(store, nil)

	e, err := svc.Record(context.Background(), catalog.EventUpdated, catalog.EntityMetric, uuid.New(), nil,
		map[string]any{"metaData": map[string]any{"externalRef": json.Number("9007199254740993")}})
	require.NoError(t, err)

	raw, err := json.Marshal(e.NewData)
	require.NoError(t, err)
	assert.JSONEq(t, `{"metaData":{"externalRef":9007199254740993}}`, string(raw))
	assert.Contains(t, string(raw), "9007199254740993")
}

func TestService_RecordStoresJSONObject(t *testing.T) {
	store := &mockStore{rows: make(map[uuid.UUID]*Event)}
	svc := NewService(store, nil)
	nodeID, userID := uuid.New(), uuid.New()

	e, err := svc.Record(context.Background(), catalog.EventCreated, catalog.EntityMetric, nodeID, &userID,
		payload{Name: "Energy", MetaData: map[string]any{"unit": "kWh"}})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"name":     "Energy",
		"metaData": map[string]any{"unit": "kWh"},
	}, e.NewData)
	assert.Contains(t, store.rows, e.ID)
}

func TestService_FindAndDelete(t *testing.T) {
	store := &mockStore{rows: make(map[uuid.UUID]*Event)}
	svc := NewService(store, nil)
	ctx := context.Background()
	nodeID := uuid.New()

	e, err := svc.Record(ctx, catalog.EventUpdated, catalog.EntityProperty, nodeID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, e.NewData)

	found, err := svc.Find(ctx, Filter{NodeID: &nodeID}, catalog.FindOptions{})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	_, err = svc.Delete(ctx, e.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, e.ID, false)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestService_RecordUnencodable(t *testing.T) {
	svc := NewService(&mockStore{rows: make(map[uuid.UUID]*Event)}, nil)

	_, err := svc.Record(context.Background(), catalog.EventCreated, catalog.EntityMetric, uuid.New(), nil, make(chan int))
	assert.ErrorIs(t, err, catalog.ErrInternal)
}
