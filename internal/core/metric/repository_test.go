package metric

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/storage/postgres"
)

var metricColumns = []string{
	"id", "metric_set_id", "parent_section_id", "parent_metric_id", "data_metric_id", "status", "name",
	"name_suffix", "metadata", "created_at", "updated_at", "deleted_at",
}

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(postgres.NewFromDB(db)), mock
}

func TestRepository_GetByIDDecodesNullables(t *testing.T) {
	repo, mock := newMockRepository(t)
	id, setID, parent := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM metrics WHERE id = $1 AND deleted_at IS NULL")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(metricColumns).AddRow(
			id.String(), setID.String(), nil, parent.String(), nil, "deployed", "Water use",
			nil, []byte(`{"8f1c":"m3"}`), now, now, nil,
		))

	m, err := repo.GetByID(context.Background(), id, false)
	require.NoError(t, err)
	assert.Equal(t, setID, m.MetricSetID)
	assert.Nil(t, m.ParentSectionID)
	require.NotNil(t, m.ParentMetricID)
	assert.Equal(t, parent, *m.ParentMetricID)
	assert.Nil(t, m.NameSuffix)
	assert.Equal(t, catalog.Metadata{"8f1c": "m3"}, m.MetaData)
}

func TestRepository_CreateUnknownMetricSet(t *testing.T) {
	repo, mock := newMockRepository(t)
	m := &Metric{ID: uuid.New(), MetricSetID: uuid.New(), Status: catalog.StatusDeployed, Name: "x"}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO metrics")).
		WithArgs(m.ID, m.MetricSetID, nil, nil, nil, "deployed", "x", nil, []byte("{}")).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "metrics_metric_set_id_fkey"})

	err := repo.Create(context.Background(), m)
	assert.ErrorIs(t, err, catalog.ErrInvalid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateDeletedRow(t *testing.T) {
	repo, mock := newMockRepository(t)
	m := &Metric{ID: uuid.New(), Status: catalog.StatusDeployed}

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE metrics")).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

	err := repo.Update(context.Background(), m)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestRepository_FindFilters(t *testing.T) {
	repo, mock := newMockRepository(t)
	setID := uuid.New()
	status := catalog.StatusNotUsed

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM metrics WHERE metric_set_id = $1 AND status = $2 AND deleted_at IS NULL ORDER BY name DESC, id LIMIT 25")).
		WithArgs(setID, "not_used").
		WillReturnRows(sqlmock.NewRows(metricColumns))

	got, err := repo.Find(context.Background(), Filter{MetricSetID: &setID, Status: &status},
		catalog.FindOptions{Limit: 25, SortField: "name", SortMethod: catalog.SortDesc})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
