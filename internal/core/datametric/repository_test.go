package datametric

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/core/metadata"
	"github.com/metacatalog/catalog/internal/core/property"
	"github.com/metacatalog/catalog/internal/core/property/propertytest"
	"github.com/metacatalog/catalog/internal/storage/postgres"
)

var columns = []string{"id", "data_id", "metric_type", "name", "metadata", "created_at", "updated_at", "deleted_at"}

// TestService_RepositoryRoundTrip drives the service over sqlmock so the
// id-keyed JSON written to the metadata column is asserted byte for byte.
func TestService_RepositoryRoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger := zaptest.NewLogger(t)
	registry := property.NewService(propertytest.NewStore(), nil, logger, nil)
	svc := NewService(NewRepository(postgres.NewFromDB(db)), metadata.NewTranslator(registry, nil, logger), nil)
	ctx := context.Background()

	source, err := registry.Create(ctx, &property.CreatePropertyRequest{
		PropertyName: "source", DataType: property.DataTypeString, EntityType: catalog.EntityDataMetric,
	})
	require.NoError(t, err)

	dataID := uuid.New()
	now := time.Now()
	stored := []byte(`{"` + source.ID.String() + `":"CDP"}`)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO data_metrics")).
		WithArgs(sqlmock.AnyArg(), dataID, "scalar", "Energy", stored).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	dm, err := svc.Create(ctx, &CreateDataMetricRequest{
		DataID: dataID, MetricType: "scalar", Name: "Energy", MetaData: catalog.Metadata{"source": "CDP"},
	})
	require.NoError(t, err)
	assert.Equal(t, catalog.Metadata{"source": "CDP"}, dm.MetaData)

	mock.ExpectQuery(regexp.QuoteMeta("FROM data_metrics WHERE id = $1 AND deleted_at IS NULL")).
		WithArgs(dm.ID).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(dm.ID.String(), dataID.String(), "scalar", "Energy", stored, now, now, nil))

	got, err := svc.Get(ctx, dm.ID, false)
	require.NoError(t, err)
	assert.Equal(t, catalog.Metadata{"source": "CDP"}, got.MetaData)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger := zaptest.NewLogger(t)
	registry := property.NewService(propertytest.NewStore(), nil, logger, nil)
	svc := NewService(NewRepository(postgres.NewFromDB(db)), metadata.NewTranslator(registry, nil, logger), nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM data_metrics")).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err = svc.Get(context.Background(), uuid.New(), false)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
