package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/metacatalog/catalog/internal/core/catalog"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no rows", sql.ErrNoRows, catalog.ENotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), catalog.ENotFound},
		{"unique", &pq.Error{Code: "23505", Constraint: "uq_properties_name_entity_type"}, catalog.EConflict},
		{"foreign key", &pq.Error{Code: "23503", Constraint: "metrics_metric_set_id_fkey"}, catalog.EInvalid},
		{"bad uuid text", &pq.Error{Code: "22P02", Message: "invalid input syntax for type uuid"}, catalog.EInvalid},
		{"check", &pq.Error{Code: "23514"}, catalog.EInvalid},
		{"other pq", &pq.Error{Code: "57014"}, catalog.EInternal},
		{"foreign", errors.New("connection reset by peer"), catalog.EInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError("op", tt.err, "record not found", nil)
			assert.Equal(t, tt.want, catalog.ErrorCode(got))
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	assert.NoError(t, MapError("op", nil, "", nil))
}

func TestMapError_KeepsCauseForInternal(t *testing.T) {
	cause := errors.New("disk full")
	err := MapError("property.Create", cause, "", nil)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, catalog.ErrInternal)
}

func TestMapError_ConflictDetail(t *testing.T) {
	err := MapError("property.Create", &pq.Error{
		Code:       "23505",
		Constraint: "uq_properties_name_entity_type",
		Detail:     "Key (property_name, entity_type)=(color, metric) already exists.",
	}, "", nil)

	d := catalog.ErrorDetail(err)
	assert.Equal(t, "uq_properties_name_entity_type", d["constraint"])
	assert.Contains(t, d["reason"], "already exists")
}
