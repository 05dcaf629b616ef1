package postgres

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
)

// Builder renders $n placeholders for lib/pq.
var Builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// EqIfSet adds column = *v to eq only when v is non-nil.
func EqIfSet[T any](eq sq.Eq, column string, v *T) {
	if v == nil {
		return
	}
	eq[column] = *v
}

// Where applies eq to q. An empty sq.Eq would render as (1=1), so it is skipped.
func Where(q sq.SelectBuilder, eq sq.Eq) sq.SelectBuilder {
	if len(eq) == 0 {
		return q
	}
	return q.Where(eq)
}

// NotDeleted hides soft-deleted rows unless withDeleted is set.
func NotDeleted(q sq.SelectBuilder, withDeleted bool) sq.SelectBuilder {
	if withDeleted {
		return q
	}
	return q.Where("deleted_at IS NULL")
}

// Page applies LIMIT and OFFSET from opts. Non-positive values are omitted.
func Page(q sq.SelectBuilder, opts catalog.FindOptions) sq.SelectBuilder {
	if opts.Limit > 0 {
		q = q.Limit(uint64(opts.Limit))
	}
	if opts.Skip > 0 {
		q = q.Offset(uint64(opts.Skip))
	}
	return q
}

// Query renders q, reporting build failures as internal errors of op.
func Query(op string, q sq.Sqlizer) (string, []any, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return "", nil, catalog.Internal(op, fmt.Errorf("failed to build query: %w", err))
	}
	return query, args, nil
}

// EncodeJSON marshals a metadata map for a JSONB column; nil becomes {}.
func EncodeJSON(m catalog.Metadata) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// DecodeJSON unmarshals a JSONB column; NULL becomes an empty map. Numbers
// are kept as json.Number so integers beyond 2^53 survive a round trip.
func DecodeJSON(raw []byte) (catalog.Metadata, error) {
	m := catalog.Metadata{}
	if len(raw) == 0 {
		return m, nil
	}
	if err := DecodeNumbers(bytes.NewReader(raw), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeNumbers decodes a single JSON value from r into dst with UseNumber set.
func DecodeNumbers(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}

// UUIDPtr converts a nullable UUID column to a pointer.
func UUIDPtr(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}
