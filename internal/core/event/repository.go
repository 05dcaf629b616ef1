package event

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/storage/postgres"
)

const selectColumns = `id, event_type, node_type, node_id, user_id, new_data, created_at, deleted_at`

var sortFields = map[string]string{
	"eventType": "event_type",
	"nodeType":  "node_type",
	"timestamp": "created_at",
}

type Repository struct {
	db *postgres.Client
}

func NewRepository(db *postgres.Client) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, e *Event) error {
	data, err := json.Marshal(e.NewData)
	if err != nil {
		return catalog.Internal("event.Create", err)
	}

	query := `
		INSERT INTO events (id, event_type, node_type, node_id, user_id, new_data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err = r.db.DB.QueryRowContext(ctx, query,
		e.ID, e.EventType, e.NodeType, e.NodeID, e.UserID, data,
	).Scan(&e.Timestamp)
	return postgres.MapError("event.Create", err, "", nil)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, withDeleted bool) (*Event, error) {
	q := postgres.Builder.Select(selectColumns).From("events").Where(sq.Eq{"id": id})
	query, args, err := postgres.Query("event.GetByID", postgres.NotDeleted(q, withDeleted))
	if err != nil {
		return nil, err
	}

	e, err := scanEvent(r.db.DB.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, postgres.MapError("event.GetByID", err, "", nil)
	}
	return e, nil
}

func (r *Repository) Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*Event, error) {
	orderBy, err := opts.OrderBy(sortFields, "created_at DESC")
	if err != nil {
		return nil, err
	}

	eq := sq.Eq{}
	postgres.EqIfSet(eq, "event_type", filter.EventType)
	postgres.EqIfSet(eq, "node_type", filter.NodeType)
	postgres.EqIfSet(eq, "node_id", filter.NodeID)
	postgres.EqIfSet(eq, "user_id", filter.UserID)

	q := postgres.Builder.Select(selectColumns).From("events")
	q = postgres.NotDeleted(postgres.Where(q, eq), opts.WithDeleted)
	q = postgres.Page(q.OrderBy(orderBy, "id"), opts)

	query, args, err := postgres.Query("event.Find", q)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError("event.Find", err, "", nil)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, postgres.MapError("event.Find", err, "", nil)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError("event.Find", err, "", nil)
	}
	return events, nil
}

func (r *Repository) SoftDelete(ctx context.Context, e *Event) error {
	query := `
		UPDATE events
		SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING deleted_at`

	var deletedAt time.Time
	if err := r.db.DB.QueryRowContext(ctx, query, e.ID).Scan(&deletedAt); err != nil {
		return postgres.MapError("event.SoftDelete", err, "event not found", map[string]any{"id": e.ID})
	}
	e.DeletedAt = &deletedAt
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*Event, error) {
	e := &Event{}
	var userID uuid.NullUUID
	var data []byte
	var deletedAt sql.NullTime

	if err := row.Scan(
		&e.ID, &e.EventType, &e.NodeType, &e.NodeID, &userID, &data, &e.Timestamp, &deletedAt,
	); err != nil {
		return nil, err
	}

	e.UserID = postgres.UUIDPtr(userID)
	if deletedAt.Valid {
		e.DeletedAt = &deletedAt.Time
	}

	md, err := postgres.DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	e.NewData = md
	return e, nil
}
