package metricsettree

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/storage/postgres"
)

const selectColumns = `id, metric_set_id, node_type, node_depth, node_name, node_description, node_reference_id, node_special, metadata, created_at, updated_at, deleted_at`

var sortFields = map[string]string{
	"nodeName":    "node_name",
	"nodeType":    "node_type",
	"nodeDepth":   "node_depth",
	"metricSetId": "metric_set_id",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

type Repository struct {
	db *postgres.Client
}

func NewRepository(db *postgres.Client) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, n *Node) error {
	md, err := postgres.EncodeJSON(n.MetaData)
	if err != nil {
		return catalog.Internal("metricsettree.Create", err)
	}

	query := `
		INSERT INTO metric_set_trees (id, metric_set_id, node_type, node_depth, node_name, node_description, node_reference_id, node_special, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err = r.db.DB.QueryRowContext(ctx, query,
		n.ID, n.MetricSetID, n.NodeType, n.NodeDepth, n.NodeName, n.NodeDescription, n.NodeReferenceID, n.NodeSpecial, md,
	).Scan(&n.CreatedAt, &n.UpdatedAt)
	return postgres.MapError("metricsettree.Create", err, "", nil)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, withDeleted bool) (*Node, error) {
	q := postgres.Builder.Select(selectColumns).From("metric_set_trees").Where(sq.Eq{"id": id})
	query, args, err := postgres.Query("metricsettree.GetByID", postgres.NotDeleted(q, withDeleted))
	if err != nil {
		return nil, err
	}

	n, err := scanNode(r.db.DB.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, postgres.MapError("metricsettree.GetByID", err, "", nil)
	}
	return n, nil
}

func (r *Repository) Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*Node, error) {
	orderBy, err := opts.OrderBy(sortFields, "node_depth ASC, created_at ASC")
	if err != nil {
		return nil, err
	}

	eq := sq.Eq{}
	postgres.EqIfSet(eq, "metric_set_id", filter.MetricSetID)
	postgres.EqIfSet(eq, "node_type", filter.NodeType)
	postgres.EqIfSet(eq, "node_depth", filter.NodeDepth)
	postgres.EqIfSet(eq, "node_name", filter.NodeName)
	postgres.EqIfSet(eq, "node_reference_id", filter.NodeReferenceID)

	q := postgres.Builder.Select(selectColumns).From("metric_set_trees")
	q = postgres.NotDeleted(postgres.Where(q, eq), opts.WithDeleted)
	q = postgres.Page(q.OrderBy(orderBy, "id"), opts)

	query, args, err := postgres.Query("metricsettree.Find", q)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError("metricsettree.Find", err, "", nil)
	}
	defer rows.Close()

	var nodes []*Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, postgres.MapError("metricsettree.Find", err, "", nil)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError("metricsettree.Find", err, "", nil)
	}
	return nodes, nil
}

func (r *Repository) Update(ctx context.Context, n *Node) error {
	md, err := postgres.EncodeJSON(n.MetaData)
	if err != nil {
		return catalog.Internal("metricsettree.Update", err)
	}

	query := `
		UPDATE metric_set_trees
		SET metric_set_id = $2, node_type = $3, node_depth = $4, node_name = $5, node_description = $6,
			node_reference_id = $7, node_special = $8, metadata = $9, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err = r.db.DB.QueryRowContext(ctx, query,
		n.ID, n.MetricSetID, n.NodeType, n.NodeDepth, n.NodeName, n.NodeDescription, n.NodeReferenceID, n.NodeSpecial, md,
	).Scan(&n.UpdatedAt)
	return postgres.MapError("metricsettree.Update", err, "metric set tree node not found", map[string]any{"id": n.ID})
}

func (r *Repository) SoftDelete(ctx context.Context, n *Node) error {
	query := `
		UPDATE metric_set_trees
		SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING deleted_at, updated_at`

	var deletedAt sql.NullTime
	if err := r.db.DB.QueryRowContext(ctx, query, n.ID).Scan(&deletedAt, &n.UpdatedAt); err != nil {
		return postgres.MapError("metricsettree.SoftDelete", err, "metric set tree node not found", map[string]any{"id": n.ID})
	}
	n.DeletedAt = &deletedAt.Time
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNode(row scanner) (*Node, error) {
	n := &Node{}
	var description, reference, special sql.NullString
	var md []byte
	var deletedAt sql.NullTime

	if err := row.Scan(
		&n.ID, &n.MetricSetID, &n.NodeType, &n.NodeDepth, &n.NodeName, &description, &reference, &special, &md,
		&n.CreatedAt, &n.UpdatedAt, &deletedAt,
	); err != nil {
		return nil, err
	}

	n.NodeDescription = nullString(description)
	n.NodeReferenceID = nullString(reference)
	n.NodeSpecial = nullString(special)
	if deletedAt.Valid {
		n.DeletedAt = &deletedAt.Time
	}

	var err error
	if n.MetaData, err = postgres.DecodeJSON(md); err != nil {
		return nil, err
	}
	return n, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
