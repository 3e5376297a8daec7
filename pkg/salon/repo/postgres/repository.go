package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ngabo-dev/salon-backend/pkg/salon"
)

// DBTX is an interface that allows us to use either a database connection or
// a transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements salon.Repository using PostgreSQL.
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository.
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with a connection pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("asset already exists")
		case "23514": // check_violation
			return fmt.Errorf("constraint %s violated", pgErr.ConstraintName)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

const assetColumns = `id, kind, title, category, description,
	image_key, image_url, before_key, before_url, after_key, after_url,
	likes, active, created_at, updated_at`

func scanAsset(row pgx.Row) (*salon.Asset, error) {
	var (
		a                    salon.Asset
		beforeKey, beforeURL string
		afterKey, afterURL   string
	)
	err := row.Scan(
		&a.ID, &a.Kind, &a.Title, &a.Category, &a.Description,
		&a.Image.Key, &a.Image.URL, &beforeKey, &beforeURL, &afterKey, &afterURL,
		&a.Likes, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if beforeKey != "" || beforeURL != "" || afterKey != "" || afterURL != "" {
		a.BeforeAfter = &salon.BeforeAfterImages{
			Before: salon.ImageRef{Key: beforeKey, URL: beforeURL},
			After:  salon.ImageRef{Key: afterKey, URL: afterURL},
		}
	}
	return &a, nil
}

func (r *Repository) CreateAsset(ctx context.Context, asset *salon.Asset) error {
	now := time.Now().UTC()
	asset.ID = uuid.New()
	asset.CreatedAt = now
	asset.UpdatedAt = now

	var beforeKey, beforeURL, afterKey, afterURL string
	if asset.BeforeAfter != nil {
		beforeKey, beforeURL = asset.BeforeAfter.Before.Key, asset.BeforeAfter.Before.URL
		afterKey, afterURL = asset.BeforeAfter.After.Key, asset.BeforeAfter.After.URL
	}

	query := `
		INSERT INTO assets (
			id, kind, title, category, description,
			image_key, image_url, before_key, before_url, after_key, after_url,
			likes, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.Exec(ctx, query,
		asset.ID, asset.Kind, asset.Title, asset.Category, asset.Description,
		asset.Image.Key, asset.Image.URL, beforeKey, beforeURL, afterKey, afterURL,
		asset.Likes, asset.Active, asset.CreatedAt, asset.UpdatedAt)

	if err != nil {
		return r.handlePostgresError("create asset", err)
	}
	return nil
}

func (r *Repository) GetAsset(ctx context.Context, id uuid.UUID) (*salon.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`

	asset, err := scanAsset(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, salon.ErrAssetNotFound
		}
		return nil, r.handlePostgresError("get asset", err)
	}
	return asset, nil
}

func (r *Repository) GetAssetsByIDs(ctx context.Context, ids []uuid.UUID) ([]*salon.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, r.handlePostgresError("get assets by ids", err)
	}
	defer rows.Close()

	var result []*salon.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, r.handlePostgresError("get assets by ids", err)
		}
		result = append(result, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("get assets by ids", err)
	}
	return result, nil
}

func (r *Repository) ListAssets(ctx context.Context, params salon.ListAssetsParams) ([]*salon.Asset, int64, error) {
	params = params.Normalized()

	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Kind != "" {
		where = append(where, "kind = "+arg(params.Kind))
	}
	if params.Category != "" {
		where = append(where, "category = "+arg(params.Category))
	}
	if params.ActiveOnly {
		where = append(where, "active = TRUE")
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM assets"+clause, args...).Scan(&total); err != nil {
		return nil, 0, r.handlePostgresError("count assets", err)
	}

	query := `SELECT ` + assetColumns + ` FROM assets` + clause +
		` ORDER BY created_at DESC LIMIT ` + arg(params.Limit) +
		` OFFSET ` + arg((params.Page-1)*params.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, r.handlePostgresError("list assets", err)
	}
	defer rows.Close()

	var result []*salon.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, 0, r.handlePostgresError("list assets", err)
		}
		result = append(result, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, r.handlePostgresError("list assets", err)
	}
	return result, total, nil
}

func (r *Repository) UpdateAsset(ctx context.Context, id uuid.UUID, patch salon.AssetPatch) (*salon.Asset, error) {
	var (
		set  []string
		args []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if patch.Title != nil {
		set = append(set, "title = "+arg(strings.TrimSpace(*patch.Title)))
	}
	if patch.Category != nil {
		set = append(set, "category = "+arg(salon.NormalizeCategory(string(*patch.Category))))
	}
	if patch.Description != nil {
		set = append(set, "description = "+arg(*patch.Description))
	}
	if patch.Likes != nil {
		set = append(set, "likes = "+arg(*patch.Likes))
	}
	if patch.Active != nil {
		set = append(set, "active = "+arg(*patch.Active))
	}
	if patch.Image != nil {
		set = append(set, "image_key = "+arg(patch.Image.Key))
		set = append(set, "image_url = "+arg(patch.Image.URL))
	}
	if patch.BeforeAfter != nil {
		set = append(set, "before_key = "+arg(patch.BeforeAfter.Before.Key))
		set = append(set, "before_url = "+arg(patch.BeforeAfter.Before.URL))
		set = append(set, "after_key = "+arg(patch.BeforeAfter.After.Key))
		set = append(set, "after_url = "+arg(patch.BeforeAfter.After.URL))
	}
	set = append(set, "updated_at = "+arg(time.Now().UTC()))

	query := `UPDATE assets SET ` + strings.Join(set, ", ") +
		` WHERE id = ` + arg(id) + ` RETURNING ` + assetColumns

	asset, err := scanAsset(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, salon.ErrAssetNotFound
		}
		return nil, r.handlePostgresError("update asset", err)
	}
	return asset, nil
}

func (r *Repository) DeleteAsset(ctx context.Context, id uuid.UUID) (*salon.Asset, error) {
	query := `DELETE FROM assets WHERE id = $1 RETURNING ` + assetColumns

	asset, err := scanAsset(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, salon.ErrAssetNotFound
		}
		return nil, r.handlePostgresError("delete asset", err)
	}
	return asset, nil
}

func (r *Repository) DeleteAssets(ctx context.Context, ids []uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM assets WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, r.handlePostgresError("delete assets", err)
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) IncrementLikes(ctx context.Context, id uuid.UUID) (*salon.Asset, error) {
	// Single-statement increment; concurrent calls never lose an update.
	query := `UPDATE assets SET likes = likes + 1, updated_at = $2
		WHERE id = $1 RETURNING ` + assetColumns

	asset, err := scanAsset(r.db.QueryRow(ctx, query, id, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, salon.ErrAssetNotFound
		}
		return nil, r.handlePostgresError("increment likes", err)
	}
	return asset, nil
}
