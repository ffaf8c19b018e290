package postgres_adapter

import (
	"context"
	"errors"
	"fmt"
	"real-estate-web/internal/contextkeys"
	"real-estate-web/internal/core/domain"
	"real-estate-web/internal/core/port"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB - подмножество pgxpool.Pool, которое нужно репозиторию.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const schemaDDL = `CREATE TABLE IF NOT EXISTS wishlist (
	id             BIGSERIAL PRIMARY KEY,
	email          TEXT NOT NULL,
	property_id    BIGINT NOT NULL,
	property_title TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (email, property_id)
)`

// PostgresWishlistRepository хранит избранное dev-сервера в PostgreSQL.
type PostgresWishlistRepository struct {
	db DB
}

func NewPostgresWishlistRepository(db DB) (*PostgresWishlistRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle cannot be nil")
	}
	return &PostgresWishlistRepository{db: db}, nil
}

// EnsureSchema создает таблицу, если ее нет.
func (r *PostgresWishlistRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to create wishlist table: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *PostgresWishlistRepository) Add(ctx context.Context, email string, propertyID int64, title string) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "PostgresWishlistRepository",
		"method":      "Add",
		"property_id": propertyID,
	})

	query := `INSERT INTO wishlist (email, property_id, property_title) VALUES ($1, $2, $3)`
	_, err := r.db.Exec(ctx, query, normalizeEmail(email), propertyID, title)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			repoLogger.Debug("Wishlist entry already exists, operation considered successful.", nil)
			return nil
		}
		repoLogger.Error("Failed to add wishlist entry", err, nil)
		return fmt.Errorf("failed to add wishlist entry: %w", err)
	}
	return nil
}

func (r *PostgresWishlistRepository) Remove(ctx context.Context, email string, propertyID int64) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "PostgresWishlistRepository",
		"method":      "Remove",
		"property_id": propertyID,
	})

	query := `DELETE FROM wishlist WHERE email = $1 AND property_id = $2`
	cmdTag, err := r.db.Exec(ctx, query, normalizeEmail(email), propertyID)
	if err != nil {
		repoLogger.Error("Failed to remove wishlist entry", err, nil)
		return fmt.Errorf("failed to remove wishlist entry: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		repoLogger.Debug("Attempted to remove a wishlist entry that did not exist.", nil)
	}
	return nil
}

func (r *PostgresWishlistRepository) ListByUser(ctx context.Context, email string) ([]domain.WishlistItem, error) {
	query := `SELECT id, email, property_id, property_title FROM wishlist WHERE email = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to query wishlist: %w", err)
	}
	defer rows.Close()

	items := make([]domain.WishlistItem, 0)
	for rows.Next() {
		var item domain.WishlistItem
		if err := rows.Scan(&item.ID, &item.Email, &item.PropertyID, &item.PropertyTitle); err != nil {
			return nil, fmt.Errorf("failed to scan wishlist row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during wishlist iteration: %w", err)
	}
	return items, nil
}

func (r *PostgresWishlistRepository) DeleteUser(ctx context.Context, email string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM wishlist WHERE email = $1`, normalizeEmail(email)); err != nil {
		return fmt.Errorf("failed to delete user wishlist: %w", err)
	}
	return nil
}
