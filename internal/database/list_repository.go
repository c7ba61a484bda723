package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"revius/models"
)

// ErrListNotFound is returned when a list ID does not exist.
var ErrListNotFound = errors.New("list not found")

// ListRepository persists imported lists and their resolved items.
type ListRepository struct {
	db *sql.DB
}

// NewListRepository constructs a repository over the given connection.
func NewListRepository(db *sql.DB) *ListRepository {
	return &ListRepository{db: db}
}

// CreateList inserts the owning list row. The list is created before item
// resolution so a partially-matched import still yields a visible list.
func (r *ListRepository) CreateList(ctx context.Context, list models.ImportedList) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lists (id, name, description, is_public, owner_user_id, source_url, service, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		list.ID, list.Name, list.Description, list.IsPublic, list.OwnerUserID,
		list.SourceURL, list.Service, list.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert list: %w", err)
	}
	return nil
}

// BulkInsertItems writes all resolved items in one transaction.
func (r *ListRepository) BulkInsertItems(ctx context.Context, items []models.ResolvedListItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO list_items (id, list_id, position, title, year, external_id, media_type,
			source_name, poster_url, rating, synopsis, external_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx,
			item.ID, item.ListID, item.Position, item.Title, item.Year,
			item.ExternalID, item.MediaType, item.SourceName,
			item.PosterURL, item.Rating, item.Synopsis, item.ExternalURL,
			item.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert item %d: %w", item.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit items: %w", err)
	}
	return nil
}

// GetList returns one list row.
func (r *ListRepository) GetList(ctx context.Context, listID string) (models.ImportedList, error) {
	var list models.ImportedList
	var createdAt time.Time
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, is_public, owner_user_id, source_url, service, created_at
		FROM lists WHERE id = ?`, listID).
		Scan(&list.ID, &list.Name, &list.Description, &list.IsPublic,
			&list.OwnerUserID, &list.SourceURL, &list.Service, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ImportedList{}, ErrListNotFound
	}
	if err != nil {
		return models.ImportedList{}, fmt.Errorf("select list: %w", err)
	}
	list.CreatedAt = createdAt
	return list, nil
}

// ListItems returns a list's items ordered by position.
func (r *ListRepository) ListItems(ctx context.Context, listID string) ([]models.ResolvedListItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, list_id, position, title, year, external_id, media_type,
			source_name, poster_url, rating, synopsis, external_url, created_at
		FROM list_items WHERE list_id = ? ORDER BY position`, listID)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	defer rows.Close()

	items := make([]models.ResolvedListItem, 0)
	for rows.Next() {
		var item models.ResolvedListItem
		if err := rows.Scan(&item.ID, &item.ListID, &item.Position, &item.Title, &item.Year,
			&item.ExternalID, &item.MediaType, &item.SourceName,
			&item.PosterURL, &item.Rating, &item.Synopsis, &item.ExternalURL,
			&item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
