package repository

import (
	"context"
	"fmt"
	"strings"

	"mail_admin/internal/model"
)

const (
	historyColumns   = `id, recipient_email, recipient_name, template_name, status, role, is_bulk, sent_at, admin_id`
	insertHistorySQL = `INSERT INTO email_history (recipient_email, recipient_name, template_name, status, role, is_bulk, sent_at, admin_id)
            VALUES ($1, $2, $3, $4, $5, $6, NOW(), $7) RETURNING id, sent_at`
)

// HistoryRepository defines operations for the email send audit log
type HistoryRepository interface {
	Create(ctx context.Context, h *model.EmailHistory) error
	List(ctx context.Context, filters model.HistoryFilters, limit, offset int) ([]model.EmailHistory, error)
	Count(ctx context.Context, filters model.HistoryFilters) (int64, error)
	FindAll(ctx context.Context, filters model.HistoryFilters) ([]model.EmailHistory, error)
}

type historyRepository struct {
	db DBTX
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(db DBTX) HistoryRepository {
	return &historyRepository{db: db}
}

// Create appends one audit row; sent_at is assigned by the database
func (r *historyRepository) Create(ctx context.Context, h *model.EmailHistory) error {
	err := r.db.QueryRow(ctx, insertHistorySQL,
		h.RecipientEmail, h.RecipientName, h.TemplateName, h.Status, h.Role, h.IsBulk, h.AdminID,
	).Scan(&h.ID, &h.SentAt)
	if err != nil {
		return fmt.Errorf("failed to insert email history: %w", err)
	}
	return nil
}

// historyWhere builds the WHERE clause shared by listing, counting and export
func historyWhere(filters model.HistoryFilters) (string, []any) {
	args := []any{containsPattern(filters.Search)}
	conditions := []string{"(recipient_name ILIKE $1 OR recipient_email ILIKE $1)"}

	switch filters.RoleFilter {
	case "", model.HistoryFilterAll:
	case model.HistoryFilterBulk:
		conditions = append(conditions, "is_bulk = true")
	default:
		args = append(args, filters.RoleFilter)
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

// List returns one page of audit rows, newest first
func (r *historyRepository) List(ctx context.Context, filters model.HistoryFilters, limit, offset int) ([]model.EmailHistory, error) {
	where, args := historyWhere(filters)

	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + historyColumns + " FROM email_history")
	queryBuilder.WriteString(where)
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY sent_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2))
	args = append(args, limit, offset)

	return r.query(ctx, queryBuilder.String(), args...)
}

// Count counts the rows List pages over
func (r *historyRepository) Count(ctx context.Context, filters model.HistoryFilters) (int64, error) {
	where, args := historyWhere(filters)

	var count int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM email_history"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count email history: %w", err)
	}
	return count, nil
}

// FindAll returns every matching audit row, newest first
func (r *historyRepository) FindAll(ctx context.Context, filters model.HistoryFilters) ([]model.EmailHistory, error) {
	where, args := historyWhere(filters)
	return r.query(ctx, "SELECT "+historyColumns+" FROM email_history"+where+" ORDER BY sent_at DESC", args...)
}

func (r *historyRepository) query(ctx context.Context, sql string, args ...any) ([]model.EmailHistory, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query email history: %w", err)
	}
	defer rows.Close()

	history := []model.EmailHistory{}
	for rows.Next() {
		var h model.EmailHistory
		if err := rows.Scan(
			&h.ID, &h.RecipientEmail, &h.RecipientName, &h.TemplateName, &h.Status,
			&h.Role, &h.IsBulk, &h.SentAt, &h.AdminID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan email history row: %w", err)
		}
		history = append(history, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating email history rows: %w", err)
	}
	return history, nil
}
