package repository

import (
	"context"
	"errors"
	"fmt"

	"mail_admin/internal/model"

	"github.com/jackc/pgx/v5"
)

const (
	findUserByEmailSQL = `SELECT id, COALESCE(name, ''), email, password, role, is_banned, picture FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1`
	findRoleByEmailSQL = `SELECT role FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1`

	userListingWhere = ` WHERE role = $1 AND is_banned = false AND (name ILIKE $2 OR email ILIKE $2)`
	listUsersSQL     = `SELECT id, COALESCE(name, ''), email, role, picture FROM users` + userListingWhere + ` ORDER BY id DESC LIMIT $3 OFFSET $4`
	countUsersSQL    = `SELECT COUNT(*) FROM users` + userListingWhere
)

// UserRepository defines read operations for user data
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindRoleByEmail(ctx context.Context, email string) (string, error)
	ListByRole(ctx context.Context, role, search string, limit, offset int) ([]model.User, error)
	CountByRole(ctx context.Context, role, search string) (int64, error)
}

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

// FindByEmail retrieves a user by email, compared case-insensitively
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRow(ctx, findUserByEmailSQL, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.IsBanned, &user.Picture,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // User not found is not an error for this method's contract, service layer handles it
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindRoleByEmail returns the stored role for email, or "" when no user matches
func (r *userRepository) FindRoleByEmail(ctx context.Context, email string) (string, error) {
	var role string
	err := r.db.QueryRow(ctx, findRoleByEmailSQL, email).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to find role by email: %w", err)
	}
	return role, nil
}

// ListByRole returns non-banned users of a role whose name or email contains search, newest id first
func (r *userRepository) ListByRole(ctx context.Context, role, search string, limit, offset int) ([]model.User, error) {
	rows, err := r.db.Query(ctx, listUsersSQL, role, containsPattern(search), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Picture); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// CountByRole counts the rows ListByRole pages over
func (r *userRepository) CountByRole(ctx context.Context, role, search string) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, countUsersSQL, role, containsPattern(search)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
