package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/sophia-wwww/accountd/types"
)

const uniqueViolation = pq.ErrorCode("23505")

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	const query = `
		SELECT id, username, hashed_password, height, weight, age, gender, created_at, updated_at
		FROM users
		WHERE username = $1`
	var (
		user   types.User
		height sql.NullFloat64
		weight sql.NullFloat64
		age    sql.NullInt64
		gender sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.HashedPassword,
		&height,
		&weight,
		&age,
		&gender,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}

	if height.Valid {
		user.Height = &height.Float64
	}
	if weight.Valid {
		user.Weight = &weight.Float64
	}
	if age.Valid {
		v := int(age.Int64)
		user.Age = &v
	}
	if gender.Valid {
		user.Gender = &gender.String
	}
	return user, nil
}

// Create inserts a new user row. A collision with the username uniqueness
// constraint is reported as ErrDuplicateUsername so that callers racing a
// pre-insert existence check still observe the same error.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (username, hashed_password, height, weight, age, gender, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Username,
		user.HashedPassword,
		user.Height,
		user.Weight,
		user.Age,
		user.Gender,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID); err != nil {
		if isUniqueViolation(err) {
			return types.User{}, ErrDuplicateUsername
		}
		return types.User{}, err
	}
	return user, nil
}

// UpdateProfile applies a partial update of the optional profile columns.
// The SET clause is assembled from a closed set of per-column fragments;
// caller-supplied key names never reach the SQL text. An empty update is a
// no-op success. The statement runs in its own transaction and is rolled
// back on any error.
func (r *UserRepository) UpdateProfile(ctx context.Context, username string, update types.ProfileUpdate) error {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)

	if update.Height.Set {
		args = append(args, sql.NullFloat64{Float64: update.Height.Value, Valid: update.Height.Valid})
		sets = append(sets, fmt.Sprintf("height = $%d", len(args)))
	}
	if update.Weight.Set {
		args = append(args, sql.NullFloat64{Float64: update.Weight.Value, Valid: update.Weight.Valid})
		sets = append(sets, fmt.Sprintf("weight = $%d", len(args)))
	}
	if update.Age.Set {
		args = append(args, sql.NullInt64{Int64: int64(update.Age.Value), Valid: update.Age.Valid})
		sets = append(sets, fmt.Sprintf("age = $%d", len(args)))
	}
	if update.Gender.Set {
		args = append(args, sql.NullString{String: update.Gender.Value, Valid: update.Gender.Valid})
		sets = append(sets, fmt.Sprintf("gender = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, time.Now())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, username)

	query := fmt.Sprintf(
		"UPDATE users SET %s WHERE username = $%d",
		strings.Join(sets, ", "),
		len(args),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if affected == 0 {
		_ = tx.Rollback()
		return ErrNotFound
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
