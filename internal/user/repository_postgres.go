package user

import (
	"context"
	"database/sql"

	"github.com/htetaung/storefront-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, is_staff, created_at`

func (r *PostgresRepository) Create(ctx context.Context, u User) (User, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, first_name, last_name, is_staff, created_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 RETURNING id, created_at`,
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsStaff).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.IsStaff, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
