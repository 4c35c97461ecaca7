package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/cvkeeper/internal/dbx"
	"github.com/dmitrijs2005/cvkeeper/internal/devserver/users/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore persists accounts in Postgres. Intended for a longer-lived
// dev environment where state should survive server restarts.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the database and applies pending migrations.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error { return s.db.Close() }

const userColumns = `id, email, first_name, last_name, role, is_active, is_verified, password_hash, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8, $9, $10)
	`, u.ID, u.Email, u.FirstName, u.LastName, u.Role, u.IsActive, u.IsVerified, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return getByEmail(ctx, s.db, email)
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*User, error) {
	return getByID(ctx, s.db, id)
}

// Update replaces the stored record inside a transaction: the row is locked
// first so a concurrent delete cannot slip between the existence check and
// the write.
func (s *PostgresStore) Update(ctx context.Context, u *User) error {
	u.UpdatedAt = time.Now().UTC()
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		row := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, u.ID)
		var id string
		if err := row.Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("locking user: %w", err)
		}

		_, err := tx.ExecContext(ctx, `
			UPDATE users
			SET email = lower($2), first_name = $3, last_name = $4, role = $5,
			    is_active = $6, is_verified = $7, password_hash = $8, updated_at = $9
			WHERE id = $1
		`, u.ID, u.Email, u.FirstName, u.LastName, u.Role, u.IsActive, u.IsVerified, u.PasswordHash, u.UpdatedAt)
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		if err != nil {
			return fmt.Errorf("updating user: %w", err)
		}
		return nil
	})
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func getByEmail(ctx context.Context, q dbx.DBTX, email string) (*User, error) {
	row := q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = lower($1)`, email)
	return scanUser(row)
}

func getByID(ctx context.Context, q dbx.DBTX, id string) (*User, error) {
	row := q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role,
		&u.IsActive, &u.IsVerified, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &u, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
