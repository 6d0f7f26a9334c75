package user

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	errs "conecta/tools/errs"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the account tables if missing.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			password VARCHAR(255) NOT NULL,
			name VARCHAR(255),
			image_url TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS user_contacts (
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			contact_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			alias_name VARCHAR(255) NOT NULL,
			PRIMARY KEY (user_id, contact_id)
		)`,
	}
	for _, q := range stmts {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "migrate users")
		}
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (email, password) VALUES ($1, $2) RETURNING id`,
		email, passwordHash,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, errs.ErrRecordExists.WrapMsg("email taken")
		}
		return 0, errors.Wrap(err, "insert user")
	}
	return id, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanOne(s.pool.QueryRow(ctx,
		`SELECT id, email, password, name, image_url, created_at FROM users WHERE email = $1`,
		email,
	))
}

func (s *Store) FindByID(ctx context.Context, id int64) (*User, error) {
	return s.scanOne(s.pool.QueryRow(ctx,
		`SELECT id, email, password, name, image_url, created_at FROM users WHERE id = $1`,
		id,
	))
}

// SearchByEmail never returns the searching user itself.
func (s *Store) SearchByEmail(ctx context.Context, email string, excludeID int64) (*User, error) {
	return s.scanOne(s.pool.QueryRow(ctx,
		`SELECT id, email, password, name, image_url, created_at
		 FROM users WHERE email = $1 AND id != $2`,
		email, excludeID,
	))
}

func (s *Store) UpsertContactAlias(ctx context.Context, userID, contactID int64, alias string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_contacts (user_id, contact_id, alias_name) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, contact_id) DO UPDATE SET alias_name = EXCLUDED.alias_name`,
		userID, contactID, alias,
	)
	return errors.Wrap(err, "upsert contact alias")
}

func (s *Store) ListContacts(ctx context.Context, userID int64) ([]Contact, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT uc.contact_id, uc.alias_name, u.email, u.image_url
		 FROM user_contacts uc
		 JOIN users u ON uc.contact_id = u.id
		 WHERE uc.user_id = $1
		 ORDER BY uc.alias_name ASC`,
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list contacts")
	}
	defer rows.Close()

	out := make([]Contact, 0)
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL); err != nil {
			return nil, errors.Wrap(err, "scan contact")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) scanOne(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.ImageURL, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrRecordMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan user")
	}
	return u, nil
}
