// Package pg implementa store.Repository sobre PostgreSQL usando pgxpool.
package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/earlyaccess/internal/registration"
	"github.com/dropDatabas3/earlyaccess/internal/registration/store"
)

// Config del pool.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MinIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store es el repositorio PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Repository = (*Store)(nil)

// Connect abre el pool y verifica la conexión.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse config: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MinIdleConns > 0 {
		pcfg.MinConns = int32(cfg.MinIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Pool expone el pool (migraciones).
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

const selectCols = `id, name, email, date_of_birth, location, gender, terms_accepted,
	status, COALESCE(client_ip, ''), client_info, created_at, confirmed_at`

func (s *Store) Create(ctx context.Context, r *store.Registration) error {
	info, err := json.Marshal(r.Client)
	if err != nil {
		return fmt.Errorf("pg: marshal client info: %w", err)
	}
	const q = `
		INSERT INTO early_access_registration
			(id, name, email, date_of_birth, location, gender, terms_accepted, status, client_ip, client_info, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = s.pool.Exec(ctx, q,
		r.ID, r.Fields.Name, r.Email, r.Fields.DateOfBirth, r.Fields.Location,
		string(r.Fields.Gender), r.Fields.TermsAccepted, string(r.Status),
		nullIfEmpty(r.ClientIP), info, r.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return store.ErrConflict
		}
		return fmt.Errorf("pg: insert registration: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*store.Registration, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+selectCols+` FROM early_access_registration WHERE id = $1`, id)
	return scanRegistration(row)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*store.Registration, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+selectCols+` FROM early_access_registration WHERE lower(email) = lower($1)`, email)
	return scanRegistration(row)
}

// MarkConfirmed conserva el confirmed_at original si ya estaba confirmada.
func (s *Store) MarkConfirmed(ctx context.Context, id string, at time.Time) (*store.Registration, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("pg: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		UPDATE early_access_registration
		SET status = 'confirmed', confirmed_at = COALESCE(confirmed_at, $2)
		WHERE id = $1`, id, at)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("pg: confirm registration: %w", err)
	}
	row := tx.QueryRow(ctx, `SELECT `+selectCols+` FROM early_access_registration WHERE id = $1`, id)
	r, err := scanRegistration(row)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("pg: commit: %w", err)
	}
	return r, nil
}

func scanRegistration(row pgx.Row) (*store.Registration, error) {
	var (
		r       store.Registration
		gender  string
		status  string
		info    []byte
		confirm *time.Time
	)
	err := row.Scan(
		&r.ID, &r.Fields.Name, &r.Email, &r.Fields.DateOfBirth, &r.Fields.Location,
		&gender, &r.Fields.TermsAccepted, &status, &r.ClientIP, &info, &r.CreatedAt, &confirm,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.Is(err, pgx.ErrNoRows) || (errors.As(err, &pgErr) && pgErr.Code == "22P02") { // invalid uuid
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("pg: scan registration: %w", err)
	}
	r.Fields.Email = r.Email
	r.Fields.Gender = registration.Gender(gender)
	r.Status = store.Status(status)
	r.ConfirmedAt = confirm
	if len(info) > 0 {
		if err := json.Unmarshal(info, &r.Client); err != nil {
			return nil, fmt.Errorf("pg: decode client info: %w", err)
		}
	}
	return &r, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
