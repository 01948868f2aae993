// internal/drinks/store.go
package drinks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"coffeeshop/internal/observability/logging"

	"github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS drink (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	title  TEXT    NOT NULL UNIQUE,
	recipe TEXT    NOT NULL
)`

// seed is the drink a freshly reset store starts with
var seed = Drink{
	Title:  "water",
	Recipe: Recipe{{Name: "water", Color: "blue", Parts: 1}},
}

// Store persists drinks in SQLite
type Store struct {
	db     *sql.DB
	logger *logging.Logger
}

// Open opens the SQLite database at path and creates the schema if needed.
// path may be ":memory:" for a transient store.
func Open(ctx context.Context, path string, logger *logging.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// SQLite allows a single writer; an in-memory database only lives on its one connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger.WithModule("drinks.store")}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s.logger.Debug("Opened drink store", "path", path)
	return s, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Reset drops every drink, recreates the schema and inserts the seed drink
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reset: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS drink"); err != nil {
		return fmt.Errorf("failed to drop drinks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := insert(ctx, tx, seed); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}

	s.logger.Warn("Drink store reset", "seed", seed.Title)
	return nil
}

// List returns every drink ordered by id
func (s *Store) List(ctx context.Context) ([]Drink, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, recipe FROM drink ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list drinks: %w", err)
	}
	defer rows.Close()

	var result []Drink
	for rows.Next() {
		d, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list drinks: %w", err)
	}
	return result, nil
}

// Get returns the drink with id or ErrNotFound
func (s *Store) Get(ctx context.Context, id int64) (Drink, error) {
	return get(ctx, s.db, id)
}

// Insert validates and stores d, returning it with its assigned id
func (s *Store) Insert(ctx context.Context, d Drink) (Drink, error) {
	if err := d.Validate(); err != nil {
		return Drink{}, err
	}
	created, err := insert(ctx, s.db, d)
	if err != nil {
		return Drink{}, err
	}
	logging.FromContextOr(ctx, s.logger).Info("Drink created", "id", created.ID, "title", created.Title)
	return created, nil
}

// Update applies the fields of u to the drink with id.
// Nil and empty fields leave the stored value unchanged.
func (s *Store) Update(ctx context.Context, id int64, u Update) (Drink, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Drink{}, fmt.Errorf("failed to begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	d, err := get(ctx, tx, id)
	if err != nil {
		return Drink{}, err
	}
	if u.Title != nil && *u.Title != "" {
		d.Title = *u.Title
	}
	if u.Recipe != nil && len(*u.Recipe) > 0 {
		d.Recipe = *u.Recipe
	}
	if err := d.Validate(); err != nil {
		return Drink{}, err
	}

	recipe, err := json.Marshal(d.Recipe)
	if err != nil {
		return Drink{}, fmt.Errorf("failed to encode recipe: %w", err)
	}
	_, err = tx.ExecContext(ctx, "UPDATE drink SET title = ?, recipe = ? WHERE id = ?", d.Title, string(recipe), id)
	if err != nil {
		return Drink{}, translate(err, "update")
	}
	if err := tx.Commit(); err != nil {
		return Drink{}, fmt.Errorf("failed to commit update: %w", err)
	}

	logging.FromContextOr(ctx, s.logger).Info("Drink updated", "id", id, "title", d.Title)
	return d, nil
}

// Delete removes the drink with id or returns ErrNotFound
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM drink WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete drink %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete drink %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}

	logging.FromContextOr(ctx, s.logger).Info("Drink deleted", "id", id)
	return nil
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func get(ctx context.Context, q queryer, id int64) (Drink, error) {
	row := q.QueryRowContext(ctx, "SELECT id, title, recipe FROM drink WHERE id = ?", id)
	d, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Drink{}, ErrNotFound
	}
	return d, err
}

func insert(ctx context.Context, q queryer, d Drink) (Drink, error) {
	recipe, err := json.Marshal(d.Recipe)
	if err != nil {
		return Drink{}, fmt.Errorf("failed to encode recipe: %w", err)
	}
	res, err := q.ExecContext(ctx, "INSERT INTO drink (title, recipe) VALUES (?, ?)", d.Title, string(recipe))
	if err != nil {
		return Drink{}, translate(err, "insert")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Drink{}, fmt.Errorf("failed to read drink id: %w", err)
	}
	d.ID = id
	return d, nil
}

func scan(s scanner) (Drink, error) {
	var (
		d      Drink
		recipe string
	)
	if err := s.Scan(&d.ID, &d.Title, &recipe); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Drink{}, err
		}
		return Drink{}, fmt.Errorf("failed to read drink: %w", err)
	}
	if err := json.Unmarshal([]byte(recipe), &d.Recipe); err != nil {
		return Drink{}, fmt.Errorf("failed to decode recipe of drink %d: %w", d.ID, err)
	}
	return d, nil
}

// translate maps constraint violations to domain errors
func translate(err error, op string) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrDuplicateTitle
	}
	return fmt.Errorf("failed to %s drink: %w", op, err)
}
