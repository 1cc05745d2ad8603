package generator_storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "modernc.org/sqlite"             // registers "sqlite"

	"custom-id-generator/internal/customid"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

//go:embed schema.sql
var schema string

// SQLStore keeps sequence counters and issued ids in SQLite or Postgres.
// Allocation is a single upsert statement, so concurrent callers are
// serialized by the database row lock.
type SQLStore struct {
	db          *sql.DB
	driver      string
	maxSequence int64
}

func OpenSQLStore(driver, dsn string, maxSequence int64) (*SQLStore, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// one connection keeps ":memory:" databases shared and avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}

	store, err := NewSQLStore(db, driver, maxSequence)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func NewSQLStore(db *sql.DB, driver string, maxSequence int64) (*SQLStore, error) {
	s := &SQLStore{db: db, driver: driver, maxSequence: maxSequence}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	return nil
}

func (s *SQLStore) Allocate(ctx context.Context, scope string) (int64, error) {
	return s.AllocateBlock(ctx, scope, 1)
}

func (s *SQLStore) AllocateBlock(ctx context.Context, scope string, n int64) (int64, error) {
	if n < 1 {
		return 0, fmt.Errorf("invalid block size %d", n)
	}
	if s.maxSequence > 0 && n > s.maxSequence {
		return 0, fmt.Errorf("scope %q: %w", scope, customid.ErrSequenceExhausted)
	}

	query := `INSERT INTO id_sequences (scope, value) VALUES (?, ?)
		ON CONFLICT (scope) DO UPDATE SET value = id_sequences.value + excluded.value`
	args := []any{scope, n}
	if s.maxSequence > 0 {
		query += ` WHERE id_sequences.value + excluded.value <= ?`
		args = append(args, s.maxSequence)
	}
	query += ` RETURNING value`

	var last int64
	err := s.db.QueryRowContext(ctx, s.rebind(query), args...).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("scope %q: %w", scope, customid.ErrSequenceExhausted)
	}
	if err != nil {
		return 0, fmt.Errorf("increment sequence: %w", err)
	}

	return last - n + 1, nil
}

func (s *SQLStore) IsUnique(ctx context.Context, scope, candidate string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO issued_ids (scope, custom_id) VALUES (?, ?) ON CONFLICT DO NOTHING`),
		scope, candidate)
	if err != nil {
		return false, fmt.Errorf("record issued id: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record issued id: %w", err)
	}

	return n == 1, nil
}

func (s *SQLStore) Current(ctx context.Context, scope string) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT value FROM id_sequences WHERE scope = ?`), scope).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}

	return v, nil
}

func (s *SQLStore) DeleteScope(ctx context.Context, scope string) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{
		`DELETE FROM id_sequences WHERE scope = ?`,
		`DELETE FROM issued_ids WHERE scope = ?`,
	} {
		if _, err := tx.ExecContext(ctx, s.rebind(stmt), scope); err != nil {
			return fmt.Errorf("delete scope %q: %w", scope, err)
		}
	}

	return tx.Commit()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind turns ? placeholders into $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var (
		sb strings.Builder
		n  int
	)
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}

	return sb.String()
}
