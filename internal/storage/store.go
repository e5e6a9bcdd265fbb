package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/catalog-imager/internal/common"
	"github.com/Veraticus/catalog-imager/internal/model"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver
)

// ErrItemNotFound is returned when a write matches no row.
var ErrItemNotFound = fmt.Errorf("item %w", common.ErrNotFound)

// connectRetry bounds how long Open keeps trying to reach the database.
var connectRetry = common.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     5 * time.Second,
}

// permanentConnectError reports whether a ping failure will not go away by
// waiting: bad credentials, an unknown database or a missing sqlite file.
func permanentConnectError(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1044, 1045, 1049:
			return true
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "28000", "28P01", "3D000":
			return true
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrCantOpen
	}

	return false
}

// Store reads catalog items and writes their image references.
type Store struct {
	db          *sqlx.DB
	kind        string
	listQuery   string
	countQuery  string
	updateQuery string
	schema      Schema
}

// Open connects to the catalog database and verifies it with a ping,
// retrying transient connection failures.
func Open(ctx context.Context, opts ConnectionOptions, schema Schema) (*Store, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	kind, err := NormalizeKind(opts.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	dsn, err := opts.DataSourceName()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	db, err := sqlx.Open(driverName(kind), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The run is strictly sequential.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := common.WithRetry(ctx, func() error {
		if err := db.PingContext(ctx); err != nil {
			return &common.RetryableError{Err: err, Retryable: !permanentConnectError(err)}
		}
		return nil
	}, connectRetry); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrConnection, err)
	}

	slog.Debug("Connected to catalog database", "driver", kind, "table", schema.Table)

	return newStore(db, kind, schema), nil
}

func newStore(db *sqlx.DB, kind string, schema Schema) *Store {
	return &Store{
		db:          db,
		kind:        kind,
		schema:      schema,
		listQuery:   schema.listQuery(),
		countQuery:  schema.countQuery(),
		updateQuery: db.Rebind(schema.updateQuery()),
	}
}

// Kind returns the database kind the store is connected to.
func (s *Store) Kind() string {
	return s.kind
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListItems returns every item ordered by category, then ID.
func (s *Store) ListItems(ctx context.Context) ([]model.Item, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var items []model.Item
	if err := s.db.SelectContext(ctx, &items, s.listQuery); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.schema.Table, err)
	}
	return items, nil
}

// CountItems returns the number of rows in the catalog table.
func (s *Store) CountItems(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.GetContext(ctx, &count, s.countQuery); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", s.schema.Table, err)
	}
	return count, nil
}

// SetItemImage writes one item's image reference in its own transaction.
func (s *Store) SetItemImage(ctx context.Context, id int64, imageURL string) (err error) {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(imageURL, "imageURL"); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				slog.Warn("Failed to roll back item update", "id", id, "error", rbErr)
			}
		}
	}()

	result, err := tx.ExecContext(ctx, s.updateQuery, imageURL, id)
	if err != nil {
		return fmt.Errorf("failed to update item %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update of item %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit item %d: %w", id, err)
	}
	return nil
}
