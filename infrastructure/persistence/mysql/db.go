// Package mysql implements the repositories on a MySQL store of record.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"tj-backend/application/ports"
	"tj-backend/pkg/errors"
	"tj-backend/pkg/observability"
)

// Options configures the connection pool
type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to MySQL and verifies the connection. Times are read and
// written as UTC, and UPDATE reports matched rather than changed rows so an
// unchanged row is not mistaken for a missing one.
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("create mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.NewUnavailableError("store", err)
	}
	return db, nil
}

// store holds what every repository needs
type store struct {
	db      *sql.DB
	breaker *Breaker
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewRepositories creates the MySQL repositories sharing one pool and breaker
func NewRepositories(db *sql.DB, breaker *Breaker, metrics *observability.Collector, logger *zap.Logger) ports.Repositories {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &store{db: db, breaker: breaker, metrics: metrics, logger: logger}
	return ports.Repositories{
		Locations: &LocationRepository{s},
		Routes:    &RouteRepository{s},
		Diaries:   &DiaryRepository{s},
		Favorites: &FavoriteRepository{s},
	}
}

// run executes fn through the breaker and maps its failure onto the error
// taxonomy
func (s *store) run(operation, resource string, fn func() error) error {
	err := errors.FromStore(resource, s.breaker.Do(operation, fn))
	if errors.IsUnavailable(err) {
		s.metrics.RecordStoreFailure(operation)
		s.logger.Error("Store call failed",
			zap.String("operation", operation),
			zap.Error(err),
		)
	}
	return err
}

// affected turns a zero row count into NOT_FOUND
func affected(res sql.Result, resource string, id interface{}) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NewNotFoundErrorID(resource, id)
	}
	return nil
}

// where accumulates AND-ed conditions and their arguments
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// limit renders a LIMIT clause for page; a zero limit selects everything
func limit(page ports.Page) (string, []interface{}) {
	if page.Limit <= 0 {
		if page.Offset > 0 {
			return " LIMIT 18446744073709551615 OFFSET ?", []interface{}{page.Offset}
		}
		return "", nil
	}
	return " LIMIT ? OFFSET ?", []interface{}{page.Limit, page.Offset}
}

// likePattern builds a case-insensitive substring pattern, escaping LIKE
// metacharacters
func likePattern(text string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(text))) + "%"
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
