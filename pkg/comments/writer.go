package comments

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// Connections resolves connection aliases.
type Connections interface {
	// Engine returns the engine configured for alias, or "" if none.
	Engine(alias string) string

	// DB returns the open database handle for alias.
	DB(ctx context.Context, alias string) (*sql.DB, error)
}

// Writer applies comments to a database connection.
type Writer interface {
	WriteColumnComments(ctx context.Context, comments CommentMap, using string) error
	WriteTableComments(ctx context.Context, comments TableCommentMap, using string) error
}

// ColumnCommentSQL returns the statement that sets a column comment.
// The comment itself is the single bound argument.
func ColumnCommentSQL(table, column string) string {
	return "COMMENT ON COLUMN " + pgx.Identifier{table, column}.Sanitize() + " IS $1"
}

// TableCommentSQL returns the statement that sets a table comment.
func TableCommentSQL(table string) string {
	return "COMMENT ON TABLE " + pgx.Identifier{table}.Sanitize() + " IS $1"
}

// SQLWriter writes comments through database/sql.
// Each call runs in its own transaction; any failing statement rolls back the batch.
type SQLWriter struct {
	conns  Connections
	logger *slog.Logger
}

// NewSQLWriter creates a writer over conns.
// If logger is nil, a discard logger is used.
func NewSQLWriter(conns Connections, logger *slog.Logger) *SQLWriter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLWriter{conns: conns, logger: logger}
}

// WriteColumnComments sets every column comment in comments.
func (w *SQLWriter) WriteColumnComments(ctx context.Context, comments CommentMap, using string) error {
	return w.inTx(ctx, using, func(tx *sql.Tx) error {
		for _, table := range comments {
			for _, col := range table.Columns {
				if _, err := tx.ExecContext(ctx, ColumnCommentSQL(table.Table, col.Column), col.Comment); err != nil {
					return fmt.Errorf("failed to comment column %s.%s: %w", table.Table, col.Column, err)
				}
			}
		}
		w.logger.Debug("column comments written", slog.String("database", using), slog.Int("count", comments.Len()))
		return nil
	})
}

// WriteTableComments sets every table comment in comments.
func (w *SQLWriter) WriteTableComments(ctx context.Context, comments TableCommentMap, using string) error {
	return w.inTx(ctx, using, func(tx *sql.Tx) error {
		for _, tc := range comments {
			if _, err := tx.ExecContext(ctx, TableCommentSQL(tc.Table), tc.Comment); err != nil {
				return fmt.Errorf("failed to comment table %s: %w", tc.Table, err)
			}
		}
		w.logger.Debug("table comments written", slog.String("database", using), slog.Int("count", len(comments)))
		return nil
	})
}

func (w *SQLWriter) inTx(ctx context.Context, using string, fn func(tx *sql.Tx) error) error {
	db, err := w.conns.DB(ctx, using)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit comments: %w", err)
	}
	return nil
}
