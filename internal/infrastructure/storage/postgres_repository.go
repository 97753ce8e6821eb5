package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"ChannelScanner/internal/domain"
	"ChannelScanner/internal/ports"
)

const tableName = "telegram_project_updates"

// uniqueViolation is the Postgres class-23 code raised when an insert hits
// the source_message_link unique constraint.
const uniqueViolation = pq.ErrorCode("23505")

// PostgresRepository persists extracted records into the shared store,
// treating idempotency-key collisions as benign no-ops.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	logger  *slog.Logger
}

var _ ports.UpdateRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger:  logger,
	}
}

// Insert stores one record. A duplicate on the idempotency key returns
// (false, nil); any other failure is logged with the record's identifying
// fields and returned.
func (r *PostgresRepository) Insert(ctx context.Context, rec domain.PersistedRecord) (bool, error) {
	if r.db == nil {
		return false, fmt.Errorf("repository has no database handle")
	}

	query, args, err := r.insertQuery(rec).ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			r.warn("already processed, skipping duplicate",
				"link", rec.SourceMessageLink, "project", rec.ProjectName)
			return false, nil
		}
		r.error("insert failed",
			"link", rec.SourceMessageLink, "project", rec.ProjectName, "error", err)
		return false, fmt.Errorf("insert record: %w", err)
	}

	return true, nil
}

func (r *PostgresRepository) insertQuery(rec domain.PersistedRecord) sq.InsertBuilder {
	return r.builder.Insert(tableName).
		Columns(
			"project_name",
			"activity_type",
			"summary",
			"source_channel",
			"source_message_link",
			"message_timestamp",
			"full_message_text",
			"needs_review",
		).
		Values(
			rec.ProjectName,
			rec.ActivityType,
			rec.Summary,
			rec.SourceChannel,
			rec.SourceMessageLink,
			rec.MessageTimestamp,
			rec.FullMessageText,
			rec.NeedsReview,
		)
}

// ListRecent returns the newest stored rows as RawMessages for backfill.
// Guide rows carry a suffixed idempotency key and are excluded.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit uint64) ([]domain.RawMessage, error) {
	if r.db == nil {
		return nil, nil
	}

	query, args, err := r.builder.
		Select("full_message_text", "source_channel", "message_timestamp", "source_message_link").
		From(tableName).
		Where(sq.NotLike{"source_message_link": "%#guide"}).
		OrderBy("message_timestamp DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var messages []domain.RawMessage
	for rows.Next() {
		var (
			msg domain.RawMessage
			ts  time.Time
		)
		if err := rows.Scan(&msg.Text, &msg.Channel, &ts, &msg.Link); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		msg.Timestamp = ts
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return messages, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (r *PostgresRepository) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}

func (r *PostgresRepository) error(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Error(msg, args...)
	}
}
