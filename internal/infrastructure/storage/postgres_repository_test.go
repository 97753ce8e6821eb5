package storage

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/lib/pq"

	"ChannelScanner/internal/domain"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	dup := &pq.Error{
		Code:       "23505",
		Constraint: "telegram_project_updates_source_message_link_key",
	}
	if !isUniqueViolation(dup) {
		t.Fatal("23505 must classify as duplicate")
	}
	if !isUniqueViolation(fmt.Errorf("insert record: %w", dup)) {
		t.Fatal("wrapped 23505 must classify as duplicate")
	}

	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Fatal("other constraint violations are real failures")
	}
	if isUniqueViolation(fmt.Errorf("duplicate key value violates unique constraint")) {
		t.Fatal("classification must use the error code, not message text")
	}
}

func TestInsertQueryShape(t *testing.T) {
	t.Parallel()

	repo := NewPostgresRepository(nil, nil)
	rec := domain.PersistedRecord{
		ProjectName:       "Project X",
		ActivityType:      "Protocol Upgrade",
		Summary:           "mainnet live",
		SourceChannel:     "Crypto News",
		SourceMessageLink: "L1",
		MessageTimestamp:  "2025-03-10T12:30:00Z",
		FullMessageText:   "Project X launched on mainnet",
		NeedsReview:       false,
	}

	query, args, err := repo.insertQuery(rec).ToSql()
	if err != nil {
		t.Fatalf("ToSql returned error: %v", err)
	}

	if !strings.HasPrefix(query, "INSERT INTO telegram_project_updates") {
		t.Fatalf("unexpected query: %s", query)
	}
	for _, col := range []string{
		"project_name", "activity_type", "summary", "source_channel",
		"source_message_link", "message_timestamp", "full_message_text", "needs_review",
	} {
		if !strings.Contains(query, col) {
			t.Fatalf("query missing column %s: %s", col, query)
		}
	}
	if !strings.Contains(query, "$8") {
		t.Fatalf("expected dollar placeholders: %s", query)
	}
	if len(args) != 8 {
		t.Fatalf("expected 8 args, got %d", len(args))
	}
	if args[4] != "L1" {
		t.Fatalf("idempotency key misplaced: %v", args)
	}
}

func TestInsertWithoutHandleFails(t *testing.T) {
	t.Parallel()

	repo := NewPostgresRepository(nil, nil)
	inserted, err := repo.Insert(context.Background(), domain.PersistedRecord{SourceMessageLink: "L1"})
	if inserted || err == nil {
		t.Fatalf("expected failure without database handle, got inserted=%v err=%v", inserted, err)
	}
}
