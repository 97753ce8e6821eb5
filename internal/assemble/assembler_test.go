package assemble

import (
	"encoding/json"
	"testing"
	"time"

	"ChannelScanner/internal/domain"
)

func message() domain.RawMessage {
	return domain.RawMessage{
		Text:      "Project X launched on mainnet",
		Channel:   "Crypto News",
		Timestamp: time.Date(2025, time.March, 10, 12, 30, 0, 0, time.UTC),
		Link:      "https://t.me/c/100/1",
	}
}

func rawItems(t *testing.T, items ...string) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		out = append(out, json.RawMessage(item))
	}
	return out
}

func TestRecordsAttachesMetadata(t *testing.T) {
	t.Parallel()

	ex := domain.ExtractionResult{
		Updates: rawItems(t, `{"project_name": "Project X", "activity_type": "Protocol Upgrade", "summary": "mainnet live", "is_uncertain": true}`),
	}

	updates, guide := New(nil).Records(ex, message())
	if guide != nil {
		t.Fatal("unexpected guide record")
	}
	if len(updates) != 1 {
		t.Fatalf("expected 1 record, got %d", len(updates))
	}

	rec := updates[0]
	if rec.ProjectName != "Project X" || rec.ActivityType != "Protocol Upgrade" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.SourceChannel != "Crypto News" || rec.SourceMessageLink != "https://t.me/c/100/1" {
		t.Fatalf("metadata not attached: %+v", rec)
	}
	if rec.MessageTimestamp != "2025-03-10T12:30:00Z" {
		t.Fatalf("timestamp not normalized: %s", rec.MessageTimestamp)
	}
	if rec.FullMessageText != "Project X launched on mainnet" {
		t.Fatalf("full text not attached: %s", rec.FullMessageText)
	}
	if !rec.NeedsReview {
		t.Fatal("is_uncertain must map to needs_review")
	}
}

func TestRecordsSkipsUnusableItems(t *testing.T) {
	t.Parallel()

	ex := domain.ExtractionResult{
		Updates: rawItems(t,
			`{"project_name": "Keeper", "activity_type": "Testnet"}`,
			`{"activity_type": "Airdrop Claim", "summary": "missing name"}`,
			`{"project_name": "   "}`,
			`"not an object"`,
			`[1, 2, 3]`,
		),
	}

	updates, _ := New(nil).Records(ex, message())
	if len(updates) != 1 {
		t.Fatalf("expected only the usable item, got %d", len(updates))
	}
	if updates[0].ProjectName != "Keeper" {
		t.Fatalf("wrong survivor: %+v", updates[0])
	}
}

func TestRecordsToleratesMistypedField(t *testing.T) {
	t.Parallel()

	ex := domain.ExtractionResult{
		Updates: rawItems(t, `{"project_name": "Keeper", "deadline": 42}`),
	}

	updates, _ := New(nil).Records(ex, message())
	if len(updates) != 1 {
		t.Fatalf("mistyped optional field must not drop the item, got %d records", len(updates))
	}
}

func TestRecordsSynthesizesGuide(t *testing.T) {
	t.Parallel()

	ex := domain.ExtractionResult{
		IsGuide:               true,
		GuideSummary:          "Wallet setup guide",
		PrimarySubjectProject: "Project X",
	}

	updates, guide := New(nil).Records(ex, message())
	if len(updates) != 0 {
		t.Fatalf("expected no update records, got %d", len(updates))
	}
	if guide == nil {
		t.Fatal("guide record missing")
	}
	if guide.ActivityType != domain.GuideActivityType {
		t.Fatalf("unexpected activity: %s", guide.ActivityType)
	}
	if guide.ProjectName != "Project X" || guide.Summary != "Wallet setup guide" {
		t.Fatalf("unexpected guide record: %+v", guide)
	}
	if guide.NeedsReview {
		t.Fatal("guide records never need review")
	}
	if guide.SourceMessageLink != "https://t.me/c/100/1#guide" {
		t.Fatalf("guide must carry its own idempotency key: %s", guide.SourceMessageLink)
	}
}

func TestRecordsGuidePlaceholderProject(t *testing.T) {
	t.Parallel()

	ex := domain.ExtractionResult{IsGuide: true, GuideSummary: "General onboarding"}

	_, guide := New(nil).Records(ex, message())
	if guide == nil {
		t.Fatal("guide record missing")
	}
	if guide.ProjectName != domain.GuideProjectPlaceholder {
		t.Fatalf("expected placeholder project, got %s", guide.ProjectName)
	}
}
