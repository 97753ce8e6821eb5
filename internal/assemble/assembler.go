package assemble

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"ChannelScanner/internal/domain"
	"ChannelScanner/internal/timeutil"
)

// guideKeySuffix gives guide records their own idempotency key so a message
// producing both updates and a guide can persist both.
const guideKeySuffix = "#guide"

// Assembler merges validated extraction output with message metadata into
// persistence-ready records.
type Assembler struct {
	logger *slog.Logger
}

// New builds an Assembler; a nil logger disables warnings.
func New(logger *slog.Logger) *Assembler {
	return &Assembler{logger: logger}
}

// Records produces one PersistedRecord per usable update plus, when the
// message is a guide, one synthesized guide record. Items that are not JSON
// objects or lack a non-empty project_name are skipped with a warning; they
// are not failures.
func (a *Assembler) Records(ex domain.ExtractionResult, msg domain.RawMessage) ([]domain.PersistedRecord, *domain.PersistedRecord) {
	timestamp := timeutil.NormalizeTimestamp(msg.Timestamp, a.logger)

	updates := make([]domain.PersistedRecord, 0, len(ex.Updates))
	for i, raw := range ex.Updates {
		var item domain.UpdateItem
		if err := json.Unmarshal(raw, &item); err != nil {
			// A mismatched field inside an object is tolerated best-effort;
			// anything that is not an object at all is skipped.
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) || typeErr.Field == "" {
				a.warn("skipping non-object update item", "index", i, "link", msg.Link, "error", err)
				continue
			}
			a.warn("tolerating mistyped update field", "index", i, "link", msg.Link, "field", typeErr.Field)
		}
		if strings.TrimSpace(item.ProjectName) == "" {
			a.warn("skipping update item without project name", "index", i, "link", msg.Link)
			continue
		}

		updates = append(updates, domain.PersistedRecord{
			ProjectName:       item.ProjectName,
			ActivityType:      item.ActivityType,
			Summary:           item.Summary,
			SourceChannel:     msg.Channel,
			SourceMessageLink: msg.Link,
			MessageTimestamp:  timestamp,
			FullMessageText:   msg.Text,
			NeedsReview:       item.IsUncertain,
		})
	}

	var guide *domain.PersistedRecord
	if ex.IsGuide {
		project := ex.PrimarySubjectProject
		if strings.TrimSpace(project) == "" {
			project = domain.GuideProjectPlaceholder
		}

		guide = &domain.PersistedRecord{
			ProjectName:       project,
			ActivityType:      domain.GuideActivityType,
			Summary:           ex.GuideSummary,
			SourceChannel:     msg.Channel,
			SourceMessageLink: msg.Link + guideKeySuffix,
			MessageTimestamp:  timestamp,
			FullMessageText:   msg.Text,
			NeedsReview:       false,
		}
	}

	return updates, guide
}

func (a *Assembler) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
