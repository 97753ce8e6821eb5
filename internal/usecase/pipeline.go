package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"ChannelScanner/internal/assemble"
	"ChannelScanner/internal/domain"
	"ChannelScanner/internal/parse"
	"ChannelScanner/internal/ports"
	"ChannelScanner/internal/prompt"
	"ChannelScanner/internal/textutil"
)

// NothingFoundMessage is reported when the model identified neither updates
// nor a guide.
const NothingFoundMessage = "no relevant updates or guide identified"

// PipelineDeps wires all driven adapters into the extraction pipeline.
type PipelineDeps struct {
	Completion ports.CompletionClient
	Repository ports.UpdateRepository
	Notifier   ports.Notifier
	Prompts    *prompt.Builder
	Logger     *slog.Logger
}

// Pipeline implements the extract-validate-persist workflow for one message
// at a time. It holds no mutable state; concurrent callers rely on the store
// to serialize conflicting inserts.
type Pipeline struct {
	completion ports.CompletionClient
	repository ports.UpdateRepository
	notifier   ports.Notifier
	prompts    *prompt.Builder
	assembler  *assemble.Assembler
	logger     *slog.Logger
}

// Result is the structured outcome of one pipeline invocation. ErrorMessage
// is empty on full success; Duplicates distinguishes already-processed
// messages from messages where nothing was found.
type Result struct {
	UpdatesSaved int
	GuideSaved   bool
	Duplicates   int
	Skipped      bool
	SkipReason   string
	ErrorMessage string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		completion: deps.Completion,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		prompts:    deps.Prompts,
		assembler:  assemble.New(deps.Logger),
		logger:     deps.Logger,
	}
}

// ProcessMessage runs one message through extraction and persistence and
// returns a summary outcome. Nothing here is fatal to the host process.
func (p *Pipeline) ProcessMessage(ctx context.Context, msg domain.RawMessage) Result {
	log := p.log().With("invocation_id", uuid.NewString(), "link", msg.Link)

	if strings.TrimSpace(msg.Text) == "" || strings.Contains(msg.Text, domain.MediaPlaceholder) {
		log.Warn("skipping empty or media-only message")
		return Result{Skipped: true, SkipReason: "empty or media-only message"}
	}

	promptText := p.prompts.Build(textutil.Clean(msg.Text), msg.Channel)

	raw, err := p.completion.Complete(ctx, promptText)
	if err != nil {
		log.Error("completion failed", "error", err)
		return Result{ErrorMessage: err.Error()}
	}

	extraction, err := parse.Parse(raw)
	if err != nil {
		log.Error("response rejected", "error", err)
		return Result{ErrorMessage: err.Error()}
	}
	log.Info("extraction parsed", "updates", len(extraction.Updates), "is_guide", extraction.IsGuide)

	updates, guide := p.assembler.Records(extraction, msg)
	if len(updates) == 0 && guide == nil {
		log.Info(NothingFoundMessage)
		return Result{ErrorMessage: NothingFoundMessage}
	}

	if p.repository == nil {
		log.Warn("persistence disabled, dropping records", "updates", len(updates))
		return Result{}
	}

	var (
		res    Result
		failed []string
	)
	for _, rec := range updates {
		inserted, err := p.repository.Insert(ctx, rec)
		switch {
		case err != nil:
			failed = append(failed, rec.ProjectName)
		case inserted:
			res.UpdatesSaved++
		default:
			res.Duplicates++
		}
	}

	guideFailed := false
	if guide != nil {
		inserted, err := p.repository.Insert(ctx, *guide)
		res.GuideSaved = inserted
		guideFailed = err != nil
	}

	switch {
	case len(failed) > 0:
		res.ErrorMessage = "partially saved; failed project names: " + strings.Join(failed, ", ")
	case guideFailed:
		res.ErrorMessage = "guide record could not be persisted"
	}

	if res.ErrorMessage != "" {
		p.alert(ctx, fmt.Sprintf("persistence failure for %s: %s", msg.Link, res.ErrorMessage))
	}

	log.Info("message processed",
		"updates_saved", res.UpdatesSaved,
		"guide_saved", res.GuideSaved,
		"duplicates", res.Duplicates,
		"error", res.ErrorMessage)

	return res
}

func (p *Pipeline) alert(ctx context.Context, text string) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Notify(ctx, text); err != nil {
		p.log().Warn("operator alert failed", "error", err)
	}
}

func (p *Pipeline) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return slog.Default()
}
