package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ChannelScanner/internal/domain"
	"ChannelScanner/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Source long-polls the bot API for channel posts and hands them to the
// pipeline one at a time, in arrival order.
type Source struct {
	botToken    string
	apiBase     string
	pollTimeout int
	offset      int64
	client      *http.Client
	logger      *slog.Logger
}

var _ ports.MessageSource = (*Source)(nil)

// NewSource registers the bot token and poll timeout (seconds).
func NewSource(botToken string, pollTimeout int, logger *slog.Logger) *Source {
	if pollTimeout <= 0 {
		pollTimeout = 25
	}
	return &Source{
		botToken:    botToken,
		apiBase:     defaultAPIBase,
		pollTimeout: pollTimeout,
		client:      &http.Client{Timeout: time.Duration(pollTimeout+10) * time.Second},
		logger:      logger,
	}
}

type update struct {
	UpdateID    int64 `json:"update_id"`
	ChannelPost *post `json:"channel_post"`
}

type post struct {
	MessageID int64  `json:"message_id"`
	Date      int64  `json:"date"`
	Text      string `json:"text"`
	Chat      struct {
		ID       int64  `json:"id"`
		Title    string `json:"title"`
		Username string `json:"username"`
	} `json:"chat"`
}

type getUpdatesResponse struct {
	OK     bool     `json:"ok"`
	Result []update `json:"result"`
}

// Listen polls until ctx is done. Poll errors are logged and retried on the
// next cycle rather than tearing the listener down.
func (s *Source) Listen(ctx context.Context, handle func(domain.RawMessage)) error {
	if s.botToken == "" {
		return fmt.Errorf("telegram source misconfigured: empty bot token")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := s.poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("poll failed, retrying next cycle", "error", err)
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= s.offset {
				s.offset = u.UpdateID + 1
			}
			if u.ChannelPost == nil {
				continue
			}
			handle(normalizePost(*u.ChannelPost))
		}
	}
}

func (s *Source) poll(ctx context.Context) ([]update, error) {
	endpoint := fmt.Sprintf("%s/bot%s/getUpdates", s.apiBase, s.botToken)
	form := url.Values{}
	form.Set("timeout", strconv.Itoa(s.pollTimeout))
	form.Set("offset", strconv.FormatInt(s.offset, 10))
	form.Set("allowed_updates", `["channel_post"]`)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram error: %s", resp.Status)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var decoded getUpdatesResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !decoded.OK {
		return nil, fmt.Errorf("telegram responded not ok")
	}

	return decoded.Result, nil
}

// normalizePost converts a bot-API channel post into a RawMessage: channel
// title cleanup, canonical permalink, media placeholder for empty text.
func normalizePost(p post) domain.RawMessage {
	channel := strings.TrimSpace(strings.ReplaceAll(p.Chat.Title, "\n", " "))
	if channel == "" {
		channel = strconv.FormatInt(p.Chat.ID, 10)
	}

	text := p.Text
	if text == "" {
		text = domain.MediaPlaceholder
	}

	return domain.RawMessage{
		Text:      text,
		Channel:   channel,
		Timestamp: time.Unix(p.Date, 0).UTC(),
		Link:      permalink(p),
	}
}

func permalink(p post) string {
	if p.Chat.Username != "" {
		return fmt.Sprintf("https://t.me/%s/%d", p.Chat.Username, p.MessageID)
	}
	// Private channels: bot API ids carry a -100 prefix that t.me/c links drop.
	id := strconv.FormatInt(p.Chat.ID, 10)
	id = strings.TrimPrefix(id, "-100")
	id = strings.TrimPrefix(id, "-")
	return fmt.Sprintf("https://t.me/c/%s/%d", id, p.MessageID)
}
