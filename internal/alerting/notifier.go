package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"consumer-flex-app/internal/dfs"
)

// EventAlert 描述一个新观测到的 DFS 事件日期。
type EventAlert struct {
	Date      string
	EventType dfs.EventType
}

// Notification 封装新事件告警上下文。
type Notification struct {
	Events        []EventAlert
	LatestDate    string
	Providers     int
	ProcuredMWh   dfs.Float
	SettledMWh    dfs.Float
	TotalEvents   int
	LiveEvents    int
	TestEvents    int
	AdditionalMsg string
}

// Notifier 定义告警输送接口。
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier 通过 Telegram Bot API 推送消息。
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier 构造 Telegram 告警器。
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify 调用 sendMessage API 推送文本。
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram 响应码异常: %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram 返回 ok=false")
		}
	}

	n.logger.Info().Int("new_dates", len(note.Events)).
		Str("latest", note.LatestDate).
		Msg("告警已发送 (Telegram)")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[DFS Event Alert]\n")
	if len(note.Events) > 0 {
		labels := make([]string, 0, len(note.Events))
		for _, event := range note.Events {
			labels = append(labels, fmt.Sprintf("%s (%s)", event.Date, event.EventType))
		}
		builder.WriteString(fmt.Sprintf("New event dates: %s\n", strings.Join(labels, ", ")))
	}
	if note.LatestDate != "" {
		builder.WriteString(fmt.Sprintf("Latest event: %s\n", note.LatestDate))
	}
	if note.Providers > 0 {
		builder.WriteString(fmt.Sprintf("Providers: %d\n", note.Providers))
	}
	builder.WriteString(fmt.Sprintf("Procured: %s MWh\n", formatMWh(note.ProcuredMWh)))
	builder.WriteString(fmt.Sprintf("Settled: %s MWh\n", formatMWh(note.SettledMWh)))
	if note.TotalEvents > 0 {
		builder.WriteString(fmt.Sprintf("Events so far: %d (%d live / %d test)\n", note.TotalEvents, note.LiveEvents, note.TestEvents))
	}
	if note.AdditionalMsg != "" {
		builder.WriteString(note.AdditionalMsg)
	}
	return builder.String()
}

// formatMWh keeps undefined values readable; settlement lags events, so
// fresh dates legitimately carry no settled volume yet.
func formatMWh(v dfs.Float) string {
	if v.IsNaN() {
		return "n/a"
	}
	return strconv.FormatFloat(v.Float64(), 'f', 1, 64)
}

var _ Notifier = (*TelegramNotifier)(nil)
