package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"printshop/internal/logger"
	"printshop/internal/notify"
)

type Config struct {
	AccountSID string
	AuthToken  string
	From       string // whatsapp:を付けても付けなくてもよい
	To         string
	BaseURL    string
	Timeout    time.Duration
}

// Twilio Messages APIでWhatsAppに注文サマリーを送る
type WhatsAppNotifier struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

func NewWhatsAppNotifier(log *logger.Logger, cfg Config) (*WhatsAppNotifier, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.AccountSID = strings.TrimSpace(cfg.AccountSID)
	cfg.AuthToken = strings.TrimSpace(cfg.AuthToken)
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("missing TWILIO_ACCOUNT_SID or TWILIO_AUTH_TOKEN")
	}
	if strings.TrimSpace(cfg.From) == "" || strings.TrimSpace(cfg.To) == "" {
		return nil, fmt.Errorf("twilio: sender and recipient required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.twilio.com/2010-04-01"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &WhatsAppNotifier{
		log:        log.With("client", "TwilioWhatsApp"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type HTTPError struct {
	StatusCode int
	Body       string
	APIError   *apiError
}

func (e *HTTPError) Error() string {
	if e.APIError != nil && strings.TrimSpace(e.APIError.Message) != "" {
		return fmt.Sprintf("twilio http %d: %s (code=%d)", e.StatusCode, e.APIError.Message, e.APIError.Code)
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	return fmt.Sprintf("twilio http %d: %s", e.StatusCode, msg)
}

type message struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

func (n *WhatsAppNotifier) Notify(ctx context.Context, evt notify.OrderCreated) error {
	form := url.Values{}
	form.Set("To", whatsappAddr(n.cfg.To))
	form.Set("From", whatsappAddr(n.cfg.From))
	form.Set("Body", evt.Summary())

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", n.cfg.BaseURL, n.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(n.cfg.AccountSID, n.cfg.AuthToken)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && strings.TrimSpace(ae.Message) != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw), APIError: &ae}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var m message
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("twilio decode error: %w", err)
	}
	n.log.Info("whatsapp order summary sent", "order_id", evt.OrderID, "sid", m.SID, "status", m.Status)
	return nil
}

func whatsappAddr(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
