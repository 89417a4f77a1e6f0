package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kaivancodes/TrustportMobileWallet/pkg/config"
	pkgerrors "github.com/kaivancodes/TrustportMobileWallet/pkg/errors"
)

// SMSGateway posts messages to an Infobip-style HTTP SMS API.
type SMSGateway struct {
	baseURL string
	apiKey  string
	sender  string
	client  *http.Client
}

func NewSMSGateway(cfg config.SMSConfig) *SMSGateway {
	return &SMSGateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		sender:  cfg.Sender,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type smsRequest struct {
	Messages []smsMessage `json:"messages"`
}

type smsMessage struct {
	Destinations []smsDestination `json:"destinations"`
	From         string           `json:"from"`
	Text         string           `json:"text"`
}

type smsDestination struct {
	To string `json:"to"`
}

// SendSMS delivers one text message. Any non-2xx response counts as a
// delivery failure; the caller decides whether that aborts anything.
func (g *SMSGateway) SendSMS(ctx context.Context, destination, text string) error {
	payload := smsRequest{
		Messages: []smsMessage{{
			Destinations: []smsDestination{{To: normalizePhone(destination)}},
			From:         g.sender,
			Text:         text,
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to encode sms payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/sms/2/text/advanced", bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(err, "failed to build sms request")
	}
	req.Header.Set("Authorization", "App "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return pkgerrors.Wrap(err, "sms gateway unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: gateway returned %d: %s", pkgerrors.ErrDeliveryFailed, resp.StatusCode, string(detail))
	}
	return nil
}

// normalizePhone strips formatting and ensures a leading plus sign.
func normalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return "+" + digits.String()
}
