package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultPlunkAPIURL = "https://api.useplunk.com/v1/send"

type plunkSendBody struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	From    string `json:"from,omitempty"`
	Reply   string `json:"reply,omitempty"`
}

// sendViaPlunk performs the HTTP request to the Plunk API.
func (m *Mailer) sendViaPlunk(ctx context.Context, to, subject, body string) error {
	if m.cfg.PlunkAPIKey == "" {
		return fmt.Errorf("plunk not configured: missing API key")
	}
	apiURL := m.cfg.PlunkAPIURL
	if apiURL == "" {
		apiURL = defaultPlunkAPIURL
	}

	payload := plunkSendBody{
		To:      to,
		Subject: subject,
		Body:    body,
		From:    m.cfg.PlunkFrom,
		Reply:   m.cfg.ReplyTo,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.cfg.PlunkAPIKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if msg, readErr := io.ReadAll(resp.Body); readErr == nil && len(msg) > 0 {
			return fmt.Errorf("plunk send failed: status=%d body=%s", resp.StatusCode, msg)
		}
		return fmt.Errorf("plunk send failed: status=%d", resp.StatusCode)
	}
	return nil
}
