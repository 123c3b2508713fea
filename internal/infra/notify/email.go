package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"corpdata-commerce/internal/domain/ports/adapter"
)

var _ adapter.Mailer = (*HTTPMailer)(nil)

// HTTPMailer sends transactional email through a JSON send API.
type HTTPMailer struct {
	baseURL string
	apiKey  string
	from    string
	client  *http.Client
}

func NewHTTPMailer(baseURL, apiKey, from string) *HTTPMailer {
	return &HTTPMailer{
		baseURL: baseURL,
		apiKey:  apiKey,
		from:    from,
		client:  &http.Client{},
	}
}

func (m *HTTPMailer) SendEmail(ctx context.Context, to []string, subject, html string, cc ...string) error {
	requestData := map[string]interface{}{
		"from":      m.from,
		"to":        to,
		"cc":        cc,
		"subject":   subject,
		"html_body": html,
	}
	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", m.baseURL+"/send", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail send failed: status %d, body: %s", resp.StatusCode, string(body))
	}
	return nil
}
