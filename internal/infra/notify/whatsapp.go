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

var _ adapter.WhatsAppSender = (*WhatsAppClient)(nil)

// WhatsAppClient sends pre-approved template messages through a WhatsApp
// business API provider.
type WhatsAppClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewWhatsAppClient(baseURL, apiKey string) *WhatsAppClient {
	return &WhatsAppClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

// SendTemplate sends the template to every phone; the first failure aborts.
func (w *WhatsAppClient) SendTemplate(ctx context.Context, phones []string, template string, vars map[string]string) error {
	for _, phone := range phones {
		if err := w.sendOne(ctx, phone, template, vars); err != nil {
			return err
		}
	}
	return nil
}

func (w *WhatsAppClient) sendOne(ctx context.Context, phone, template string, vars map[string]string) error {
	requestData := map[string]interface{}{
		"to":       phone,
		"template": template,
		"vars":     vars,
	}
	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.baseURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", w.apiKey)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp send failed: status %d, body: %s", resp.StatusCode, string(body))
	}
	return nil
}
