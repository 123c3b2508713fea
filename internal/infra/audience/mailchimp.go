package audience

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"corpdata-commerce/internal/domain/ports/adapter"
)

var _ adapter.AudienceSync = (*MailchimpClient)(nil)

// MailchimpClient tags contacts in a Mailchimp audience list. The contact is
// upserted first so tagging never fails on a missing member.
type MailchimpClient struct {
	apiKey  string
	listID  string
	baseURL string
	client  *http.Client
}

func NewMailchimpClient(apiKey, server, listID string) *MailchimpClient {
	return &MailchimpClient{
		apiKey:  apiKey,
		listID:  listID,
		baseURL: fmt.Sprintf("https://%s.api.mailchimp.com/3.0", server),
		client:  &http.Client{},
	}
}

func (m *MailchimpClient) TagContact(ctx context.Context, email, tag string) error {
	hash := subscriberHash(email)

	upsert := map[string]interface{}{
		"email_address": email,
		"status_if_new": "subscribed",
	}
	if err := m.do(ctx, "PUT", fmt.Sprintf("/lists/%s/members/%s", m.listID, hash), upsert); err != nil {
		return err
	}

	tags := map[string]interface{}{
		"tags": []map[string]string{{"name": tag, "status": "active"}},
	}
	return m.do(ctx, "POST", fmt.Sprintf("/lists/%s/members/%s/tags", m.listID, hash), tags)
}

// subscriberHash is the MD5 of the lowercased email, per the Mailchimp API.
func subscriberHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(email)))
	return hex.EncodeToString(sum[:])
}

func (m *MailchimpClient) do(ctx context.Context, method, path string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("anystring", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// The tags endpoint returns 204; member upsert returns 200.
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mailchimp error: status %d, body: %s", resp.StatusCode, string(body))
	}
	return nil
}
