package accounting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"corpdata-commerce/internal/domain/model"
	"corpdata-commerce/internal/domain/ports/adapter"
)

const zohoTokenURL = "https://accounts.zoho.in/oauth/v2/token"

var _ adapter.AccountingSync = (*ZohoBooksClient)(nil)

// ZohoBooksClient creates invoices for paid orders in Zoho Books. Access
// tokens are minted from the refresh token and cached until shortly before
// expiry.
type ZohoBooksClient struct {
	baseURL        string
	organizationID string
	refreshToken   string
	clientID       string
	clientSecret   string
	client         *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewZohoBooksClient(baseURL, organizationID, refreshToken, clientID, clientSecret string) *ZohoBooksClient {
	return &ZohoBooksClient{
		baseURL:        baseURL,
		organizationID: organizationID,
		refreshToken:   refreshToken,
		clientID:       clientID,
		clientSecret:   clientSecret,
		client:         &http.Client{},
	}
}

type zohoInvoiceResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Invoice struct {
		InvoiceID     string `json:"invoice_id"`
		InvoiceNumber string `json:"invoice_number"`
	} `json:"invoice"`
}

func (z *ZohoBooksClient) CreateInvoice(ctx context.Context, o *model.Order) (string, error) {
	token, err := z.token(ctx)
	if err != nil {
		return "", err
	}

	lineItems := make([]map[string]interface{}, 0, len(o.Items))
	for _, it := range o.Items {
		lineItems = append(lineItems, map[string]interface{}{
			"name":     it.ServiceName,
			"rate":     it.UnitPrice.InexactFloat64(),
			"quantity": it.Quantity,
		})
	}
	requestData := map[string]interface{}{
		"reference_number": o.ID,
		"currency_code":    o.Currency,
		"line_items":       lineItems,
		"notes":            fmt.Sprintf("Order %s", o.ID),
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request data: %w", err)
	}

	u := fmt.Sprintf("%s/invoices?organization_id=%s", z.baseURL, z.organizationID)
	req, err := http.NewRequestWithContext(ctx, "POST", u, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Zoho-oauthtoken "+token)

	resp, err := z.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var response zohoInvoiceResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}
	if resp.StatusCode >= 300 || response.Invoice.InvoiceNumber == "" {
		return "", fmt.Errorf("zoho books error: status %d, code %d, message: %s", resp.StatusCode, response.Code, response.Message)
	}
	return response.Invoice.InvoiceNumber, nil
}

// token returns a cached access token, refreshing when within a minute of expiry.
func (z *ZohoBooksClient) token(ctx context.Context) (string, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.accessToken != "" && time.Now().Before(z.tokenExpiry.Add(-time.Minute)) {
		return z.accessToken, nil
	}

	form := url.Values{}
	form.Set("refresh_token", z.refreshToken)
	form.Set("client_id", z.clientID)
	form.Set("client_secret", z.clientSecret)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, "POST", zohoTokenURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := z.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		Error       string `json:"error"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("zoho token refresh failed: %s", tokenResp.Error)
	}

	z.accessToken = tokenResp.AccessToken
	z.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	return z.accessToken, nil
}
