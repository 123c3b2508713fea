package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/domain/ports/adapter"
)

const razorpayBaseURL = "https://api.razorpay.com/v1"

// RazorpayGateway implements adapter.PaymentGateway against the Razorpay
// Orders API. Razorpay mints its own order IDs, so the provider ID returned
// from CreateOrderSession must be persisted on the domain order.
type RazorpayGateway struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   razorpayBaseURL,
		client:    &http.Client{},
	}
}

func (g *RazorpayGateway) Name() string { return "razorpay" }

type razorpayOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"` // created | attempted | paid
	Error  struct {
		Description string `json:"description"`
	} `json:"error"`
}

type razorpayPaymentList struct {
	Items []struct {
		ID     string `json:"id"`
		Status string `json:"status"` // created|authorized|captured|refunded|failed
		Amount int64  `json:"amount"` // minor units
	} `json:"items"`
}

func (g *RazorpayGateway) CreateOrderSession(ctx context.Context, orderID string, amount decimal.Decimal, currency string, customer adapter.GatewayCustomer, returnURL string) (*adapter.OrderSession, error) {
	requestData := map[string]interface{}{
		// Razorpay amounts are integers in the currency's minor unit.
		"amount":   amount.Mul(decimal.NewFromInt(100)).IntPart(),
		"currency": currency,
		"receipt":  orderID,
		"notes": map[string]string{
			"customer_id":    customer.ID,
			"customer_email": customer.Email,
		},
	}

	body, status, err := g.do(ctx, "POST", "/orders", requestData)
	if err != nil {
		return nil, err
	}

	var response razorpayOrderResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}
	if status != http.StatusOK || response.ID == "" {
		return nil, fmt.Errorf("razorpay error: status %d, message: %s", status, response.Error.Description)
	}

	return &adapter.OrderSession{
		GatewayOrderID: response.ID,
		SessionID:      response.ID,
	}, nil
}

func (g *RazorpayGateway) FetchOrderStatus(ctx context.Context, gatewayOrderID string) (adapter.GatewayOrderStatus, error) {
	body, status, err := g.do(ctx, "GET", "/orders/"+gatewayOrderID, nil)
	if err != nil {
		return adapter.GatewayOrderUnknown, err
	}
	if status == http.StatusNotFound {
		return adapter.GatewayOrderUnknown, domain.ErrNotFound
	}
	if status != http.StatusOK {
		return adapter.GatewayOrderUnknown, fmt.Errorf("razorpay error: status %d, body: %s", status, string(body))
	}

	var response razorpayOrderResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return adapter.GatewayOrderUnknown, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	switch response.Status {
	case "paid":
		return adapter.GatewayOrderPaid, nil
	case "created", "attempted":
		return adapter.GatewayOrderActive, nil
	default:
		return adapter.GatewayOrderUnknown, nil
	}
}

func (g *RazorpayGateway) FetchPayments(ctx context.Context, gatewayOrderID string) ([]adapter.GatewayPayment, error) {
	body, status, err := g.do(ctx, "GET", "/orders/"+gatewayOrderID+"/payments", nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("razorpay error: status %d, body: %s", status, string(body))
	}

	var list razorpayPaymentList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	out := make([]adapter.GatewayPayment, 0, len(list.Items))
	for _, p := range list.Items {
		out = append(out, adapter.GatewayPayment{
			PaymentID: p.ID,
			Status:    normalizeRazorpayStatus(p.Status),
			Amount:    decimal.NewFromInt(p.Amount).Div(decimal.NewFromInt(100)),
		})
	}
	return out, nil
}

func normalizeRazorpayStatus(s string) string {
	switch s {
	case "captured":
		return adapter.GatewayPaymentSuccess
	case "failed":
		return "FAILED"
	default:
		return "PENDING"
	}
}

func (g *RazorpayGateway) do(ctx context.Context, method, path string, payload interface{}) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request data: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}
