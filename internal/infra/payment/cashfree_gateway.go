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

const cashfreeAPIVersion = "2022-09-01"

// CashfreeGateway implements adapter.PaymentGateway using direct HTTP calls
// against the Cashfree PG API. The domain order ID doubles as the provider
// order ID, so reconciliation needs no mapping table.
type CashfreeGateway struct {
	clientID     string
	clientSecret string
	sandbox      bool
	baseURL      string
	client       *http.Client
}

func NewCashfreeGateway(clientID, clientSecret string, sandbox bool) *CashfreeGateway {
	var baseURL string
	switch sandbox {
	case true:
		baseURL = "https://sandbox.cashfree.com/pg"
	case false:
		baseURL = "https://api.cashfree.com/pg"
	}

	return &CashfreeGateway{
		clientID:     clientID,
		clientSecret: clientSecret,
		sandbox:      sandbox,
		baseURL:      baseURL,
		client:       &http.Client{},
	}
}

func (g *CashfreeGateway) Name() string { return "cashfree" }

type cashfreeOrderResponse struct {
	CfOrderID        string `json:"cf_order_id"`
	OrderID          string `json:"order_id"`
	OrderStatus      string `json:"order_status"`
	PaymentSessionID string `json:"payment_session_id"`
	OrderMeta        struct {
		ReturnURL string `json:"return_url"`
	} `json:"order_meta"`
	Message string `json:"message"`
}

type cashfreePaymentEntry struct {
	CfPaymentID   json.Number `json:"cf_payment_id"`
	PaymentStatus string      `json:"payment_status"`
	PaymentAmount float64     `json:"payment_amount"`
}

func (g *CashfreeGateway) CreateOrderSession(ctx context.Context, orderID string, amount decimal.Decimal, currency string, customer adapter.GatewayCustomer, returnURL string) (*adapter.OrderSession, error) {
	requestData := map[string]interface{}{
		"order_id":       orderID,
		"order_amount":   amount.InexactFloat64(),
		"order_currency": currency,
		"customer_details": map[string]string{
			"customer_id":    customer.ID,
			"customer_name":  customer.Name,
			"customer_email": customer.Email,
			"customer_phone": customer.Phone,
		},
		"order_meta": map[string]string{
			"return_url": returnURL,
		},
	}

	body, status, err := g.do(ctx, "POST", "/orders", requestData)
	if err != nil {
		return nil, err
	}

	var response cashfreeOrderResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}
	if status != http.StatusOK || response.PaymentSessionID == "" {
		return nil, fmt.Errorf("cashfree error: status %d, message: %s", status, response.Message)
	}

	return &adapter.OrderSession{
		GatewayOrderID: response.OrderID,
		SessionID:      response.PaymentSessionID,
	}, nil
}

func (g *CashfreeGateway) FetchOrderStatus(ctx context.Context, gatewayOrderID string) (adapter.GatewayOrderStatus, error) {
	body, status, err := g.do(ctx, "GET", "/orders/"+gatewayOrderID, nil)
	if err != nil {
		return adapter.GatewayOrderUnknown, err
	}
	if status == http.StatusNotFound {
		return adapter.GatewayOrderUnknown, domain.ErrNotFound
	}
	if status != http.StatusOK {
		return adapter.GatewayOrderUnknown, fmt.Errorf("cashfree error: status %d, body: %s", status, string(body))
	}

	var response cashfreeOrderResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return adapter.GatewayOrderUnknown, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	switch response.OrderStatus {
	case "PAID":
		return adapter.GatewayOrderPaid, nil
	case "ACTIVE":
		return adapter.GatewayOrderActive, nil
	case "EXPIRED", "TERMINATED":
		return adapter.GatewayOrderExpired, nil
	default:
		return adapter.GatewayOrderUnknown, nil
	}
}

func (g *CashfreeGateway) FetchPayments(ctx context.Context, gatewayOrderID string) ([]adapter.GatewayPayment, error) {
	body, status, err := g.do(ctx, "GET", "/orders/"+gatewayOrderID+"/payments", nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("cashfree error: status %d, body: %s", status, string(body))
	}

	var entries []cashfreePaymentEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	out := make([]adapter.GatewayPayment, 0, len(entries))
	for _, e := range entries {
		out = append(out, adapter.GatewayPayment{
			PaymentID: e.CfPaymentID.String(),
			Status:    normalizeCashfreeStatus(e.PaymentStatus),
			Amount:    decimal.NewFromFloat(e.PaymentAmount),
		})
	}
	return out, nil
}

func normalizeCashfreeStatus(s string) string {
	switch s {
	case "SUCCESS":
		return adapter.GatewayPaymentSuccess
	case "FAILED", "USER_DROPPED", "CANCELLED", "VOID":
		return "FAILED"
	default:
		return "PENDING"
	}
}

func (g *CashfreeGateway) do(ctx context.Context, method, path string, payload interface{}) ([]byte, int, error) {
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
	req.Header.Set("x-api-version", cashfreeAPIVersion)
	req.Header.Set("x-client-id", g.clientID)
	req.Header.Set("x-client-secret", g.clientSecret)

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
