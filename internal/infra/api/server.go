package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/domain/model"
	"corpdata-commerce/internal/domain/ports/adapter"
	"corpdata-commerce/internal/domain/ports/repository"
	"corpdata-commerce/internal/infra/metrics"
	"corpdata-commerce/internal/infra/redis"
	"corpdata-commerce/internal/usecase"
)

// Server is the public storefront and operator API.
type Server struct {
	cart     *usecase.CartCalculator
	checkout *usecase.CheckoutUseCase
	confirm  *usecase.PaymentConfirmUseCase
	admin    *usecase.AdminUseCase
	orders   repository.OrderRepository
	auth     *AuthManager
	limiter  *redis.RateLimiter
	rlLimit  int
	rlWindow time.Duration
	timeout  time.Duration
	log      *zerolog.Logger
}

func NewServer(
	cart *usecase.CartCalculator,
	checkout *usecase.CheckoutUseCase,
	confirm *usecase.PaymentConfirmUseCase,
	admin *usecase.AdminUseCase,
	orders repository.OrderRepository,
	auth *AuthManager,
	limiter *redis.RateLimiter,
	rlLimit int,
	rlWindow time.Duration,
	timeout time.Duration,
	logger *zerolog.Logger,
) *Server {
	compLog := logger.With().Str("component", "APIServer").Logger()
	return &Server{
		cart:     cart,
		checkout: checkout,
		confirm:  confirm,
		admin:    admin,
		orders:   orders,
		auth:     auth,
		limiter:  limiter,
		rlLimit:  rlLimit,
		rlWindow: rlWindow,
		timeout:  timeout,
		log:      &compLog,
	}
}

// Router builds the chi mux with the guard chain applied.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method("GET", "/metrics", promhttp.Handler())

	guard := func(h http.HandlerFunc) http.Handler {
		return Chain(h,
			TraceID(s.log),
			RequestLog(s.log),
			Recover(s.log),
			Timeout(s.timeout),
			RateLimit(s.limiter, s.rlLimit, s.rlWindow, s.log),
		)
	}
	adminGuard := func(h http.HandlerFunc) http.Handler {
		return Chain(h,
			TraceID(s.log),
			RequestLog(s.log),
			Recover(s.log),
			Timeout(s.timeout),
			AdminAuth(s.auth),
		)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Method("POST", "/cart/quote", guard(s.handleQuote))
		r.Method("POST", "/orders", guard(s.handlePlaceOrder))
		r.Method("GET", "/orders/{id}", guard(s.handleGetOrder))
		r.Method("POST", "/payments/confirm", guard(s.handleConfirm))
		r.Method("GET", "/payments/confirm", guard(s.handleConfirm))

		r.Route("/admin", func(r chi.Router) {
			r.Method("POST", "/coupons", adminGuard(s.handleCreateCoupon))
			r.Method("PATCH", "/coupons/{code}", adminGuard(s.handleToggleCoupon))
			r.Method("POST", "/services", adminGuard(s.handleSaveService))
			r.Method("GET", "/services", adminGuard(s.handleListServices))
		})
	})

	return r
}

// ---------------- request/response shapes ----------------

type quoteRequest struct {
	UserID     string           `json:"user_id"`
	Currency   string           `json:"currency"`
	CouponCode string           `json:"coupon_code,omitempty"`
	Items      []model.CartItem `json:"items"`
}

type quoteResponse struct {
	Items    []model.VerifiedOrderItem `json:"items"`
	Value    decimal.Decimal           `json:"value"`
	GST      decimal.Decimal           `json:"gst"`
	Discount decimal.Decimal           `json:"discount"`
	Total    decimal.Decimal           `json:"total"`
	Coupon   *model.AppliedCoupon      `json:"coupon,omitempty"`
}

type placeOrderRequest struct {
	UserID     string           `json:"user_id"`
	Currency   string           `json:"currency"`
	CouponCode string           `json:"coupon_code,omitempty"`
	ReturnURL  string           `json:"return_url"`
	Customer   customerPayload  `json:"customer"`
	Items      []model.CartItem `json:"items"`
}

type customerPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type placeOrderResponse struct {
	OrderID        string          `json:"order_id"`
	GatewayOrderID string          `json:"gateway_order_id"`
	SessionID      string          `json:"session_id"`
	PaymentLink    string          `json:"payment_link,omitempty"`
	Currency       string          `json:"currency"`
	Total          decimal.Decimal `json:"total"`
	Status         string          `json:"status"`
}

type confirmResponse struct {
	Message     string          `json:"message"`
	OrderStatus string          `json:"order_status"`
	PaymentID   string          `json:"payment_id,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// ---------------- handlers ----------------

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	totals, err := s.cart.Calculate(r.Context(), nil, req.Items, req.Currency, req.UserID, req.CouponCode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, quoteResponse{
		Items:    totals.Items,
		Value:    totals.Value,
		GST:      totals.GST,
		Discount: totals.Discount,
		Total:    totals.Total,
		Coupon:   totals.Coupon,
	})
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	customer := adapter.GatewayCustomer{
		ID:    req.UserID,
		Name:  req.Customer.Name,
		Email: req.Customer.Email,
		Phone: req.Customer.Phone,
	}
	res, err := s.checkout.PlaceOrder(r.Context(), req.UserID, customer, req.Items, req.Currency, req.CouponCode, req.ReturnURL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, placeOrderResponse{
		OrderID:        res.Order.ID,
		GatewayOrderID: res.Order.GatewayOrderID,
		SessionID:      res.Session.SessionID,
		PaymentLink:    res.Session.PaymentLink,
		Currency:       res.Order.Currency,
		Total:          res.Order.TotalPrice(),
		Status:         string(res.Order.Status),
	})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	o, err := s.orders.FindByID(r.Context(), nil, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, o)
}

// handleConfirm is the return-URL / webhook target. The gateway order ID is
// the only trusted input: status is always re-fetched from the provider.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	gatewayOrderID := r.URL.Query().Get("order_id")
	if gatewayOrderID == "" && r.Method == http.MethodPost {
		var body struct {
			OrderID string `json:"order_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			gatewayOrderID = body.OrderID
		}
	}
	if gatewayOrderID == "" {
		http.Error(w, "missing order_id", http.StatusBadRequest)
		return
	}

	start := time.Now()
	res, err := s.confirm.Confirm(r.Context(), gatewayOrderID, r.URL.Query().Get("user_id"))
	if err != nil {
		metrics.ObservePaymentConfirm("error", time.Since(start).Seconds())
		s.writeError(w, r, err)
		return
	}
	metrics.ObservePaymentConfirm(string(res.OrderStatus), time.Since(start).Seconds())
	s.writeJSON(w, http.StatusOK, confirmResponse{
		Message:     res.Message,
		OrderStatus: string(res.OrderStatus),
		PaymentID:   res.PaymentID,
		TotalAmount: res.TotalAmount,
	})
}

type createCouponRequest struct {
	Code                  string           `json:"code"`
	Type                  string           `json:"type"`
	Value                 decimal.Decimal  `json:"value"`
	MaxRedemptions        int              `json:"max_redemptions"`
	MaxRedemptionsPerUser int              `json:"max_redemptions_per_user"`
	ExpiresAt             *time.Time       `json:"expires_at,omitempty"`
	MinOrderValue         *decimal.Decimal `json:"min_order_value,omitempty"`
	ValidServices         []string         `json:"valid_services,omitempty"`
	ValidUsers            []string         `json:"valid_users,omitempty"`
	FirstTimeOnly         bool             `json:"first_time_only,omitempty"`
}

func (s *Server) handleCreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req createCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	c, err := s.admin.CreateCoupon(r.Context(), req.Code, model.DiscountType(req.Type), req.Value,
		req.MaxRedemptions, req.MaxRedemptionsPerUser, func(c *model.Coupon) {
			c.ExpiresAt = req.ExpiresAt
			c.MinOrderValue = req.MinOrderValue
			c.ValidServices = req.ValidServices
			c.ValidUsers = req.ValidUsers
			c.FirstTimeOnly = req.FirstTimeOnly
		})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleToggleCoupon(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	var body struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := s.admin.SetCouponActive(r.Context(), code, body.Active); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSaveService(w http.ResponseWriter, r *http.Request) {
	var entry model.ServiceCatalogEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if entry.ID == "" {
		http.Error(w, "missing service id", http.StatusBadRequest)
		return
	}
	if err := s.admin.SaveService(r.Context(), &entry); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	entries, err := s.admin.ListServices(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

// ---------------- helpers ----------------

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrCouponNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrAlreadyProcessed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrUnknownServiceType),
		errors.Is(err, domain.ErrUnpricedServiceType),
		errors.Is(err, domain.ErrMissingPricing),
		errors.Is(err, domain.ErrZoneNotCovered),
		errors.Is(err, domain.ErrNoBulkTier),
		errors.Is(err, domain.ErrUnfulfillableItem),
		errors.Is(err, domain.ErrCouponInactive),
		errors.Is(err, domain.ErrCouponExpired),
		errors.Is(err, domain.ErrCouponExhausted),
		errors.Is(err, domain.ErrCouponMinOrderValue),
		errors.Is(err, domain.ErrCouponNotFirstOrder),
		errors.Is(err, domain.ErrCouponUserNotValid),
		errors.Is(err, domain.ErrCouponUserExhausted),
		errors.Is(err, domain.ErrCouponServiceScope):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
