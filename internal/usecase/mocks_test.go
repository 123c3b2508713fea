package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/domain/model"
	"corpdata-commerce/internal/domain/ports/adapter"
	"corpdata-commerce/internal/domain/ports/repository"
)

func newLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

type noTx struct{}

type mockTxManager struct{ beginErr error }

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.beginErr != nil {
		return m.beginErr
	}
	return fn(ctx, noTx{})
}

// ---------------- catalog ----------------

type memCatalogRepo struct {
	byID map[string]*model.ServiceCatalogEntry
}

func newMemCatalogRepo() *memCatalogRepo {
	return &memCatalogRepo{byID: map[string]*model.ServiceCatalogEntry{}}
}

func (m *memCatalogRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ServiceCatalogEntry, error) {
	e, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memCatalogRepo) Save(ctx context.Context, tx repository.Tx, entry *model.ServiceCatalogEntry) error {
	cp := *entry
	m.byID[entry.ID] = &cp
	return nil
}

func (m *memCatalogRepo) List(ctx context.Context, tx repository.Tx) ([]*model.ServiceCatalogEntry, error) {
	out := make([]*model.ServiceCatalogEntry, 0, len(m.byID))
	for _, e := range m.byID {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

// ---------------- coupons ----------------

type memCouponRepo struct {
	byCode     map[string]*model.Coupon
	increments []string // "code:userID"
}

func newMemCouponRepo() *memCouponRepo {
	return &memCouponRepo{byCode: map[string]*model.Coupon{}}
}

func (m *memCouponRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Coupon, error) {
	c, ok := m.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCouponRepo) Save(ctx context.Context, tx repository.Tx, c *model.Coupon) error {
	cp := *c
	m.byCode[c.Code] = &cp
	return nil
}

func (m *memCouponRepo) IncrementRedemption(ctx context.Context, tx repository.Tx, code, userID string) error {
	c, ok := m.byCode[code]
	if !ok {
		return domain.ErrCouponNotFound
	}
	c.Redemptions++
	c.UsedBy = append(c.UsedBy, userID)
	m.increments = append(m.increments, code+":"+userID)
	return nil
}

func (m *memCouponRepo) SetActive(ctx context.Context, tx repository.Tx, code string, active bool) error {
	c, ok := m.byCode[code]
	if !ok {
		return domain.ErrCouponNotFound
	}
	c.Active = active
	return nil
}

// ---------------- orders ----------------

type memOrderRepo struct {
	byID          map[string]*model.Order
	paidByUser    map[string]int
	paidByCoupon  map[string]int // "userID:code"
	saveErr       error
	uninvoicedIDs []string
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		byID:         map[string]*model.Order{},
		paidByUser:   map[string]int{},
		paidByCoupon: map[string]int{},
	}
}

func (m *memOrderRepo) Create(ctx context.Context, tx repository.Tx, o *model.Order) error {
	if _, ok := m.byID[o.ID]; ok {
		return domain.ErrConflict
	}
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *memOrderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderRepo) FindByGatewayOrderID(ctx context.Context, tx repository.Tx, gatewayOrderID string) (*model.Order, error) {
	for _, o := range m.byID {
		if o.GatewayOrderID == gatewayOrderID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memOrderRepo) Save(ctx context.Context, tx repository.Tx, o *model.Order) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.byID[o.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *memOrderRepo) CountPaidByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	return m.paidByUser[userID], nil
}

func (m *memOrderRepo) CountPaidByUserAndCoupon(ctx context.Context, tx repository.Tx, userID, couponCode string) (int, error) {
	return m.paidByCoupon[userID+":"+couponCode], nil
}

func (m *memOrderRepo) ListStaleUnsettled(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Order, error) {
	var out []*model.Order
	for _, o := range m.byID {
		switch o.Status {
		case model.OrderStatusCreated, model.OrderStatusPending, model.OrderStatusUnknown:
			if o.CreatedAt.Before(olderThan) {
				cp := *o
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (m *memOrderRepo) ListPaidUninvoiced(ctx context.Context, tx repository.Tx, limit int) ([]*model.Order, error) {
	var out []*model.Order
	for _, id := range m.uninvoicedIDs {
		o, ok := m.byID[id]
		if !ok || o.InvoiceNumber != nil {
			continue
		}
		cp := *o
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memOrderRepo) SetInvoice(ctx context.Context, tx repository.Tx, orderID, invoiceNumber string, invoicedAt time.Time) error {
	o, ok := m.byID[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.InvoiceNumber = &invoiceNumber
	o.InvoicedAt = &invoicedAt
	return nil
}

// ---------------- subscriptions ----------------

type memSubRepo struct {
	byOrderID map[string]*model.Subscription
	active    []*model.Subscription
	// forceConflict makes the next Create fail with ErrConflict after
	// registering the subscription, simulating a concurrent winner.
	forceConflict bool
}

func newMemSubRepo() *memSubRepo {
	return &memSubRepo{byOrderID: map[string]*model.Subscription{}}
}

func (m *memSubRepo) Create(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if _, ok := m.byOrderID[s.OrderID]; ok {
		return domain.ErrConflict
	}
	if m.forceConflict {
		m.forceConflict = false
		winner := *s
		winner.ID = "winner-" + s.ID
		m.byOrderID[s.OrderID] = &winner
		return domain.ErrConflict
	}
	cp := *s
	m.byOrderID[s.OrderID] = &cp
	return nil
}

func (m *memSubRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.Subscription, error) {
	s, ok := m.byOrderID[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSubRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	var out []*model.Subscription
	for _, s := range m.byOrderID {
		if s.UserID == userID && s.Status == model.SubscriptionStatusActive {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSubRepo) ListActive(ctx context.Context, tx repository.Tx, limit, offset int) ([]*model.Subscription, error) {
	if offset >= len(m.active) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.active) {
		end = len(m.active)
	}
	return m.active[offset:end], nil
}

// ---------------- credits / unlocks ----------------

type memCreditRepo struct {
	grants     []*model.CreditGrant
	consumed   map[string]int // "userID:type"
	consumeErr error
}

func newMemCreditRepo() *memCreditRepo {
	return &memCreditRepo{consumed: map[string]int{}}
}

func (m *memCreditRepo) Grant(ctx context.Context, tx repository.Tx, g *model.CreditGrant) error {
	cp := *g
	m.grants = append(m.grants, &cp)
	return nil
}

func (m *memCreditRepo) ConsumeOne(ctx context.Context, tx repository.Tx, userID string, typ model.CreditType) error {
	if m.consumeErr != nil {
		return m.consumeErr
	}
	for _, g := range m.grants {
		if g.UserID == userID && g.Type == typ && g.Remaining > 0 {
			g.Remaining--
			m.consumed[userID+":"+string(typ)]++
			return nil
		}
	}
	return domain.ErrInsufficientCredits
}

type memUnlockRepo struct {
	jobs     []*model.UnlockJob
	unlocked map[string]*model.UnlockedCompany // "userID:companyID"
}

func newMemUnlockRepo() *memUnlockRepo {
	return &memUnlockRepo{unlocked: map[string]*model.UnlockedCompany{}}
}

func (m *memUnlockRepo) CreateJob(ctx context.Context, tx repository.Tx, j *model.UnlockJob) error {
	cp := *j
	m.jobs = append(m.jobs, &cp)
	return nil
}

func (m *memUnlockRepo) CreateUnlockedCompany(ctx context.Context, tx repository.Tx, u *model.UnlockedCompany) error {
	key := u.UserID + ":" + u.CompanyID
	if _, ok := m.unlocked[key]; ok {
		return domain.ErrConflict
	}
	cp := *u
	m.unlocked[key] = &cp
	return nil
}

// ---------------- outbox ----------------

type memOutboxRepo struct {
	events []*model.OutboxEvent
}

func newMemOutboxRepo() *memOutboxRepo { return &memOutboxRepo{} }

func (m *memOutboxRepo) Enqueue(ctx context.Context, tx repository.Tx, e *model.OutboxEvent) error {
	cp := *e
	m.events = append(m.events, &cp)
	return nil
}

func (m *memOutboxRepo) ListPending(ctx context.Context, tx repository.Tx, limit int) ([]*model.OutboxEvent, error) {
	var out []*model.OutboxEvent
	for _, e := range m.events {
		if e.Status == model.OutboxStatusPending {
			cp := *e
			out = append(out, &cp)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memOutboxRepo) MarkSent(ctx context.Context, tx repository.Tx, id string) error {
	for _, e := range m.events {
		if e.ID == id {
			e.Status = model.OutboxStatusSent
			e.Attempts++
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memOutboxRepo) MarkFailed(ctx context.Context, tx repository.Tx, id string) error {
	for _, e := range m.events {
		if e.ID == id {
			e.Status = model.OutboxStatusFailed
			e.Attempts++
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memOutboxRepo) byType(typ model.OutboxEventType) []*model.OutboxEvent {
	var out []*model.OutboxEvent
	for _, e := range m.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// ---------------- gateway ----------------

type mockGateway struct {
	name       string
	status     adapter.GatewayOrderStatus
	statusErr  error
	payments   []adapter.GatewayPayment
	payErr     error
	session    *adapter.OrderSession
	sessionErr error

	statusCalls int
}

func (g *mockGateway) Name() string {
	if g.name == "" {
		return "cashfree"
	}
	return g.name
}

func (g *mockGateway) CreateOrderSession(ctx context.Context, orderID string, amount decimal.Decimal, currency string, customer adapter.GatewayCustomer, returnURL string) (*adapter.OrderSession, error) {
	if g.sessionErr != nil {
		return nil, g.sessionErr
	}
	if g.session != nil {
		return g.session, nil
	}
	return &adapter.OrderSession{GatewayOrderID: "gw-" + orderID, SessionID: "sess-" + orderID}, nil
}

func (g *mockGateway) FetchOrderStatus(ctx context.Context, gatewayOrderID string) (adapter.GatewayOrderStatus, error) {
	g.statusCalls++
	if g.statusErr != nil {
		return adapter.GatewayOrderUnknown, g.statusErr
	}
	return g.status, nil
}

func (g *mockGateway) FetchPayments(ctx context.Context, gatewayOrderID string) ([]adapter.GatewayPayment, error) {
	if g.payErr != nil {
		return nil, g.payErr
	}
	return g.payments, nil
}

// ---------------- notification adapters ----------------

type mockMailer struct {
	sent []string // recipients
	err  error
}

func (m *mockMailer) SendEmail(ctx context.Context, to []string, subject, html string, cc ...string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to...)
	return nil
}

type mockWhatsApp struct {
	sent []string
	err  error
}

func (m *mockWhatsApp) SendTemplate(ctx context.Context, phones []string, template string, vars map[string]string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, phones...)
	return nil
}

type mockAudience struct {
	tags map[string]string // email -> last tag
	err  error
}

func newMockAudience() *mockAudience { return &mockAudience{tags: map[string]string{}} }

func (m *mockAudience) TagContact(ctx context.Context, email, tag string) error {
	if m.err != nil {
		return m.err
	}
	m.tags[email] = tag
	return nil
}

type mockAccounting struct {
	invoiced map[string]string // orderID -> invoice number
	err      error
	calls    int
}

func newMockAccounting() *mockAccounting { return &mockAccounting{invoiced: map[string]string{}} }

func (m *mockAccounting) CreateInvoice(ctx context.Context, o *model.Order) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	num := fmt.Sprintf("INV-%04d", m.calls)
	m.invoiced[o.ID] = num
	return num, nil
}
