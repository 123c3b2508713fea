package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"corpdata-commerce/internal/domain/model"
)

func TestSyncSessionTracksOutcomes(t *testing.T) {
	s := NewSyncSession()
	if s.Seen("a") {
		t.Error("fresh session reports key as seen")
	}
	s.MarkSynced("a")
	s.MarkFailed("b")
	if !s.Seen("a") || !s.Seen("b") {
		t.Error("marked keys not reported as seen")
	}
	if s.Synced != 1 || s.Failed != 1 {
		t.Errorf("counters = %d/%d, want 1/1", s.Synced, s.Failed)
	}
}

func TestSyncInvoicesSkipsFailedWithoutLooping(t *testing.T) {
	orders := newMemOrderRepo()
	for _, id := range []string{"o1", "o2"} {
		o := subscriptionOrder(id)
		o.Status = model.OrderStatusPaid
		orders.byID[id] = o
		orders.uninvoicedIDs = append(orders.uninvoicedIDs, id)
	}

	books := newMockAccounting()
	uc := NewAccountingSyncUseCase(orders, books, newLogger())
	sess := NewSyncSession()
	if err := uc.SyncInvoices(context.Background(), sess, 10, time.Millisecond); err != nil {
		t.Fatalf("SyncInvoices: %v", err)
	}
	if sess.Synced != 2 || sess.Failed != 0 {
		t.Errorf("counters = %d/%d, want 2/0", sess.Synced, sess.Failed)
	}
	for _, id := range []string{"o1", "o2"} {
		if orders.byID[id].InvoiceNumber == nil {
			t.Errorf("order %s missing invoice number", id)
		}
	}
}

func TestSyncInvoicesFailedOrderDoesNotSpin(t *testing.T) {
	orders := newMemOrderRepo()
	o := subscriptionOrder("o1")
	o.Status = model.OrderStatusPaid
	orders.byID["o1"] = o
	orders.uninvoicedIDs = []string{"o1"}

	books := newMockAccounting()
	books.err = errors.New("books api unavailable")
	uc := NewAccountingSyncUseCase(orders, books, newLogger())
	sess := NewSyncSession()

	done := make(chan error, 1)
	go func() { done <- uc.SyncInvoices(context.Background(), sess, 10, time.Millisecond) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("SyncInvoices: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sync loops forever on a persistently failing order")
	}
	if sess.Failed != 1 {
		t.Errorf("failed = %d, want 1", sess.Failed)
	}
}

func TestAudienceResyncTagsByPlan(t *testing.T) {
	orders := newMemOrderRepo()
	subs := newMemSubRepo()

	trialOrder := subscriptionOrder("o1")
	fullOrder := subscriptionOrder("o2")
	fullOrder.CustomerEmail = "full@example.com"
	orders.byID["o1"] = trialOrder
	orders.byID["o2"] = fullOrder

	subs.active = []*model.Subscription{
		{ID: "s1", UserID: "u1", OrderID: "o1", Plan: model.PlanTrial, Status: model.SubscriptionStatusActive},
		{ID: "s2", UserID: "u2", OrderID: "o2", Plan: model.PlanAnnually, Status: model.SubscriptionStatusActive},
	}

	aud := newMockAudience()
	uc := NewAudienceSyncUseCase(subs, orders, aud, newLogger())
	sess := NewSyncSession()
	if err := uc.Resync(context.Background(), sess, 10, time.Millisecond); err != nil {
		t.Fatalf("Resync: %v", err)
	}
	if aud.tags["buyer@example.com"] != AudienceTagTrial {
		t.Errorf("trial subscriber tag = %q", aud.tags["buyer@example.com"])
	}
	if aud.tags["full@example.com"] != AudienceTagFullPlan {
		t.Errorf("full-plan subscriber tag = %q", aud.tags["full@example.com"])
	}
	if sess.Synced != 2 {
		t.Errorf("synced = %d, want 2", sess.Synced)
	}
}

func TestAudienceResyncSkipsUnresolvableContacts(t *testing.T) {
	subs := newMemSubRepo()
	subs.active = []*model.Subscription{
		{ID: "s1", UserID: "u1", OrderID: "missing", Plan: model.PlanMonthly, Status: model.SubscriptionStatusActive},
	}
	aud := newMockAudience()
	uc := NewAudienceSyncUseCase(subs, newMemOrderRepo(), aud, newLogger())
	sess := NewSyncSession()
	if err := uc.Resync(context.Background(), sess, 10, time.Millisecond); err != nil {
		t.Fatalf("Resync: %v", err)
	}
	if sess.Failed != 1 || sess.Synced != 0 {
		t.Errorf("counters = %d/%d, want 0 synced 1 failed", sess.Synced, sess.Failed)
	}
	if len(aud.tags) != 0 {
		t.Errorf("tags applied for unresolvable contact: %v", aud.tags)
	}
}
