// File: internal/usecase/outbox_uc.go
package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"corpdata-commerce/internal/domain/model"
	"corpdata-commerce/internal/domain/ports/adapter"
	"corpdata-commerce/internal/domain/ports/repository"
	"corpdata-commerce/internal/infra/metrics"
)

// OutboxDispatcher delivers pending notification events with at-least-once
// semantics. A failed delivery marks the event failed (attempts+1) and moves
// on; it never blocks the batch.
type OutboxDispatcher struct {
	outbox   repository.OutboxRepository
	mailer   adapter.Mailer
	whatsapp adapter.WhatsAppSender
	audience adapter.AudienceSync
	log      *zerolog.Logger
}

func NewOutboxDispatcher(outbox repository.OutboxRepository, mailer adapter.Mailer, whatsapp adapter.WhatsAppSender, audience adapter.AudienceSync, logger *zerolog.Logger) *OutboxDispatcher {
	compLog := logger.With().Str("component", "OutboxDispatcher").Logger()
	return &OutboxDispatcher{
		outbox:   outbox,
		mailer:   mailer,
		whatsapp: whatsapp,
		audience: audience,
		log:      &compLog,
	}
}

// Dispatch sends up to limit pending events and returns how many went out.
func (d *OutboxDispatcher) Dispatch(ctx context.Context, limit int) (int, error) {
	events, err := d.outbox.ListPending(ctx, nil, limit)
	if err != nil {
		return 0, fmt.Errorf("list pending outbox events: %w", err)
	}

	sent := 0
	for _, ev := range events {
		if err := d.deliver(ctx, ev); err != nil {
			d.log.Warn().Err(err).Str("event_id", ev.ID).Str("type", string(ev.Type)).Msg("outbox delivery failed")
			metrics.IncOutboxDispatch(string(ev.Type), "failed")
			if err := d.outbox.MarkFailed(ctx, nil, ev.ID); err != nil {
				d.log.Error().Err(err).Str("event_id", ev.ID).Msg("mark failed")
			}
			continue
		}
		metrics.IncOutboxDispatch(string(ev.Type), "sent")
		if err := d.outbox.MarkSent(ctx, nil, ev.ID); err != nil {
			// The send succeeded; a mark failure means the event will be
			// retried. At-least-once, by construction.
			d.log.Error().Err(err).Str("event_id", ev.ID).Msg("mark sent")
			continue
		}
		sent++
	}
	metrics.SetOutboxPending(len(events) - sent)
	return sent, nil
}

func (d *OutboxDispatcher) deliver(ctx context.Context, ev *model.OutboxEvent) error {
	switch ev.Type {
	case model.OutboxEventEmail:
		to := payloadStr(ev.Payload, "to")
		if to == "" {
			return fmt.Errorf("event %s: missing recipient", ev.ID)
		}
		subject := fmt.Sprintf("Payment confirmed for order %s", payloadStr(ev.Payload, "order_id"))
		html := fmt.Sprintf("<p>We received your payment of %s %s. Your order %s is confirmed.</p>",
			payloadStr(ev.Payload, "currency"), payloadStr(ev.Payload, "total"), payloadStr(ev.Payload, "order_id"))
		return d.mailer.SendEmail(ctx, []string{to}, subject, html)
	case model.OutboxEventWhatsApp:
		phone := payloadStr(ev.Payload, "phone")
		if phone == "" {
			return fmt.Errorf("event %s: missing phone", ev.ID)
		}
		return d.whatsapp.SendTemplate(ctx, []string{phone}, "payment_confirmation", map[string]string{
			"order_id": payloadStr(ev.Payload, "order_id"),
			"total":    payloadStr(ev.Payload, "total"),
		})
	case model.OutboxEventAudienceTag:
		email := payloadStr(ev.Payload, "email")
		tag := payloadStr(ev.Payload, "tag")
		if email == "" || tag == "" {
			return fmt.Errorf("event %s: missing email or tag", ev.ID)
		}
		return d.audience.TagContact(ctx, email, tag)
	default:
		return fmt.Errorf("event %s: unrecognized type %q", ev.ID, ev.Type)
	}
}

func payloadStr(p map[string]interface{}, key string) string {
	if p == nil {
		return ""
	}
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}
