package quickbooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/config"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// signatureHeader carries the base64 HMAC-SHA256 of the raw request body.
const signatureHeader = "intuit-signature"

// WebhookProcessor receives Intuit change notifications, verifies them, and
// fans them out to per-project syncs. The provider requires a 200 within a
// few seconds, so the handler acknowledges as soon as the payload is
// authenticated and logged; resolution and sync run detached.
type WebhookProcessor struct {
	verifier   string
	createWait time.Duration
	resolver   *EntityResolver
	syncer     *Syncer
	logs       WebhookLogRepository
	log        *zap.Logger
	notify     func(projectID string)
}

func NewWebhookProcessor(cfg *config.Config, resolver *EntityResolver, syncer *Syncer, logs WebhookLogRepository, log *zap.Logger) *WebhookProcessor {
	return &WebhookProcessor{
		verifier:   cfg.QBOWebhookVerifier,
		createWait: time.Duration(cfg.QBOCreateWaitSeconds) * time.Second,
		resolver:   resolver,
		syncer:     syncer,
		logs:       logs,
		log:        log,
	}
}

// SetSyncNotifier registers a callback invoked after each successful project
// sync. The activity feed hub hangs off this.
func (p *WebhookProcessor) SetSyncNotifier(fn func(projectID string)) {
	p.notify = fn
}

// VerifySignature checks the HMAC over the exact raw bytes, before any JSON
// parsing. Comparison is constant time.
func (p *WebhookProcessor) VerifySignature(rawBody []byte, signature string) bool {
	if p.verifier == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(p.verifier))
	mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Handle is the webhook endpoint. Signature mismatch is an authentication
// failure, distinct from any processing failure, and triggers no resolution
// or sync.
func (p *WebhookProcessor) Handle(c *fiber.Ctx) error {
	// Copy: fiber reuses the body buffer after the handler returns and the
	// goroutine below outlives it.
	raw := make([]byte, len(c.Body()))
	copy(raw, c.Body())

	if !p.VerifySignature(raw, c.Get(signatureHeader)) {
		return apperr.SignatureInvalid("webhook signature mismatch")
	}

	entry := &WebhookLog{
		Source:     "quickbooks",
		Payload:    string(raw),
		Status:     WebhookReceived,
		ReceivedAt: time.Now(),
	}
	if err := p.logs.Insert(c.Context(), entry); err != nil {
		p.log.Warn("webhook log insert failed", zap.Error(err))
	}

	go p.process(entry, raw)

	return c.SendStatus(fiber.StatusOK)
}

// process runs after the 200 has gone out. Failures here are logged against
// the delivery record; the provider's own redelivery is the only retry.
func (p *WebhookProcessor) process(entry *WebhookLog, raw []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var payload WebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		p.finish(ctx, entry, 0, nil, "payload parse failed: "+err.Error())
		return
	}

	entities := 0
	hasCreate := false
	for _, n := range payload.EventNotifications {
		for _, e := range n.DataChangeEvent.Entities {
			entities++
			if strings.EqualFold(e.Operation, "Create") {
				hasCreate = true
			}
		}
	}

	// Freshly created entities may not be queryable yet; one bounded wait
	// covers the whole batch, then resolution proceeds with no retry.
	if hasCreate && p.createWait > 0 {
		select {
		case <-time.After(p.createWait):
		case <-ctx.Done():
			return
		}
	}

	affected := ProjectSet{}
	var failures []string
	for _, n := range payload.EventNotifications {
		for _, e := range n.DataChangeEvent.Entities {
			set, err := p.resolver.ResolveProjectIDs(ctx, e.Name, e.ID)
			if err != nil {
				// Soft failure: the entity stays unresolved this delivery.
				p.log.Warn("entity resolution failed",
					zap.String("entity_type", e.Name),
					zap.String("entity_id", e.ID),
					zap.Error(err))
				failures = append(failures, e.Name+":"+e.ID)
				continue
			}
			affected.merge(set)
		}
	}

	var synced []string
	for projectID := range affected {
		if err := p.syncer.SyncProjectToDB(ctx, projectID); err != nil {
			p.log.Warn("project sync failed",
				zap.String("project_id", projectID), zap.Error(err))
			failures = append(failures, "sync:"+projectID)
			continue
		}
		synced = append(synced, projectID)
		if p.notify != nil {
			p.notify(projectID)
		}
	}

	errMsg := ""
	if len(failures) > 0 {
		errMsg = "failed: " + strings.Join(failures, ", ")
	}
	p.finish(ctx, entry, entities, synced, errMsg)
}

func (p *WebhookProcessor) finish(ctx context.Context, entry *WebhookLog, entities int, synced []string, errMsg string) {
	if err := p.logs.MarkProcessed(ctx, entry.ID, entities, synced, errMsg); err != nil {
		p.log.Warn("webhook log update failed", zap.Error(err))
	}
}
