package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/inxsource/whatsapp-sales-bot/internal/core/commerce"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/intent"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/llm"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/session"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/tenant"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/whatsapp"
	"github.com/inxsource/whatsapp-sales-bot/internal/models"
	"github.com/inxsource/whatsapp-sales-bot/internal/repositories"
)

// ErrConcurrencyConflict means two saves for the same session key collided
// twice in a row. The customer gets a generic try-again reply and the session
// is left as the winning writer saved it.
var ErrConcurrencyConflict = errors.New("session concurrency conflict")

// TenantResolver maps an inbound destination to a business ID
type TenantResolver interface {
	Resolve(ctx context.Context, destination string) (uuid.UUID, error)
}

// IntentClassifier decides what the customer is trying to do
type IntentClassifier interface {
	Classify(ctx context.Context, text string, stage session.Stage) intent.Result
}

// ReplyGenerator composes the AI reply for open-ended stages
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, profile *llm.BusinessProfile, turns session.Turns, stage session.Stage, catalogSnippet string) (string, error)
}

// OutboundSender delivers one reply back to the customer
type OutboundSender interface {
	Send(ctx context.Context, to, from, body string) (*whatsapp.DeliveryResult, error)
}

// Router is the conversation decision core. For every inbound message it
// resolves the tenant, loads the session under the per-key lock, classifies
// the intent, walks the stage machine, composes exactly one reply, and
// persists the session with an optimistic version check.
type Router struct {
	tenants    TenantResolver
	businesses repositories.BusinessRepo
	customers  repositories.CustomerRepo
	sessions   *session.Manager
	classifier IntentClassifier
	responder  ReplyGenerator
	commerce   commerce.Service
	sender     OutboundSender

	fallbackReply string
}

func NewRouter(
	tenants TenantResolver,
	businesses repositories.BusinessRepo,
	customers repositories.CustomerRepo,
	sessions *session.Manager,
	classifier IntentClassifier,
	responder ReplyGenerator,
	commerceService commerce.Service,
	sender OutboundSender,
	fallbackReply string,
) *Router {
	return &Router{
		tenants:       tenants,
		businesses:    businesses,
		customers:     customers,
		sessions:      sessions,
		classifier:    classifier,
		responder:     responder,
		commerce:      commerceService,
		sender:        sender,
		fallbackReply: fallbackReply,
	}
}

// HandleMessage runs the full pipeline for one inbound message. Every message
// addressed to a known business gets exactly one reply; messages for unknown
// destinations are dropped without an answer.
func (r *Router) HandleMessage(ctx context.Context, msg whatsapp.InboundMessage) error {
	businessID, err := r.tenants.Resolve(ctx, msg.To)
	if err != nil {
		if errors.Is(err, tenant.ErrUnknownTenant) {
			log.Warn().
				Str("to", msg.To).
				Str("from", msg.From).
				Msg("⚠️ dropping message for unknown destination")
			return nil
		}
		return fmt.Errorf("tenant resolution failed: %w", err)
	}

	business, err := r.businesses.GetByID(businessID)
	if err != nil {
		r.deliver(ctx, msg, r.fallbackReply)
		return fmt.Errorf("failed to load business %s: %w", businessID, err)
	}

	customer, err := r.customers.GetOrCreate(businessID, tenant.NormalizeNumber(msg.From))
	if err != nil {
		r.deliver(ctx, msg, r.fallbackFor(business))
		return fmt.Errorf("failed to load customer: %w", err)
	}

	// Messages for one (business, customer) pair are handled strictly in
	// order; the version check below is the backstop, not the primary gate.
	unlock := r.sessions.Lock(businessID, customer.ID)
	defer unlock()

	reply, err := r.process(ctx, business, customer, msg)
	if errors.Is(err, session.ErrStaleSession) {
		log.Warn().
			Str("business_id", businessID.String()).
			Str("customer_id", customer.ID.String()).
			Msg("stale session on save, retrying once")
		reply, err = r.process(ctx, business, customer, msg)
		if errors.Is(err, session.ErrStaleSession) {
			r.deliver(ctx, msg, tryAgainReply())
			return fmt.Errorf("%w: business=%s customer=%s", ErrConcurrencyConflict, businessID, customer.ID)
		}
	}
	if err != nil {
		r.deliver(ctx, msg, r.fallbackFor(business))
		return err
	}

	r.deliver(ctx, msg, reply)
	return nil
}

// process is one attempt at the load-classify-compose-save cycle. It returns
// ErrStaleSession untouched so the caller can retry against a fresh load.
func (r *Router) process(ctx context.Context, business *models.Business, customer *models.Customer, msg whatsapp.InboundMessage) (string, error) {
	sess, err := r.sessions.GetOrCreate(ctx, business.ID, customer.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}

	prevStage := sess.Stage
	r.sessions.AppendTurn(sess, session.RoleUser, msg.Body)

	result := r.classifier.Classify(ctx, msg.Body, sess.Stage)
	reply := r.compose(ctx, business, customer, sess, result, prevStage)

	r.sessions.AppendTurn(sess, session.RoleAssistant, reply)
	if err := r.sessions.Save(ctx, sess); err != nil {
		return "", err
	}
	return reply, nil
}

// compose picks the reply and applies any stage transition. Transactional
// branches (commands, orders, payment status) answer from templates; the
// open-ended stages delegate to the AI responder.
func (r *Router) compose(ctx context.Context, business *models.Business, customer *models.Customer, sess *session.Session, result intent.Result, prevStage session.Stage) string {
	// Commands work from any stage
	switch result.Intent {
	case intent.IntentHelp:
		return helpReply(business.BusinessName)
	case intent.IntentReset:
		sess.Reinitialize()
		return resetReply(business.BusinessName)
	}

	if sess.Stage == session.StageAwaitingPayment {
		return r.composePaymentStatus(ctx, sess)
	}

	switch result.Intent {
	case intent.IntentSearch:
		return r.composeSearch(ctx, business, sess, result.Query)

	case intent.IntentBrowse:
		if sess.Stage == session.StageGreeting {
			_ = r.sessions.Apply(sess, session.EventBrowse)
		}
		return r.composeAI(ctx, business, sess, "", prevStage)

	case intent.IntentSelectProduct:
		if sess.Stage == session.StageGreeting {
			_ = r.sessions.Apply(sess, session.EventBrowse)
		}
		if sess.Stage == session.StageBrowsing {
			_ = r.sessions.Apply(sess, session.EventSelectProduct)
		}
		return r.composeAI(ctx, business, sess, result.Query, prevStage)

	case intent.IntentConfirm:
		if sess.Stage == session.StageOrdering {
			return r.composeOrder(ctx, business, customer, sess)
		}
		return r.composeAI(ctx, business, sess, "", prevStage)

	case intent.IntentAbandon:
		if sess.Stage == session.StageOrdering {
			_ = r.sessions.Apply(sess, session.EventAbandon)
			sess.PendingOrderID = nil
			return orderAbandonedReply()
		}
		return r.composeAI(ctx, business, sess, "", prevStage)

	default:
		return r.composeAI(ctx, business, sess, "", prevStage)
	}
}

// composeAI asks the responder for a reply, feeding it a catalog snippet when
// the customer is shopping. A failed AI call falls back to the configured
// reply and rolls the stage back, so a failed turn never advances the
// conversation.
func (r *Router) composeAI(ctx context.Context, business *models.Business, sess *session.Session, catalogQuery string, prevStage session.Stage) string {
	snippet := ""
	if sess.Stage == session.StageBrowsing || sess.Stage == session.StageOrdering {
		products, err := r.commerce.LookupProducts(ctx, business.ID, catalogQuery)
		if err != nil {
			log.Warn().Err(err).Str("business_id", business.ID.String()).Msg("catalog lookup for prompt failed")
		} else {
			snippet = commerce.CatalogSnippet(products)
		}
	}

	profile := &llm.BusinessProfile{
		BusinessName:   business.BusinessName,
		Industry:       business.Industry,
		Tone:           business.Tone,
		PromptTemplate: business.PromptTemplate,
	}

	reply, err := r.responder.GenerateReply(ctx, profile, sess.Turns, sess.Stage, snippet)
	if err != nil {
		log.Warn().Err(err).
			Str("business_id", business.ID.String()).
			Msg("AI reply failed, using fallback")
		sess.Stage = prevStage
		return r.fallbackFor(business)
	}
	return reply
}

// fallbackFor returns the tenant's configured fallback reply, or the global
// default when the tenant has none.
func (r *Router) fallbackFor(business *models.Business) string {
	if custom := business.DecodeSettings().FallbackReply; custom != "" {
		return custom
	}
	return r.fallbackReply
}

// composeSearch answers an explicit search command with the formatted catalog
// list. A first-contact search also moves the session into browsing.
func (r *Router) composeSearch(ctx context.Context, business *models.Business, sess *session.Session, query string) string {
	products, err := r.commerce.LookupProducts(ctx, business.ID, query)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("product search failed")
		return lookupFailedReply()
	}
	if len(products) == 0 {
		return noProductsReply(query)
	}

	if sess.Stage == session.StageGreeting {
		_ = r.sessions.Apply(sess, session.EventBrowse)
	}

	title := "Our products"
	if query != "" {
		title = fmt.Sprintf("Results for %q", query)
	}
	return commerce.FormatProductList(title, products)
}

// composeOrder turns the confirmed selection into an order. The product terms
// come from the most recent buy command in the history; without one the
// customer is asked to name the product and the stage stays put.
func (r *Router) composeOrder(ctx context.Context, business *models.Business, customer *models.Customer, sess *session.Session) string {
	query := lastProductQuery(sess.Turns)
	if query == "" {
		return askWhatToOrderReply()
	}

	ref, err := r.commerce.CreateOrder(ctx, business.ID, customer.ID, []commerce.ItemRequest{
		{Name: query, Quantity: 1},
	})
	if err != nil {
		if errors.Is(err, commerce.ErrProductNotFound) {
			return productNotFoundReply(query)
		}
		log.Error().Err(err).
			Str("business_id", business.ID.String()).
			Str("query", query).
			Msg("order creation failed")
		return lookupFailedReply()
	}

	_ = r.sessions.Apply(sess, session.EventConfirm)
	sess.PendingOrderID = &ref.ID
	return orderCreatedReply(ref)
}

// composePaymentStatus polls the pending order and walks the payment edges of
// the stage machine. A status lookup failure holds the stage and reports
// pending, never a false confirmation.
func (r *Router) composePaymentStatus(ctx context.Context, sess *session.Session) string {
	if sess.PendingOrderID == nil {
		// Awaiting payment without an order reference should not happen;
		// recover by reopening the order flow.
		log.Error().Str("session_id", sess.ID.String()).Msg("awaiting payment with no pending order")
		_ = r.sessions.Apply(sess, session.EventPaymentFailed)
		return paymentFailedReply()
	}

	state, err := r.commerce.GetPaymentStatus(ctx, *sess.PendingOrderID)
	if err != nil {
		log.Warn().Err(err).
			Str("order_id", sess.PendingOrderID.String()).
			Msg("payment status lookup failed")
		return paymentPendingReply()
	}

	switch state {
	case commerce.PaymentPaid:
		_ = r.sessions.Apply(sess, session.EventPaymentConfirmed)
		sess.PendingOrderID = nil
		return paymentConfirmedReply()
	case commerce.PaymentFailed:
		_ = r.sessions.Apply(sess, session.EventPaymentFailed)
		sess.PendingOrderID = nil
		return paymentFailedReply()
	default:
		return paymentPendingReply()
	}
}

// deliver sends the reply back over the transport. Delivery failures are
// logged, not retried; the session was already saved with the reply turn.
func (r *Router) deliver(ctx context.Context, msg whatsapp.InboundMessage, body string) {
	if _, err := r.sender.Send(ctx, msg.From, msg.To, body); err != nil {
		log.Error().Err(err).
			Str("to", msg.From).
			Msg("❌ failed to deliver reply")
	}
}

// lastProductQuery scans the history newest-first for the product terms of
// the most recent buy or search command.
func lastProductQuery(turns session.Turns) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role != session.RoleUser {
			continue
		}
		if query, ok := intent.ExtractProductQuery(turns[i].Body); ok {
			return query
		}
	}
	return ""
}
