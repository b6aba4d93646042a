package tenant

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inxsource/whatsapp-sales-bot/internal/repositories"
)

// ErrUnknownTenant means no active business is registered for the inbound
// destination number. The message must be dropped, never answered.
var ErrUnknownTenant = errors.New("unknown tenant: no active business for destination")

// Resolver maps the transport destination of an inbound message to the
// business it belongs to. Lookups are read-only and cached; the cache is
// invalidated explicitly when a business is deactivated.
type Resolver struct {
	businesses repositories.BusinessRepo

	mu    sync.RWMutex
	cache map[string]uuid.UUID
}

func NewResolver(businesses repositories.BusinessRepo) *Resolver {
	return &Resolver{
		businesses: businesses,
		cache:      make(map[string]uuid.UUID),
	}
}

// Resolve returns the active business registered for destination.
func (r *Resolver) Resolve(ctx context.Context, destination string) (uuid.UUID, error) {
	number := NormalizeNumber(destination)
	if number == "" {
		return uuid.Nil, ErrUnknownTenant
	}

	r.mu.RLock()
	id, ok := r.cache[number]
	r.mu.RUnlock()
	if ok {
		return id, nil
	}

	business, err := r.businesses.GetActiveByWhatsAppNumber(number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrUnknownTenant
		}
		return uuid.Nil, err
	}

	r.mu.Lock()
	r.cache[number] = business.ID
	r.mu.Unlock()

	return business.ID, nil
}

// Invalidate drops the cached mapping for destination. Call on business
// deactivation or number reassignment.
func (r *Resolver) Invalidate(destination string) {
	number := NormalizeNumber(destination)

	r.mu.Lock()
	delete(r.cache, number)
	r.mu.Unlock()
}

// NormalizeNumber strips the transport prefix and leading + so the same
// number matches regardless of which provider delivered the message.
// Twilio sends "whatsapp:+260971234567", Green API sends "260971234567@c.us".
func NormalizeNumber(raw string) string {
	number := strings.TrimSpace(raw)
	number = strings.TrimPrefix(number, "whatsapp:")
	if i := strings.IndexByte(number, '@'); i >= 0 {
		number = number[:i]
	}
	number = strings.TrimPrefix(number, "+")
	return number
}
