package redis

import "strings"

// Every key lives under this namespace so the storefront can share an
// instance with other services.
const keyNamespace = "dm"

// Keyspace segments.
const (
	segIdempotency = "idempotency"
	segRateLimit   = "rate_limit"
	segSession     = "session"
	segCart        = "cart"
	segCatalog     = "catalog"
	segEvent       = "event"
)

// joinKey builds "dm:<parts...>", dropping blank parts.
func joinKey(parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			b.WriteByte(':')
			b.WriteString(p)
		}
	}
	return b.String()
}

func (c *Client) IdempotencyKey(scope, id string) string { return joinKey(segIdempotency, scope, id) }

func (c *Client) RateLimitKey(scope string) string { return joinKey(segRateLimit, scope) }

// AccessSessionKey is keyed by the access token's jti.
func (c *Client) AccessSessionKey(accessID string) string {
	return joinKey(segSession, "access", accessID)
}

// CartKey is the slot holding a client's serialized cart.
func (c *Client) CartKey(cartID string) string { return joinKey(segCart, cartID) }

func (c *Client) CatalogKey() string { return joinKey(segCatalog, "snapshot") }

// ProcessedEventKey marks an event id as handled by a consumer.
func (c *Client) ProcessedEventKey(consumer, eventID string) string {
	return joinKey(segEvent, consumer, eventID)
}
