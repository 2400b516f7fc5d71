package redis

import "strings"

// Every key lives under the "sd" namespace followed by its family.
const keyNamespace = "sd"

const (
	familyIdempotency = "idempotency"
	familyRateLimit   = "rate_limit"
	familySession     = "session"
	familyConsumer    = "consumer"
)

func key(family string, parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	b.WriteByte(':')
	b.WriteString(family)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}

// IdempotencyKey scopes a client supplied Idempotency-Key.
func (c *Client) IdempotencyKey(scope, id string) string {
	return key(familyIdempotency, scope, id)
}

func (c *Client) RateLimitKey(scope string) string {
	return key(familyRateLimit, scope)
}

// AccessSessionKey holds the refresh session bound to an access token jti.
func (c *Client) AccessSessionKey(accessID string) string {
	return key(familySession, "access", accessID)
}

// ProcessedEventKey marks an event id as handled by consumer.
func (c *Client) ProcessedEventKey(consumer, eventID string) string {
	return key(familyConsumer, consumer, "event", eventID)
}
