// Package dispatch sends occasion notifications through the push gateway
// under at-most-once semantics: the ledger is consulted before every send
// and written after, so a re-run of the same slot never reaches a device
// twice.
package dispatch

import (
	"context"
	"errors"
	"fmt"
)

// Message is one push notification payload. Data keys and values travel
// to the client app unchanged; Title and Body are rendered by the OS.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// Gateway is the push delivery backend. Implementations return a
// provider message ID on success and a *SendError carrying a stable
// failure code otherwise.
type Gateway interface {
	// SendToTopic broadcasts to every device subscribed to the topic.
	SendToTopic(ctx context.Context, topic string, msg Message) (string, error)

	// SendToToken delivers to a single device token.
	SendToToken(ctx context.Context, token string, msg Message) (string, error)
}

// Stable gateway failure codes, independent of the provider's wire
// vocabulary.
const (
	SendErrUnregistered = "unregistered"
	SendErrInvalidToken = "invalid-token"
	SendErrRateLimited  = "rate-limited"
	SendErrUnavailable  = "unavailable"
	SendErrInternal     = "internal"
)

// SendError is a classified push gateway failure.
type SendError struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *SendError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("push gateway: %s (%s, http %d)", e.Message, e.Code, e.HTTPStatus)
	}
	return fmt.Sprintf("push gateway: %s (%s)", e.Message, e.Code)
}

// IsTokenInvalid reports whether err indicates the device token is
// permanently dead and should be cleared from the registration store.
func IsTokenInvalid(err error) bool {
	var se *SendError
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == SendErrUnregistered || se.Code == SendErrInvalidToken
}
