package push

import (
	"context"

	"temple-notify/internal/usecase/dispatch"
)

// NoopGateway is a no-operation implementation of the dispatch.Gateway
// interface. It is used when push delivery is disabled (local development
// against production data) to avoid null checks in the dispatch code.
// This follows the Null Object pattern.
type NoopGateway struct{}

// NewNoopGateway creates a new NoopGateway instance.
func NewNoopGateway() *NoopGateway {
	return &NoopGateway{}
}

// SendToTopic does nothing and reports success with a synthetic ID.
func (n *NoopGateway) SendToTopic(_ context.Context, _ string, _ dispatch.Message) (string, error) {
	return "noop", nil
}

// SendToToken does nothing and reports success with a synthetic ID.
func (n *NoopGateway) SendToToken(_ context.Context, _ string, _ dispatch.Message) (string, error) {
	return "noop", nil
}
