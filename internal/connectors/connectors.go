package connectors

import "context"

// Connector is a chat platform integration. Start blocks until the context is
// cancelled, reconnecting internally as needed.
type Connector interface {
	Name() string
	Start(ctx context.Context) error
}
