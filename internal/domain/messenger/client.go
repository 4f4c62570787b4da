package messenger

import (
	"context"

	"viber_notification_bot/pkg/viber"
)

// Client defines an interface for sending messages via the Viber bot API.
// This helps in decoupling the application logic from the concrete client.
// *viber.Client satisfies it directly.
type Client interface {
	SendMessage(ctx context.Context, receiver string, msg viber.Message, opts *viber.SendOptions) (*viber.Response, error)
	BroadcastMessage(ctx context.Context, receivers []string, msg viber.Message, opts *viber.BroadcastOptions) (*viber.Response, error)
}
