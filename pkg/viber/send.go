package viber

import "context"

// SendOptions are the optional fields of a direct message. A nil *SendOptions
// is treated as the zero value.
type SendOptions struct {
	TrackingData  map[string]interface{}
	Keyboard      *Keyboard
	ChatID        string
	MinAPIVersion int
}

// BroadcastOptions are the optional fields of a broadcast.
type BroadcastOptions struct {
	TrackingData  map[string]interface{}
	Keyboard      *Keyboard
	MinAPIVersion int
}

// PostOptions are the optional fields of a public chat post.
type PostOptions struct {
	MinAPIVersion int
}

// messageEnvelope builds the base request for message delivery. Tracking data
// is always present, serialized to a JSON string (empty input becomes "").
func (c *Client) messageEnvelope(trackingData map[string]interface{}, keyboard *Keyboard, chatID string, minAPIVersion int) map[string]interface{} {
	payload := map[string]interface{}{
		"sender": map[string]interface{}{
			"name":   c.bot.Name,
			"avatar": c.bot.Avatar,
		},
		"tracking_data": serializeTrackingData(trackingData),
	}
	if keyboard != nil {
		payload["keyboard"] = keyboard
	}
	if chatID != "" {
		payload["chat_id"] = chatID
	}
	if minAPIVersion > 0 {
		payload["min_api_version"] = minAPIVersion
	}
	return payload
}

// SendMessage delivers a message to a single receiver, addressed either by
// user id or by opts.ChatID. At least one of msg and opts.Keyboard must be
// given. Validation failures are returned before any network I/O.
func (c *Client) SendMessage(ctx context.Context, receiver string, msg Message, opts *SendOptions) (*Response, error) {
	if opts == nil {
		opts = &SendOptions{}
	}
	if receiver == "" && opts.ChatID == "" {
		return nil, ErrMissingReceiver
	}
	if msg == nil && opts.Keyboard == nil {
		return nil, ErrNothingToSend
	}
	if msg != nil {
		if err := validateMessage(msg); err != nil {
			return nil, err
		}
	}

	payload := c.messageEnvelope(opts.TrackingData, opts.Keyboard, opts.ChatID, opts.MinAPIVersion)
	if receiver != "" {
		payload["receiver"] = receiver
	}
	mergeMessage(payload, msg)

	return c.postJSON(ctx, endpointSendMessage, payload)
}

// BroadcastMessage delivers one message to up to MaxBroadcastReceivers users.
// The platform additionally caps request bodies at 30 KB and the broadcast
// rate at 500 requests per 10 seconds; neither is enforced here, the caller
// is expected to stay under both.
func (c *Client) BroadcastMessage(ctx context.Context, receivers []string, msg Message, opts *BroadcastOptions) (*Response, error) {
	if opts == nil {
		opts = &BroadcastOptions{}
	}
	if len(receivers) == 0 {
		return nil, ErrMissingReceivers
	}
	if len(receivers) > MaxBroadcastReceivers {
		return nil, ErrTooManyReceivers
	}
	if msg == nil && opts.Keyboard == nil {
		return nil, ErrNothingToSend
	}
	if msg != nil {
		if err := validateMessage(msg); err != nil {
			return nil, err
		}
	}

	payload := c.messageEnvelope(opts.TrackingData, opts.Keyboard, "", opts.MinAPIVersion)
	payload["broadcast_list"] = receivers
	mergeMessage(payload, msg)

	return c.postJSON(ctx, endpointBroadcastMessage, payload)
}

// PostToPublicChat publishes a message to the bot's public chat on behalf of
// the given user profile. Unlike SendMessage, a keyboard cannot stand in for
// the message here.
func (c *Client) PostToPublicChat(ctx context.Context, from *UserProfile, msg Message, opts *PostOptions) (*Response, error) {
	if opts == nil {
		opts = &PostOptions{}
	}
	if from == nil || from.ID == "" {
		return nil, ErrMissingSenderProfile
	}
	if msg == nil {
		return nil, ErrMissingMessageDataOrType
	}
	if rm, ok := msg.(RawMessage); ok {
		if _, hasType := rm["type"]; !hasType || len(rm) == 1 {
			return nil, ErrMissingMessageDataOrType
		}
	}

	payload := map[string]interface{}{
		"from": from.ID,
		"sender": map[string]interface{}{
			"name":   from.Name,
			"avatar": from.Avatar,
		},
	}
	if opts.MinAPIVersion > 0 {
		payload["min_api_version"] = opts.MinAPIVersion
	}
	mergeMessage(payload, msg)

	return c.postJSON(ctx, endpointPost, payload)
}
