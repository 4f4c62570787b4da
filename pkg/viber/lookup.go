package viber

import "context"

// GetAccountInfo fetches the bot account's details (name, webhook, members,
// subscriber count).
func (c *Client) GetAccountInfo(ctx context.Context) (*Response, error) {
	return c.postJSON(ctx, endpointGetAccountInfo, map[string]interface{}{})
}

// GetUserDetails fetches the profile of a single subscribed user.
func (c *Client) GetUserDetails(ctx context.Context, userID string) (*Response, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return c.postJSON(ctx, endpointGetUserDetails, map[string]interface{}{"id": userID})
}

// GetOnlineStatus fetches the online status of up to MaxOnlineIDs users. A
// single id and a list go through the same path.
func (c *Client) GetOnlineStatus(ctx context.Context, userIDs ...string) (*Response, error) {
	if len(userIDs) == 0 {
		return nil, ErrEmptyIDs
	}
	if len(userIDs) > MaxOnlineIDs {
		return nil, ErrTooManyIDs
	}
	return c.postJSON(ctx, endpointGetOnlineStatus, map[string]interface{}{"ids": userIDs})
}
