// Package viber is a thin client for the Viber Public Account (bot) HTTP API.
// It builds the fixed JSON request shapes the platform expects, attaches
// authentication and dispatches them over HTTPS POST. Webhook receiving and
// event dispatch are out of scope; this package only covers the outbound side.
package viber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultBaseURL is the production Viber Public Account API root.
	DefaultBaseURL = "https://chatapi.viber.com/pa"

	// LibraryVersion is the release version reported in the User-Agent header
	// unless Config.Version overrides it.
	LibraryVersion = "1.0.0"

	productName    = "ViberBot-Go"
	defaultTimeout = 30 * time.Second

	// StatusOK is the status value the platform returns on success. Any other
	// value is an error and is surfaced as a *StatusError.
	StatusOK = 0

	// MaxBroadcastReceivers is the enforced upper bound on a broadcast list.
	MaxBroadcastReceivers = 300

	// MaxOnlineIDs is the enforced upper bound on ids per online-status request.
	MaxOnlineIDs = 100
)

// Endpoint names resolved to relative paths at dispatch time.
const (
	endpointSetWebhook       = "set_webhook"
	endpointGetAccountInfo   = "get_account_info"
	endpointGetUserDetails   = "get_user_details"
	endpointGetOnlineStatus  = "get_online"
	endpointSendMessage      = "send_message"
	endpointBroadcastMessage = "broadcast_message"
	endpointPost             = "post"
)

var endpointPaths = map[string]string{
	endpointSetWebhook:       "/set_webhook",
	endpointGetAccountInfo:   "/get_account_info",
	endpointGetUserDetails:   "/get_user_details",
	endpointGetOnlineStatus:  "/get_online",
	endpointSendMessage:      "/send_message",
	endpointBroadcastMessage: "/broadcast_message",
	endpointPost:             "/post",
}

// Logger is the leveled, format-string log sink the client writes to.
// *logrus.Logger and logrus.Entry both satisfy it.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// BotProfile is the bot identity attached to outgoing messages.
type BotProfile struct {
	Name      string
	Avatar    string
	AuthToken string
}

// UserProfile identifies a Viber user, e.g. the sender of a public chat post.
type UserProfile struct {
	ID     string
	Name   string
	Avatar string
}

// Config holds everything a Client needs. BaseURL defaults to DefaultBaseURL,
// Version to LibraryVersion and HTTPClient to a client with a 30s timeout.
// TLS certificate verification is never disabled.
type Config struct {
	BaseURL    string
	Bot        BotProfile
	EventTypes []string // webhook event types registered by SetWebhook
	Version    string
	HTTPClient *http.Client
}

// Client talks to the Viber bot API. It holds no mutable state, so concurrent
// calls on one instance are safe.
type Client struct {
	httpClient *http.Client
	baseURL    string
	bot        BotProfile
	eventTypes []string
	userAgent  string
	log        Logger
}

// NewClient creates a new Viber API client. Construction cannot fail; the
// configuration is not validated beyond applying defaults.
func NewClient(cfg Config, log Logger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	version := cfg.Version
	if version == "" {
		version = LibraryVersion
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		bot:        cfg.Bot,
		eventTypes: cfg.EventTypes,
		userAgent:  fmt.Sprintf("%s/%s", productName, version),
		log:        log,
	}
}

// Response is the platform's reply envelope. Raw holds the complete decoded
// body, including endpoint-specific fields beyond the typed ones.
type Response struct {
	Status        int
	StatusMessage string
	MessageToken  int64
	Raw           map[string]interface{}
}

// SetWebhook registers the given URL for the event types the client was
// configured with. The URL is trusted as given; the platform validates it by
// calling back.
func (c *Client) SetWebhook(ctx context.Context, url string, isInline bool) (*Response, error) {
	c.log.Infof("Registering webhook %s (inline: %t) for events %v", url, isInline, c.eventTypes)
	return c.postJSON(ctx, endpointSetWebhook, map[string]interface{}{
		"url":         url,
		"is_inline":   isInline,
		"event_types": c.eventTypes,
	})
}

// postJSON resolves the endpoint, merges the auth token under the payload and
// performs the HTTPS POST. Exactly one outcome per call, no retries.
func (c *Client) postJSON(ctx context.Context, endpoint string, payload map[string]interface{}) (*Response, error) {
	path, ok := endpointPaths[endpoint]
	if !ok {
		c.log.Errorf("Request to unknown viber endpoint %q", endpoint)
		return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, endpoint)
	}

	// The auth token goes in first and payload keys are copied over it, so
	// caller-supplied data may shadow auth_token. That precedence matches the
	// platform contract as shipped and must not be reordered.
	body := map[string]interface{}{"auth_token": c.bot.AuthToken}
	for k, v := range payload {
		body[k] = v
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body for %s: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Viber-Auth-Token", c.bot.AuthToken)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Errorf("Request to viber endpoint %s failed: %v", endpoint, err)
		return nil, fmt.Errorf("failed to send request to viber: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Errorf("Failed to read viber response for %s: %v", endpoint, err)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var envelope struct {
		Status        int    `json:"status"`
		StatusMessage string `json:"status_message"`
		MessageToken  int64  `json:"message_token"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		c.log.Errorf("Failed to decode viber response for %s: %v (body: %s)", endpoint, err, raw)
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	var bodyMap map[string]interface{}
	// Cannot fail once the envelope decoded: same bytes, looser target type.
	_ = json.Unmarshal(raw, &bodyMap)

	r := &Response{
		Status:        envelope.Status,
		StatusMessage: envelope.StatusMessage,
		MessageToken:  envelope.MessageToken,
		Raw:           bodyMap,
	}
	if r.Status != StatusOK {
		c.log.Errorf("Viber API returned error for %s: %s (status: %d)", endpoint, r.StatusMessage, r.Status)
		return nil, &StatusError{Endpoint: endpoint, Response: r}
	}

	c.log.Debugf("Viber API call %s succeeded", endpoint)
	return r, nil
}
