package viber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// recorder is a fake API server capturing every dispatched request.
type recorder struct {
	requests []recordedRequest
	respBody string
}

type recordedRequest struct {
	path   string
	header http.Header
	body   map[string]interface{}
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	data, _ := io.ReadAll(req.Body)
	var body map[string]interface{}
	_ = json.Unmarshal(data, &body)
	r.requests = append(r.requests, recordedRequest{path: req.URL.Path, header: req.Header.Clone(), body: body})
	resp := r.respBody
	if resp == "" {
		resp = `{"status":0,"status_message":"ok"}`
	}
	_, _ = w.Write([]byte(resp))
}

func newTestClient(t *testing.T, rec *recorder) *Client {
	t.Helper()
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL: srv.URL,
		Bot: BotProfile{
			Name:      "TestBot",
			Avatar:    "http://example.com/avatar.jpg",
			AuthToken: "test-token",
		},
		EventTypes: []string{"delivered", "seen"},
	}, testLogger())
}

func TestSendMessageMissingReceiverAndChatID(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	_, err := c.SendMessage(context.Background(), "", TextMessage{Text: "hi"}, nil)
	if !errors.Is(err, ErrMissingReceiver) {
		t.Fatalf("expected ErrMissingReceiver, got: %v", err)
	}
	if len(rec.requests) != 0 {
		t.Errorf("expected no network call, got %d", len(rec.requests))
	}
}

func TestSendMessageNothingToSend(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	_, err := c.SendMessage(context.Background(), "user1", nil, nil)
	if !errors.Is(err, ErrNothingToSend) {
		t.Fatalf("expected ErrNothingToSend, got: %v", err)
	}
	if len(rec.requests) != 0 {
		t.Errorf("expected no network call, got %d", len(rec.requests))
	}
}

func TestSendMessageRawMessageMissingData(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	_, err := c.SendMessage(context.Background(), "user1", RawMessage{"type": "text"}, nil)
	if !errors.Is(err, ErrMissingMessageData) {
		t.Fatalf("expected ErrMissingMessageData, got: %v", err)
	}
	if len(rec.requests) != 0 {
		t.Errorf("expected no network call, got %d", len(rec.requests))
	}
}

func TestSendMessageKeyboardOnly(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	kb := &Keyboard{Buttons: []Button{{ActionType: "reply", ActionBody: "yes", Text: "Yes"}}}
	_, err := c.SendMessage(context.Background(), "user1", nil, &SendOptions{Keyboard: kb})
	if err != nil {
		t.Fatal(err)
	}
	body := rec.requests[0].body
	if _, ok := body["keyboard"]; !ok {
		t.Error("expected keyboard in request body")
	}
	if _, ok := body["type"]; ok {
		t.Error("did not expect a message type in keyboard-only request")
	}
}

func TestSendMessageEnvelope(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	_, err := c.SendMessage(context.Background(), "user1", TextMessage{Text: "hello"}, &SendOptions{
		TrackingData:  map[string]interface{}{"a": 1},
		MinAPIVersion: 3,
	})
	if err != nil {
		t.Fatal(err)
	}

	req := rec.requests[0]
	if req.path != "/send_message" {
		t.Errorf("expected path /send_message, got %s", req.path)
	}
	if got := req.body["receiver"]; got != "user1" {
		t.Errorf("expected receiver user1, got %v", got)
	}
	if got := req.body["type"]; got != "text" {
		t.Errorf("expected type text, got %v", got)
	}
	if got := req.body["text"]; got != "hello" {
		t.Errorf("expected text hello, got %v", got)
	}
	if got := req.body["tracking_data"]; got != `{"a":1}` {
		t.Errorf("unexpected tracking_data: %v", got)
	}
	if got := req.body["min_api_version"]; got != float64(3) {
		t.Errorf("unexpected min_api_version: %v", got)
	}
	sender, ok := req.body["sender"].(map[string]interface{})
	if !ok || sender["name"] != "TestBot" {
		t.Errorf("unexpected sender: %v", req.body["sender"])
	}
}

func TestSendMessageChatIDInsteadOfReceiver(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	_, err := c.SendMessage(context.Background(), "", TextMessage{Text: "hi"}, &SendOptions{ChatID: "chat42"})
	if err != nil {
		t.Fatal(err)
	}
	body := rec.requests[0].body
	if got := body["chat_id"]; got != "chat42" {
		t.Errorf("expected chat_id chat42, got %v", got)
	}
	if _, ok := body["receiver"]; ok {
		t.Error("did not expect receiver when only chat_id is given")
	}
}

func TestBroadcastMessageMissingReceivers(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	_, err := c.BroadcastMessage(context.Background(), nil, TextMessage{Text: "hi"}, nil)
	if !errors.Is(err, ErrMissingReceivers) {
		t.Fatalf("expected ErrMissingReceivers, got: %v", err)
	}
	if len(rec.requests) != 0 {
		t.Errorf("expected no network call, got %d", len(rec.requests))
	}
}

func TestBroadcastMessageTooManyReceivers(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	receivers := make([]string, MaxBroadcastReceivers+1)
	for i := range receivers {
		receivers[i] = fmt.Sprintf("user%d", i)
	}
	_, err := c.BroadcastMessage(context.Background(), receivers, TextMessage{Text: "hi"}, nil)
	if !errors.Is(err, ErrTooManyReceivers) {
		t.Fatalf("expected ErrTooManyReceivers, got: %v", err)
	}
	if len(rec.requests) != 0 {
		t.Errorf("expected no network call, got %d", len(rec.requests))
	}
}

func TestBroadcastMessageEnvelope(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	_, err := c.BroadcastMessage(context.Background(), []string{"u1", "u2"}, TextMessage{Text: "news"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	req := rec.requests[0]
	if req.path != "/broadcast_message" {
		t.Errorf("expected path /broadcast_message, got %s", req.path)
	}
	list, ok := req.body["broadcast_list"].([]interface{})
	if !ok || len(list) != 2 || list[0] != "u1" {
		t.Errorf("unexpected broadcast_list: %v", req.body["broadcast_list"])
	}
	if _, present := req.body["receiver"]; present {
		t.Error("broadcast request must not carry a receiver field")
	}
}

func TestGetOnlineStatusNormalization(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	if _, err := c.GetOnlineStatus(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}
	ids := []string{"a"}
	if _, err := c.GetOnlineStatus(context.Background(), ids...); err != nil {
		t.Fatal(err)
	}

	if len(rec.requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(rec.requests))
	}
	for i, req := range rec.requests {
		if req.path != "/get_online" {
			t.Errorf("request %d: expected path /get_online, got %s", i, req.path)
		}
		got, ok := req.body["ids"].([]interface{})
		if !ok || len(got) != 1 || got[0] != "a" {
			t.Errorf("request %d: expected ids [a], got %v", i, req.body["ids"])
		}
	}
}

func TestGetOnlineStatusEmptyIDs(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	_, err := c.GetOnlineStatus(context.Background())
	if !errors.Is(err, ErrEmptyIDs) {
		t.Fatalf("expected ErrEmptyIDs, got: %v", err)
	}
	if len(rec.requests) != 0 {
		t.Errorf("expected no network call, got %d", len(rec.requests))
	}
}

func TestGetOnlineStatusTooManyIDs(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	ids := make([]string, MaxOnlineIDs+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("id%d", i)
	}
	_, err := c.GetOnlineStatus(context.Background(), ids...)
	if !errors.Is(err, ErrTooManyIDs) {
		t.Fatalf("expected ErrTooManyIDs, got: %v", err)
	}
	if len(rec.requests) != 0 {
		t.Errorf("expected no network call, got %d", len(rec.requests))
	}
}

func TestGetUserDetailsMissingID(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	_, err := c.GetUserDetails(context.Background(), "")
	if !errors.Is(err, ErrMissingUserID) {
		t.Fatalf("expected ErrMissingUserID, got: %v", err)
	}
	if len(rec.requests) != 0 {
		t.Errorf("expected no network call, got %d", len(rec.requests))
	}
}

func TestGetUserDetailsPayload(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	if _, err := c.GetUserDetails(context.Background(), "user7"); err != nil {
		t.Fatal(err)
	}
	req := rec.requests[0]
	if req.path != "/get_user_details" {
		t.Errorf("expected path /get_user_details, got %s", req.path)
	}
	if got := req.body["id"]; got != "user7" {
		t.Errorf("expected id user7, got %v", got)
	}
}

func TestGetAccountInfo(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	if _, err := c.GetAccountInfo(context.Background()); err != nil {
		t.Fatal(err)
	}
	req := rec.requests[0]
	if req.path != "/get_account_info" {
		t.Errorf("expected path /get_account_info, got %s", req.path)
	}
	if len(req.body) != 1 || req.body["auth_token"] != "test-token" {
		t.Errorf("expected body with only auth_token, got %v", req.body)
	}
}

func TestSetWebhook(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	if _, err := c.SetWebhook(context.Background(), "https://bot.example.com/hook", true); err != nil {
		t.Fatal(err)
	}
	req := rec.requests[0]
	if req.path != "/set_webhook" {
		t.Errorf("expected path /set_webhook, got %s", req.path)
	}
	if got := req.body["url"]; got != "https://bot.example.com/hook" {
		t.Errorf("unexpected url: %v", got)
	}
	if got := req.body["is_inline"]; got != true {
		t.Errorf("unexpected is_inline: %v", got)
	}
	events, ok := req.body["event_types"].([]interface{})
	if !ok || len(events) != 2 || events[0] != "delivered" {
		t.Errorf("unexpected event_types: %v", req.body["event_types"])
	}
}

func TestPostToPublicChatValidation(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	_, err := c.PostToPublicChat(context.Background(), nil, TextMessage{Text: "hi"}, nil)
	if !errors.Is(err, ErrMissingSenderProfile) {
		t.Fatalf("expected ErrMissingSenderProfile, got: %v", err)
	}

	from := &UserProfile{ID: "u1", Name: "Alice"}
	_, err = c.PostToPublicChat(context.Background(), from, nil, nil)
	if !errors.Is(err, ErrMissingMessageDataOrType) {
		t.Fatalf("expected ErrMissingMessageDataOrType, got: %v", err)
	}

	_, err = c.PostToPublicChat(context.Background(), from, RawMessage{"type": "text"}, nil)
	if !errors.Is(err, ErrMissingMessageDataOrType) {
		t.Fatalf("expected ErrMissingMessageDataOrType for typed raw message without data, got: %v", err)
	}

	if len(rec.requests) != 0 {
		t.Errorf("expected no network call, got %d", len(rec.requests))
	}
}

func TestPostToPublicChatPayload(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	from := &UserProfile{ID: "u1", Name: "Alice", Avatar: "http://example.com/alice.jpg"}
	_, err := c.PostToPublicChat(context.Background(), from, TextMessage{Text: "announcement"}, &PostOptions{MinAPIVersion: 2})
	if err != nil {
		t.Fatal(err)
	}
	req := rec.requests[0]
	if req.path != "/post" {
		t.Errorf("expected path /post, got %s", req.path)
	}
	if got := req.body["from"]; got != "u1" {
		t.Errorf("expected from u1, got %v", got)
	}
	sender, ok := req.body["sender"].(map[string]interface{})
	if !ok || sender["name"] != "Alice" || sender["avatar"] != "http://example.com/alice.jpg" {
		t.Errorf("unexpected sender: %v", req.body["sender"])
	}
	if got := req.body["min_api_version"]; got != float64(2) {
		t.Errorf("unexpected min_api_version: %v", got)
	}
}

func TestDispatchSuccessResponse(t *testing.T) {
	rec := &recorder{respBody: `{"status":0,"message_token":123}`}
	c := newTestClient(t, rec)

	resp, err := c.SendMessage(context.Background(), "user1", TextMessage{Text: "hi"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != 0 || resp.MessageToken != 123 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if got := resp.Raw["message_token"]; got != float64(123) {
		t.Errorf("expected raw message_token 123, got %v", got)
	}
}

func TestDispatchErrorStatus(t *testing.T) {
	rec := &recorder{respBody: `{"status":3,"status_message":"notSubscribed"}`}
	c := newTestClient(t, rec)

	_, err := c.SendMessage(context.Background(), "user1", TextMessage{Text: "hi"}, nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got: %v", err)
	}
	if statusErr.Response.Status != 3 || statusErr.Response.StatusMessage != "notSubscribed" {
		t.Errorf("unexpected response in error: %+v", statusErr.Response)
	}
	if got := statusErr.Response.Raw["status_message"]; got != "notSubscribed" {
		t.Errorf("expected raw status_message notSubscribed, got %v", got)
	}
	if !strings.Contains(statusErr.Error(), "notSubscribed") {
		t.Errorf("error string should carry the status message: %s", statusErr.Error())
	}
}

func TestDispatchUnknownEndpoint(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	_, err := c.postJSON(context.Background(), "no_such_endpoint", map[string]interface{}{})
	if !errors.Is(err, ErrUnknownEndpoint) {
		t.Fatalf("expected ErrUnknownEndpoint, got: %v", err)
	}
	if len(rec.requests) != 0 {
		t.Errorf("expected no network call, got %d", len(rec.requests))
	}
}

func TestDispatchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // refuse connections

	c := NewClient(Config{
		BaseURL: srv.URL,
		Bot:     BotProfile{AuthToken: "test-token"},
	}, testLogger())

	_, err := c.GetAccountInfo(context.Background())
	if err == nil {
		t.Fatal("expected transport error, got nil")
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		t.Errorf("transport failure must not be a StatusError: %v", err)
	}
}

func TestDispatchAuthTokenPresence(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	if _, err := c.SendMessage(context.Background(), "user1", TextMessage{Text: "hi"}, nil); err != nil {
		t.Fatal(err)
	}
	if got := rec.requests[0].body["auth_token"]; got != "test-token" {
		t.Errorf("expected auth_token test-token, got %v", got)
	}
}

func TestDispatchAuthTokenOverride(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	msg := RawMessage{"type": "text", "text": "hi", "auth_token": "rotated-token"}
	if _, err := c.SendMessage(context.Background(), "user1", msg, nil); err != nil {
		t.Fatal(err)
	}
	if got := rec.requests[0].body["auth_token"]; got != "rotated-token" {
		t.Errorf("caller-supplied auth_token must win, got %v", got)
	}
}

func TestDispatchHeaders(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	if _, err := c.GetAccountInfo(context.Background()); err != nil {
		t.Fatal(err)
	}
	h := rec.requests[0].header
	if got := h.Get("Content-Type"); got != "application/json" {
		t.Errorf("unexpected Content-Type: %s", got)
	}
	if got := h.Get("Accept"); got != "application/json" {
		t.Errorf("unexpected Accept: %s", got)
	}
	if got := h.Get("X-Viber-Auth-Token"); got != "test-token" {
		t.Errorf("unexpected auth header: %s", got)
	}
	if got := h.Get("User-Agent"); got != "ViberBot-Go/"+LibraryVersion {
		t.Errorf("unexpected User-Agent: %s", got)
	}
}

func TestNewClientVersionOverride(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	c := NewClient(Config{
		BaseURL: srv.URL,
		Bot:     BotProfile{AuthToken: "t"},
		Version: "9.9.9",
	}, testLogger())
	if _, err := c.GetAccountInfo(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := rec.requests[0].header.Get("User-Agent"); got != "ViberBot-Go/9.9.9" {
		t.Errorf("unexpected User-Agent: %s", got)
	}
}
