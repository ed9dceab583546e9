package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Jacobbrewer1/intercord/cmd/bridge/config"
	"github.com/Jacobbrewer1/intercord/pkg/bridge"
	"github.com/Jacobbrewer1/intercord/pkg/dataaccess"
	"github.com/Jacobbrewer1/intercord/pkg/entities"
	"github.com/Jacobbrewer1/intercord/pkg/intercom"
	"github.com/Jacobbrewer1/intercord/pkg/logging"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

type stubResponse struct {
	status int
	body   string
}

type intercomCall struct {
	route  string
	header http.Header
	body   map[string]any
}

// intercomServer is a stand in for the Intercom API. Responses are keyed by "METHOD /path".
type intercomServer struct {
	*httptest.Server

	mtx       sync.Mutex
	responses map[string]stubResponse
	calls     []intercomCall

	// errs are failures inside the server goroutine, checked once the server has closed.
	errs []error
}

func newIntercomServer(t *testing.T, responses map[string]stubResponse) *intercomServer {
	t.Helper()

	s := &intercomServer{responses: responses}
	t.Cleanup(func() {
		s.mtx.Lock()
		defer s.mtx.Unlock()
		require.Empty(t, s.errs, "Intercom server failures")
	})

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path
		call := intercomCall{route: route, header: r.Header.Clone()}

		raw, err := io.ReadAll(r.Body)
		if err == nil && len(raw) > 0 {
			err = json.Unmarshal(raw, &call.body)
		}

		s.mtx.Lock()
		if err != nil {
			s.errs = append(s.errs, fmt.Errorf("%s: %w", route, err))
		}
		s.calls = append(s.calls, call)
		resp, ok := s.responses[route]
		s.mtx.Unlock()

		if !ok {
			resp = stubResponse{status: http.StatusNotFound, body: `{"type":"error.list","errors":[{"code":"not_found","message":"Resource Not Found"}]}`}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		_, _ = w.Write([]byte(resp.body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *intercomServer) routes() []string {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	routes := make([]string, len(s.calls))
	for i, c := range s.calls {
		routes[i] = c.route
	}
	return routes
}

func (s *intercomServer) call(route string) (intercomCall, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, c := range s.calls {
		if c.route == route {
			return c, true
		}
	}
	return intercomCall{}, false
}

type sentMessage struct {
	channelID string
	content   string
}

type fakeChat struct {
	mtx      sync.Mutex
	channels map[string]*bridge.Channel
	sent     []sentMessage
}

func newFakeChat(channels ...*bridge.Channel) *fakeChat {
	c := &fakeChat{channels: make(map[string]*bridge.Channel)}
	for _, ch := range channels {
		c.channels[ch.ID] = ch
	}
	return c
}

func (c *fakeChat) FetchChannel(_ context.Context, channelID string) (*bridge.Channel, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	ch, ok := c.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("channel %s: %w", channelID, bridge.ErrNotFound)
	}
	return ch, nil
}

func (c *fakeChat) SendMessage(_ context.Context, channelID, content string) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.sent = append(c.sent, sentMessage{channelID: channelID, content: content})
	return nil
}

func (c *fakeChat) messages() []sentMessage {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return append([]sentMessage(nil), c.sent...)
}

// newTestApp builds an app over the memory store, the fake chat and clients for the given server. When
// configured is set the app also has a client for its own token.
func newTestApp(t *testing.T, srv *intercomServer, configured bool, chat *fakeChat) *App {
	t.Helper()

	l, err := logging.CommonLogger(logging.NewConfig(`tests`))
	require.NoError(t, err, "Failed to create logger")

	a := NewApp(l, mux.NewRouter())
	a.store = dataaccess.NewMemoryBindingDal(l)
	a.newIntercom = func(token string) (intercomAPI, error) {
		c, err := intercom.NewClient(token, intercom.WithBaseURL(srv.URL))
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	if configured {
		api, err := a.newIntercom("configured-token")
		require.NoError(t, err)
		a.api = api
	}
	a.chat = chat

	a.wire(bridge.ReplyModeTicket, "", true)
	a.setupBridgeRoutes()
	t.Cleanup(a.tasks.Wait)
	return a
}

func serve(t *testing.T, a *App, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	a.r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	got := make(map[string]any)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got), rec.Body.String())
	return got
}

func TestStatusHandler(t *testing.T) {
	srv := newIntercomServer(t, nil)
	a := newTestApp(t, srv, false, newFakeChat())

	require.NoError(t, a.store.SaveBinding(context.Background(), &entities.Binding{ChannelID: "111", TicketID: "T1"}))

	rec := serve(t, a, http.MethodGet, PathStatus, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode(t, rec)
	require.Equal(t, "healthy", got["status"])
	require.Equal(t, config.AppName, got["service"])
	require.Equal(t, false, got["bot_ready"])
	require.Equal(t, "Not logged in", got["bot_user"])
	require.EqualValues(t, 1, got["tracked_channels"])
}

func TestTicketsToIntercom_MissingHeaders(t *testing.T) {
	srv := newIntercomServer(t, nil)
	a := newTestApp(t, srv, false, newFakeChat())

	rec := serve(t, a, http.MethodPost, PathTicketsToIntercom, `{"user_id":"42","ticket_id":"7"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	got := decode(t, rec)
	require.Equal(t, false, got["success"])
	require.Equal(t, "Missing required headers: Authorization and X-Ticket-Type-Id", got["message"])
	require.Equal(t, "failed", got["ticket"].(map[string]any)["status"])
	require.Empty(t, srv.routes())
}

func TestTicketsToIntercom_Created(t *testing.T) {
	srv := newIntercomServer(t, map[string]stubResponse{
		"POST /contacts/search": {status: http.StatusOK, body: `{"type":"list","data":[],"total_count":0}`},
		"POST /contacts":        {status: http.StatusOK, body: `{"type":"contact","id":"contact-1","external_id":"42"}`},
		"POST /tickets":         {status: http.StatusOK, body: `{"type":"ticket","id":"tkt-1","ticket_state":"submitted"}`},
	})
	a := newTestApp(t, srv, false, newFakeChat())

	intake := `{
		"guild_id":"9",
		"user_id":"42",
		"ticket_id":"7",
		"ticket_channel_id":"111",
		"username":"sam",
		"panel_name":"Support",
		"form_data":{"What happened?":"It broke","Email":"sam@example.com"}
	}`
	rec := serve(t, a, http.MethodPost, PathTicketsToIntercom, intake, map[string]string{
		"Authorization":      "Bearer caller-token",
		headerTicketTypeID:   "5",
		headerIdempotencyKey: "key-1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode(t, rec)
	require.Equal(t, true, got["success"])
	require.Equal(t, "✅ Ticket created successfully in Intercom!", got["message"])
	require.Equal(t, "tkt-1", got["intercom_ticket_id"])
	require.Equal(t, "submitted", got["intercom_status"])
	require.Equal(t, map[string]any{
		"id":         "7",
		"discord_id": "7",
		"status":     "created_in_intercom",
		"panel":      "Support",
	}, got["ticket"])
	require.Equal(t, map[string]any{
		"username":            "sam",
		"discord_id":          "42",
		"intercom_contact_id": "contact-1",
	}, got["user"])

	require.Equal(t, []string{"POST /contacts/search", "POST /contacts", "POST /tickets"}, srv.routes())

	search, ok := srv.call("POST /contacts/search")
	require.True(t, ok)
	require.Equal(t, "Bearer caller-token", search.header.Get("Authorization"))
	require.Equal(t, "email", search.body["query"].(map[string]any)["field"])

	create, ok := srv.call("POST /tickets")
	require.True(t, ok)
	require.Equal(t, "key-1", create.header.Get("Idempotency-Key"))
	require.Equal(t, "5", create.body["ticket_type_id"])

	a.tasks.Wait()
	b, err := a.store.GetBinding(context.Background(), "111")
	require.NoError(t, err)
	require.Equal(t, "tkt-1", b.TicketID)
	require.Equal(t, "contact-1", b.ContactID)
	require.Equal(t, "42", b.UserID)
}

func TestTicketsToIntercom_ConfiguredTicketType(t *testing.T) {
	old := config.TicketTypeID
	config.TicketTypeID = "configured-type"
	t.Cleanup(func() { config.TicketTypeID = old })

	srv := newIntercomServer(t, map[string]stubResponse{
		"POST /contacts/search": {status: http.StatusOK, body: `{"type":"list","data":[{"type":"contact","id":"contact-1"}]}`},
		"POST /tickets":         {status: http.StatusOK, body: `{"type":"ticket","id":"tkt-1","ticket_state":{"category":"submitted"}}`},
	})
	a := newTestApp(t, srv, false, newFakeChat())

	rec := serve(t, a, http.MethodPost, PathTicketsToIntercom, `{"user_id":"42","ticket_id":"7"}`, map[string]string{
		"Authorization": "Bearer caller-token",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	create, ok := srv.call("POST /tickets")
	require.True(t, ok)
	require.Equal(t, "configured-type", create.body["ticket_type_id"])
}

func TestTicketsToIntercom_Failures(t *testing.T) {
	tests := []struct {
		name        string
		intake      string
		responses   map[string]stubResponse
		debug       bool
		wantStatus  int
		wantDetails any
	}{
		{
			name:       "invalid body",
			intake:     `{"user_id":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing user",
			intake:     `{"ticket_id":"7"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "upstream rejects the ticket",
			intake: `{"user_id":"42","ticket_id":"7"}`,
			responses: map[string]stubResponse{
				"POST /contacts/search": {status: http.StatusOK, body: `{"type":"list","data":[{"id":"contact-1"}]}`},
				"POST /tickets":         {status: http.StatusUnprocessableEntity, body: `{"type":"error.list","errors":[{"code":"parameter_invalid","message":"Ticket type not found"}]}`},
			},
			wantStatus:  http.StatusUnprocessableEntity,
			wantDetails: "Ticket type not found",
		},
		{
			name:   "upstream body when debugging",
			intake: `{"user_id":"42","ticket_id":"7"}`,
			responses: map[string]stubResponse{
				"POST /contacts/search": {status: http.StatusOK, body: `{"type":"list","data":[{"id":"contact-1"}]}`},
				"POST /tickets":         {status: http.StatusUnauthorized, body: `{"type":"error.list","errors":[{"code":"unauthorized","message":"Access Token Invalid"}]}`},
			},
			debug:       true,
			wantStatus:  http.StatusUnauthorized,
			wantDetails: `{"type":"error.list","errors":[{"code":"unauthorized","message":"Access Token Invalid"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := config.DebugUpstreamErrors
			config.DebugUpstreamErrors = tt.debug
			t.Cleanup(func() { config.DebugUpstreamErrors = old })

			srv := newIntercomServer(t, tt.responses)
			a := newTestApp(t, srv, false, newFakeChat())

			rec := serve(t, a, http.MethodPost, PathTicketsToIntercom, tt.intake, map[string]string{
				"Authorization":    "Bearer caller-token",
				headerTicketTypeID: "5",
			})
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			got := decode(t, rec)
			require.Equal(t, false, got["success"])
			require.Equal(t, "failed", got["ticket"].(map[string]any)["status"])
			require.Equal(t, tt.wantDetails, got["details"])
		})
	}
}

func TestValidateSecretsHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		responses  map[string]stubResponse
		wantStatus int
		want       map[string]any
	}{
		{
			name: "valid",
			body: `{"intercom_token":"tok","ticket_type_id":"5"}`,
			responses: map[string]stubResponse{
				"GET /me":             {status: http.StatusOK, body: `{"type":"admin","name":"Ana","app":{"name":"Acme"}}`},
				"GET /ticket_types/5": {status: http.StatusOK, body: `{"id":"5","name":"Bug report"}`},
			},
			wantStatus: http.StatusOK,
			want:       map[string]any{"valid": true, "workspace": "Acme", "ticket_type": "Bug report"},
		},
		{
			name:       "missing secrets",
			body:       `{"intercom_token":"tok"}`,
			wantStatus: http.StatusBadRequest,
			want:       map[string]any{"valid": false, "error": "Missing required secrets: intercom_token and ticket_type_id"},
		},
		{
			name: "bad token",
			body: `{"intercom_token":"tok","ticket_type_id":"5"}`,
			responses: map[string]stubResponse{
				"GET /me": {status: http.StatusUnauthorized, body: `{"type":"error.list","errors":[{"code":"unauthorized","message":"Access Token Invalid"}]}`},
			},
			wantStatus: http.StatusBadRequest,
			want:       map[string]any{"valid": false, "error": "Access Token Invalid"},
		},
		{
			name: "unknown ticket type",
			body: `{"intercom_token":"tok","ticket_type_id":"5"}`,
			responses: map[string]stubResponse{
				"GET /me": {status: http.StatusOK, body: `{"type":"admin","name":"Ana"}`},
			},
			wantStatus: http.StatusBadRequest,
			want:       map[string]any{"valid": false, "error": "Resource Not Found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newIntercomServer(t, tt.responses)
			a := newTestApp(t, srv, false, newFakeChat())

			rec := serve(t, a, http.MethodPost, PathValidateSecrets, tt.body, nil)
			require.Equal(t, tt.wantStatus, rec.Code)
			require.Equal(t, tt.want, decode(t, rec))
		})
	}
}

func TestSendToDiscordHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantSent   []sentMessage
	}{
		{
			name:       "sent",
			body:       `{"channel_id":"111","message":"Hello","author_name":"Ana"}`,
			wantStatus: http.StatusOK,
			wantSent:   []sentMessage{{channelID: "111", content: "**Ana (Intercom):**\nHello"}},
		},
		{
			name:       "unknown channel",
			body:       `{"channel_id":"999","message":"Hello","author_name":"Ana"}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "voice channel",
			body:       `{"channel_id":"222","message":"Hello","author_name":"Ana"}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "missing message",
			body:       `{"channel_id":"111"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := newFakeChat(
				&bridge.Channel{ID: "111", Name: "ticket-7", TextCapable: true},
				&bridge.Channel{ID: "222", Name: "voice"},
			)
			a := newTestApp(t, newIntercomServer(t, nil), false, chat)

			rec := serve(t, a, http.MethodPost, PathSendToDiscord, tt.body, nil)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus == http.StatusNotFound {
				require.Equal(t, "Channel not found", decode(t, rec)["message"])
			}
			require.Equal(t, tt.wantSent, chat.messages())
		})
	}
}

func TestRegisterAndUnregister(t *testing.T) {
	a := newTestApp(t, newIntercomServer(t, nil), false, newFakeChat())

	rec := serve(t, a, http.MethodPost, PathRegisterTicket, `{"discord_channel_id":"111","intercom_ticket_id":"T1","intercom_contact_id":"C1","user_id":"42"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decode(t, rec)["success"])

	rec = serve(t, a, http.MethodGet, PathTrackedChannels, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode(t, rec)
	require.EqualValues(t, 1, got["total"])
	channel := got["channels"].([]any)[0].(map[string]any)
	require.Equal(t, "111", channel["discord_channel_id"])
	require.Equal(t, "T1", channel["intercom_ticket_id"])
	require.NotEmpty(t, channel["registered_at"])

	rec = serve(t, a, http.MethodPost, PathUnregisterTicket, `{"discord_channel_id":"111"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decode(t, rec)["was_tracked"])

	// Removing it again is not an error.
	rec = serve(t, a, http.MethodPost, PathUnregisterTicket, `{"discord_channel_id":"111"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, decode(t, rec)["was_tracked"])

	rec = serve(t, a, http.MethodGet, PathTrackedChannels, nil, nil)
	require.Equal(t, map[string]any{"total": float64(0), "channels": []any{}}, decode(t, rec))
}

func TestRegisterTicket_Invalid(t *testing.T) {
	a := newTestApp(t, newIntercomServer(t, nil), false, newFakeChat())

	rec := serve(t, a, http.MethodPost, PathRegisterTicket, `{"discord_channel_id":"111"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, a, http.MethodPost, PathRegisterTicket, `not json`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFetchAndRegisterHandler(t *testing.T) {
	tests := []struct {
		name       string
		configured bool
		responses  map[string]stubResponse
		wantStatus int
		want       map[string]any
	}{
		{
			name:       "no token configured",
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "registered",
			configured: true,
			responses: map[string]stubResponse{
				"GET /tickets/T1": {status: http.StatusOK, body: `{
					"type":"ticket","id":"T1",
					"ticket_attributes":{"_default_title_":"Help","_default_description_":"Discord User ID: 42\nTicket ID: 7"},
					"contacts":{"type":"contact.list","contacts":[{"type":"contact","id":"C1"}]}
				}`},
			},
			wantStatus: http.StatusOK,
			want: map[string]any{
				"success":    true,
				"message":    "Existing ticket registered for two-way sync",
				"ticket_id":  "T1",
				"contact_id": "C1",
				"user_id":    "42",
				"title":      "Help",
			},
		},
		{
			name:       "no contact",
			configured: true,
			responses: map[string]stubResponse{
				"GET /tickets/T1": {status: http.StatusOK, body: `{"type":"ticket","id":"T1","ticket_attributes":{}}`},
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown ticket",
			configured: true,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t, newIntercomServer(t, tt.responses), tt.configured, newFakeChat())

			rec := serve(t, a, http.MethodPost, PathFetchAndRegister, `{"ticket_id":"T1","discord_channel_id":"111"}`, nil)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			count, err := a.store.CountBindings(context.Background())
			require.NoError(t, err)
			if tt.want == nil {
				require.Zero(t, count)
				return
			}
			require.Equal(t, tt.want, decode(t, rec))
			require.EqualValues(t, 1, count)
		})
	}
}

func TestCloseTicketHandler(t *testing.T) {
	t.Run("tracked channel", func(t *testing.T) {
		srv := newIntercomServer(t, map[string]stubResponse{
			"PUT /tickets/T1": {status: http.StatusOK, body: `{"type":"ticket","id":"T1","ticket_state":"resolved"}`},
		})
		a := newTestApp(t, srv, true, newFakeChat())
		require.NoError(t, a.store.SaveBinding(context.Background(), &entities.Binding{ChannelID: "111", TicketID: "T1", ContactID: "C1"}))

		rec := serve(t, a, http.MethodPost, PathCloseTicket, `{"discord_channel_id":"111","ticket_id":"7"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got := decode(t, rec)
		require.Equal(t, true, got["success"])
		require.Equal(t, "T1", got["intercom_ticket_id"])
		require.Equal(t, true, got["unregistered"])

		update, ok := srv.call("PUT /tickets/T1")
		require.True(t, ok)
		require.Equal(t, "resolved", update.body["state"])
	})

	t.Run("nothing to close", func(t *testing.T) {
		srv := newIntercomServer(t, map[string]stubResponse{
			"POST /tickets/search": {status: http.StatusOK, body: `{"type":"ticket.list","tickets":[]}`},
		})
		a := newTestApp(t, srv, true, newFakeChat())

		rec := serve(t, a, http.MethodPost, PathCloseTicket, `{"discord_channel_id":"111","ticket_id":"7","intercom_contact_id":"C1"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got := decode(t, rec)
		require.Equal(t, false, got["success"])
		require.Equal(t, false, got["unregistered"])
		require.Equal(t, []string{"POST /tickets/search"}, srv.routes())
	})

	t.Run("no token configured", func(t *testing.T) {
		a := newTestApp(t, newIntercomServer(t, nil), false, newFakeChat())

		rec := serve(t, a, http.MethodPost, PathCloseTicket, `{"discord_channel_id":"111"}`, nil)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestIntercomWebhookHandler(t *testing.T) {
	notification := `{
		"type":"notification_event",
		"topic":"ticket.admin.replied",
		"data":{"item":{
			"ticket":{"type":"ticket","id":"T1","ticket_attributes":{"_default_description_":"---\nChannel ID: 111\nTicket ID: 7"}},
			"ticket_part":{"author":{"type":"admin","name":"Ana"},"body":"<p>We are <b>on it</b></p>"}
		}}
	}`

	chat := newFakeChat(&bridge.Channel{ID: "111", TextCapable: true})
	a := newTestApp(t, newIntercomServer(t, nil), true, chat)

	rec := serve(t, a, http.MethodPost, PathIntercomWebhook, notification, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, map[string]any{"received": true}, decode(t, rec))

	a.tasks.Wait()
	require.Equal(t, []sentMessage{{channelID: "111", content: "**Ana (Intercom):**\nWe are **on it**"}}, chat.messages())
}

func TestIntercomWebhookHandler_Ignored(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "ping",
			body: `{"type":"notification_event","topic":"ping","data":{"item":{"type":"ping","message":"hello"}}}`,
		},
		{
			name: "user reply",
			body: `{"topic":"ticket.admin.replied","data":{"item":{
				"ticket":{"id":"T1","ticket_attributes":{"_default_description_":"Channel ID: 111"}},
				"ticket_part":{"author":{"type":"user"},"body":"echo"}
			}}}`,
		},
		{
			name: "no marker",
			body: `{"topic":"ticket.admin.replied","data":{"item":{
				"ticket":{"id":"T1","ticket_attributes":{"_default_description_":"created elsewhere"}},
				"ticket_part":{"author":{"type":"admin"},"body":"hi"}
			}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := newFakeChat(&bridge.Channel{ID: "111", TextCapable: true})
			a := newTestApp(t, newIntercomServer(t, nil), true, chat)

			rec := serve(t, a, http.MethodPost, PathIntercomWebhook, tt.body, nil)
			require.Equal(t, http.StatusOK, rec.Code)

			a.tasks.Wait()
			require.Empty(t, chat.messages())
		})
	}
}

func TestIntercomWebhookHandler_InvalidBody(t *testing.T) {
	a := newTestApp(t, newIntercomServer(t, nil), true, newFakeChat())

	rec := serve(t, a, http.MethodPost, PathIntercomWebhook, `{"topic":`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRelayChatMessage(t *testing.T) {
	t.Run("no token configured", func(t *testing.T) {
		srv := newIntercomServer(t, nil)
		a := newTestApp(t, srv, false, newFakeChat())
		require.NoError(t, a.store.SaveBinding(context.Background(), &entities.Binding{ChannelID: "111", TicketID: "T1"}))

		got := a.relayChatMessage(context.Background(), &bridge.ChatMessage{ChannelID: "111", AuthorID: "42", Content: "hi"})
		require.Equal(t, bridge.OutcomeSkipped, got)
		require.Empty(t, srv.routes())
	})

	t.Run("relayed", func(t *testing.T) {
		srv := newIntercomServer(t, map[string]stubResponse{
			"POST /tickets/T1/reply": {status: http.StatusOK, body: `{"type":"ticket_part","id":"P1"}`},
		})
		a := newTestApp(t, srv, true, newFakeChat())
		require.NoError(t, a.store.SaveBinding(context.Background(), &entities.Binding{ChannelID: "111", TicketID: "T1", ContactID: "C1"}))

		got := a.relayChatMessage(context.Background(), &bridge.ChatMessage{ChannelID: "111", AuthorID: "42", Content: "hi"})
		require.Equal(t, bridge.OutcomeRelayed, got)

		reply, ok := srv.call("POST /tickets/T1/reply")
		require.True(t, ok)
		require.Equal(t, "hi", reply.body["body"])
		require.Equal(t, "C1", reply.body["intercom_user_id"])
	})

	t.Run("upstream failure", func(t *testing.T) {
		a := newTestApp(t, newIntercomServer(t, nil), true, newFakeChat())
		require.NoError(t, a.store.SaveBinding(context.Background(), &entities.Binding{ChannelID: "111", TicketID: "T1", ContactID: "C1"}))

		got := a.relayChatMessage(context.Background(), &bridge.ChatMessage{ChannelID: "111", AuthorID: "42", Content: "hi"})
		require.Equal(t, bridge.OutcomeFailed, got)
	})

	t.Run("untracked", func(t *testing.T) {
		srv := newIntercomServer(t, nil)
		a := newTestApp(t, srv, true, newFakeChat())

		got := a.relayChatMessage(context.Background(), &bridge.ChatMessage{ChannelID: "111", AuthorID: "42", Content: "hi"})
		require.Equal(t, bridge.OutcomeNotTracked, got)
		require.Empty(t, srv.routes())
	})
}

func TestNotFound(t *testing.T) {
	a := newTestApp(t, newIntercomServer(t, nil), false, newFakeChat())

	rec := serve(t, a, http.MethodGet, "/nope", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	got := decode(t, rec)
	require.Len(t, got["available_endpoints"], len(availableEndpoints))
}

// failingStore fails every listing.
type failingStore struct {
	dataaccess.BindingDal
}

func (failingStore) ListBindings(context.Context) ([]*entities.Binding, error) {
	return nil, errors.New("store unavailable")
}

func TestTrackedChannels_StoreFailure(t *testing.T) {
	a := newTestApp(t, newIntercomServer(t, nil), false, newFakeChat())
	a.store = failingStore{BindingDal: a.store}

	rec := serve(t, a, http.MethodGet, PathTrackedChannels, nil, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, map[string]any{"message": "internal server error"}, decode(t, rec))
}

func TestMiddlewareHttp_RecoversPanic(t *testing.T) {
	a := newTestApp(t, newIntercomServer(t, nil), false, newFakeChat())
	a.r.HandleFunc("/panic", middlewareHttp(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}, a)).Methods(http.MethodGet)

	rec := serve(t, a, http.MethodGet, "/panic", nil, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, map[string]any{"message": "internal server error"}, decode(t, rec))
}
