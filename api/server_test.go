package api

import (
	"batepapo/repositories"
	"batepapo/services"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func newTestHandler(t *testing.T) (http.Handler, *fakeClock) {
	t.Helper()
	req := require.New(t)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	participants, err := repositories.NewParticipantRepository(db)
	req.NoError(err)
	t.Cleanup(func() { _ = participants.Close() })

	messages, err := repositories.NewMessageRepository(db)
	req.NoError(err)
	t.Cleanup(func() { _ = messages.Close() })

	clock := &fakeClock{now: time.Date(2024, 5, 1, 20, 4, 37, 0, time.UTC)}
	log := slog.Default()
	router := services.NewRouterService(participants, messages, clock, log)
	registry := services.NewRegistryService(participants, router, clock, log)
	return NewServer(registry, router, log).Handler(), clock
}

func do(handler http.Handler, method, target, user, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	request := httptest.NewRequest(method, target, reader)
	if user != "" {
		request.Header.Set(IdentityHeader, user)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func Test_Join_Then_Conflict(t *testing.T) {
	req := require.New(t)
	handler, clock := newTestHandler(t)

	resp := do(handler, http.MethodPost, "/participants", "", `{"name":"Ana"}`)
	req.Equal(http.StatusCreated, resp.Code)

	resp = do(handler, http.MethodPost, "/participants", "", `{"name":"Ana"}`)
	req.Equal(http.StatusConflict, resp.Code)

	resp = do(handler, http.MethodGet, "/participants", "", "")
	req.Equal(http.StatusOK, resp.Code)
	var participants []struct {
		Name       string `json:"name"`
		LastStatus int64  `json:"lastStatus"`
	}
	req.NoError(json.Unmarshal(resp.Body.Bytes(), &participants))
	req.Len(participants, 1)
	req.Equal("Ana", participants[0].Name)
	req.Equal(clock.now.UnixMilli(), participants[0].LastStatus)
}

func Test_Join_Validation_Returns_All_Messages(t *testing.T) {
	req := require.New(t)
	handler, _ := newTestHandler(t)

	resp := do(handler, http.MethodPost, "/participants", "", `{}`)
	req.Equal(http.StatusUnprocessableEntity, resp.Code)

	var violations []string
	req.NoError(json.Unmarshal(resp.Body.Bytes(), &violations))
	req.Equal([]string{"name is required"}, violations)
}

func Test_Broadcast_Message_Flow(t *testing.T) {
	req := require.New(t)
	handler, _ := newTestHandler(t)

	do(handler, http.MethodPost, "/participants", "", `{"name":"Ana"}`)

	resp := do(handler, http.MethodPost, "/messages", "Ana", `{"to":"Todos","text":"oi","type":"message"}`)
	req.Equal(http.StatusCreated, resp.Code)

	// Broadcast is visible to a reader who never joined.
	resp = do(handler, http.MethodGet, "/messages", "Bob", "")
	req.Equal(http.StatusOK, resp.Code)
	var messages []struct {
		From string `json:"from"`
		To   string `json:"to"`
		Text string `json:"text"`
		Type string `json:"type"`
		Time string `json:"time"`
	}
	req.NoError(json.Unmarshal(resp.Body.Bytes(), &messages))
	req.Len(messages, 2) // join notice + broadcast
	req.Equal("status", messages[0].Type)
	req.Equal("oi", messages[1].Text)
	req.Equal("20:04:37", messages[1].Time)
}

func Test_Private_Message_Flow(t *testing.T) {
	req := require.New(t)
	handler, _ := newTestHandler(t)

	do(handler, http.MethodPost, "/participants", "", `{"name":"Ana"}`)
	resp := do(handler, http.MethodPost, "/messages", "Ana", `{"to":"Bob","text":"hi","type":"private_message"}`)
	req.Equal(http.StatusCreated, resp.Code)

	count := func(user string) int {
		resp := do(handler, http.MethodGet, "/messages", user, "")
		req.Equal(http.StatusOK, resp.Code)
		var messages []struct {
			Type string `json:"type"`
		}
		req.NoError(json.Unmarshal(resp.Body.Bytes(), &messages))
		n := 0
		for _, m := range messages {
			if m.Type == "private_message" {
				n++
			}
		}
		return n
	}

	req.Equal(1, count("Bob"))
	req.Equal(1, count("Ana"))
	req.Equal(0, count("Carol"))
}

func Test_Send_Requires_Known_Sender(t *testing.T) {
	req := require.New(t)
	handler, _ := newTestHandler(t)

	// No User header at all.
	resp := do(handler, http.MethodPost, "/messages", "", `{"to":"Todos","text":"oi","type":"message"}`)
	req.Equal(http.StatusUnprocessableEntity, resp.Code)

	// Header names a participant that never joined.
	resp = do(handler, http.MethodPost, "/messages", "Ghost", `{"to":"Todos","text":"oi","type":"message"}`)
	req.Equal(http.StatusUnprocessableEntity, resp.Code)
}

func Test_Fetch_Limit_Validation(t *testing.T) {
	req := require.New(t)
	handler, _ := newTestHandler(t)

	for _, raw := range []string{"-1", "0", "x"} {
		resp := do(handler, http.MethodGet, "/messages?limit="+raw, "Ana", "")
		req.Equal(http.StatusUnprocessableEntity, resp.Code, "limit=%s", raw)
	}

	resp := do(handler, http.MethodGet, "/messages?limit=3", "Ana", "")
	req.Equal(http.StatusOK, resp.Code)
}

func Test_Heartbeat_Endpoint(t *testing.T) {
	req := require.New(t)
	handler, _ := newTestHandler(t)

	resp := do(handler, http.MethodPost, "/status", "", "")
	req.Equal(http.StatusNotFound, resp.Code)

	resp = do(handler, http.MethodPost, "/status", "Ghost", "")
	req.Equal(http.StatusNotFound, resp.Code)

	do(handler, http.MethodPost, "/participants", "", `{"name":"Ana"}`)
	resp = do(handler, http.MethodPost, "/status", "Ana", "")
	req.Equal(http.StatusOK, resp.Code)
}
