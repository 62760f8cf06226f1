package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmchat/internal/app/chat"
	"dmchat/internal/app/message"
	"dmchat/internal/app/user"
	"dmchat/internal/configs"
	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/resp"
)

const routerTestSecret = "router-test-secret"

type testEnv struct {
	handler  http.Handler
	deps     *AppDeps
	users    *user.Service
	messages *message.Log
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := user.NewService(user.NewMemoryRepository())
	messages := message.NewLog(message.NewMemoryRepository())
	deps := &AppDeps{
		Broker:   chat.NewBroker(messages, routerTestSecret),
		Users:    users,
		Messages: messages,
		Config: &configs.AppConfig{
			Environment: "development",
			Port:        8080,
			JWTSecret:   routerTestSecret,
		},
	}

	return &testEnv{
		handler:  Router(deps),
		deps:     deps,
		users:    users,
		messages: messages,
	}
}

func (e *testEnv) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) tokenFor(t *testing.T, name string) string {
	t.Helper()
	token, err := jwt.GenerateToken(name, routerTestSecret, time.Minute)
	require.NoError(t, err)
	return token
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) resp.ErrorBody {
	t.Helper()
	var body resp.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get(t, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRegisterCreated(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postJSON(t, "/register", CredentialsInput{Name: "alice", Password: "hunter2"})

	require.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice", body["name"])
}

func TestRegisterMissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postJSON(t, "/register", CredentialsInput{Name: "alice"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errs.ErrMissingFields, decodeErrorBody(t, rec).Code)
}

func TestRegisterMalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterConflict(t *testing.T) {
	env := newTestEnv(t)

	first := env.postJSON(t, "/register", CredentialsInput{Name: "alice", Password: "one"})
	require.Equal(t, http.StatusCreated, first.Code)

	second := env.postJSON(t, "/register", CredentialsInput{Name: "alice", Password: "two"})
	require.Equal(t, http.StatusConflict, second.Code)
	assert.Equal(t, errs.ErrNameTaken, decodeErrorBody(t, second).Code)
}

func TestLoginIssuesToken(t *testing.T) {
	env := newTestEnv(t)
	env.postJSON(t, "/register", CredentialsInput{Name: "alice", Password: "hunter2"})

	rec := env.postJSON(t, "/login", CredentialsInput{Name: "alice", Password: "hunter2"})

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["token"])

	payload, err := jwt.ParseToken(body["token"], routerTestSecret)
	require.NoError(t, err)
	assert.Equal(t, "alice", payload.Name)
}

func TestLoginBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.postJSON(t, "/register", CredentialsInput{Name: "alice", Password: "hunter2"})

	wrongPassword := env.postJSON(t, "/login", CredentialsInput{Name: "alice", Password: "nope"})
	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, errs.ErrInvalidCredentials, decodeErrorBody(t, wrongPassword).Code)

	unknownUser := env.postJSON(t, "/login", CredentialsInput{Name: "mallory", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
}

func TestContactsRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	missing := env.get(t, "/contacts", "")
	require.Equal(t, http.StatusUnauthorized, missing.Code)
	assert.Equal(t, errs.ErrMissingToken, decodeErrorBody(t, missing).Code)

	invalid := env.get(t, "/contacts", "garbage-token")
	require.Equal(t, http.StatusForbidden, invalid.Code)
	assert.Equal(t, errs.ErrInvalidToken, decodeErrorBody(t, invalid).Code)
}

func TestContactsExcludesCaller(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"alice", "bob", "carol"} {
		_, err := env.users.Register(context.Background(), name, "secret")
		require.NoError(t, err)
	}

	rec := env.get(t, "/contacts", env.tokenFor(t, "bob"))

	require.Equal(t, http.StatusOK, rec.Code)
	var contacts []user.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contacts))
	assert.Equal(t, []user.Summary{{Name: "alice"}, {Name: "carol"}}, contacts)
}

func TestMessagesAscendingAndPairScoped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.messages.Persist(ctx, "alice", "bob", "c1")
	require.NoError(t, err)
	_, err = env.messages.Persist(ctx, "bob", "alice", "c2")
	require.NoError(t, err)
	_, err = env.messages.Persist(ctx, "alice", "carol", "c3")
	require.NoError(t, err)

	rec := env.get(t, "/messages/bob", env.tokenFor(t, "alice"))

	require.Equal(t, http.StatusOK, rec.Code)
	var history []message.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 2)
	assert.Equal(t, "c1", history[0].Content)
	assert.Equal(t, "c2", history[1].Content)
	assert.False(t, history[1].Timestamp.Before(history[0].Timestamp))
}

func TestMessagesEmptyConversation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/messages/stranger", env.tokenFor(t, "alice"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestMessagesRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/messages/bob", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRateLimit(t *testing.T) {
	env := newTestEnv(t)

	var last *httptest.ResponseRecorder
	for i := 0; i <= AuthBurst; i++ {
		last = env.postJSON(t, "/login", CredentialsInput{Name: "alice", Password: "x"})
	}

	require.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, errs.ErrRateLimitExceeded, decodeErrorBody(t, last).Code)
}
