package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/marketpulse/marketpulse/internal/googleauth"
	"github.com/marketpulse/marketpulse/internal/middleware"
	"github.com/marketpulse/marketpulse/internal/models"
	"github.com/marketpulse/marketpulse/internal/services"
	"github.com/marketpulse/marketpulse/internal/store"
)

// asUser stubs the auth middleware so handler tests run without tokens.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type fakeCredentialManager struct {
	connectErr    error
	profileErr    error
	disconnectErr error

	lastCode         string
	disconnectedUser string
}

func (f *fakeCredentialManager) Connect(_ context.Context, userID, code string) (*models.GoogleCredential, error) {
	f.lastCode = code
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	return &models.GoogleCredential{ID: userID, AccessToken: "at"}, nil
}

func (f *fakeCredentialManager) Profile(context.Context, string) (*services.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return &services.Profile{Email: "owner@vamos.es"}, nil
}

func (f *fakeCredentialManager) Disconnect(_ context.Context, userID string) error {
	if f.disconnectErr != nil {
		return f.disconnectErr
	}
	f.disconnectedUser = userID
	return nil
}

type recordedEvent struct {
	event   string
	success bool
}

type fakeRecorder struct {
	events []recordedEvent
}

func (f *fakeRecorder) RecordCacheLookup(string) {}
func (f *fakeRecorder) RecordCacheWrite(bool)    {}
func (f *fakeRecorder) RecordCredentialEvent(event string, success bool) {
	f.events = append(f.events, recordedEvent{event, success})
}

func newCredentialRouter(manager *fakeCredentialManager, recorder *fakeRecorder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewCredentialHandler(manager, recorder)
	r := gin.New()
	api := r.Group("/api", asUser("u1"))
	api.POST("/google-oauth", h.Connect)
	api.GET("/google-oauth", h.Profile)
	api.DELETE("/google-oauth", h.Disconnect)
	return r
}

func TestConnect_Success(t *testing.T) {
	manager := &fakeCredentialManager{}
	recorder := &fakeRecorder{}
	r := newCredentialRouter(manager, recorder)

	w := doRequest(r, http.MethodPost, "/api/google-oauth", `{"code":"auth-code"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "auth-code", manager.lastCode)
	assert.Contains(t, w.Body.String(), `"message":"google oauth connected"`)
	assert.Equal(t, []recordedEvent{{"connect", true}}, recorder.events)
}

func TestConnect_MissingCode(t *testing.T) {
	r := newCredentialRouter(&fakeCredentialManager{}, &fakeRecorder{})

	w := doRequest(r, http.MethodPost, "/api/google-oauth", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConnect_ConflictWhenAlreadyConnected(t *testing.T) {
	manager := &fakeCredentialManager{connectErr: store.ErrCredentialExists}
	recorder := &fakeRecorder{}
	r := newCredentialRouter(manager, recorder)

	w := doRequest(r, http.MethodPost, "/api/google-oauth", `{"code":"auth-code"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, []recordedEvent{{"connect", false}}, recorder.events)
}

func TestConnect_InvalidCode(t *testing.T) {
	manager := &fakeCredentialManager{connectErr: services.ErrInvalidCode}
	r := newCredentialRouter(manager, &fakeRecorder{})

	w := doRequest(r, http.MethodPost, "/api/google-oauth", `{"code":"bad"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfile_NotConnected(t *testing.T) {
	manager := &fakeCredentialManager{profileErr: googleauth.ErrCredentialNotFound}
	r := newCredentialRouter(manager, &fakeRecorder{})

	w := doRequest(r, http.MethodGet, "/api/google-oauth", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDisconnect_Success(t *testing.T) {
	manager := &fakeCredentialManager{}
	recorder := &fakeRecorder{}
	r := newCredentialRouter(manager, recorder)

	w := doRequest(r, http.MethodDelete, "/api/google-oauth", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", manager.disconnectedUser)
	assert.Equal(t, []recordedEvent{{"disconnect", true}}, recorder.events)
}
