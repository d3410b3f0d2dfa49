package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxzi/leadboard/internal/apiclient"
	"github.com/foxzi/leadboard/internal/models"
)

func newTestManager(t *testing.T) (*Manager, *Store) {
	t.Helper()
	store := openTestStore(t)
	m := NewManager(store, apiclient.New("http://backend.invalid", ""), ManagerConfig{
		Secret: testSecret,
		TTL:    time.Hour,
	}, testLogger())
	return m, store
}

func TestManagerIssuesAndReusesCookie(t *testing.T) {
	m, store := newTestManager(t)

	var seen *Session
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, seen)
	assert.Equal(t, StatusUnauthenticated, seen.State().Status)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "leadboard_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	firstID := seen.ID

	// sign the session in behind the manager's back
	require.NoError(t, store.Session(firstID).Put(KeyUser, models.User{Name: "Ann"}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, firstID, seen.ID)
	assert.Equal(t, StatusAuthenticated, seen.State().Status)
	assert.Empty(t, rec.Result().Cookies())
}

func TestManagerRejectsForgedCookie(t *testing.T) {
	m, _ := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "leadboard_session", Value: "forged"})
	rec := httptest.NewRecorder()

	s := m.Load(rec, req)
	assert.NotEmpty(t, s.ID)
	assert.Len(t, rec.Result().Cookies(), 1)
}

func TestFromContextEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, FromContext(req.Context()))
}
