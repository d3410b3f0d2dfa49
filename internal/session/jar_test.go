package session

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJar(t *testing.T) {
	store := openTestStore(t)
	kv := store.Session("abc")
	u, _ := url.Parse("http://api.example.com/api/leads")

	jar := NewJar("http://api.example.com/api", kv, testLogger())
	jar.SetCookies(u, []*http.Cookie{
		{Name: "sid", Value: "one", Path: "/"},
		{Name: "scoped", Value: "x", Path: "/admin"},
		{Name: "tls", Value: "y", Secure: true},
	})

	got := jar.Cookies(u)
	require.Len(t, got, 1)
	assert.Equal(t, "sid", got[0].Name)

	// other hosts get nothing
	other, _ := url.Parse("http://evil.example.com/")
	assert.Empty(t, jar.Cookies(other))
	jar.SetCookies(other, []*http.Cookie{{Name: "x", Value: "1"}})
	assert.Equal(t, 3, jar.Len())

	// persisted across jars
	reloaded := NewJar("http://api.example.com/api", kv, testLogger())
	assert.Equal(t, 3, reloaded.Len())

	// replace and delete
	reloaded.SetCookies(u, []*http.Cookie{{Name: "sid", Value: "two", Path: "/"}})
	got = reloaded.Cookies(u)
	require.Len(t, got, 1)
	assert.Equal(t, "two", got[0].Value)

	reloaded.SetCookies(u, []*http.Cookie{{Name: "sid", Path: "/", MaxAge: -1}})
	assert.Empty(t, reloaded.Cookies(u))
}

func TestJarMergesConcurrentSessions(t *testing.T) {
	store := openTestStore(t)
	kv := store.Session("abc")
	u, _ := url.Parse("http://api.example.com/")

	// two requests of one browser load their jars before either writes
	first := NewJar("http://api.example.com", kv, testLogger())
	second := NewJar("http://api.example.com", kv, testLogger())

	first.SetCookies(u, []*http.Cookie{{Name: "sid", Value: "s-1", Path: "/"}})
	second.SetCookies(u, []*http.Cookie{{Name: "csrf", Value: "c-1", Path: "/"}})

	assert.Equal(t, 2, second.Len())
	reloaded := NewJar("http://api.example.com", kv, testLogger())
	got := reloaded.Cookies(u)
	require.Len(t, got, 2)
	names := []string{got[0].Name, got[1].Name}
	assert.ElementsMatch(t, []string{"sid", "csrf"}, names)
}

func TestJarExpiry(t *testing.T) {
	store := openTestStore(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	jar := NewJar("http://api.example.com", store.Session("abc"), testLogger())
	jar.now = func() time.Time { return now }
	u, _ := url.Parse("http://api.example.com/")

	jar.SetCookies(u, []*http.Cookie{{Name: "sid", Value: "v", MaxAge: 60}})
	assert.Len(t, jar.Cookies(u), 1)

	now = now.Add(2 * time.Minute)
	assert.Empty(t, jar.Cookies(u))
}

func TestPathMatch(t *testing.T) {
	tests := []struct {
		cookie, req string
		want        bool
	}{
		{"/", "/leads", true},
		{"/api", "/api", true},
		{"/api", "/api/leads", true},
		{"/api/", "/api/leads", true},
		{"/api", "/apiv2", false},
		{"/admin", "/api", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pathMatch(tt.cookie, tt.req), "%s vs %s", tt.cookie, tt.req)
	}
}
