package session

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path,omitempty"`
	Secure  bool      `json:"secure,omitempty"`
	Expires time.Time `json:"expires,omitempty"`
}

func (c storedCookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

// Jar is an http.CookieJar holding the backend's cookies for one browser
// session. Cookies are persisted under auth:cookies so the backend session
// survives panel restarts. Only cookies for the backend host are kept.
type Jar struct {
	mu      sync.Mutex
	host    string
	kv      Storage
	logger  *slog.Logger
	cookies []storedCookie
	now     func() time.Time
}

// NewJar loads the persisted cookies of a session for the backend at baseURL
func NewJar(baseURL string, kv Storage, logger *slog.Logger) *Jar {
	j := &Jar{kv: kv, logger: logger, now: time.Now}
	if u, err := url.Parse(baseURL); err == nil {
		j.host = u.Hostname()
	}
	if _, err := kv.Get(KeyCookies, &j.cookies); err != nil {
		logger.Warn("failed to load backend cookies", "error", err)
		j.cookies = nil
	}
	return j
}

// SetCookies implements http.CookieJar
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if u.Hostname() != j.host {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	apply := func(list []storedCookie) []storedCookie {
		for _, c := range cookies {
			path := c.Path
			if path == "" {
				path = "/"
			}
			list = removeCookie(list, c.Name, path)

			if c.MaxAge < 0 {
				continue
			}
			sc := storedCookie{Name: c.Name, Value: c.Value, Path: path, Secure: c.Secure}
			switch {
			case c.MaxAge > 0:
				sc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
			case !c.Expires.IsZero():
				sc.Expires = c.Expires
			}
			if sc.expired(now) {
				continue
			}
			list = append(list, sc)
		}
		return list
	}

	// merge into the stored list so cookies written by other requests of
	// this session survive
	var stored []storedCookie
	err := j.kv.Modify(KeyCookies, &stored, func() error {
		stored = apply(stored)
		return nil
	})
	if err != nil {
		j.logger.Warn("failed to persist backend cookies", "error", err)
		j.cookies = apply(j.cookies)
		return
	}
	j.cookies = stored
}

// Cookies implements http.CookieJar
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	if u.Hostname() != j.host {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	path := u.Path
	if path == "" {
		path = "/"
	}

	var out []*http.Cookie
	for _, c := range j.cookies {
		if c.expired(now) {
			continue
		}
		if c.Secure && u.Scheme != "https" {
			continue
		}
		if !pathMatch(c.Path, path) {
			continue
		}
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

// Clear drops every cookie
func (j *Jar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cookies = nil
	if err := j.kv.Delete(KeyCookies); err != nil {
		j.logger.Warn("failed to clear backend cookies", "error", err)
	}
}

// Len returns the number of stored cookies
func (j *Jar) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.cookies)
}

func removeCookie(list []storedCookie, name, path string) []storedCookie {
	kept := list[:0]
	for _, c := range list {
		if c.Name == name && c.Path == path {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func pathMatch(cookiePath, reqPath string) bool {
	if cookiePath == reqPath || cookiePath == "/" {
		return true
	}
	if !strings.HasPrefix(reqPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || reqPath[len(cookiePath)] == '/'
}
