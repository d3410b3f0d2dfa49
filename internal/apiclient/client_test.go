package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSendsAPIKeyAndDecodes(t *testing.T) {
	var gotQuery url.Values
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"lead":{"id":7,"name":"Ann"}}}`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "secret")

	var out struct {
		Data struct {
			Lead map[string]any `json:"lead"`
		} `json:"data"`
	}
	err := c.Do(context.Background(), http.MethodPost, "/leads", url.Values{"status": {"NEW"}}, map[string]string{"name": "Ann"}, &out)
	require.NoError(t, err)

	assert.Equal(t, "secret", gotQuery.Get("api_key"))
	assert.Equal(t, "NEW", gotQuery.Get("status"))
	assert.JSONEq(t, `{"name":"Ann"}`, gotBody)
	assert.Equal(t, "Ann", out.Data.Lead["name"])
}

func TestDoWithoutAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("api_key"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var out map[string]any
	require.NoError(t, New(srv.URL, "").Do(context.Background(), http.MethodDelete, "/leads/1", nil, nil, &out))
}

func TestDoErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message":"Email already exists"}`)
	}))
	defer srv.Close()

	err := New(srv.URL, "").Do(context.Background(), http.MethodPost, "/leads", nil, map[string]any{}, nil)
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "Email already exists", apiErr.Message)
	assert.Equal(t, "Email already exists", Message(err, "Failed to create"))
	assert.True(t, IsStatus(err, http.StatusUnprocessableEntity))
}

func TestMessageFallback(t *testing.T) {
	assert.Equal(t, "fallback", Message(errors.New("dial tcp: refused"), "fallback"))
	assert.Equal(t, "fallback", Message(&Error{Status: 500}, "fallback"))
	assert.Equal(t, "fallback", Message(nil, "fallback"))
}

func TestErrorWithoutJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL, "").Do(context.Background(), http.MethodGet, "/leads", nil, nil, nil)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "HTTP 502", apiErr.Error())
	assert.Contains(t, string(apiErr.Body), "bad gateway")
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	err := New(srv.URL, "").Do(context.Background(), http.MethodGet, "/health", nil, nil, nil)
	require.Error(t, err)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/leads/export", r.URL.Path)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)
		fmt.Fprint(w, "id,name\n1,Ann\n")
	}))
	defer srv.Close()

	blob, err := New(srv.URL, "k").Download(context.Background(), "/leads/export", nil)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", blob.ContentType)
	assert.Equal(t, "leads.csv", blob.Filename)
	assert.Equal(t, "id,name\n1,Ann\n", string(blob.Data))
}

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "import.csv", header.Filename)
		assert.Equal(t, "id,name\n", string(data))
		fmt.Fprint(w, `{"data":{"count":1}}`)
	}))
	defer srv.Close()

	var out struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	err := New(srv.URL, "").Upload(context.Background(), "/leads/bulk_csv", "file", "import.csv", strings.NewReader("id,name\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Data.Count)
}

func TestWithJarForwardsCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
			return
		}
		c, err := r.Cookie("sid")
		if err != nil || c.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	base := New(srv.URL, "")
	c := base.WithJar(jar)
	ctx := context.Background()

	require.NoError(t, c.Do(ctx, http.MethodPost, "/auth/login", nil, nil, nil))
	require.NoError(t, c.Do(ctx, http.MethodGet, "/leads", nil, nil, nil))

	// the base client has no jar
	err = base.Do(ctx, http.MethodGet, "/leads", nil, nil, nil)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
}
