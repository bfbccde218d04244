package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	token      string
	next       string
	refreshErr error
	refreshes  int
}

func (f *fakeTokens) AccessToken() string { return f.token }

func (f *fakeTokens) Refresh(ctx context.Context) (string, error) {
	f.refreshes++
	if f.refreshErr != nil {
		f.token = ""
		return "", f.refreshErr
	}
	f.token = f.next
	return f.token, nil
}

func TestDo_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"message":"ok","data":[]}`)
	}))
	defer srv.Close()

	c := New(srv.URL).WithTokens(&fakeTokens{token: "abc"})
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/listings/listings"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth)
}

func TestDo_NoAuthSkipsToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "abc"}
	c := New(srv.URL).WithTokens(tokens)
	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/securities/auth/login", NoAuth: true})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, gotAuth)
	assert.Equal(t, 0, tokens.refreshes)
}

func TestDo_RefreshesOnceAndRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		fmt.Fprintf(w, `{"message":"ok","data":%s}`, body)
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "stale", next: "fresh"}
	c := New(srv.URL).WithTokens(tokens)

	var out map[string]int
	err := c.JSON(context.Background(), Request{
		Method: http.MethodPut,
		Path:   "/listings/listings/1",
		Body:   map[string]int{"price": 5},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, 5, out["price"], "the retried request carries the original body")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, tokens.refreshes)
}

func TestDo_SecondUnauthorizedIsHardFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Token invalid"}`)
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "stale", next: "still-bad"}
	c := New(srv.URL).WithTokens(tokens)
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/securities/users"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "no refresh loop")
	assert.Equal(t, 1, tokens.refreshes)
	assert.Contains(t, err.Error(), "Token invalid")
}

func TestDo_RefreshFailureExpiresSession(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "stale", refreshErr: errors.New("refresh token revoked")}
	c := New(srv.URL).WithTokens(tokens)
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/payments/wallets/u1"})

	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, Terminal, Classify(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Empty(t, tokens.AccessToken())
}

func TestDo_QueryAndMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SALE", r.URL.Query().Get("listingType"))
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "Villa", r.FormValue("name"))
		f, hdr, err := r.FormFile("images")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		assert.Equal(t, "a.jpg", hdr.Filename)
		fmt.Fprint(w, `{"message":"created","data":{"id":"l-9"}}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/listings/listings",
		Query:  url.Values{"listingType": {"SALE"}},
		Multipart: &Multipart{
			Fields: map[string]string{"name": "Villa"},
			Files:  []FilePart{{Field: "images", Filename: "a.jpg", Data: []byte{1, 2, 3}}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Class
	}{
		{"server error", &Error{StatusCode: 503}, Transient},
		{"throttled", &Error{StatusCode: 429}, Transient},
		{"timeout status", &Error{StatusCode: 408}, Transient},
		{"bad request", &Error{StatusCode: 400}, Terminal},
		{"not found", &Error{StatusCode: 404}, Terminal},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), Transient},
		{"canceled", context.Canceled, Terminal},
		{"refused", errors.New("dial tcp 127.0.0.1:8080: connect: connection refused"), Transient},
		{"expired", fmt.Errorf("%w: boom", ErrSessionExpired), Terminal},
		{"plain", errors.New("invalid listing"), Terminal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestError_UnwrapsStatusSentinels(t *testing.T) {
	assert.ErrorIs(t, &Error{StatusCode: 404}, ErrNotFound)
	assert.ErrorIs(t, &Error{StatusCode: 403}, ErrForbidden)
	assert.Equal(t, 404, StatusCode(fmt.Errorf("wrap: %w", &Error{StatusCode: 404})))
}
