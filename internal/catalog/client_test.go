package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL, key string) *GoogleBooksClient {
	return NewClient(ClientConfig{
		BaseURL:      baseURL,
		APIKey:       key,
		RateLimit:    1000,
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		Logger:       zerolog.Nop(),
	})
}

func TestClient_SearchVolumes_SendsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volumes", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "atomic habits", q.Get("q"))
		assert.Equal(t, "20", q.Get("maxResults"))
		assert.Equal(t, "relevance", q.Get("orderBy"))
		assert.Equal(t, "books", q.Get("printType"))
		assert.Equal(t, "secret", q.Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kind":"books#volumes","totalItems":1,"items":[{"id":"v1","volumeInfo":{"title":"Atomic Habits","authors":["James Clear"],"averageRating":4.5,"ratingsCount":100}}]}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL, "secret").SearchVolumes(context.Background(), "atomic habits", 20)

	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "v1", resp.Items[0].ID)
	assert.Equal(t, []string{"James Clear"}, resp.Items[0].VolumeInfo.Authors)
	assert.Equal(t, 4.5, resp.Items[0].VolumeInfo.AverageRating)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":"v1","volumeInfo":{"title":"Dune"}}`))
	}))
	defer srv.Close()

	v, err := newTestClient(srv.URL, "secret").GetVolume(context.Background(), "v1")

	require.NoError(t, err)
	assert.Equal(t, "Dune", v.VolumeInfo.Title)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_DoesNotRetryNotFound(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "no such volume", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, "secret").GetVolume(context.Background(), "missing")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, "secret").GetVolume(context.Background(), "v1")

	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_MissingKey(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:1", "").SearchVolumes(context.Background(), "dune", 10)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
