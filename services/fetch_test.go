package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var plausibleBody = `{"events":[` + strings.Repeat(`{"id":"1"},`, 20) + `{"id":"2"}]}`

func TestFetchDirectSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(plausibleBody))
	}))
	defer server.Close()

	f := NewFetcher(nil, 5*time.Second, 16)
	body, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, plausibleBody, string(body))
}

func TestFetchFallsThroughToRelay(t *testing.T) {
	var relayHits int
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		relayHits++
		assert.NotEmpty(t, r.URL.Query().Get("url"), "relay receives the escaped target")
		w.Write([]byte(plausibleBody))
	}))
	defer relay.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()

	f := NewFetcher([]string{relay.URL + "?url=%s"}, 5*time.Second, 16)
	body, err := f.Fetch(context.Background(), broken.URL)
	require.NoError(t, err)
	assert.Equal(t, plausibleBody, string(body))
	assert.Equal(t, 1, relayHits)
}

func TestFetchRejectsHTMLErrorPage(t *testing.T) {
	htmlServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>" + strings.Repeat("maintenance ", 20) + "</body></html>"))
	}))
	defer htmlServer.Close()

	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(plausibleBody))
	}))
	defer relay.Close()

	// An HTML page served with a 200 must fall through to the relay
	f := NewFetcher([]string{relay.URL + "?url=%s"}, 5*time.Second, 16)
	body, err := f.Fetch(context.Background(), htmlServer.URL)
	require.NoError(t, err)
	assert.Equal(t, plausibleBody, string(body))
}

func TestFetchRejectsShortBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	f := NewFetcher(nil, 5*time.Second, 64)
	_, err := f.Fetch(context.Background(), server.URL)
	assert.Error(t, err)
}

func TestFetchAllPathsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := NewFetcher([]string{server.URL + "?url=%s"}, 5*time.Second, 16)
	_, err := f.Fetch(context.Background(), server.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 path(s) failed")
}
