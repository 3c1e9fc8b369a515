package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicWeights(t *testing.T) {
	h := NewHeuristic()

	tests := []struct {
		name string
		url  string
		want float64
	}{
		{"short clean url", "https://example.com", 0.0},
		{"length 80", "https://example.com/" + strings.Repeat("a", 60), 0.20},
		{"length 100", "https://example.com/" + strings.Repeat("a", 80), 0.35},
		{"length 160", "https://example.com/" + strings.Repeat("a", 140), 0.50},
		{"token only", "https://example.com/login", 0.10},
		{"three subdomains", "https://a.b.c.example.com", 0.10},
		{"four subdomains", "https://a.b.c.d.example.com", 0.20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, source, err := h.Probability(context.Background(), tt.url)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, p, 1e-9)
			assert.Equal(t, SourceHeuristic, source)
		})
	}
}

func TestHeuristicDigitRatio(t *testing.T) {
	h := NewHeuristic()

	// 6 digits out of 26 characters is past the 0.20 band.
	p, _, err := h.Probability(context.Background(), "https://example.com/123456")
	require.NoError(t, err)
	assert.InDelta(t, 0.20, p, 1e-9)
}

func TestHeuristicClamped(t *testing.T) {
	h := NewHeuristic()

	url := "https://a.b.c.d.example.com/login/" + strings.Repeat("1", 140)
	p, _, err := h.Probability(context.Background(), url)
	require.NoError(t, err)
	assert.LessOrEqual(t, p, 1.0)
	assert.Equal(t, 1.0, p)
}

func TestHTTPClientProbability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict", r.URL.Path)
		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://example.com", req.URL)
		json.NewEncoder(w).Encode(predictResponse{PMalicious: 0.42, Source: "model"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 0)
	p, source, err := c.Probability(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 0.42, p)
	assert.Equal(t, SourceModel, source)
}

func TestHTTPClientRejectsOutOfRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(predictResponse{PMalicious: 1.7})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 0)
	_, _, err := c.Probability(context.Background(), "https://example.com")
	assert.Error(t, err)
}

func TestHTTPClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 0)
	_, _, err := c.Probability(context.Background(), "https://example.com")
	assert.Error(t, err)
}
