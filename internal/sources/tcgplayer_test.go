package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCGPlayerSource_FetchCard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"productId":"sv1-25","marketPrice":100.50}`))
	}))
	defer srv.Close()

	src := NewTCGPlayerSource("test-key", srv.URL)
	row, err := src.FetchCard(context.Background(), "sv1-25")
	require.NoError(t, err)
	require.NotNil(t, row.PriceUSD)
	assert.True(t, row.PriceUSD.Equal(mustDecimal("100.50")))
	assert.Equal(t, "tcgplayer", row.Source)
}

func TestTCGPlayerSource_FetchSet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"productId":"sv1-25","marketPrice":100.50},{"productId":"sv1-26","marketPrice":2.00}]}`))
	}))
	defer srv.Close()

	src := NewTCGPlayerSource("test-key", srv.URL)
	rows, err := src.FetchSet(context.Background(), "sv1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "sv1-25", rows[0].CardID)
}

func TestTCGPlayerSource_RetriesOn503ThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"productId":"sv1-25","marketPrice":5.00}`))
	}))
	defer srv.Close()

	src := NewTCGPlayerSource("test-key", srv.URL)
	row, err := src.FetchCard(context.Background(), "sv1-25")
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.True(t, row.PriceUSD.Equal(mustDecimal("5.00")))
}

func TestTCGPlayerSource_NoRetryOn404(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	src := NewTCGPlayerSource("test-key", srv.URL)
	_, err := src.FetchCard(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "404 is not a transient error and must not be retried")
}
