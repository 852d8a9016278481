package geo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PixChat/internal/config"
)

func newTestService(baseURL string) *Service {
	return &Service{
		BaseURL: baseURL,
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		client:  &http.Client{Timeout: time.Second},
	}
}

func TestNewGeoServiceDisabled(t *testing.T) {
	conf := &config.Config{}
	conf.Geo.Enabled = false
	assert.Nil(t, NewGeoService(conf, slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestCityByIP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/187.1.2.3", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"success","city":"Curitiba","country":"Brazil"}`))
	}))
	defer srv.Close()

	s := newTestService(srv.URL)
	assert.Equal(t, "Curitiba", s.CityByIP(context.Background(), "187.1.2.3"))
}

func TestCityByIPFailedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"fail","message":"private range"}`))
	}))
	defer srv.Close()

	s := newTestService(srv.URL)
	assert.Empty(t, s.CityByIP(context.Background(), "192.168.0.1"))
}

func TestCityByIPHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := newTestService(srv.URL)
	assert.Empty(t, s.CityByIP(context.Background(), "1.2.3.4"))
}

func TestCityByIPUnreachable(t *testing.T) {
	s := newTestService("http://127.0.0.1:1")
	assert.Empty(t, s.CityByIP(context.Background(), "1.2.3.4"))
}
