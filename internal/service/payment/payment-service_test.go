package payment

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PixChat/entity"
)

func newTestService(baseURL string) *Service {
	return &Service{
		ApiKey:     "test-key",
		BaseURL:    baseURL,
		WebhookURL: "https://hooks.example.com/pix",
		Log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		client:     &http.Client{Timeout: 2 * time.Second},
	}
}

func TestCreateChargeWrappedEnvelope(t *testing.T) {
	var gotAuth string
	var gotBody createRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/pix/cashIn", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"tx-123","qr_code":"pix-copy-paste","status":"created"}}`))
	}))
	defer srv.Close()

	s := newTestService(srv.URL)
	charge, err := s.CreateCharge(context.Background(), 990)
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, int64(990), gotBody.Value)
	assert.Equal(t, "https://hooks.example.com/pix", gotBody.WebhookURL)
	assert.Equal(t, "tx-123", charge.TransactionID)
	assert.Equal(t, "pix-copy-paste", charge.Code)
	assert.Equal(t, int64(990), charge.AmountCents)
	assert.Equal(t, entity.ChargeUnknown, charge.Status)
}

func TestCreateChargeFlatEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"tx-9","br_code":"br-code-value","status":"created"}`))
	}))
	defer srv.Close()

	s := newTestService(srv.URL)
	charge, err := s.CreateCharge(context.Background(), 1590)
	require.NoError(t, err)

	assert.Equal(t, "tx-9", charge.TransactionID)
	assert.Equal(t, "br-code-value", charge.Code)
}

func TestCreateChargeQrCodePreferredOverBrCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"tx-1","qr_code":"qr","br_code":"br"}`))
	}))
	defer srv.Close()

	s := newTestService(srv.URL)
	charge, err := s.CreateCharge(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, "qr", charge.Code)
}

func TestCreateChargeRejectsNonPositiveAmount(t *testing.T) {
	s := newTestService("http://unused.invalid")
	_, err := s.CreateCharge(context.Background(), 0)
	assert.Error(t, err)
	_, err = s.CreateCharge(context.Background(), -5)
	assert.Error(t, err)
}

func TestCreateChargeMissingCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"tx-1","status":"created"}`))
	}))
	defer srv.Close()

	s := newTestService(srv.URL)
	_, err := s.CreateCharge(context.Background(), 990)
	assert.Error(t, err)
}

func TestCreateChargeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := newTestService(srv.URL)
	_, err := s.CreateCharge(context.Background(), 990)
	assert.Error(t, err)
}

func TestCheckTransactionStatuses(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected entity.ChargeStatus
	}{
		{"paid literal", `{"id":"tx-1","status":"paid"}`, entity.ChargePaid},
		{"created resolves unpaid", `{"id":"tx-1","status":"created"}`, entity.ChargeUnpaid},
		{"expired resolves unpaid", `{"id":"tx-1","status":"expired"}`, entity.ChargeUnpaid},
		{"uppercase is not paid", `{"id":"tx-1","status":"PAID"}`, entity.ChargeUnpaid},
		{"wrapped paid", `{"data":{"id":"tx-1","status":"paid"}}`, entity.ChargePaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/transactions/tx-1", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			s := newTestService(srv.URL)
			status, err := s.CheckTransaction(context.Background(), "tx-1")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestCheckTransactionHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := newTestService(srv.URL)
	status, err := s.CheckTransaction(context.Background(), "tx-1")
	assert.Error(t, err)
	assert.Equal(t, entity.ChargeUnknown, status)
}

func TestParsePayloadMalformed(t *testing.T) {
	_, err := parsePayload([]byte("not json"))
	assert.Error(t, err)
}
