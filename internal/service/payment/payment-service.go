package payment

import (
	"PixChat/entity"
	"PixChat/internal/config"
	"PixChat/internal/lib/sl"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Service talks to the instant-payment provider. Every session shares one
// Service; charges themselves live in session state.
type Service struct {
	ApiKey     string
	BaseURL    string
	WebhookURL string
	Log        *slog.Logger

	client *http.Client
}

func NewPaymentService(conf *config.Config, logger *slog.Logger) *Service {
	return &Service{
		ApiKey:     conf.Payment.ApiKey,
		BaseURL:    conf.Payment.BaseURL,
		WebhookURL: conf.Payment.WebhookURL,
		Log:        logger.With(sl.Module("payment service")),
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type createRequest struct {
	Value      int64  `json:"value"`
	WebhookURL string `json:"webhook_url"`
}

// CreateCharge issues a charge creation request for the given amount of
// minor currency units and returns the provider transaction id plus the
// payable copy-paste code.
func (s *Service) CreateCharge(ctx context.Context, amountCents int64) (*entity.Charge, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("invalid charge amount: %d", amountCents)
	}

	url := fmt.Sprintf("%s/pix/cashIn", s.BaseURL)

	requestBody, err := json.Marshal(createRequest{
		Value:      amountCents,
		WebhookURL: s.WebhookURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.ApiKey))
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %v", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("request failed with status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}

	payload, err := parsePayload(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %v", err)
	}

	code := payload.QrCode
	if code == "" {
		code = payload.BrCode
	}
	if payload.ID == "" || code == "" {
		return nil, fmt.Errorf("provider response missing id or payable code")
	}

	s.Log.With(
		slog.String("transaction_id", payload.ID),
		slog.Int64("amount_cents", amountCents),
		slog.String("status", payload.Status),
	).Debug("charge created")

	return &entity.Charge{
		TransactionID: payload.ID,
		Code:          code,
		AmountCents:   amountCents,
		Status:        entity.ChargeUnknown,
	}, nil
}

// CheckTransaction looks up a transaction and resolves its status. Only the
// literal "paid" status verifies; any other value resolves as unpaid.
func (s *Service) CheckTransaction(ctx context.Context, transactionID string) (entity.ChargeStatus, error) {
	url := fmt.Sprintf("%s/transactions/%s", s.BaseURL, transactionID)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return entity.ChargeUnknown, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.ApiKey))
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return entity.ChargeUnknown, fmt.Errorf("failed to send request: %v", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return entity.ChargeUnknown, fmt.Errorf("request failed with status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return entity.ChargeUnknown, fmt.Errorf("failed to read response body: %v", err)
	}

	payload, err := parsePayload(body)
	if err != nil {
		return entity.ChargeUnknown, fmt.Errorf("failed to parse response: %v", err)
	}

	s.Log.With(
		slog.String("transaction_id", transactionID),
		slog.String("status", payload.Status),
	).Debug("transaction status")

	if payload.Status == statusPaid {
		return entity.ChargePaid, nil
	}
	return entity.ChargeUnpaid, nil
}
