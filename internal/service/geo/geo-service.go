package geo

import (
	"PixChat/internal/config"
	"PixChat/internal/lib/sl"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Service resolves a visitor IP to a city name for the personalized
// welcome. Lookups are best-effort: any failure produces an empty city and
// the generic welcome is used instead.
type Service struct {
	BaseURL string
	Log     *slog.Logger

	client *http.Client
}

func NewGeoService(conf *config.Config, logger *slog.Logger) *Service {
	if !conf.Geo.Enabled {
		return nil
	}
	return &Service{
		BaseURL: conf.Geo.BaseURL,
		Log:     logger.With(sl.Module("geo service")),
		client:  &http.Client{Timeout: 3 * time.Second},
	}
}

type lookupResponse struct {
	Status string `json:"status"`
	City   string `json:"city"`
}

// CityByIP returns the city for an IP address, or an empty string when the
// lookup fails or the provider has no answer.
func (s *Service) CityByIP(ctx context.Context, ip string) string {
	url := fmt.Sprintf("%s/%s", s.BaseURL, ip)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		s.Log.With(sl.Err(err)).Error("create geo request")
		return ""
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.Log.With(sl.Err(err)).Warn("geo lookup")
		return ""
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		s.Log.With(slog.Int("status", resp.StatusCode)).Warn("geo lookup status")
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.Log.With(sl.Err(err)).Warn("read geo response")
		return ""
	}

	var lookup lookupResponse
	if err := json.Unmarshal(body, &lookup); err != nil {
		s.Log.With(sl.Err(err)).Warn("parse geo response")
		return ""
	}

	if lookup.Status != "" && lookup.Status != "success" {
		return ""
	}

	return lookup.City
}
