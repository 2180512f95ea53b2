package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wanderkit/placesync/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type googleClient struct {
	http    *http.Client
	baseURL string
	apiKey  string
	log     *zap.Logger
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
}

func NewClient(p Params) Client {
	return &googleClient{
		http:    &http.Client{Timeout: p.Config.ProviderTimeout},
		baseURL: strings.TrimRight(p.Config.ProviderBaseURL, "/"),
		apiKey:  p.Config.ProviderAPIKey,
		log:     p.Log.Named("provider.google"),
	}
}

type detailsEnvelope struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       Record `json:"result"`
}

func (c *googleClient) Details(ctx context.Context, placeID, language string, fields []string) (Record, error) {
	query := url.Values{}
	query.Set("place_id", placeID)
	query.Set("language", language)
	query.Set("key", c.apiKey)
	if len(fields) > 0 {
		query.Set("fields", strings.Join(fields, ","))
	}

	endpoint := c.baseURL + "/details/json?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("place details request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("place details request: unexpected http status %d", resp.StatusCode)
	}

	var envelope detailsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode place details: %w", err)
	}

	if envelope.Status != "OK" {
		return nil, &StatusError{Status: envelope.Status, Message: envelope.ErrorMessage}
	}

	c.log.Debug("place details fetched",
		zap.String("place_id", placeID),
		zap.String("language", language),
		zap.Duration("took", time.Since(start)),
	)
	return envelope.Result, nil
}
