package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"
)

// MarketRateProvider resolves the current per-kg price for a material.
type MarketRateProvider interface {
	GetPrice(ctx context.Context, materialType string) (float64, error)
}

// RouteInfo is what a distance provider knows about one leg.
type RouteInfo struct {
	DistanceKm    float64 `json:"distance_km"`
	TrafficFactor float64 `json:"traffic_factor"`
	Region        string  `json:"region"`
}

// DistanceProvider resolves distances between addresses.
type DistanceProvider interface {
	Distance(ctx context.Context, from, to string) (*RouteInfo, error)
}

// httpRateProvider calls an external market-rate API. Responses are
// cached so a flapping provider does not turn every order into a
// round-trip.
type httpRateProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	cache   *cache.Cache
}

func NewHTTPRateProvider(baseURL, apiKey string, timeout, cacheTTL time.Duration) MarketRateProvider {
	return &httpRateProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		cache:   cache.New(cacheTTL, 2*cacheTTL),
	}
}

func (p *httpRateProvider) GetPrice(ctx context.Context, materialType string) (float64, error) {
	if cached, ok := p.cache.Get(materialType); ok {
		return cached.(float64), nil
	}

	reqURL := fmt.Sprintf("%s/rates/%s", p.baseURL, url.PathEscape(materialType))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, err
	}
	if p.apiKey != "" {
		req.Header.Set("X-API-Key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("rate provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate provider returned status %d", resp.StatusCode)
	}

	var body struct {
		PricePerKg float64 `json:"price_per_kg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("rate provider returned malformed body: %w", err)
	}

	p.cache.Set(materialType, body.PricePerKg, cache.DefaultExpiration)
	return body.PricePerKg, nil
}

// httpDistanceProvider calls an external geocoding/distance API.
type httpDistanceProvider struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
}

func NewHTTPDistanceProvider(baseURL string, timeout, cacheTTL time.Duration) DistanceProvider {
	return &httpDistanceProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		cache:   cache.New(cacheTTL, 2*cacheTTL),
	}
}

func (p *httpDistanceProvider) Distance(ctx context.Context, from, to string) (*RouteInfo, error) {
	key := from + "|" + to
	if cached, ok := p.cache.Get(key); ok {
		info := cached.(RouteInfo)
		return &info, nil
	}

	reqURL := fmt.Sprintf("%s/distance?from=%s&to=%s",
		p.baseURL, url.QueryEscape(from), url.QueryEscape(to))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("distance provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("distance provider returned status %d", resp.StatusCode)
	}

	var info RouteInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("distance provider returned malformed body: %w", err)
	}

	p.cache.Set(key, info, cache.DefaultExpiration)
	return &info, nil
}
