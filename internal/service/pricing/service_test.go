package pricing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/service/pricing"
	"github.com/ecopick/recycle-api/pkg/logger"
)

type stubRateProvider struct {
	price float64
	err   error
}

func (s *stubRateProvider) GetPrice(context.Context, string) (float64, error) {
	return s.price, s.err
}

type stubDistanceProvider struct {
	info *pricing.RouteInfo
	err  error
}

func (s *stubDistanceProvider) Distance(context.Context, string, string) (*pricing.RouteInfo, error) {
	return s.info, s.err
}

func testLogger() *logger.Logger {
	return logger.NewLogger(nil)
}

func TestService_Price(t *testing.T) {
	t.Run("should reproduce the reference breakdown for PET", func(t *testing.T) {
		rates := &stubRateProvider{price: 52}
		svc := pricing.NewService(rates, nil, testLogger())
		distance := 20.0

		quote := svc.Price(context.Background(), model.MaterialPET, 500, "12 Main st, Greenfield", &distance)

		require.NotNil(t, quote)
		assert.InDelta(t, 26000, quote.BasePrice, 0.001)
		assert.InDelta(t, 1400, quote.LogisticsCost, 0.001)
		assert.InDelta(t, 150, quote.CustomsDuty, 0.001)
		assert.InDelta(t, 250, quote.EnvironmentalTax, 0.001)
		assert.InDelta(t, 27800, quote.TotalPrice, 0.001)
		assert.InDelta(t, 750, quote.EnvironmentalImpact, 0.001)
	})

	t.Run("should scale customs duty above the volume threshold", func(t *testing.T) {
		rates := &stubRateProvider{price: 52}
		svc := pricing.NewService(rates, nil, testLogger())
		distance := 0.0

		quote := svc.Price(context.Background(), model.MaterialPET, 1500, "Greenfield", &distance)

		assert.InDelta(t, 225, quote.CustomsDuty, 0.001) // 150 * 1.5
	})

	t.Run("should never return a negative total", func(t *testing.T) {
		rates := &stubRateProvider{price: 52}
		svc := pricing.NewService(rates, nil, testLogger())
		distance := 0.0

		quote := svc.Price(context.Background(), model.MaterialPET, 0, "Greenfield", &distance)

		assert.GreaterOrEqual(t, quote.TotalPrice, 0.0)
		assert.InDelta(t, 0, quote.BasePrice, 0.001)
		assert.InDelta(t, 0, quote.EnvironmentalImpact, 0.001)
	})

	t.Run("should clamp negative volume and distance", func(t *testing.T) {
		rates := &stubRateProvider{price: 52}
		svc := pricing.NewService(rates, nil, testLogger())
		distance := -15.0

		quote := svc.Price(context.Background(), model.MaterialPET, -10, "Greenfield", &distance)

		assert.InDelta(t, 0, quote.BasePrice, 0.001)
		assert.InDelta(t, 0, quote.LogisticsCost, 0.001)
		assert.GreaterOrEqual(t, quote.TotalPrice, 0.0)
	})

	t.Run("should fall back to the static rate table when the provider fails", func(t *testing.T) {
		rates := &stubRateProvider{err: errors.New("connection refused")}
		svc := pricing.NewService(rates, nil, testLogger())
		distance := 10.0

		quote := svc.Price(context.Background(), model.MaterialPET, 100, "Greenfield", &distance)

		// 100kg * 52 (fallback) = 5200
		assert.InDelta(t, 5200, quote.BasePrice, 0.001)
	})

	t.Run("should use the distance provider and its traffic factor", func(t *testing.T) {
		rates := &stubRateProvider{price: 52}
		dist := &stubDistanceProvider{info: &pricing.RouteInfo{DistanceKm: 30, TrafficFactor: 1.2, Region: "central"}}
		svc := pricing.NewService(rates, dist, testLogger())

		quote := svc.Price(context.Background(), model.MaterialPET, 100, "Greenfield", nil)

		assert.InDelta(t, 30*70*1.2, quote.LogisticsCost, 0.001)
		assert.Equal(t, "central", quote.Region)
	})

	t.Run("should degrade to a bounded region heuristic when the distance provider fails", func(t *testing.T) {
		rates := &stubRateProvider{price: 52}
		dist := &stubDistanceProvider{err: errors.New("timeout")}
		svc := pricing.NewService(rates, dist, testLogger())

		quote := svc.Price(context.Background(), model.MaterialPET, 100, "5 Harbor rd, Northvale", nil)

		assert.Equal(t, "north", quote.Region)
		assert.GreaterOrEqual(t, quote.Distance, 120.0)
		assert.LessOrEqual(t, quote.Distance, 260.0)
	})

	t.Run("should place unknown addresses in the remote band", func(t *testing.T) {
		rates := &stubRateProvider{price: 52}
		dist := &stubDistanceProvider{err: errors.New("timeout")}
		svc := pricing.NewService(rates, dist, testLogger())

		quote := svc.Price(context.Background(), model.MaterialPET, 100, "nowhere in particular", nil)

		assert.Equal(t, "remote", quote.Region)
		assert.GreaterOrEqual(t, quote.Distance, 400.0)
		assert.LessOrEqual(t, quote.Distance, 800.0)
	})
}
