package pricing

import (
	"context"
	"math/rand"
	"strings"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/pkg/logger"
)

// Tariff constants. Logistics is a flat per-km rate; the environmental
// tax and CO2 factor are per kg.
const (
	PerKmRate        = 70.0
	EnvironmentalTax = 0.5
	CO2Factor        = 1.5

	// Orders above this volume pay scaled customs duty.
	dutyVolumeThreshold  = 1000.0
	dutyVolumeMultiplier = 1.5
)

// fallbackRates is the static per-kg price table used when the market
// rate provider is unreachable.
var fallbackRates = map[string]float64{
	model.MaterialPET:      52,
	model.MaterialHDPE:     45,
	model.MaterialAluminum: 180,
	model.MaterialCopper:   650,
	model.MaterialPaper:    15,
	model.MaterialGlass:    8,
}

// customsDutyBase is the per-order duty base rate per material.
var customsDutyBase = map[string]float64{
	model.MaterialPET:      150,
	model.MaterialHDPE:     120,
	model.MaterialAluminum: 400,
	model.MaterialCopper:   600,
	model.MaterialPaper:    60,
	model.MaterialGlass:    80,
}

// regionBound gives the distance range used when the distance provider
// is unavailable and the address matches a known city.
type regionBound struct {
	region string
	minKm  float64
	maxKm  float64
}

var cityRegions = map[string]regionBound{
	"greenfield": {region: "central", minKm: 10, maxKm: 40},
	"rivertown":  {region: "central", minKm: 20, maxKm: 60},
	"northvale":  {region: "north", minKm: 120, maxKm: 260},
	"eastport":   {region: "east", minKm: 200, maxKm: 380},
	"westbrook":  {region: "west", minKm: 180, maxKm: 340},
	"southgate":  {region: "south", minKm: 150, maxKm: 300},
}

var defaultRegion = regionBound{region: "remote", minKm: 400, maxKm: 800}

// Quote is the full cost breakdown for one order.
type Quote struct {
	BasePrice           float64 `json:"base_price"`
	LogisticsCost       float64 `json:"logistics_cost"`
	CustomsDuty         float64 `json:"customs_duty"`
	EnvironmentalTax    float64 `json:"environmental_tax"`
	Distance            float64 `json:"distance"`
	Region              string  `json:"region"`
	TotalPrice          float64 `json:"total_price"`
	EnvironmentalImpact float64 `json:"environmental_impact"`
}

// Service computes order quotes. Provider failures never surface to the
// caller; they degrade to the static tables and are logged.
type Service struct {
	rates    MarketRateProvider
	distance DistanceProvider
	logger   *logger.Logger
}

func NewService(rates MarketRateProvider, distance DistanceProvider, logger *logger.Logger) *Service {
	return &Service{rates: rates, distance: distance, logger: logger}
}

// Price computes the cost breakdown. A non-nil knownDistance skips the
// distance provider. All inputs are clamped non-negative before use and
// the total never goes below zero.
func (s *Service) Price(ctx context.Context, materialType string, volume float64, pickupAddress string, knownDistance *float64) *Quote {
	if volume < 0 {
		volume = 0
	}

	marketPrice := s.marketPrice(ctx, materialType)
	basePrice := volume * marketPrice

	distanceKm, trafficFactor, region := s.resolveDistance(ctx, pickupAddress, knownDistance)
	logisticsCost := distanceKm * PerKmRate * trafficFactor

	duty := customsDutyBase[materialType]
	if volume > dutyVolumeThreshold {
		duty *= dutyVolumeMultiplier
	}

	envTax := volume * EnvironmentalTax

	total := basePrice + logisticsCost + duty + envTax
	if total < 0 {
		total = 0
	}

	return &Quote{
		BasePrice:           basePrice,
		LogisticsCost:       logisticsCost,
		CustomsDuty:         duty,
		EnvironmentalTax:    envTax,
		Distance:            distanceKm,
		Region:              region,
		TotalPrice:          total,
		EnvironmentalImpact: volume * CO2Factor,
	}
}

func (s *Service) marketPrice(ctx context.Context, materialType string) float64 {
	if s.rates != nil {
		price, err := s.rates.GetPrice(ctx, materialType)
		if err == nil && price > 0 {
			return price
		}
		if err != nil {
			s.logger.Error(err, "market rate provider failed, using fallback table",
				"material", materialType)
		}
	}
	return fallbackRates[materialType]
}

func (s *Service) resolveDistance(ctx context.Context, pickupAddress string, knownDistance *float64) (km, trafficFactor float64, region string) {
	if knownDistance != nil {
		km = *knownDistance
		if km < 0 {
			km = 0
		}
		return km, 1, regionFor(pickupAddress).region
	}

	if s.distance != nil {
		info, err := s.distance.Distance(ctx, pickupAddress, "")
		if err == nil && info != nil && info.DistanceKm >= 0 {
			factor := info.TrafficFactor
			if factor <= 0 {
				factor = 1
			}
			return info.DistanceKm, factor, info.Region
		}
		if err != nil {
			s.logger.Error(err, "distance provider failed, using region heuristic",
				"address", pickupAddress)
		}
	}

	bound := regionFor(pickupAddress)
	km = bound.minKm + rand.Float64()*(bound.maxKm-bound.minKm)
	return km, 1, bound.region
}

// regionFor matches known city substrings in the address; unmatched
// addresses fall into the remote band.
func regionFor(address string) regionBound {
	lowered := strings.ToLower(address)
	for city, bound := range cityRegions {
		if strings.Contains(lowered, city) {
			return bound
		}
	}
	return defaultRegion
}
