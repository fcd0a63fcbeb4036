package data

import (
	"math"
	"math/rand"
	"time"

	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

// Sample stream defaults
const (
	DefaultSampleSize   = 500
	DefaultSampleSeed   = 42
	DefaultSampleEquity = 100000.0
	DefaultSamplePrice  = 100.0
)

// SampleStart is the time of the first generated observation
var SampleStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// SampleProvider generates a deterministic synthetic observation stream.
// The last fifth of the stream contains a drawdown deep enough to trip the
// default equity loss limit.
type SampleProvider struct {
	seed     int64
	size     int
	interval time.Duration
}

// NewSampleProvider creates a generator for size hourly observations
func NewSampleProvider(seed int64, size int) *SampleProvider {
	return &SampleProvider{seed: seed, size: size, interval: time.Hour}
}

// GetName returns the name of the data provider
func (p *SampleProvider) GetName() string {
	return "Sample Generator"
}

// LoadData ignores source and returns the generated stream
func (p *SampleProvider) LoadData(source string) ([]types.Observation, error) {
	return p.Generate(), nil
}

// ValidateData validates the integrity of the loaded data
func (p *SampleProvider) ValidateData(data []types.Observation) error {
	return validateObservations("sample", data)
}

// Generate builds the stream; equal seeds give equal streams
func (p *SampleProvider) Generate() []types.Observation {
	rng := rand.New(rand.NewSource(p.seed))

	data := make([]types.Observation, 0, p.size)
	price := DefaultSamplePrice
	equity := DefaultSampleEquity
	drawdownStart := p.size - p.size/5

	for i := 0; i < p.size; i++ {
		price *= 1 + rng.NormFloat64()*0.01
		if price < 1 {
			price = 1
		}

		if i >= drawdownStart {
			equity *= 1 - 0.006 - rng.Float64()*0.002
		} else {
			equity *= 1 + rng.NormFloat64()*0.002
		}

		vol := math.Abs(0.012 + rng.NormFloat64()*0.004)
		if rng.Float64() < 0.1 {
			vol += 0.015
		}

		data = append(data, types.Observation{
			Time:       SampleStart.Add(time.Duration(i) * p.interval),
			Price:      round(price, 4),
			Equity:     round(equity, 2),
			Volatility: round(vol, 6),
			RawSignal:  rng.Intn(3) - 1,
		})
	}

	return data
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
