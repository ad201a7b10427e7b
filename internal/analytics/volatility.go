package analytics

import (
	"math"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
)

// volatilityWindow bounds the trailing hourly sample count.
const volatilityWindow = 24

// priceChanges returns successive percentage changes of one token's hourly
// price over the trailing window. Samples with a non-positive predecessor
// are skipped.
func priceChanges(history []model.PricePoint, price func(model.PricePoint) float64) []float64 {
	if len(history) > volatilityWindow {
		history = history[len(history)-volatilityWindow:]
	}

	changes := make([]float64, 0, len(history))
	for i := 1; i < len(history); i++ {
		prev := price(history[i-1])
		curr := price(history[i])
		if prev <= 0 {
			continue
		}
		changes = append(changes, (curr-prev)/prev*100)
	}
	return changes
}

// stddev is the population standard deviation.
func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}

// latestChange averages the two tokens' most recent percentage changes.
func latestChange(changes0, changes1 []float64) float64 {
	var latest0, latest1 float64
	if len(changes0) > 0 {
		latest0 = changes0[len(changes0)-1]
	}
	if len(changes1) > 0 {
		latest1 = changes1[len(changes1)-1]
	}
	return (latest0 + latest1) / 2
}
