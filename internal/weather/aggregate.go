package weather

import (
	"sort"
	"strconv"
)

// FilterRange returns the samples whose year lies within rng, preserving
// their order. Samples without a parseable year are dropped.
func FilterRange(samples []Sample, rng YearRange) []Sample {
	result := make([]Sample, 0, len(samples))
	for _, s := range samples {
		y, ok := s.Year()
		if !ok || !rng.Contains(y) {
			continue
		}
		result = append(result, s)
	}
	return result
}

// AverageByYear reduces samples to one mean value per calendar year inside rng.
// The result is ordered by ascending year and contains one entry per distinct
// year present in the filtered input; missing years are not filled in.
func AverageByYear(samples []Sample, rng YearRange) []AggregatedPoint {
	byYear := make(map[int][]float64)
	for _, s := range samples {
		y, ok := s.Year()
		if !ok || !rng.Contains(y) {
			continue
		}
		byYear[y] = append(byYear[y], s.Value)
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	points := make([]AggregatedPoint, 0, len(years))
	for _, y := range years {
		points = append(points, AggregatedPoint{
			Year: strconv.Itoa(y),
			Mean: mean(byYear[y]),
		})
	}
	return points
}

// mean sums in ascending order so the result does not depend on the order
// in which samples arrived.
func mean(values []float64) float64 {
	sort.Float64s(values)
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
