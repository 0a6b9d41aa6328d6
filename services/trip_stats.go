// File: /services/trip_stats.go
package services

import (
	"mycar-api/models"
	"time"
)

const (
	mpsToKmh       = 3.6
	redZoneKmh     = 150.0
	speedBandCount = 5
)

// SpeedBandLabels names the km/h bands of a SpeedDistribution, in order.
var SpeedBandLabels = [speedBandCount]string{"0-60", "61-90", "91-120", "121-150", "151+"}

var speedBandUpperKmh = [speedBandCount - 1]float64{60, 90, 120, 150}

// SpeedDistribution holds the minutes spent in each speed band.
type SpeedDistribution [speedBandCount]float64

func (d SpeedDistribution) TotalMinutes() float64 {
	var total float64
	for _, minutes := range d {
		total += minutes
	}
	return total
}

func (d SpeedDistribution) add(other SpeedDistribution) SpeedDistribution {
	for i := range d {
		d[i] += other[i]
	}
	return d
}

type SpeedBand struct {
	Range   string  `json:"range"`
	Minutes float64 `json:"minutes"`
}

// Bands returns the distribution in a JSON friendly shape.
func (d SpeedDistribution) Bands() []SpeedBand {
	bands := make([]SpeedBand, 0, speedBandCount)
	for i, minutes := range d {
		bands = append(bands, SpeedBand{Range: SpeedBandLabels[i], Minutes: minutes})
	}
	return bands
}

// SpeedBandIndex returns the band a speed in km/h falls into.
func SpeedBandIndex(kmh float64) int {
	for i, upper := range speedBandUpperKmh {
		if kmh <= upper {
			return i
		}
	}
	return speedBandCount - 1
}

// SpeedBandDistribution accumulates, for each pair of consecutive points, the
// time between them into the band of the first point's speed.
func SpeedBandDistribution(points []models.TripPoint) SpeedDistribution {
	var dist SpeedDistribution
	if len(points) < 2 {
		return dist
	}

	for i := 0; i < len(points)-1; i++ {
		minutes := points[i+1].Timestamp.Sub(points[i].Timestamp).Minutes()
		dist[SpeedBandIndex(points[i].Speed*mpsToKmh)] += minutes
	}
	return dist
}

// MaxSpeedKmh returns the highest sampled speed, or 0 for an empty or stationary trip.
func MaxSpeedKmh(points []models.TripPoint) float64 {
	var maxSpeed float64
	for _, p := range points {
		if p.Speed > maxSpeed {
			maxSpeed = p.Speed
		}
	}
	return maxSpeed * mpsToKmh
}

// AverageSpeedKmh is the recorded distance over the wall-clock duration.
func AverageSpeedKmh(trip *models.TripRecord) float64 {
	seconds := trip.Duration().Seconds()
	if seconds <= 0 {
		return 0
	}
	return (trip.Distance / seconds) * mpsToKmh
}

// RedZoneDuration approximates the time spent above 150 km/h by counting samples,
// assuming the recorder samples once per second.
func RedZoneDuration(points []models.TripPoint) time.Duration {
	var count int
	for _, p := range points {
		if p.Speed*mpsToKmh > redZoneKmh {
			count++
		}
	}
	return time.Duration(count) * time.Second
}

type TripStats struct {
	DurationSeconds   float64     `json:"duration_seconds"`
	Distance          float64     `json:"distance"`
	AverageSpeedKmh   float64     `json:"average_speed_kmh"`
	MaxSpeedKmh       float64     `json:"max_speed_kmh"`
	RedZoneSeconds    float64     `json:"red_zone_seconds"`
	SpeedDistribution []SpeedBand `json:"speed_distribution"`
}

// AnalyzeTrip computes the statistics shown for a single trip.
func AnalyzeTrip(trip *models.TripRecord) TripStats {
	return TripStats{
		DurationSeconds:   trip.Duration().Seconds(),
		Distance:          trip.Distance,
		AverageSpeedKmh:   AverageSpeedKmh(trip),
		MaxSpeedKmh:       MaxSpeedKmh(trip.Points),
		RedZoneSeconds:    RedZoneDuration(trip.Points).Seconds(),
		SpeedDistribution: SpeedBandDistribution(trip.Points).Bands(),
	}
}

type TripsSummary struct {
	TripCount            int         `json:"trip_count"`
	TotalDistance        float64     `json:"total_distance"`
	TotalDurationSeconds float64     `json:"total_duration_seconds"`
	TopSpeedKmh          float64     `json:"top_speed_kmh"`
	SpeedDistribution    []SpeedBand `json:"speed_distribution"`
}

// SummarizeTrips aggregates all-time statistics over a set of trips.
func SummarizeTrips(trips []models.TripRecord) TripsSummary {
	var (
		summary TripsSummary
		dist    SpeedDistribution
	)

	for i := range trips {
		trip := &trips[i]
		summary.TotalDistance += trip.Distance
		summary.TotalDurationSeconds += trip.Duration().Seconds()
		if top := MaxSpeedKmh(trip.Points); top > summary.TopSpeedKmh {
			summary.TopSpeedKmh = top
		}
		dist = dist.add(SpeedBandDistribution(trip.Points))
	}

	summary.TripCount = len(trips)
	summary.SpeedDistribution = dist.Bands()
	return summary
}
