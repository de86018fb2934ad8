package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a tick window.
type WindowStats struct {
	WindowStartTick int `csv:"-"`
	WindowEndTick   int `csv:"window_end"`

	// Population counts at window end
	PlantCount     int `csv:"plants"`
	HerbivoreCount int `csv:"herbivores"`
	CarnivoreCount int `csv:"carnivores"`

	PlantSpecies     int `csv:"plant_species"`
	HerbivoreSpecies int `csv:"herbivore_species"`
	CarnivoreSpecies int `csv:"carnivore_species"`

	// Events during window
	PlantBirths     int `csv:"plant_births"`
	HerbivoreBirths int `csv:"herbivore_births"`
	CarnivoreBirths int `csv:"carnivore_births"`
	PlantDeaths     int `csv:"plant_deaths"`
	HerbivoreDeaths int `csv:"herbivore_deaths"`
	CarnivoreDeaths int `csv:"carnivore_deaths"`

	// Energy flow during window
	SolarCaptured  float64 `csv:"solar_captured"`
	Bites          int     `csv:"bites"`
	EnergyBitten   float64 `csv:"energy_bitten"`
	Kills          int     `csv:"kills"`
	EnergyDevoured float64 `csv:"energy_devoured"`

	// Energy distribution (sampled at window end)
	PlantEnergyMean  float64 `csv:"plant_energy_mean"`
	PlantEnergyP10   float64 `csv:"plant_energy_p10"`
	PlantEnergyP50   float64 `csv:"plant_energy_p50"`
	PlantEnergyP90   float64 `csv:"plant_energy_p90"`
	PlantEnergyTotal float64 `csv:"plant_energy_total"`

	HerbivoreEnergyMean  float64 `csv:"herbivore_energy_mean"`
	HerbivoreEnergyP10   float64 `csv:"herbivore_energy_p10"`
	HerbivoreEnergyP50   float64 `csv:"herbivore_energy_p50"`
	HerbivoreEnergyP90   float64 `csv:"herbivore_energy_p90"`
	HerbivoreEnergyTotal float64 `csv:"herbivore_energy_total"`

	CarnivoreEnergyMean  float64 `csv:"carnivore_energy_mean"`
	CarnivoreEnergyP10   float64 `csv:"carnivore_energy_p10"`
	CarnivoreEnergyP50   float64 `csv:"carnivore_energy_p50"`
	CarnivoreEnergyP90   float64 `csv:"carnivore_energy_p90"`
	CarnivoreEnergyTotal float64 `csv:"carnivore_energy_total"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeEnergyStats calculates mean and percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// CoefficientOfVariation returns stddev/mean of the values, or 0 when the
// mean is zero or fewer than two values are given.
func CoefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartTick),
		slog.Int("window_end", s.WindowEndTick),
		slog.Int("plants", s.PlantCount),
		slog.Int("herbivores", s.HerbivoreCount),
		slog.Int("carnivores", s.CarnivoreCount),
		slog.Int("plant_species", s.PlantSpecies),
		slog.Int("herbivore_species", s.HerbivoreSpecies),
		slog.Int("carnivore_species", s.CarnivoreSpecies),
		slog.Int("plant_births", s.PlantBirths),
		slog.Int("herbivore_births", s.HerbivoreBirths),
		slog.Int("carnivore_births", s.CarnivoreBirths),
		slog.Int("plant_deaths", s.PlantDeaths),
		slog.Int("herbivore_deaths", s.HerbivoreDeaths),
		slog.Int("carnivore_deaths", s.CarnivoreDeaths),
		slog.Float64("solar_captured", s.SolarCaptured),
		slog.Int("bites", s.Bites),
		slog.Float64("energy_bitten", s.EnergyBitten),
		slog.Int("kills", s.Kills),
		slog.Float64("energy_devoured", s.EnergyDevoured),
		slog.Float64("plant_energy_mean", s.PlantEnergyMean),
		slog.Float64("plant_energy_p50", s.PlantEnergyP50),
		slog.Float64("plant_energy_total", s.PlantEnergyTotal),
		slog.Float64("herbivore_energy_mean", s.HerbivoreEnergyMean),
		slog.Float64("herbivore_energy_p50", s.HerbivoreEnergyP50),
		slog.Float64("herbivore_energy_total", s.HerbivoreEnergyTotal),
		slog.Float64("carnivore_energy_mean", s.CarnivoreEnergyMean),
		slog.Float64("carnivore_energy_p50", s.CarnivoreEnergyP50),
		slog.Float64("carnivore_energy_total", s.CarnivoreEnergyTotal),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"plants", s.PlantCount,
		"herbivores", s.HerbivoreCount,
		"carnivores", s.CarnivoreCount,
		"plant_births", s.PlantBirths,
		"herbivore_births", s.HerbivoreBirths,
		"carnivore_births", s.CarnivoreBirths,
		"plant_deaths", s.PlantDeaths,
		"herbivore_deaths", s.HerbivoreDeaths,
		"carnivore_deaths", s.CarnivoreDeaths,
		"solar_captured", s.SolarCaptured,
		"bites", s.Bites,
		"kills", s.Kills,
		"plant_energy_total", s.PlantEnergyTotal,
		"herbivore_energy_total", s.HerbivoreEnergyTotal,
		"carnivore_energy_total", s.CarnivoreEnergyTotal,
	)
}
