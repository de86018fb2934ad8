// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Lake       LakeConfig      `yaml:"lake"`
	Plants     []SpeciesConfig `yaml:"plants"`
	Herbivores []SpeciesConfig `yaml:"herbivores"`
	Carnivores []SpeciesConfig `yaml:"carnivores"`
	Telemetry  TelemetryConfig `yaml:"telemetry"`
	Bookmarks  BookmarksConfig `yaml:"bookmarks"`
	Run        RunConfig       `yaml:"run"`
}

// LakeConfig holds the environment shared by every organism.
type LakeConfig struct {
	SolarEnergy float64 `yaml:"solar_energy"` // energy split among plants each tick
}

// SpeciesConfig describes one species and its founding population.
// Trait fields are pointers so that a missing key can be told apart from an
// explicit zero; Species reports every missing or out-of-range field.
type SpeciesConfig struct {
	Name          string   `yaml:"name"`
	Count         int      `yaml:"count"`                    // founding individuals
	InitialEnergy *float64 `yaml:"initial_energy,omitempty"` // defaults to child_energy
	EnergyNeed    *float64 `yaml:"energy_need,omitempty"`
	Efficiency    *float64 `yaml:"efficiency,omitempty"`
	Resilience    *float64 `yaml:"resilience,omitempty"`
	Fertility     *float64 `yaml:"fertility,omitempty"`
	FertileAge    *int     `yaml:"fertile_age,omitempty"`
	ChildEnergy   *float64 `yaml:"child_energy,omitempty"`
	MaxEnergy     *float64 `yaml:"max_energy,omitempty"` // defaults to 20 * child_energy

	// Foragers only.
	Persistence *float64 `yaml:"persistence,omitempty"`
	Diet        []string `yaml:"diet,omitempty"`

	// Herbivores only.
	BiteMin *float64 `yaml:"bite_min,omitempty"`
	BiteMax *float64 `yaml:"bite_max,omitempty"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // ticks per stats window
	BookmarkHistorySize int `yaml:"bookmark_history_size"`
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	HerbivoreCrash  HerbivoreCrashConfig  `yaml:"herbivore_crash"`
	StableEcosystem StableEcosystemConfig `yaml:"stable_ecosystem"`
}

// HerbivoreCrashConfig holds herbivore crash detection parameters.
type HerbivoreCrashConfig struct {
	DropPercent float64 `yaml:"drop_percent"`
	MinDrop     int     `yaml:"min_drop"`
}

// StableEcosystemConfig holds stable ecosystem detection parameters.
type StableEcosystemConfig struct {
	MinPlants     int     `yaml:"min_plants"`
	MinHerbivores int     `yaml:"min_herbivores"`
	MinCarnivores int     `yaml:"min_carnivores"`
	CVThreshold   float64 `yaml:"cv_threshold"`
	StableWindows int     `yaml:"stable_windows"`
}

// RunConfig holds headless run limits.
type RunConfig struct {
	MaxTicks         int  `yaml:"max_ticks"` // 0 = unlimited
	StopOnExtinction bool `yaml:"stop_on_extinction"`
	ReportEvery      int  `yaml:"report_every"` // ticks between progress reports, 0 = never
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
// Species lists in the user file replace the default lists as a whole.
func Load(path string) (*Config, error) {
	cfg, err := Parse(defaultsYAML)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Parse decodes a configuration document without defaults or validation.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
// Callers that tweak parameters (the optimizer) work on clones.
func (c *Config) Clone() *Config {
	out := *c
	out.Plants = cloneSpecies(c.Plants)
	out.Herbivores = cloneSpecies(c.Herbivores)
	out.Carnivores = cloneSpecies(c.Carnivores)
	return &out
}

func cloneSpecies(in []SpeciesConfig) []SpeciesConfig {
	if in == nil {
		return nil
	}
	out := make([]SpeciesConfig, len(in))
	for i, sc := range in {
		out[i] = sc
		out[i].InitialEnergy = clonePtr(sc.InitialEnergy)
		out[i].EnergyNeed = clonePtr(sc.EnergyNeed)
		out[i].Efficiency = clonePtr(sc.Efficiency)
		out[i].Resilience = clonePtr(sc.Resilience)
		out[i].Fertility = clonePtr(sc.Fertility)
		out[i].FertileAge = clonePtr(sc.FertileAge)
		out[i].ChildEnergy = clonePtr(sc.ChildEnergy)
		out[i].MaxEnergy = clonePtr(sc.MaxEnergy)
		out[i].Persistence = clonePtr(sc.Persistence)
		out[i].BiteMin = clonePtr(sc.BiteMin)
		out[i].BiteMax = clonePtr(sc.BiteMax)
		out[i].Diet = append([]string(nil), sc.Diet...)
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v. Handy for building SpeciesConfig literals.
func Ptr[T any](v T) *T {
	return &v
}
