package tuning

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	Addr string `yaml:"addr"`

	UpdateIntervalMs           int `yaml:"update_interval_ms"`
	CustomerIntervalMs         int `yaml:"customer_simulation_interval_ms"`
	StockPredictionIntervalMs  int `yaml:"stock_prediction_interval_ms"`
	LayoutValidationIntervalMs int `yaml:"layout_validation_interval_ms"`

	Seed int64 `yaml:"seed"`

	Zones    []ZoneSpec    `yaml:"zones"`
	Patterns []PatternSpec `yaml:"behavior_patterns"`
}

type ZoneSpec struct {
	ID     string  `yaml:"id"`
	Width  float64 `yaml:"width"`
	Length float64 `yaml:"length"`
	Height float64 `yaml:"height"`
}

type PatternSpec struct {
	Name                   string  `yaml:"name"`
	AvgTimeInStoreMs       int64   `yaml:"avg_time_in_store_ms"`
	InteractionProbability float64 `yaml:"interaction_probability"`
	PurchaseProbability    float64 `yaml:"purchase_probability"`
}

func Defaults() Tuning {
	return Tuning{
		Addr:                       ":3001",
		UpdateIntervalMs:           1000,
		CustomerIntervalMs:         5000,
		StockPredictionIntervalMs:  3600000,
		LayoutValidationIntervalMs: 300000,
		Seed:                       1337,
		Zones: []ZoneSpec{
			{ID: "A1", Width: 10, Length: 10, Height: 3},
			{ID: "A2", Width: 10, Length: 10, Height: 3},
			{ID: "B1", Width: 10, Length: 10, Height: 3},
			{ID: "B2", Width: 10, Length: 10, Height: 3},
		},
		Patterns: []PatternSpec{
			{Name: "browser", AvgTimeInStoreMs: 1800000, InteractionProbability: 0.3, PurchaseProbability: 0.2},
			{Name: "determined", AvgTimeInStoreMs: 600000, InteractionProbability: 0.8, PurchaseProbability: 0.7},
			{Name: "rusher", AvgTimeInStoreMs: 300000, InteractionProbability: 0.9, PurchaseProbability: 0.5},
		},
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if len(t.Zones) == 0 {
		t.Zones = Defaults().Zones
	}
	if len(t.Patterns) == 0 {
		t.Patterns = Defaults().Patterns
	}
	return t, nil
}

// ApplyEnv overlays recognized environment variables onto t.
// Unset or malformed values leave the field untouched.
func (t *Tuning) ApplyEnv() {
	if v := os.Getenv("RT_ADDR"); v != "" {
		t.Addr = v
	}
	envInt("RT_UPDATE_INTERVAL_MS", &t.UpdateIntervalMs)
	envInt("RT_CUSTOMER_INTERVAL_MS", &t.CustomerIntervalMs)
	envInt("RT_PREDICTION_INTERVAL_MS", &t.StockPredictionIntervalMs)
	envInt("RT_LAYOUT_INTERVAL_MS", &t.LayoutValidationIntervalMs)
	if v := os.Getenv("RT_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			t.Seed = n
		}
	}
}

func envInt(key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	*dst = n
}

func (t Tuning) UpdateInterval() time.Duration {
	return time.Duration(t.UpdateIntervalMs) * time.Millisecond
}

func (t Tuning) CustomerInterval() time.Duration {
	return time.Duration(t.CustomerIntervalMs) * time.Millisecond
}

func (t Tuning) StockPredictionInterval() time.Duration {
	return time.Duration(t.StockPredictionIntervalMs) * time.Millisecond
}

func (t Tuning) LayoutValidationInterval() time.Duration {
	return time.Duration(t.LayoutValidationIntervalMs) * time.Millisecond
}
