package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning is the operator-facing configuration. Everything here is static at
// process start; there is no hot reload.
type Tuning struct {
	ListenAddr string `yaml:"listen_addr"`

	WorldSize   float64 `yaml:"world_size"`
	BoundsSlack float64 `yaml:"bounds_slack"`

	ItemCount      int                 `yaml:"item_count"`
	ItemKinds      map[string]ItemKind `yaml:"item_kinds"`
	RespawnDelayMs int                 `yaml:"respawn_delay_ms"`

	MaxCollectDistance float64 `yaml:"max_collect_distance"`
	NicknameMaxLen     int     `yaml:"nickname_max_len"`

	RateLimits RateLimits `yaml:"rate_limits"`

	Weather Weather `yaml:"weather"`
	Zones   Zones   `yaml:"zones"`
}

type ItemKind struct {
	Value int    `yaml:"value"`
	Color string `yaml:"color"`
}

type RateLimits struct {
	Move    Limit `yaml:"move"`
	Collect Limit `yaml:"collect"`
}

type Limit struct {
	Max      int `yaml:"max"`
	WindowMs int `yaml:"window_ms"`
}

type Weather struct {
	Enabled      bool `yaml:"enabled"`
	MinIntervalS int  `yaml:"min_interval_s"`
	MaxIntervalS int  `yaml:"max_interval_s"`
}

type Zones struct {
	Enabled        bool `yaml:"enabled"`
	SpawnIntervalS int  `yaml:"spawn_interval_s"`
	MaxActive      int  `yaml:"max_active"`
	MinDurationS   int  `yaml:"min_duration_s"`
	MaxDurationS   int  `yaml:"max_duration_s"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Defaults mirrors configs/tuning.yaml for when no file is present.
func Defaults() Tuning {
	return Tuning{
		ListenAddr:  ":25565",
		WorldSize:   50,
		BoundsSlack: 1.2,
		ItemCount:   15,
		ItemKinds: map[string]ItemKind{
			"standard": {Value: 10, Color: "#FFFFFF"},
			"premium":  {Value: 30, Color: "#FFD700"},
			"swift":    {Value: 5, Color: "#00FF00"},
		},
		RespawnDelayMs:     3000,
		MaxCollectDistance: 5,
		NicknameMaxLen:     15,
		RateLimits: RateLimits{
			Move:    Limit{Max: 60, WindowMs: 1000},
			Collect: Limit{Max: 10, WindowMs: 1000},
		},
		Weather: Weather{Enabled: true, MinIntervalS: 60, MaxIntervalS: 180},
		Zones:   Zones{Enabled: true, SpawnIntervalS: 45, MaxActive: 3, MinDurationS: 30, MaxDurationS: 60},
	}
}
