package world

import "time"

type Config struct {
	WorldSize   float64
	BoundsSlack float64

	ItemCount    int
	Kinds        []ItemKind
	RespawnDelay time.Duration

	CollectDistance float64
	NicknameMaxLen  int

	MoveLimit    LimitConfig
	CollectLimit LimitConfig

	Weather WeatherConfig
	Zones   ZoneConfig

	Seed int64
}

type LimitConfig struct {
	Max    int
	Window time.Duration
}

type WeatherConfig struct {
	Enabled     bool
	MinInterval time.Duration
	MaxInterval time.Duration
}

type ZoneConfig struct {
	Enabled       bool
	SpawnInterval time.Duration
	MaxActive     int
	MinDuration   time.Duration
	MaxDuration   time.Duration
}

func (c *Config) applyDefaults() {
	if c.WorldSize <= 0 {
		c.WorldSize = 50
	}
	if c.BoundsSlack <= 1 {
		c.BoundsSlack = 1.2
	}
	if c.ItemCount <= 0 {
		c.ItemCount = 15
	}
	if len(c.Kinds) == 0 {
		c.Kinds = defaultKinds()
	}
	if c.RespawnDelay <= 0 {
		c.RespawnDelay = 3 * time.Second
	}
	if c.CollectDistance <= 0 {
		c.CollectDistance = 5
	}
	if c.NicknameMaxLen <= 0 {
		c.NicknameMaxLen = 15
	}
	if c.MoveLimit.Max <= 0 {
		c.MoveLimit = LimitConfig{Max: 60, Window: time.Second}
	}
	if c.MoveLimit.Window <= 0 {
		c.MoveLimit.Window = time.Second
	}
	if c.CollectLimit.Max <= 0 {
		c.CollectLimit = LimitConfig{Max: 10, Window: time.Second}
	}
	if c.CollectLimit.Window <= 0 {
		c.CollectLimit.Window = time.Second
	}
	if c.Weather.MinInterval <= 0 {
		c.Weather.MinInterval = time.Minute
	}
	if c.Weather.MaxInterval < c.Weather.MinInterval {
		c.Weather.MaxInterval = c.Weather.MinInterval + 2*time.Minute
	}
	if c.Zones.SpawnInterval <= 0 {
		c.Zones.SpawnInterval = 45 * time.Second
	}
	if c.Zones.MaxActive <= 0 {
		c.Zones.MaxActive = 3
	}
	if c.Zones.MinDuration <= 0 {
		c.Zones.MinDuration = 30 * time.Second
	}
	if c.Zones.MaxDuration < c.Zones.MinDuration {
		c.Zones.MaxDuration = c.Zones.MinDuration + 30*time.Second
	}
}

// maxPosition is the hard movement bound. The slack beyond the world edge
// tolerates client-side interpolation drift; anything past it is rejected.
func (c *Config) maxPosition() float64 {
	return c.WorldSize * c.BoundsSlack
}
