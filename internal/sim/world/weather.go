package world

import (
	"time"

	"github.com/hevlyo/pegabola/internal/protocol"
)

// The weather director periodically replaces the ambient conditions with a
// random event from this catalog. Effects are advisory multipliers applied
// client-side; the server only owns the schedule so every client sees the
// same sky.
type weatherEvent struct {
	Kind     string
	Duration time.Duration
	Effects  map[string]float64
}

var weatherCatalog = []weatherEvent{
	{Kind: "RAIN", Duration: 60 * time.Second, Effects: map[string]float64{"friction": 0.8, "visibility": 0.7}},
	{Kind: "FOG", Duration: 45 * time.Second, Effects: map[string]float64{"visibility": 0.4}},
	{Kind: "STORM", Duration: 30 * time.Second, Effects: map[string]float64{"wind_force": 0.2, "friction": 0.6, "visibility": 0.5}},
	{Kind: "SUNSHINE", Duration: 90 * time.Second, Effects: map[string]float64{"speed_boost": 1.2, "visibility": 1.2}},
}

type activeWeather struct {
	weatherEvent
	endsAt time.Time
}

func (a *activeWeather) msg() protocol.WeatherMsg {
	return protocol.WeatherMsg{
		Type:            protocol.TypeWeather,
		ProtocolVersion: protocol.Version,
		Kind:            a.Kind,
		DurationMs:      a.Duration.Milliseconds(),
		Effects:         a.Effects,
	}
}

func (w *World) nextWeatherDelay() time.Duration {
	spread := w.cfg.Weather.MaxInterval - w.cfg.Weather.MinInterval
	if spread <= 0 {
		return w.cfg.Weather.MinInterval
	}
	return w.cfg.Weather.MinInterval + time.Duration(w.rng.Int63n(int64(spread)))
}

func (w *World) handleWeatherTick() {
	if w.weather != nil {
		w.endWeather()
	}
	ev := weatherCatalog[w.rng.Intn(len(weatherCatalog))]
	w.weather = &activeWeather{weatherEvent: ev, endsAt: time.Now().Add(ev.Duration)}
	if w.weatherEnd != nil {
		w.weatherEnd.Stop()
	}
	w.weatherEnd = time.NewTimer(ev.Duration)
	w.broadcast(w.weather.msg())
	w.log.Printf("weather started kind=%s duration=%s", ev.Kind, ev.Duration)
}

func (w *World) endWeather() {
	if w.weather == nil {
		return
	}
	w.broadcast(protocol.WeatherEndedMsg{
		Type:            protocol.TypeWeatherEnded,
		ProtocolVersion: protocol.Version,
		Kind:            w.weather.Kind,
	})
	w.weather = nil
	if w.weatherEnd != nil {
		w.weatherEnd.Stop()
		w.weatherEnd = nil
	}
}
