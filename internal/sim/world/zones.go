package world

import (
	"time"

	"github.com/google/uuid"

	"github.com/hevlyo/pegabola/internal/protocol"
)

// Zones are temporary circular areas with a gameplay effect. Only MULTIPLIER
// has a server-side consequence (doubled collection value); the rest are
// rendered and simulated client-side.
type Zone struct {
	ID       string
	Kind     string
	Pos      protocol.Vec3
	Radius   float64
	Duration time.Duration
}

const zoneKindMultiplier = "MULTIPLIER"

var zoneKinds = []string{zoneKindMultiplier, "DANGER", "SPEED_BOOST", "LOW_GRAVITY"}

func zoneMsg(z *Zone) protocol.ZoneMsg {
	return protocol.ZoneMsg{
		Type:            protocol.TypeZone,
		ProtocolVersion: protocol.Version,
		Zone: protocol.ZoneInfo{
			ID:         z.ID,
			Kind:       z.Kind,
			Position:   z.Pos,
			Radius:     z.Radius,
			DurationMs: z.Duration.Milliseconds(),
		},
	}
}

func (w *World) handleZoneTick() {
	if len(w.zones) >= w.cfg.Zones.MaxActive {
		return
	}
	spread := w.cfg.Zones.MaxDuration - w.cfg.Zones.MinDuration
	dur := w.cfg.Zones.MinDuration
	if spread > 0 {
		dur += time.Duration(w.rng.Int63n(int64(spread)))
	}
	z := &Zone{
		ID:       uuid.NewString(),
		Kind:     zoneKinds[w.rng.Intn(len(zoneKinds))],
		Pos:      w.randomGroundPos(0.1),
		Radius:   5 + w.rng.Float64()*10,
		Duration: dur,
	}
	w.zones[z.ID] = z
	w.broadcast(zoneMsg(z))
	w.log.Printf("zone spawned id=%s kind=%s duration=%s", z.ID, z.Kind, z.Duration)

	id := z.ID
	time.AfterFunc(dur, func() {
		select {
		case w.zoneGone <- id:
		case <-w.stop:
		}
	})
}

func (w *World) handleZoneExpired(id string) {
	if _, ok := w.zones[id]; !ok {
		return
	}
	delete(w.zones, id)
	w.broadcast(protocol.ZoneRemovedMsg{
		Type:            protocol.TypeZoneRemoved,
		ProtocolVersion: protocol.Version,
		ID:              id,
	})
}

// scoreMultiplier doubles the award when the collector stands inside an
// active MULTIPLIER zone at the moment of collection.
func (w *World) scoreMultiplier(pos protocol.Vec3) int {
	for _, z := range w.zones {
		if z.Kind == zoneKindMultiplier && WithinDistance(pos, z.Pos, z.Radius) {
			return 2
		}
	}
	return 1
}
