package world

import (
	"time"

	"github.com/google/uuid"

	"github.com/hevlyo/pegabola/internal/protocol"
)

type ItemKind struct {
	Name  string
	Value int
	Color string
}

func defaultKinds() []ItemKind {
	return []ItemKind{
		{Name: "standard", Value: 10, Color: "#FFFFFF"},
		{Name: "premium", Value: 30, Color: "#FFD700"},
		{Name: "swift", Value: 5, Color: "#00FF00"},
	}
}

// newItem spawns at a uniform random position inside the world bounds with a
// uniformly chosen kind. Item ids come from uuid so a live id can never
// collide with a respawned one.
func (w *World) newItem() *Item {
	kind := w.cfg.Kinds[w.rng.Intn(len(w.cfg.Kinds))]
	return &Item{
		ID:    uuid.NewString(),
		Pos:   w.randomGroundPos(0.5),
		Kind:  kind.Name,
		Value: kind.Value,
		Color: kind.Color,
	}
}

func (w *World) seedItems() {
	for i := 0; i < w.cfg.ItemCount; i++ {
		w.state.AddItem(w.newItem())
	}
	w.itemsN.Store(int64(w.state.ActiveItemCount()))
}

// scheduleRespawn arms the one-shot replacement timer for a collected item.
// The firing is delivered as a message into the world loop so the spawn obeys
// the same single-writer discipline as live events. Timers are independent
// per collection and are not cancelled on shutdown; a late fire is dropped
// via the stop channel.
func (w *World) scheduleRespawn(collectedID string) {
	time.AfterFunc(w.cfg.RespawnDelay, func() {
		select {
		case w.respawn <- collectedID:
		case <-w.stop:
		}
	})
}

func (w *World) handleRespawn(collectedID string) {
	w.state.DropCollected(collectedID)
	it := w.newItem()
	w.state.AddItem(it)
	w.itemsN.Store(int64(w.state.ActiveItemCount()))
	w.broadcast(protocol.ItemBatchMsg{
		Type:            protocol.TypeItemBatch,
		ProtocolVersion: protocol.Version,
		Items:           []protocol.ItemInfo{itemInfo(*it)},
	})
}

func itemInfo(it Item) protocol.ItemInfo {
	return protocol.ItemInfo{
		ID:       it.ID,
		Position: it.Pos,
		Kind:     it.Kind,
		Value:    it.Value,
		Color:    it.Color,
	}
}

func itemInfos(items []Item) []protocol.ItemInfo {
	out := make([]protocol.ItemInfo, len(items))
	for i, it := range items {
		out[i] = itemInfo(it)
	}
	return out
}
