package world

import (
	"errors"
	"sort"
	"time"

	"github.com/hevlyo/pegabola/internal/protocol"
)

var ErrPlayerExists = errors.New("player already registered")

type Player struct {
	ID         string
	Nickname   string
	Pos        protocol.Vec3
	Color      string
	Score      int
	LastUpdate time.Time
}

type Item struct {
	ID        string
	Pos       protocol.Vec3
	Kind      string
	Value     int
	Color     string
	Collected bool
}

type CollectResult struct {
	ItemID   string
	PlayerID string
	Value    int
	Kind     string
}

// State is the authoritative registry of players, items and score
// bookkeeping. It is owned by the world loop goroutine; nothing outside this
// package holds a mutable reference to it, and all access goes through its
// methods.
type State struct {
	players map[string]*Player
	items   map[string]*Item

	topScore    int
	topScorerID string
}

func NewState() *State {
	return &State{
		players: make(map[string]*Player),
		items:   make(map[string]*Item),
	}
}

func (s *State) AddPlayer(p *Player) error {
	if _, ok := s.players[p.ID]; ok {
		return ErrPlayerExists
	}
	s.players[p.ID] = p
	return nil
}

func (s *State) Player(id string) *Player {
	return s.players[id]
}

// UpdatePlayerPosition overwrites the stored position without validating it;
// bounds checks belong to the validation policy and run before this.
func (s *State) UpdatePlayerPosition(id string, pos protocol.Vec3, now time.Time) bool {
	p, ok := s.players[id]
	if !ok {
		return false
	}
	p.Pos = pos
	p.LastUpdate = now
	return true
}

// RemovePlayer is idempotent.
func (s *State) RemovePlayer(id string) {
	delete(s.players, id)
}

func (s *State) AddItem(it *Item) {
	s.items[it.ID] = it
}

func (s *State) Item(id string) *Item {
	return s.items[id]
}

// CollectItem applies at most one collection per item id. The collected
// record stays in the map (marked) until DropCollected, so a duplicate
// attempt inside the respawn window is rejected rather than re-scored.
func (s *State) CollectItem(playerID, itemID string, multiplier int) (CollectResult, string) {
	p, ok := s.players[playerID]
	if !ok {
		return CollectResult{}, protocol.ErrUnknownPlayer
	}
	it, ok := s.items[itemID]
	if !ok {
		return CollectResult{}, protocol.ErrUnknownItem
	}
	if it.Collected {
		return CollectResult{}, protocol.ErrAlreadyCollected
	}
	if multiplier < 1 {
		multiplier = 1
	}
	it.Collected = true
	award := it.Value * multiplier
	p.Score += award
	if p.Score > s.topScore {
		s.topScore = p.Score
		s.topScorerID = p.ID
	}
	return CollectResult{ItemID: it.ID, PlayerID: p.ID, Value: award, Kind: it.Kind}, ""
}

// DropCollected forgets a collected item record once its replacement exists.
func (s *State) DropCollected(id string) {
	if it, ok := s.items[id]; ok && it.Collected {
		delete(s.items, id)
	}
}

// ActiveItems returns a sorted snapshot of the uncollected set. Callers must
// not assume a live view.
func (s *State) ActiveItems() []Item {
	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		if !it.Collected {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *State) ActiveItemCount() int {
	n := 0
	for _, it := range s.items {
		if !it.Collected {
			n++
		}
	}
	return n
}

// Players returns a sorted snapshot of the roster.
func (s *State) Players() []Player {
	out := make([]Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Scores is a snapshot for broadcast; mutating it does not touch the state.
func (s *State) Scores() map[string]int {
	out := make(map[string]int, len(s.players))
	for id, p := range s.players {
		out[id] = p.Score
	}
	return out
}

func (s *State) PlayerCount() int {
	return len(s.players)
}

func (s *State) TopScore() (int, string) {
	return s.topScore, s.topScorerID
}
