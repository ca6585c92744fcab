package world

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/hevlyo/pegabola/internal/protocol"
)

func playerInfo(p *Player) protocol.PlayerInfo {
	return protocol.PlayerInfo{
		ID:       p.ID,
		Nickname: p.Nickname,
		Position: p.Pos,
		Color:    p.Color,
		Score:    p.Score,
	}
}

// randomColor picks a fully saturated hue so players stay visually
// distinguishable against the mostly white/gold item palette.
func randomColor(rng *rand.Rand) string {
	return hslToHex(rng.Intn(360), 100, 50)
}

func hslToHex(h int, s, l float64) string {
	l /= 100
	a := s * math.Min(l, 1-l) / 100
	f := func(n float64) int {
		k := math.Mod(n+float64(h)/30, 12)
		c := l - a*math.Max(math.Min(math.Min(k-3, 9-k), 1), -1)
		return int(math.Round(255 * c))
	}
	return fmt.Sprintf("#%02X%02X%02X", f(0), f(8), f(4))
}
