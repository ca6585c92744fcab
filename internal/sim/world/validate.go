package world

import (
	"math"
	"regexp"
	"strings"

	"github.com/hevlyo/pegabola/internal/protocol"
)

var nicknameRE = regexp.MustCompile(`^[A-Za-z0-9 _-]+$`)

// ValidateNickname trims and checks a join nickname, returning the accepted
// name or a reason code. An empty trimmed nickname falls back to a generated
// one; anything else outside the allow-list is rejected outright rather than
// sanitized, so the client sees exactly the identity it asked for or none.
func ValidateNickname(raw, fallbackID string, maxLen int) (string, string) {
	nick := strings.TrimSpace(raw)
	if nick == "" {
		return "Player-" + shortID(fallbackID), ""
	}
	if len(nick) > maxLen {
		return "", protocol.ErrBadNickname
	}
	if !nicknameRE.MatchString(nick) {
		return "", protocol.ErrBadNickname
	}
	return nick, ""
}

func shortID(id string) string {
	if len(id) > 4 {
		return id[:4]
	}
	return id
}

// ValidateMovement rejects non-finite or out-of-bounds positions. Violations
// are never clamped: the stored position stays untouched and the attempt
// remains visible to telemetry.
func ValidateMovement(pos protocol.Vec3, maxPos float64) string {
	for _, c := range [3]float64{pos.X, pos.Y, pos.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return protocol.ErrBadRequest
		}
	}
	if math.Abs(pos.X) > maxPos || math.Abs(pos.Z) > maxPos {
		return protocol.ErrOutOfBounds
	}
	return ""
}

func ValidateCollect(itemID string) string {
	if strings.TrimSpace(itemID) == "" {
		return protocol.ErrBadRequest
	}
	return ""
}

// WithinDistance measures on the horizontal plane; the vertical offset is a
// camera concern, not a collection one.
func WithinDistance(a, b protocol.Vec3, max float64) bool {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx+dz*dz) <= max
}
