package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	// client -> server
	TypeJoin    = "JOIN"
	TypeMove    = "MOVE"
	TypeCollect = "COLLECT"

	// server -> client
	TypeWorldInfo     = "WORLD_INFO"
	TypeSelfInfo      = "SELF_INFO"
	TypeRoster        = "ROSTER"
	TypeItemBatch     = "ITEM_BATCH"
	TypePlayerJoined  = "PLAYER_JOINED"
	TypePlayerMoved   = "PLAYER_MOVED"
	TypePlayerLeft    = "PLAYER_LEFT"
	TypePlayerCount   = "PLAYER_COUNT"
	TypeItemCollected = "ITEM_COLLECTED"
	TypeScores        = "SCORES"
	TypeError         = "ERROR"
	TypeWeather       = "WEATHER"
	TypeWeatherEnded  = "WEATHER_ENDED"
	TypeZone          = "ZONE"
	TypeZoneRemoved   = "ZONE_REMOVED"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
