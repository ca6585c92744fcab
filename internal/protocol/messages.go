package protocol

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type PlayerInfo struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Position Vec3   `json:"position"`
	Color    string `json:"color"`
	Score    int    `json:"score"`
}

type ItemInfo struct {
	ID       string `json:"id"`
	Position Vec3   `json:"position"`
	Kind     string `json:"kind"`
	Value    int    `json:"value"`
	Color    string `json:"color"`
}

type ZoneInfo struct {
	ID         string  `json:"id"`
	Kind       string  `json:"kind"`
	Position   Vec3    `json:"position"`
	Radius     float64 `json:"radius"`
	DurationMs int64   `json:"duration_ms"`
}

// JOIN (client -> server)
type JoinMsg struct {
	Type     string `json:"type"`
	Nickname string `json:"nickname"`
}

// MOVE (client -> server)
type MoveMsg struct {
	Type     string `json:"type"`
	Position Vec3   `json:"position"`
}

// COLLECT (client -> server)
type CollectMsg struct {
	Type   string `json:"type"`
	ItemID string `json:"item_id"`
}

// WORLD_INFO (server -> joining client)
type WorldInfoMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	WorldSize       float64 `json:"world_size"`
	ItemCount       int     `json:"item_count"`
}

// SELF_INFO (server -> joining client)
type SelfInfoMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Player          PlayerInfo `json:"player"`
}

// ROSTER (server -> joining client): full player snapshot.
type RosterMsg struct {
	Type            string                `json:"type"`
	ProtocolVersion string                `json:"protocol_version"`
	Players         map[string]PlayerInfo `json:"players"`
}

// ITEM_BATCH (server -> client): full active set on join, single item on respawn.
type ItemBatchMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Items           []ItemInfo `json:"items"`
}

type PlayerJoinedMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Player          PlayerInfo `json:"player"`
}

type PlayerMovedMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Position        Vec3   `json:"position"`
}

type PlayerLeftMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
}

type PlayerCountMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Count           int    `json:"count"`
}

// ITEM_COLLECTED goes to every client, the collector included, so an
// optimistic client-side pickup can reconcile with the authoritative value.
type ItemCollectedMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ItemID          string `json:"item_id"`
	PlayerID        string `json:"player_id"`
	Value           int    `json:"value"`
}

type ScoresMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	Scores          map[string]int `json:"scores"`
	TopScore        int            `json:"top_score"`
	TopScorer       string         `json:"top_scorer,omitempty"`
}

// ERROR (server -> originating client only)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message"`
}

type WeatherMsg struct {
	Type            string             `json:"type"`
	ProtocolVersion string             `json:"protocol_version"`
	Kind            string             `json:"kind"`
	DurationMs      int64              `json:"duration_ms"`
	Effects         map[string]float64 `json:"effects,omitempty"`
}

type WeatherEndedMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Kind            string `json:"kind"`
}

type ZoneMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Zone            ZoneInfo `json:"zone"`
}

type ZoneRemovedMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
}
