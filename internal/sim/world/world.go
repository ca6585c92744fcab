package world

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/hevlyo/pegabola/internal/protocol"
)

type JoinRequest struct {
	ConnID   string
	Nickname string
	Out      chan []byte
	Resp     chan JoinResponse
}

type JoinResponse struct {
	PlayerID string
	ErrCode  string
}

// EventEnvelope carries a validated-shape inbound event from the transport
// to the world loop. Exactly one payload pointer is set, matching Type.
type EventEnvelope struct {
	PlayerID string
	Type     string
	Move     *protocol.MoveMsg
	Collect  *protocol.CollectMsg
}

type clientState struct {
	out chan []byte
}

// AuditEntry is one line of the optional audit trail.
type AuditEntry struct {
	Time     time.Time `json:"time"`
	Event    string    `json:"event"`
	PlayerID string    `json:"player_id,omitempty"`
	Detail   string    `json:"detail,omitempty"`
	Code     string    `json:"code,omitempty"`
}

// AuditLogger is implemented in internal/audit. May be nil.
type AuditLogger interface {
	WriteAudit(AuditEntry) error
}

// World is the authoritative game state plus its event dispatcher. Every
// mutation happens on the Run goroutine: one inbound event is processed to
// completion (rate limit, validate, mutate, broadcast) before the next, which
// is what makes the at-most-once collection guarantee hold without locks.
type World struct {
	cfg Config
	log *log.Logger
	rng *rand.Rand

	state   *State
	clients map[string]*clientState

	moveLimiter    *Limiter
	collectLimiter *Limiter

	inbox    chan EventEnvelope
	join     chan JoinRequest
	leave    chan string
	respawn  chan string
	zoneGone chan string
	stop     chan struct{}

	weather     *activeWeather
	weatherNext *time.Timer
	weatherEnd  *time.Timer
	zoneNext    *time.Timer
	zones       map[string]*Zone

	audit AuditLogger

	playersN atomic.Int64
	clientsN atomic.Int64
	itemsN   atomic.Int64
}

func New(cfg Config, logger *log.Logger) *World {
	cfg.applyDefaults()
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	w := &World{
		cfg:            cfg,
		log:            logger,
		rng:            rand.New(rand.NewSource(seed)),
		state:          NewState(),
		clients:        make(map[string]*clientState),
		moveLimiter:    NewLimiter(cfg.MoveLimit.Max, cfg.MoveLimit.Window),
		collectLimiter: NewLimiter(cfg.CollectLimit.Max, cfg.CollectLimit.Window),
		inbox:          make(chan EventEnvelope, 256),
		join:           make(chan JoinRequest, 16),
		leave:          make(chan string, 16),
		respawn:        make(chan string, 64),
		zoneGone:       make(chan string, 16),
		stop:           make(chan struct{}),
		zones:          make(map[string]*Zone),
	}
	w.seedItems()
	return w
}

func (w *World) Inbox() chan<- EventEnvelope { return w.inbox }
func (w *World) Join() chan<- JoinRequest    { return w.join }
func (w *World) Leave() chan<- string        { return w.leave }

func (w *World) SetAuditLogger(l AuditLogger) { w.audit = l }

func (w *World) Stop() { close(w.stop) }

// Run is the single mutation path. No other goroutine touches the state, the
// limiters, the client registry, or the director structures.
func (w *World) Run(ctx context.Context) error {
	var weatherNextC, zoneNextC <-chan time.Time
	if w.cfg.Weather.Enabled {
		w.weatherNext = time.NewTimer(w.nextWeatherDelay())
		defer w.weatherNext.Stop()
		weatherNextC = w.weatherNext.C
	}
	if w.cfg.Zones.Enabled {
		w.zoneNext = time.NewTimer(w.cfg.Zones.SpawnInterval)
		defer w.zoneNext.Stop()
		zoneNextC = w.zoneNext.C
	}

	for {
		var weatherEndC <-chan time.Time
		if w.weatherEnd != nil {
			weatherEndC = w.weatherEnd.C
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			w.handleJoin(req)
		case id := <-w.leave:
			w.handleLeave(id)
		case env := <-w.inbox:
			w.handleEvent(env)
		case id := <-w.respawn:
			w.handleRespawn(id)
		case id := <-w.zoneGone:
			w.handleZoneExpired(id)
		case <-weatherNextC:
			w.handleWeatherTick()
			w.weatherNext.Reset(w.nextWeatherDelay())
		case <-weatherEndC:
			w.endWeather()
		case <-zoneNextC:
			w.handleZoneTick()
			w.zoneNext.Reset(w.cfg.Zones.SpawnInterval)
		}
	}
}

func (w *World) randomGroundPos(y float64) protocol.Vec3 {
	return protocol.Vec3{
		X: w.rng.Float64()*w.cfg.WorldSize*2 - w.cfg.WorldSize,
		Y: y,
		Z: w.rng.Float64()*w.cfg.WorldSize*2 - w.cfg.WorldSize,
	}
}

func (w *World) encode(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		w.log.Printf("encode %T: %v", v, err)
		return nil
	}
	return b
}

func (w *World) sendTo(id string, v any) {
	c, ok := w.clients[id]
	if !ok {
		return
	}
	if b := w.encode(v); b != nil {
		sendLatest(c.out, b)
	}
}

func (w *World) broadcast(v any) {
	b := w.encode(v)
	if b == nil {
		return
	}
	for _, c := range w.clients {
		sendLatest(c.out, b)
	}
}

func (w *World) broadcastExcept(skip string, v any) {
	b := w.encode(v)
	if b == nil {
		return
	}
	for id, c := range w.clients {
		if id == skip {
			continue
		}
		sendLatest(c.out, b)
	}
}

func (w *World) errorTo(id, code, msg string) {
	w.sendTo(id, protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         msg,
	})
}

// sendError writes to an out channel that may not be registered yet (join
// rejection happens before the client enters the registry).
func (w *World) sendError(out chan []byte, code, msg string) {
	if out == nil {
		return
	}
	b := w.encode(protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         msg,
	})
	if b != nil {
		sendLatest(out, b)
	}
}

// sendLatest never blocks the world loop: when a client's queue is full the
// oldest message is dropped to make room. Slow consumers lose transient
// updates, not the connection.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}

func (w *World) auditEvent(event, playerID, detail, code string) {
	if w.audit == nil {
		return
	}
	if err := w.audit.WriteAudit(AuditEntry{
		Time:     time.Now().UTC(),
		Event:    event,
		PlayerID: playerID,
		Detail:   detail,
		Code:     code,
	}); err != nil {
		w.log.Printf("audit %s: %v", event, err)
	}
}

type Metrics struct {
	Players     int
	Clients     int
	ActiveItems int
	InboxDepth  int
	JoinDepth   int
	LeaveDepth  int
}

// Metrics is safe to call from any goroutine.
func (w *World) Metrics() Metrics {
	return Metrics{
		Players:     int(w.playersN.Load()),
		Clients:     int(w.clientsN.Load()),
		ActiveItems: int(w.itemsN.Load()),
		InboxDepth:  len(w.inbox),
		JoinDepth:   len(w.join),
		LeaveDepth:  len(w.leave),
	}
}
