package world

import (
	"time"

	"github.com/hevlyo/pegabola/internal/protocol"
)

func (w *World) handleJoin(req JoinRequest) {
	respond := func(r JoinResponse) {
		if req.Resp != nil {
			req.Resp <- r
		}
	}

	if w.state.Player(req.ConnID) != nil {
		w.sendError(req.Out, protocol.ErrAlreadyJoined, "already joined")
		respond(JoinResponse{ErrCode: protocol.ErrAlreadyJoined})
		return
	}

	nick, code := ValidateNickname(req.Nickname, req.ConnID, w.cfg.NicknameMaxLen)
	if code != "" {
		w.sendError(req.Out, code, "invalid nickname")
		w.auditEvent("join_rejected", req.ConnID, req.Nickname, code)
		respond(JoinResponse{ErrCode: code})
		return
	}

	p := &Player{
		ID:         req.ConnID,
		Nickname:   nick,
		Pos:        w.randomGroundPos(0),
		Color:      randomColor(w.rng),
		LastUpdate: time.Now(),
	}
	if err := w.state.AddPlayer(p); err != nil {
		w.sendError(req.Out, protocol.ErrAlreadyJoined, "already joined")
		respond(JoinResponse{ErrCode: protocol.ErrAlreadyJoined})
		return
	}
	if req.Out != nil {
		w.clients[req.ConnID] = &clientState{out: req.Out}
	}
	w.playersN.Store(int64(w.state.PlayerCount()))
	w.clientsN.Store(int64(len(w.clients)))

	// Initial full-state sync for the joiner; everything after this is deltas.
	w.sendTo(req.ConnID, protocol.WorldInfoMsg{
		Type:            protocol.TypeWorldInfo,
		ProtocolVersion: protocol.Version,
		WorldSize:       w.cfg.WorldSize,
		ItemCount:       w.cfg.ItemCount,
	})
	w.sendTo(req.ConnID, protocol.SelfInfoMsg{
		Type:            protocol.TypeSelfInfo,
		ProtocolVersion: protocol.Version,
		Player:          playerInfo(p),
	})
	w.sendTo(req.ConnID, protocol.RosterMsg{
		Type:            protocol.TypeRoster,
		ProtocolVersion: protocol.Version,
		Players:         w.roster(),
	})
	w.sendTo(req.ConnID, protocol.ItemBatchMsg{
		Type:            protocol.TypeItemBatch,
		ProtocolVersion: protocol.Version,
		Items:           itemInfos(w.state.ActiveItems()),
	})
	if w.weather != nil {
		w.sendTo(req.ConnID, w.weather.msg())
	}
	for _, z := range w.zones {
		w.sendTo(req.ConnID, zoneMsg(z))
	}

	w.broadcastExcept(req.ConnID, protocol.PlayerJoinedMsg{
		Type:            protocol.TypePlayerJoined,
		ProtocolVersion: protocol.Version,
		Player:          playerInfo(p),
	})
	w.broadcastPlayerCount()
	w.log.Printf("player joined id=%s nick=%q", p.ID, p.Nickname)
	w.auditEvent("join", p.ID, p.Nickname, "")
	respond(JoinResponse{PlayerID: p.ID})
}

func (w *World) handleEvent(env EventEnvelope) {
	switch env.Type {
	case protocol.TypeMove:
		w.handleMove(env.PlayerID, env.Move)
	case protocol.TypeCollect:
		w.handleCollect(env.PlayerID, env.Collect)
	}
}

func (w *World) handleMove(id string, msg *protocol.MoveMsg) {
	if msg == nil {
		return
	}
	// Silent drop: movement is high-frequency and a lost update is harmless.
	if !w.moveLimiter.TryConsume(id) {
		return
	}
	p := w.state.Player(id)
	if p == nil {
		w.errorTo(id, protocol.ErrUnknownPlayer, "player not found")
		return
	}
	if code := ValidateMovement(msg.Position, w.cfg.maxPosition()); code != "" {
		w.errorTo(id, code, "position rejected")
		w.auditEvent("move_rejected", id, "", code)
		return
	}
	w.state.UpdatePlayerPosition(id, msg.Position, time.Now())
	// The sender already knows where it is; no echo.
	w.broadcastExcept(id, protocol.PlayerMovedMsg{
		Type:            protocol.TypePlayerMoved,
		ProtocolVersion: protocol.Version,
		ID:              id,
		Position:        msg.Position,
	})
}

func (w *World) handleCollect(id string, msg *protocol.CollectMsg) {
	if msg == nil {
		return
	}
	if !w.collectLimiter.TryConsume(id) {
		return
	}
	p := w.state.Player(id)
	if p == nil {
		w.errorTo(id, protocol.ErrUnknownPlayer, "player not found")
		return
	}
	if code := ValidateCollect(msg.ItemID); code != "" {
		w.errorTo(id, code, "invalid item id")
		return
	}
	it := w.state.Item(msg.ItemID)
	if it == nil {
		w.errorTo(id, protocol.ErrUnknownItem, "item not found")
		return
	}
	if it.Collected {
		w.errorTo(id, protocol.ErrAlreadyCollected, "item already collected")
		return
	}
	if !WithinDistance(p.Pos, it.Pos, w.cfg.CollectDistance) {
		w.errorTo(id, protocol.ErrTooFar, "item too far to collect")
		w.auditEvent("collect_rejected", id, msg.ItemID, protocol.ErrTooFar)
		return
	}

	res, code := w.state.CollectItem(id, msg.ItemID, w.scoreMultiplier(p.Pos))
	if code != "" {
		w.errorTo(id, code, "collection failed")
		return
	}
	w.itemsN.Store(int64(w.state.ActiveItemCount()))

	w.broadcast(protocol.ItemCollectedMsg{
		Type:            protocol.TypeItemCollected,
		ProtocolVersion: protocol.Version,
		ItemID:          res.ItemID,
		PlayerID:        res.PlayerID,
		Value:           res.Value,
	})
	top, topID := w.state.TopScore()
	w.broadcast(protocol.ScoresMsg{
		Type:            protocol.TypeScores,
		ProtocolVersion: protocol.Version,
		Scores:          w.state.Scores(),
		TopScore:        top,
		TopScorer:       topID,
	})
	w.scheduleRespawn(res.ItemID)
	w.log.Printf("player %s collected item %s for %d", id, res.ItemID, res.Value)
	w.auditEvent("collect", id, res.ItemID, "")
}

// handleLeave tears the connection down from any state. Disconnect before
// join only clears the client entry; the rest is idempotent.
func (w *World) handleLeave(id string) {
	delete(w.clients, id)
	w.clientsN.Store(int64(len(w.clients)))
	if w.state.Player(id) == nil {
		return
	}
	w.state.RemovePlayer(id)
	w.moveLimiter.Remove(id)
	w.collectLimiter.Remove(id)
	w.playersN.Store(int64(w.state.PlayerCount()))

	w.broadcastExcept(id, protocol.PlayerLeftMsg{
		Type:            protocol.TypePlayerLeft,
		ProtocolVersion: protocol.Version,
		ID:              id,
	})
	w.broadcastPlayerCount()
	w.log.Printf("player left id=%s", id)
	w.auditEvent("leave", id, "", "")
}

func (w *World) broadcastPlayerCount() {
	w.broadcast(protocol.PlayerCountMsg{
		Type:            protocol.TypePlayerCount,
		ProtocolVersion: protocol.Version,
		Count:           w.state.PlayerCount(),
	})
}

func (w *World) roster() map[string]protocol.PlayerInfo {
	players := w.state.Players()
	out := make(map[string]protocol.PlayerInfo, len(players))
	for i := range players {
		out[players[i].ID] = playerInfo(&players[i])
	}
	return out
}
