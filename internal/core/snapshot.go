package core

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dokojong/server/internal/domain"
)

// Kind names one outbound snapshot type.
type Kind string

const (
	KindStage      Kind = "room.stage"
	KindSeatStatus Kind = "seat.status"
	KindSettings   Kind = "game.settings"
	KindGameStatus Kind = "game.status"
	KindScores     Kind = "game.scores"
	KindUserInit   Kind = "user.init"
	KindTilesSetup Kind = "tiles.setup"
	KindDogPlace   Kind = "dog.place"
	KindPlayerAct  Kind = "player.act"
)

type StagePayload struct {
	Type  string       `json:"type"`
	Stage domain.Stage `json:"stage"`
}

// SeatView is one slot of the roster as seen by a particular recipient.
type SeatView struct {
	Nickname string `json:"nickname"`
	Online   bool   `json:"online"`
	Me       bool   `json:"me"`
	Operator bool   `json:"operator"`
}

type SeatStatusPayload struct {
	Type   string      `json:"type"`
	Status []*SeatView `json:"status"`
}

type SettingsPayload struct {
	Type      string `json:"type"`
	QuickGame bool   `json:"quick_game"`
}

type GameStatusPayload struct {
	Type  string `json:"type"`
	Start bool   `json:"start"`
}

type ScoreEntry struct {
	Score   int `json:"score"`
	Penalty int `json:"penalty"`
}

type ScoresPayload struct {
	Type   string       `json:"type"`
	Scores []ScoreEntry `json:"scores"`
}

type UserInitPayload struct {
	Type     string `json:"type"`
	Nickname string `json:"nickname"`
}

type TilesSetupPayload struct {
	Type   string `json:"type"`
	Active []bool `json:"active"`
}

type DogPlacePayload struct {
	Type     string `json:"type"`
	Position int    `json:"position"`
}

type PlayerActPayload struct {
	Type string `json:"type"`
	Seat int    `json:"seat"`
}

// buildFor assembles the kind payload as seen by viewer. The caller must
// hold r.mu. A kind nobody defined is a programming error, not user input.
func (r *Room) buildFor(kind Kind, viewer *User) any {
	switch kind {
	case KindStage:
		return StagePayload{Type: string(kind), Stage: r.stage}
	case KindSeatStatus:
		status := make([]*SeatView, len(r.seats))
		for i, id := range r.seats {
			if id == "" {
				continue
			}
			u := r.users[id]
			status[i] = &SeatView{
				Nickname: u.Nickname,
				Online:   u.Online(),
				Me:       u == viewer,
				Operator: r.operator == u.ID,
			}
		}
		return SeatStatusPayload{Type: string(kind), Status: status}
	case KindSettings:
		return SettingsPayload{Type: string(kind), QuickGame: r.settings.QuickGame}
	case KindGameStatus:
		return GameStatusPayload{Type: string(kind), Start: r.stage == domain.StageGaming}
	case KindScores:
		scores := make([]ScoreEntry, len(r.board.scores))
		for i, s := range r.board.scores {
			scores[i] = ScoreEntry{Score: s[0], Penalty: s[1]}
		}
		return ScoresPayload{Type: string(kind), Scores: scores}
	case KindUserInit:
		return UserInitPayload{Type: string(kind), Nickname: viewer.Nickname}
	case KindTilesSetup:
		return TilesSetupPayload{Type: string(kind), Active: append([]bool(nil), r.board.active...)}
	case KindDogPlace:
		pos := -1
		if viewer.Seated() {
			pos = r.board.dogs[viewer.Seat]
		}
		return DogPlacePayload{Type: string(kind), Position: pos}
	case KindPlayerAct:
		seat := r.board.leader
		for i, a := range r.board.active {
			if a {
				seat = i
				break
			}
		}
		return PlayerActPayload{Type: string(kind), Seat: seat}
	}
	panic(fmt.Sprintf("core: no such snapshot kind: %s", kind))
}

type delivery struct {
	conn  Conn
	frame any
}

// sendTo delivers viewer's own payload of kind. The payload is built under
// the lock, the send happens outside it.
func (r *Room) sendTo(u *User, kind Kind) {
	r.mu.Lock()
	var d delivery
	if u.conn != nil {
		d = delivery{conn: u.conn, frame: r.buildFor(kind, u)}
	}
	r.mu.Unlock()
	if d.conn != nil {
		_ = d.conn.Send(d.frame)
	}
}

// Broadcast fans kind out to every connected member with per-recipient
// payloads. A broadcast racing a later mutation may carry a slightly stale
// view; clients converge on the next one.
func (r *Room) Broadcast(kind Kind) {
	r.mu.Lock()
	ds := make([]delivery, 0, len(r.users))
	for _, u := range r.users {
		if u.conn == nil {
			continue
		}
		ds = append(ds, delivery{conn: u.conn, frame: r.buildFor(kind, u)})
	}
	r.mu.Unlock()

	sent, dropped := 0, 0
	for _, d := range ds {
		if err := d.conn.Send(d.frame); err != nil {
			dropped++
			continue
		}
		sent++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.id)).Str("kind", string(kind)).
		Int("sent_to", sent).Int("dropped", dropped).Msg("broadcast result")
}
