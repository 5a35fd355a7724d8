package core

import (
	"encoding/json"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/dokojong/server/internal/domain"
)

// Frame is one decoded inbound message.
type Frame map[string]any

// Accessors assume the handler's schema already validated the field.
func (f Frame) Str(name string) string {
	s, _ := f[name].(string)
	return s
}

func (f Frame) Int(name string) int {
	v, _ := f[name].(float64)
	return int(v)
}

func (f Frame) Bool(name string) bool {
	b, _ := f[name].(bool)
	return b
}

// Guard is one predicate in a handler's chain. A false verdict aborts the
// dispatch silently; the sender only notices the missing broadcast.
type Guard interface {
	Allow(r *Room, u *User, f Frame) bool
}

// StageGuard admits frames only while the room is in the given stage.
type StageGuard domain.Stage

func (g StageGuard) Allow(r *Room, _ *User, _ Frame) bool {
	return r.stage == domain.Stage(g)
}

// OperatorGuard admits the operator (true) or everyone but the operator
// (false).
type OperatorGuard bool

func (g OperatorGuard) Allow(r *Room, u *User, _ Frame) bool {
	return (r.operator == u.ID) == bool(g)
}

// ActiveGuard admits seated players whose turn flag is currently set.
type ActiveGuard struct{}

func (ActiveGuard) Allow(r *Room, u *User, _ Frame) bool {
	return u.Seated() && r.board != nil && r.board.active[u.Seat]
}

type FieldKind int

const (
	FieldString FieldKind = iota
	FieldInt
	FieldBool
)

// Field declares one payload field a handler needs.
type Field struct {
	Name     string
	Kind     FieldKind
	Optional bool
}

// Schema validates a handler's declared fields all-or-nothing: a missing
// required field or any mistyped field (optional included) aborts the
// dispatch. It runs as the last guard of every chain.
type Schema []Field

func (s Schema) Allow(_ *Room, _ *User, f Frame) bool {
	for _, fl := range s {
		v, ok := f[fl.Name]
		if !ok {
			if fl.Optional {
				continue
			}
			return false
		}
		switch fl.Kind {
		case FieldString:
			if _, ok := v.(string); !ok {
				return false
			}
		case FieldInt:
			n, ok := v.(float64)
			if !ok || n != math.Trunc(n) {
				return false
			}
		case FieldBool:
			if _, ok := v.(bool); !ok {
				return false
			}
		}
	}
	return true
}

// Effects collects the snapshot sends a handler decided on; the dispatcher
// flushes them after the room lock is released.
type Effects struct {
	toSelf     []Kind
	toEveryone []Kind
}

func (e *Effects) Reply(k Kind)     { e.toSelf = append(e.toSelf, k) }
func (e *Effects) Broadcast(k Kind) { e.toEveryone = append(e.toEveryone, k) }

// Handler couples a guard chain with the mutation it protects. Guards run
// in declaration order: stage, then role, then turn, then the field schema.
type Handler struct {
	Guards []Guard
	Apply  func(r *Room, u *User, f Frame, eff *Effects)
}

// Table maps inbound frame types to handlers. It is built once at startup
// and handed to the dispatcher; nothing lives in package state.
type Table map[string]Handler

func NewTable() Table {
	waiting := StageGuard(domain.StageWaiting)
	gaming := StageGuard(domain.StageGaming)
	return Table{
		"user.register": {
			Guards: []Guard{waiting, Schema{
				{Name: "nickname", Kind: FieldString, Optional: true},
			}},
			Apply: (*Room).hallInit,
		},
		"user.take_seat": {
			Guards: []Guard{waiting, Schema{
				{Name: "seat", Kind: FieldInt},
				{Name: "nickname", Kind: FieldString, Optional: true},
			}},
			Apply: (*Room).takeSeat,
		},
		"room.remove_seat": {
			Guards: []Guard{waiting, OperatorGuard(true), Schema{
				{Name: "seat", Kind: FieldInt},
			}},
			Apply: (*Room).removeSeat,
		},
		"room.remove_player": {
			Guards: []Guard{waiting, Schema{
				{Name: "seat", Kind: FieldInt},
			}},
			Apply: (*Room).removePlayer,
		},
		"room.add_seat": {
			Guards: []Guard{waiting, OperatorGuard(true), Schema{}},
			Apply:  (*Room).addSeat,
		},
		"player.take_operator": {
			Guards: []Guard{waiting, OperatorGuard(false), Schema{}},
			Apply:  (*Room).takeOperator,
		},
		"game.change_settings": {
			Guards: []Guard{waiting, OperatorGuard(true), Schema{
				{Name: "quick", Kind: FieldBool},
			}},
			Apply: (*Room).changeSettings,
		},
		"game.start": {
			Guards: []Guard{waiting, OperatorGuard(true), Schema{}},
			Apply:  (*Room).startGame,
		},
		"board.init": {
			Guards: []Guard{gaming, Schema{}},
			Apply:  (*Room).boardInit,
		},
		"dog.place": {
			Guards: []Guard{gaming, ActiveGuard{}, Schema{
				{Name: "position", Kind: FieldInt},
			}},
			Apply: (*Room).placeDog,
		},
	}
}

// Dispatcher decodes inbound frames and routes them through the guard
// chain to their handler.
type Dispatcher struct {
	table Table
}

func NewDispatcher(table Table) *Dispatcher {
	return &Dispatcher{table: table}
}

// Dispatch runs one raw frame from u in room r. Malformed input, unknown
// types and guard rejections drop the frame without a reply. The handler
// runs under the room lock; the snapshots it requested are flushed after
// the lock is released.
func (d *Dispatcher) Dispatch(r *Room, u *User, raw []byte) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil || f == nil {
		log.Debug().Str("module", "core.dispatch").Str("room", string(r.ID())).
			Msg("undecodable frame dropped")
		return
	}
	t, ok := f["type"].(string)
	if !ok {
		log.Debug().Str("module", "core.dispatch").Str("room", string(r.ID())).
			Msg("frame without type dropped")
		return
	}
	h, ok := d.table[t]
	if !ok {
		log.Warn().Str("module", "core.dispatch").Str("type", t).Msg("unknown frame type dropped")
		return
	}

	eff := &Effects{}
	r.mu.Lock()
	for _, g := range h.Guards {
		if !g.Allow(r, u, f) {
			r.mu.Unlock()
			log.Debug().Str("module", "core.dispatch").Str("type", t).
				Str("user", string(u.ID)).Msg("guard rejected frame")
			return
		}
	}
	h.Apply(r, u, f, eff)
	r.mu.Unlock()

	for _, k := range eff.toSelf {
		r.sendTo(u, k)
	}
	for _, k := range eff.toEveryone {
		r.Broadcast(k)
	}
}
