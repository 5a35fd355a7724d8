package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dokojong/server/internal/domain"
)

// TestTableWiring asserts every inbound frame type is present and that
// every chain starts with a stage guard and ends with its field schema.
// Adding a message type without wiring both breaks this test.
func TestTableWiring(t *testing.T) {
	table := NewTable()
	want := []string{
		"user.register",
		"user.take_seat",
		"room.remove_seat",
		"room.remove_player",
		"room.add_seat",
		"player.take_operator",
		"game.change_settings",
		"game.start",
		"board.init",
		"dog.place",
	}
	for _, typ := range want {
		if _, ok := table[typ]; !ok {
			t.Errorf("frame type %q missing from the dispatch table", typ)
		}
	}
	if len(table) != len(want) {
		t.Errorf("dispatch table has %d entries, want %d", len(table), len(want))
	}
	for typ, h := range table {
		if h.Apply == nil {
			t.Errorf("handler %q has no apply func", typ)
			continue
		}
		if len(h.Guards) == 0 {
			t.Errorf("handler %q has an empty guard chain", typ)
			continue
		}
		if _, ok := h.Guards[0].(StageGuard); !ok {
			t.Errorf("handler %q guard chain must start with a stage guard", typ)
		}
		if _, ok := h.Guards[len(h.Guards)-1].(Schema); !ok {
			t.Errorf("handler %q guard chain must end with its field schema", typ)
		}
	}
}

func TestDispatchDropsMalformedFrames(t *testing.T) {
	r, d := newTestRoom(2)
	a, ca := join(r, "a")
	ca.reset()

	for name, raw := range map[string]string{
		"broken json":     `{"type":`,
		"non-object":      `42`,
		"array":           `["user.take_seat"]`,
		"null":            `null`,
		"missing type":    `{"seat":0}`,
		"non-string type": `{"type":7}`,
		"unknown type":    `{"type":"user.self_destruct"}`,
	} {
		send(d, r, a, raw)
		assert.Empty(t, ca.seatStatuses(), "%s must be dropped silently", name)
		assert.False(t, a.Seated(), "%s must not mutate the room", name)
	}
}

func TestSchemaIsAllOrNothing(t *testing.T) {
	r, d := newTestRoom(2)
	a, ca := join(r, "a")
	ca.reset()

	for name, raw := range map[string]string{
		"missing required field": `{"type":"user.take_seat"}`,
		"string seat":            `{"type":"user.take_seat","seat":"0"}`,
		"fractional seat":        `{"type":"user.take_seat","seat":0.5}`,
		"bool seat":              `{"type":"user.take_seat","seat":true}`,
		"mistyped optional":      `{"type":"user.take_seat","seat":0,"nickname":5}`,
	} {
		send(d, r, a, raw)
		assert.False(t, a.Seated(), "%s must abort the whole dispatch", name)
		assert.Empty(t, ca.seatStatuses(), "%s must not broadcast", name)
	}

	send(d, r, a, `{"type":"user.take_seat","seat":0,"nickname":"Alice"}`)
	assert.True(t, a.Seated())
}

func TestStageGuardRejectsWrongStage(t *testing.T) {
	r, d := newTestRoom(2)
	a, _ := join(r, "a")
	b, _ := join(r, "b")
	send(d, r, a, `{"type":"user.take_seat","seat":0,"nickname":"Alice"}`)
	send(d, r, b, `{"type":"user.take_seat","seat":1,"nickname":"Bob"}`)

	// gaming frames bounce in the waiting hall
	send(d, r, a, `{"type":"dog.place","position":1}`)
	assert.Nil(t, r.board)

	send(d, r, a, `{"type":"game.start"}`)
	assert.Equal(t, domain.StageGaming, r.stage)

	// waiting frames bounce once the game runs
	send(d, r, a, `{"type":"room.add_seat"}`)
	assert.Len(t, r.seats, 2)
}

func TestOperatorGuardSilentRejection(t *testing.T) {
	r, d := newTestRoom(3)
	a, _ := join(r, "a")
	b, cb := join(r, "b")
	send(d, r, a, `{"type":"user.take_seat","seat":0,"nickname":"Alice"}`)
	send(d, r, b, `{"type":"user.take_seat","seat":1,"nickname":"Bob"}`)
	cb.reset()

	send(d, r, b, `{"type":"room.add_seat"}`)
	send(d, r, b, `{"type":"game.change_settings","quick":false}`)
	send(d, r, b, `{"type":"game.start"}`)

	assert.Len(t, r.seats, 3)
	assert.True(t, r.settings.QuickGame)
	assert.Equal(t, domain.StageWaiting, r.stage)
	assert.Empty(t, cb.frames, "guard rejections produce no reply at all")
}

func TestTakeOperatorRejectedForCurrentOperator(t *testing.T) {
	r, d := newTestRoom(2)
	a, ca := join(r, "a")
	send(d, r, a, `{"type":"user.take_seat","seat":0,"nickname":"Alice"}`)
	ca.reset()

	// the idempotence guard bounces the operator's own claim
	send(d, r, a, `{"type":"player.take_operator"}`)

	assert.Equal(t, domain.UserID("a"), r.operator)
	assert.Empty(t, ca.seatStatuses())
}

func TestTakeOperatorRequiresSeat(t *testing.T) {
	r, d := newTestRoom(2)
	a, ca := join(r, "a")
	ca.reset()

	send(d, r, a, `{"type":"player.take_operator"}`)

	assert.Equal(t, noOperator, r.operator, "an unseated user can never hold the operator role")
	assert.Empty(t, ca.seatStatuses())
}

func TestHallInitAdoptsOrphanedOperator(t *testing.T) {
	r, d := newTestRoom(2)
	a, ca := join(r, "a")
	send(d, r, a, `{"type":"user.take_seat","seat":0,"nickname":"Alice"}`)
	send(d, r, a, `{"type":"room.remove_player","seat":0}`)
	send(d, r, a, `{"type":"user.take_seat","seat":0,"nickname":"Alice"}`)
	// force the orphan state: seated user, no operator
	r.mu.Lock()
	r.operator = noOperator
	r.mu.Unlock()
	ca.reset()

	send(d, r, a, `{"type":"user.register"}`)

	assert.Equal(t, domain.UserID("a"), r.operator)
	assert.NotEmpty(t, ca.seatStatuses())
	checkInvariants(t, r)
}

func TestHallInitSetsNickname(t *testing.T) {
	r, d := newTestRoom(2)
	a, ca := join(r, "a")
	ca.reset()

	send(d, r, a, `{"type":"user.register","nickname":"Alice"}`)

	assert.Equal(t, "Alice", a.Nickname)
	assert.Equal(t, 1, ca.countType(KindUserInit))
	// an unseated requester only refreshes their own view
	assert.Len(t, ca.seatStatuses(), 1)
}
