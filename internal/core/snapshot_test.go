package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSnapshotFieldSets pins the wire shape of every snapshot: exactly the
// expected fields, nothing extra. Renaming a json tag breaks this test
// before it breaks the front end.
func TestSnapshotFieldSets(t *testing.T) {
	r, d := newTestRoom(2)
	a, _ := join(r, "a")
	b, _ := join(r, "b")
	send(d, r, a, `{"type":"user.take_seat","seat":0,"nickname":"Alice"}`)
	send(d, r, b, `{"type":"user.take_seat","seat":1,"nickname":"Bob"}`)
	send(d, r, a, `{"type":"game.start"}`)

	cases := map[Kind][]string{
		KindStage:      {"type", "stage"},
		KindSeatStatus: {"type", "status"},
		KindSettings:   {"type", "quick_game"},
		KindGameStatus: {"type", "start"},
		KindScores:     {"type", "scores"},
		KindUserInit:   {"type", "nickname"},
		KindTilesSetup: {"type", "active"},
		KindDogPlace:   {"type", "position"},
		KindPlayerAct:  {"type", "seat"},
	}
	for kind, want := range cases {
		r.mu.Lock()
		payload := r.buildFor(kind, a)
		r.mu.Unlock()

		raw, err := json.Marshal(payload)
		require.NoError(t, err, "kind %s", kind)
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m), "kind %s", kind)

		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		assert.ElementsMatch(t, want, keys, "kind %s carries an unexpected field set", kind)
		assert.Equal(t, string(kind), m["type"])
	}
}

func TestSeatStatusRoundTrip(t *testing.T) {
	r, d := newTestRoom(2)
	a, _ := join(r, "a")
	send(d, r, a, `{"type":"user.take_seat","seat":0,"nickname":"Alice"}`)

	r.mu.Lock()
	payload := r.buildFor(KindSeatStatus, a)
	r.mu.Unlock()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded SeatStatusPayload
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, payload, decoded, "the seat roster survives a wire round trip")

	// an empty seat serializes as a JSON null, not an empty object
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	status := m["status"].([]any)
	require.Len(t, status, 2)
	assert.Nil(t, status[1])
}

func TestScoresReflectStartValues(t *testing.T) {
	r, d := newTestRoom(2)
	a, _ := join(r, "a")
	b, _ := join(r, "b")
	send(d, r, a, `{"type":"user.take_seat","seat":0,"nickname":"Alice"}`)
	send(d, r, b, `{"type":"user.take_seat","seat":1,"nickname":"Bob"}`)
	send(d, r, a, `{"type":"game.start"}`)

	r.mu.Lock()
	payload := r.buildFor(KindScores, a).(ScoresPayload)
	r.mu.Unlock()

	assert.Equal(t, []ScoreEntry{{Score: 0, Penalty: 3}, {Score: 0, Penalty: 3}}, payload.Scores)
}

func TestDogPlaceForUnseatedViewer(t *testing.T) {
	r, d := newTestRoom(2)
	a, _ := join(r, "a")
	b, _ := join(r, "b")
	send(d, r, a, `{"type":"user.take_seat","seat":0,"nickname":"Alice"}`)
	send(d, r, b, `{"type":"user.take_seat","seat":1,"nickname":"Bob"}`)
	send(d, r, a, `{"type":"game.start"}`)
	w, _ := join(r, "watcher")

	r.mu.Lock()
	payload := r.buildFor(KindDogPlace, w).(DogPlacePayload)
	r.mu.Unlock()

	assert.Equal(t, -1, payload.Position, "spectators see no dog position")
}

func TestUnknownSnapshotKindPanics(t *testing.T) {
	r, _ := newTestRoom(2)
	u, _ := join(r, "a")

	assert.Panics(t, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.buildFor(Kind("room.bogus"), u)
	}, "an undefined snapshot kind is a programming error, not user input")
}
