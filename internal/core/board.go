package core

import "github.com/dokojong/server/internal/domain"

const (
	doorCount      = 5
	tilesPerPlayer = 5
	startPenalty   = 3
)

// boardState is the per-game playing state, created when the stage flips
// to gaming. Slices are indexed by seat.
type boardState struct {
	leader int
	doors  []bool
	scores [][2]int // score, penalty
	tiles  [][]*bool
	dogs   []int
	active []bool
	prompt Kind // the board prompt re-sent to late joiners
}

// startGame flips the room to the gaming stage once every seat is
// occupied. The transition is one-directional.
func (r *Room) startGame(_ *User, _ Frame, eff *Effects) {
	for _, id := range r.seats {
		if id == "" {
			return
		}
	}
	n := len(r.seats)
	b := &boardState{
		doors:  make([]bool, doorCount),
		scores: make([][2]int, n),
		tiles:  make([][]*bool, n),
		dogs:   make([]int, n),
		active: make([]bool, n),
		prompt: KindTilesSetup,
	}
	for i := 0; i < n; i++ {
		b.scores[i] = [2]int{0, startPenalty}
		b.tiles[i] = make([]*bool, tilesPerPlayer)
		b.dogs[i] = -1
		b.active[i] = true
	}
	r.board = b
	r.stage = domain.StageGaming
	eff.Broadcast(KindStage)
}

// boardInit resends the board view to a client that just rendered the
// gaming screen (fresh join or reconnect).
func (r *Room) boardInit(_ *User, _ Frame, eff *Effects) {
	eff.Reply(KindSeatStatus)
	eff.Reply(KindScores)
	eff.Reply(KindDogPlace)
	eff.Reply(r.board.prompt)
}

// placeDog records the requester's dog position and retires their turn.
// When the last active player places, the prompt advances to the leader's
// act phase.
func (r *Room) placeDog(u *User, f Frame, eff *Effects) {
	b := r.board
	b.dogs[u.Seat] = f.Int("position")
	b.tiles[u.Seat] = make([]*bool, tilesPerPlayer)
	b.active[u.Seat] = false
	eff.Reply(KindDogPlace)

	idle := true
	for _, a := range b.active {
		if a {
			idle = false
			break
		}
	}
	if idle {
		b.prompt = KindPlayerAct
		b.active[b.leader] = true
	}
	eff.Broadcast(KindScores)
	eff.Broadcast(b.prompt)
}
