package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dokojong/server/internal/domain"
)

const noOperator = domain.UserID("")

// Room is one session: seats, users, operator, stage, settings.
// Every seat/operator mutation runs under mu; snapshot payloads are
// assembled only after the mutation completes.
type Room struct {
	id domain.RoomID

	mu          sync.Mutex
	stage       domain.Stage
	seats       []domain.UserID // "" marks an empty slot
	users       map[domain.UserID]*User
	operator    domain.UserID
	settings    domain.Settings
	orderIssuer int
	board       *boardState // nil until the game starts
}

func NewRoom(id domain.RoomID, seatCount int) *Room {
	return &Room{
		id:       id,
		stage:    domain.StageWaiting,
		seats:    make([]domain.UserID, seatCount),
		users:    make(map[domain.UserID]*User),
		operator: noOperator,
		settings: domain.DefaultSettings(),
	}
}

func (r *Room) ID() domain.RoomID { return r.id }

// Register binds conn to the user known as id, creating the user on first
// contact. A prior live connection is force-closed before rebinding, so the
// last writer wins without ambiguity. The new connection gets its initial
// snapshots; if the user already held a seat, everyone gets the roster with
// the flipped online flag.
func (r *Room) Register(conn Conn, id domain.UserID, nickname string) *User {
	r.mu.Lock()
	u, known := r.users[id]
	if known {
		if prev := u.conn; prev != nil && prev != conn && prev.IsLive() {
			prev.Close(CloseDuplicatedLogin)
			log.Warn().Str("module", "core.room").Str("room", string(r.id)).
				Str("user", string(id)).Msg("duplicated login, previous connection closed")
		}
		u.conn = conn
	} else {
		u = &User{
			ID:       id,
			Nickname: domain.CleanNickname(nickname, len(r.users)),
			Seat:     domain.NoSeat,
		}
		r.users[id] = u
	}
	seated := u.Seated()
	gaming := r.stage == domain.StageGaming
	var prompt Kind
	if gaming {
		prompt = r.board.prompt
	}
	r.mu.Unlock()

	r.sendTo(u, KindUserInit)
	r.sendTo(u, KindStage)
	r.sendTo(u, KindSeatStatus)
	r.sendTo(u, KindSettings)
	if gaming {
		r.sendTo(u, KindScores)
		r.sendTo(u, prompt)
	} else {
		r.sendTo(u, KindGameStatus)
	}
	if seated {
		r.Broadcast(KindSeatStatus)
	}
	return u
}

// Unregister handles transport loss for conn. Seated users stay behind as
// ghosts; unseated users are forgotten entirely.
func (r *Room) Unregister(id domain.UserID, conn Conn) {
	r.mu.Lock()
	u, ok := r.users[id]
	if !ok || u.conn != conn {
		// a newer connection already took over
		r.mu.Unlock()
		return
	}
	seated := u.Seated()
	if seated {
		u.conn = nil
	} else {
		delete(r.users, id)
	}
	r.mu.Unlock()

	log.Info().Str("module", "core.room").Str("room", string(r.id)).
		Str("user", string(id)).Bool("ghost", seated).Msg("unregistered")
	if seated {
		r.Broadcast(KindSeatStatus)
	}
}

// hallInit refreshes the waiting-hall view for the requester. A seated
// requester reclaims an orphaned operator slot: everyone may have gone
// offline while no operator was left behind.
func (r *Room) hallInit(u *User, f Frame, eff *Effects) {
	if nick := f.Str("nickname"); nick != "" {
		u.Nickname = domain.CleanNickname(nick, 0)
	}
	eff.Reply(KindUserInit)
	if u.Seated() {
		if r.operator == noOperator {
			r.operator = u.ID
		}
		eff.Broadcast(KindSeatStatus)
	} else {
		eff.Reply(KindSeatStatus)
	}
}

// takeSeat moves u onto an empty seat. Re-taking the current seat is a
// no-op. The join order is issued once, on the first seat ever taken.
func (r *Room) takeSeat(u *User, f Frame, eff *Effects) {
	seat := f.Int("seat")
	if seat < 0 || seat >= len(r.seats) || r.seats[seat] != "" || seat == u.Seat {
		return
	}
	if u.Seated() {
		r.seats[u.Seat] = ""
	} else {
		r.orderIssuer++
		u.Order = r.orderIssuer
	}
	u.Seat = seat
	r.seats[seat] = u.ID
	if nick := f.Str("nickname"); nick != "" {
		u.Nickname = domain.CleanNickname(nick, 0)
	}
	if r.operator == noOperator {
		r.operator = u.ID
	}
	eff.Broadcast(KindSeatStatus)
}

// removeSeat drops an empty slot and shifts everyone seated behind it.
func (r *Room) removeSeat(u *User, f Frame, eff *Effects) {
	seat := f.Int("seat")
	if seat < 0 || seat >= len(r.seats) || r.seats[seat] != "" {
		return
	}
	r.seats = append(r.seats[:seat], r.seats[seat+1:]...)
	for i, id := range r.seats {
		if id != "" {
			r.users[id].Seat = i
		}
	}
	eff.Broadcast(KindSeatStatus)
}

func (r *Room) addSeat(_ *User, _ Frame, eff *Effects) {
	r.seats = append(r.seats, "")
	eff.Broadcast(KindSeatStatus)
}

// removePlayer vacates a seat. Permitted for the seat's occupant (leaving)
// and for the operator (eviction); one code path covers both. Succession
// runs exactly when the removed player was the operator.
func (r *Room) removePlayer(u *User, f Frame, eff *Effects) {
	seat := f.Int("seat")
	if seat < 0 || seat >= len(r.seats) || r.seats[seat] == "" {
		return
	}
	target := r.users[r.seats[seat]]
	if target != u && r.operator != u.ID {
		return
	}
	r.seats[seat] = ""
	target.Seat = domain.NoSeat
	target.Order = 0
	if r.operator == target.ID {
		r.operator = r.successor()
	}
	if !target.Online() {
		// nothing keeps a ghost alive once its seat is gone
		delete(r.users, target.ID)
	}
	eff.Broadcast(KindSeatStatus)
}

// successor picks the seated online user with the smallest join order.
// Orders are strictly increasing, so no tie is possible.
func (r *Room) successor() domain.UserID {
	var candidate *User
	for _, id := range r.seats {
		if id == "" {
			continue
		}
		u := r.users[id]
		if !u.Online() {
			continue
		}
		if candidate == nil || u.Order < candidate.Order {
			candidate = u
		}
	}
	if candidate == nil {
		return noOperator
	}
	return candidate.ID
}

// takeOperator is the failover claim: it succeeds only while the current
// operator is absent or offline. The room lock serializes the
// check-and-set, so two simultaneous claims cannot both win.
func (r *Room) takeOperator(u *User, _ Frame, eff *Effects) {
	if !u.Seated() {
		return
	}
	if cur, ok := r.users[r.operator]; ok && cur.Online() {
		return
	}
	r.operator = u.ID
	eff.Broadcast(KindSeatStatus)
}

func (r *Room) changeSettings(_ *User, f Frame, eff *Effects) {
	quick := f.Bool("quick")
	if quick == r.settings.QuickGame {
		return
	}
	r.settings.QuickGame = quick
	eff.Broadcast(KindSettings)
}
