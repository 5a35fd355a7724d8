package core

import "github.com/dokojong/server/internal/domain"

// User is a room-owned participant record. The room is the sole owner;
// seats reference users by ID, never by pointer.
type User struct {
	ID       domain.UserID
	Nickname string
	Seat     int // domain.NoSeat while unseated
	Order    int // join order, assigned once at first seat acquisition
	conn     Conn
}

func (u *User) Seated() bool { return u.Seat != domain.NoSeat }

// Online reports whether the user's transport can still deliver frames.
// A seated user with a dead transport is a ghost: the seat is retained.
func (u *User) Online() bool { return u.conn != nil && u.conn.IsLive() }
