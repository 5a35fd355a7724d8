// Package domain contains entities without logic, just meta-data.
package domain

type UserID string

const MaxNicknameLen = 24

// NoSeat marks a user that holds no seat.
const NoSeat = -1

var defaultNicknames = [...]string{"Wanderer", "Drifter", "Stray", "Nomad", "Vagrant"}

// CleanNickname truncates raw to MaxNicknameLen. An empty raw gets a name
// from the fixed fallback set, rotated by n so parallel guests differ.
func CleanNickname(raw string, n int) string {
	if raw == "" {
		return defaultNicknames[n%len(defaultNicknames)]
	}
	if len(raw) > MaxNicknameLen {
		return raw[:MaxNicknameLen]
	}
	return raw
}
