package domain

type RoomID string

// Stage is the coarse room lifecycle phase. The only transition is
// waiting -> gaming.
type Stage string

const (
	StageWaiting Stage = "waiting"
	StageGaming  Stage = "gaming"
)

// Settings are the room options the operator may change in the waiting hall.
type Settings struct {
	QuickGame bool `json:"quick_game"`
}

func DefaultSettings() Settings { return Settings{QuickGame: true} }
