package entity

// Snapshot is the immutable per-mutation view consumed downstream. Field names and the
// line numbering (1-2 diagonals, 3-5 rows, 6-8 columns) are part of the client contract.
type Snapshot struct {
	Board              [BoardSize]int `json:"board"`
	Turn               int            `json:"turn"`
	WaitingForOpponent bool           `json:"waitingForOpponent"`
	Started            bool           `json:"started"`
	Finished           bool           `json:"finished"`
	OpponentDeserted   bool           `json:"opponentDeserted"`
	Winner             int            `json:"winner"`
	WinType            int            `json:"winType"`
}

type RoomView struct {
	RoomID  string        `json:"roomId"`
	State   Snapshot      `json:"state"`
	Players []Participant `json:"players"`
}
