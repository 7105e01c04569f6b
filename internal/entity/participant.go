package entity

const DefaultParticipantName = "Player"

// Participant is a seat in a session. ID is the transport identity, Order the stable game seat.
type Participant struct {
	ID        string `json:"-"`
	Order     int    `json:"order"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

func NewParticipant(id string, order int, name string) *Participant {
	if name == "" {
		name = DefaultParticipantName
	}

	return &Participant{
		ID:        id,
		Order:     order,
		Name:      name,
		Connected: true,
	}
}

// Opponent returns the other seat's order.
func Opponent(order int) int {
	if order == 1 {
		return 2
	}
	return 1
}
