package memories

import "time"

type Message struct {
	TurnID    string
	Role      string
	Content   string
	Timestamp time.Time
}
