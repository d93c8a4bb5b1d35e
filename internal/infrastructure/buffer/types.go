package buffer

import (
	"time"

	"github.com/google/uuid"
)

const (
	PriorityPurchase = 1
	PriorityDefault  = 3
)

// Item is an audit line waiting to be delivered to a log channel.
type Item struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	Kind      string    `json:"kind"`
	ActorID   string    `json:"actor_id"`
	Content   string    `json:"content"`
	Priority  int       `json:"priority"`
	Retries   int       `json:"retries"`
	Timestamp time.Time `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > 5 {
		i.Priority = PriorityDefault
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
