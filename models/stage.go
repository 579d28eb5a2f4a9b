package models

import "time"

type Stage struct {
	ID        int       `json:"id" db:"id"`
	EventID   int       `json:"event_id" db:"event_id"`
	Name      string    `json:"name" db:"name"`
	Sequence  int       `json:"sequence" db:"sequence"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Matches []Match `json:"matches,omitempty" db:"-"`
}
