package models

import "time"

type Member struct {
	ID        int       `json:"id" db:"id"`
	TeamID    int       `json:"team_id" db:"team_id"`
	Name      string    `json:"name" db:"name"`
	Nickname  string    `json:"nickname" db:"nickname"`
	Captain   bool      `json:"captain" db:"captain"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// AccessToken is the member's bearer credential, returned once on creation.
	AccessToken string `json:"access_token,omitempty" db:"access_token"`
}
