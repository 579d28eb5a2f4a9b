package models

import "time"

type Team struct {
	ID        int       `json:"id" db:"id"`
	EventID   int       `json:"event_id" db:"event_id"`
	Name      string    `json:"name" db:"name"`
	Tag       string    `json:"tag" db:"tag"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// AccessToken is the team's bearer credential. It is returned once on
	// creation and never listed afterwards.
	AccessToken string `json:"access_token,omitempty" db:"access_token"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	Members []Member `json:"members,omitempty" db:"-"`
}
