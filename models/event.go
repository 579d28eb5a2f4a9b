package models

import "time"

// EventStatus mirrors the ENUM in the events table.
type EventStatus string

const (
	EventStatusDraft   EventStatus = "draft"
	EventStatusOpen    EventStatus = "open"
	EventStatusClosed  EventStatus = "closed"
	EventStatusOngoing EventStatus = "ongoing"
)

// Event is the root tenant scope: teams, groups, stages and matches all
// reference an event, and real-time broadcasts are partitioned per event.
type Event struct {
	ID                   int         `json:"id" db:"id"`
	Title                string      `json:"title" db:"title"`
	Description          *string     `json:"description,omitempty" db:"description"`
	Status               EventStatus `json:"status" db:"status"`
	MaxTeams             int         `json:"max_teams" db:"max_teams"`
	RegistrationDeadline time.Time   `json:"registration_deadline" db:"registration_deadline"`
	CreatedBy            int         `json:"created_by" db:"created_by"`
	CreatedAt            time.Time   `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	Teams  []Team  `json:"teams,omitempty" db:"-"`
	Stages []Stage `json:"stages,omitempty" db:"-"`
}
