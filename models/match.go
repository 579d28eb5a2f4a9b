package models

import "time"

// MatchStatus mirrors the ENUM in the matches table.
type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusFinished  MatchStatus = "finished"
	MatchStatusCanceled  MatchStatus = "canceled"
)

type Match struct {
	ID          int         `json:"id" db:"id"`
	EventID     int         `json:"event_id" db:"event_id"`
	StageID     int         `json:"stage_id" db:"stage_id"`
	GroupID     *int        `json:"group_id,omitempty" db:"group_id"`
	Team1ID     *int        `json:"team1_id,omitempty" db:"team1_id"`
	Team2ID     *int        `json:"team2_id,omitempty" db:"team2_id"`
	Status      MatchStatus `json:"status" db:"status"`
	ScoreTeam1  int         `json:"score_team1" db:"score_team1"`
	ScoreTeam2  int         `json:"score_team2" db:"score_team2"`
	ScheduledAt time.Time   `json:"scheduled_at" db:"scheduled_at"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`

	Rounds []MatchRound `json:"rounds,omitempty" db:"-"`
}
