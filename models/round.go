package models

import "time"

// MatchRound is a single game inside a best-of-N match.
type MatchRound struct {
	ID         int       `json:"id" db:"id"`
	MatchID    int       `json:"match_id" db:"match_id"`
	Number     int       `json:"number" db:"number"`
	MapName    *string   `json:"map_name,omitempty" db:"map_name"`
	ScoreTeam1 int       `json:"score_team1" db:"score_team1"`
	ScoreTeam2 int       `json:"score_team2" db:"score_team2"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
