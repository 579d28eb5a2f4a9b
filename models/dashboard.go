package models

type DashboardStats struct {
	EventsTotal   int `json:"events_total"`
	EventsOngoing int `json:"events_ongoing"`
	TeamsTotal    int `json:"teams_total"`
	MembersTotal  int `json:"members_total"`
	MatchesTotal  int `json:"matches_total"`
	MatchesLive   int `json:"matches_live"`
}
