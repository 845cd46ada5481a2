package models

import "time"

// Prediction is keyed by the (match, user) pair so a repeat submission
// overwrites instead of duplicating.
type Prediction struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	UserID    string    `json:"user_id"`
	Team      string    `json:"team"`
	UpdatedAt time.Time `json:"updated_at"`
}

func PredictionID(matchID, userID string) string {
	return matchID + "_" + userID
}
