package domain

import "time"

// LeaderboardEntry is one ranked player.
type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	FullName      string  `json:"full_name"`
	TotalPoints   int     `json:"total_points"`
	TotalQuizzes  int     `json:"total_quizzes"`
	WalletBalance float64 `json:"wallet_balance"`
}

// HistoryEntry summarizes a completed quiz for the player.
type HistoryEntry struct {
	QuizID         string     `json:"quiz_id"`
	Category       string     `json:"category"`
	Difficulty     Difficulty `json:"difficulty"`
	Score          int        `json:"score"`
	CorrectAnswers int        `json:"correct_answers"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// Profile is the player's account summary.
type Profile struct {
	UserID         string  `json:"user_id"`
	Email          string  `json:"email"`
	FullName       string  `json:"full_name"`
	TotalPoints    int     `json:"total_points"`
	WalletBalance  float64 `json:"wallet_balance"`
	TotalQuizzes   int     `json:"total_quizzes"`
	CorrectAnswers int     `json:"correct_answers"`
}

// Lobby is everything shown around a quiz. Any part may be empty when its fetch failed.
type Lobby struct {
	Categories  []string           `json:"categories"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	History     []HistoryEntry     `json:"history"`
	Profile     *Profile           `json:"profile,omitempty"`
}
