package models

import (
	"math"

	"github.com/google/uuid"
)

// Database schema overview:
// 1. users - accounts, inactive users are refused by every interview operation
// 2. refresh_tokens - hashed long-lived tokens used to mint access tokens
// 3. interview_sessions - one interview attempt, owns its questions
// 4. questions - ordered by order_index, unique per session
// 5. responses - at most one per question (unique question_id)
// 6. skill_gaps - per-skill analysis results, unique per (session, skill)

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&RefreshToken{},
		&InterviewSession{},
		&Question{},
		&Response{},
		&SkillGap{},
	}
}

// IDs are generated client side so the same models work on stores without
// gen_random_uuid().
func newID() string {
	return uuid.New().String()
}

// RoundScore rounds a score to two decimals, the precision scores are stored at.
func RoundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
