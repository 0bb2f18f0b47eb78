package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InterviewSession is one interview attempt for a role and difficulty
type InterviewSession struct {
	ID           string        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string        `gorm:"type:uuid;not null;index" json:"user_id"`
	JobRole      string        `gorm:"size:100;not null" json:"job_role"`
	Difficulty   Difficulty    `gorm:"size:20;not null;check:difficulty IN ('beginner', 'intermediate', 'advanced')" json:"difficulty"`
	QuestionMix  QuestionMix   `gorm:"column:question_type;size:20;not null;default:'mixed'" json:"question_type"`
	Status       SessionStatus `gorm:"size:20;not null;default:'active';check:status IN ('pending', 'active', 'completed', 'abandoned')" json:"status"`
	OverallScore *float64      `gorm:"type:decimal(5,2)" json:"overall_score"` // unset until a response is scored
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`

	// Relationships
	Questions []Question `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (s *InterviewSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = newID()
	}
	if s.Status == "" {
		s.Status = StatusActive
	}
	if s.QuestionMix == "" {
		s.QuestionMix = MixMixed
	}
	return nil
}

// Question is immutable once created with its session.
type Question struct {
	ID                string                      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID         string                      `gorm:"type:uuid;not null;uniqueIndex:idx_questions_session_order" json:"session_id"`
	Text              string                      `gorm:"type:text;not null" json:"question_text"`
	Type              QuestionType                `gorm:"column:question_type;size:20;not null;check:question_type IN ('technical', 'behavioral', 'coding', 'system_design')" json:"question_type"`
	SkillCategory     string                      `gorm:"size:100" json:"skill_category"`
	ExpectedKeyPoints datatypes.JSONSlice[string] `json:"expected_key_points"`
	OrderIndex        int                         `gorm:"not null;uniqueIndex:idx_questions_session_order" json:"order_index"` // 1-based
	Difficulty        string                      `gorm:"size:20" json:"difficulty"`
	CreatedAt         time.Time                   `json:"created_at"`

	// Relationships
	Response *Response `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"response,omitempty"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = newID()
	}
	q.ExpectedKeyPoints = nonNil(q.ExpectedKeyPoints)
	return nil
}

func (q *Question) AfterFind(tx *gorm.DB) error {
	q.ExpectedKeyPoints = nonNil(q.ExpectedKeyPoints)
	return nil
}

// Response is the single scored answer to a question. The unique index on
// question_id is what rejects a second submission.
type Response struct {
	ID           string                      `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID   string                      `gorm:"type:uuid;not null;uniqueIndex" json:"question_id"`
	SessionID    string                      `gorm:"type:uuid;not null;index" json:"session_id"`
	AnswerText   string                      `gorm:"type:text;not null" json:"answer_text"`
	Score        *float64                    `gorm:"type:decimal(5,2)" json:"score"`
	Feedback     string                      `gorm:"type:text" json:"feedback"`
	Strengths    datatypes.JSONSlice[string] `json:"strengths"`
	Improvements datatypes.JSONSlice[string] `json:"improvements"`
	Keywords     datatypes.JSONSlice[string] `json:"keywords_mentioned"`
	TimeTaken    *int                        `json:"time_taken,omitempty"` // seconds
	AnsweredAt   time.Time                   `gorm:"not null" json:"answered_at"`
}

func (r *Response) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = newID()
	}
	if r.AnsweredAt.IsZero() {
		r.AnsweredAt = time.Now()
	}
	r.Strengths = nonNil(r.Strengths)
	r.Improvements = nonNil(r.Improvements)
	r.Keywords = nonNil(r.Keywords)
	return nil
}

func (r *Response) AfterFind(tx *gorm.DB) error {
	r.Strengths = nonNil(r.Strengths)
	r.Improvements = nonNil(r.Improvements)
	r.Keywords = nonNil(r.Keywords)
	return nil
}

// SkillGap is one skill's result from an analysis run. A session's rows are
// always written and replaced as a whole set.
type SkillGap struct {
	ID               string           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           string           `gorm:"type:uuid;not null;index" json:"user_id"`
	SessionID        string           `gorm:"type:uuid;not null;uniqueIndex:idx_skill_gaps_session_skill" json:"session_id"`
	SkillName        string           `gorm:"size:100;not null;uniqueIndex:idx_skill_gaps_session_skill" json:"skill_name"`
	ProficiencyLevel ProficiencyLevel `gorm:"size:20;not null;check:proficiency_level IN ('weak', 'moderate', 'strong')" json:"proficiency_level"`
	GapScore         float64          `gorm:"type:decimal(5,2);not null" json:"gap_score"` // lower = weaker
	Recommendation   string           `gorm:"type:text" json:"recommendation"`
	IdentifiedAt     time.Time        `gorm:"not null" json:"identified_at"`
}

func (g *SkillGap) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = newID()
	}
	if g.IdentifiedAt.IsZero() {
		g.IdentifiedAt = time.Now()
	}
	return nil
}

func nonNil(s datatypes.JSONSlice[string]) datatypes.JSONSlice[string] {
	if s == nil {
		return datatypes.JSONSlice[string]{}
	}
	return s
}
