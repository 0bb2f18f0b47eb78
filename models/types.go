package models

import (
	"fmt"
	"strings"
)

// Difficulty is the level an interview session is pitched at.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(normalize(s))
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

func (d *Difficulty) UnmarshalText(text []byte) error {
	v, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// SessionStatus is the lifecycle state of an interview session.
// Sessions are created active; pending and abandoned exist in the schema
// but no operation moves a session into them yet.
type SessionStatus string

const (
	StatusPending   SessionStatus = "pending"
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
	StatusAbandoned SessionStatus = "abandoned"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCompleted, StatusAbandoned:
		return true
	}
	return false
}

func ParseSessionStatus(s string) (SessionStatus, error) {
	v := SessionStatus(normalize(s))
	if !v.Valid() {
		return "", fmt.Errorf("unknown session status %q", s)
	}
	return v, nil
}

func (s *SessionStatus) UnmarshalText(text []byte) error {
	v, err := ParseSessionStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// QuestionType is the category a question is scored under.
type QuestionType string

const (
	QuestionTechnical    QuestionType = "technical"
	QuestionBehavioral   QuestionType = "behavioral"
	QuestionCoding       QuestionType = "coding"
	QuestionSystemDesign QuestionType = "system_design"
)

func (q QuestionType) Valid() bool {
	switch q {
	case QuestionTechnical, QuestionBehavioral, QuestionCoding, QuestionSystemDesign:
		return true
	}
	return false
}

func ParseQuestionType(s string) (QuestionType, error) {
	v := QuestionType(strings.ReplaceAll(normalize(s), " ", "_"))
	if !v.Valid() {
		return "", fmt.Errorf("unknown question type %q", s)
	}
	return v, nil
}

func (q *QuestionType) UnmarshalText(text []byte) error {
	v, err := ParseQuestionType(string(text))
	if err != nil {
		return err
	}
	*q = v
	return nil
}

// QuestionMix selects which question types a new session asks for.
// It accepts every QuestionType plus "mixed".
type QuestionMix string

const MixMixed QuestionMix = "mixed"

func (m QuestionMix) Valid() bool {
	return m == MixMixed || QuestionType(m).Valid()
}

// Fallback is the question type used when generated output carries none.
func (m QuestionMix) Fallback() QuestionType {
	if m == MixMixed {
		return QuestionTechnical
	}
	return QuestionType(m)
}

func ParseQuestionMix(s string) (QuestionMix, error) {
	v := QuestionMix(strings.ReplaceAll(normalize(s), " ", "_"))
	if !v.Valid() {
		return "", fmt.Errorf("unknown question type %q", s)
	}
	return v, nil
}

func (m *QuestionMix) UnmarshalText(text []byte) error {
	v, err := ParseQuestionMix(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ProficiencyLevel classifies a skill's gap score.
type ProficiencyLevel string

const (
	ProficiencyWeak     ProficiencyLevel = "weak"
	ProficiencyModerate ProficiencyLevel = "moderate"
	ProficiencyStrong   ProficiencyLevel = "strong"
)

func (p ProficiencyLevel) Valid() bool {
	switch p {
	case ProficiencyWeak, ProficiencyModerate, ProficiencyStrong:
		return true
	}
	return false
}

func (p *ProficiencyLevel) UnmarshalText(text []byte) error {
	v := ProficiencyLevel(normalize(string(text)))
	if !v.Valid() {
		return fmt.Errorf("unknown proficiency level %q", text)
	}
	*p = v
	return nil
}

// ClassifyProficiency maps a skill score onto weak (<50), moderate (<75) or strong.
func ClassifyProficiency(score float64) ProficiencyLevel {
	switch {
	case score >= 75:
		return ProficiencyStrong
	case score >= 50:
		return ProficiencyModerate
	default:
		return ProficiencyWeak
	}
}

// PerformanceLevel is the qualitative rating of a session's overall score.
type PerformanceLevel string

const (
	PerformanceExcellent PerformanceLevel = "excellent"
	PerformanceGood      PerformanceLevel = "good"
	PerformanceAverage   PerformanceLevel = "average"
	PerformancePoor      PerformanceLevel = "poor"
)

func ClassifyPerformance(score float64) PerformanceLevel {
	switch {
	case score >= 85:
		return PerformanceExcellent
	case score >= 70:
		return PerformanceGood
	case score >= 50:
		return PerformanceAverage
	default:
		return PerformancePoor
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
