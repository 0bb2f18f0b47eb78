package models

import (
	"testing"
)

func TestClassifyProficiency(t *testing.T) {
	tests := []struct {
		score float64
		want  ProficiencyLevel
	}{
		{100, ProficiencyStrong},
		{75, ProficiencyStrong},
		{74.99, ProficiencyModerate},
		{60, ProficiencyModerate},
		{50, ProficiencyModerate},
		{49.99, ProficiencyWeak},
		{0, ProficiencyWeak},
	}

	for _, tt := range tests {
		if got := ClassifyProficiency(tt.score); got != tt.want {
			t.Errorf("ClassifyProficiency(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestParseEnums(t *testing.T) {
	if d, err := ParseDifficulty(" Advanced "); err != nil || d != DifficultyAdvanced {
		t.Errorf("ParseDifficulty() = %q, %v", d, err)
	}
	if s, err := ParseSessionStatus("COMPLETED"); err != nil || s != StatusCompleted {
		t.Errorf("ParseSessionStatus() = %q, %v", s, err)
	}
	if q, err := ParseQuestionType("system design"); err != nil || q != QuestionSystemDesign {
		t.Errorf("ParseQuestionType() = %q, %v", q, err)
	}
	if m, err := ParseQuestionMix("Mixed"); err != nil || m != MixMixed {
		t.Errorf("ParseQuestionMix() = %q, %v", m, err)
	}

	tests := []struct {
		name  string
		parse func(string) error
	}{
		{"difficulty", func(s string) error { _, err := ParseDifficulty(s); return err }},
		{"status", func(s string) error { _, err := ParseSessionStatus(s); return err }},
		{"question type", func(s string) error { _, err := ParseQuestionType(s); return err }},
		{"question mix", func(s string) error { _, err := ParseQuestionMix(s); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, in := range []string{"", "expert", "mixed-up"} {
				if err := tt.parse(in); err == nil {
					t.Errorf("expected %q to be rejected", in)
				}
			}
		})
	}
}

func TestUnmarshalTextRejectsUnknown(t *testing.T) {
	var d Difficulty
	if err := d.UnmarshalText([]byte("expert")); err == nil {
		t.Error("expected unknown difficulty to fail")
	}
	if d != "" {
		t.Errorf("expected difficulty to stay unset, got %q", d)
	}

	var s SessionStatus
	if err := s.UnmarshalText([]byte("paused")); err == nil {
		t.Error("expected unknown status to fail")
	}
	var q QuestionType
	if err := q.UnmarshalText([]byte("trivia")); err == nil {
		t.Error("expected unknown question type to fail")
	}
	var m QuestionMix
	if err := m.UnmarshalText([]byte("random")); err == nil {
		t.Error("expected unknown question mix to fail")
	}
	var p ProficiencyLevel
	if err := p.UnmarshalText([]byte("expert")); err == nil {
		t.Error("expected unknown proficiency to fail")
	}

	if err := p.UnmarshalText([]byte(" Strong ")); err != nil || p != ProficiencyStrong {
		t.Errorf("UnmarshalText(strong) = %q, %v", p, err)
	}
	if err := m.UnmarshalText([]byte("coding")); err != nil || m != QuestionMix(QuestionCoding) {
		t.Errorf("UnmarshalText(coding) = %q, %v", m, err)
	}
}
