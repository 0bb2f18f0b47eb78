package services

import (
	"context"
	"strings"
	"testing"
)

func TestUserStats(t *testing.T) {
	env := newTestEnv(t)
	p := env.newPrincipal(t, "stats@example.com")

	empty, err := env.users.Stats(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty.TotalInterviews != 0 || empty.LastActivity != nil {
		t.Errorf("expected empty stats, got %+v", empty)
	}

	detail := backendInterview(t, env, p)
	env.answer(t, p, detail.ID, detail.Questions[0].ID, "goroutines are multiplexed")
	env.answer(t, p, detail.ID, detail.Questions[1].ID, "we shipped on time")
	if _, err := env.interviews.Complete(context.Background(), p, detail.ID); err != nil {
		t.Fatalf("failed to complete: %v", err)
	}
	env.createInterview(t, p, "Data Engineer", 1)

	stats, err := env.users.Stats(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalInterviews != 2 || stats.CompletedInterviews != 1 {
		t.Errorf("unexpected interview counts: %+v", stats)
	}
	if stats.TotalQuestionsAnswered != 2 || stats.AverageScore != 75 || stats.BestScore != 90 {
		t.Errorf("unexpected score stats: %+v", stats)
	}
	if stats.LastActivity == nil {
		t.Error("expected last activity")
	}
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	p := env.newPrincipal(t, "profile@example.com")

	name := "  Ada Lovelace "
	avatar := "https://example.com/ada.png"
	user, err := env.users.UpdateProfile(context.Background(), p, UpdateProfileInput{FullName: &name, AvatarURL: &avatar})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.FullName != "Ada Lovelace" || user.AvatarURL != avatar {
		t.Errorf("unexpected profile: %+v", user)
	}

	none := ""
	user, err = env.users.UpdateProfile(context.Background(), p, UpdateProfileInput{AvatarURL: &none})
	if err != nil {
		t.Fatalf("unexpected error clearing avatar: %v", err)
	}
	if user.AvatarURL != "" || user.FullName != "Ada Lovelace" {
		t.Errorf("expected only the avatar to change, got %+v", user)
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name string
		in   UpdateProfileInput
	}{
		{"nothing to update", UpdateProfileInput{}},
		{"name too long", UpdateProfileInput{FullName: str(strings.Repeat("n", maxFullNameLength+1))}},
		{"avatar not a url", UpdateProfileInput{AvatarURL: str("not a url")}},
		{"avatar wrong scheme", UpdateProfileInput{AvatarURL: str("ftp://example.com/a.png")}},
		{"avatar too long", UpdateProfileInput{AvatarURL: str("https://example.com/" + strings.Repeat("a", maxAvatarURLLength))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			p := env.newPrincipal(t, "invalid@example.com")
			_, err := env.users.UpdateProfile(context.Background(), p, tt.in)
			assertKind(t, err, ErrValidation)
		})
	}
}
