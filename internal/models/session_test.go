package models

import (
	"errors"
	"math"
	"testing"
)

func TestAddFeedbackClamps(t *testing.T) {
	s := &PracticeSession{}

	high := s.AddFeedback(FeedbackEntry{QualityScore: 12.5, ConfidenceLevel: 15, SkillFocus: "small talk"})
	low := s.AddFeedback(FeedbackEntry{QualityScore: -1, ConfidenceLevel: -3, SkillFocus: "small talk"})

	if high.ConfidenceLevel != 10 || high.QualityScore != 10 {
		t.Errorf("upper clamp failed: %+v", high)
	}
	if low.ConfidenceLevel != 1 || low.QualityScore != 1 {
		t.Errorf("lower clamp failed: %+v", low)
	}
	if s.ConfidenceScores[0] != 10 || s.ConfidenceScores[1] != 1 {
		t.Errorf("stored confidence not clamped: %v", s.ConfidenceScores)
	}
	if s.ConversationTurns != 2 {
		t.Errorf("turns = %d, want 2", s.ConversationTurns)
	}
	if len(s.SocialSkillsPracticed) != 1 {
		t.Errorf("skill should be deduplicated: %v", s.SocialSkillsPracticed)
	}
	if ClampQuality(math.NaN()) != 1 {
		t.Error("NaN quality should clamp to the minimum")
	}
}

func TestRatingFor(t *testing.T) {
	tests := []struct {
		quality float64
		want    string
	}{
		{9, RatingGood},
		{7, RatingGood},
		{6.9, RatingImprove},
		{5, RatingImprove},
		{4.9, RatingNeedsWork},
	}
	for _, tt := range tests {
		if got := RatingFor(tt.quality); got != tt.want {
			t.Errorf("RatingFor(%v) = %q, want %q", tt.quality, got, tt.want)
		}
	}
}

func TestPerformanceLevel(t *testing.T) {
	tests := []struct {
		avg  float64
		want string
	}{
		{8, PerformanceExcellent},
		{7.99, PerformanceGood},
		{6, PerformanceGood},
		{4, PerformanceDeveloping},
		{3.9, PerformanceKeepPracticing},
		{0, PerformanceKeepPracticing},
	}
	for _, tt := range tests {
		if got := PerformanceLevel(tt.avg); got != tt.want {
			t.Errorf("PerformanceLevel(%v) = %q, want %q", tt.avg, got, tt.want)
		}
	}
}

func TestTopicsDeduplicated(t *testing.T) {
	s := &PracticeSession{}

	if !s.AddTopic("books") {
		t.Error("first add should succeed")
	}
	if s.AddTopic("books") {
		t.Error("duplicate add should be ignored")
	}
	s.AddTopic("coffee")
	if len(s.TopicsDiscussed) != 2 || s.TopicsDiscussed[0] != "books" {
		t.Errorf("unexpected topics: %v", s.TopicsDiscussed)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := &PracticeSession{TopicsDiscussed: []string{"a"}}
	c := s.Clone()
	c.TopicsDiscussed[0] = "b"
	if s.TopicsDiscussed[0] != "a" {
		t.Error("clone shares topics with the original")
	}
}

func TestParseScenario(t *testing.T) {
	for _, in := range []string{"Coffee Shop", "coffee shop", "coffee-shop", " COFFEE-SHOP "} {
		got, err := ParseScenario(in)
		if err != nil || got != ScenarioCoffeeShop {
			t.Errorf("ParseScenario(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseScenario("moon base"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
	if _, err := ParseDifficulty("expert"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestInterviewContextOverrides(t *testing.T) {
	ctx := InterviewContext{CtxPersonaName: "Jessica Chen", CtxPersonaTitle: "  "}
	if ctx.HasPersonaOverrides() {
		t.Error("blank title should not count as an override")
	}
	ctx[CtxPersonaStyle] = "casual"
	if !ctx.HasPersonaOverrides() {
		t.Error("style should count as an override")
	}
}
