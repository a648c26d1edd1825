package models

import (
	"math"
	"time"
)

// Score bounds
const (
	MinScore = 1
	MaxScore = 10
)

// Performance levels reported in session summaries
const (
	PerformanceExcellent      = "Excellent"
	PerformanceGood           = "Good"
	PerformanceDeveloping     = "Developing"
	PerformanceKeepPracticing = "Keep Practicing"
)

// Feedback ratings shown by the UI
const (
	RatingGood      = "good"
	RatingImprove   = "improve"
	RatingNeedsWork = "needs_work"
)

// FeedbackEntry is one recorded assessment of a user message
type FeedbackEntry struct {
	UserMessage     string    `json:"user_message"`
	QualityScore    float64   `json:"quality_score"`
	ConfidenceLevel int       `json:"confidence_level"`
	Feedback        string    `json:"feedback"`
	Tips            string    `json:"tips"`
	SkillFocus      string    `json:"skill_focus"`
	Rating          string    `json:"rating"`
	Timestamp       time.Time `json:"timestamp"`
}

// PracticeSession is the mutable record of one room's conversation progress
type PracticeSession struct {
	SessionID             string          `json:"session_id"`
	RoomName              string          `json:"room_name"`
	UserID                string          `json:"user_id"`
	Scenario              ScenarioType    `json:"scenario"`
	Difficulty            DifficultyLevel `json:"difficulty"`
	SessionStart          time.Time       `json:"session_start"`
	ConversationTurns     int             `json:"conversation_turns"`
	FeedbackGiven         []FeedbackEntry `json:"feedback_given"`
	ConfidenceScores      []float64       `json:"confidence_scores"`
	TopicsDiscussed       []string        `json:"topics_discussed"`
	SocialSkillsPracticed []string        `json:"social_skills_practiced"`
}

// ClampConfidence bounds a confidence level to [1,10]
func ClampConfidence(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// ClampQuality bounds a quality score to [1.0,10.0]; NaN maps to the minimum
func ClampQuality(v float64) float64 {
	if math.IsNaN(v) {
		return MinScore
	}
	return math.Max(MinScore, math.Min(MaxScore, v))
}

// RatingFor maps a clamped quality score to a UI rating
func RatingFor(quality float64) string {
	switch {
	case quality >= 7:
		return RatingGood
	case quality >= 5:
		return RatingImprove
	default:
		return RatingNeedsWork
	}
}

// PerformanceLevel maps an average confidence to its qualitative tier
func PerformanceLevel(avg float64) string {
	switch {
	case avg >= 8:
		return PerformanceExcellent
	case avg >= 6:
		return PerformanceGood
	case avg >= 4:
		return PerformanceDeveloping
	default:
		return PerformanceKeepPracticing
	}
}

// AddFeedback clamps and appends an entry, records its confidence, counts a
// turn and notes the skill focus. The stored entry is returned.
func (s *PracticeSession) AddFeedback(entry FeedbackEntry) FeedbackEntry {
	entry.QualityScore = ClampQuality(entry.QualityScore)
	entry.ConfidenceLevel = ClampConfidence(entry.ConfidenceLevel)
	entry.Rating = RatingFor(entry.QualityScore)
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	s.FeedbackGiven = append(s.FeedbackGiven, entry)
	s.ConfidenceScores = append(s.ConfidenceScores, float64(entry.ConfidenceLevel))
	s.ConversationTurns++
	s.AddSkill(entry.SkillFocus)
	return entry
}

// AddTopic appends a topic unless empty or already present
func (s *PracticeSession) AddTopic(topic string) bool {
	if topic == "" || contains(s.TopicsDiscussed, topic) {
		return false
	}
	s.TopicsDiscussed = append(s.TopicsDiscussed, topic)
	return true
}

// AddSkill appends a skill unless empty or already present
func (s *PracticeSession) AddSkill(skill string) bool {
	if skill == "" || contains(s.SocialSkillsPracticed, skill) {
		return false
	}
	s.SocialSkillsPracticed = append(s.SocialSkillsPracticed, skill)
	return true
}

// AverageConfidence returns the mean confidence score, 0 when none recorded
func (s *PracticeSession) AverageConfidence() float64 {
	if len(s.ConfidenceScores) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s.ConfidenceScores {
		sum += v
	}
	return sum / float64(len(s.ConfidenceScores))
}

// Clone returns a deep copy so callers can mutate without touching registry state
func (s *PracticeSession) Clone() *PracticeSession {
	if s == nil {
		return nil
	}
	out := *s
	out.FeedbackGiven = append([]FeedbackEntry(nil), s.FeedbackGiven...)
	out.ConfidenceScores = append([]float64(nil), s.ConfidenceScores...)
	out.TopicsDiscussed = append([]string(nil), s.TopicsDiscussed...)
	out.SocialSkillsPracticed = append([]string(nil), s.SocialSkillsPracticed...)
	return &out
}

// SessionSummary is the derived report for a session
type SessionSummary struct {
	SessionID              string          `json:"session_id"`
	RoomName               string          `json:"room_name"`
	UserID                 string          `json:"user_id"`
	Scenario               ScenarioType    `json:"scenario"`
	Difficulty             DifficultyLevel `json:"difficulty"`
	SessionDurationMinutes float64         `json:"session_duration_minutes"`
	ConversationTurns      int             `json:"conversation_turns"`
	FeedbackEntries        int             `json:"feedback_entries"`
	AverageConfidence      float64         `json:"average_confidence"`
	PerformanceLevel       string          `json:"performance_level"`
	SkillsPracticed        []string        `json:"skills_practiced"`
	TopicsDiscussed        []string        `json:"topics_discussed"`
	GeneratedAt            time.Time       `json:"generated_at"`
}

// Summarize computes the summary as of now
func (s *PracticeSession) Summarize(now time.Time) SessionSummary {
	avg := s.AverageConfidence()
	elapsed := now.Sub(s.SessionStart)
	if elapsed < 0 {
		elapsed = 0
	}
	return SessionSummary{
		SessionID:              s.SessionID,
		RoomName:               s.RoomName,
		UserID:                 s.UserID,
		Scenario:               s.Scenario,
		Difficulty:             s.Difficulty,
		SessionDurationMinutes: round1(elapsed.Minutes()),
		ConversationTurns:      s.ConversationTurns,
		FeedbackEntries:        len(s.FeedbackGiven),
		AverageConfidence:      round1(avg),
		PerformanceLevel:       PerformanceLevel(avg),
		SkillsPracticed:        append([]string{}, s.SocialSkillsPracticed...),
		TopicsDiscussed:        append([]string{}, s.TopicsDiscussed...),
		GeneratedAt:            now,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
