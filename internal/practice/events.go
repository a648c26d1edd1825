package practice

import (
	"context"
	"log/slog"
	"strings"

	"github.com/terra-clan/practice-engine/internal/models"
)

// Event types pushed to the room channel
const (
	EventFeedbackRecorded  = "feedback_recorded"
	EventStartersSuggested = "starters_suggested"
	EventTipShared         = "tip_shared"
	EventQuestion          = "question"
	EventInterviewFeedback = "feedback"
)

// DefaultConfidence is stored when the agent omits a confidence level
const DefaultConfidence = 5

// FeedbackInput is the agent's assessment of one user message
type FeedbackInput struct {
	UserMessage      string  `json:"user_message"`
	Quality          float64 `json:"conversation_quality"`
	Feedback         string  `json:"specific_feedback"`
	ImprovementTips  string  `json:"improvement_tips"`
	SocialSkillFocus string  `json:"social_skill_focus"`
	ConfidenceLevel  *int    `json:"confidence_level,omitempty"`
}

// FeedbackResult is the event pushed for recorded feedback
type FeedbackResult struct {
	Status      string               `json:"status,omitempty"`
	Type        string               `json:"type,omitempty"`
	Feedback    models.FeedbackEntry `json:"feedback"`
	Message     string               `json:"message,omitempty"`
	Rating      string               `json:"rating"`
	Suggestions []string             `json:"suggestions"`
	UIOnly      bool                 `json:"ui_only"`
	DoNotSpeak  bool                 `json:"do_not_speak"`
	Delivered   bool                 `json:"-"`

	AnswerQuality  float64 `json:"answer_quality,omitempty"`
	ClarityScore   float64 `json:"clarity_score,omitempty"`
	RelevanceScore float64 `json:"relevance_score,omitempty"`
	Criteria       string  `json:"criteria,omitempty"`
}

// StartersInput suggests conversation openers
type StartersInput struct {
	Context              string   `json:"context"`
	ConversationStarters []string `json:"conversation_starters"`
	DifficultyLevel      string   `json:"difficulty_level"`
}

// TipInput shares a social skills tip
type TipInput struct {
	Tip               string   `json:"tip"`
	Category          string   `json:"category"`
	RealWorldExamples []string `json:"real_world_examples"`
}

// QuestionInput is an interview question shown to the candidate
type QuestionInput struct {
	Question     string `json:"question"`
	QuestionType string `json:"question_type"`
	RelatedTo    string `json:"related_to"`
}

// InterviewFeedbackInput scores an interview answer
type InterviewFeedbackInput struct {
	AnswerQuality      float64 `json:"answer_quality"`
	ClarityScore       float64 `json:"clarity_score"`
	RelevanceScore     float64 `json:"relevance_score"`
	Feedback           string  `json:"feedback"`
	ImprovementTips    string  `json:"improvement_tips"`
	EvaluationCriteria string  `json:"evaluation_criteria"`
}

// EventResult is a UI event and whether it reached the room
type EventResult struct {
	Event     map[string]any `json:"event"`
	Delivered bool           `json:"delivered"`
}

// RecordFeedback stores a clamped feedback entry in the room's session and
// pushes it to the room. Delivery failure does not fail the call.
func (o *Orchestrator) RecordFeedback(ctx context.Context, room string, in FeedbackInput) (*FeedbackResult, error) {
	confidence := DefaultConfidence
	if in.ConfidenceLevel != nil {
		confidence = models.ClampConfidence(*in.ConfidenceLevel)
	}

	var stored models.FeedbackEntry
	_, err := o.sessions.Update(room, func(s *models.PracticeSession) {
		stored = s.AddFeedback(models.FeedbackEntry{
			UserMessage:     in.UserMessage,
			QualityScore:    in.Quality,
			ConfidenceLevel: confidence,
			Feedback:        in.Feedback,
			Tips:            in.ImprovementTips,
			SkillFocus:      in.SocialSkillFocus,
			Timestamp:       o.now(),
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("conversation feedback recorded",
		"room", room,
		"quality", stored.QualityScore,
		"confidence", stored.ConfidenceLevel,
		"skill", stored.SkillFocus,
	)

	result := &FeedbackResult{
		Status:      EventFeedbackRecorded,
		Feedback:    stored,
		Message:     in.Feedback,
		Rating:      stored.Rating,
		Suggestions: splitLines(in.ImprovementTips),
		UIOnly:      true,
		DoNotSpeak:  true,
	}
	result.Delivered = o.directory.Send(ctx, room, result)
	return result, nil
}

// RecordTurn counts a conversation turn and returns the new total
func (o *Orchestrator) RecordTurn(room string) (int, error) {
	s, err := o.sessions.Update(room, func(s *models.PracticeSession) {
		s.ConversationTurns++
	})
	if err != nil {
		return 0, err
	}
	return s.ConversationTurns, nil
}

// SuggestStarters notes the context as a topic and pushes the starters
func (o *Orchestrator) SuggestStarters(ctx context.Context, room string, in StartersInput) (*EventResult, error) {
	if _, err := o.sessions.Update(room, func(s *models.PracticeSession) {
		s.AddTopic(in.Context)
	}); err != nil {
		return nil, err
	}

	level := in.DifficultyLevel
	if level == "" {
		level = "beginner"
	}
	starters := in.ConversationStarters
	if starters == nil {
		starters = []string{}
	}

	slog.Info("conversation starters suggested", "room", room, "context", in.Context)
	return o.push(ctx, room, "status", EventStartersSuggested, map[string]any{
		"context":  in.Context,
		"starters": starters,
		"level":    level,
	}), nil
}

// ShareTip notes the tip category as a topic and pushes the tip
func (o *Orchestrator) ShareTip(ctx context.Context, room string, in TipInput) (*EventResult, error) {
	if _, err := o.sessions.Update(room, func(s *models.PracticeSession) {
		s.AddTopic(in.Category)
	}); err != nil {
		return nil, err
	}

	examples := in.RealWorldExamples
	if examples == nil {
		examples = []string{}
	}

	slog.Info("social tip shared", "room", room, "category", in.Category)
	return o.push(ctx, room, "status", EventTipShared, map[string]any{
		"tip":      in.Tip,
		"category": in.Category,
		"examples": examples,
	}), nil
}

// AskInterviewQuestion pushes a question to an interview room
func (o *Orchestrator) AskInterviewQuestion(ctx context.Context, room string, in QuestionInput) (*EventResult, error) {
	if _, err := o.sessions.Get(room); err != nil {
		return nil, err
	}

	slog.Info("interview question asked", "room", room, "question_type", in.QuestionType)
	return o.push(ctx, room, "type", EventQuestion, map[string]any{
		"question":      in.Question,
		"question_type": in.QuestionType,
		"related_to":    in.RelatedTo,
	}), nil
}

// InterviewFeedback scores an answer, records it as a feedback entry with
// confidence derived from answer quality, and pushes it to the room
func (o *Orchestrator) InterviewFeedback(ctx context.Context, room string, in InterviewFeedbackInput) (*FeedbackResult, error) {
	quality := models.ClampQuality(in.AnswerQuality)
	clarity := models.ClampQuality(in.ClarityScore)
	relevance := models.ClampQuality(in.RelevanceScore)

	var stored models.FeedbackEntry
	_, err := o.sessions.Update(room, func(s *models.PracticeSession) {
		stored = s.AddFeedback(models.FeedbackEntry{
			QualityScore:    quality,
			ConfidenceLevel: int(quality + 0.5),
			Feedback:        in.Feedback,
			Tips:            in.ImprovementTips,
			SkillFocus:      in.EvaluationCriteria,
			Timestamp:       o.now(),
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("interview feedback recorded", "room", room, "quality", quality, "criteria", in.EvaluationCriteria)

	result := &FeedbackResult{
		Type:           EventInterviewFeedback,
		Feedback:       stored,
		Message:        in.Feedback,
		Rating:         stored.Rating,
		Suggestions:    splitLines(in.ImprovementTips),
		UIOnly:         true,
		DoNotSpeak:     true,
		AnswerQuality:  quality,
		ClarityScore:   clarity,
		RelevanceScore: relevance,
		Criteria:       in.EvaluationCriteria,
	}
	result.Delivered = o.directory.Send(ctx, room, result)
	return result, nil
}

// push sends a flat event: fields plus the kind key and the UI-only markers
func (o *Orchestrator) push(ctx context.Context, room, kindKey, kind string, fields map[string]any) *EventResult {
	event := make(map[string]any, len(fields)+4)
	for k, v := range fields {
		event[k] = v
	}
	event[kindKey] = kind
	event["timestamp"] = o.now()
	event["ui_only"] = true
	event["do_not_speak"] = true

	return &EventResult{
		Event:     event,
		Delivered: o.directory.Send(ctx, room, event),
	}
}

func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}
