package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/terra-clan/practice-engine/internal/models"
	"github.com/terra-clan/practice-engine/internal/practice"
)

// Client is a Go SDK for the practice-engine API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new practice-engine client
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is an error returned by the API envelope
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s - %s", e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusNotFound
}

// Room is a room started through the API, with its session and greeting
type Room = practice.Bootstrap

// CreateRoom starts a room from a key/value payload. Unknown scenario or
// difficulty values fall back server side and come back as warnings.
func (c *Client) CreateRoom(ctx context.Context, payload map[string]string) (*Room, error) {
	var room Room
	if err := c.call(ctx, "POST", "/api/v1/rooms", payload, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// RoomMetadata validates scenario and difficulty strictly and returns the room metadata
func (c *Client) RoomMetadata(ctx context.Context, req models.RoomMetadataRequest) (map[string]string, error) {
	var meta map[string]string
	if err := c.call(ctx, "POST", "/api/v1/rooms/metadata", req, &meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// GetRoom retrieves the frontend view of a room
func (c *Client) GetRoom(ctx context.Context, name string) (*models.RoomView, error) {
	var view models.RoomView
	if err := c.call(ctx, "GET", roomPath(name, ""), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// ListRooms lists rooms, filtered by user when userID is set
func (c *Client) ListRooms(ctx context.Context, userID string) ([]*models.RoomConfig, error) {
	path := "/api/v1/rooms"
	if userID != "" {
		path += "?user_id=" + url.QueryEscape(userID)
	}

	var result struct {
		Rooms []*models.RoomConfig `json:"rooms"`
	}
	if err := c.call(ctx, "GET", path, nil, &result); err != nil {
		return nil, err
	}
	return result.Rooms, nil
}

// DeleteRoom cleans up a room. Deleting an absent room succeeds.
func (c *Client) DeleteRoom(ctx context.Context, name string) error {
	return c.call(ctx, "DELETE", roomPath(name, ""), nil, nil)
}

// WelcomeMessage returns the persona greeting for the room
func (c *Client) WelcomeMessage(ctx context.Context, name string) (string, error) {
	var result struct {
		WelcomeMessage string `json:"welcome_message"`
	}
	err := c.call(ctx, "GET", roomPath(name, "/welcome"), nil, &result)
	return result.WelcomeMessage, err
}

// VoiceModel returns the room's voice model
func (c *Client) VoiceModel(ctx context.Context, name string) (string, error) {
	var result struct {
		VoiceModel string `json:"voice_model"`
	}
	err := c.call(ctx, "GET", roomPath(name, "/voice"), nil, &result)
	return result.VoiceModel, err
}

// Instructions returns the agent prompt for the room
func (c *Client) Instructions(ctx context.Context, name string) (string, error) {
	var result struct {
		Instructions string `json:"instructions"`
	}
	err := c.call(ctx, "GET", roomPath(name, "/instructions"), nil, &result)
	return result.Instructions, err
}

// StartSession starts a fresh session in an existing room
func (c *Client) StartSession(ctx context.Context, name string) (*models.PracticeSession, error) {
	var s models.PracticeSession
	if err := c.call(ctx, "POST", roomPath(name, "/session"), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Summary returns the session summary for a room
func (c *Client) Summary(ctx context.Context, name string) (*models.SessionSummary, error) {
	var s models.SessionSummary
	if err := c.call(ctx, "GET", roomPath(name, "/summary"), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SessionStatus reports "active" with a summary, or "not_found"
func (c *Client) SessionStatus(ctx context.Context, name string) (*practice.SessionStatus, error) {
	var s practice.SessionStatus
	if err := c.call(ctx, "GET", roomPath(name, "/status"), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// RecordFeedback records the coach's assessment of a user message
func (c *Client) RecordFeedback(ctx context.Context, name string, in practice.FeedbackInput) (*practice.FeedbackResult, error) {
	var result practice.FeedbackResult
	if err := c.call(ctx, "POST", roomPath(name, "/feedback"), in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RecordTurn counts a conversation turn and returns the new total
func (c *Client) RecordTurn(ctx context.Context, name string) (int, error) {
	var result struct {
		ConversationTurns int `json:"conversation_turns"`
	}
	err := c.call(ctx, "POST", roomPath(name, "/turns"), nil, &result)
	return result.ConversationTurns, err
}

// SuggestStarters pushes conversation starters to the room
func (c *Client) SuggestStarters(ctx context.Context, name string, in practice.StartersInput) (*practice.EventResult, error) {
	return c.event(ctx, roomPath(name, "/starters"), in)
}

// ShareTip pushes a social skills tip to the room
func (c *Client) ShareTip(ctx context.Context, name string, in practice.TipInput) (*practice.EventResult, error) {
	return c.event(ctx, roomPath(name, "/tips"), in)
}

// AskInterviewQuestion pushes an interview question to the room
func (c *Client) AskInterviewQuestion(ctx context.Context, name string, in practice.QuestionInput) (*practice.EventResult, error) {
	return c.event(ctx, roomPath(name, "/interview/questions"), in)
}

// InterviewFeedback scores an interview answer
func (c *Client) InterviewFeedback(ctx context.Context, name string, in practice.InterviewFeedbackInput) (*practice.FeedbackResult, error) {
	var result practice.FeedbackResult
	if err := c.call(ctx, "POST", roomPath(name, "/interview/feedback"), in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CleanupUser removes every room owned by userID and returns how many were cleaned
func (c *Client) CleanupUser(ctx context.Context, userID string) (int, error) {
	var result struct {
		Cleaned int `json:"cleaned"`
	}
	err := c.call(ctx, "DELETE", "/api/v1/users/"+url.PathEscape(userID)+"/rooms", nil, &result)
	return result.Cleaned, err
}

// History lists archived session summaries for a user, newest first
func (c *Client) History(ctx context.Context, userID string, limit int) ([]*models.SessionSummary, error) {
	path := "/api/v1/users/" + url.PathEscape(userID) + "/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var result struct {
		Summaries []*models.SessionSummary `json:"summaries"`
	}
	if err := c.call(ctx, "GET", path, nil, &result); err != nil {
		return nil, err
	}
	return result.Summaries, nil
}

// Scenarios lists the available scenarios with their personas
func (c *Client) Scenarios(ctx context.Context) ([]models.ScenarioOverview, error) {
	var result struct {
		Scenarios []models.ScenarioOverview `json:"scenarios"`
	}
	if err := c.call(ctx, "GET", "/api/v1/scenarios", nil, &result); err != nil {
		return nil, err
	}
	return result.Scenarios, nil
}

// Persona describes a scenario's persona; personaName selects an interviewer
func (c *Client) Persona(ctx context.Context, scenario models.ScenarioType, personaName string) (*models.PersonaInfo, error) {
	path := "/api/v1/scenarios/" + url.PathEscape(string(scenario)) + "/persona"
	if personaName != "" {
		path += "?persona_name=" + url.QueryEscape(personaName)
	}

	var info models.PersonaInfo
	if err := c.call(ctx, "GET", path, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Interviewers lists the selectable interviewer names
func (c *Client) Interviewers(ctx context.Context) ([]string, error) {
	var result struct {
		Interviewers []string `json:"interviewers"`
	}
	if err := c.call(ctx, "GET", "/api/v1/interviewers", nil, &result); err != nil {
		return nil, err
	}
	return result.Interviewers, nil
}

// Stats returns live orchestrator state
func (c *Client) Stats(ctx context.Context) (*practice.Stats, error) {
	var stats practice.Stats
	if err := c.call(ctx, "GET", "/api/v1/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, "GET", "/health", nil, nil)
}

func (c *Client) event(ctx context.Context, path string, in interface{}) (*practice.EventResult, error) {
	var result practice.EventResult
	if err := c.call(ctx, "POST", path, in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func roomPath(name, suffix string) string {
	return "/api/v1/rooms/" + url.PathEscape(name) + suffix
}

// call sends in as JSON and decodes the envelope's data into out
func (c *Client) call(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	status, resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	var result struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *APIError       `json:"error"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return fmt.Errorf("failed to unmarshal response (HTTP %d): %w", status, err)
	}

	if !result.Success {
		if result.Error == nil {
			result.Error = &APIError{Code: "unknown", Message: http.StatusText(status)}
		}
		result.Error.Status = status
		return result.Error
	}

	if out == nil || len(result.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(result.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return nil
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, respBody, nil
}
