package practice

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/terra-clan/practice-engine/internal/models"
)

// Payload is the flat key/value configuration a client sends when starting a room
type Payload map[string]string

// Payload keys besides the interview context keys
const (
	KeyScenario   = "scenario"
	KeyDifficulty = "difficulty"
	KeyUserID     = "user_id"
	KeyRoomName   = "room_name"
)

// ParsePayload decodes a JSON object into a Payload. Scalar values of any JSON
// type are stringified; nested values are ignored.
func ParsePayload(data []byte) (Payload, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: payload is not a JSON object: %v", models.ErrInvalidParameter, err)
	}

	out := make(Payload, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		case nil:
		default:
			slog.Debug("ignoring non-scalar payload value", "key", k)
		}
	}
	return out, nil
}

// parsePayload never fails: invalid or missing scenario and difficulty fall
// back to the first catalog scenario and the lowest tier, with a warning.
func (o *Orchestrator) parsePayload(p Payload) (models.CreateRoomRequest, []string) {
	var warnings []string

	scenario, err := models.ParseScenario(p[KeyScenario])
	if err != nil {
		fallback := models.ScenarioCoffeeShop
		if list := o.catalog.Scenarios(); len(list) > 0 {
			fallback = list[0]
		}
		slog.Warn("invalid scenario in payload, using fallback", "scenario", p[KeyScenario], "fallback", fallback)
		warnings = append(warnings, fmt.Sprintf("scenario %q not recognized, using %s", p[KeyScenario], fallback))
		scenario = fallback
	}

	difficulty, err := models.ParseDifficulty(p[KeyDifficulty])
	if err != nil {
		fallback := models.AllDifficulties[0]
		slog.Warn("invalid difficulty in payload, using fallback", "difficulty", p[KeyDifficulty], "fallback", fallback)
		warnings = append(warnings, fmt.Sprintf("difficulty %q not recognized, using %s", p[KeyDifficulty], fallback))
		difficulty = fallback
	}

	req := models.CreateRoomRequest{
		Scenario:   scenario,
		Difficulty: difficulty,
		UserID:     strings.TrimSpace(p[KeyUserID]),
		RoomName:   strings.TrimSpace(p[KeyRoomName]),
	}

	if scenario.IsInterview() {
		ictx := make(models.InterviewContext)
		for _, key := range models.InterviewContextKeys {
			if v, ok := p[key]; ok && strings.TrimSpace(v) != "" {
				ictx[key] = v
			}
		}
		if len(ictx) > 0 {
			req.InterviewContext = ictx
		}
	}
	return req, warnings
}
