package models

import (
	"strings"
)

// PersonaConfig is the fixed character data of the simulated counterpart.
// Values are copied on every hand-off; Interests is cloned so holders never
// share a backing array.
type PersonaConfig struct {
	Name            string   `json:"name" yaml:"name"`
	Age             int      `json:"age" yaml:"age"`
	Occupation      string   `json:"occupation" yaml:"occupation"`
	Personality     string   `json:"personality" yaml:"personality"`
	Interests       []string `json:"interests" yaml:"interests"`
	Backstory       string   `json:"backstory" yaml:"backstory"`
	VoiceModel      string   `json:"voice_model" yaml:"voice_model"`
	ScenarioContext string   `json:"scenario_context" yaml:"scenario_context"`
}

// Clone returns a deep copy
func (p PersonaConfig) Clone() PersonaConfig {
	out := p
	if p.Interests != nil {
		out.Interests = append([]string(nil), p.Interests...)
	}
	return out
}

// Equal compares every field, including interests in order
func (p PersonaConfig) Equal(o PersonaConfig) bool {
	if p.Name != o.Name || p.Age != o.Age || p.Occupation != o.Occupation ||
		p.Personality != o.Personality || p.Backstory != o.Backstory ||
		p.VoiceModel != o.VoiceModel || p.ScenarioContext != o.ScenarioContext {
		return false
	}
	if len(p.Interests) != len(o.Interests) {
		return false
	}
	for i := range p.Interests {
		if p.Interests[i] != o.Interests[i] {
			return false
		}
	}
	return true
}

// PersonaInfo is the descriptive record returned by catalog queries
type PersonaInfo struct {
	Name              string       `json:"name"`
	Age               int          `json:"age"`
	Occupation        string       `json:"occupation"`
	Personality       string       `json:"personality"`
	Interests         []string     `json:"interests"`
	VoiceModel        string       `json:"voice_model"`
	Scenario          ScenarioType `json:"scenario"`
	Backstory         string       `json:"backstory,omitempty"`
	ScenarioContext   string       `json:"scenario_context,omitempty"`
	AvailablePersonas []string     `json:"available_personas,omitempty"`
}

// Interview context keys
const (
	CtxPersonaName        = "persona_name"
	CtxPersonaTitle       = "persona_title"
	CtxPersonaCompany     = "persona_company"
	CtxPersonaPersonality = "persona_personality"
	CtxPersonaStyle       = "persona_style"
	CtxPersonaVoice       = "persona_voice"
	CtxPersonaInterests   = "persona_interests"
	CtxJobDescription     = "job_description"
	CtxCandidateResume    = "candidate_resume"
)

// InterviewContextKeys lists the keys accepted from inbound payloads
var InterviewContextKeys = []string{
	CtxPersonaName,
	CtxPersonaTitle,
	CtxPersonaCompany,
	CtxPersonaPersonality,
	CtxPersonaStyle,
	CtxPersonaVoice,
	CtxPersonaInterests,
	CtxJobDescription,
	CtxCandidateResume,
}

// InterviewContext carries per-room interviewer overrides and documents
type InterviewContext map[string]string

// Get returns the trimmed value for key and whether it is present and non-empty
func (c InterviewContext) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c[key]
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// GetOr returns the value for key or fallback when absent
func (c InterviewContext) GetOr(key, fallback string) string {
	if v, ok := c.Get(key); ok {
		return v
	}
	return fallback
}

// HasPersonaOverrides reports whether any field-level override is present
func (c InterviewContext) HasPersonaOverrides() bool {
	for _, key := range []string{CtxPersonaTitle, CtxPersonaCompany, CtxPersonaPersonality, CtxPersonaStyle} {
		if _, ok := c.Get(key); ok {
			return true
		}
	}
	return false
}

// Interests splits persona_interests on commas
func (c InterviewContext) Interests() []string {
	raw, ok := c.Get(CtxPersonaInterests)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns an independent copy, nil stays nil
func (c InterviewContext) Clone() InterviewContext {
	if c == nil {
		return nil
	}
	out := make(InterviewContext, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
