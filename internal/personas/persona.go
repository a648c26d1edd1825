package personas

import (
	"strconv"
	"strings"

	"github.com/terra-clan/practice-engine/internal/models"
)

// Persona is a resolved character: its config plus the prompt material needed
// to greet and instruct. Each Resolve returns a fresh value.
type Persona struct {
	scenario  models.ScenarioType
	config    models.PersonaConfig
	traits    string
	greetings map[models.DifficultyLevel]string
	prompts   *promptSet
}

// Config returns a copy of the persona configuration
func (p *Persona) Config() models.PersonaConfig {
	return p.config.Clone()
}

func (p *Persona) Name() string                  { return p.config.Name }
func (p *Persona) VoiceModel() string            { return p.config.VoiceModel }
func (p *Persona) Scenario() models.ScenarioType { return p.scenario }

// Welcome returns the greeting for a difficulty, or the generic greeting when
// the persona has none for that tier.
func (p *Persona) Welcome(difficulty models.DifficultyLevel) string {
	tmpl, ok := p.greetings[difficulty]
	if !ok || tmpl == "" {
		tmpl = p.prompts.fallbackGreeting
	}
	return render(tmpl, map[string]string{
		"name":      p.config.Name,
		"last_name": lastName(p.config.Name),
	})
}

// Instructions assembles the agent prompt for a difficulty. Interview personas
// append the job description and resume when the context carries either.
func (p *Persona) Instructions(difficulty models.DifficultyLevel, ictx models.InterviewContext) string {
	var b strings.Builder

	b.WriteString(render(p.prompts.base, map[string]string{
		"name":             p.config.Name,
		"age":              strconv.Itoa(p.config.Age),
		"occupation":       p.config.Occupation,
		"personality":      p.config.Personality,
		"interests":        strings.Join(p.config.Interests, ", "),
		"backstory":        p.config.Backstory,
		"scenario":         string(p.scenario),
		"difficulty":       string(difficulty),
		"scenario_context": p.config.ScenarioContext,
	}))
	if p.traits != "" {
		b.WriteString("\n")
		b.WriteString(p.traits)
	}
	if g := p.prompts.guidance[difficulty]; g != "" {
		b.WriteString("\n")
		b.WriteString(g)
	}

	if p.scenario.IsInterview() && len(ictx) > 0 {
		b.WriteString("\n")
		b.WriteString(render(p.prompts.interviewContext, map[string]string{
			"job_description":  ictx.GetOr(models.CtxJobDescription, "N/A"),
			"candidate_resume": ictx.GetOr(models.CtxCandidateResume, "N/A"),
		}))
	}
	return b.String()
}

// Info returns the descriptive record of the resolved persona
func (p *Persona) Info() models.PersonaInfo {
	cfg := p.config.Clone()
	return models.PersonaInfo{
		Name:            cfg.Name,
		Age:             cfg.Age,
		Occupation:      cfg.Occupation,
		Personality:     cfg.Personality,
		Interests:       cfg.Interests,
		VoiceModel:      cfg.VoiceModel,
		Scenario:        p.scenario,
		Backstory:       cfg.Backstory,
		ScenarioContext: cfg.ScenarioContext,
	}
}

func lastName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return name
	}
	return fields[len(fields)-1]
}
