package personas

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/terra-clan/practice-engine/internal/models"
)

var (
	ErrUnknownScenario = errors.New("unknown scenario")
	ErrUnknownPersona  = errors.New("unknown persona")
)

// definition is a catalog entry; resolution never hands it out directly
type definition struct {
	scenario  models.ScenarioType
	config    models.PersonaConfig
	traits    string
	greetings map[models.DifficultyLevel]string
}

// promptSet holds the shared templates every persona renders through
type promptSet struct {
	base                    string
	guidance                map[models.DifficultyLevel]string
	interviewContext        string
	overrideBackstory       string
	overrideScenarioContext string
	fallbackGreeting        string
}

func (p *promptSet) merge(o *promptSet) {
	if o.base != "" {
		p.base = o.base
	}
	for k, v := range o.guidance {
		p.guidance[k] = v
	}
	if o.interviewContext != "" {
		p.interviewContext = o.interviewContext
	}
	if o.overrideBackstory != "" {
		p.overrideBackstory = o.overrideBackstory
	}
	if o.overrideScenarioContext != "" {
		p.overrideScenarioContext = o.overrideScenarioContext
	}
	if o.fallbackGreeting != "" {
		p.fallbackGreeting = o.fallbackGreeting
	}
}

func (p *promptSet) clone() *promptSet {
	out := *p
	out.guidance = make(map[models.DifficultyLevel]string, len(p.guidance))
	for k, v := range p.guidance {
		out.guidance[k] = v
	}
	return &out
}

// Catalog maps scenarios to their persona and interviewer names to interviewer
// personas. Safe for concurrent use; reloads swap entries under the write lock.
type Catalog struct {
	mu                 sync.RWMutex
	prompts            *promptSet
	scenarios          map[models.ScenarioType]*definition
	order              []models.ScenarioType
	interviewers       map[string]*definition
	interviewerOrder   []string
	defaultInterviewer string
}

// NewCatalog creates a catalog populated with the built-in personas
func NewCatalog() (*Catalog, error) {
	c := &Catalog{
		prompts:      &promptSet{guidance: make(map[models.DifficultyLevel]string)},
		scenarios:    make(map[models.ScenarioType]*definition),
		interviewers: make(map[string]*definition),
	}
	if err := c.load(builtinCatalog); err != nil {
		return nil, fmt.Errorf("failed to load built-in personas: %w", err)
	}
	return c, nil
}

// Resolve returns the persona for a scenario. Interview resolution honours the
// context: persona_name selects the interviewer (unknown names fall back to the
// default interviewer) and any of title/company/personality/style triggers a
// recombined config.
func (c *Catalog) Resolve(scenario models.ScenarioType, ictx models.InterviewContext) (*Persona, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if scenario.IsInterview() {
		return c.resolveInterviewer(ictx), nil
	}

	def, ok := c.scenarios[scenario]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, scenario)
	}
	return c.newPersona(def, def.config.Clone()), nil
}

// resolveInterviewer expects the read lock held
func (c *Catalog) resolveInterviewer(ictx models.InterviewContext) *Persona {
	name := ictx.GetOr(models.CtxPersonaName, c.defaultInterviewer)
	def, ok := c.interviewers[name]
	if !ok {
		slog.Warn("unknown interviewer, using default", "persona_name", name, "default", c.defaultInterviewer)
		return c.newPersona(c.interviewers[c.defaultInterviewer], c.interviewers[c.defaultInterviewer].config.Clone())
	}
	if !ictx.HasPersonaOverrides() {
		return c.newPersona(def, def.config.Clone())
	}
	return c.newPersona(def, c.recombine(def.config, ictx))
}

// recombine derives a full config from base and the context overrides
func (c *Catalog) recombine(base models.PersonaConfig, ictx models.InterviewContext) models.PersonaConfig {
	cfg := base.Clone()

	cfg.Name = ictx.GetOr(models.CtxPersonaName, base.Name)
	cfg.Occupation = ictx.GetOr(models.CtxPersonaTitle, base.Occupation)
	cfg.Personality = ictx.GetOr(models.CtxPersonaPersonality, base.Personality)
	cfg.VoiceModel = ictx.GetOr(models.CtxPersonaVoice, base.VoiceModel)
	if interests := ictx.Interests(); len(interests) > 0 {
		cfg.Interests = interests
	}

	company := ictx.GetOr(models.CtxPersonaCompany, "the company")
	style := ictx.GetOr(models.CtxPersonaStyle, "professional")

	cfg.Backstory = render(c.prompts.overrideBackstory, map[string]string{
		"title":     cfg.Occupation,
		"company":   company,
		"backstory": base.Backstory,
	})
	cfg.ScenarioContext = render(c.prompts.overrideScenarioContext, map[string]string{
		"title":            cfg.Occupation,
		"company":          company,
		"style":            style,
		"personality":      cfg.Personality,
		"scenario_context": base.ScenarioContext,
	})
	return cfg
}

func (c *Catalog) newPersona(def *definition, cfg models.PersonaConfig) *Persona {
	greetings := make(map[models.DifficultyLevel]string, len(def.greetings))
	for k, v := range def.greetings {
		greetings[k] = v
	}
	return &Persona{
		scenario:  def.scenario,
		config:    cfg,
		traits:    def.traits,
		greetings: greetings,
		prompts:   c.prompts.clone(),
	}
}

// Info returns the descriptive record for a scenario without building a
// persona. For interviews an unknown or empty personaName yields the generic
// record listing the available interviewers.
func (c *Catalog) Info(scenario models.ScenarioType, personaName string) (models.PersonaInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if scenario.IsInterview() {
		if def, ok := c.interviewers[personaName]; ok {
			return infoFor(def), nil
		}
		return models.PersonaInfo{
			Name:              "Interview Persona",
			Age:               35,
			Occupation:        "Varies based on selection",
			Personality:       "Dynamic and context-aware",
			Interests:         []string{"Conducting interviews"},
			VoiceModel:        "Varies",
			Scenario:          scenario,
			AvailablePersonas: append([]string(nil), c.interviewerOrder...),
		}, nil
	}

	def, ok := c.scenarios[scenario]
	if !ok {
		return models.PersonaInfo{}, fmt.Errorf("%w: %q", ErrUnknownScenario, scenario)
	}
	return infoFor(def), nil
}

// InterviewerInfo returns the full record of a named interviewer. Unlike
// Resolve, unknown names are an error.
func (c *Catalog) InterviewerInfo(name string) (models.PersonaInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	def, ok := c.interviewers[name]
	if !ok {
		return models.PersonaInfo{}, fmt.Errorf("%w: %q", ErrUnknownPersona, name)
	}
	info := infoFor(def)
	info.ScenarioContext = def.config.ScenarioContext
	return info, nil
}

func infoFor(def *definition) models.PersonaInfo {
	cfg := def.config.Clone()
	return models.PersonaInfo{
		Name:        cfg.Name,
		Age:         cfg.Age,
		Occupation:  cfg.Occupation,
		Personality: cfg.Personality,
		Interests:   cfg.Interests,
		VoiceModel:  cfg.VoiceModel,
		Scenario:    def.scenario,
		Backstory:   cfg.Backstory,
	}
}

// Scenarios lists every social scenario with a persona in catalog order,
// followed by the interview scenario exactly once.
func (c *Catalog) Scenarios() []models.ScenarioType {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.ScenarioType, 0, len(c.order)+1)
	out = append(out, c.order...)
	if len(c.interviewers) > 0 {
		out = append(out, models.ScenarioJobInterview)
	}
	return out
}

// InterviewPersonaNames lists the interviewer keys in catalog order
func (c *Catalog) InterviewPersonaNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.interviewerOrder...)
}

// DefaultInterviewer returns the key used when none or an unknown one is requested
func (c *Catalog) DefaultInterviewer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaultInterviewer
}

// VoiceMapping maps each scenario to its default voice model
func (c *Catalog) VoiceMapping() map[models.ScenarioType]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[models.ScenarioType]string, len(c.scenarios)+1)
	for scenario, def := range c.scenarios {
		out[scenario] = def.config.VoiceModel
	}
	if def, ok := c.interviewers[c.defaultInterviewer]; ok {
		out[models.ScenarioJobInterview] = def.config.VoiceModel
	}
	return out
}

// render substitutes {key} placeholders
func render(tmpl string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
