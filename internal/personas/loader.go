package personas

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/practice-engine/internal/models"
)

//go:embed personas.yaml
var builtinCatalog []byte

// catalogFile represents the YAML structure of a persona catalog file
type catalogFile struct {
	DefaultInterviewer string            `yaml:"default_interviewer"`
	Prompts            *promptFile       `yaml:"prompts"`
	Scenarios          []personaFile     `yaml:"scenarios"`
	Interviewers       []interviewerFile `yaml:"interviewers"`
}

// promptFile holds the shared instruction templates
type promptFile struct {
	Base                    string            `yaml:"base"`
	Guidance                map[string]string `yaml:"guidance"`
	InterviewContext        string            `yaml:"interview_context"`
	OverrideBackstory       string            `yaml:"override_backstory"`
	OverrideScenarioContext string            `yaml:"override_scenario_context"`
	FallbackGreeting        string            `yaml:"fallback_greeting"`
}

// personaFile is one social persona bound to a scenario
type personaFile struct {
	Scenario             string `yaml:"scenario"`
	models.PersonaConfig `yaml:",inline"`
	Traits               string            `yaml:"traits"`
	Greetings            map[string]string `yaml:"greetings"`
}

// interviewerFile is one interviewer, keyed by the name clients select it with
type interviewerFile struct {
	Key                  string `yaml:"key"`
	models.PersonaConfig `yaml:",inline"`
	Traits               string            `yaml:"traits"`
	Greetings            map[string]string `yaml:"greetings"`
}

// LoadFromDir loads all YAML catalog files from a directory. Broken files are
// logged and skipped, like the built-in data they override.
func (c *Catalog) LoadFromDir(dir string) error {
	slog.Info("loading personas from directory", "dir", dir)

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	loaded := 0
	for _, file := range files {
		if err := c.LoadFromFile(file); err != nil {
			slog.Warn("failed to load persona file", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("persona files loaded", "count", loaded, "total_files", len(files))
	return nil
}

// LoadFromFile merges a single YAML catalog file into the catalog
func (c *Catalog) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	return c.load(data)
}

// load parses data and merges it. Validation happens before any state
// changes so a bad file leaves the catalog untouched.
func (c *Catalog) load(data []byte) error {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	social := make([]*definition, 0, len(cf.Scenarios))
	for _, pf := range cf.Scenarios {
		scenario, err := models.ParseScenario(pf.Scenario)
		if err != nil {
			return err
		}
		if scenario.IsInterview() {
			return fmt.Errorf("%w: %s is served by interviewers", ErrUnknownScenario, scenario)
		}
		def, err := newDefinition(scenario, pf.PersonaConfig, pf.Traits, pf.Greetings)
		if err != nil {
			return err
		}
		social = append(social, def)
	}

	interviewers := make([]keyedDefinition, 0, len(cf.Interviewers))
	for _, inf := range cf.Interviewers {
		key := inf.Key
		if key == "" {
			key = inf.Name
		}
		def, err := newDefinition(models.ScenarioJobInterview, inf.PersonaConfig, inf.Traits, inf.Greetings)
		if err != nil {
			return err
		}
		interviewers = append(interviewers, keyedDefinition{key: key, def: def})
	}

	var prompts *promptSet
	if cf.Prompts != nil {
		prompts = &promptSet{
			base:                    cf.Prompts.Base,
			guidance:                make(map[models.DifficultyLevel]string, len(cf.Prompts.Guidance)),
			interviewContext:        cf.Prompts.InterviewContext,
			overrideBackstory:       cf.Prompts.OverrideBackstory,
			overrideScenarioContext: cf.Prompts.OverrideScenarioContext,
			fallbackGreeting:        cf.Prompts.FallbackGreeting,
		}
		for k, v := range cf.Prompts.Guidance {
			d, err := models.ParseDifficulty(k)
			if err != nil {
				return err
			}
			prompts.guidance[d] = v
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	defaultKey := c.defaultInterviewer
	if cf.DefaultInterviewer != "" {
		defaultKey = cf.DefaultInterviewer
	}
	if !c.hasInterviewer(defaultKey, interviewers) {
		return fmt.Errorf("%w: default interviewer %q", ErrUnknownPersona, defaultKey)
	}
	c.defaultInterviewer = defaultKey

	if prompts != nil {
		c.prompts.merge(prompts)
	}
	for _, def := range social {
		if _, exists := c.scenarios[def.scenario]; !exists {
			c.order = append(c.order, def.scenario)
		}
		c.scenarios[def.scenario] = def
		slog.Debug("persona loaded", "scenario", def.scenario, "name", def.config.Name)
	}
	for _, kd := range interviewers {
		if _, exists := c.interviewers[kd.key]; !exists {
			c.interviewerOrder = append(c.interviewerOrder, kd.key)
		}
		c.interviewers[kd.key] = kd.def
		slog.Debug("interviewer loaded", "key", kd.key, "name", kd.def.config.Name)
	}
	return nil
}

type keyedDefinition struct {
	key string
	def *definition
}

// hasInterviewer checks key against loaded and pending interviewers; caller holds the lock
func (c *Catalog) hasInterviewer(key string, pending []keyedDefinition) bool {
	if _, ok := c.interviewers[key]; ok {
		return true
	}
	for _, kd := range pending {
		if kd.key == key {
			return true
		}
	}
	return false
}

func newDefinition(scenario models.ScenarioType, cfg models.PersonaConfig, traits string, greetings map[string]string) (*definition, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("persona name is required")
	}
	if cfg.VoiceModel == "" {
		return nil, fmt.Errorf("voice_model is required for %s", cfg.Name)
	}
	def := &definition{
		scenario:  scenario,
		config:    cfg.Clone(),
		traits:    traits,
		greetings: make(map[models.DifficultyLevel]string, len(greetings)),
	}
	for k, v := range greetings {
		d, err := models.ParseDifficulty(k)
		if err != nil {
			return nil, fmt.Errorf("greeting for %s: %w", cfg.Name, err)
		}
		def.greetings[d] = v
	}
	return def, nil
}
