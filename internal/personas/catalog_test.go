package personas

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/terra-clan/practice-engine/internal/models"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	return c
}

func TestResolveSocialScenarios(t *testing.T) {
	c := newTestCatalog(t)

	tests := []struct {
		scenario models.ScenarioType
		name     string
		voice    string
	}{
		{models.ScenarioCoffeeShop, "Emma", "21m00Tcm4TlvDq8ikWAM"},
		{models.ScenarioGym, "Alex", "yl2ZDV1MzN4HbQJbMihG"},
		{models.ScenarioBookstore, "Maya", "sWsBiVcjjowceAScTnu3"},
		{models.ScenarioBarSocial, "Jordan", "rdDUoCO1RjwdMmNjmhHV"},
		{models.ScenarioParkWalk, "Sam", "4RZ84U1b4WCqpu57LvIq"},
		{models.ScenarioMuseum, "Dr. Chen", "oaLGpwm7fYWDEFmlRuQk"},
	}

	for _, tt := range tests {
		p, err := c.Resolve(tt.scenario, nil)
		if err != nil {
			t.Fatalf("Resolve(%s) failed: %v", tt.scenario, err)
		}
		if p.Name() != tt.name {
			t.Errorf("Resolve(%s) name = %q, want %q", tt.scenario, p.Name(), tt.name)
		}
		if p.VoiceModel() != tt.voice {
			t.Errorf("Resolve(%s) voice = %q, want %q", tt.scenario, p.VoiceModel(), tt.voice)
		}
	}
}

func TestResolveUnknownScenario(t *testing.T) {
	c := newTestCatalog(t)

	_, err := c.Resolve(models.ScenarioType("Space Station"), nil)
	if !errors.Is(err, ErrUnknownScenario) {
		t.Fatalf("expected ErrUnknownScenario, got %v", err)
	}
}

func TestResolveInterviewerWithoutOverrides(t *testing.T) {
	c := newTestCatalog(t)

	p, err := c.Resolve(models.ScenarioJobInterview, models.InterviewContext{
		models.CtxPersonaName: "Jessica Chen",
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	info, err := c.InterviewerInfo("Jessica Chen")
	if err != nil {
		t.Fatalf("InterviewerInfo failed: %v", err)
	}
	cfg := p.Config()
	if cfg.Name != "Jessica Chen" || cfg.Occupation != info.Occupation || cfg.Backstory != info.Backstory ||
		cfg.ScenarioContext != info.ScenarioContext {
		t.Errorf("expected built-in Jessica Chen config, got %+v", cfg)
	}
}

func TestResolveInterviewerTitleOverride(t *testing.T) {
	c := newTestCatalog(t)

	p, err := c.Resolve(models.ScenarioJobInterview, models.InterviewContext{
		models.CtxPersonaName:  "Marcus Johnson",
		models.CtxPersonaTitle: "VP of Engineering",
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	cfg := p.Config()
	if cfg.Occupation != "VP of Engineering" {
		t.Errorf("occupation = %q, want override", cfg.Occupation)
	}
	if !strings.Contains(cfg.Backstory, "VP of Engineering") {
		t.Errorf("backstory missing title: %q", cfg.Backstory)
	}
	if !strings.Contains(cfg.ScenarioContext, "VP of Engineering") {
		t.Errorf("scenario context missing title: %q", cfg.ScenarioContext)
	}
	if cfg.Age != 35 {
		t.Errorf("age should carry over from the built-in config, got %d", cfg.Age)
	}
}

func TestResolveInterviewerFullOverride(t *testing.T) {
	c := newTestCatalog(t)

	p, err := c.Resolve(models.ScenarioJobInterview, models.InterviewContext{
		models.CtxPersonaName:        "Robert Hamilton",
		models.CtxPersonaTitle:       "CTO",
		models.CtxPersonaCompany:     "Acme Robotics",
		models.CtxPersonaPersonality: "Curious and blunt",
		models.CtxPersonaStyle:       "conversational",
		models.CtxPersonaVoice:       "voice-xyz",
		models.CtxPersonaInterests:   "robotics, hiring",
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	cfg := p.Config()
	for _, token := range []string{"CTO", "Acme Robotics", "conversational", "Curious and blunt"} {
		if !strings.Contains(cfg.ScenarioContext, token) {
			t.Errorf("scenario context missing %q: %q", token, cfg.ScenarioContext)
		}
	}
	if !strings.Contains(cfg.Backstory, "Acme Robotics") {
		t.Errorf("backstory missing company: %q", cfg.Backstory)
	}
	if cfg.VoiceModel != "voice-xyz" {
		t.Errorf("voice = %q, want override", cfg.VoiceModel)
	}
	if len(cfg.Interests) != 2 || cfg.Interests[0] != "robotics" || cfg.Interests[1] != "hiring" {
		t.Errorf("unexpected interests: %v", cfg.Interests)
	}
}

func TestResolveInterviewerFallback(t *testing.T) {
	c := newTestCatalog(t)

	for _, ictx := range []models.InterviewContext{
		nil,
		{},
		{models.CtxPersonaName: "Nobody Known"},
	} {
		p, err := c.Resolve(models.ScenarioJobInterview, ictx)
		if err != nil {
			t.Fatalf("Resolve(%v) failed: %v", ictx, err)
		}
		if p.Name() != "Marcus Johnson" {
			t.Errorf("Resolve(%v) name = %q, want default interviewer", ictx, p.Name())
		}
	}
}

func TestResolvedConfigIsIndependent(t *testing.T) {
	c := newTestCatalog(t)

	p, _ := c.Resolve(models.ScenarioCoffeeShop, nil)
	cfg := p.Config()
	cfg.Interests[0] = "mutated"

	again, _ := c.Resolve(models.ScenarioCoffeeShop, nil)
	if again.Config().Interests[0] == "mutated" {
		t.Fatal("mutating a returned config leaked into the catalog")
	}
}

func TestScenariosListsInterviewOnce(t *testing.T) {
	c := newTestCatalog(t)

	scenarios := c.Scenarios()
	want := []models.ScenarioType{
		models.ScenarioCoffeeShop,
		models.ScenarioGym,
		models.ScenarioBookstore,
		models.ScenarioBarSocial,
		models.ScenarioParkWalk,
		models.ScenarioMuseum,
		models.ScenarioJobInterview,
	}
	if len(scenarios) != len(want) {
		t.Fatalf("expected %d scenarios, got %v", len(want), scenarios)
	}
	for i := range want {
		if scenarios[i] != want[i] {
			t.Errorf("scenario[%d] = %s, want %s", i, scenarios[i], want[i])
		}
	}
}

func TestInterviewPersonaNames(t *testing.T) {
	c := newTestCatalog(t)

	names := c.InterviewPersonaNames()
	want := []string{"Dr. Sarah Mitchell", "Marcus Johnson", "Jessica Chen", "Robert Hamilton", "Panel Interview"}
	if strings.Join(names, "|") != strings.Join(want, "|") {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestInfo(t *testing.T) {
	c := newTestCatalog(t)

	info, err := c.Info(models.ScenarioMuseum, "")
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Name != "Dr. Chen" || info.Age != 32 {
		t.Errorf("unexpected museum info: %+v", info)
	}

	generic, err := c.Info(models.ScenarioJobInterview, "")
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if generic.Name != "Interview Persona" || len(generic.AvailablePersonas) != 5 {
		t.Errorf("unexpected generic interview info: %+v", generic)
	}

	robert, err := c.Info(models.ScenarioJobInterview, "Robert Hamilton")
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if robert.Occupation != "CEO at Global Enterprises" {
		t.Errorf("unexpected interviewer info: %+v", robert)
	}

	if _, err := c.InterviewerInfo("Nobody Known"); !errors.Is(err, ErrUnknownPersona) {
		t.Errorf("expected ErrUnknownPersona, got %v", err)
	}
}

func TestWelcome(t *testing.T) {
	c := newTestCatalog(t)

	sarah, _ := c.Resolve(models.ScenarioJobInterview, models.InterviewContext{models.CtxPersonaName: "Dr. Sarah Mitchell"})
	if got := sarah.Welcome(models.DifficultyBeginner); !strings.HasPrefix(got, "Good morning, I'm Dr. Mitchell.") {
		t.Errorf("unexpected greeting: %q", got)
	}

	emma, _ := c.Resolve(models.ScenarioCoffeeShop, nil)
	if got := emma.Welcome(models.DifficultyLevel("Expert")); got != "Hi! I'm Emma. Let's practice some social skills together!" {
		t.Errorf("expected fallback greeting, got %q", got)
	}
}

func TestInstructions(t *testing.T) {
	c := newTestCatalog(t)

	ictx := models.InterviewContext{
		models.CtxPersonaName:     "Jessica Chen",
		models.CtxJobDescription:  "Staff engineer, payments",
		models.CtxCandidateResume: "Ten years of Go",
	}
	p, _ := c.Resolve(models.ScenarioJobInterview, ictx)
	text := p.Instructions(models.DifficultyAdvanced, ictx)

	for _, want := range []string{"You are Jessica Chen", "ADVANCED GUIDANCE", "JESSICA CHEN'S SPECIFIC TRAITS", "Staff engineer, payments", "Ten years of Go"} {
		if !strings.Contains(text, want) {
			t.Errorf("instructions missing %q", want)
		}
	}

	emma, _ := c.Resolve(models.ScenarioCoffeeShop, nil)
	if strings.Contains(emma.Instructions(models.DifficultyBeginner, nil), "ADDITIONAL INTERVIEW CONTEXT") {
		t.Error("social persona should not carry interview context")
	}
}

func TestLoadFromDirOverrides(t *testing.T) {
	dir := t.TempDir()

	override := `
scenarios:
  - scenario: coffee-shop
    name: Nora
    age: 29
    occupation: Barista
    voice_model: voice-nora
    greetings:
      Beginner: "Hi, I'm {name}!"
interviewers:
  - key: Priya Raman
    name: Priya Raman
    age: 45
    occupation: Director of Data
    voice_model: voice-priya
`
	if err := os.WriteFile(filepath.Join(dir, "override.yaml"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("scenarios: [{scenario: Moon}]"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := newTestCatalog(t)
	if err := c.LoadFromDir(dir); err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}

	p, err := c.Resolve(models.ScenarioCoffeeShop, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if p.Name() != "Nora" || p.Welcome(models.DifficultyBeginner) != "Hi, I'm Nora!" {
		t.Errorf("override not applied: %s / %s", p.Name(), p.Welcome(models.DifficultyBeginner))
	}

	names := c.InterviewPersonaNames()
	if names[len(names)-1] != "Priya Raman" {
		t.Errorf("expected new interviewer appended, got %v", names)
	}
	if len(c.Scenarios()) != 7 {
		t.Errorf("override must not add scenarios, got %v", c.Scenarios())
	}
}
