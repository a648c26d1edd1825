package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidParameter is returned when a scenario or difficulty string is not
// part of the closed enumerations.
var ErrInvalidParameter = errors.New("invalid parameter")

// ScenarioType is the social or professional setting of a practice conversation
type ScenarioType string

const (
	ScenarioCoffeeShop   ScenarioType = "Coffee Shop"
	ScenarioParkWalk     ScenarioType = "Park Walk"
	ScenarioBookstore    ScenarioType = "Bookstore"
	ScenarioBarSocial    ScenarioType = "Bar Social"
	ScenarioGym          ScenarioType = "Gym"
	ScenarioMuseum       ScenarioType = "Museum"
	ScenarioJobInterview ScenarioType = "Job Interview"
)

// AllScenarios lists every scenario in declaration order
var AllScenarios = []ScenarioType{
	ScenarioCoffeeShop,
	ScenarioParkWalk,
	ScenarioBookstore,
	ScenarioBarSocial,
	ScenarioGym,
	ScenarioMuseum,
	ScenarioJobInterview,
}

// IsValid reports whether s belongs to the enumeration
func (s ScenarioType) IsValid() bool {
	for _, known := range AllScenarios {
		if s == known {
			return true
		}
	}
	return false
}

// IsInterview returns true for the interview scenario class
func (s ScenarioType) IsInterview() bool {
	return s == ScenarioJobInterview
}

// Slug returns the lowercase dashed form, e.g. "coffee-shop"
func (s ScenarioType) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(s)), " ", "-")
}

// ParseScenario accepts the display value ("Coffee Shop") or the slug
// ("coffee-shop"), case-insensitively.
func ParseScenario(value string) (ScenarioType, error) {
	v := strings.TrimSpace(value)
	for _, s := range AllScenarios {
		if strings.EqualFold(v, string(s)) || strings.EqualFold(v, s.Slug()) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown scenario %q", ErrInvalidParameter, value)
}

// DifficultyLevel is the practice difficulty tier
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "Beginner"
	DifficultyIntermediate DifficultyLevel = "Intermediate"
	DifficultyAdvanced     DifficultyLevel = "Advanced"
)

// AllDifficulties lists the tiers from lowest to highest
var AllDifficulties = []DifficultyLevel{
	DifficultyBeginner,
	DifficultyIntermediate,
	DifficultyAdvanced,
}

// IsValid reports whether d belongs to the enumeration
func (d DifficultyLevel) IsValid() bool {
	for _, known := range AllDifficulties {
		if d == known {
			return true
		}
	}
	return false
}

// ParseDifficulty accepts a tier name case-insensitively
func ParseDifficulty(value string) (DifficultyLevel, error) {
	v := strings.TrimSpace(value)
	for _, d := range AllDifficulties {
		if strings.EqualFold(v, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidParameter, value)
}
