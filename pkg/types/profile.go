// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// SkillLevel biases the skill-match scoring component.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// Valid reports whether the skill level is one of the recognized values.
func (s SkillLevel) Valid() bool {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	}
	return false
}

// Profile is the single user's interests, skill level, and source
// preferences. One profile exists per deployment; it is created with
// defaults on first use and updated in place.
type Profile struct {
	// Interests are free-text topic strings, matched case-insensitively
	// against article topics.
	Interests []string `json:"interests" yaml:"interests"`

	// SkillLevel is one of beginner, intermediate, advanced.
	SkillLevel SkillLevel `json:"skill_level" yaml:"skill_level"`

	// PreferredSources lists sources whose articles get the
	// source-preference scoring bonus.
	PreferredSources []Source `json:"preferred_sources" yaml:"preferred_sources"`

	// DailyReadingGoal is the target papers per day. Analytics only; it
	// does not influence ranking.
	DailyReadingGoal int `json:"daily_reading_goal" yaml:"daily_reading_goal"`

	Created time.Time `json:"created" yaml:"created"`
	Updated time.Time `json:"updated" yaml:"updated"`
}

// DefaultProfile returns the profile created on first use.
func DefaultProfile(now time.Time) Profile {
	return Profile{
		SkillLevel:       SkillIntermediate,
		PreferredSources: []Source{SourceArxiv, SourceSemanticScholar},
		DailyReadingGoal: 5,
		Created:          now,
		Updated:          now,
	}
}

// Validate checks the profile's required fields.
func (p Profile) Validate() error {
	if !p.SkillLevel.Valid() {
		return fmt.Errorf("skill level %q: must be beginner, intermediate, or advanced", p.SkillLevel)
	}
	if p.DailyReadingGoal < 0 {
		return fmt.Errorf("daily reading goal %d: must not be negative", p.DailyReadingGoal)
	}
	return nil
}

// PrefersSource reports whether src is one of the preferred sources.
func (p Profile) PrefersSource(src Source) bool {
	for _, s := range p.PreferredSources {
		if s == src {
			return true
		}
	}
	return false
}
