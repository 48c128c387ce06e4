// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score computes an explainable relevance score for one
// (profile, article) pair. The scorer is a pure function: no I/O, no
// mutable state, and it never fails on a well-formed pair. A missing
// signal scores zero instead of aborting the ranking call.
package score

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/paper-scout/pkg/types"
)

// Component weights. They sum to exactly 1.0.
const (
	weightTopics         = 0.35
	weightCitations      = 0.20
	weightSkill          = 0.15
	weightSource         = 0.10
	weightRecency        = 0.10
	weightImplementation = 0.10
)

// reasonThreshold is the minimum weighted contribution a component needs
// before its reason appears in the output.
const reasonThreshold = 0.05

const (
	defaultEstablishedCitations = 500
	defaultSaturationCitations  = 1000
)

// educationalKeywords flag survey/tutorial-style papers, a proxy for
// beginner-friendly content.
var educationalKeywords = []string{
	"survey", "review", "introduction", "tutorial", "overview",
	"primer", "guide", "fundamentals", "basics",
}

// Reason pairs a human-readable explanation with the weighted
// contribution of the component that produced it.
type Reason struct {
	Text         string  `json:"text" yaml:"text"`
	Contribution float64 `json:"contribution" yaml:"contribution"`
}

// Result is the scorer's output for one (profile, article) pair.
type Result struct {
	// Total is the weighted sum of all components, clamped to [0, 1].
	Total float64 `json:"total" yaml:"total"`

	// Reasons lists components whose weighted contribution exceeds the
	// visibility threshold, ordered by contribution descending.
	Reasons []Reason `json:"reasons,omitempty" yaml:"reasons,omitempty"`
}

// component is one scored signal before weighting. An empty reason
// suppresses the component from the explanation regardless of value.
type component struct {
	raw    float64
	weight float64
	reason string
}

// Scorer evaluates articles against a profile using fixed component
// weights and configurable citation thresholds.
type Scorer struct {
	established int
	saturation  int
}

// New builds a Scorer, filling zero config values with defaults.
func New(cfg types.ScoringConfig) *Scorer {
	s := &Scorer{
		established: cfg.EstablishedCitations,
		saturation:  cfg.SaturationCitations,
	}
	if s.established <= 0 {
		s.established = defaultEstablishedCitations
	}
	if s.saturation <= 0 {
		s.saturation = defaultSaturationCitations
	}
	return s
}

// Score computes the weighted score for an article. now anchors recency
// and age computations; lookback is the candidate window whose far edge
// maps to a recency of zero.
func (s *Scorer) Score(profile types.Profile, a *types.Article, now time.Time, lookback time.Duration) Result {
	components := []component{
		s.topicComponent(profile, a),
		s.citationComponent(a),
		s.skillComponent(profile, a, now),
		s.sourceComponent(profile, a),
		s.recencyComponent(a, now, lookback),
		s.implementationComponent(a),
	}

	var (
		total   float64
		reasons []Reason
	)
	for _, c := range components {
		contribution := c.raw * c.weight
		total += contribution
		if c.reason != "" && contribution > reasonThreshold {
			reasons = append(reasons, Reason{Text: c.reason, Contribution: contribution})
		}
	}

	sort.SliceStable(reasons, func(i, j int) bool {
		return reasons[i].Contribution > reasons[j].Contribution
	})

	return Result{Total: clamp01(total), Reasons: reasons}
}

func (s *Scorer) topicComponent(profile types.Profile, a *types.Article) component {
	raw, matched := topicMatch(profile.Interests, a.Topics)
	c := component{raw: raw, weight: weightTopics}
	if matched > 0 {
		c.reason = fmt.Sprintf("Matches %d of your %d interests", matched, len(profile.Interests))
	}
	return c
}

func (s *Scorer) citationComponent(a *types.Article) component {
	c := component{raw: s.citationImpact(a.Citations()), weight: weightCitations}
	if c.raw > 0 {
		c.reason = fmt.Sprintf("High impact (%d citations)", a.Citations())
	}
	return c
}

func (s *Scorer) skillComponent(profile types.Profile, a *types.Article, now time.Time) component {
	c := component{
		raw:    s.skillMatch(profile.SkillLevel, a, now),
		weight: weightSkill,
	}
	// The 0.5 baseline carries no signal, so it earns no explanation.
	switch {
	case c.raw >= 0.9 && profile.SkillLevel == types.SkillBeginner:
		c.reason = "Good for beginners"
	case c.raw >= 0.9 && profile.SkillLevel == types.SkillAdvanced:
		c.reason = "Cutting-edge research"
	case c.raw > 0.5:
		c.reason = "Fits your skill level"
	}
	return c
}

func (s *Scorer) sourceComponent(profile types.Profile, a *types.Article) component {
	// Neutral when the user has expressed no preference at all.
	c := component{raw: 0.5, weight: weightSource}
	if len(profile.PreferredSources) > 0 {
		if profile.PrefersSource(a.Source) {
			c.raw = 1.0
			c.reason = "From preferred source"
		} else {
			c.raw = 0.0
		}
	}
	return c
}

func (s *Scorer) recencyComponent(a *types.Article, now time.Time, lookback time.Duration) component {
	c := component{raw: recency(a.Published, now, lookback), weight: weightRecency}
	if c.raw > 0.8 {
		c.reason = "Recently published"
	}
	return c
}

func (s *Scorer) implementationComponent(a *types.Article) component {
	c := component{weight: weightImplementation}
	if a.HasImplementation {
		c.raw = 1.0
		c.reason = "Has code implementation"
	}
	return c
}

// topicMatch returns the fraction of profile interests that match an
// article topic (substring in either direction, case-insensitive) and
// the number of matched interests.
func topicMatch(interests, topics []string) (float64, int) {
	if len(interests) == 0 || len(topics) == 0 {
		return 0, 0
	}

	lowerTopics := make([]string, len(topics))
	for i, t := range topics {
		lowerTopics[i] = strings.ToLower(t)
	}

	matched := 0
	for _, interest := range interests {
		li := strings.ToLower(interest)
		for _, topic := range lowerTopics {
			if strings.Contains(topic, li) || strings.Contains(li, topic) {
				matched++
				break
			}
		}
	}
	return math.Min(float64(matched)/float64(len(interests)), 1.0), matched
}

// citationImpact maps a citation count onto [0, 1] with logarithmic
// scaling that saturates at the configured citation ceiling.
func (s *Scorer) citationImpact(citations int) float64 {
	if citations <= 0 {
		return 0
	}
	return math.Min(math.Log10(float64(citations))/math.Log10(float64(s.saturation)), 1.0)
}

// recency decays linearly from 1.0 at publication = now to 0.0 at the
// far edge of the lookback window. An unknown date scores zero.
func recency(published, now time.Time, lookback time.Duration) float64 {
	if published.IsZero() || lookback <= 0 {
		return 0
	}
	age := now.Sub(published)
	if age < 0 {
		return 1.0
	}
	return clamp01(1.0 - float64(age)/float64(lookback))
}

// skillMatch estimates how well a paper fits the user's skill level.
// Beginners get surveys, implementations, and well-established papers.
// Advanced users get recent work with early citation traction and a
// slight penalty on very old, very highly-cited classics. Intermediate
// is a flat baseline.
func (s *Scorer) skillMatch(level types.SkillLevel, a *types.Article, now time.Time) float64 {
	ageDays := -1
	if !a.Published.IsZero() {
		ageDays = int(now.Sub(a.Published).Hours() / 24)
	}

	switch level {
	case types.SkillBeginner:
		if hasEducationalKeyword(a) {
			return 1.0
		}
		switch c := a.Citations(); {
		case c > s.established:
			return 0.9
		case c > 100:
			return 0.8
		case c > 50:
			return 0.6
		}
		if a.HasImplementation {
			return 0.7
		}
		if ageDays >= 0 && ageDays < 90 {
			// Very recent papers are rarely foundational.
			return 0.4
		}
		return 0.5

	case types.SkillAdvanced:
		if hasEducationalKeyword(a) {
			return 0.2
		}
		c := a.Citations()
		switch {
		case ageDays >= 0 && ageDays < 180:
			if c > 0 && c < s.saturation {
				// Recent with early traction: the novelty signal.
				return 1.0
			}
			return 0.9
		case ageDays >= 0 && ageDays < 365:
			return 0.7
		case ageDays > 3*365 && c > s.saturation:
			return 0.3
		}
		return 0.5

	default:
		return 0.5
	}
}

func hasEducationalKeyword(a *types.Article) bool {
	text := strings.ToLower(a.Title + " " + a.Abstract)
	for _, kw := range educationalKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
