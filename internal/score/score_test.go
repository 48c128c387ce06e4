// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-scout/pkg/types"
)

var (
	testNow      = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	testLookback = 30 * 24 * time.Hour
)

func testScorer() *Scorer {
	return New(types.ScoringConfig{})
}

func intPtr(v int) *int { return &v }

func TestWeightsSumToOne(t *testing.T) {
	sum := weightTopics + weightCitations + weightSkill +
		weightSource + weightRecency + weightImplementation
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestPerfectArticleScoresOne(t *testing.T) {
	profile := types.Profile{
		Interests:        []string{"transformers"},
		SkillLevel:       types.SkillBeginner,
		PreferredSources: []types.Source{types.SourceArxiv},
	}
	a := &types.Article{
		Source:            types.SourceArxiv,
		Title:             "A Survey of Transformer Architectures",
		Topics:            []string{"Transformers"},
		Published:         testNow,
		CitationCount:     intPtr(1000),
		HasImplementation: true,
	}

	res := testScorer().Score(profile, a, testNow, testLookback)
	assert.InDelta(t, 1.0, res.Total, 1e-9)
}

func TestMissingSignalsScoreZero(t *testing.T) {
	// No topics, no citations, no date, no implementation: every
	// affected component contributes zero rather than erroring.
	profile := types.Profile{SkillLevel: types.SkillIntermediate}
	a := &types.Article{Source: types.SourceRSS, Title: "untitled"}

	res := testScorer().Score(profile, a, testNow, testLookback)

	// Only the neutral source score (0.5 * 0.10) and the intermediate
	// skill baseline (0.5 * 0.15) remain.
	assert.InDelta(t, 0.125, res.Total, 1e-9)
}

func TestTopicMatching(t *testing.T) {
	cases := []struct {
		name      string
		interests []string
		topics    []string
		want      float64
	}{
		{"full match case-insensitive", []string{"transformers"}, []string{"Transformers", "Attention"}, 1.0},
		{"substring either direction", []string{"learning"}, []string{"Machine Learning"}, 1.0},
		{"half match", []string{"transformers", "robotics"}, []string{"Transformers"}, 0.5},
		{"no match", []string{"biology"}, []string{"Transformers"}, 0.0},
		{"no interests", nil, []string{"Transformers"}, 0.0},
		{"no topics", []string{"transformers"}, nil, 0.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := topicMatch(tc.interests, tc.topics)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestCitationImpact(t *testing.T) {
	s := testScorer()

	assert.Equal(t, 0.0, s.citationImpact(0))
	assert.Equal(t, 0.0, s.citationImpact(-5))
	assert.InDelta(t, 1.0/3.0, s.citationImpact(10), 1e-9)
	assert.InDelta(t, 2.0/3.0, s.citationImpact(100), 1e-9)
	assert.InDelta(t, 1.0, s.citationImpact(1000), 1e-9)
	assert.InDelta(t, 1.0, s.citationImpact(50000), 1e-9, "impact saturates at the ceiling")
}

func TestRecencyDecay(t *testing.T) {
	day := 24 * time.Hour

	assert.InDelta(t, 1.0, recency(testNow, testNow, testLookback), 1e-9)
	assert.InDelta(t, 0.5, recency(testNow.Add(-15*day), testNow, testLookback), 1e-9)
	assert.InDelta(t, 0.0, recency(testNow.Add(-30*day), testNow, testLookback), 1e-9)
	assert.InDelta(t, 0.0, recency(testNow.Add(-90*day), testNow, testLookback), 1e-9)
	assert.Equal(t, 0.0, recency(time.Time{}, testNow, testLookback), "unknown date scores zero")
	assert.InDelta(t, 1.0, recency(testNow.Add(day), testNow, testLookback), 1e-9, "future dates clamp to fresh")
}

func TestSkillMatchBeginner(t *testing.T) {
	s := testScorer()
	old := testNow.AddDate(-2, 0, 0)

	survey := &types.Article{Title: "A Survey of Deep Learning", Published: old}
	assert.Equal(t, 1.0, s.skillMatch(types.SkillBeginner, survey, testNow))

	established := &types.Article{Title: "ResNet", Published: old, CitationCount: intPtr(5000)}
	assert.Equal(t, 0.9, s.skillMatch(types.SkillBeginner, established, testNow))

	withCode := &types.Article{Title: "New Method", Published: old, HasImplementation: true}
	assert.Equal(t, 0.7, s.skillMatch(types.SkillBeginner, withCode, testNow))

	brandNew := &types.Article{Title: "New Method", Published: testNow.AddDate(0, 0, -10)}
	assert.Equal(t, 0.4, s.skillMatch(types.SkillBeginner, brandNew, testNow))
}

func TestSkillMatchAdvanced(t *testing.T) {
	s := testScorer()

	novel := &types.Article{Title: "New Method", Published: testNow.AddDate(0, 0, -60), CitationCount: intPtr(40)}
	assert.Equal(t, 1.0, s.skillMatch(types.SkillAdvanced, novel, testNow),
		"recent paper with early traction is the strongest advanced signal")

	recentUncited := &types.Article{Title: "New Method", Published: testNow.AddDate(0, 0, -60)}
	assert.Equal(t, 0.9, s.skillMatch(types.SkillAdvanced, recentUncited, testNow))

	oldClassic := &types.Article{Title: "Old Classic", Published: testNow.AddDate(-8, 0, 0), CitationCount: intPtr(30000)}
	assert.Equal(t, 0.3, s.skillMatch(types.SkillAdvanced, oldClassic, testNow),
		"very old, very highly-cited papers are penalized for advanced users")

	survey := &types.Article{Title: "A Survey of Deep Learning", Published: testNow.AddDate(0, 0, -30)}
	assert.Equal(t, 0.2, s.skillMatch(types.SkillAdvanced, survey, testNow))
}

func TestSkillMatchIntermediate(t *testing.T) {
	s := testScorer()
	a := &types.Article{Title: "Anything", Published: testNow.AddDate(0, 0, -5), CitationCount: intPtr(9000)}
	assert.Equal(t, 0.5, s.skillMatch(types.SkillIntermediate, a, testNow))
}

func TestSkillReasonOnlyWhenNotable(t *testing.T) {
	s := testScorer()

	// The intermediate 0.5 baseline says nothing about the article, so a
	// zero-signal paper stays reason-free.
	plain := &types.Article{Source: types.SourceRSS, Title: "untitled"}
	res := s.Score(types.Profile{SkillLevel: types.SkillIntermediate}, plain, testNow, testLookback)
	assert.Empty(t, res.Reasons)

	beginner := types.Profile{SkillLevel: types.SkillBeginner}
	survey := &types.Article{Source: types.SourceRSS, Title: "A Survey of Deep Learning"}
	res = s.Score(beginner, survey, testNow, testLookback)
	assert.Contains(t, reasonTexts(res), "Good for beginners")

	withCode := &types.Article{Source: types.SourceRSS, Title: "New Method",
		Published: testNow.AddDate(-2, 0, 0), HasImplementation: true}
	res = s.Score(beginner, withCode, testNow, testLookback)
	assert.Contains(t, reasonTexts(res), "Fits your skill level")
}

func reasonTexts(res Result) []string {
	texts := make([]string, len(res.Reasons))
	for i, r := range res.Reasons {
		texts[i] = r.Text
	}
	return texts
}

func TestReasonsOrderedAndThresholded(t *testing.T) {
	profile := types.Profile{
		Interests:        []string{"transformers"},
		SkillLevel:       types.SkillIntermediate,
		PreferredSources: []types.Source{types.SourceArxiv},
	}
	a := &types.Article{
		Source:        types.SourceArxiv,
		Title:         "Attention Models",
		Topics:        []string{"Transformers"},
		Published:     testNow.AddDate(0, 0, -1),
		CitationCount: intPtr(1000),
	}

	res := testScorer().Score(profile, a, testNow, testLookback)
	require.NotEmpty(t, res.Reasons)

	for i := 1; i < len(res.Reasons); i++ {
		assert.GreaterOrEqual(t, res.Reasons[i-1].Contribution, res.Reasons[i].Contribution,
			"reasons sorted by contribution descending")
	}
	for _, r := range res.Reasons {
		assert.Greater(t, r.Contribution, reasonThreshold)
	}

	// Topic match (0.35) dominates everything else here.
	assert.Equal(t, "Matches 1 of your 1 interests", res.Reasons[0].Text)
}

func TestPreferredSourceOnlyFlaggedWhenMatched(t *testing.T) {
	profile := types.Profile{
		SkillLevel:       types.SkillIntermediate,
		PreferredSources: []types.Source{types.SourceArxiv},
	}
	preferred := &types.Article{Source: types.SourceArxiv, Title: "x"}
	other := &types.Article{Source: types.SourceRSS, Title: "x"}

	s := testScorer()
	withPref := s.Score(profile, preferred, testNow, testLookback)
	withoutPref := s.Score(profile, other, testNow, testLookback)

	assert.InDelta(t, 0.10, withPref.Total-withoutPref.Total, 1e-9)
	for _, r := range withoutPref.Reasons {
		assert.NotEqual(t, "From preferred source", r.Text)
	}
}

func TestScoreDeterministic(t *testing.T) {
	profile := types.DefaultProfile(testNow)
	profile.Interests = []string{"reinforcement learning", "robotics"}
	a := &types.Article{
		Source:            types.SourceSemanticScholar,
		Title:             "Robot Learning in the Wild",
		Topics:            []string{"Robotics", "Reinforcement Learning"},
		Published:         testNow.AddDate(0, 0, -7),
		CitationCount:     intPtr(42),
		HasImplementation: true,
	}

	s := testScorer()
	first := s.Score(profile, a, testNow, testLookback)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, s.Score(profile, a, testNow, testLookback))
	}
}
