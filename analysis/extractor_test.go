package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"

	"resume-ranker/domain"
)

const fullReply = `{
  "match_score": 7.5,
  "overall_score": null,
  "summary": "Solid backend engineer",
  "skill_gap_analysis": ["Kubernetes"],
  "basic_information": {"name": "Ada Lovelace", "email": "ada@example.com", "phone": null, "linkedin": "linkedin.com/in/ada"},
  "experience_analysis": {"seniority_progression": ["Junior", "Senior"], "tenure_summary": "3 roles over 8 years", "job_hopping_flag": false, "relevant_domains": ["fintech"]},
  "skillset_evaluation": {"hard_skills": ["Go", "SQL"], "soft_skills": ["mentoring"], "certifications": []},
  "positive_indicators": ["open source"],
  "red_flags": [],
  "cultural_fit_summary": "Collaborative",
  "personality_signals": ["curious"]
}`

func TestExtractIdentityOnWellFormedInput(t *testing.T) {
	ext, err := Extract(fullReply)
	require.NoError(t, err)
	assert.Equal(t, MethodDirect, ext.Method)
	assert.Zero(t, ext.TrailingBytes)

	var want domain.Scorecard
	require.NoError(t, json.Unmarshal([]byte(fullReply), &want))
	want.EnsureLists()
	assert.Equal(t, want, ext.Scorecard)
}

func TestExtractCompletesMissingKeys(t *testing.T) {
	ext, err := Extract(`{"summary": "short"}`)
	require.NoError(t, err)

	card := ext.Scorecard
	assert.Nil(t, card.MatchScore)
	assert.Nil(t, card.OverallScore)
	require.NotNil(t, card.Summary)
	assert.Equal(t, "short", *card.Summary)
	assert.Nil(t, card.BasicInformation.Name)
	assert.Nil(t, card.ExperienceAnalysis.JobHoppingFlag)
	assert.Equal(t, []string{}, card.SkillGapAnalysis)
	assert.Equal(t, []string{}, card.SkillsetEvaluation.HardSkills)
	assert.Equal(t, []string{}, card.RedFlags)

	data, err := json.Marshal(card)
	require.NoError(t, err)
	var keys map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &keys))
	for _, f := range scorecardContract {
		assert.Contains(t, keys, f.name)
	}
	assert.Equal(t, []interface{}{}, keys["positive_indicators"])
}

func TestExtractBracedFallbackWithCamelCaseKeys(t *testing.T) {
	raw := "noise {\"matchScore\": 85, \"summary\": \"ok\"}"

	ext, err := Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, MethodBraced, ext.Method)
	require.NotNil(t, ext.Scorecard.MatchScore)
	assert.Equal(t, 8.5, *ext.Scorecard.MatchScore)
	assert.Equal(t, "ok", *ext.Scorecard.Summary)
}

func TestExtractFencedFallback(t *testing.T) {
	raw := "Here is the evaluation:\n```json\n{\"matchScore\": 6, \"summary\": \"fine\"}\n```\nLet me know!"

	ext, err := Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, MethodFenced, ext.Method)
	require.NotNil(t, ext.Scorecard.MatchScore)
	assert.Equal(t, 6.0, *ext.Scorecard.MatchScore)
}

func TestExtractUntaggedFence(t *testing.T) {
	ext, err := Extract("```\n{\"overall_score\": 4}\n```")
	require.NoError(t, err)
	assert.Equal(t, MethodFenced, ext.Method)
	assert.Equal(t, 4.0, *ext.Scorecard.OverallScore)
}

func TestExtractDirectWithTrailingText(t *testing.T) {
	raw := `{"match_score": 9} I hope this helps.`

	ext, err := Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, MethodDirect, ext.Method)
	assert.Equal(t, len("I hope this helps."), ext.TrailingBytes)
	assert.Equal(t, 9.0, *ext.Scorecard.MatchScore)
}

func TestExtractMalformed(t *testing.T) {
	tests := []string{
		"I could not evaluate this resume.",
		"",
		"{not json at all}",
		"[1, 2, 3]",
	}
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			_, err := Extract(raw)
			require.Error(t, err)

			var failure *domain.ExtractionFailure
			require.ErrorAs(t, err, &failure)
			assert.Equal(t, "malformed JSON", failure.Reason)
			assert.Equal(t, raw, failure.RawText)
			assert.True(t, failure.Retryable())
		})
	}
}

func TestExtractCoercesMistypedValues(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, card domain.Scorecard)
	}{
		{
			name: "job hopping flag as yes/no",
			raw:  `{"match_score": 7, "experience_analysis": {"job_hopping_flag": "no"}}`,
			check: func(t *testing.T, card domain.Scorecard) {
				require.NotNil(t, card.ExperienceAnalysis.JobHoppingFlag)
				assert.False(t, *card.ExperienceAnalysis.JobHoppingFlag)
			},
		},
		{
			name: "job hopping flag as TRUE",
			raw:  `{"experienceAnalysis": {"jobHoppingFlag": " TRUE "}}`,
			check: func(t *testing.T, card domain.Scorecard) {
				require.NotNil(t, card.ExperienceAnalysis.JobHoppingFlag)
				assert.True(t, *card.ExperienceAnalysis.JobHoppingFlag)
			},
		},
		{
			name: "job hopping flag unrecognized",
			raw:  `{"experience_analysis": {"job_hopping_flag": "sometimes"}}`,
			check: func(t *testing.T, card domain.Scorecard) {
				assert.Nil(t, card.ExperienceAnalysis.JobHoppingFlag)
			},
		},
		{
			name: "job hopping flag as number",
			raw:  `{"experience_analysis": {"job_hopping_flag": 1}}`,
			check: func(t *testing.T, card domain.Scorecard) {
				assert.Nil(t, card.ExperienceAnalysis.JobHoppingFlag)
			},
		},
		{
			name: "summary as object",
			raw:  `{"match_score": 7, "summary": {"text": "x"}}`,
			check: func(t *testing.T, card domain.Scorecard) {
				assert.Nil(t, card.Summary)
				assert.Equal(t, 7.0, *card.MatchScore)
			},
		},
		{
			name: "name as list",
			raw:  `{"basic_information": {"name": ["Ada", "Lovelace"], "email": true}}`,
			check: func(t *testing.T, card domain.Scorecard) {
				assert.Nil(t, card.BasicInformation.Name)
				assert.Equal(t, "true", *card.BasicInformation.Email)
			},
		},
		{
			name: "section as scalar",
			raw:  `{"skillset_evaluation": "strong", "experience_analysis": null}`,
			check: func(t *testing.T, card domain.Scorecard) {
				assert.Equal(t, []string{}, card.SkillsetEvaluation.HardSkills)
				assert.Nil(t, card.ExperienceAnalysis.TenureSummary)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := Extract(tt.raw)
			require.NoError(t, err)
			tt.check(t, ext.Scorecard)
		})
	}
}

func TestCompletedObjectsAlwaysSatisfySchema(t *testing.T) {
	inputs := []string{
		`{"match_score": 150, "overall_score": -3}`,
		`{"summary": {"text": "x"}, "cultural_fit_summary": [1, 2]}`,
		`{"experience_analysis": {"job_hopping_flag": "maybe", "tenure_summary": {}}}`,
		`{"basic_information": [], "red_flags": 4, "skill_gap_analysis": {"a": 1}}`,
	}
	s, err := scorecardSchema()
	require.NoError(t, err)

	for _, raw := range inputs {
		var obj map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(raw), &obj))
		complete(obj, scorecardContract)

		result, err := s.Validate(gojsonschema.NewGoLoader(obj))
		require.NoError(t, err)
		assert.True(t, result.Valid(), "%s: %v", raw, result.Errors())
	}
}

func TestExtractScoreCoercion(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *float64
	}{
		{"numeric string", `{"match_score": "7.5"}`, ptr(7.5)},
		{"percentage string", `{"match_score": "85%"}`, ptr(8.5)},
		{"out of ten", `{"match_score": "8/10"}`, ptr(8.0)},
		{"unparseable string", `{"match_score": "high"}`, nil},
		{"boolean", `{"match_score": true}`, nil},
		{"object", `{"match_score": {"value": 8}}`, nil},
		{"above one hundred", `{"match_score": 150}`, ptr(15)},
		{"thousand", `{"match_score": 1000}`, ptr(100)},
		{"negative", `{"match_score": -3}`, ptr(-3)},
		{"percentage above one hundred", `{"match_score": "150%"}`, ptr(15)},
		{"null", `{"match_score": null}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := Extract(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ext.Scorecard.MatchScore)
		})
	}
}

func TestExtractCoercesListItems(t *testing.T) {
	ext, err := Extract(`{"red_flags": "gap in 2020", "positive_indicators": [{"what": "talks"}, null, "mentor"], "basicInformation": {"phone": 5551234, "linkedIn": "in/x"}}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"gap in 2020"}, ext.Scorecard.RedFlags)
	assert.Equal(t, []string{`{"what":"talks"}`, "mentor"}, ext.Scorecard.PositiveIndicators)
	assert.Equal(t, "5551234", *ext.Scorecard.BasicInformation.Phone)
	assert.Equal(t, "in/x", *ext.Scorecard.BasicInformation.LinkedIn)
}

func TestNormalizeScore(t *testing.T) {
	for _, v := range []float64{0, 1, 5.5, 10, 10.5, 42, 85, 100} {
		once := normalizeScore(v)
		twice := normalizeScore(once)
		assert.Equal(t, once, twice, "normalizing %v twice", v)

		if v > 10 {
			assert.Equal(t, v/10, once)
		} else {
			assert.Equal(t, v, once)
		}
	}
}

func TestNormalizeScoreDividesOnce(t *testing.T) {
	assert.Equal(t, 15.0, normalizeScore(150.0))
	assert.Equal(t, 100.0, normalizeScore(1000.0))
	assert.Equal(t, -3.0, normalizeScore(-3.0))
}

func TestCanonicalKey(t *testing.T) {
	tests := map[string]string{
		"matchScore":           "match_score",
		"match_score":          "match_score",
		"SkillGapAnalysis":     "skill_gap_analysis",
		"linkedIn":             "linkedin",
		"culturalFitSummary":   "cultural_fit_summary",
		"HTTPServer":           "http_server",
		"job-hopping-flag":     "job_hopping_flag",
		"seniorityProgression": "seniority_progression",
	}
	for in, want := range tests {
		assert.Equal(t, want, canonicalKey(in), in)
	}
}

func TestCanonicalizePrefersSnakeCaseDuplicate(t *testing.T) {
	ext, err := Extract(`{"matchScore": 2, "match_score": 9}`)
	require.NoError(t, err)
	assert.Equal(t, 9.0, *ext.Scorecard.MatchScore)
}

func ptr(f float64) *float64 { return &f }
