package domain

// Scorecard is the structured evaluation of one resume. Every key is always
// serialized; scalars are null when unknown and lists are empty, never null.
type Scorecard struct {
	MatchScore         *float64           `json:"match_score"`
	OverallScore       *float64           `json:"overall_score"`
	Summary            *string            `json:"summary"`
	SkillGapAnalysis   []string           `json:"skill_gap_analysis"`
	BasicInformation   BasicInformation   `json:"basic_information"`
	ExperienceAnalysis ExperienceAnalysis `json:"experience_analysis"`
	SkillsetEvaluation SkillsetEvaluation `json:"skillset_evaluation"`
	PositiveIndicators []string           `json:"positive_indicators"`
	RedFlags           []string           `json:"red_flags"`
	PersonalitySignals []string           `json:"personality_signals"`
	CulturalFitSummary *string            `json:"cultural_fit_summary"`
}

type BasicInformation struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	LinkedIn *string `json:"linkedin"`
}

type ExperienceAnalysis struct {
	SeniorityProgression []string `json:"seniority_progression"`
	TenureSummary        *string  `json:"tenure_summary"`
	JobHoppingFlag       *bool    `json:"job_hopping_flag"`
	RelevantDomains      []string `json:"relevant_domains"`
}

type SkillsetEvaluation struct {
	HardSkills     []string `json:"hard_skills"`
	SoftSkills     []string `json:"soft_skills"`
	Certifications []string `json:"certifications"`
}

// Score returns the ranking score: the match score when present, otherwise
// the standalone overall score.
func (s Scorecard) Score() *float64 {
	if s.MatchScore != nil {
		return s.MatchScore
	}
	return s.OverallScore
}

// EnsureLists replaces nil slices with empty ones so that lists serialize as [].
func (s *Scorecard) EnsureLists() {
	for _, l := range []*[]string{
		&s.SkillGapAnalysis,
		&s.ExperienceAnalysis.SeniorityProgression,
		&s.ExperienceAnalysis.RelevantDomains,
		&s.SkillsetEvaluation.HardSkills,
		&s.SkillsetEvaluation.SoftSkills,
		&s.SkillsetEvaluation.Certifications,
		&s.PositiveIndicators,
		&s.RedFlags,
		&s.PersonalitySignals,
	} {
		if *l == nil {
			*l = []string{}
		}
	}
}
