package analysis

import (
	"fmt"

	"resume-ranker/domain"
)

const standaloneInstructions = `You are an experienced technical recruiter. The attached images are the pages of one candidate's resume, in order.
Evaluate the candidate on their own merits, without reference to any particular job.

Instructions:
- "overall_score" rates the overall strength of the profile from 0 to 10; decimals are allowed.
- Extract contact details exactly as written. Use null when a value is absent.
- Lists hold one short finding per item. Use an empty list [] when nothing applies.
- "job_hopping_flag" is true only when most roles lasted under a year.

Return ONLY a JSON object with exactly this structure, without markdown or commentary:
%s
`

const comparativeInstructions = `You are an experienced technical recruiter. The attached images are the pages of one candidate's resume, in order.
Evaluate how well the candidate fits the job below.

Job title:
%s

Job description:
---
%s
---

Instructions:
- "match_score" rates the fit from 0 to 10; decimals are allowed.
- "skill_gap_analysis" lists requirements of the job the candidate does not demonstrate.
- Extract contact details exactly as written. Use null when a value is absent.
- Lists hold one short finding per item. Use an empty list [] when nothing applies.
- "job_hopping_flag" is true only when most roles lasted under a year.

Return ONLY a JSON object with exactly this structure, without markdown or commentary:
%s
`

// BuildRequest assembles the LLM request for one resume. A nil job selects
// the standalone mode; otherwise the job title and description are embedded
// verbatim.
func BuildRequest(job *domain.JobDescription, images []domain.PageImage) domain.LLMRequest {
	if job == nil {
		return domain.LLMRequest{
			Prompt: fmt.Sprintf(standaloneInstructions, template(domain.ModeStandalone)),
			Images: images,
		}
	}
	return domain.LLMRequest{
		Prompt: fmt.Sprintf(comparativeInstructions, job.Title, job.Description, template(domain.ModeComparative)),
		Images: images,
	}
}

// ModeOf reports the analysis mode BuildRequest selects for job.
func ModeOf(job *domain.JobDescription) domain.AnalysisMode {
	if job == nil {
		return domain.ModeStandalone
	}
	return domain.ModeComparative
}
