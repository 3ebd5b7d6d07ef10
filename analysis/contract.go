package analysis

import (
	"encoding/json"
	"strconv"
	"strings"

	"resume-ranker/domain"
)

// ContractVersion is stored with every resume so records produced under an
// older prompt/schema pair can be told apart.
const ContractVersion = "2"

type kind int

const (
	kindString kind = iota
	kindNumber
	kindBool
	kindList
	kindObject
)

// field is one key of the scorecard contract. The prompt template, the
// completion defaults and the JSON schema are all generated from this tree.
type field struct {
	name     string
	kind     kind
	modes    []domain.AnalysisMode // nil means every mode
	children []field
}

var scorecardContract = []field{
	{name: "match_score", kind: kindNumber, modes: []domain.AnalysisMode{domain.ModeComparative}},
	{name: "overall_score", kind: kindNumber, modes: []domain.AnalysisMode{domain.ModeStandalone}},
	{name: "summary", kind: kindString},
	{name: "skill_gap_analysis", kind: kindList, modes: []domain.AnalysisMode{domain.ModeComparative}},
	{name: "basic_information", kind: kindObject, children: []field{
		{name: "name", kind: kindString},
		{name: "email", kind: kindString},
		{name: "phone", kind: kindString},
		{name: "linkedin", kind: kindString},
	}},
	{name: "experience_analysis", kind: kindObject, children: []field{
		{name: "seniority_progression", kind: kindList},
		{name: "tenure_summary", kind: kindString},
		{name: "job_hopping_flag", kind: kindBool},
		{name: "relevant_domains", kind: kindList},
	}},
	{name: "skillset_evaluation", kind: kindObject, children: []field{
		{name: "hard_skills", kind: kindList},
		{name: "soft_skills", kind: kindList},
		{name: "certifications", kind: kindList},
	}},
	{name: "positive_indicators", kind: kindList},
	{name: "red_flags", kind: kindList},
	{name: "cultural_fit_summary", kind: kindString},
	{name: "personality_signals", kind: kindList},
}

func (f field) in(mode domain.AnalysisMode) bool {
	if f.modes == nil {
		return true
	}
	for _, m := range f.modes {
		if m == mode {
			return true
		}
	}
	return false
}

// template renders the JSON skeleton the model is asked to fill for mode.
func template(mode domain.AnalysisMode) string {
	var b strings.Builder
	writeTemplate(&b, scorecardContract, mode, 1)
	return b.String()
}

func writeTemplate(b *strings.Builder, fields []field, mode domain.AnalysisMode, depth int) {
	indent := strings.Repeat("  ", depth)
	var selected []field
	for _, f := range fields {
		if f.in(mode) {
			selected = append(selected, f)
		}
	}

	b.WriteString("{\n")
	for i, f := range selected {
		b.WriteString(indent)
		b.WriteString(`"` + f.name + `": `)
		switch f.kind {
		case kindString:
			b.WriteString(`"string | null"`)
		case kindNumber:
			b.WriteString(`number from 0 to 10 | null`)
		case kindBool:
			b.WriteString(`true | false | null`)
		case kindList:
			b.WriteString(`["string"]`)
		case kindObject:
			writeTemplate(b, f.children, mode, depth+1)
		}
		if i < len(selected)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat("  ", depth-1))
	b.WriteString("}")
}

// complete fills every contract key missing from obj and coerces present
// values to the contract type: scalars become null, lists become empty.
// Scores go through normalizeScore, booleans accept yes/no and true/false
// strings, and anything that still does not fit becomes null. Keys of every
// mode are completed so stored scorecards always carry the full key set.
// Unknown keys are kept.
func complete(obj map[string]interface{}, fields []field) {
	for _, f := range fields {
		v := obj[f.name]
		switch f.kind {
		case kindList:
			obj[f.name] = stringList(v)
		case kindObject:
			child, isObj := v.(map[string]interface{})
			if !isObj {
				child = map[string]interface{}{}
				obj[f.name] = child
			}
			complete(child, f.children)
		case kindString:
			obj[f.name] = stringValue(v)
		case kindNumber:
			obj[f.name] = normalizeScore(v)
		case kindBool:
			obj[f.name] = boolValue(v)
		}
	}
}

func stringValue(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return nil
}

func boolValue(v interface{}) interface{} {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes":
			return true
		case "false", "no":
			return false
		}
	}
	return nil
}

// stringList turns v into a list of strings. A bare string becomes a single
// item list; null and other scalars become empty. Non-string items are
// rendered as compact JSON.
func stringList(v interface{}) []interface{} {
	switch t := v.(type) {
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, item := range t {
			switch it := item.(type) {
			case nil:
			case string:
				out = append(out, it)
			default:
				raw, err := json.Marshal(it)
				if err != nil {
					continue
				}
				out = append(out, string(raw))
			}
		}
		return out
	case string:
		if strings.TrimSpace(t) == "" {
			return []interface{}{}
		}
		return []interface{}{t}
	}
	return []interface{}{}
}

// schema returns the JSON schema every completed scorecard satisfies. Scores
// carry no range: normalization divides values above 10 once and keeps the
// result.
func schema() map[string]interface{} {
	return objectSchema(scorecardContract)
}

func objectSchema(fields []field) map[string]interface{} {
	props := make(map[string]interface{}, len(fields))
	required := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		required = append(required, f.name)
		switch f.kind {
		case kindString:
			props[f.name] = map[string]interface{}{"type": []interface{}{"string", "null"}}
		case kindNumber:
			props[f.name] = map[string]interface{}{"type": []interface{}{"number", "null"}}
		case kindBool:
			props[f.name] = map[string]interface{}{"type": []interface{}{"boolean", "null"}}
		case kindList:
			props[f.name] = map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			}
		case kindObject:
			props[f.name] = objectSchema(f.children)
		}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}
