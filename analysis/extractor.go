package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/xeipuuv/gojsonschema"

	"resume-ranker/domain"
)

// Method names the step of the parse chain that produced a scorecard.
type Method string

const (
	MethodDirect Method = "direct"
	MethodFenced Method = "fenced"
	MethodBraced Method = "braced"
)

// Extraction is a parsed and normalized scorecard.
type Extraction struct {
	Scorecard     domain.Scorecard
	Method        Method
	TrailingBytes int
}

var fencedBlock = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// keyAliases maps canonicalized keys that differ from the contract spelling.
var keyAliases = map[string]string{
	"linked_in": "linkedin",
}

var (
	compiledSchema     *gojsonschema.Schema
	compiledSchemaErr  error
	compiledSchemaOnce sync.Once
)

func scorecardSchema() (*gojsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		compiledSchema, compiledSchemaErr = gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema()))
	})
	return compiledSchema, compiledSchemaErr
}

// Extract turns the raw LLM reply into a scorecard. It tries, in order, the
// whole trimmed text, the first fenced code block and the span from the first
// '{' to the last '}'. The first candidate that parses as a JSON object wins.
func Extract(raw string) (*Extraction, error) {
	obj, method, trailing, ok := parseCandidate(raw)
	if !ok {
		return nil, &domain.ExtractionFailure{Reason: "malformed JSON", RawText: raw}
	}

	obj = canonicalizeKeys(obj).(map[string]interface{})
	complete(obj, scorecardContract)

	s, err := scorecardSchema()
	if err != nil {
		return nil, fmt.Errorf("compile scorecard schema: %w", err)
	}
	result, err := s.Validate(gojsonschema.NewGoLoader(obj))
	if err != nil {
		return nil, &domain.ExtractionFailure{Reason: "schema violation", RawText: raw, Details: []string{err.Error()}}
	}
	if !result.Valid() {
		details := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			details[i] = desc.String()
		}
		return nil, &domain.ExtractionFailure{Reason: "schema violation", RawText: raw, Details: details}
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, &domain.ExtractionFailure{Reason: "schema violation", RawText: raw, Details: []string{err.Error()}}
	}
	var card domain.Scorecard
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, &domain.ExtractionFailure{Reason: "schema violation", RawText: raw, Details: []string{err.Error()}}
	}
	card.EnsureLists()

	return &Extraction{Scorecard: card, Method: method, TrailingBytes: trailing}, nil
}

func parseCandidate(raw string) (map[string]interface{}, Method, int, bool) {
	trimmed := strings.TrimSpace(raw)

	dec := json.NewDecoder(strings.NewReader(trimmed))
	var v interface{}
	if err := dec.Decode(&v); err == nil {
		if obj, ok := v.(map[string]interface{}); ok {
			rest := strings.TrimSpace(trimmed[dec.InputOffset():])
			return obj, MethodDirect, len(rest), true
		}
	}

	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		if obj, ok := parseObject(m[1]); ok {
			return obj, MethodFenced, 0, true
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		if obj, ok := parseObject(raw[start : end+1]); ok {
			return obj, MethodBraced, 0, true
		}
	}
	return nil, "", 0, false
}

func parseObject(s string) (map[string]interface{}, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// canonicalizeKeys rewrites every object key to snake_case. A key already in
// canonical form wins over a converted duplicate.
func canonicalizeKeys(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if canonicalKey(k) == k {
				out[k] = canonicalizeKeys(val)
			}
		}
		for k, val := range t {
			ck := canonicalKey(k)
			if ck == k {
				continue
			}
			if _, exists := out[ck]; !exists {
				out[ck] = canonicalizeKeys(val)
			}
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = canonicalizeKeys(item)
		}
		return out
	}
	return v
}

func canonicalKey(k string) string {
	s := snakeCase(k)
	if alias, ok := keyAliases[s]; ok {
		return alias
	}
	return s
}

func snakeCase(s string) string {
	runes := []rune(strings.TrimSpace(s))
	var b strings.Builder
	for i, r := range runes {
		switch {
		case r == '-' || r == ' ':
			b.WriteRune('_')
		case unicode.IsUpper(r):
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteRune('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeScore maps a raw score onto the 0-10 scale. Values above 10 are
// taken to be on a 0-100 scale and divided by 10 once, so 150 becomes 15.
// Numeric strings ("85", "8.5/10", "85%") are parsed; anything else becomes
// null.
func normalizeScore(v interface{}) interface{} {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, ok := parseScore(t)
		if !ok {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	if f > 10 {
		f /= 10
	}
	return f
}

func parseScore(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	if i := strings.Index(s, "/"); i != -1 {
		s = s[:i]
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
