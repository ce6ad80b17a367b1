package agent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/civitas-project/civitas/pkg/models"
)

// requiredDecisionFields are the seven keys a decision must carry.
// A single missing field invalidates the whole result.
var requiredDecisionFields = []string{
	"status", "priority", "user_assignees",
	"crew_assignees", "labels", "comment", "justification",
}

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ParseDecision extracts a DispatchDecision from the model's final text,
// tolerating formatting noise (prose around the JSON, markdown fences).
//
// Extraction is an ordered chain of attempts, each tried only if the
// previous failed to yield valid JSON:
//  1. the whole text as JSON,
//  2. the interior of a fenced code block,
//  3. the first balanced brace-delimited substring,
//  4. the best candidate run through jsonrepair.
//
// A successful parse is then validated for the presence of all seven
// required fields. Failures of either stage are OutputFormatError.
func ParseDecision(text string) (*models.DispatchDecision, error) {
	candidate, ok := extractJSONObject(text)
	if !ok {
		return nil, &OutputFormatError{Reason: "no JSON object found in final response"}
	}
	return validateDecision(candidate)
}

// extractJSONObject runs the fallback chain. Each attempt is pure.
func extractJSONObject(text string) (string, bool) {
	attempts := []func(string) (string, bool){
		wholeTextJSON,
		fencedBlockJSON,
		balancedBracesJSON,
		repairedJSON,
	}
	for _, attempt := range attempts {
		if candidate, ok := attempt(text); ok {
			return candidate, true
		}
	}
	return "", false
}

func wholeTextJSON(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if isJSONObject(trimmed) {
		return trimmed, true
	}
	return "", false
}

func fencedBlockJSON(text string) (string, bool) {
	match := fencedJSONPattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	if isJSONObject(match[1]) {
		return match[1], true
	}
	return "", false
}

// balancedBracesJSON finds the first balanced brace-delimited substring.
// Depth tracking skips braces inside JSON strings.
func balancedBracesJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := text[start : i+1]
				if isJSONObject(candidate) {
					return candidate, true
				}
				return "", false
			}
		}
	}
	return "", false
}

// repairedJSON is the last resort: hand the raw brace-delimited candidate
// (or the trimmed text) to the jsonrepair library, which fixes trailing
// commas, single quotes, unquoted keys, truncated objects and similar
// model output defects.
func repairedJSON(text string) (string, bool) {
	candidate := strings.TrimSpace(text)
	if start := strings.IndexByte(candidate, '{'); start > 0 {
		candidate = candidate[start:]
	}
	if candidate == "" {
		return "", false
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return "", false
	}
	repaired = strings.TrimSpace(repaired)
	if isJSONObject(repaired) {
		return repaired, true
	}
	return "", false
}

func isJSONObject(candidate string) bool {
	if !strings.HasPrefix(candidate, "{") {
		return false
	}
	var probe map[string]json.RawMessage
	return json.Unmarshal([]byte(candidate), &probe) == nil
}

// validateDecision enforces the output contract: all seven fields present
// and type-correct. No partial acceptance.
func validateDecision(candidate string) (*models.DispatchDecision, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return nil, &OutputFormatError{Reason: "final response is not a JSON object", Err: err}
	}

	for _, field := range requiredDecisionFields {
		if _, ok := fields[field]; !ok {
			return nil, &OutputFormatError{
				Reason: fmt.Sprintf("missing required output field: %s", field),
			}
		}
	}

	var decision models.DispatchDecision
	if err := json.Unmarshal([]byte(candidate), &decision); err != nil {
		return nil, &OutputFormatError{Reason: "output fields have wrong types", Err: err}
	}
	return &decision, nil
}
