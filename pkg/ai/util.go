package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

func stripDuplicateLeadingBrace(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		rest := strings.TrimSpace(s[1:])
		if strings.HasPrefix(rest, "{") {
			return rest
		}
	}
	return s
}

// UnmarshalFlexible unmarshals model-produced JSON into out. Plain JSON is
// tried first, then a double-encoded JSON string, then a repaired version of
// the input.
//
//	var args map[string]any
//	UnmarshalFlexible(`{"query": "Who leads Project Alpha?"}`, &args)  // plain
//	UnmarshalFlexible(`"{\"query\": \"Alpha\"}"`, &args)               // double-encoded
//	UnmarshalFlexible(`{query: 'Alpha',}`, &args)                      // repaired
func UnmarshalFlexible(input string, out any) error {
	input = strings.TrimSpace(input)

	if err := json.Unmarshal([]byte(input), out); err == nil {
		return nil
	}

	var asString string
	if err := json.Unmarshal([]byte(input), &asString); err == nil {
		asString = strings.TrimSpace(asString)
		if err := json.Unmarshal([]byte(asString), out); err == nil {
			return nil
		}
		input = asString
	}

	input = stripDuplicateLeadingBrace(input)
	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return fmt.Errorf("json repair failed: %w (input: %s)", err, input)
	}

	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("unmarshal failed after repair: input=%s repaired=%s: %w", input, repaired, err)
	}
	return nil
}

// ToolArguments decodes the arguments of a tool call into a JSON object.
// Empty input yields an empty object.
func ToolArguments(input string) (map[string]any, error) {
	args := map[string]any{}
	if strings.TrimSpace(input) == "" {
		return args, nil
	}
	if err := UnmarshalFlexible(input, &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
