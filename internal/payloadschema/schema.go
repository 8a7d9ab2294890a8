// Package payloadschema generates the JSON Schema for the request body of
// the solve endpoints and validates documents against it, in the style of
// pkg/ottrecsimple's json_test.go (compile with
// santhosh-tekuri/jsonschema/v6, not a hand-rolled validator) but hand-
// written rather than reflection-generated: the request type here is a
// small, stable struct, not an open-ended scraped-data model. No schema is
// generated for the response body.
package payloadschema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// SchemaID, if set, is included as "$id" in the generated schema.
var SchemaID string

func timeString() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^([01][0-9]|2[0-3]):[0-5][0-9]$`,
	}
}

func timeRangeSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"start_time":  timeString(),
			"end_time":    timeString(),
			"day_indexes": map[string]any{"type": "array", "items": map[string]any{"type": "integer", "minimum": 0, "maximum": 6}},
		},
		"required": []string{"start_time", "end_time", "day_indexes"},
	}
}

// PayloadSchema returns the JSON Schema (draft 2020-12) for
// fieldopt.FieldOptimizerPayload (spec §6.1 request body).
func PayloadSchema() []byte {
	schema := map[string]any{
		"$schema":     "https://json-schema.org/draft/2020-12/schema",
		"title":       "Field Optimizer Request",
		"description": "Scheduling request: stadiums, teams, and pre-committed activities over a wall-clock window",
		"type":        "object",
		"properties": map[string]any{
			"start_time": timeString(),
			"end_time":   timeString(),
			"stadiums": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":   map[string]any{"type": "string"},
						"name": map[string]any{"type": "string"},
						"size": map[string]any{"type": "integer", "minimum": 0},
					},
					"required": []string{"id", "name", "size"},
				},
			},
			"teams": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":                        map[string]any{"type": "string"},
						"name":                      map[string]any{"type": "string"},
						"min_number_of_activities":  map[string]any{"type": "integer", "minimum": 0},
						"max_number_of_activities":  map[string]any{"type": "integer", "minimum": 0},
						"duration":                  map[string]any{"type": "integer", "minimum": 1},
						"size_required":             map[string]any{"type": "integer", "minimum": 0},
						"priority":                  map[string]any{"type": "number"},
						"time_range":                timeRangeSchema(),
						"time_ranges":               map[string]any{"type": "array", "items": timeRangeSchema()},
						"preferred_stadium_ids": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					},
					"required": []string{"id", "name", "min_number_of_activities", "max_number_of_activities", "duration", "size_required", "priority", "time_range"},
				},
			},
			"existing_team_activities": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"team_id":        map[string]any{"type": "string"},
						"stadium_id":     map[string]any{"type": "string"},
						"start_timeslot": map[string]any{"type": "integer", "minimum": 1},
						"end_timeslot":   map[string]any{"type": "integer", "minimum": 1},
						"duration_slots": map[string]any{"type": "integer", "minimum": 1},
						"size_required":  map[string]any{"type": "integer", "minimum": 0},
					},
					"required": []string{"team_id", "stadium_id", "start_timeslot", "end_timeslot", "duration_slots"},
				},
			},
			"incompatible_groups": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "minItems": 2, "maxItems": 2},
			},
			"incompatible_groups_same_day": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "minItems": 2, "maxItems": 2},
			},
			"extended_time": map[string]any{"type": "boolean"},
		},
		"required": []string{"start_time", "end_time", "stadiums", "teams"},
	}
	if SchemaID != "" {
		schema["$id"] = SchemaID
	}
	b, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	return b
}

// Compile compiles id/buf into a *jsonschema.Schema, mirroring
// pkg/ottrecsimple/json_test.go's compileSchema helper.
func Compile(id string, buf []byte) (*jsonschema.Schema, error) {
	obj, err := jsonschema.UnmarshalJSON(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	cmp := jsonschema.NewCompiler()
	if err := cmp.AddResource(id, obj); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	sch, err := cmp.Compile(id)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return sch, nil
}

// Validate parses buf as JSON and validates it against sch.
func Validate(sch *jsonschema.Schema, buf []byte) error {
	obj, err := jsonschema.UnmarshalJSON(bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return sch.Validate(obj)
}
