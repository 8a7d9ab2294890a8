package payloadschema

import "testing"

func TestPayloadSchemaCompiles(t *testing.T) {
	buf := PayloadSchema()
	if len(buf) == 0 {
		t.Fatal("empty schema")
	}
	if _, err := Compile("https://fieldopt.example/schema/payload.json", buf); err != nil {
		t.Fatalf("failed to compile schema: %v", err)
	}
}

func TestValidMinimalPayload(t *testing.T) {
	sch, err := Compile("https://fieldopt.example/schema/payload.json", PayloadSchema())
	if err != nil {
		t.Fatal(err)
	}
	doc := []byte(`{
		"start_time": "00:00", "end_time": "01:00",
		"stadiums": [{"id": "F1", "name": "Field 1", "size": 1}],
		"teams": [{
			"id": "T1", "name": "Team 1", "min_number_of_activities": 0, "max_number_of_activities": 1,
			"duration": 2, "size_required": 1, "priority": 1,
			"time_range": {"start_time": "00:00", "end_time": "01:00", "day_indexes": [0]}
		}]
	}`)
	if err := Validate(sch, doc); err != nil {
		t.Fatalf("expected valid payload, got: %v", err)
	}
}

func TestInvalidPayloadMissingRequired(t *testing.T) {
	sch, err := Compile("https://fieldopt.example/schema/payload2.json", PayloadSchema())
	if err != nil {
		t.Fatal(err)
	}
	doc := []byte(`{"start_time": "00:00"}`)
	if err := Validate(sch, doc); err == nil {
		t.Fatal("expected validation error for missing required fields")
	}
}

func TestInvalidTimeFormat(t *testing.T) {
	sch, err := Compile("https://fieldopt.example/schema/payload3.json", PayloadSchema())
	if err != nil {
		t.Fatal(err)
	}
	doc := []byte(`{
		"start_time": "9am", "end_time": "01:00",
		"stadiums": [{"id": "F1", "name": "Field 1", "size": 1}],
		"teams": []
	}`)
	if err := Validate(sch, doc); err == nil {
		t.Fatal("expected validation error for malformed time string")
	}
}
