package fieldopt

import (
	"context"
	"testing"

	"github.com/fieldopt/fieldopt-server/pkg/solver/reference"
)

func testEngine() *Engine {
	return NewEngine(reference.New())
}

// E1: one team, one field, no pins -> solved, one activity, score >= 0.
func TestE1SolvedNoPins(t *testing.T) {
	payload := &FieldOptimizerPayload{
		StartTime: "00:00",
		EndTime:   "01:00",
		Stadiums:  []Stadium{{ID: "F1", Name: "Field 1", Size: 1}},
		Teams: []Team{{
			ID: "T1", Name: "Team 1", MinNumberOfActivities: 1, MaxNumberOfActivities: 1,
			Duration: 2, SizeRequired: 1, Priority: 1,
			TimeRange: TimeRange{StartTime: "00:00", EndTime: "01:00", DayIndexes: []int{0}},
		}},
	}
	res, err := testEngine().Solve(context.Background(), payload)
	if err != nil {
		t.Fatal(err)
	}
	if res.Result != StatusSolved {
		t.Fatalf("result = %v, want solved (error_message=%v)", res.Result, res.ErrorMessage)
	}
	if len(res.Activities) != 1 {
		t.Fatalf("expected 1 activity, got %d: %+v", len(res.Activities), res.Activities)
	}
	if res.Activities[0].Size != 1 {
		t.Fatalf("unexpected activity size: %+v", res.Activities[0])
	}
	if res.PreferenceScore == nil || *res.PreferenceScore < 0 {
		t.Fatalf("preference_score = %v, want >= 0", res.PreferenceScore)
	}
}

// E2: pin honoured exactly, shortfall zero. The pin (size_required=1,
// duration_slots=2) matches parent team T1 exactly, so splitGroups creates
// no subgroup and the pin lands directly on T1, which has min=max=1: T1's
// only placement is FixedY to the pin, and assemble suppresses any
// FieldAllocation whose (field, group, index) triple matches a pin. The
// pinned activity therefore never reappears in activities[]; honouring the
// pin is instead verified through a solved result with zero shortfall for
// T1 (mirroring pkg/solver/reference's TestSolveE2PinHonoured).
func TestE2PinHonoured(t *testing.T) {
	payload := &FieldOptimizerPayload{
		StartTime: "00:00",
		EndTime:   "01:00",
		Stadiums:  []Stadium{{ID: "F1", Name: "Field 1", Size: 1}},
		Teams: []Team{{
			ID: "T1", Name: "Team 1", MinNumberOfActivities: 1, MaxNumberOfActivities: 1,
			Duration: 2, SizeRequired: 1, Priority: 1,
			TimeRange: TimeRange{StartTime: "00:00", EndTime: "01:00", DayIndexes: []int{0}},
		}},
		ExistingTeamActivities: []ExistingTeamActivity{{
			TeamID: "T1", StadiumID: "F1", StartTimeslot: 1, EndTimeslot: 2, DurationSlots: 2, SizeRequired: 1,
		}},
	}
	res, err := testEngine().Solve(context.Background(), payload)
	if err != nil {
		t.Fatal(err)
	}
	if res.Result != StatusSolved {
		t.Fatalf("result = %v, want solved (error_message=%v)", res.Result, res.ErrorMessage)
	}
	if len(res.Activities) != 0 {
		t.Fatalf("expected 0 activities (pin fully covers T1's only placement), got %d: %+v", len(res.Activities), res.Activities)
	}
	for _, ang := range res.ActivitiesNotGenerated {
		if ang.Team.ID == "T1" && ang.MissingActivities > 1e-6 {
			t.Fatalf("expected zero shortfall for T1, got %+v", ang)
		}
	}
}

// E4: pin outside the active grid (global id 673 is past the 672-slot
// weekly grid, and its time of day leaves the window unchanged) is dropped,
// solve proceeds as if absent.
func TestE4PinOutOfWindowDropped(t *testing.T) {
	payload := &FieldOptimizerPayload{
		StartTime: "00:00",
		EndTime:   "01:00",
		Stadiums:  []Stadium{{ID: "F1", Name: "Field 1", Size: 1}},
		Teams: []Team{{
			ID: "T1", Name: "Team 1", MinNumberOfActivities: 0, MaxNumberOfActivities: 1,
			Duration: 2, SizeRequired: 1, Priority: 1,
			TimeRange: TimeRange{StartTime: "00:00", EndTime: "01:00", DayIndexes: []int{0}},
		}},
		ExistingTeamActivities: []ExistingTeamActivity{{
			TeamID: "T1", StadiumID: "F1", StartTimeslot: 673, EndTimeslot: 674, DurationSlots: 2, SizeRequired: 1,
		}},
	}
	res, err := testEngine().Solve(context.Background(), payload)
	if err != nil {
		t.Fatal(err)
	}
	if res.Result != StatusSolved {
		t.Fatalf("result = %v, want solved (error_message=%v)", res.Result, res.ErrorMessage)
	}
}

// E6: extended_time=false, first iteration solves -> exactly one iteration recorded.
func TestE6SingleIterationOnSolve(t *testing.T) {
	payload := &FieldOptimizerPayload{
		StartTime: "00:00",
		EndTime:   "01:00",
		Stadiums:  []Stadium{{ID: "F1", Name: "Field 1", Size: 1}},
		Teams: []Team{{
			ID: "T1", Name: "Team 1", MinNumberOfActivities: 1, MaxNumberOfActivities: 1,
			Duration: 2, SizeRequired: 1, Priority: 1,
			TimeRange: TimeRange{StartTime: "00:00", EndTime: "01:00", DayIndexes: []int{0}},
		}},
	}
	res, err := testEngine().Solve(context.Background(), payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Iterations) != 1 {
		t.Fatalf("iterations = %d, want 1: %+v", len(res.Iterations), res.Iterations)
	}
}

func TestInvalidInputEmptyTeams(t *testing.T) {
	payload := &FieldOptimizerPayload{
		StartTime: "00:00",
		EndTime:   "01:00",
		Stadiums:  []Stadium{{ID: "F1", Name: "Field 1", Size: 1}},
	}
	_, err := testEngine().Solve(context.Background(), payload)
	if err == nil {
		t.Fatal("expected InvalidInput error for empty teams")
	}
	fe, ok := err.(*Error)
	if !ok || fe.Reason != ReasonInvalidInput {
		t.Fatalf("expected ReasonInvalidInput, got %v", err)
	}
}

func TestSolveStreamEmitsStartedAndResult(t *testing.T) {
	payload := &FieldOptimizerPayload{
		StartTime: "00:00",
		EndTime:   "01:00",
		Stadiums:  []Stadium{{ID: "F1", Name: "Field 1", Size: 1}},
		Teams: []Team{{
			ID: "T1", Name: "Team 1", MinNumberOfActivities: 1, MaxNumberOfActivities: 1,
			Duration: 2, SizeRequired: 1, Priority: 1,
			TimeRange: TimeRange{StartTime: "00:00", EndTime: "01:00", DayIndexes: []int{0}},
		}},
	}
	var types []string
	for ev := range testEngine().SolveStream(context.Background(), payload) {
		types = append(types, ev.Type)
	}
	if len(types) < 2 || types[0] != "started" || types[len(types)-1] != "result" {
		t.Fatalf("unexpected event sequence: %v", types)
	}
}
