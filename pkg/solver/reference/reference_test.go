package reference

import (
	"context"
	"testing"
	"time"

	"github.com/fieldopt/fieldopt-server/pkg/solver"
)

func TestSolveE1SingleTeamNoPins(t *testing.T) {
	inst := &solver.Instance{
		Fields: []solver.FieldSpec{{ID: "F", Size: 1}},
		Groups: []solver.GroupSpec{{
			ID: "T", Duration: 2, MinNumberOfActivities: 1, MaxNumberOfActivities: 1,
			SizeRequired: 1, Priority: 1, AT: []int{1, 2, 3},
		}},
		T:  []int{1, 2, 3, 4},
		D:  []int{1},
		DT: map[int][]int{1: {1, 2, 3, 4}},
		ST: []int{1},
	}
	b := New()
	out, err := b.Solve(context.Background(), inst, solver.Limits{TimeLimit: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != solver.StatusSolved {
		t.Fatalf("status = %v, want solved", out.Status)
	}
	if out.PreferenceScore == nil || *out.PreferenceScore < 0 {
		t.Fatalf("preference_score = %v, want >= 0", out.PreferenceScore)
	}
	starts := 0
	for k, v := range out.Y {
		if v {
			starts++
			if k.T < 1 || k.T > 3 {
				t.Fatalf("start index %d outside AT", k.T)
			}
		}
	}
	if starts != 1 {
		t.Fatalf("expected exactly one activity start, got %d", starts)
	}
}

func TestSolveE2PinHonoured(t *testing.T) {
	inst := &solver.Instance{
		Fields: []solver.FieldSpec{{ID: "F", Size: 1}},
		Groups: []solver.GroupSpec{{
			ID: "T", Duration: 2, MinNumberOfActivities: 1, MaxNumberOfActivities: 1,
			SizeRequired: 1, Priority: 1, AT: []int{1, 2, 3},
		}},
		T:  []int{1, 2, 3, 4},
		D:  []int{1},
		DT: map[int][]int{1: {1, 2, 3, 4}},
		ST: []int{1},
		FixedY: map[solver.VarKey]bool{
			{Field: "F", Group: "T", T: 1}: true,
		},
		FixedX: map[solver.VarKey]bool{
			{Field: "F", Group: "T", T: 1}: true,
			{Field: "F", Group: "T", T: 2}: true,
		},
	}
	b := New()
	out, err := b.Solve(context.Background(), inst, solver.Limits{TimeLimit: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != solver.StatusSolved {
		t.Fatalf("status = %v, want solved", out.Status)
	}
	if !out.Y[solver.VarKey{Field: "F", Group: "T", T: 1}] {
		t.Fatalf("expected pinned start at index 1 to be honoured")
	}
	if out.MinActivityShortfall["T"] != 0 {
		t.Fatalf("expected zero shortfall, got %v", out.MinActivityShortfall["T"])
	}
}

func TestSolveE3IncompatibleSameTimeShortfall(t *testing.T) {
	inst := &solver.Instance{
		Fields: []solver.FieldSpec{{ID: "F", Size: 1}},
		Groups: []solver.GroupSpec{
			{ID: "T1", Duration: 1, MinNumberOfActivities: 1, MaxNumberOfActivities: 1, SizeRequired: 1, Priority: 1, AT: []int{1}},
			{ID: "T2", Duration: 1, MinNumberOfActivities: 1, MaxNumberOfActivities: 1, SizeRequired: 1, Priority: 1, AT: []int{1}},
		},
		T:                    []int{1},
		D:                    []int{1},
		DT:                   map[int][]int{1: {1}},
		ST:                   []int{1},
		IncompatibleSameTime: [][2]string{{"T1", "T2"}},
	}
	b := New()
	out, err := b.Solve(context.Background(), inst, solver.Limits{TimeLimit: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != solver.StatusSolved {
		t.Fatalf("status = %v, want solved", out.Status)
	}
	placed := 0
	for _, v := range out.Y {
		if v {
			placed++
		}
	}
	if placed != 1 {
		t.Fatalf("expected exactly one of the two incompatible teams placed, got %d", placed)
	}
	totalShortfall := out.MinActivityShortfall["T1"] + out.MinActivityShortfall["T2"]
	if totalShortfall != 1 {
		t.Fatalf("expected shortfall of 1 split across the two teams, got %v", totalShortfall)
	}
}
