package fieldopt

import "testing"

func TestGroupContiguousSingleBlock(t *testing.T) {
	// P5: indices [1,2,3] within one day bucket -> single FieldActivity (1,3).
	indexWeekDay := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0, 6: 0}
	allocs := []FieldAllocation{
		{Field: "field1", Group: "group1", TimeslotID: 1, Size: 1},
		{Field: "field1", Group: "group1", TimeslotID: 2, Size: 1},
		{Field: "field1", Group: "group1", TimeslotID: 3, Size: 1},
	}
	out := groupContiguous(allocs, indexWeekDay)
	if len(out) != 1 {
		t.Fatalf("expected 1 FieldActivity, got %d", len(out))
	}
	if out[0].StartTimeslot != 1 || out[0].EndTimeslot != 3 || out[0].Duration != 3 {
		t.Fatalf("unexpected activity: %+v", out[0])
	}
}

func TestGroupContiguousDayBoundarySplit(t *testing.T) {
	// P5: indices [1..6] with day buckets [[1,2,3],[4,5,6]] -> two activities.
	indexWeekDay := map[int]int{1: 0, 2: 0, 3: 0, 4: 1, 5: 1, 6: 1}
	var allocs []FieldAllocation
	for i := 1; i <= 6; i++ {
		allocs = append(allocs, FieldAllocation{Field: "field1", Group: "group1", TimeslotID: i, Size: 1})
	}
	out := groupContiguous(allocs, indexWeekDay)
	if len(out) != 2 {
		t.Fatalf("expected 2 FieldActivities, got %d: %+v", len(out), out)
	}
	if out[0].StartTimeslot != 1 || out[0].EndTimeslot != 3 {
		t.Fatalf("unexpected first activity: %+v", out[0])
	}
	if out[1].StartTimeslot != 4 || out[1].EndTimeslot != 6 {
		t.Fatalf("unexpected second activity: %+v", out[1])
	}
}

func TestGroupContiguousDifferentGroupBreaksBlock(t *testing.T) {
	indexWeekDay := map[int]int{1: 0, 2: 0, 3: 0}
	allocs := []FieldAllocation{
		{Field: "field1", Group: "group1", TimeslotID: 1, Size: 1},
		{Field: "field1", Group: "group2", TimeslotID: 2, Size: 1},
		{Field: "field1", Group: "group1", TimeslotID: 3, Size: 1},
	}
	out := groupContiguous(allocs, indexWeekDay)
	if len(out) != 3 {
		t.Fatalf("expected 3 FieldActivities (group change forces a break each time), got %d", len(out))
	}
}
