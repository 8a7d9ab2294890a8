package fieldopt

import (
	"sort"
	"strings"

	"github.com/fieldopt/fieldopt-server/pkg/fieldopt/timeslot"
	"github.com/fieldopt/fieldopt-server/pkg/solver"
)

// busyblockPrefix marks synthetic groups the assembler must never surface
// (spec §9's "synthetic busyblock groups" note).
const busyblockPrefix = "__busyblock_"

// assemble implements the result assembler (spec §4.8, I3/I4).
func assemble(cp *ConvertedPayload, outcome solver.Outcome) ([]Activity, []ActivitiesNotGenerated, error) {
	pinned := make(map[[3]any]bool, len(cp.Pins))
	for _, p := range cp.Pins {
		for _, idx := range p.TimeslotIndexes {
			pinned[[3]any{p.FieldID, p.GroupID, idx}] = true
		}
	}

	var allocs []FieldAllocation
	for k, on := range outcome.X {
		if !on {
			continue
		}
		if pinned[[3]any{k.Field, k.Group, k.T}] {
			continue
		}
		g, ok := cp.Groups[k.Group]
		if !ok {
			return nil, nil, wrapError(ReasonFailure, nil, "result assembly: unknown group %q referenced by solved x variable", k.Group)
		}
		allocs = append(allocs, FieldAllocation{Field: k.Field, Group: k.Group, TimeslotID: k.T, Size: g.SizeRequired})
	}

	sort.Slice(allocs, func(i, j int) bool {
		if allocs[i].Field != allocs[j].Field {
			return allocs[i].Field < allocs[j].Field
		}
		if allocs[i].Group != allocs[j].Group {
			return allocs[i].Group < allocs[j].Group
		}
		return allocs[i].TimeslotID < allocs[j].TimeslotID
	})

	fieldActivities := groupContiguous(allocs, cp.IndexWeekDay)

	var activities []Activity
	for _, fa := range fieldActivities {
		if strings.HasPrefix(fa.Group, busyblockPrefix) {
			continue
		}
		teamID, _, _ := strings.Cut(fa.Group, subgroupSeparator)

		team, ok := cp.Groups[teamID]
		if !ok {
			return nil, nil, wrapError(ReasonFailure, nil, "result assembly: unknown team %q (from group %q)", teamID, fa.Group)
		}
		field, ok := cp.Fields[fa.Field]
		if !ok {
			return nil, nil, wrapError(ReasonFailure, nil, "result assembly: unknown field %q", fa.Field)
		}

		if fa.StartTimeslot < 1 || fa.StartTimeslot > len(cp.TimeSlotsInRange) || fa.EndTimeslot < 1 || fa.EndTimeslot > len(cp.TimeSlotsInRange) {
			return nil, nil, wrapError(ReasonFailure, nil, "result assembly: activity indices %d-%d outside active grid", fa.StartTimeslot, fa.EndTimeslot)
		}
		startSlot := cp.TimeSlotsInRange[fa.StartTimeslot-1]
		endSlot := cp.TimeSlotsInRange[fa.EndTimeslot-1]
		endTime, err := timeslot.AddMinutes(endSlot.Time, cp.Quantum)
		if err != nil {
			return nil, nil, wrapError(ReasonFailure, err, "result assembly: reconstruct end time")
		}

		activities = append(activities, Activity{
			Stadium:      StadiumRef{ID: field.ID, Name: field.Name},
			Team:         TeamRef{ID: team.ID, Name: team.Name},
			IndexWeekDay: startSlot.WeekDayIndex,
			StartTime:    startSlot.Time,
			EndTime:      endTime,
			Size:         fa.Size,
		})
	}
	if activities == nil {
		activities = []Activity{}
	}

	notGenerated := shortfallDiagnostics(cp, outcome)

	return activities, notGenerated, nil
}

// groupContiguous implements spec §4.8 step 3: sweep the sorted allocations,
// opening a block, extending it while (field,group) match, the index is
// exactly one past the current end, and both fall in the same day bucket
// (I4); otherwise close and open a new block.
func groupContiguous(allocs []FieldAllocation, indexWeekDay map[int]int) []FieldActivity {
	var out []FieldActivity
	var cur *FieldActivity

	closeCur := func() {
		if cur != nil {
			cur.Duration = cur.EndTimeslot - cur.StartTimeslot + 1
			out = append(out, *cur)
			cur = nil
		}
	}

	for _, a := range allocs {
		if cur != nil &&
			a.Field == cur.Field &&
			a.Group == cur.Group &&
			a.TimeslotID == cur.EndTimeslot+1 &&
			indexWeekDay[a.TimeslotID] == indexWeekDay[cur.EndTimeslot] {
			cur.EndTimeslot = a.TimeslotID
			continue
		}
		closeCur()
		cur = &FieldActivity{Field: a.Field, Group: a.Group, StartTimeslot: a.TimeslotID, EndTimeslot: a.TimeslotID, Size: a.Size}
	}
	closeCur()

	return out
}

// shortfallDiagnostics implements spec §4.8 step 5.
func shortfallDiagnostics(cp *ConvertedPayload, outcome solver.Outcome) []ActivitiesNotGenerated {
	counts := make(map[string]int)
	for k, on := range outcome.Y {
		if on {
			counts[k.Group]++
		}
	}

	var out []ActivitiesNotGenerated
	for _, id := range cp.GroupOrder {
		g := cp.Groups[id]
		if g.Synthetic {
			continue
		}
		shortfall := outcome.MinActivityShortfall[id]
		if shortfall <= 1e-6 {
			continue
		}
		out = append(out, ActivitiesNotGenerated{
			Team:              TeamRef{ID: g.ID, Name: g.Name},
			Activities:        counts[id],
			MissingActivities: shortfall,
		})
	}
	return out
}
