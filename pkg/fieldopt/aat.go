package fieldopt

import (
	"fmt"
	"log/slog"
	"sort"
)

// aatKey identifies an Already-Assigned-Timeslot bucket.
type aatKey struct {
	FieldID string
	GroupID string
}

// buildAAT implements the AAT builder & pin list (spec §4.6, I2/I5). It
// consumes the post-split, rebound activity list and the dense index
// bijection, and returns the pin records plus the accumulated AAT sets. It
// also extends each pinned group's PossibleStartTimes with its pins' start
// indices (I2 restored, per §4.6's final paragraph) and logs pin-capacity
// collisions (I5, SUPPLEMENTED FEATURE 4: summed across every syntactically
// valid activity, not just the ones that survive validation).
func buildAAT(groups map[string]*Group, fields map[string]*Field, activities []ExistingTeamActivity, forward map[int]int) (pins []ProcessedActivity, aat map[aatKey][]int, diags []Diagnostic) {
	aat = make(map[aatKey][]int)

	// I5 collision sum: (field_id, index) -> total size_required, over every
	// activity whose team/stadium resolve, regardless of window validity.
	type fieldIndexKey struct {
		FieldID string
		Index   int
	}
	collisionSum := make(map[fieldIndexKey]int)

	for _, act := range activities {
		group, groupOK := groups[act.TeamID]
		field, fieldOK := fields[act.StadiumID]
		if !groupOK || !fieldOK {
			var missing string
			if !groupOK {
				missing = "team_id"
			} else {
				missing = "stadium_id"
			}
			diags = append(diags, Diagnostic{
				Reason:  ReasonUnknownReference,
				Message: fmt.Sprintf("existing activity references unknown %s (team=%q stadium=%q)", missing, act.TeamID, act.StadiumID),
			})
			slog.Warn("fieldopt: existing activity references unknown id",
				"missing", missing, "team_id", act.TeamID, "stadium_id", act.StadiumID)
			continue
		}

		startIndex, startOK := forward[act.StartTimeslot]

		var indexes []int
		var skipped []int
		for i := 0; i < act.DurationSlots; i++ {
			globalID := act.StartTimeslot + i
			if idx, ok := forward[globalID]; ok {
				indexes = append(indexes, idx)
			} else {
				skipped = append(skipped, globalID)
			}
		}

		// collision accounting happens for every syntactically valid
		// activity, independent of window validity (SUPPLEMENTED FEATURE 4).
		for _, idx := range indexes {
			collisionSum[fieldIndexKey{FieldID: field.ID, Index: idx}] += group.SizeRequired
		}

		if !startOK || len(indexes) == 0 {
			diags = append(diags, Diagnostic{
				Reason:  ReasonOutOfWindowPin,
				Message: fmt.Sprintf("existing activity for team %q at stadium %q falls entirely outside the active window; skipped", act.TeamID, act.StadiumID),
			})
			slog.Warn("fieldopt: existing activity outside active window",
				"team_id", act.TeamID, "stadium_id", act.StadiumID,
				"start_timeslot", act.StartTimeslot, "skipped_global_ids", skipped)
			continue
		}
		if len(skipped) > 0 {
			slog.Warn("fieldopt: existing activity partially outside active window",
				"team_id", act.TeamID, "stadium_id", act.StadiumID, "skipped_global_ids", skipped)
		}

		key := aatKey{FieldID: field.ID, GroupID: group.ID}
		aat[key] = append(aat[key], indexes...)

		pins = append(pins, ProcessedActivity{
			FieldID:         field.ID,
			GroupID:         group.ID,
			StartIndex:      startIndex,
			TimeslotIndexes: indexes,
		})

		group.PossibleStartTimes = appendSortedUnique(group.PossibleStartTimes, startIndex)
	}

	for key := range aat {
		aat[key] = sortUniqueInts(aat[key])
	}

	for key, sum := range collisionSum {
		field := fields[key.FieldID]
		if field == nil || sum <= field.Size {
			continue
		}
		diags = append(diags, Diagnostic{
			Reason:  ReasonPinCapacityCollision,
			Message: fmt.Sprintf("field %q index %d: pinned size_required sum %d exceeds field capacity %d", key.FieldID, key.Index, sum, field.Size),
		})
		slog.Warn("fieldopt: pin capacity collision",
			"field_id", key.FieldID, "index", key.Index, "required", sum, "capacity", field.Size)
	}

	return pins, aat, diags
}

func sortUniqueInts(in []int) []int {
	sort.Ints(in)
	out := in[:0]
	var last int
	for i, v := range in {
		if i == 0 || v != last {
			out = append(out, v)
		}
		last = v
	}
	return out
}

func appendSortedUnique(sorted []int, v int) []int {
	i := sort.SearchInts(sorted, v)
	if i < len(sorted) && sorted[i] == v {
		return sorted
	}
	out := make([]int, 0, len(sorted)+1)
	out = append(out, sorted[:i]...)
	out = append(out, v)
	out = append(out, sorted[i:]...)
	return out
}
