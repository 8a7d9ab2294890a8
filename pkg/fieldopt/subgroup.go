package fieldopt

import (
	"fmt"
	"log/slog"
)

// subgroupSeparator is the single source of truth for the synthetic
// subgroup id marker (spec §9's "string id discipline" note). Downstream
// parsers (the result assembler) split on this to rebind to the parent.
const subgroupSeparator = "__existing_"

// splitGroups implements the auto-subgroup splitter (spec §4.5, I7). It
// mutates groups in place (adding synthetic entries, decrementing parent
// min/max), rebinds matching activities' TeamID to the new subgroup id, and
// returns the incompatibility pairs the model must enforce.
func splitGroups(groups map[string]*Group, groupOrder *[]string, activities []ExistingTeamActivity, forward map[int]int) (rebound []ExistingTeamActivity, sameDay, sameTime [][2]string, diags []Diagnostic) {
	counts := make(map[string]int) // parent id -> split count so far
	rebound = make([]ExistingTeamActivity, len(activities))
	copy(rebound, activities)

	for i := range rebound {
		act := rebound[i]
		parent, ok := groups[act.TeamID]
		if !ok {
			continue // unknown reference; the AAT builder reports this
		}
		if act.SizeRequired == parent.SizeRequired && act.DurationSlots == parent.Duration {
			continue // no mismatch, no split needed
		}

		startIndex, ok := forward[act.StartTimeslot]
		if !ok {
			diags = append(diags, Diagnostic{
				Reason:  ReasonOutOfWindowPin,
				Message: fmt.Sprintf("auto-subgroup: activity for team %q starts at global timeslot %d which is outside the active window; split skipped", act.TeamID, act.StartTimeslot),
			})
			slog.Warn("fieldopt: auto-subgroup split skipped, pin out of window",
				"team_id", act.TeamID, "start_timeslot", act.StartTimeslot)
			continue
		}

		counts[parent.ID]++
		n := counts[parent.ID]
		subID := parent.ID + subgroupSeparator + fmt.Sprint(n)

		reason := mismatchReason(parent, act)
		slog.Info("fieldopt: auto-subgroup created",
			"parent", parent.ID, "subgroup", subID, "reason", reason)

		sub := &Group{
			ID:                    subID,
			Name:                  parent.Name + " (existing)",
			MinNumberOfActivities: 1,
			MaxNumberOfActivities: 1,
			PossibleStartTimes:    []int{startIndex},
			PreferredStartTimes:   nil,
			PreferredFieldIDs:     nil,
			Duration:              act.DurationSlots,
			SizeRequired:          act.SizeRequired,
			Priority:              parent.Priority,
			Synthetic:             true,
			ParentID:              parent.ID,
		}
		groups[subID] = sub
		*groupOrder = append(*groupOrder, subID)

		// I7: parent's min/max decremented by 1 each, clamped at 0.
		if parent.MinNumberOfActivities > 0 {
			parent.MinNumberOfActivities--
		}
		if parent.MaxNumberOfActivities > 0 {
			parent.MaxNumberOfActivities--
		}

		sameDay = append(sameDay, [2]string{parent.ID, subID})
		sameTime = append(sameTime, [2]string{parent.ID, subID})

		rebound[i].TeamID = subID
	}

	return rebound, sameDay, sameTime, diags
}

func mismatchReason(parent *Group, act ExistingTeamActivity) string {
	var parts []string
	if act.SizeRequired != parent.SizeRequired {
		parts = append(parts, fmt.Sprintf("size %d->%d", parent.SizeRequired, act.SizeRequired))
	}
	if act.DurationSlots != parent.Duration {
		parts = append(parts, fmt.Sprintf("duration %d->%d", parent.Duration, act.DurationSlots))
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
