package fieldopt

import (
	"sort"

	"github.com/fieldopt/fieldopt-server/pkg/fieldopt/timeslot"
)

// gridQuantum is the system-wide scheduling granularity (spec §4.1).
const gridQuantum = timeslot.Quantum15

// Convert runs the payload converter, auto-subgroup splitter, and AAT
// builder (spec §4.4-§4.6) over a request payload, producing the
// index-space instance and pin list. It returns a *fieldopt.Error with
// Reason ReasonInvalidInput if the payload fails structural validation
// (spec §7.1); all other irregularities are recorded as Diagnostics.
func Convert(payload *FieldOptimizerPayload) (*ConvertedPayload, error) {
	if err := validatePayload(payload); err != nil {
		return nil, err
	}

	start, end, err := expandWindow(gridQuantum, payload.StartTime, payload.EndTime, payload.ExistingTeamActivities, payload.Teams)
	if err != nil {
		return nil, wrapError(ReasonInvalidInput, err, "expand window")
	}

	grid, err := timeslot.Grid(gridQuantum)
	if err != nil {
		return nil, wrapError(ReasonInvalidInput, err, "build weekly grid")
	}
	filtered, err := timeslot.FilterWindow(grid, start, end)
	if err != nil {
		return nil, wrapError(ReasonInvalidInput, err, "filter window")
	}

	ids := make([]int, len(filtered))
	for i, s := range filtered {
		ids[i] = s.ID
	}
	idxMap := timeslot.NewIndexMap(ids)

	timeSlots := make([]TimeSlotRef, len(filtered))
	indexWeekDay := make(map[int]int, len(filtered))
	bucketsByDay := make(map[int][]int)
	var dayOrder []int
	for _, s := range filtered {
		idx := idxMap.Forward[s.ID]
		timeSlots[idx-1] = TimeSlotRef{
			Index:           idx,
			GlobalID:        s.ID,
			Time:            s.Time,
			WeekDayIndex:    s.WeekDayIndex,
			DurationMinutes: s.DurationMinutes,
		}
		indexWeekDay[idx] = s.WeekDayIndex
		if _, ok := bucketsByDay[s.WeekDayIndex]; !ok {
			dayOrder = append(dayOrder, s.WeekDayIndex)
		}
		bucketsByDay[s.WeekDayIndex] = append(bucketsByDay[s.WeekDayIndex], idx)
	}
	sort.Ints(dayOrder)
	dayBuckets := make([][]int, 0, len(dayOrder))
	for _, d := range dayOrder {
		b := append([]int(nil), bucketsByDay[d]...)
		sort.Ints(b)
		dayBuckets = append(dayBuckets, b)
	}

	fields := make(map[string]*Field, len(payload.Stadiums))
	fieldOrder := make([]string, 0, len(payload.Stadiums))
	for _, st := range payload.Stadiums {
		var ust []int
		for _, id := range st.UnavailableStartTimes {
			if idx, ok := idxMap.Forward[id]; ok {
				ust = append(ust, idx)
			}
		}
		fields[st.ID] = &Field{ID: st.ID, Name: st.Name, Size: st.Size, UnavailableStartTimes: ust}
		fieldOrder = append(fieldOrder, st.ID)
	}

	groups := make(map[string]*Group, len(payload.Teams))
	groupOrder := make([]string, 0, len(payload.Teams))
	for _, tm := range payload.Teams {
		groups[tm.ID] = &Group{
			ID:                    tm.ID,
			Name:                  tm.Name,
			MinNumberOfActivities: tm.MinNumberOfActivities,
			MaxNumberOfActivities: tm.MaxNumberOfActivities,
			PossibleStartTimes:    possibleStartTimes(tm, timeSlots),
			PreferredStartTimes:   nil, // reserved, spec §3
			PreferredFieldIDs:     append([]string(nil), tm.PreferredStadiumIDs...),
			Duration:              tm.Duration,
			SizeRequired:          tm.SizeRequired,
			Priority:              tm.Priority,
			PEarlyStarts:          tm.PEarlyStarts,
		}
		groupOrder = append(groupOrder, tm.ID)
	}

	rebound, autoSameDay, autoSameTime, diags := splitGroups(groups, &groupOrder, payload.ExistingTeamActivities, idxMap.Forward)

	pins, aat, aatDiags := buildAAT(groups, fields, rebound, idxMap.Forward)
	diags = append(diags, aatDiags...)

	cp := &ConvertedPayload{
		Fields:                   fields,
		Groups:                   groups,
		GroupOrder:               groupOrder,
		FieldOrder:               fieldOrder,
		TimeSlotsInRange:         timeSlots,
		ForwardMap:               idxMap.Forward,
		InverseMap:               idxMap.Inverse,
		Quantum:                  int(gridQuantum),
		ExistingActivities:       rebound,
		DayBuckets:               dayBuckets,
		IndexWeekDay:             indexWeekDay,
		AutoIncompatibleSameDay:  autoSameDay,
		AutoIncompatibleSameTime: autoSameTime,
		AAT:                      aat,
		Pins:                     pins,
		Diagnostics:              diags,
	}
	return cp, nil
}

// possibleStartTimes computes AT[g]: the sorted union, over the team's
// effective time ranges, of indices whose weekday is in the range's
// day_indexes and whose time falls in [start_time, end_time) (spec §4.4).
func possibleStartTimes(tm Team, timeSlots []TimeSlotRef) []int {
	seen := make(map[int]bool)
	var out []int
	for _, tr := range tm.effectiveTimeRanges() {
		days := make(map[int]bool, len(tr.DayIndexes))
		for _, d := range tr.DayIndexes {
			days[d] = true
		}
		for _, ts := range timeSlots {
			if !days[ts.WeekDayIndex] {
				continue
			}
			ok, err := timeslot.IsBetween(ts.Time, tr.StartTime, tr.EndTime)
			if err != nil || !ok {
				continue
			}
			if !seen[ts.Index] {
				seen[ts.Index] = true
				out = append(out, ts.Index)
			}
		}
	}
	sort.Ints(out)
	return out
}

func validatePayload(payload *FieldOptimizerPayload) error {
	if payload == nil {
		return newError(ReasonInvalidInput, "payload is nil")
	}
	if len(payload.Teams) == 0 {
		return newError(ReasonInvalidInput, "teams must not be empty")
	}
	if len(payload.Stadiums) == 0 {
		return newError(ReasonInvalidInput, "stadiums must not be empty")
	}
	for _, st := range payload.Stadiums {
		if st.ID == "" {
			return newError(ReasonInvalidInput, "stadium has empty id")
		}
		if st.Size <= 0 {
			return newError(ReasonInvalidInput, "stadium %q has non-positive size", st.ID)
		}
	}
	for _, tm := range payload.Teams {
		if tm.ID == "" {
			return newError(ReasonInvalidInput, "team has empty id")
		}
		if tm.MinNumberOfActivities < 0 || tm.MaxNumberOfActivities < 0 {
			return newError(ReasonInvalidInput, "team %q has a negative activity bound", tm.ID)
		}
		if tm.MinNumberOfActivities > tm.MaxNumberOfActivities {
			return newError(ReasonInvalidInput, "team %q has min_number_of_activities > max_number_of_activities", tm.ID)
		}
		if tm.Duration <= 0 {
			return newError(ReasonInvalidInput, "team %q has non-positive duration", tm.ID)
		}
		if tm.SizeRequired <= 0 {
			return newError(ReasonInvalidInput, "team %q has non-positive size_required", tm.ID)
		}
	}
	return nil
}
