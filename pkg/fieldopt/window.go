package fieldopt

import "github.com/fieldopt/fieldopt-server/pkg/fieldopt/timeslot"

// expandWindow widens (start, end) to cover every team's time range(s) and,
// for each existing activity, the minutes from its first slot's start to its
// last slot's start (spec §4.2, P2). The window end is exclusive, so an
// activity's last slot lies inside the widened window only when another
// bound already reaches past it. Only the time-of-day bounds move; weekday
// semantics are untouched.
func expandWindow(q timeslot.Quantum, start, end string, activities []ExistingTeamActivity, teams []Team) (string, string, error) {
	s, e := start, end

	widen := func(ws, we string) error {
		var err error
		s, err = widenStart(s, ws)
		if err != nil {
			return err
		}
		e, err = widenEnd(e, we)
		return err
	}

	for _, act := range activities {
		ws := timeslot.FormatMinutes(timeslot.StartOfDayMinute(q, act.StartTimeslot))
		we := timeslot.FormatMinutes(timeslot.EndOfDayMinute(q, act.StartTimeslot, act.DurationSlots))
		if err := widen(ws, we); err != nil {
			return "", "", err
		}
	}

	for _, team := range teams {
		for _, tr := range team.effectiveTimeRanges() {
			if err := widen(tr.StartTime, tr.EndTime); err != nil {
				return "", "", err
			}
		}
	}

	return s, e, nil
}

// widenStart moves s earlier to at most candidate, measured in
// minutes-since-midnight, treating the pair as a simple interval (the
// window itself may still cross midnight after expansion; per spec §4.2
// only the bounds move, not the crossing semantics).
func widenStart(s, candidate string) (string, error) {
	sm, err := timeslot.ParseMinutes(s)
	if err != nil {
		return "", err
	}
	cm, err := timeslot.ParseMinutes(candidate)
	if err != nil {
		return "", err
	}
	if cm < sm {
		return candidate, nil
	}
	return s, nil
}

// widenEnd moves e later to at least candidate.
func widenEnd(e, candidate string) (string, error) {
	em, err := timeslot.ParseMinutes(e)
	if err != nil {
		return "", err
	}
	cm, err := timeslot.ParseMinutes(candidate)
	if err != nil {
		return "", err
	}
	if cm > em {
		return candidate, nil
	}
	return e, nil
}
