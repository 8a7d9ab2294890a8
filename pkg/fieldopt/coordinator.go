package fieldopt

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fieldopt/fieldopt-server/pkg/solver"
)

// Engine is the explicit, once-constructed value spec §9's "no mutable
// shared state" note calls for: it owns a solver.Solver backend and the two
// progressive-limit configurations, and is safe to reuse across concurrent
// requests (it holds no per-request state).
type Engine struct {
	Solver         solver.Solver
	StandardLimits []solver.Limits
	ExtendedLimits []solver.Limits
}

// NewEngine builds an Engine with the iteration limits from spec §4.7.
func NewEngine(backend solver.Solver) *Engine {
	return &Engine{
		Solver: backend,
		StandardLimits: []solver.Limits{
			{TimeLimit: 15 * time.Second, GapLimit: 0},
			{TimeLimit: 90 * time.Second, GapLimit: 0.05, PreSettings: 2},
		},
		ExtendedLimits: []solver.Limits{
			{TimeLimit: 260 * time.Second, GapLimit: 0.10, PreSettings: 2},
		},
	}
}

func (e *Engine) limits(payload *FieldOptimizerPayload) []solver.Limits {
	if payload.ExtendedTime {
		return e.ExtendedLimits
	}
	return e.StandardLimits
}

// Solve runs the full pipeline (spec §4.4-§4.8) once. A non-nil error is
// only ever a *fieldopt.Error with Reason ReasonInvalidInput (spec §7
// category 1, which aborts the request with HTTP 400 at the routes layer).
// Every other irregularity, including an internal invariant breach during
// assembly, is folded into the returned result as result="failure" (spec §7
// category 7), never returned as an error.
func (e *Engine) Solve(ctx context.Context, payload *FieldOptimizerPayload) (*FieldOptimizerResult, error) {
	start := time.Now()

	cp, err := Convert(payload)
	if err != nil {
		var fe *Error
		if asInvalidInput(err, &fe) {
			return nil, fe
		}
		return nil, err
	}

	result, iterDetails := e.run(ctx, cp, payload, start)
	result.Iterations = iterDetails
	return result, nil
}

func (e *Engine) run(ctx context.Context, cp *ConvertedPayload, payload *FieldOptimizerPayload, start time.Time) (res *FieldOptimizerResult, iterations []IterationDetail) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("internal error: %v", r)
			res = &FieldOptimizerResult{
				Result:       StatusFailure,
				DurationMs:   msElapsed(start),
				Activities:   []Activity{},
				ErrorMessage: &msg,
			}
		}
	}()

	inst := buildInstance(cp, payload)
	limits := e.limits(payload)

	var outcome solver.Outcome
	for i, lim := range limits {
		iterStart := time.Now()
		out, err := e.Solver.Solve(ctx, inst, lim)
		elapsed := time.Since(iterStart)
		if err != nil {
			msg := fmt.Sprintf("solver error: %v", err)
			return &FieldOptimizerResult{
				Result:       StatusFailure,
				DurationMs:   msElapsed(start),
				Activities:   []Activity{},
				ErrorMessage: &msg,
			}, iterations
		}

		abs, gapPct, ok := solver.ParseGap(out.Message)
		if !ok {
			abs, gapPct = 0, 0
		}
		iterations = append(iterations, IterationDetail{
			Iteration:       i + 1,
			TimeLimit:       lim.TimeLimit.Seconds(),
			GapLimit:        lim.GapLimit * 100,
			ElapsedMs:       float64(elapsed.Milliseconds()),
			SolveResult:     string(out.Status),
			PreferenceScore: out.PreferenceScore,
			GapPercent:      gapPct,
			AbsGap:          abs,
		})

		outcome = out
		if out.Status == solver.StatusInfeasible || out.Status == solver.StatusSolved {
			break
		}
	}

	res = buildResult(cp, outcome, start)
	return res, iterations
}

func buildResult(cp *ConvertedPayload, outcome solver.Outcome, start time.Time) *FieldOptimizerResult {
	if outcome.Status == solver.StatusInfeasible {
		return &FieldOptimizerResult{
			Result:     StatusInfeasible,
			DurationMs: msElapsed(start),
			Activities: []Activity{},
		}
	}

	// SUPPLEMENTED FEATURE 1/2 (spec §9 Open Question): any non-nil
	// preference_score is "solved", regardless of the raw solver status
	// word (including a best-effort incumbent from a limit-exhausted run).
	if outcome.PreferenceScore == nil {
		return &FieldOptimizerResult{
			Result:     StatusNoObjectiveValue,
			DurationMs: msElapsed(start),
			Activities: []Activity{},
		}
	}

	activities, notGenerated, err := assemble(cp, outcome)
	if err != nil {
		msg := err.Error()
		return &FieldOptimizerResult{
			Result:       StatusFailure,
			DurationMs:   msElapsed(start),
			Activities:   []Activity{},
			ErrorMessage: &msg,
		}
	}

	return &FieldOptimizerResult{
		Result:                 StatusSolved,
		DurationMs:             msElapsed(start),
		PreferenceScore:        outcome.PreferenceScore,
		Activities:             activities,
		ActivitiesNotGenerated: notGenerated,
	}
}

func msElapsed(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

func asInvalidInput(err error, out **Error) bool {
	fe, ok := err.(*Error)
	if !ok || fe.Reason != ReasonInvalidInput {
		return false
	}
	*out = fe
	return true
}

// buildInstance converts a ConvertedPayload plus the payload's user-supplied
// incompatibility pairs into a solver.Instance (spec §6.2), fixing x/y per
// the pin list (spec §4.7, §6.2(h)).
func buildInstance(cp *ConvertedPayload, payload *FieldOptimizerPayload) *solver.Instance {
	fields := make([]solver.FieldSpec, 0, len(cp.FieldOrder))
	for _, id := range cp.FieldOrder {
		f := cp.Fields[id]
		fields = append(fields, solver.FieldSpec{
			ID:                    f.ID,
			Size:                  f.Size,
			UnavailableStartTimes: f.UnavailableStartTimes,
		})
	}

	groups := make([]solver.GroupSpec, 0, len(cp.GroupOrder))
	for _, id := range cp.GroupOrder {
		g := cp.Groups[id]
		groups = append(groups, solver.GroupSpec{
			ID:                    g.ID,
			Duration:              g.Duration,
			MinNumberOfActivities: g.MinNumberOfActivities,
			MaxNumberOfActivities: g.MaxNumberOfActivities,
			SizeRequired:          g.SizeRequired,
			Priority:              g.Priority,
			PST1:                  g.PST1,
			PST2:                  g.PST2,
			PEarlyStarts:          g.PEarlyStarts,
			AT:                    g.PossibleStartTimes,
			PT:                    g.PreferredStartTimes,
			PF:                    g.PreferredFieldIDs,
		})
	}

	t := make([]int, 0, len(cp.ForwardMap))
	for _, idx := range cp.ForwardMap {
		t = append(t, idx)
	}
	sort.Ints(t)

	d := make([]int, len(cp.DayBuckets))
	dt := make(map[int][]int, len(cp.DayBuckets))
	st := make([]int, len(cp.DayBuckets))
	for i, bucket := range cp.DayBuckets {
		day := i + 1
		d[i] = day
		dt[day] = bucket
		if len(bucket) > 0 {
			st[i] = bucket[0]
		}
	}

	incompatTime := append([][2]string(nil), payload.IncompatibleGroups...)
	incompatTime = append(incompatTime, cp.AutoIncompatibleSameTime...)
	incompatDay := append([][2]string(nil), payload.IncompatibleGroupsSameDay...)
	incompatDay = append(incompatDay, cp.AutoIncompatibleSameDay...)

	aat := make(map[solver.AATKey][]int, len(cp.AAT))
	for k, v := range cp.AAT {
		aat[solver.AATKey{Field: k.FieldID, Group: k.GroupID}] = v
	}

	fixedX := make(map[solver.VarKey]bool)
	fixedY := make(map[solver.VarKey]bool)
	for _, p := range cp.Pins {
		fixedY[solver.VarKey{Field: p.FieldID, Group: p.GroupID, T: p.StartIndex}] = true
		for _, idx := range p.TimeslotIndexes {
			fixedX[solver.VarKey{Field: p.FieldID, Group: p.GroupID, T: idx}] = true
		}
	}

	return &solver.Instance{
		Fields:               fields,
		Groups:               groups,
		T:                    t,
		D:                    d,
		DT:                   dt,
		ST:                   st,
		IncompatibleSameTime: incompatTime,
		IncompatibleSameDay:  incompatDay,
		AAT:                  aat,
		FixedX:               fixedX,
		FixedY:               fixedY,
	}
}
