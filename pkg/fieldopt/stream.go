package fieldopt

import (
	"context"
	"iter"
	"time"

	"github.com/fieldopt/fieldopt-server/pkg/solver"
)

// Event is one SSE-shaped record (spec §4.9). Exactly one concrete type is
// populated per Event; Type names which.
type Event struct {
	Type              string                 `json:"type"`
	Started           *StartedEvent          `json:"-"`
	IterationStart    *IterationStartEvent    `json:"-"`
	IterationComplete *IterationCompleteEvent `json:"-"`
	Result            *FieldOptimizerResult   `json:"-"`
	ErrorMessage      string                  `json:"-"`
	ElapsedMs         float64                 `json:"-"`
}

type StartedEvent struct {
	TotalIterations int     `json:"total_iterations"`
	TeamCount       int     `json:"team_count"`
	StadiumCount    int     `json:"stadium_count"`
	ElapsedMs       float64 `json:"elapsed_ms"`
}

type IterationStartEvent struct {
	Iteration       int     `json:"iteration"`
	TotalIterations int     `json:"total_iterations"`
	TimeLimit       float64 `json:"time_limit"`
	GapLimit        float64 `json:"gap_limit"`
	ElapsedMs       float64 `json:"elapsed_ms"`
}

type IterationCompleteEvent struct {
	Iteration       int      `json:"iteration"`
	TotalIterations int      `json:"total_iterations"`
	SolveResult     string   `json:"solve_result"`
	PreferenceScore *float64 `json:"preference_score"`
	ElapsedMs       float64  `json:"elapsed_ms"`
}

// MarshalJSON flattens the populated variant into {"type": ..., ...fields},
// matching the original service's _sse_event({"type": ..., **fields}) shape
// and spec §6.1's "data: <json>\n\n" frames.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case "started":
		return marshalFlat(e.Type, e.Started)
	case "iteration_start":
		return marshalFlat(e.Type, e.IterationStart)
	case "iteration_complete":
		return marshalFlat(e.Type, e.IterationComplete)
	case "result":
		return marshalFlat(e.Type, struct {
			Data *FieldOptimizerResult `json:"data"`
		}{e.Result})
	case "error":
		return marshalFlat(e.Type, struct {
			Message   string  `json:"message"`
			ElapsedMs float64 `json:"elapsed_ms"`
		}{e.ErrorMessage, e.ElapsedMs})
	default:
		return marshalFlat(e.Type, struct{}{})
	}
}

// SolveStream replays Solve as a lazy sequence of Events (spec §4.9),
// expressed as a Go range-over-func iterator: if the consumer's range body
// stops (break, return), yield returns false and this function returns
// without doing further work — the same "generator may be dropped between
// iterations" cancellation spec §4.9 describes falls directly out of that.
func (e *Engine) SolveStream(ctx context.Context, payload *FieldOptimizerPayload) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		start := time.Now()

		cp, err := Convert(payload)
		if err != nil {
			yield(Event{Type: "error", ErrorMessage: err.Error(), ElapsedMs: msElapsed(start)})
			return
		}

		if !yield(Event{Type: "started", Started: &StartedEvent{
			TotalIterations: len(e.limits(payload)),
			TeamCount:       len(cp.GroupOrder),
			StadiumCount:    len(cp.FieldOrder),
			ElapsedMs:       msElapsed(start),
		}}) {
			return
		}

		limits := e.limits(payload)
		inst := buildInstance(cp, payload)

		var outcome solver.Outcome
		var iterations []IterationDetail
		for i, lim := range limits {
			iterStartElapsed := msElapsed(start)
			if !yield(Event{Type: "iteration_start", IterationStart: &IterationStartEvent{
				Iteration: i + 1, TotalIterations: len(limits),
				TimeLimit: lim.TimeLimit.Seconds(), GapLimit: lim.GapLimit * 100,
				ElapsedMs: iterStartElapsed,
			}}) {
				return
			}

			iterStart := time.Now()
			out, solveErr := e.Solver.Solve(ctx, inst, lim)
			elapsed := time.Since(iterStart)
			if solveErr != nil {
				yield(Event{Type: "error", ErrorMessage: solveErr.Error(), ElapsedMs: msElapsed(start)})
				return
			}

			abs, gapPct, ok := solver.ParseGap(out.Message)
			if !ok {
				abs, gapPct = 0, 0
			}
			iterations = append(iterations, IterationDetail{
				Iteration: i + 1, TimeLimit: lim.TimeLimit.Seconds(), GapLimit: lim.GapLimit * 100,
				ElapsedMs: float64(elapsed.Milliseconds()), SolveResult: string(out.Status),
				PreferenceScore: out.PreferenceScore, GapPercent: gapPct, AbsGap: abs,
			})

			if !yield(Event{Type: "iteration_complete", IterationComplete: &IterationCompleteEvent{
				Iteration: i + 1, TotalIterations: len(limits),
				SolveResult: string(out.Status), PreferenceScore: out.PreferenceScore,
				ElapsedMs: msElapsed(start),
			}}) {
				return
			}

			outcome = out
			// SUPPLEMENTED FEATURE 3: terminate early on infeasible or solved,
			// not on exhausting the configured iteration count.
			if out.Status == solver.StatusInfeasible || out.Status == solver.StatusSolved {
				break
			}
		}

		result := buildResult(cp, outcome, start)
		result.Iterations = iterations
		yield(Event{Type: "result", Result: result})
	}
}

func marshalFlat(typ string, payload any) ([]byte, error) {
	return jsonMarshalMerge(typ, payload)
}
