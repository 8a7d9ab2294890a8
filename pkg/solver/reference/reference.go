// Package reference implements a deterministic, in-process backend for the
// solver.Solver contract: a branch-and-bound search over field/group/index
// assignments that satisfies every constraint in spec §6.2(a)-(h). It does
// not claim SCIP-grade performance or global MILP optimality on large
// instances: it searches exhaustively over each group's first
// maxCandidatesPerGroup candidate placements (plus every pinned one), so it
// is optimal on instances small enough that no group exceeds that cap and
// the search finishes within its node budget.
package reference

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/fieldopt/fieldopt-server/pkg/solver"
)

// shortfallPenalty is the "large penalty per min_activity_shortfall[g]"
// spec §6.2's objective calls for: large enough that any feasible schedule
// beats leaving a minimum unmet, but finite (spec: "strongly but not
// infinitely discouraged").
const shortfallPenalty = 1_000_000.0

// defaultNodeBudget bounds worst-case search size; exceeding it yields
// solver.StatusLimit with the best incumbent found so far rather than
// hanging.
const defaultNodeBudget = 2_000_000

// maxCandidatesPerGroup caps per-group subset enumeration (2^n); beyond
// this, candidates are truncated (see capCandidates), keeping every Forced
// one (the reference backend is for small instances).
const maxCandidatesPerGroup = 20

// Backend is a solver.Solver.
type Backend struct {
	NodeBudget int
}

// New returns a Backend with the default node budget.
func New() *Backend {
	return &Backend{NodeBudget: defaultNodeBudget}
}

type candidate struct {
	Field  string
	Start  int
	Span   []int
	Day    int
	Forced bool
}

type groupCandidates struct {
	Spec  solver.GroupSpec
	Cands []candidate
}

// capCandidates truncates cands to at most max entries, but never drops a
// Forced (pinned) candidate: pins must survive into the search regardless
// of enumeration order, or a solved outcome could silently leave x/y unfixed
// at the pin (spec §6.2(h)).
func capCandidates(cands []candidate, max int) []candidate {
	if len(cands) <= max {
		return cands
	}
	forced := make([]candidate, 0, len(cands))
	rest := make([]candidate, 0, len(cands))
	for _, c := range cands {
		if c.Forced {
			forced = append(forced, c)
		} else {
			rest = append(rest, c)
		}
	}
	out := forced
	room := max - len(forced)
	if room > 0 {
		if room > len(rest) {
			room = len(rest)
		}
		out = append(out, rest[:room]...)
	}
	return out
}

func (b *Backend) Solve(ctx context.Context, inst *solver.Instance, lim solver.Limits) (solver.Outcome, error) {
	deadline := time.Now().Add(lim.TimeLimit)
	if lim.TimeLimit <= 0 {
		deadline = time.Now().Add(time.Hour) // unbounded-ish guard; ctx still applies
	}

	indexDay := make(map[int]int, len(inst.T))
	for d, idxs := range inst.DT {
		for _, idx := range idxs {
			indexDay[idx] = d
		}
	}
	utByField := make(map[string]map[int]bool, len(inst.Fields))
	fieldByID := make(map[string]solver.FieldSpec, len(inst.Fields))
	for _, f := range inst.Fields {
		fieldByID[f.ID] = f
		set := make(map[int]bool, len(f.UnavailableStartTimes))
		for _, t := range f.UnavailableStartTimes {
			set[t] = true
		}
		utByField[f.ID] = set
	}

	incompatTime := pairSet(inst.IncompatibleSameTime)
	incompatDay := pairSet(inst.IncompatibleSameDay)

	groups := make([]*groupCandidates, 0, len(inst.Groups))
	for _, g := range inst.Groups {
		gc := &groupCandidates{Spec: g}
		for _, f := range inst.Fields {
			fut := utByField[f.ID]
			for _, t := range g.AT {
				if fut[t] {
					continue
				}
				day, ok := indexDay[t]
				if !ok {
					continue
				}
				span := make([]int, g.Duration)
				ok2 := true
				for k := 0; k < g.Duration; k++ {
					idx := t + k
					if indexDay[idx] != day {
						ok2 = false
						break
					}
					span[k] = idx
				}
				if !ok2 {
					continue
				}
				gc.Cands = append(gc.Cands, candidate{Field: f.ID, Start: t, Span: span, Day: day})
			}
		}
		for key, on := range inst.FixedY {
			if !on || key.Group != g.ID {
				continue
			}
			found := false
			for i := range gc.Cands {
				if gc.Cands[i].Field == key.Field && gc.Cands[i].Start == key.T {
					gc.Cands[i].Forced = true
					found = true
					break
				}
			}
			if !found {
				day := indexDay[key.T]
				span := make([]int, g.Duration)
				for k := 0; k < g.Duration; k++ {
					span[k] = key.T + k
				}
				gc.Cands = append(gc.Cands, candidate{Field: key.Field, Start: key.T, Span: span, Day: day, Forced: true})
			}
		}
		gc.Cands = capCandidates(gc.Cands, maxCandidatesPerGroup)
		groups = append(groups, gc)
	}

	s := &search{
		groups:       groups,
		fieldByID:    fieldByID,
		incompatTime: incompatTime,
		incompatDay:  incompatDay,
		deadline:     deadline,
		ctx:          ctx,
		nodeBudget:   pick(b.NodeBudget, defaultNodeBudget),
		occ:          make(map[string]map[int]int),
		timeGroups:   make(map[int]map[string]bool),
		dayGroups:    make(map[int]map[string]bool),
		bestScore:    math.Inf(-1),
	}

	sel := make([]selection, len(groups))
	s.search(0, sel)

	if !s.foundAny {
		if s.budgetExceeded {
			return solver.Outcome{Status: solver.StatusLimit, Message: "node budget exceeded before any feasible assignment, absmipgap=inf, relmipgap=inf"}, nil
		}
		return solver.Outcome{Status: solver.StatusInfeasible, Message: "no feasible assignment found"}, nil
	}

	score := s.bestScore
	status := solver.StatusSolved
	msg := "solved"
	if s.budgetExceeded {
		status = solver.StatusLimit
		msg = "node budget exceeded, absmipgap=inf, relmipgap=inf"
	}

	x := make(map[solver.VarKey]bool)
	y := make(map[solver.VarKey]bool)
	shortfall := make(map[string]float64)
	for gi, gc := range groups {
		chosen := s.bestSelection[gi].cands
		count := len(chosen)
		sf := float64(gc.Spec.MinNumberOfActivities - count)
		if sf < 0 {
			sf = 0
		}
		shortfall[gc.Spec.ID] = sf
		for _, c := range chosen {
			y[solver.VarKey{Field: c.Field, Group: gc.Spec.ID, T: c.Start}] = true
			for _, idx := range c.Span {
				x[solver.VarKey{Field: c.Field, Group: gc.Spec.ID, T: idx}] = true
			}
		}
	}

	return solver.Outcome{
		Status:                status,
		Message:               msg,
		PreferenceScore:       &score,
		X:                     x,
		Y:                     y,
		MinActivityShortfall: shortfall,
	}, nil
}

type selection struct {
	cands []candidate
}

type search struct {
	groups       []*groupCandidates
	fieldByID    map[string]solver.FieldSpec
	incompatTime map[[2]string]bool
	incompatDay  map[[2]string]bool
	deadline     time.Time
	ctx          context.Context
	nodeBudget   int

	nodes int

	occ        map[string]map[int]int
	timeGroups map[int]map[string]bool
	dayGroups  map[int]map[string]bool

	foundAny       bool
	budgetExceeded bool
	bestScore      float64
	bestSelection  []selection
}

func (s *search) exhausted() bool {
	if s.budgetExceeded {
		return true
	}
	s.nodes++
	if s.nodes > s.nodeBudget || time.Now().After(s.deadline) {
		s.budgetExceeded = true
		return true
	}
	select {
	case <-s.ctx.Done():
		s.budgetExceeded = true
		return true
	default:
	}
	return false
}

func (s *search) search(gi int, path []selection) {
	if s.exhausted() {
		return
	}
	if gi == len(s.groups) {
		score := s.objective(path)
		if !s.foundAny || score > s.bestScore {
			s.foundAny = true
			s.bestScore = score
			s.bestSelection = append([]selection(nil), path...)
		}
		return
	}

	gc := s.groups[gi]
	forcedIdxs := forcedIndexes(gc.Cands)

	for _, subset := range subsets(gc.Cands, gc.Spec.MaxNumberOfActivities, forcedIdxs) {
		if s.exhausted() {
			return
		}
		if !s.tryApply(gc.Spec.ID, subset) {
			continue
		}
		path[gi] = selection{cands: subset}
		s.search(gi+1, path)
		s.undo(gc.Spec.ID, subset)
	}
}

// tryApply checks subset against global state and commits it if feasible.
func (s *search) tryApply(groupID string, subset []candidate) bool {
	for _, c := range subset {
		field, ok := s.fieldByID[c.Field]
		if !ok {
			return false
		}
		sizeReq := s.groupSizeRequired(groupID)
		for _, idx := range c.Span {
			if s.occ[c.Field][idx]+sizeReq > field.Size {
				return false
			}
		}
		for _, idx := range c.Span {
			for g2 := range s.timeGroups[idx] {
				if g2 != groupID && (s.incompatTime[[2]string{groupID, g2}] || s.incompatTime[[2]string{g2, groupID}]) {
					return false
				}
			}
		}
		for g2 := range s.dayGroups[c.Day] {
			if g2 != groupID && (s.incompatDay[[2]string{groupID, g2}] || s.incompatDay[[2]string{g2, groupID}]) {
				return false
			}
		}
	}

	sizeReq := s.groupSizeRequired(groupID)
	for _, c := range subset {
		if s.occ[c.Field] == nil {
			s.occ[c.Field] = make(map[int]int)
		}
		for _, idx := range c.Span {
			s.occ[c.Field][idx] += sizeReq
			if s.timeGroups[idx] == nil {
				s.timeGroups[idx] = make(map[string]bool)
			}
			s.timeGroups[idx][groupID] = true
		}
		if s.dayGroups[c.Day] == nil {
			s.dayGroups[c.Day] = make(map[string]bool)
		}
		s.dayGroups[c.Day][groupID] = true
	}
	return true
}

func (s *search) undo(groupID string, subset []candidate) {
	sizeReq := s.groupSizeRequired(groupID)
	for _, c := range subset {
		for _, idx := range c.Span {
			s.occ[c.Field][idx] -= sizeReq
			delete(s.timeGroups[idx], groupID)
		}
		delete(s.dayGroups[c.Day], groupID)
	}
}

func (s *search) groupSizeRequired(groupID string) int {
	for _, gc := range s.groups {
		if gc.Spec.ID == groupID {
			return gc.Spec.SizeRequired
		}
	}
	return 0
}

// objective sums each chosen candidate's contribution and subtracts the
// shortfall penalty, per spec §6.2's objective description. Preferred
// start-time weights (p_st1/p_st2) are evaluated against PT[g], which is
// reserved/always-empty upstream (spec §3), so they currently contribute
// zero; they are still read here so a future non-empty PT wires through
// without changes to the solver.
func (s *search) objective(path []selection) float64 {
	var total float64
	for gi, gc := range s.groups {
		sel := path[gi]
		ptSet := make(map[int]bool, len(gc.Spec.PT))
		for _, t := range gc.Spec.PT {
			ptSet[t] = true
		}
		pfSet := make(map[string]bool, len(gc.Spec.PF))
		for _, f := range gc.Spec.PF {
			pfSet[f] = true
		}
		for _, c := range sel.cands {
			total += float64(gc.Spec.Priority)
			if pfSet[c.Field] {
				total += float64(gc.Spec.Priority)
			}
			if len(gc.Spec.PT) > 0 && ptSet[c.Start] {
				if len(gc.Spec.PT) > 0 && c.Start == gc.Spec.PT[0] {
					total += float64(gc.Spec.PST1)
				} else {
					total += float64(gc.Spec.PST2)
				}
			}
			total += float64(gc.Spec.PEarlyStarts) * earlyBonus(c.Start)
		}
		count := len(sel.cands)
		shortfall := gc.Spec.MinNumberOfActivities - count
		if shortfall > 0 {
			total -= shortfallPenalty * float64(shortfall)
		}
	}
	return total
}

// earlyBonus favours smaller indices (earlier in the active grid) with a
// bounded, monotonically decreasing score; the exact scale is a modelling
// choice (spec §6.2 specifies the weighted-sum shape, not the early-start
// curve), kept small relative to shortfallPenalty and priority so it only
// breaks ties.
func earlyBonus(t int) float64 {
	return 1.0 / float64(1+t)
}

func forcedIndexes(cands []candidate) []int {
	var out []int
	for i, c := range cands {
		if c.Forced {
			out = append(out, i)
		}
	}
	return out
}

// subsets enumerates every subset of cands that (a) includes every index in
// forced, (b) has size <= maxCount, and (c) has pairwise-disjoint spans
// (a group cannot run two simultaneous activities). Ordered with larger
// subsets first so a full-size feasible solution is found early (helps the
// node budget produce a good incumbent if exhausted).
func subsets(cands []candidate, maxCount int, forced []int) [][]candidate {
	n := len(cands)
	forcedMask := 0
	for _, i := range forced {
		forcedMask |= 1 << i
	}

	type scored struct {
		mask int
		size int
	}
	var masks []scored
	for mask := 0; mask < (1 << n); mask++ {
		if mask&forcedMask != forcedMask {
			continue
		}
		size := bits(mask)
		if size > maxCount {
			continue
		}
		if !disjoint(cands, mask) {
			continue
		}
		masks = append(masks, scored{mask: mask, size: size})
	}
	sort.Slice(masks, func(i, j int) bool { return masks[i].size > masks[j].size })

	out := make([][]candidate, 0, len(masks))
	for _, m := range masks {
		var subset []candidate
		for i := 0; i < n; i++ {
			if m.mask&(1<<i) != 0 {
				subset = append(subset, cands[i])
			}
		}
		out = append(out, subset)
	}
	return out
}

func disjoint(cands []candidate, mask int) bool {
	used := make(map[int]bool)
	for i, c := range cands {
		if mask&(1<<i) == 0 {
			continue
		}
		for _, idx := range c.Span {
			if used[idx] {
				return false
			}
			used[idx] = true
		}
	}
	return true
}

func bits(mask int) int {
	n := 0
	for mask != 0 {
		n += mask & 1
		mask >>= 1
	}
	return n
}

func pairSet(pairs [][2]string) map[[2]string]bool {
	out := make(map[[2]string]bool, len(pairs))
	for _, p := range pairs {
		out[p] = true
	}
	return out
}

func pick(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
