// Package fieldopt implements the scheduling engine that assigns recurring
// team activities to shared fields across a multi-day horizon: the
// deterministic payload conversion, the auto-subgroup/pin protocol, the
// progressive solve loop, and the reverse transformation back to wall-clock
// activities.
package fieldopt

// TimeRange is a wall-clock window that applies on a set of weekdays.
type TimeRange struct {
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	DayIndexes []int  `json:"day_indexes"`
}

// Stadium is an input field: a physical location with a capacity and a set
// of globally-unavailable timeslots.
type Stadium struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Size                  int    `json:"size"`
	UnavailableStartTimes []int  `json:"unavailable_start_times"`
}

// Team is an input group: a recurring activity requester.
type Team struct {
	ID                    string      `json:"id"`
	Name                  string      `json:"name"`
	MinNumberOfActivities int         `json:"min_number_of_activities"`
	MaxNumberOfActivities int         `json:"max_number_of_activities"`
	TimeRange             TimeRange   `json:"time_range"`
	TimeRanges            []TimeRange `json:"time_ranges,omitempty"`
	Duration              int         `json:"duration"`
	SizeRequired          int         `json:"size_required"`
	Priority              int         `json:"priority"`
	IsIncluded            bool        `json:"is_included"`
	PreferredStadiumIDs   []string    `json:"preferred_stadium_ids,omitempty"`
	PEarlyStarts          int         `json:"p_early_starts,omitempty"`
	PreferredStartTimes   []int       `json:"preferred_start_times,omitempty"` // reserved, spec §3
}

// effectiveTimeRanges returns TimeRanges if non-empty, else [TimeRange],
// implementing the union semantics of spec §3/§4.2 (SUPPLEMENTED FEATURE 5).
func (t Team) effectiveTimeRanges() []TimeRange {
	if len(t.TimeRanges) > 0 {
		return t.TimeRanges
	}
	return []TimeRange{t.TimeRange}
}

// ExistingTeamActivity is a pre-committed activity that must be pinned into
// the model.
type ExistingTeamActivity struct {
	TeamID        string `json:"team_id"`
	StadiumID     string `json:"stadium_id"`
	StartTimeslot int    `json:"start_timeslot"`
	EndTimeslot   int    `json:"end_timeslot"`
	DurationSlots int    `json:"duration_slots"`
	SizeRequired  int    `json:"size_required"`
}

// FieldOptimizerPayload is the request body (spec §6.1).
type FieldOptimizerPayload struct {
	Stadiums                []Stadium              `json:"stadiums"`
	Teams                   []Team                 `json:"teams"`
	ExistingTeamActivities  []ExistingTeamActivity  `json:"existing_team_activities"`
	StartTime               string                 `json:"start_time"`
	EndTime                 string                 `json:"end_time"`
	IncompatibleGroups      [][2]string            `json:"incompatible_groups,omitempty"`
	IncompatibleGroupsSameDay [][2]string          `json:"incompatible_groups_same_day,omitempty"`
	ExtendedTime            bool                   `json:"extended_time,omitempty"`
}

// Field is the internal (converted) counterpart of Stadium.
type Field struct {
	ID                    string
	Name                  string
	Size                  int
	UnavailableStartTimes []int // indices, not global ids
}

// Group is the internal (converted) counterpart of Team.
type Group struct {
	ID                    string
	Name                  string
	MinNumberOfActivities int
	MaxNumberOfActivities int
	PossibleStartTimes    []int // AT[g], sorted indices
	PreferredStartTimes   []int // PT[g]
	PreferredFieldIDs     []string
	Duration              int
	SizeRequired          int
	Priority              int
	PST1                  int
	PST2                  int
	PEarlyStarts          int
	Synthetic             bool // true for auto-subgroups and busyblocks
	ParentID              string
}

// ProcessedActivity is a validated, index-space pin (spec §4.6).
type ProcessedActivity struct {
	FieldID         string
	GroupID         string
	StartIndex      int
	TimeslotIndexes []int
}

// FieldAllocation is a single occupied (field,group,index) cell read from
// the solved x variable.
type FieldAllocation struct {
	Field      string
	Group      string
	TimeslotID int // index space
	Size       int
}

// FieldActivity is a contiguous run of FieldAllocations on one day.
type FieldActivity struct {
	Field         string
	Group         string
	StartTimeslot int // index
	EndTimeslot   int // index, inclusive
	Duration      int
	Size          int
}

// StadiumRef and TeamRef are the {id,name} pairs surfaced in Activity.
type StadiumRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TeamRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Activity is an output allocation in wall-clock terms.
type Activity struct {
	Stadium     StadiumRef `json:"stadium"`
	Team        TeamRef    `json:"team"`
	IndexWeekDay int       `json:"index_week_day"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	Size        int        `json:"size"`
}

// IterationDetail records the metrics of one solve iteration.
type IterationDetail struct {
	Iteration      int      `json:"iteration"`
	TimeLimit      float64  `json:"time_limit"`
	GapLimit       float64  `json:"gap_limit"`
	ElapsedMs      float64  `json:"elapsed_ms"`
	SolveResult    string   `json:"solve_result"`
	PreferenceScore *float64 `json:"preference_score"`
	GapPercent     float64  `json:"gap_percent"`
	AbsGap         float64  `json:"abs_gap"`
}

// ActivitiesNotGenerated reports a per-team shortfall (spec §4.8 step 5).
type ActivitiesNotGenerated struct {
	Team              TeamRef `json:"team"`
	Activities        int     `json:"activities"`
	MissingActivities float64 `json:"missing_activities"`
}

// Status is the tagged enum for FieldOptimizerResult.Result (spec §9's
// "sum-typed result" design note).
type Status string

const (
	StatusSolved           Status = "solved"
	StatusInfeasible       Status = "infeasible"
	StatusNoObjectiveValue Status = "no_objective_value"
	StatusFailure          Status = "failure"
)

// FieldOptimizerResult is the response body (spec §6.1).
type FieldOptimizerResult struct {
	Result                 Status                   `json:"result"`
	DurationMs             float64                  `json:"duration_ms"`
	PreferenceScore        *float64                 `json:"preference_score"`
	Activities             []Activity               `json:"activities"`
	ActivitiesNotGenerated []ActivitiesNotGenerated `json:"activities_not_generated,omitempty"`
	ErrorMessage           *string                  `json:"error_message,omitempty"`
	Iterations             []IterationDetail        `json:"iterations,omitempty"`
}

// Diagnostic is a non-aborting warning recorded during conversion (spec §7
// categories UnknownReference, OutOfWindowPin, PinCapacityCollision).
type Diagnostic struct {
	Reason  Reason
	Message string
}

// ConvertedPayload is the output of the payload converter (spec §4.4).
type ConvertedPayload struct {
	Fields              map[string]*Field
	Groups              map[string]*Group
	GroupOrder          []string // stable iteration order, insertion order
	FieldOrder          []string
	TimeSlotsInRange     []TimeSlotRef // index-space, one per included global id
	ForwardMap           map[int]int
	InverseMap           map[int]int
	Quantum              int
	ExistingActivities   []ExistingTeamActivity // post-split, rebound to subgroup ids
	DayBuckets           [][]int // per weekday present, sorted indices
	IndexWeekDay         map[int]int // index -> weekday
	AutoIncompatibleSameDay  [][2]string
	AutoIncompatibleSameTime [][2]string
	AAT                  map[aatKey][]int
	Pins                 []ProcessedActivity
	Diagnostics          []Diagnostic
}

// TimeSlotRef is the index-space counterpart of a TimeSlot (spec §3).
type TimeSlotRef struct {
	Index           int
	GlobalID        int
	Time            string
	WeekDayIndex    int
	DurationMinutes int
}
