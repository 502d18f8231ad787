// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import "github.com/pdiddy/citation-ranker/internal/classify"

// State is the position of one paper in the enrichment state machine.
//
//	Pending -> Querying
//	Querying -> Success | NeedsHumanIntervention | NeedsEndpointRotation
//	          | NeedsQueryReformulation | NeedsInspection
//	NeedsHumanIntervention -> Querying
//	NeedsEndpointRotation -> Querying | Fatal
//	NeedsQueryReformulation -> Querying | NoResults
//	NeedsInspection -> Querying | Skipped | Aborted
//
// Success, NoResults and Skipped end the item with a result. Fatal and
// Aborted end the whole job.
type State int

const (
	StatePending State = iota
	StateQuerying
	StateSuccess
	StateNeedsHumanIntervention
	StateNeedsEndpointRotation
	StateNeedsQueryReformulation
	StateNeedsInspection
	StateNoResults
	StateSkipped
	StateAborted
	StateFatal
)

var stateNames = [...]string{
	StatePending:                 "pending",
	StateQuerying:                "querying",
	StateSuccess:                 "success",
	StateNeedsHumanIntervention:  "needs-human-intervention",
	StateNeedsEndpointRotation:   "needs-endpoint-rotation",
	StateNeedsQueryReformulation: "needs-query-reformulation",
	StateNeedsInspection:         "needs-inspection",
	StateNoResults:               "no-results",
	StateSkipped:                 "skipped",
	StateAborted:                 "aborted",
	StateFatal:                   "fatal",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether the item leaves the machine in this state.
func (s State) Terminal() bool {
	switch s {
	case StateSuccess, StateNoResults, StateSkipped, StateAborted, StateFatal:
		return true
	}
	return false
}

// afterQuery maps a classification to the next state.
func afterQuery(k classify.Kind) State {
	switch k {
	case classify.KindSuccess:
		return StateSuccess
	case classify.KindRobotChallenge:
		return StateNeedsHumanIntervention
	case classify.KindAutomatedQueryBlock:
		return StateNeedsEndpointRotation
	case classify.KindEmptyResults:
		return StateNeedsQueryReformulation
	default:
		return StateNeedsInspection
	}
}

// Transition records one state change for a paper.
type Transition struct {
	Index    int
	From     State
	To       State
	Endpoint string
}
