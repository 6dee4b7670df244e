package models

import (
	dErrors "foodsupply/pkg/domain-errors"
)

// Status is the inspection state of a listing.
type Status string

const (
	StatusInitialRequest      Status = "INITIALREQUEST"
	StatusExemptCheckRequired Status = "EXEMPTCHECKREQ"
	StatusHazardAnalysis      Status = "HAZARDANALYSISCHECKREQ"
	StatusCheckCompleted      Status = "CHECKCOMPLETED"
)

// transitions lists the statuses reachable from each status in one step.
// HAZARDANALYSISCHECKREQ re-enters itself after a failed check. A transfer
// between importers before the check completes flags the check as owed again
// (EXEMPTCHECKREQ). CHECKCOMPLETED is kept across the final transfer.
var transitions = map[Status][]Status{
	StatusInitialRequest:      {StatusExemptCheckRequired},
	StatusExemptCheckRequired: {StatusExemptCheckRequired, StatusCheckCompleted, StatusHazardAnalysis},
	StatusHazardAnalysis:      {StatusExemptCheckRequired, StatusCheckCompleted, StatusHazardAnalysis},
	StatusCheckCompleted:      {StatusCheckCompleted},
}

// ParseStatus validates a persisted or user-supplied status string.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid listing status")
	}
	return st, nil
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) String() string {
	return string(s)
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// AwaitingCheck reports whether a regulator check may run in this status.
func (s Status) AwaitingCheck() bool {
	return s == StatusExemptCheckRequired || s == StatusHazardAnalysis
}
