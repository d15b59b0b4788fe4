package entity

// Display sentinels for values that could not be resolved or parsed
const (
	UnknownValue     = "unknown"
	UnspecifiedValue = "unspecified"
)

// EventRef is a read-only snapshot of a main or sub event
type EventRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Slug        string `json:"slug,omitempty"`
}

// DelegationSnapshot is a flattened copy of a delegation taken at reconcile time
type DelegationSnapshot struct {
	ID                  string      `json:"id"`
	NationalityLabel    string      `json:"nationality"`
	HeadName            string      `json:"headName"`
	DeclaredMemberCount int         `json:"declaredMemberCount"`
	ActualMemberCount   int         `json:"actualMemberCount"`
	OverCapacity        bool        `json:"overCapacity"`
	Arrival             ArrivalInfo `json:"arrival"`
	ArrivalAirlineName  string      `json:"arrivalAirlineName"`
	ArrivalDateDisplay  string      `json:"arrivalDateDisplay"`
}

// ReconciledMember is one denormalized output row per member.
// Nil pointers mean the relation could not be resolved.
type ReconciledMember struct {
	MemberID               string `json:"memberId"`
	Rank                   string `json:"rank"`
	Name                   string `json:"name"`
	JobTitle               string `json:"jobTitle"`
	EquivalentPositionName string `json:"equivalentPositionName"`

	Delegation *DelegationSnapshot `json:"delegation"`
	SubEvent   *EventRef           `json:"subEvent"`
	MainEvent  *EventRef           `json:"mainEvent"`

	// flattened display fields, UnknownValue when unresolved
	DelegationID     string `json:"delegationId"`
	NationalityLabel string `json:"nationality"`
	HeadName         string `json:"headName"`
	SubEventName     string `json:"subEventName"`
	MainEventName    string `json:"mainEventName"`

	Status                 MemberStatus `json:"status"`
	EffectiveDepartureDate *string      `json:"effectiveDepartureDate"`
	DepartureDateDisplay   string       `json:"departureDateDisplay"`
	DepartureSessionID     string       `json:"departureSessionId,omitempty"`

	Path *string `json:"path"`
}

// Navigable reports whether the row has a computed navigation path
func (r ReconciledMember) Navigable() bool {
	return r.Path != nil
}

// IssueKind classifies a data-quality signal found during reconciliation
type IssueKind string

const (
	IssueAmbiguousDeparture   IssueKind = "ambiguous_departure"
	IssueUnresolvedDelegation IssueKind = "unresolved_delegation"
	IssueUnresolvedSubEvent   IssueKind = "unresolved_sub_event"
	IssueUnresolvedMainEvent  IssueKind = "unresolved_main_event"
	IssueMalformedDate        IssueKind = "malformed_date"
	IssueOverCapacity         IssueKind = "over_capacity"
	IssueRowFailed            IssueKind = "row_failed"
)

// IssueKinds returns every issue kind
func IssueKinds() []IssueKind {
	return []IssueKind{
		IssueAmbiguousDeparture,
		IssueUnresolvedDelegation,
		IssueUnresolvedSubEvent,
		IssueUnresolvedMainEvent,
		IssueMalformedDate,
		IssueOverCapacity,
		IssueRowFailed,
	}
}

// Issue is a data-quality signal. It never blocks output.
type Issue struct {
	Kind     IssueKind `json:"kind"`
	EntityID string    `json:"entityId"`
	Detail   string    `json:"detail"`
}
