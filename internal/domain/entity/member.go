package entity

import (
	"strings"
	"time"
)

// MemberStatus is the arrival/departure state of a member
type MemberStatus string

const (
	StatusDeparted    MemberStatus = "DEPARTED"
	StatusNotDeparted MemberStatus = "NOT_DEPARTED"
)

// Member is a single person in a delegation.
// DelegationID and LegacyDelegationID carry the same relation under the two
// key names used by different sources; either may be empty.
type Member struct {
	ID                     string       `bson:"_id" json:"id"`
	Rank                   string       `bson:"rank,omitempty" json:"rank,omitempty"`
	Name                   string       `bson:"name" json:"name"`
	JobTitle               string       `bson:"jobTitle,omitempty" json:"jobTitle,omitempty"`
	EquivalentPositionID   string       `bson:"equivalentPositionId,omitempty" json:"equivalentPositionId,omitempty"`
	EquivalentPositionName string       `bson:"equivalentPositionName,omitempty" json:"equivalentPositionName,omitempty"`
	DelegationID           string       `bson:"delegationId,omitempty" json:"delegationId,omitempty"`
	LegacyDelegationID     string       `bson:"delegation_id,omitempty" json:"delegation_id,omitempty"`
	Status                 MemberStatus `bson:"memberStatus,omitempty" json:"memberStatus,omitempty"`
	DepartureDate          string       `bson:"departureDate,omitempty" json:"departureDate,omitempty"`
	CreatedAt              time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// IsMarkedDeparted reports whether the stored status already says departed
func (m Member) IsMarkedDeparted() bool {
	return strings.EqualFold(strings.TrimSpace(string(m.Status)), string(StatusDeparted))
}
