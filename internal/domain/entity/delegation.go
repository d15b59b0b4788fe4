package entity

import "time"

// ArrivalInfo holds the optional arrival details of a delegation
type ArrivalInfo struct {
	Hall             string `bson:"hall,omitempty" json:"hall,omitempty"`
	Airline          string `bson:"airline,omitempty" json:"airline,omitempty"`
	FlightNumber     string `bson:"flightNumber,omitempty" json:"flightNumber,omitempty"`
	Origin           string `bson:"origin,omitempty" json:"origin,omitempty"`
	Date             string `bson:"date,omitempty" json:"date,omitempty"`
	Time             string `bson:"time,omitempty" json:"time,omitempty"`
	ReceivingOfficer string `bson:"receivingOfficer,omitempty" json:"receivingOfficer,omitempty"`
	Destination      string `bson:"destination,omitempty" json:"destination,omitempty"`
	CargoManifest    string `bson:"cargoManifest,omitempty" json:"cargoManifest,omitempty"`
}

// DepartureSession groups members leaving on the same flight.
// DelegationID is only populated on sessions stored outside their delegation.
type DepartureSession struct {
	ID            string   `bson:"_id" json:"id"`
	DelegationID  string   `bson:"delegationId,omitempty" json:"delegationId,omitempty"`
	ScheduledDate string   `bson:"scheduledDate" json:"scheduledDate"`
	ScheduledTime string   `bson:"scheduledTime,omitempty" json:"scheduledTime,omitempty"`
	Destination   string   `bson:"destination,omitempty" json:"destination,omitempty"`
	FlightNumber  string   `bson:"flightNumber,omitempty" json:"flightNumber,omitempty"`
	Airline       string   `bson:"airline,omitempty" json:"airline,omitempty"`
	MemberIDs     []string `bson:"memberIds" json:"memberIds"`
	Notes         string   `bson:"notes,omitempty" json:"notes,omitempty"`
}

// HasMember reports whether the session lists the given member
func (s DepartureSession) HasMember(memberID string) bool {
	for _, id := range s.MemberIDs {
		if id == memberID {
			return true
		}
	}
	return false
}

// Delegation represents a national delegation attending a sub event.
// DepartureSessions are kept in creation order.
type Delegation struct {
	ID                  string             `bson:"_id" json:"id"`
	NationalityLabel    string             `bson:"nationality" json:"nationality"`
	HeadName            string             `bson:"headName" json:"headName"`
	DeclaredMemberCount int                `bson:"memberCount" json:"memberCount"`
	SubEventID          string             `bson:"subEventId,omitempty" json:"subEventId,omitempty"`
	MemberIDs           []string           `bson:"memberIds,omitempty" json:"memberIds,omitempty"`
	Arrival             ArrivalInfo        `bson:"arrivalInfo" json:"arrivalInfo"`
	DepartureSessions   []DepartureSession `bson:"departureSessions" json:"departureSessions"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ListsMember reports whether the delegation's own member list contains memberID
func (d Delegation) ListsMember(memberID string) bool {
	for _, id := range d.MemberIDs {
		if id == memberID {
			return true
		}
	}
	return false
}
