package api

import "delegation-service/internal/domain/entity"

// CreateMainEventRequest is the body of POST /api/events
type CreateMainEventRequest struct {
	DisplayName string `json:"displayName" validate:"required,max=200"`
	LinkName    string `json:"linkName" validate:"omitempty,max=100"`
}

// CreateSubEventRequest is the body of POST /api/events/{event}/sub-events
type CreateSubEventRequest struct {
	DisplayName string `json:"displayName" validate:"required,max=200"`
}

// SaveDelegationRequest is the body of PUT /api/delegations/{id}
type SaveDelegationRequest struct {
	NationalityLabel    string             `json:"nationality" validate:"required"`
	HeadName            string             `json:"headName" validate:"required"`
	DeclaredMemberCount int                `json:"memberCount" validate:"gte=0"`
	SubEventID          string             `json:"subEventId"`
	MemberIDs           []string           `json:"memberIds" validate:"dive,required"`
	Arrival             entity.ArrivalInfo `json:"arrivalInfo"`
}

// AddDepartureRequest is the body of POST /api/delegations/{id}/departures
type AddDepartureRequest struct {
	ScheduledDate string   `json:"scheduledDate" validate:"required,departuredate"`
	ScheduledTime string   `json:"scheduledTime" validate:"omitempty,datetime=15:04"`
	Destination   string   `json:"destination"`
	FlightNumber  string   `json:"flightNumber" validate:"omitempty,max=10"`
	Airline       string   `json:"airline"`
	MemberIDs     []string `json:"memberIds" validate:"required,min=1,unique,dive,required"`
	Notes         string   `json:"notes"`
}

// SaveMemberRequest is the body of PUT /api/members/{id}
type SaveMemberRequest struct {
	Rank                   string              `json:"rank"`
	Name                   string              `json:"name" validate:"required"`
	JobTitle               string              `json:"jobTitle"`
	EquivalentPositionID   string              `json:"equivalentPositionId"`
	EquivalentPositionName string              `json:"equivalentPositionName"`
	DelegationID           string              `json:"delegationId"`
	Status                 entity.MemberStatus `json:"memberStatus" validate:"omitempty,oneof=DEPARTED NOT_DEPARTED"`
	DepartureDate          string              `json:"departureDate" validate:"omitempty,departuredate"`
}

// MembersResponse wraps reconciled rows
type MembersResponse struct {
	Members   []entity.ReconciledMember `json:"members"`
	Count     int                       `json:"count"`
	UpdatedAt string                    `json:"updatedAt,omitempty"`
}

// IssuesResponse wraps the data-quality report
type IssuesResponse struct {
	Issues []entity.Issue `json:"issues"`
	Count  int            `json:"count"`
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error string `json:"error"`
}
