// Package api exposes the reconciled member view and the mutation endpoints over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"delegation-service/internal/domain/entity"
	"delegation-service/internal/domain/repository"
	"delegation-service/internal/usecase"
	"delegation-service/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// MemberReader is the read side used by the handlers
type MemberReader interface {
	Rows() []entity.ReconciledMember
	Issues() []entity.Issue
	UpdatedAt() time.Time
	RowsForEvent(segment string) []entity.ReconciledMember
	RowsForPath(eventSegment, subEventID, delegationID string) []entity.ReconciledMember
}

// Handler holds all HTTP handlers of the delegation API
type Handler struct {
	view      MemberReader
	mutations *usecase.MutationService
	validate  *validator.Validate
	logger    logger.Logger
}

// NewHandler creates the API handler
func NewHandler(view MemberReader, mutations *usecase.MutationService, logger logger.Logger) *Handler {
	return &Handler{
		view:      view,
		mutations: mutations,
		validate:  NewValidator(),
		logger:    logger,
	}
}

// Routes mounts the API on r
func (h *Handler) Routes(r chi.Router) {
	r.Get("/members", h.ListMembers)
	r.Get("/issues", h.ListIssues)
	r.Get("/events/{event}/members", h.ListEventMembers)
	r.Get("/events/{event}/{subEvent}/{delegation}/members", h.ListDelegationMembers)

	r.Post("/events", h.CreateMainEvent)
	r.Post("/events/{event}/sub-events", h.CreateSubEvent)
	r.Put("/delegations/{id}", h.SaveDelegation)
	r.Post("/delegations/{id}/departures", h.AddDeparture)
	r.Put("/members/{id}", h.SaveMember)
	r.Delete("/members/{id}", h.DeleteMember)
	r.Post("/refresh", h.Refresh)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// pathParam returns the unescaped URL parameter
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func (h *Handler) membersResponse(rows []entity.ReconciledMember) MembersResponse {
	if rows == nil {
		rows = []entity.ReconciledMember{}
	}
	resp := MembersResponse{Members: rows, Count: len(rows)}
	if t := h.view.UpdatedAt(); !t.IsZero() {
		resp.UpdatedAt = t.UTC().Format(time.RFC3339)
	}
	return resp
}

// ListMembers handles GET /api/members
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.membersResponse(h.view.Rows()))
}

// ListIssues handles GET /api/issues
func (h *Handler) ListIssues(w http.ResponseWriter, r *http.Request) {
	issues := h.view.Issues()
	if issues == nil {
		issues = []entity.Issue{}
	}
	writeJSON(w, http.StatusOK, IssuesResponse{Issues: issues, Count: len(issues)})
}

// ListEventMembers handles GET /api/events/{event}/members
func (h *Handler) ListEventMembers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.membersResponse(h.view.RowsForEvent(pathParam(r, "event"))))
}

// ListDelegationMembers handles GET /api/events/{event}/{subEvent}/{delegation}/members
func (h *Handler) ListDelegationMembers(w http.ResponseWriter, r *http.Request) {
	rows := h.view.RowsForPath(pathParam(r, "event"), pathParam(r, "subEvent"), pathParam(r, "delegation"))
	writeJSON(w, http.StatusOK, h.membersResponse(rows))
}

// CreateMainEvent handles POST /api/events
func (h *Handler) CreateMainEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateMainEventRequest
	if !h.decode(w, r, &req) {
		return
	}

	event := &entity.MainEvent{DisplayName: req.DisplayName, LinkName: req.LinkName}
	slug, err := h.mutations.CreateMainEvent(r.Context(), event)
	if err != nil {
		h.writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"event": event, "slug": slug, "path": "/" + slug})
}

// CreateSubEvent handles POST /api/events/{event}/sub-events where {event} is the main event id
func (h *Handler) CreateSubEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateSubEventRequest
	if !h.decode(w, r, &req) {
		return
	}

	event := &entity.SubEvent{DisplayName: req.DisplayName, MainEventID: pathParam(r, "event")}
	if err := h.mutations.CreateSubEvent(r.Context(), event); err != nil {
		h.writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// SaveDelegation handles PUT /api/delegations/{id}
func (h *Handler) SaveDelegation(w http.ResponseWriter, r *http.Request) {
	var req SaveDelegationRequest
	if !h.decode(w, r, &req) {
		return
	}

	delegation := &entity.Delegation{
		ID:                  pathParam(r, "id"),
		NationalityLabel:    req.NationalityLabel,
		HeadName:            req.HeadName,
		DeclaredMemberCount: req.DeclaredMemberCount,
		SubEventID:          req.SubEventID,
		MemberIDs:           req.MemberIDs,
		Arrival:             req.Arrival,
	}
	if err := h.mutations.SaveDelegation(r.Context(), delegation); err != nil {
		h.writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, delegation)
}

// AddDeparture handles POST /api/delegations/{id}/departures
func (h *Handler) AddDeparture(w http.ResponseWriter, r *http.Request) {
	var req AddDepartureRequest
	if !h.decode(w, r, &req) {
		return
	}

	session := &entity.DepartureSession{
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
		Destination:   req.Destination,
		FlightNumber:  req.FlightNumber,
		Airline:       req.Airline,
		MemberIDs:     req.MemberIDs,
		Notes:         req.Notes,
	}
	if err := h.mutations.AddDepartureSession(r.Context(), pathParam(r, "id"), session); err != nil {
		h.writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// SaveMember handles PUT /api/members/{id}
func (h *Handler) SaveMember(w http.ResponseWriter, r *http.Request) {
	var req SaveMemberRequest
	if !h.decode(w, r, &req) {
		return
	}

	member := &entity.Member{
		ID:                     pathParam(r, "id"),
		Rank:                   req.Rank,
		Name:                   req.Name,
		JobTitle:               req.JobTitle,
		EquivalentPositionID:   req.EquivalentPositionID,
		EquivalentPositionName: req.EquivalentPositionName,
		DelegationID:           req.DelegationID,
		Status:                 req.Status,
		DepartureDate:          req.DepartureDate,
	}
	if err := h.mutations.SaveMember(r.Context(), member); err != nil {
		h.writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

// DeleteMember handles DELETE /api/members/{id}
func (h *Handler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := h.mutations.DeleteMember(r.Context(), pathParam(r, "id")); err != nil {
		h.writeMutationError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Refresh handles POST /api/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.mutations.RequestRefresh()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh requested"})
}

func (h *Handler) writeMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, usecase.ErrEmptySlug):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrSlugTaken), errors.Is(err, usecase.ErrAlreadyDeparted):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("Mutation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
