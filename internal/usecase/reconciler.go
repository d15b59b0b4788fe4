package usecase

import (
	"fmt"
	"net/url"
	"strings"

	"delegation-service/internal/domain/entity"
	"delegation-service/pkg/utils"
)

// Snapshot is one already-fetched copy of every collection the member view is built from
type Snapshot struct {
	Members     []entity.Member
	Delegations []entity.Delegation
	SubEvents   []entity.SubEvent
	MainEvents  []entity.MainEvent
	// DepartureSessions holds sessions stored outside their delegation
	DepartureSessions []entity.DepartureSession
	Airlines          []entity.Airline
	Positions         []entity.EquivalentPosition
}

// ReconcileResult is the denormalized view plus the data-quality signals found building it
type ReconcileResult struct {
	Members []entity.ReconciledMember
	Issues  []entity.Issue
}

// index is rebuilt on every call; nothing survives between reconciliations
type index struct {
	delegations    []entity.Delegation // sessions merged
	delegationByID map[string]int
	subEvents      map[string]*entity.SubEvent
	mainEvents     map[string]*entity.MainEvent
	airlines       map[string]string
	positions      map[string]string
	actualCount    []int
}

// Reconcile joins members with their delegation, sub event and main event.
// It depends only on snap. A failure while building one row never affects another.
func Reconcile(snap Snapshot) *ReconcileResult {
	idx := buildIndex(snap)

	resolved := make([]int, len(snap.Members))
	for i, m := range snap.Members {
		resolved[i] = idx.resolveDelegation(m)
		if resolved[i] >= 0 {
			idx.actualCount[resolved[i]]++
		}
	}

	result := &ReconcileResult{
		Members: make([]entity.ReconciledMember, 0, len(snap.Members)),
	}
	for i, m := range snap.Members {
		row, issues := idx.buildRowSafe(m, resolved[i])
		result.Members = append(result.Members, row)
		result.Issues = append(result.Issues, issues...)
	}

	for i, d := range idx.delegations {
		if _, ok := utils.DisplayDate(d.Arrival.Date, ""); !ok {
			result.Issues = append(result.Issues, entity.Issue{
				Kind:     entity.IssueMalformedDate,
				EntityID: d.ID,
				Detail:   "arrival date " + d.Arrival.Date,
			})
		}
		if d.DeclaredMemberCount > 0 && idx.actualCount[i] > d.DeclaredMemberCount {
			result.Issues = append(result.Issues, entity.Issue{
				Kind:     entity.IssueOverCapacity,
				EntityID: d.ID,
				Detail:   fmt.Sprintf("%d members for %d declared", idx.actualCount[i], d.DeclaredMemberCount),
			})
		}
	}
	return result
}

func buildIndex(snap Snapshot) *index {
	idx := &index{
		delegationByID: make(map[string]int, len(snap.Delegations)),
		subEvents:      make(map[string]*entity.SubEvent, len(snap.SubEvents)),
		mainEvents:     make(map[string]*entity.MainEvent, len(snap.MainEvents)),
		airlines:       make(map[string]string, len(snap.Airlines)),
		positions:      make(map[string]string, len(snap.Positions)),
	}

	detached := make(map[string][]entity.DepartureSession)
	for _, s := range snap.DepartureSessions {
		if s.DelegationID != "" {
			detached[s.DelegationID] = append(detached[s.DelegationID], s)
		}
	}

	idx.delegations = make([]entity.Delegation, 0, len(snap.Delegations))
	for _, d := range snap.Delegations {
		if d.ID == "" {
			continue
		}
		if _, dup := idx.delegationByID[d.ID]; dup {
			continue
		}
		d.DepartureSessions = mergeSessions(d.DepartureSessions, detached[d.ID])
		idx.delegationByID[d.ID] = len(idx.delegations)
		idx.delegations = append(idx.delegations, d)
	}
	idx.actualCount = make([]int, len(idx.delegations))

	for i := range snap.SubEvents {
		s := &snap.SubEvents[i]
		if _, dup := idx.subEvents[s.ID]; !dup && s.ID != "" {
			idx.subEvents[s.ID] = s
		}
	}
	for i := range snap.MainEvents {
		e := &snap.MainEvents[i]
		if _, dup := idx.mainEvents[e.ID]; !dup && e.ID != "" {
			idx.mainEvents[e.ID] = e
		}
	}
	for _, a := range snap.Airlines {
		if key := lookupKey(a.Code); key != "" {
			if _, dup := idx.airlines[key]; !dup {
				idx.airlines[key] = a.Name
			}
		}
	}
	for _, p := range snap.Positions {
		if key := lookupKey(p.Code); key != "" {
			if _, dup := idx.positions[key]; !dup {
				idx.positions[key] = p.Name
			}
		}
	}
	return idx
}

// mergeSessions keeps embedded sessions first, then detached ones, first id wins
func mergeSessions(embedded, detached []entity.DepartureSession) []entity.DepartureSession {
	if len(detached) == 0 {
		return embedded
	}
	out := make([]entity.DepartureSession, 0, len(embedded)+len(detached))
	seen := make(map[string]bool, len(embedded)+len(detached))
	for _, group := range [][]entity.DepartureSession{embedded, detached} {
		for _, s := range group {
			if s.ID != "" {
				if seen[s.ID] {
					continue
				}
				seen[s.ID] = true
			}
			out = append(out, s)
		}
	}
	return out
}

func lookupKey(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// resolveDelegation applies the fallback chain and returns -1 when nothing matches:
// primary reference, legacy reference, then the delegation's own member list.
func (idx *index) resolveDelegation(m entity.Member) int {
	for _, ref := range []string{m.DelegationID, m.LegacyDelegationID} {
		if ref == "" {
			continue
		}
		if i, ok := idx.delegationByID[ref]; ok {
			return i
		}
	}
	for i, d := range idx.delegations {
		if d.ListsMember(m.ID) {
			return i
		}
	}
	return -1
}

func (idx *index) buildRowSafe(m entity.Member, delegationIdx int) (row entity.ReconciledMember, issues []entity.Issue) {
	defer func() {
		if r := recover(); r != nil {
			row = unresolvedRow(m)
			issues = []entity.Issue{{
				Kind:     entity.IssueRowFailed,
				EntityID: m.ID,
				Detail:   fmt.Sprint(r),
			}}
		}
	}()
	return idx.buildRow(m, delegationIdx)
}

func unresolvedRow(m entity.Member) entity.ReconciledMember {
	return entity.ReconciledMember{
		MemberID:               m.ID,
		Rank:                   m.Rank,
		Name:                   m.Name,
		JobTitle:               m.JobTitle,
		EquivalentPositionName: m.EquivalentPositionName,
		DelegationID:           entity.UnknownValue,
		NationalityLabel:       entity.UnknownValue,
		HeadName:               entity.UnknownValue,
		SubEventName:           entity.UnknownValue,
		MainEventName:          entity.UnknownValue,
		Status:                 entity.StatusNotDeparted,
	}
}

func (idx *index) buildRow(m entity.Member, delegationIdx int) (entity.ReconciledMember, []entity.Issue) {
	var issues []entity.Issue
	row := unresolvedRow(m)
	if row.EquivalentPositionName == "" && m.EquivalentPositionID != "" {
		row.EquivalentPositionName = idx.positions[lookupKey(m.EquivalentPositionID)]
	}

	var delegation *entity.Delegation
	if delegationIdx >= 0 {
		delegation = &idx.delegations[delegationIdx]
		row.Delegation = idx.snapshotDelegation(delegation, delegationIdx)
		row.DelegationID = delegation.ID
		row.NationalityLabel = delegation.NationalityLabel
		row.HeadName = delegation.HeadName
	} else {
		issues = append(issues, entity.Issue{
			Kind:     entity.IssueUnresolvedDelegation,
			EntityID: m.ID,
			Detail:   fmt.Sprintf("delegationId=%q delegation_id=%q", m.DelegationID, m.LegacyDelegationID),
		})
	}

	status := DeriveStatus(m, delegation)
	row.Status = status.Status
	row.EffectiveDepartureDate = status.EffectiveDepartureDate
	row.DepartureSessionID = status.SessionID
	if len(status.AmbiguousSessionIDs) > 0 {
		issues = append(issues, entity.Issue{
			Kind:     entity.IssueAmbiguousDeparture,
			EntityID: m.ID,
			Detail: fmt.Sprintf("kept session %s, also listed in %s",
				status.SessionID, strings.Join(status.AmbiguousSessionIDs, ",")),
		})
	}
	if status.EffectiveDepartureDate != nil {
		display, ok := utils.DisplayDate(*status.EffectiveDepartureDate, entity.UnspecifiedValue)
		row.DepartureDateDisplay = display
		if !ok {
			issues = append(issues, entity.Issue{
				Kind:     entity.IssueMalformedDate,
				EntityID: m.ID,
				Detail:   "departure date " + *status.EffectiveDepartureDate,
			})
		}
	}

	if delegation == nil {
		return row, issues
	}

	sub, ok := idx.subEvents[delegation.SubEventID]
	if !ok {
		issues = append(issues, entity.Issue{
			Kind:     entity.IssueUnresolvedSubEvent,
			EntityID: delegation.ID,
			Detail:   fmt.Sprintf("subEventId=%q", delegation.SubEventID),
		})
		return row, issues
	}
	row.SubEvent = &entity.EventRef{ID: sub.ID, DisplayName: sub.DisplayName}
	row.SubEventName = sub.DisplayName

	main, ok := idx.mainEvents[sub.MainEventID]
	if !ok {
		issues = append(issues, entity.Issue{
			Kind:     entity.IssueUnresolvedMainEvent,
			EntityID: sub.ID,
			Detail:   fmt.Sprintf("mainEventId=%q", sub.MainEventID),
		})
		return row, issues
	}
	slug := utils.Normalize(main.DisplayName, main.LinkName)
	row.MainEvent = &entity.EventRef{ID: main.ID, DisplayName: main.DisplayName, Slug: slug}
	row.MainEventName = main.DisplayName
	row.Path = NavigationPath(slug, sub.ID, delegation.ID)

	return row, issues
}

func (idx *index) snapshotDelegation(d *entity.Delegation, i int) *entity.DelegationSnapshot {
	snap := &entity.DelegationSnapshot{
		ID:                  d.ID,
		NationalityLabel:    d.NationalityLabel,
		HeadName:            d.HeadName,
		DeclaredMemberCount: d.DeclaredMemberCount,
		ActualMemberCount:   idx.actualCount[i],
		OverCapacity:        d.DeclaredMemberCount > 0 && idx.actualCount[i] > d.DeclaredMemberCount,
		Arrival:             d.Arrival,
		ArrivalAirlineName:  d.Arrival.Airline,
	}
	if name, ok := idx.airlines[lookupKey(d.Arrival.Airline)]; ok && name != "" {
		snap.ArrivalAirlineName = name
	}

	snap.ArrivalDateDisplay, _ = utils.DisplayDate(d.Arrival.Date, entity.UnspecifiedValue)
	return snap
}

// NavigationPath builds "/<event slug>/<sub event id>/<delegation id>".
// It returns nil when the slug is empty.
func NavigationPath(eventSlug, subEventID, delegationID string) *string {
	if eventSlug == "" || subEventID == "" || delegationID == "" {
		return nil
	}
	path := "/" + eventSlug + "/" + url.PathEscape(subEventID) + "/" + url.PathEscape(delegationID)
	return &path
}
