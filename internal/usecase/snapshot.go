package usecase

import "delegation-service/internal/domain/entity"

// MergeSnapshots combines the remote store with the legacy cache.
// Remote records win; their empty fields are filled from the legacy record
// with the same id. Legacy-only records follow the remote ones in legacy order.
func MergeSnapshots(remote, legacy Snapshot) Snapshot {
	out := remote
	out.Members = mergeByID(remote.Members, legacy.Members,
		func(m entity.Member) string { return m.ID }, fillMember)
	out.Delegations = mergeByID(remote.Delegations, legacy.Delegations,
		func(d entity.Delegation) string { return d.ID }, fillDelegation)
	out.SubEvents = mergeByID(remote.SubEvents, legacy.SubEvents,
		func(s entity.SubEvent) string { return s.ID }, fillSubEvent)
	out.MainEvents = mergeByID(remote.MainEvents, legacy.MainEvents,
		func(e entity.MainEvent) string { return e.ID }, fillMainEvent)
	out.DepartureSessions = mergeByID(remote.DepartureSessions, legacy.DepartureSessions,
		func(s entity.DepartureSession) string { return s.DelegationID + "/" + s.ID }, nil)
	return out
}

func mergeByID[T any](primary, secondary []T, key func(T) string, fill func(dst *T, src T)) []T {
	if len(secondary) == 0 {
		return primary
	}
	out := make([]T, 0, len(primary)+len(secondary))
	pos := make(map[string]int, len(primary))
	for _, rec := range primary {
		if k := key(rec); k != "" {
			if _, dup := pos[k]; !dup {
				pos[k] = len(out)
			}
		}
		out = append(out, rec)
	}
	for _, rec := range secondary {
		k := key(rec)
		if i, ok := pos[k]; ok && k != "" {
			if fill != nil {
				fill(&out[i], rec)
			}
			continue
		}
		if k != "" {
			pos[k] = len(out)
		}
		out = append(out, rec)
	}
	return out
}

func fillString(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}

func fillMember(dst *entity.Member, src entity.Member) {
	fillString(&dst.Rank, src.Rank)
	fillString(&dst.Name, src.Name)
	fillString(&dst.JobTitle, src.JobTitle)
	fillString(&dst.EquivalentPositionID, src.EquivalentPositionID)
	fillString(&dst.EquivalentPositionName, src.EquivalentPositionName)
	fillString(&dst.DelegationID, src.DelegationID)
	fillString(&dst.LegacyDelegationID, src.LegacyDelegationID)
	if dst.Status == "" {
		dst.Status = src.Status
		fillString(&dst.DepartureDate, src.DepartureDate)
	}
}

func fillDelegation(dst *entity.Delegation, src entity.Delegation) {
	fillString(&dst.NationalityLabel, src.NationalityLabel)
	fillString(&dst.HeadName, src.HeadName)
	fillString(&dst.SubEventID, src.SubEventID)
	if dst.DeclaredMemberCount == 0 {
		dst.DeclaredMemberCount = src.DeclaredMemberCount
	}
	if len(dst.MemberIDs) == 0 {
		dst.MemberIDs = src.MemberIDs
	}
	if len(dst.DepartureSessions) == 0 {
		dst.DepartureSessions = src.DepartureSessions
	}
	if dst.Arrival == (entity.ArrivalInfo{}) {
		dst.Arrival = src.Arrival
	}
}

func fillSubEvent(dst *entity.SubEvent, src entity.SubEvent) {
	fillString(&dst.DisplayName, src.DisplayName)
	fillString(&dst.MainEventID, src.MainEventID)
}

func fillMainEvent(dst *entity.MainEvent, src entity.MainEvent) {
	fillString(&dst.DisplayName, src.DisplayName)
	fillString(&dst.LinkName, src.LinkName)
}
