package http

import (
	"net/http"

	"gymadmin/internal/core"
)

const (
	memberNotFound = "Member not found"
	planNotFound   = "Membership plan not found"
)

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.svc.ListMembers(r.Context())
	if err != nil {
		s.writeError(w, r, err, memberNotFound)
		return
	}
	OK(members).Write(w)
}

func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, memberNotFound)
		return
	}
	m, err := s.svc.GetMember(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, memberNotFound)
		return
	}
	OK(m).Write(w)
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var in core.MemberInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, memberNotFound)
		return
	}
	m, err := s.svc.CreateMember(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, memberNotFound)
		return
	}
	Created(m).Write(w)
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, memberNotFound)
		return
	}
	var patch core.MemberPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err, memberNotFound)
		return
	}
	m, err := s.svc.UpdateMember(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, err, memberNotFound)
		return
	}
	OK(m).Write(w)
}

func (s *Server) handleMemberSubscriptions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, memberNotFound)
		return
	}
	subs, err := s.svc.MemberSubscriptions(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, memberNotFound)
		return
	}
	OK(subs).Write(w)
}

func (s *Server) handleMemberPayments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, memberNotFound)
		return
	}
	payments, err := s.svc.MemberPayments(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, memberNotFound)
		return
	}
	OK(payments).Write(w)
}

func (s *Server) handleMemberAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, memberNotFound)
		return
	}
	records, err := s.svc.MemberAttendance(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, memberNotFound)
		return
	}
	OK(records).Write(w)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.svc.ListPlans(r.Context())
	if err != nil {
		s.writeError(w, r, err, planNotFound)
		return
	}
	OK(plans).Write(w)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, planNotFound)
		return
	}
	p, err := s.svc.GetPlan(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, planNotFound)
		return
	}
	OK(p).Write(w)
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var in core.PlanInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, planNotFound)
		return
	}
	p, err := s.svc.CreatePlan(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, planNotFound)
		return
	}
	Created(p).Write(w)
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, planNotFound)
		return
	}
	var patch core.PlanPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err, planNotFound)
		return
	}
	p, err := s.svc.UpdatePlan(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, err, planNotFound)
		return
	}
	OK(p).Write(w)
}
