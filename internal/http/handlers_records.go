package http

import (
	"net/http"

	"gymadmin/internal/core"
)

const (
	subscriptionNotFound = "Subscription not found"
	paymentNotFound      = "Payment not found"
	attendanceNotFound   = "Attendance record not found"
	equipmentNotFound    = "Equipment not found"
)

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.svc.ListSubscriptions(r.Context())
	if err != nil {
		s.writeError(w, r, err, subscriptionNotFound)
		return
	}
	OK(subs).Write(w)
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, subscriptionNotFound)
		return
	}
	sub, err := s.svc.GetSubscription(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, subscriptionNotFound)
		return
	}
	OK(sub).Write(w)
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var in core.SubscriptionInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, subscriptionNotFound)
		return
	}
	sub, err := s.svc.CreateSubscription(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, subscriptionNotFound)
		return
	}
	Created(sub).Write(w)
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, subscriptionNotFound)
		return
	}
	var patch core.SubscriptionPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err, subscriptionNotFound)
		return
	}
	sub, err := s.svc.UpdateSubscription(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, err, subscriptionNotFound)
		return
	}
	OK(sub).Write(w)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.svc.ListPayments(r.Context())
	if err != nil {
		s.writeError(w, r, err, paymentNotFound)
		return
	}
	OK(payments).Write(w)
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, paymentNotFound)
		return
	}
	p, err := s.svc.GetPayment(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, paymentNotFound)
		return
	}
	OK(p).Write(w)
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var in core.PaymentInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, paymentNotFound)
		return
	}
	p, err := s.svc.CreatePayment(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, paymentNotFound)
		return
	}
	Created(p).Write(w)
}

func (s *Server) handleListAttendance(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.ListAttendance(r.Context())
	if err != nil {
		s.writeError(w, r, err, attendanceNotFound)
		return
	}
	OK(records).Write(w)
}

func (s *Server) handleGetAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, attendanceNotFound)
		return
	}
	a, err := s.svc.GetAttendance(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, attendanceNotFound)
		return
	}
	OK(a).Write(w)
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var in core.AttendanceInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, attendanceNotFound)
		return
	}
	a, err := s.svc.CheckIn(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, attendanceNotFound)
		return
	}
	Created(a).Write(w)
}

func (s *Server) handleUpdateAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, attendanceNotFound)
		return
	}
	var patch core.AttendancePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err, attendanceNotFound)
		return
	}
	a, err := s.svc.UpdateAttendance(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, err, attendanceNotFound)
		return
	}
	OK(a).Write(w)
}

func (s *Server) handleListEquipment(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.ListEquipment(r.Context())
	if err != nil {
		s.writeError(w, r, err, equipmentNotFound)
		return
	}
	OK(items).Write(w)
}

func (s *Server) handleGetEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, equipmentNotFound)
		return
	}
	e, err := s.svc.GetEquipment(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, equipmentNotFound)
		return
	}
	OK(e).Write(w)
}

func (s *Server) handleCreateEquipment(w http.ResponseWriter, r *http.Request) {
	var in core.EquipmentInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, equipmentNotFound)
		return
	}
	e, err := s.svc.CreateEquipment(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, equipmentNotFound)
		return
	}
	Created(e).Write(w)
}

func (s *Server) handleUpdateEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, equipmentNotFound)
		return
	}
	var patch core.EquipmentPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err, equipmentNotFound)
		return
	}
	e, err := s.svc.UpdateEquipment(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, err, equipmentNotFound)
		return
	}
	OK(e).Write(w)
}
