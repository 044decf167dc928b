package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"gymadmin/internal/core"
	"gymadmin/internal/log"
	"gymadmin/internal/reports"
)

const settingNotFound = "Setting not found"

func (s *Server) handleListActivity(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	entries, err := s.svc.ListActivity(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	OK(entries).Write(w)
}

func (s *Server) handleListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.svc.ListSettings(r.Context())
	if err != nil {
		s.writeError(w, r, err, settingNotFound)
		return
	}
	OK(settings).Write(w)
}

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.GetSetting(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		s.writeError(w, r, err, settingNotFound)
		return
	}
	OK(st).Write(w)
}

func (s *Server) handleUpdateSetting(w http.ResponseWriter, r *http.Request) {
	var upd core.SettingUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		s.writeError(w, r, err, settingNotFound)
		return
	}
	st, err := s.svc.UpdateSetting(r.Context(), mux.Vars(r)["key"], upd)
	if err != nil {
		s.writeError(w, r, err, settingNotFound)
		return
	}
	OK(st).Write(w)
}

// handleDashboard recomputes the dashboard on every request.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
	defer cancel()

	snap, err := reports.Load(ctx, s.svc.Store())
	if err != nil {
		s.writeError(w, r, fmt.Errorf("load dashboard: %w", err), "")
		return
	}
	recent, err := s.svc.ListActivity(ctx, reports.RecentActivityLimit)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	OK(reports.BuildDashboard(snap, recent, s.svc.Now())).Write(w)
}

// handleReports serves the reports bundle from a cache keyed on the gym's
// date and the service revision, so any write is visible on the next call.
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	key := fmt.Sprintf("%s/%d", s.svc.Today(), s.svc.Revision())

	report, err := s.reportCache.Get(r.Context(), key, func(ctx context.Context) (reports.Report, error) {
		// The load is shared by every waiter on key.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
		defer cancel()

		snap, err := reports.Load(ctx, s.svc.Store())
		if err != nil {
			return reports.Report{}, fmt.Errorf("load reports: %w", err)
		}
		log.FromContext(ctx).WithComponent(log.ComponentReports).DebugContext(ctx, "Reports computed",
			log.FieldOperation, log.OpReport,
			"cache_key", key,
			log.FieldCount, len(snap.Members))
		return reports.Build(snap, s.svc.Now()), nil
	})
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	OK(report).Write(w)
}
