package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/talentstream/talentstream/internal/search"
	"github.com/talentstream/talentstream/internal/stream"
	"github.com/talentstream/talentstream/internal/telemetry"
)

const maxUsernameLength = 128

// sanitizeUsername keeps the first whitespace-separated token, truncated.
func sanitizeUsername(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	username := fields[0]
	if len(username) > maxUsernameLength {
		username = username[:maxUsernameLength]
	}
	return username
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	username := sanitizeUsername(r.URL.Query().Get("username"))
	if username == "" {
		s.writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	cfg := search.GitHubConfig{
		Username:             username,
		IncludeProjects:      true,
		IncludeContributions: true,
		MaxRepos:             search.DefaultMaxRepos,
	}

	s.serveStream(w, r, search.TypeGitHubResume, search.GitHubJob(cfg, s.analyzer))
}

func (s *Server) handleExecuteSearch(w http.ResponseWriter, r *http.Request) {
	var req search.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Normalize()

	job, err := search.Build(&req, s.analyzer, s.agent)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.serveStream(w, r, req.SearchType, job)
}

func (s *Server) handleConfigTemplate(w http.ResponseWriter, r *http.Request) {
	searchType := search.Type(chi.URLParam(r, "searchType"))

	tmpl, err := search.Template(searchType)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, tmpl)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	sessions, err := s.sessions.ListSessions(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	type sessionView struct {
		ID         string     `json:"id"`
		SearchType string     `json:"search_type"`
		Outcome    string     `json:"outcome,omitempty"`
		Reason     string     `json:"reason,omitempty"`
		StartedAt  time.Time  `json:"started_at"`
		FinishedAt *time.Time `json:"finished_at,omitempty"`
	}

	views := make([]sessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, sessionView{
			ID:         session.ID.String(),
			SearchType: session.SearchType,
			Outcome:    session.Outcome,
			Reason:     session.Reason,
			StartedAt:  session.StartedAt,
			FinishedAt: session.FinishedAt,
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"sessions": views})
}

// serveStream records the session, runs the stream to its outcome, then
// records how it ended. Outcome recording survives client disconnects.
func (s *Server) serveStream(w http.ResponseWriter, r *http.Request, searchType search.Type, job stream.JobFunc) {
	ctx := r.Context()
	log := zerolog.Ctx(ctx)

	telemetry.GetMetrics().SearchesStarted.Add(ctx, 1)

	session, err := s.sessions.RecordStart(ctx, string(searchType))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to record session")
		return
	}

	outcome := s.mux.Serve(w, r, job)

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.sessions.RecordOutcome(recordCtx, session.ID, outcomeName(outcome), outcomeReason(outcome)); err != nil {
		log.Error().Err(err).Str("session_id", session.ID.String()).Msg("failed to record session outcome")
	}
}

func outcomeName(o stream.Outcome) string {
	return o.String()
}

func outcomeReason(o stream.Outcome) string {
	switch o {
	case stream.OutcomeTimedOut:
		return "no progress within the idle window"
	case stream.OutcomeDisconnected:
		return "client disconnected"
	default:
		return ""
	}
}
