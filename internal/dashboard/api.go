package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dailyfocus/dailyfocus/internal/cloudsync"
	"github.com/dailyfocus/dailyfocus/internal/dates"
	"github.com/dailyfocus/dailyfocus/internal/persist"
	"github.com/dailyfocus/dailyfocus/internal/query"
	"github.com/dailyfocus/dailyfocus/internal/store"
	"github.com/dailyfocus/dailyfocus/internal/tracker"
)

const maxRequestBytes = 1 << 20

// createTaskRequest is the body of POST /api/tasks. Due accepts a code name,
// an ISO date or a phrase.
type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    bool   `json:"priority"`
	Urgency     bool   `json:"urgency"`
	Due         string `json:"due"`
	Tag         string `json:"tag"`
}

type postponeRequest struct {
	Days int `json:"days"`
}

type downloadRequest struct {
	Handle string `json:"handle"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q, err := taskQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Tasks(q))
}

func taskQuery(r *http.Request) (tracker.TaskQuery, error) {
	v := r.URL.Query()
	var q tracker.TaskQuery
	var err error

	if q.View, err = query.ParseView(v.Get("view")); err != nil {
		return q, err
	}
	if q.Status, err = query.ParseStatus(v.Get("status")); err != nil {
		return q, err
	}
	if q.Sort, err = query.ParseSortKey(v.Get("sort")); err != nil {
		return q, err
	}
	if q.Range, err = query.ParseRange(v.Get("period"), v.Get("from"), v.Get("to")); err != nil {
		return q, err
	}
	if q.Field, err = query.ParseField(v.Get("field")); err != nil {
		return q, err
	}
	q.Tag = v.Get("tag")
	q.Search = v.Get("q")
	if q.Page, err = intParam(v.Get("page"), 1); err != nil {
		return q, err
	}
	if q.PageSize, err = intParam(v.Get("size"), 20); err != nil {
		return q, err
	}
	return q, nil
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	due, err := dates.ParseDue(req.Due, s.tracker.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	task, err := s.tracker.CreateTask(r.Context(), req.Title, store.TaskAttrs{
		Description: req.Description,
		Priority:    req.Priority,
		Urgency:     req.Urgency,
		DueDate:     due,
		Tag:         req.Tag,
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// taskCommand adapts an id command to a handler answering 404 for unknown
// ids.
func (s *Server) taskCommand(fn func(ctx context.Context, id string) (bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		ok, err := fn(r.Context(), id)
		s.commandResult(w, id, ok, err)
	}
}

func (s *Server) handlePurgeTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ok, err := s.tracker.PermanentDelete(r.Context(), id)
	s.commandResult(w, id, ok, err)
}

func (s *Server) handlePostpone(w http.ResponseWriter, r *http.Request) {
	var req postponeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id := r.PathValue("id")
	if _, ok := s.tracker.Task(id); !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("task %s not found", id))
		return
	}
	ok, err := s.tracker.ExtendDueDate(r.Context(), id, req.Days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	task, _ := s.tracker.Task(id)
	writeJSON(w, http.StatusOK, map[string]any{"changed": ok, "task": task})
}

func (s *Server) commandResult(w http.ResponseWriter, id string, ok bool, err error) {
	switch {
	case err != nil:
		writeError(w, statusFor(err), err)
	case !ok:
		writeError(w, http.StatusNotFound, fmt.Errorf("task %s not found", id))
	default:
		task, _ := s.tracker.Task(id)
		writeJSON(w, http.StatusOK, map[string]any{"changed": true, "task": task})
	}
}

func (s *Server) handleOrganize(w http.ResponseWriter, r *http.Request) {
	n, err := s.tracker.OrganizeInbox(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"organized": n})
}

func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Inbox())
}

func (s *Server) handleQuadrants(w http.ResponseWriter, r *http.Request) {
	rng, err := query.ParseRange(r.URL.Query().Get("period"), r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Quadrants(rng))
}

// handleBoard serves one page of the board, nine tasks per quadrant unless
// size says otherwise.
func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	rng, err := query.ParseRange(v.Get("period"), v.Get("from"), v.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	page, err := intParam(v.Get("page"), 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	size, err := intParam(v.Get("size"), store.BoardPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.QuadrantPage(rng, page, size))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	rng, err := query.ParseRange(r.URL.Query().Get("period"), r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Stats(rng))
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	active, completed := s.tracker.Goals()
	writeJSON(w, http.StatusOK, map[string]any{"active": active, "completed": completed})
}

func (s *Server) handleReadings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Readings())
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Tags())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	f, err := persist.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	data, name, err := s.tracker.Export(f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", contentType(f))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	_, _ = w.Write(data)
}

func (s *Server) handleSyncUpload(w http.ResponseWriter, r *http.Request) {
	e := s.tracker.Sync()
	if e == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("sync is not configured"))
		return
	}
	writeSyncResult(w, e.Upload(r.Context()))
}

func (s *Server) handleSyncDownload(w http.ResponseWriter, r *http.Request) {
	e := s.tracker.Sync()
	if e == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("sync is not configured"))
		return
	}
	var req downloadRequest
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	handle := strings.TrimSpace(req.Handle)
	if handle == "" {
		stored, err := s.tracker.Gateway().RemoteHandle(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		handle = stored
	}
	writeSyncResult(w, e.Download(r.Context(), handle))
}

func writeSyncResult(w http.ResponseWriter, res cloudsync.Result) {
	status := http.StatusOK
	switch {
	case res.Success:
	case errors.Is(res.Err, cloudsync.ErrBusy):
		status = http.StatusConflict
	case errors.Is(res.Err, cloudsync.ErrMissingCredential), errors.Is(res.Err, cloudsync.ErrMissingRemoteHandle):
		status = http.StatusBadRequest
	default:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, res)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrEmptyTitle), store.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func contentType(f persist.Format) string {
	switch f {
	case persist.FormatYAML:
		return "application/yaml"
	case persist.FormatTOML:
		return "application/toml"
	default:
		return "application/json"
	}
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return n, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
