package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"pastebin/internal/checklist"
)

func (s *Server) handleChecklistPage(w http.ResponseWriter, r *http.Request) {
	data := ViewData{Title: "Checklist", ContentTemplate: "checklist"}
	s.views.RenderPage(w, data)
}

func (s *Server) handleAPITasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	date := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	tasks, err := s.tasks.List(date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if tasks == nil {
		tasks = []checklist.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleAPIAddTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Date string `json:"date"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing data"})
		return
	}

	switch err := s.tasks.Add(req.Date, req.Text); {
	case errors.Is(err, checklist.ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing data"})
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) handleAPIUpdateTask(w http.ResponseWriter, r *http.Request) {
	s.taskIndexOp(w, r, s.tasks.Toggle)
}

func (s *Server) handleAPIDeleteTask(w http.ResponseWriter, r *http.Request) {
	s.taskIndexOp(w, r, s.tasks.Delete)
}

func (s *Server) taskIndexOp(w http.ResponseWriter, r *http.Request, op func(string, int) error) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Date  string `json:"date"`
		Index int    `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid task"})
		return
	}

	switch err := op(req.Date, req.Index); {
	case errors.Is(err, checklist.ErrNotFound):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid task"})
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) handleViewTask(w http.ResponseWriter, r *http.Request) {
	s.taskNotePage(w, r, "/view_task/", "view_task")
}

func (s *Server) handleEditTask(w http.ResponseWriter, r *http.Request) {
	s.taskNotePage(w, r, "/edit_task/", "edit_task")
}

// taskNotePage serves the per-task note views: GET renders the note form,
// POST stores the trimmed note and returns to the checklist.
func (s *Server) taskNotePage(w http.ResponseWriter, r *http.Request, prefix, tmpl string) {
	date, index, ok := splitTaskPath(strings.TrimPrefix(r.URL.Path, prefix))
	if !ok {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		note := strings.TrimSpace(r.Form.Get("note"))
		if err := s.tasks.SetNote(date, index, note); err != nil {
			if errors.Is(err, checklist.ErrNotFound) {
				http.Error(w, "Task not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		redirectPath(w, r, "/checklist", "")
		return
	}

	task, err := s.tasks.Get(date, index)
	if err != nil {
		if errors.Is(err, checklist.ErrNotFound) {
			http.Error(w, "Task not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data := ViewData{
		Title:           "Task note",
		ContentTemplate: tmpl,
		Date:            date,
		Index:           index,
		TaskNote:        task.Note,
		TaskCreatedAt:   task.CreatedAt,
	}
	s.views.RenderPage(w, data)
}

func splitTaskPath(rest string) (date string, index int, ok bool) {
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		return "", 0, false
	}
	i, err := strconv.Atoi(parts[1])
	if err != nil || i < 0 {
		return "", 0, false
	}
	return parts[0], i, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
