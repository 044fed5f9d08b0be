package web

import (
	"net/http"

	"pastebin/internal/checklist"
	"pastebin/internal/config"
	"pastebin/internal/notes"
	"pastebin/internal/secret"
	"pastebin/internal/uploads"
)

type Server struct {
	cfg   config.Config
	notes *notes.Store
	tasks *checklist.Engine
	files *uploads.Dir
	gate  *secret.Gate
	mux   *http.ServeMux
	views *Templates
}

func NewServer(cfg config.Config, store *notes.Store, tasks *checklist.Engine, files *uploads.Dir) (*Server, error) {
	gate, err := secret.New(cfg.Secret)
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:   cfg,
		notes: store,
		tasks: tasks,
		files: files,
		gate:  gate,
		mux:   http.NewServeMux(),
		views: MustParseTemplates(),
	}
	s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleHome)
	s.mux.HandleFunc("/create_folder", s.handleCreateFolder)
	s.mux.HandleFunc("/view_folder/", s.handleViewFolder)
	s.mux.HandleFunc("/rename_folder/", s.handleRenameFolder)
	s.mux.HandleFunc("/delete_folder/", s.handleDeleteFolder)
	s.mux.HandleFunc("/save", s.handleSaveNote)
	s.mux.HandleFunc("/view/", s.handleViewNote)
	s.mux.HandleFunc("/edit/", s.handleEditNote)
	s.mux.HandleFunc("/update/", s.handleUpdateNote)
	s.mux.HandleFunc("/delete/", s.handleDeleteNote)
	s.mux.HandleFunc("/upload", s.handleUpload)
	s.mux.HandleFunc("/upload/", s.handleUpload)
	s.mux.HandleFunc("/uploads/", s.handleServeUpload)
	s.mux.HandleFunc("/delete_file/", s.handleDeleteFile)
	s.mux.HandleFunc("/checklist", s.handleChecklistPage)
	s.mux.HandleFunc("/api/tasks/", s.handleAPITasks)
	s.mux.HandleFunc("/api/add_task", s.handleAPIAddTask)
	s.mux.HandleFunc("/api/update_task", s.handleAPIUpdateTask)
	s.mux.HandleFunc("/api/delete_task", s.handleAPIDeleteTask)
	s.mux.HandleFunc("/view_task/", s.handleViewTask)
	s.mux.HandleFunc("/edit_task/", s.handleEditTask)
}
