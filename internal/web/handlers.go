package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"pastebin/internal/notes"
	"pastebin/internal/storage/fs"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	files, err := s.files.List("")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := ViewData{
		Title:           "Home",
		ContentTemplate: "home",
		Notes:           reversed(s.notes.All()),
		Folders:         s.notes.Folders(),
		Files:           files,
	}
	s.views.RenderPage(w, data)
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, err := s.notes.CreateFolder(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	redirectPath(w, r, "/", "")
}

func (s *Server) handleViewFolder(w http.ResponseWriter, r *http.Request) {
	folder := strings.TrimPrefix(r.URL.Path, "/view_folder/")
	if folder == "" {
		http.NotFound(w, r)
		return
	}

	files, err := s.files.List(folder)
	if err != nil && !errors.Is(err, fs.ErrUnsafePath) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := ViewData{
		Title:           folder,
		ContentTemplate: "folder",
		FolderName:      folder,
		Notes:           reversed(s.notes.NotesIn(folder)),
		Files:           files,
	}
	s.views.RenderPage(w, data)
}

func (s *Server) handleRenameFolder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	folder := strings.TrimPrefix(r.URL.Path, "/rename_folder/")
	if folder == "" {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	newName := strings.TrimSpace(r.Form.Get("new_name"))

	ok, err := s.notes.RenameFolder(folder, newName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		redirectPath(w, r, "/view_folder/"+folder, "")
		return
	}
	if err := s.files.Rename(folder, newName); err != nil {
		slog.Warn("rename upload dir", "folder", folder, "err", err)
	}
	redirectPath(w, r, "/view_folder/"+newName, "")
}

func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	folder := strings.TrimPrefix(r.URL.Path, "/delete_folder/")
	if folder == "" {
		http.NotFound(w, r)
		return
	}
	if !s.checkPassword(w, r) {
		return
	}

	// Notes go; the uploads directory stays, so uploaded files survive
	// folder deletion.
	if err := s.notes.DeleteFolder(folder); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	redirectPath(w, r, "/", "")
}

func (s *Server) handleSaveNote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	folder := strings.TrimSpace(r.Form.Get("folder"))
	title := strings.TrimSpace(r.Form.Get("title"))
	content := strings.TrimSpace(r.Form.Get("content"))

	if content == "" {
		redirectPath(w, r, "/", "")
		return
	}
	if _, err := s.notes.Save(folder, title, content); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if folder != "" {
		redirectPath(w, r, "/view_folder/"+folder, "")
		return
	}
	redirectPath(w, r, "/", "")
}

func (s *Server) handleViewNote(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/view/")
	content, _ := s.notes.Get(key)
	if content == "" {
		http.Error(w, "Note not found", http.StatusNotFound)
		return
	}

	htmlStr, err := renderMarkdown([]byte(content))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data := ViewData{
		Title:           key,
		ContentTemplate: "view",
		NoteKey:         key,
		RawContent:      content,
		RenderedHTML:    htmlTrusted(htmlStr),
	}
	s.views.RenderPage(w, data)
}

func (s *Server) handleEditNote(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/edit/")
	content, _ := s.notes.Get(key)
	if content == "" {
		http.Error(w, "Note not found", http.StatusNotFound)
		return
	}
	data := ViewData{
		Title:           "Edit: " + key,
		ContentTemplate: "edit",
		NoteKey:         key,
		RawContent:      content,
	}
	s.views.RenderPage(w, data)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	key := strings.TrimPrefix(r.URL.Path, "/update/")
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !s.checkPassword(w, r) {
		return
	}
	content := strings.TrimSpace(r.Form.Get("content"))

	ok, err := s.notes.Update(key, content)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Note not found", http.StatusNotFound)
		return
	}

	viewURL := url.URL{Path: "/view/" + key}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<html>
    <head>
        <meta http-equiv="refresh" content="2;url=%s">
    </head>
    <body style="font-family: sans-serif; text-align: center; margin-top: 50px;">
        <h2>✅ Note updated successfully!</h2>
        <p>Redirecting back to note...</p>
    </body>
</html>
`, viewURL.String())
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	key := strings.TrimPrefix(r.URL.Path, "/delete/")
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !s.checkPassword(w, r) {
		return
	}

	if _, err := s.notes.Delete(key); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if i := strings.Index(key, "/"); i > 0 {
		redirectPath(w, r, "/view_folder/"+key[:i], "notes")
		return
	}
	redirectPath(w, r, "/", "notes-section")
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	folder := ""
	if strings.HasPrefix(r.URL.Path, "/upload/") {
		folder = strings.TrimPrefix(r.URL.Path, "/upload/")
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// Best effort per file: one failed save does not roll back the rest.
	for _, fh := range r.MultipartForm.File["files"] {
		if fh.Filename == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			slog.Warn("open upload", "name", fh.Filename, "err", err)
			continue
		}
		if err := s.files.Save(folder, fh.Filename, f); err != nil {
			slog.Warn("save upload", "name", fh.Filename, "err", err)
		}
		f.Close()
	}

	if folder != "" {
		redirectPath(w, r, "/view_folder/"+folder, "upload-files")
		return
	}
	redirectPath(w, r, "/", "")
}

func (s *Server) handleServeUpload(w http.ResponseWriter, r *http.Request) {
	folder, name, ok := splitUploadPath(strings.TrimPrefix(r.URL.Path, "/uploads/"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	path, err := s.files.Path(folder, name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	folder, name, ok := splitUploadPath(strings.TrimPrefix(r.URL.Path, "/delete_file/"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	if folder == "" {
		// Top-level file deletion has no password gate; preserved as-is.
		if err := s.files.Remove("", name); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		redirectPath(w, r, "/", "")
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !s.checkPassword(w, r) {
		return
	}
	if err := s.files.Remove(folder, name); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	redirectPath(w, r, "/view_folder/"+folder, "files")
}

// checkPassword compares the submitted form password against the shared
// secret, writing the 403 itself on mismatch. The form must already be
// parsed or parseable.
func (s *Server) checkPassword(w http.ResponseWriter, r *http.Request) bool {
	_ = r.ParseForm()
	if !s.gate.Verify(r.Form.Get("password")) {
		http.Error(w, "Invalid password", http.StatusForbidden)
		return false
	}
	return true
}

func redirectPath(w http.ResponseWriter, r *http.Request, path, fragment string) {
	u := url.URL{Path: path, Fragment: fragment}
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

func reversed(in []notes.Note) []notes.Note {
	out := make([]notes.Note, 0, len(in))
	for i := len(in) - 1; i >= 0; i-- {
		out = append(out, in[i])
	}
	return out
}

func splitUploadPath(rest string) (folder, name string, ok bool) {
	if rest == "" {
		return "", "", false
	}
	parts := strings.Split(rest, "/")
	switch len(parts) {
	case 1:
		return "", parts[0], parts[0] != ""
	case 2:
		return parts[0], parts[1], parts[0] != "" && parts[1] != ""
	default:
		return "", "", false
	}
}
