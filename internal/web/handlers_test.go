package web

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pastebin/internal/checklist"
	"pastebin/internal/config"
	"pastebin/internal/notes"
	"pastebin/internal/uploads"
)

const testPassword = "letmein"

type testApp struct {
	ts    *httptest.Server
	notes *notes.Store
	files *uploads.Dir
	tasks *checklist.Engine
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	dir := t.TempDir()

	store, err := notes.Open(filepath.Join(dir, "notes.json"))
	if err != nil {
		t.Fatalf("open notes: %v", err)
	}
	loc, err := time.LoadLocation("America/Toronto")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	tasks := checklist.NewEngine(filepath.Join(dir, "checklist_data.json"), loc)
	files, err := uploads.NewDir(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("uploads dir: %v", err)
	}

	cfg := config.Config{Secret: testPassword}
	srv, err := NewServer(cfg, store, tasks, files)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testApp{ts: ts, notes: store, files: files, tasks: tasks}
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := http.PostForm(a.ts.URL+path, form)
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	return resp
}

func (a *testApp) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(a.ts.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp.StatusCode, string(body)
}

// noRedirect returns a client that surfaces the redirect response itself.
func noRedirect() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestSaveViewUpdateFlow(t *testing.T) {
	app := newTestApp(t)

	resp := app.postForm(t, "/save", url.Values{"title": {"x"}, "content": {"hello"}})
	resp.Body.Close()

	status, body := app.get(t, "/view/x")
	if status != http.StatusOK {
		t.Fatalf("view status %d", status)
	}
	if !strings.Contains(body, "hello") {
		t.Fatalf("expected note content in view, got %q", body)
	}

	resp = app.postForm(t, "/update/x", url.Values{"content": {"bye"}, "password": {testPassword}})
	updateBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status %d", resp.StatusCode)
	}
	if !strings.Contains(string(updateBody), "meta http-equiv=\"refresh\"") {
		t.Fatalf("expected auto-redirect snippet, got %q", updateBody)
	}

	_, body = app.get(t, "/view/x")
	if !strings.Contains(body, "bye") || strings.Contains(body, "hello") {
		t.Fatalf("expected updated content, got %q", body)
	}
}

func TestViewMissingNote(t *testing.T) {
	app := newTestApp(t)
	status, body := app.get(t, "/view/ghost")
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if !strings.Contains(body, "Note not found") {
		t.Fatalf("expected Note not found, got %q", body)
	}
}

func TestUpdateWrongPassword(t *testing.T) {
	app := newTestApp(t)
	app.notes.Save("", "x", "original")

	resp := app.postForm(t, "/update/x", url.Values{"content": {"tampered"}, "password": {"nope"}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if content, _ := app.notes.Get("x"); content != "original" {
		t.Fatalf("bad password must not mutate, got %q", content)
	}
}

func TestUpdateMissingNoteAfterPasswordCheck(t *testing.T) {
	app := newTestApp(t)
	resp := app.postForm(t, "/update/ghost", url.Values{"content": {"x"}, "password": {"wrong"}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("password check must come first, got %d", resp.StatusCode)
	}

	resp = app.postForm(t, "/update/ghost", url.Values{"content": {"x"}, "password": {testPassword}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for absent key, got %d", resp.StatusCode)
	}
}

func TestDeleteNote(t *testing.T) {
	app := newTestApp(t)
	app.notes.Save("", "doomed", "bye")

	resp := app.postForm(t, "/delete/doomed", url.Values{"password": {"wrong"}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if _, ok := app.notes.Get("doomed"); !ok {
		t.Fatal("note must survive failed delete")
	}

	req, _ := http.NewRequest(http.MethodPost, app.ts.URL+"/delete/doomed", strings.NewReader(url.Values{"password": {testPassword}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := noRedirect().Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); !strings.Contains(loc, "#notes-section") {
		t.Fatalf("expected notes-section fragment, got %q", loc)
	}
	if _, ok := app.notes.Get("doomed"); ok {
		t.Fatal("note must be gone")
	}
}

func TestSaveEmptyContentIsNoop(t *testing.T) {
	app := newTestApp(t)
	resp := app.postForm(t, "/save", url.Values{"title": {"x"}, "content": {"   "}})
	resp.Body.Close()
	if _, ok := app.notes.Get("x"); ok {
		t.Fatal("empty content must not create a note")
	}
}

func TestSaveWithoutTitleAutogenerates(t *testing.T) {
	app := newTestApp(t)
	for i := 0; i < 2; i++ {
		resp := app.postForm(t, "/save", url.Values{"content": {"body"}})
		resp.Body.Close()
	}
	today := time.Now().Format("2006-01-02")
	if _, ok := app.notes.Get("Untitled - " + today + " (1)"); !ok {
		t.Fatal("expected first autogenerated key")
	}
	if _, ok := app.notes.Get("Untitled - " + today + " (2)"); !ok {
		t.Fatal("expected second autogenerated key")
	}
}

func TestCreateFolderWithoutPassword(t *testing.T) {
	app := newTestApp(t)
	resp := app.postForm(t, "/create_folder", url.Values{})
	resp.Body.Close()
	if content, ok := app.notes.Get("Folder 1/"); !ok || content != "" {
		t.Fatal("expected Folder 1 placeholder")
	}
}

func TestFolderLifecycle(t *testing.T) {
	app := newTestApp(t)
	resp := app.postForm(t, "/save", url.Values{"folder": {"work"}, "title": {"plan"}, "content": {"do things"}})
	resp.Body.Close()
	if err := app.files.Save("work", "sheet.csv", strings.NewReader("a,b")); err != nil {
		t.Fatalf("seed upload: %v", err)
	}

	status, body := app.get(t, "/view_folder/work")
	if status != http.StatusOK {
		t.Fatalf("view_folder status %d", status)
	}
	if !strings.Contains(body, "work/plan") || !strings.Contains(body, "sheet.csv") {
		t.Fatalf("expected folder note and file listed, got %q", body)
	}

	resp = app.postForm(t, "/rename_folder/work", url.Values{"new_name": {"projects"}})
	resp.Body.Close()
	if _, ok := app.notes.Get("projects/plan"); !ok {
		t.Fatal("expected renamed note key")
	}
	names, err := app.files.List("projects")
	if err != nil || len(names) != 1 {
		t.Fatalf("expected uploads dir renamed, got %v err=%v", names, err)
	}

	resp = app.postForm(t, "/delete_folder/projects", url.Values{"password": {testPassword}})
	resp.Body.Close()
	if _, ok := app.notes.Get("projects/plan"); ok {
		t.Fatal("expected folder notes deleted")
	}
	// Uploaded files survive folder deletion.
	names, err = app.files.List("projects")
	if err != nil || len(names) != 1 {
		t.Fatalf("uploads must survive folder delete, got %v err=%v", names, err)
	}
}

func TestRenameFolderToExistingIsNoop(t *testing.T) {
	app := newTestApp(t)
	app.notes.Save("a", "n", "1")
	app.notes.CreateFolder() // Folder 1 placeholder

	resp := app.postForm(t, "/rename_folder/a", url.Values{"new_name": {"Folder 1"}})
	resp.Body.Close()
	if _, ok := app.notes.Get("a/n"); !ok {
		t.Fatal("rejected rename must leave keys untouched")
	}
}

func TestDeleteFolderWrongPassword(t *testing.T) {
	app := newTestApp(t)
	app.notes.Save("keep", "note", "content")

	resp := app.postForm(t, "/delete_folder/keep", url.Values{"password": {"bad"}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if _, ok := app.notes.Get("keep/note"); !ok {
		t.Fatal("notes must survive failed folder delete")
	}
}

func multipartBody(t *testing.T, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := w.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestUploadDownloadDelete(t *testing.T) {
	app := newTestApp(t)

	body, contentType := multipartBody(t, "files", map[string]string{"hello.txt": "hi there"})
	resp, err := http.Post(app.ts.URL+"/upload", contentType, body)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	resp.Body.Close()

	status, got := app.get(t, "/uploads/hello.txt")
	if status != http.StatusOK || got != "hi there" {
		t.Fatalf("expected file streamed back, status=%d body=%q", status, got)
	}

	// Top-level file deletion has no password gate.
	resp = app.postForm(t, "/delete_file/hello.txt", url.Values{})
	resp.Body.Close()
	status, _ = app.get(t, "/uploads/hello.txt")
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
}

func TestUploadToFolderAndGatedDelete(t *testing.T) {
	app := newTestApp(t)

	body, contentType := multipartBody(t, "files", map[string]string{"doc.md": "# doc"})
	resp, err := http.Post(app.ts.URL+"/upload/stuff", contentType, body)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	resp.Body.Close()

	status, got := app.get(t, "/uploads/stuff/doc.md")
	if status != http.StatusOK || got != "# doc" {
		t.Fatalf("expected folder file streamed, status=%d body=%q", status, got)
	}

	resp = app.postForm(t, "/delete_file/stuff/doc.md", url.Values{"password": {"bad"}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	resp = app.postForm(t, "/delete_file/stuff/doc.md", url.Values{"password": {testPassword}})
	resp.Body.Close()
	status, _ = app.get(t, "/uploads/stuff/doc.md")
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 after gated delete, got %d", status)
	}
}

func TestUploadMultipleFiles(t *testing.T) {
	app := newTestApp(t)
	body, contentType := multipartBody(t, "files", map[string]string{
		"a.txt": "A",
		"b.txt": "B",
	})
	resp, err := http.Post(app.ts.URL+"/upload", contentType, body)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	resp.Body.Close()

	names, err := app.files.List("")
	if err != nil || len(names) != 2 {
		t.Fatalf("expected both files saved, got %v err=%v", names, err)
	}
}

func TestHomeListsNotesNewestFirst(t *testing.T) {
	app := newTestApp(t)
	app.notes.Save("", "older", "1")
	app.notes.Save("", "newer", "2")

	_, body := app.get(t, "/")
	first := strings.Index(body, "/view/newer")
	second := strings.Index(body, "/view/older")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("expected newest note first, got newer@%d older@%d", first, second)
	}
}
