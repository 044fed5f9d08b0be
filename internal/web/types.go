package web

import (
	"html/template"

	"pastebin/internal/notes"
)

type ViewData struct {
	Title           string
	ContentTemplate string
	ContentHTML     template.HTML
	Folders         []string
	Notes           []notes.Note
	Files           []string
	FolderName      string
	NoteKey         string
	RawContent      string
	RenderedHTML    template.HTML
	Date            string
	Index           int
	TaskNote        string
	TaskCreatedAt   string
}
