package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pastebin/internal/checklist"
)

func newEngine(t *testing.T) *checklist.Engine {
	t.Helper()
	loc, err := time.LoadLocation("America/Toronto")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return checklist.NewEngine(filepath.Join(t.TempDir(), "checklist_data.json"), loc)
}

func TestClientSend(t *testing.T) {
	var gotPath, gotChat, gotText string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotChat = r.Form.Get("chat_id")
		gotText = r.Form.Get("text")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	c := NewClient("tok123", "chat456")
	c.SetBaseURL(ts.URL)
	if err := c.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/bottok123/sendMessage" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotChat != "chat456" || gotText != "hello" {
		t.Fatalf("unexpected payload chat=%q text=%q", gotChat, gotText)
	}
}

func TestClientSendErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := NewClient("tok", "chat")
	c.SetBaseURL(ts.URL)
	if err := c.Send(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

type recordingSender struct {
	messages []string
	err      error
}

func (r *recordingSender) Send(_ context.Context, text string) error {
	r.messages = append(r.messages, text)
	return r.err
}

func TestComposeMessage(t *testing.T) {
	loc, _ := time.LoadLocation("America/Toronto")
	n := NewNotifier(nil, nil, loc, "https://example.org/checklist", time.Hour)
	now := time.Date(2024, 1, 1, 9, 5, 0, 0, loc)
	msg := n.compose(now, []checklist.Task{{Text: "buy milk"}, {Text: "call home"}})

	if !strings.Contains(msg, " Unfinished Tasks at 09:05 AM \n\n") {
		t.Fatalf("missing header, got %q", msg)
	}
	if !strings.Contains(msg, "- buy milk\n\n- call home") {
		t.Fatalf("missing task lines, got %q", msg)
	}
	if !strings.HasSuffix(msg, "➡️ Open Checklist: https://example.org/checklist") {
		t.Fatalf("missing deep link, got %q", msg)
	}
	marker := strings.SplitN(msg, " ", 2)[0]
	found := false
	for _, m := range markers {
		if m == marker {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("message must start with a palette marker, got %q", marker)
	}
}

func TestCycleSendsOnlyWhenUndone(t *testing.T) {
	tasks := newEngine(t)
	sender := &recordingSender{}
	loc, _ := time.LoadLocation("America/Toronto")
	n := NewNotifier(tasks, sender, loc, "https://example.org/checklist", time.Hour)
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, loc)
	n.now = func() time.Time { return fixed }

	n.cycle(context.Background())
	if len(sender.messages) != 0 {
		t.Fatalf("expected no message for empty day, got %v", sender.messages)
	}

	if err := tasks.Add("2024-01-01", "pending"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := tasks.Add("2024-01-01", "finished"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := tasks.Toggle("2024-01-01", 1); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	n.cycle(context.Background())
	if len(sender.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(sender.messages))
	}
	if !strings.Contains(sender.messages[0], "- pending") {
		t.Fatalf("expected pending task in message, got %q", sender.messages[0])
	}
	if strings.Contains(sender.messages[0], "- finished") {
		t.Fatalf("done task must not be listed, got %q", sender.messages[0])
	}
}

func TestCycleSwallowsSendFailure(t *testing.T) {
	tasks := newEngine(t)
	sender := &recordingSender{err: context.DeadlineExceeded}
	loc, _ := time.LoadLocation("America/Toronto")
	n := NewNotifier(tasks, sender, loc, "x", time.Hour)
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, loc)
	n.now = func() time.Time { return fixed }

	if err := tasks.Add("2024-01-01", "pending"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// Must not panic or propagate.
	n.cycle(context.Background())
	if len(sender.messages) != 1 {
		t.Fatalf("expected send attempt, got %d", len(sender.messages))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	tasks := newEngine(t)
	sender := &recordingSender{}
	loc, _ := time.LoadLocation("America/Toronto")
	n := NewNotifier(tasks, sender, loc, "x", 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
