// Package notify implements the background reminder loop: once per
// interval it looks at today's checklist and pushes a Telegram message
// listing the tasks that are still undone.
package notify

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"pastebin/internal/checklist"
)

// markers is the decorative palette; one is chosen uniformly per message.
var markers = []string{
	"🔵", "🟣", "🟢", "🔴", "🟡", "🟠",
	"⚫", "⚪", "✨",
	"🟥", "🟧", "🟨", "🟩", "🟦", "🟪",
}

type Sender interface {
	Send(ctx context.Context, text string) error
}

type Notifier struct {
	tasks    *checklist.Engine
	sender   Sender
	loc      *time.Location
	link     string
	interval time.Duration
	now      func() time.Time
}

func NewNotifier(tasks *checklist.Engine, sender Sender, loc *time.Location, link string, interval time.Duration) *Notifier {
	return &Notifier{
		tasks:    tasks,
		sender:   sender,
		loc:      loc,
		link:     link,
		interval: interval,
		now:      time.Now,
	}
}

// Run loops until ctx is cancelled, sleeping the full interval between
// cycles regardless of how long a cycle took. Transport failures are
// logged and swallowed; the loop never dies.
func (n *Notifier) Run(ctx context.Context) {
	for {
		n.cycle(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(n.interval):
		}
	}
}

func (n *Notifier) cycle(ctx context.Context) {
	now := n.now().In(n.loc)
	today := now.Format("2006-01-02")

	undone, err := n.tasks.Undone(today)
	if err != nil {
		slog.Warn("notify: load checklist", "err", err)
		return
	}
	if len(undone) == 0 {
		return
	}

	msg := n.compose(now, undone)
	if err := n.sender.Send(ctx, msg); err != nil {
		slog.Warn("notify: send failed", "err", err)
		return
	}
	slog.Debug("notify: sent", "tasks", len(undone))
}

func (n *Notifier) compose(now time.Time, undone []checklist.Task) string {
	lines := make([]string, 0, len(undone))
	for _, t := range undone {
		lines = append(lines, "- "+t.Text)
	}
	marker := markers[rand.Intn(len(markers))]
	var b strings.Builder
	b.WriteString(marker)
	b.WriteString(" Unfinished Tasks at ")
	b.WriteString(now.Format("03:04 PM"))
	b.WriteString(" \n\n")
	b.WriteString(strings.Join(lines, "\n\n"))
	b.WriteString("\n\n➡️ Open Checklist: ")
	b.WriteString(n.link)
	return b.String()
}
