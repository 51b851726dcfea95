// Package notify delivers user-visible notifications.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Notification is one message. Payload is handed back when the user opens it;
// for the word of the day it is the word.
type Notification struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Payload string `json:"payload,omitempty"`
}

// Notifier shows a notification.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Log writes notifications to a structured logger.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Notify(_ context.Context, n Notification) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification", "title", n.Title, "body", n.Body, "payload", n.Payload)
	return nil
}

// Desktop shows notifications with the platform notifier: osascript on
// macOS, notify-send elsewhere.
type Desktop struct {
	// Command overrides the platform notifier binary.
	Command string
	// AppName labels the notification when set.
	AppName string
}

func (d Desktop) command() string {
	if d.Command == "" {
		return defaultCommand
	}
	return d.Command
}

func (d Desktop) Notify(ctx context.Context, n Notification) error {
	out, err := exec.CommandContext(ctx, d.command(), d.args(n)...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("running %s: %w: %s", d.command(), err, out)
	}
	return nil
}

// appleScript builds a `display notification` statement. With an app name
// the title moves to the subtitle line.
func appleScript(n Notification, appName string) string {
	script := "display notification " + appleQuote(n.Body)
	if appName == "" {
		return script + " with title " + appleQuote(n.Title)
	}
	return script + " with title " + appleQuote(appName) + " subtitle " + appleQuote(n.Title)
}

func appleQuote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

// Gate forwards to Next only when Allowed returns true. A denied
// notification is dropped without error.
type Gate struct {
	Allowed func() bool
	Next    Notifier
}

func (g Gate) Notify(ctx context.Context, n Notification) error {
	if g.Next == nil || (g.Allowed != nil && !g.Allowed()) {
		return nil
	}
	return g.Next.Notify(ctx, n)
}

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, nt := range m {
		if err := nt.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Notify(context.Context, Notification) error { return nil }
