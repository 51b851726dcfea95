package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

type recorder struct {
	got []Notification
	err error
}

func (r *recorder) Notify(_ context.Context, n Notification) error {
	r.got = append(r.got, n)
	return r.err
}

func TestGate(t *testing.T) {
	next := &recorder{}
	allowed := false
	g := Gate{Allowed: func() bool { return allowed }, Next: next}

	n := Notification{Title: "Word of the Day: run", Body: "To move swiftly.", Payload: "run"}
	if err := g.Notify(context.Background(), n); err != nil {
		t.Fatalf("denied Notify returned %v, want nil", err)
	}
	if len(next.got) != 0 {
		t.Error("denied notification was delivered")
	}

	allowed = true
	if err := g.Notify(context.Background(), n); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(next.got) != 1 || next.got[0] != n {
		t.Errorf("delivered = %+v", next.got)
	}
}

func TestMultiJoinsErrors(t *testing.T) {
	ok := &recorder{}
	bad := &recorder{err: errors.New("no bus")}

	err := Multi{bad, ok}.Notify(context.Background(), Notification{Title: "t"})
	if err == nil || !strings.Contains(err.Error(), "no bus") {
		t.Errorf("error = %v", err)
	}
	if len(ok.got) != 1 {
		t.Error("a failing notifier must not stop the others")
	}
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	l := Log{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	if err := l.Notify(context.Background(), Notification{Title: "Word of the Day: run", Payload: "run"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if !strings.Contains(buf.String(), "payload=run") {
		t.Errorf("log = %q", buf.String())
	}
}

// fakeNotifier writes a script that records its arguments, one per line.
func fakeNotifier(t *testing.T) (script, out string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script")
	}
	dir := t.TempDir()
	out = filepath.Join(dir, "args")
	script = filepath.Join(dir, "fake-notify")
	body := "#!/bin/sh\nprintf '%s\\n' \"$@\" > " + out + "\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	return script, out
}

func TestAppleScript(t *testing.T) {
	tests := []struct {
		name    string
		n       Notification
		appName string
		want    string
	}{
		{
			name: "title only",
			n:    Notification{Title: "Word of the Day: run", Body: "To move swiftly."},
			want: `display notification "To move swiftly." with title "Word of the Day: run"`,
		},
		{
			name:    "app name as title",
			n:       Notification{Title: "Word of the Day: run", Body: "To move swiftly."},
			appName: "lexis",
			want:    `display notification "To move swiftly." with title "lexis" subtitle "Word of the Day: run"`,
		},
		{
			name: "quotes escaped",
			n:    Notification{Title: `say "hi"`, Body: `a\b`},
			want: `display notification "a\\b" with title "say \"hi\""`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := appleScript(tt.n, tt.appName); got != tt.want {
				t.Errorf("appleScript = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDesktopCommandFailure(t *testing.T) {
	d := Desktop{Command: filepath.Join(t.TempDir(), "missing")}
	if err := d.Notify(context.Background(), Notification{Title: "t"}); err == nil {
		t.Error("expected error for missing command")
	}
}
