//go:build !darwin

package notify

import (
	"os"
	"os/exec"
)

const defaultCommand = "notify-send"

// Available reports whether a desktop session and the notify command exist.
func (d Desktop) Available() bool {
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return false
	}
	_, err := exec.LookPath(d.command())
	return err == nil
}

func (d Desktop) args(n Notification) []string {
	var args []string
	if d.AppName != "" {
		args = append(args, "--app-name", d.AppName)
	}
	return append(args, n.Title, n.Body)
}
