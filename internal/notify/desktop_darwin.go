//go:build darwin

package notify

import "os/exec"

const defaultCommand = "osascript"

// Available reports whether the notify command exists.
func (d Desktop) Available() bool {
	_, err := exec.LookPath(d.command())
	return err == nil
}

func (d Desktop) args(n Notification) []string {
	return []string{"-e", appleScript(n, d.AppName)}
}
