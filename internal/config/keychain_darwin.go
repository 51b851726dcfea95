//go:build darwin

package config

import (
	"bytes"
	"fmt"
	"os/exec"
)

// keychainGet reads a generic password, e.g. one added with
// `security add-generic-password -s lexis -a server_token -w <token>`.
func keychainGet(service, account string) ([]byte, error) {
	out, err := exec.Command(
		"security", "find-generic-password",
		"-s", service,
		"-a", account,
		"-w",
	).Output()
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s from keychain: %w", service, account, err)
	}
	return bytes.TrimSpace(out), nil
}
