package mqtt

import (
	"fmt"
	"os"
	"strings"

	"github.com/nerrad567/gray-telemetry-agent/internal/infrastructure/config"
)

// ValidateCredentials checks that all three mutual-TLS credential artifacts
// are present and readable before any network action is attempted.
//
// Every missing or unreadable artifact is reported, not just the first, so
// an operator can provision a device in one pass.
//
// Returns:
//   - error: ErrCredentialsMissing listing each absent artifact, or nil
func ValidateCredentials(cfg config.MQTTTLSConfig) error {
	checks := []struct {
		path string
		desc string
	}{
		{cfg.CACert, "root CA certificate"},
		{cfg.ClientCert, "client certificate"},
		{cfg.ClientKey, "private key"},
	}

	var missing []string
	for _, check := range checks {
		if err := checkReadable(check.path); err != nil {
			missing = append(missing, fmt.Sprintf("%s (%s): %v", check.desc, check.path, err))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrCredentialsMissing, strings.Join(missing, "; "))
	}

	return nil
}

// checkReadable verifies a file exists, is a regular file, and can be opened.
func checkReadable(path string) error {
	if path == "" {
		return fmt.Errorf("path not set")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist")
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("not readable: %w", err)
	}
	return f.Close()
}
