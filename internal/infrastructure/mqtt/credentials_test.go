package mqtt

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nerrad567/gray-telemetry-agent/internal/infrastructure/config"
)

// writeArtifact creates a placeholder credential file and returns its path.
func writeArtifact(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("-----BEGIN PLACEHOLDER-----\n"), 0600); err != nil {
		t.Fatalf("writing artifact: %v", err)
	}
	return path
}

func TestValidateCredentials_AllPresent(t *testing.T) {
	dir := t.TempDir()
	cfg := config.MQTTTLSConfig{
		CACert:     writeArtifact(t, dir, "root-ca.pem"),
		ClientCert: writeArtifact(t, dir, "device.pem.crt"),
		ClientKey:  writeArtifact(t, dir, "device.pem.key"),
	}

	if err := ValidateCredentials(cfg); err != nil {
		t.Errorf("ValidateCredentials() error = %v, want nil", err)
	}
}

func TestValidateCredentials_OneMissing(t *testing.T) {
	dir := t.TempDir()
	cfg := config.MQTTTLSConfig{
		CACert:     writeArtifact(t, dir, "root-ca.pem"),
		ClientCert: filepath.Join(dir, "nonexistent.pem.crt"),
		ClientKey:  writeArtifact(t, dir, "device.pem.key"),
	}

	err := ValidateCredentials(cfg)
	if !errors.Is(err, ErrCredentialsMissing) {
		t.Fatalf("ValidateCredentials() error = %v, want ErrCredentialsMissing", err)
	}
	if !strings.Contains(err.Error(), "client certificate") {
		t.Errorf("error does not identify the missing artifact: %v", err)
	}
	// The present artifacts are not reported.
	if strings.Contains(err.Error(), "root CA certificate") {
		t.Errorf("error reports a present artifact: %v", err)
	}
}

func TestValidateCredentials_AllMissingListsEveryArtifact(t *testing.T) {
	dir := t.TempDir()
	cfg := config.MQTTTLSConfig{
		CACert:     filepath.Join(dir, "no-ca.pem"),
		ClientCert: filepath.Join(dir, "no-cert.pem.crt"),
		ClientKey:  filepath.Join(dir, "no-key.pem.key"),
	}

	err := ValidateCredentials(cfg)
	if !errors.Is(err, ErrCredentialsMissing) {
		t.Fatalf("ValidateCredentials() error = %v, want ErrCredentialsMissing", err)
	}

	// Every missing artifact is enumerated, not just the first.
	for _, want := range []string{"root CA certificate", "client certificate", "private key"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}
}

func TestValidateCredentials_EmptyPaths(t *testing.T) {
	err := ValidateCredentials(config.MQTTTLSConfig{})
	if !errors.Is(err, ErrCredentialsMissing) {
		t.Fatalf("ValidateCredentials() error = %v, want ErrCredentialsMissing", err)
	}
	if got := strings.Count(err.Error(), "path not set"); got != 3 {
		t.Errorf("error reports %d unset paths, want 3: %v", got, err)
	}
}

func TestValidateCredentials_DirectoryPath(t *testing.T) {
	dir := t.TempDir()
	cfg := config.MQTTTLSConfig{
		CACert:     dir, // a directory, not a file
		ClientCert: writeArtifact(t, dir, "device.pem.crt"),
		ClientKey:  writeArtifact(t, dir, "device.pem.key"),
	}

	err := ValidateCredentials(cfg)
	if !errors.Is(err, ErrCredentialsMissing) {
		t.Fatalf("ValidateCredentials() error = %v, want ErrCredentialsMissing", err)
	}
	if !strings.Contains(err.Error(), "directory") {
		t.Errorf("error does not mention directory: %v", err)
	}
}
