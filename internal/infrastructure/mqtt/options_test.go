package mqtt

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/gray-telemetry-agent/internal/infrastructure/config"
)

// generateCredentials writes a self-signed root CA plus a client
// certificate/key pair into a temp dir and returns the artifact paths.
func generateCredentials(t *testing.T) config.MQTTTLSConfig {
	t.Helper()
	dir := t.TempDir()

	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating CA key: %v", err)
	}
	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Test Root CA"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	if err != nil {
		t.Fatalf("creating CA certificate: %v", err)
	}

	clientKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating client key: %v", err)
	}
	clientTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "test-device"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	clientDER, err := x509.CreateCertificate(rand.Reader, clientTemplate, caTemplate, &clientKey.PublicKey, caKey)
	if err != nil {
		t.Fatalf("creating client certificate: %v", err)
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(clientKey)
	if err != nil {
		t.Fatalf("marshalling client key: %v", err)
	}

	writePEM := func(name, blockType string, der []byte) string {
		path := filepath.Join(dir, name)
		data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
		if err := os.WriteFile(path, data, 0600); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
		return path
	}

	return config.MQTTTLSConfig{
		CACert:     writePEM("root-ca.pem", "CERTIFICATE", caDER),
		ClientCert: writePEM("device.pem.crt", "CERTIFICATE", clientDER),
		ClientKey:  writePEM("device.pem.key", "PRIVATE KEY", keyDER),
	}
}

func testMQTTConfig(t *testing.T) config.MQTTConfig {
	t.Helper()
	return config.MQTTConfig{
		Endpoint:  "broker.example.com",
		Port:      8883,
		ClientID:  "RFID-Device-01",
		Keepalive: 60,
		QoS:       1,
		TLS:       generateCredentials(t),
		Timeouts: config.MQTTTimeoutConfig{
			Connect: 10,
			Publish: 5,
		},
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     60,
		},
	}
}

func TestNewTLSConfig(t *testing.T) {
	tlsCfg, err := newTLSConfig(generateCredentials(t))
	if err != nil {
		t.Fatalf("newTLSConfig() error = %v", err)
	}

	if tlsCfg.RootCAs == nil {
		t.Error("RootCAs not set")
	}
	if len(tlsCfg.Certificates) != 1 {
		t.Errorf("Certificates count = %d, want 1", len(tlsCfg.Certificates))
	}
	if tlsCfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %d, want TLS 1.2", tlsCfg.MinVersion)
	}
}

func TestNewTLSConfig_MalformedCA(t *testing.T) {
	creds := generateCredentials(t)
	if err := os.WriteFile(creds.CACert, []byte("not a certificate"), 0600); err != nil {
		t.Fatalf("corrupting CA: %v", err)
	}

	_, err := newTLSConfig(creds)
	if !errors.Is(err, ErrHandshake) {
		t.Errorf("newTLSConfig() error = %v, want ErrHandshake", err)
	}
}

func TestNewTLSConfig_MismatchedKeyPair(t *testing.T) {
	creds := generateCredentials(t)
	other := generateCredentials(t)
	creds.ClientKey = other.ClientKey // key does not match the certificate

	_, err := newTLSConfig(creds)
	if !errors.Is(err, ErrHandshake) {
		t.Errorf("newTLSConfig() error = %v, want ErrHandshake", err)
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testMQTTConfig(t)
	tlsCfg, err := newTLSConfig(cfg.TLS)
	if err != nil {
		t.Fatalf("newTLSConfig() error = %v", err)
	}

	opts := buildClientOptions(cfg, tlsCfg)

	if len(opts.Servers) != 1 {
		t.Fatalf("Servers count = %d, want 1", len(opts.Servers))
	}
	if got := opts.Servers[0].String(); got != "ssl://broker.example.com:8883" {
		t.Errorf("broker URL = %q, want ssl://broker.example.com:8883", got)
	}
	if opts.ClientID != "RFID-Device-01" {
		t.Errorf("ClientID = %q, want RFID-Device-01", opts.ClientID)
	}
	if !opts.AutoReconnect {
		t.Error("AutoReconnect = false, want true")
	}
	if opts.ConnectRetry {
		t.Error("ConnectRetry = true, want false (initial failures surface to the caller)")
	}
	if opts.MaxReconnectInterval != 60*time.Second {
		t.Errorf("MaxReconnectInterval = %v, want 60s", opts.MaxReconnectInterval)
	}
	if opts.ConnectTimeout != 10*time.Second {
		t.Errorf("ConnectTimeout = %v, want 10s", opts.ConnectTimeout)
	}
	if opts.TLSConfig != tlsCfg {
		t.Error("TLSConfig not wired through")
	}
}

func TestNew_ValidCredentials(t *testing.T) {
	cfg := testMQTTConfig(t)
	agent := config.AgentConfig{
		DeviceID:        "RFID-Device-01",
		TopicNamespace:  "smaket/iot",
		PublishInterval: 5,
	}

	client, err := New(cfg, agent)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true before Connect(), want false")
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	cfg := testMQTTConfig(t)
	cfg.TLS.ClientKey = filepath.Join(t.TempDir(), "absent.pem.key")

	_, err := New(cfg, config.AgentConfig{DeviceID: "d", TopicNamespace: "ns"})
	if !errors.Is(err, ErrCredentialsMissing) {
		t.Errorf("New() error = %v, want ErrCredentialsMissing", err)
	}
}
