package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"strings"

	"github.com/eclipse/paho.mqtt.golang/packets"
)

// classifyConnectError translates a failed connect attempt into the agent's
// error taxonomy.
//
// Broker CONNACK refusals map to ErrBrokerRejected with a human-diagnosable
// category; TLS negotiation failures map to ErrHandshake; anything else is
// reported as a connection failure with the underlying cause preserved.
func classifyConnectError(err error) error {
	if err == nil {
		return nil
	}

	// CONNACK reason codes, as surfaced by paho's packets.ConnErrors.
	rejections := []struct {
		sentinel error
		category string
	}{
		{packets.ErrorRefusedBadProtocolVersion, "unacceptable protocol version"},
		{packets.ErrorRefusedIDRejected, "client identifier rejected"},
		{packets.ErrorRefusedServerUnavailable, "broker unavailable"},
		{packets.ErrorRefusedBadUsernameOrPassword, "bad credentials"},
		{packets.ErrorRefusedNotAuthorised, "not authorised"},
	}
	for _, r := range rejections {
		if errors.Is(err, r.sentinel) {
			return fmt.Errorf("%w: %s", ErrBrokerRejected, r.category)
		}
	}

	if isTLSError(err) {
		return fmt.Errorf("%w: %w", ErrHandshake, err)
	}

	return fmt.Errorf("mqtt: connect failed: %w", err)
}

// isTLSError reports whether err originates in TLS negotiation or
// certificate verification.
func isTLSError(err error) bool {
	var (
		recordErr    tls.RecordHeaderError
		verifyErr    *tls.CertificateVerificationError
		unknownAuth  x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		certInvalid  x509.CertificateInvalidError
		systemRoots  x509.SystemRootsError
		constraint   x509.ConstraintViolationError
		insecureAlgo x509.InsecureAlgorithmError
	)
	switch {
	case errors.As(err, &recordErr),
		errors.As(err, &verifyErr),
		errors.As(err, &unknownAuth),
		errors.As(err, &hostnameErr),
		errors.As(err, &certInvalid),
		errors.As(err, &systemRoots),
		errors.As(err, &constraint),
		errors.As(err, &insecureAlgo):
		return true
	}

	// Alert-level handshake failures arrive as opaque errors with a
	// "tls:" or "x509:" prefix somewhere in the chain.
	msg := err.Error()
	return strings.Contains(msg, "tls:") || strings.Contains(msg, "x509:")
}
