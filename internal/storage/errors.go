package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/andresuchdata/bizdir-ops/internal/credentials"
	"github.com/minio/minio-go/v7"
	"google.golang.org/api/googleapi"
)

// Common storage operation errors
var (
	// ErrAuthentication indicates bad or missing credentials
	ErrAuthentication = errors.New("storage authentication failed")
	// ErrNotFound indicates the bucket does not exist
	ErrNotFound = errors.New("bucket not found")
	// ErrNetwork indicates a transient transport failure
	ErrNetwork = errors.New("storage network error")
)

// classify wraps err with the matching sentinel so callers can use
// errors.Is. Errors that match nothing are returned wrapped with op only.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case IsCredentialError(err):
		return fmt.Errorf("%s: %w: %w", op, ErrAuthentication, err)
	case IsNotFoundError(err):
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	case IsNetworkError(err):
		return fmt.Errorf("%s: %w: %w", op, ErrNetwork, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsCredentialError checks if an error is authentication/authorization related
func IsCredentialError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthentication) || errors.Is(err, credentials.ErrNoCredentials) {
		return true
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 401 || gerr.Code == 403
	}

	switch minio.ToErrorResponse(err).Code {
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken", "InvalidToken":
		return true
	}

	errStr := strings.ToLower(err.Error())
	credentialIndicators := []string{
		"unauthorized",  // HTTP Unauthorized
		"invalid_grant", // oauth2 token exchange
		"expired",       // expired token/credential
		"invalid token", // invalid authentication
	}
	for _, indicator := range credentialIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// IsNotFoundError checks if an error means the bucket does not exist
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return true
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 404
	}

	return minio.ToErrorResponse(err).Code == "NoSuchBucket"
}

// IsNetworkError checks if an error is network-related
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNetwork) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code >= 500 {
		return true
	}

	errStr := strings.ToLower(err.Error())
	networkIndicators := []string{
		"connection",    // connection refused, connection reset, etc.
		"timeout",       // i/o timeout, dial timeout, etc.
		"network",       // network unreachable, network error, etc.
		"broken pipe",   // broken pipe
		"tls handshake", // TLS handshake errors
		"no such host",  // DNS
	}
	for _, indicator := range networkIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}
