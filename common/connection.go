package common

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// RetryPolicyConfig represents configuration for gRPC retry policy
type RetryPolicyConfig struct {
	MaxAttempts          int
	InitialBackoff       time.Duration
	MaxBackoff           time.Duration
	BackoffMultiplier    float64
	RetryableStatusCodes []string
}

// DefaultRetryPolicy retries only when the node is unreachable. Rejected ledger calls are
// never retried; resubmission is left to the user.
var DefaultRetryPolicy = RetryPolicyConfig{
	MaxAttempts:          3,
	InitialBackoff:       500 * time.Millisecond,
	MaxBackoff:           5 * time.Second,
	BackoffMultiplier:    2.0,
	RetryableStatusCodes: []string{"UNAVAILABLE"},
}

// CreateRetryPolicy generates a service config JSON string from a RetryPolicyConfig
func CreateRetryPolicy(config RetryPolicyConfig) string {
	return fmt.Sprintf(`{
		"methodConfig": [{
		  "name": [{}],
		  "retryPolicy": {
			  "MaxAttempts": %d,
			  "InitialBackoff": "%s",
			  "MaxBackoff": "%s",
			  "BackoffMultiplier": %.1f,
			  "RetryableStatusCodes": [ "%s" ]
		  }
		}]}`, config.MaxAttempts, formatDuration(config.InitialBackoff), formatDuration(config.MaxBackoff),
		config.BackoffMultiplier, strings.Join(config.RetryableStatusCodes, "\", \""))
}

// service config durations must be expressed in seconds.
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// NewGRPCConnection creates a new gRPC connection to the given node address. If certPath is nil,
// it will create a connection without TLS.
func NewGRPCConnection(address string, certPath *string, retryPolicy *RetryPolicyConfig, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	if certPath == nil || len(*certPath) == 0 {
		return NewGRPCConnectionWithoutTLS(address, retryPolicy, opts...)
	}
	return NewGRPCConnectionWithCert(address, *certPath, retryPolicy, opts...)
}

// NewGRPCConnectionWithCert creates a TLS connection trusting the certificate at certPath.
func NewGRPCConnectionWithCert(address string, certPath string, retryPolicy *RetryPolicyConfig, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	certPool := x509.NewCertPool()
	serverCert, err := os.ReadFile(certPath)
	if err != nil {
		return nil, err
	}
	if !certPool.AppendCertsFromPEM(serverCert) {
		return nil, errors.New("failed to append certificate")
	}

	host := address
	if u, err := url.Parse(address); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	if strings.Contains(address, "localhost") {
		host = "localhost"
	}

	clientOpts := append(retryOptions(retryPolicy),
		grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{
			InsecureSkipVerify: host == "localhost",
			RootCAs:            certPool,
			ServerName:         host,
		})),
	)
	return grpc.NewClient(address, append(clientOpts, opts...)...)
}

// NewGRPCConnectionWithoutTLS creates a plaintext connection, used for local nodes.
func NewGRPCConnectionWithoutTLS(address string, retryPolicy *RetryPolicyConfig, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	clientOpts := append(retryOptions(retryPolicy), grpc.WithTransportCredentials(insecure.NewCredentials()))
	return grpc.NewClient(address, append(clientOpts, opts...)...)
}

func retryOptions(retryPolicy *RetryPolicyConfig) []grpc.DialOption {
	policy := DefaultRetryPolicy
	if retryPolicy != nil {
		policy = *retryPolicy
	}
	return []grpc.DialOption{grpc.WithDefaultServiceConfig(CreateRetryPolicy(policy))}
}
