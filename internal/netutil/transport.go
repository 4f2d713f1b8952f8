package netutil

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// NewTransport creates an HTTP transport that dials with the system resolver.
// TLS certificate verification is disabled for Android/Termux compatibility.
func NewTransport(logger *logrus.Logger) *http.Transport {
	return &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, _, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			logger.WithFields(logrus.Fields{
				"host":  host,
				"local": IsLocalHost(host),
			}).Trace("Dialing")
			var d net.Dialer
			return d.DialContext(ctx, network, addr)
		},
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true,
			MinVersion:         tls.VersionTLS12,
		},
		TLSHandshakeTimeout:   10 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
	}
}

// NewHTTPClient returns a client using NewTransport.
func NewHTTPClient(timeout time.Duration, logger *logrus.Logger) *http.Client {
	return &http.Client{Timeout: timeout, Transport: NewTransport(logger)}
}

// IsLocalHost reports whether host is loopback, link-local, a private range
// or a .local/.lan name. Di-Plus always runs on the head unit itself.
func IsLocalHost(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".local") || strings.HasSuffix(host, ".lan") {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}
