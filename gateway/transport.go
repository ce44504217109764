package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	utls "github.com/refraction-networking/utls"
)

// FingerprintChrome selects a TLS client hello that mimics Chrome.
const FingerprintChrome = "chrome"

// newTransport returns the base transport for the fingerprint.
// An empty fingerprint keeps the Go TLS stack.
func newTransport(fingerprint string) (http.RoundTripper, error) {
	switch fingerprint {
	case "":
		return http.DefaultTransport.(*http.Transport).Clone(), nil
	case FingerprintChrome:
		return newChromeTransport(), nil
	default:
		return nil, fmt.Errorf("unsupported tls fingerprint %q", fingerprint)
	}
}

// newChromeTransport dials TLS with utls using the Chrome client hello.
// The ALPN extension is pinned to http/1.1 since http.Transport cannot speak h2 over a custom conn.
func newChromeTransport() *http.Transport {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		TLSHandshakeTimeout: 10 * time.Second,
		IdleConnTimeout:     90 * time.Second,
	}
	transport.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		tcpConn, err := (&net.Dialer{}).DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		sniHost, _, err := net.SplitHostPort(addr)
		if err != nil {
			sniHost = addr
		}

		uTLSConfig := &utls.Config{
			ServerName: sniHost,
		}

		if transport.TLSClientConfig != nil {
			uTLSConfig.RootCAs = transport.TLSClientConfig.RootCAs
			uTLSConfig.InsecureSkipVerify = transport.TLSClientConfig.InsecureSkipVerify
		}

		uConn := utls.UClient(tcpConn, uTLSConfig, utls.HelloChrome_Auto)

		if err := uConn.BuildHandshakeState(); err != nil {
			tcpConn.Close()
			return nil, fmt.Errorf("building handshake state : %w", err)
		}

		// HelloChrome_Auto ignores Config.NextProtos, so the extension has to be
		// rewritten before the handshake.
		foundALPN := false
		for _, ext := range uConn.Extensions {
			if alpnExt, ok := ext.(*utls.ALPNExtension); ok {
				alpnExt.AlpnProtocols = []string{"http/1.1"}
				foundALPN = true
				break
			}
		}

		if !foundALPN {
			tcpConn.Close()
			return nil, errors.New("could not find ALPNExtension")
		}

		if err := uConn.HandshakeContext(ctx); err != nil {
			tcpConn.Close()
			return nil, err
		}

		return uConn, nil
	}
	return transport
}

// loggingRoundTripper logs every exchange at debug level, tagged with the
// request ID and operation carried by the request context.
type loggingRoundTripper struct {
	base   http.RoundTripper
	logger *slog.Logger
}

// RoundTrip satisfies http.RoundTripper
func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID, _ := RequestIDFromContext(req.Context())
	operation, _ := OperationFromContext(req.Context())

	start := time.Now()
	l.logger.Debug("sending request", "operation", operation, "request_id", requestID, "url", req.URL.String())

	resp, err := l.base.RoundTrip(req)
	if err != nil {
		l.logger.Debug("request failed", "operation", operation, "request_id", requestID, "error", err)
		return nil, err
	}

	l.logger.Debug("received response",
		"operation", operation,
		"request_id", requestID,
		"status", resp.StatusCode,
		"content_encoding", resp.Header.Get("Content-Encoding"),
		"elapsed", time.Since(start),
	)
	return resp, nil
}
