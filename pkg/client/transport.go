package client

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

const (
	// DialTimeout specifies default maximum connection initialization time.
	DialTimeout = 5 * time.Second
	// KeepAlive specifies default interval between keep-alive probes.
	KeepAlive = 15 * time.Second
	// TLSHandshakeTimeout specifies default timeout of TLS handshake.
	TLSHandshakeTimeout = 5 * time.Second
	// IdleConnTimeout specifies how long an idle connection is kept in the pool.
	IdleConnTimeout = 90 * time.Second
	// http2PingTimeout is used for health checks of HTTP2 connections.
	http2PingTimeout = 5 * time.Second
)

// DefaultTransport returns the transport used by the New function.
// There is no response timeout, use context deadline to limit a request.
func DefaultTransport() http.RoundTripper {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         Dialer().DialContext,
		ForceAttemptHTTP2:   true,
		TLSHandshakeTimeout: TLSHandshakeTimeout,
		IdleConnTimeout:     IdleConnTimeout,
	}
}

// HTTP2Transport returns a transport which speaks only HTTP2 over TLS.
func HTTP2Transport() http.RoundTripper {
	dialer := Dialer()
	return &http2.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string, cfg *tls.Config) (net.Conn, error) {
			tlsDialer := &tls.Dialer{NetDialer: dialer, Config: cfg}
			return tlsDialer.DialContext(ctx, network, addr)
		},
		ReadIdleTimeout: http2PingTimeout,
		PingTimeout:     http2PingTimeout,
	}
}

// Dialer returns the default dialer.
func Dialer() *net.Dialer {
	return &net.Dialer{
		Timeout:   DialTimeout,
		KeepAlive: KeepAlive,
	}
}
