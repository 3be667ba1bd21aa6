// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"slices"
	"strings"
	"time"
)

// reservedPrefixes are blocked in addition to loopback, private, link-local
// and unspecified addresses.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"), // carrier-grade NAT
}

var metadataHosts = []string{
	"metadata.google.internal",
	"metadata.goog",
}

func isReserved(a netip.Addr) bool {
	a = a.Unmap()
	if a.IsLoopback() || a.IsPrivate() || a.IsUnspecified() ||
		a.IsLinkLocalUnicast() || a.IsLinkLocalMulticast() {
		return true
	}
	for _, p := range reservedPrefixes {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

func isPrivateIP(ip net.IP) bool {
	a, ok := netip.AddrFromSlice(ip)
	return ok && isReserved(a)
}

// ValidateEndpointURL checks that rawURL is an absolute http(s) URL. Unless
// allowPrivate is set it also rejects localhost, cloud metadata hosts and
// hosts resolving to reserved addresses.
func ValidateEndpointURL(rawURL string, allowPrivate bool) error {
	if rawURL == "" {
		return fmt.Errorf("URL is required")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme %q is not allowed, use http or https", u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("URL must have a hostname")
	}
	if allowPrivate {
		return nil
	}

	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return fmt.Errorf("localhost URLs are not allowed")
	}
	if slices.Contains(metadataHosts, host) {
		return fmt.Errorf("cloud metadata endpoints are not allowed")
	}

	addrs, err := net.DefaultResolver.LookupNetIP(context.Background(), "ip", host)
	if err != nil {
		return fmt.Errorf("cannot resolve hostname %q: %w", host, err)
	}
	for _, a := range addrs {
		if isReserved(a) {
			return fmt.Errorf("URL resolves to reserved address %s", a.Unmap())
		}
	}
	return nil
}

// guardedDial resolves the target itself and dials the checked address, so
// a hostname that passed validation cannot be rebound to a reserved one.
func guardedDial(d *net.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", addr, err)
		}

		addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", host, err)
		}
		for _, a := range addrs {
			if isReserved(a) {
				return nil, fmt.Errorf("connection to reserved address %s (%s) is blocked", a.Unmap(), host)
			}
		}

		var lastErr error
		for _, a := range addrs {
			conn, err := d.DialContext(ctx, network, net.JoinHostPort(a.Unmap().String(), port))
			if err == nil {
				return conn, nil
			}
			lastErr = err
		}
		return nil, fmt.Errorf("connecting to %q: %w", host, lastErr)
	}
}

// NewClient returns an HTTP client for webhook deliveries. Unless
// allowPrivate is set, its transport refuses reserved addresses at
// connection time, including after redirects.
func NewClient(allowPrivate bool) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if !allowPrivate {
		transport.Proxy = nil
		transport.DialContext = guardedDial(dialer)
	}
	return &http.Client{Timeout: RequestTimeout, Transport: transport}
}
