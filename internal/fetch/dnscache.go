// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fetch

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

// Fixed public resolvers used instead of the host's stub resolver. The scrape
// targets are few and long-lived, so a short positive cache is enough.
var defaultResolvers = []string{"1.1.1.1:53", "8.8.8.8:53"}

// dnsCacheTTL bounds how long a resolved address set is reused.
const dnsCacheTTL = 10 * time.Minute

// cachedResolver resolves hostnames through a fixed resolver set and caches
// the results with a TTL.
type cachedResolver struct {
	resolver *net.Resolver

	mu      sync.Mutex
	entries map[string]dnsEntry
}

type dnsEntry struct {
	addrs   []string
	expires time.Time
}

func newCachedResolver() *cachedResolver {
	dialer := &net.Dialer{Timeout: 3 * time.Second}

	return &cachedResolver{
		resolver: &net.Resolver{
			PreferGo: true,
			Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
				// Round-robin over the fixed resolver set is overkill for
				// two entries; try them in order.
				var lastErr error
				for _, addr := range defaultResolvers {
					conn, err := dialer.DialContext(ctx, network, addr)
					if err == nil {
						return conn, nil
					}
					lastErr = err
				}
				return nil, lastErr
			},
		},
		entries: make(map[string]dnsEntry),
	}
}

// LookupHost returns the cached addresses for host, resolving on miss or expiry.
func (r *cachedResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	r.mu.Lock()
	entry, ok := r.entries[host]
	r.mu.Unlock()

	if ok && time.Now().Before(entry.expires) {
		return entry.addrs, nil
	}

	addrs, err := r.resolver.LookupHost(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("fetch: dns lookup for %s failed: %w", host, err)
	}

	r.mu.Lock()
	r.entries[host] = dnsEntry{addrs: addrs, expires: time.Now().Add(dnsCacheTTL)}
	r.mu.Unlock()

	return addrs, nil
}

// DialContext resolves host:port through the cache and dials the first
// address that accepts a connection.
func (r *cachedResolver) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}

	// Literal IPs bypass the cache entirely.
	if net.ParseIP(host) != nil {
		dialer := &net.Dialer{Timeout: 10 * time.Second}
		return dialer.DialContext(ctx, network, address)
	}

	addrs, err := r.LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	var lastErr error
	for _, addr := range addrs {
		conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(addr, port))
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("fetch: dial %s failed: %w", address, lastErr)
}
