// Package fetcher downloads article pages and extracts their title,
// description, lead image and infobox facts.
package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/url"

	artUC "wikinotes/internal/usecase/article"
)

// lookupIP resolves host names during URL validation. Tests replace it.
var lookupIP = func(ctx context.Context, host string) ([]net.IP, error) {
	return net.DefaultResolver.LookupIP(ctx, "ip", host)
}

// validateURL rejects URLs that are not absolute http(s) URLs and, when
// denyPrivateIPs is set, URLs whose host resolves to a private address.
func validateURL(ctx context.Context, urlStr string, denyPrivateIPs bool) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: parse error: %v", artUC.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme '%s' not allowed (only http/https)", artUC.ErrInvalidURL, u.Scheme)
	}
	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("%w: empty hostname", artUC.ErrInvalidURL)
	}
	if !denyPrivateIPs {
		return nil
	}

	var ips []net.IP
	if ip := net.ParseIP(hostname); ip != nil {
		ips = []net.IP{ip}
	} else {
		ips, err = lookupIP(ctx, hostname)
		if err != nil {
			return fmt.Errorf("%w: DNS lookup failed for %s: %v", artUC.ErrInvalidURL, hostname, err)
		}
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("%w: hostname '%s' resolves to private IP %s", artUC.ErrPrivateIP, hostname, ip)
		}
	}
	return nil
}

// isPrivateIP reports loopback, private (RFC 1918, RFC 4193), link-local and
// unspecified addresses.
func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}
