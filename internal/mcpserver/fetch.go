package mcpserver

import (
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxImportSize = 10 << 20 // 10 MB

var allowedMIME = map[string]bool{
	"application/json": true,
	"text/json":        true,
	"text/plain":       true,
}

// readSource resolves an import source: inline JSON, a base64 data URI or an
// http(s) URL.
func readSource(src string) ([]byte, error) {
	src = strings.TrimSpace(src)
	switch {
	case strings.HasPrefix(src, "{"):
		if len(src) > maxImportSize {
			return nil, fmt.Errorf("document too large: %d bytes (max %d)", len(src), maxImportSize)
		}
		return []byte(src), nil
	case strings.HasPrefix(src, "data:"):
		return decodeDataURI(src)
	default:
		return fetchHTTP(src)
	}
}

// decodeDataURI parses a data:[<mediatype>][;base64],<data> URI.
func decodeDataURI(uri string) ([]byte, error) {
	rest := strings.TrimPrefix(uri, "data:")
	commaIdx := strings.Index(rest, ",")
	if commaIdx < 0 {
		return nil, fmt.Errorf("invalid data URI: missing comma separator")
	}

	meta := rest[:commaIdx]
	encoded := rest[commaIdx+1:]

	mime := strings.Split(strings.TrimSuffix(meta, ";base64"), ";")[0]
	if mime != "" && !allowedMIME[mime] {
		return nil, fmt.Errorf("unsupported MIME type in data URI: %s", mime)
	}

	if !strings.Contains(meta, ";base64") {
		plain, err := url.PathUnescape(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid data URI: %w", err)
		}
		return []byte(plain), nil
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	if len(data) > maxImportSize {
		return nil, fmt.Errorf("document too large: %d bytes (max %d)", len(data), maxImportSize)
	}
	return data, nil
}

// fetchHTTP downloads a backup from an HTTP/HTTPS URL with security checks.
func fetchHTTP(rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported source: expected JSON, a data URI or an http(s) URL")
	}

	if err := checkBlockedHost(parsed.Hostname()); err != nil {
		return nil, err
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects (max 5)")
			}
			return checkBlockedHost(req.URL.Hostname())
		},
	}

	resp, err := client.Get(rawURL) //nolint:noctx
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImportSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	if len(data) > maxImportSize {
		return nil, fmt.Errorf("document too large: exceeds %d bytes", maxImportSize)
	}
	return data, nil
}

// checkBlockedHost rejects hosts that resolve to loopback, private,
// link-local (including cloud metadata) or unspecified addresses. Every
// resolved address is checked.
func checkBlockedHost(host string) error {
	if host == "metadata.google.internal" {
		return fmt.Errorf("blocked host: %s", host)
	}

	ips := []net.IP{net.ParseIP(host)}
	if ips[0] == nil {
		resolved, lookupErr := net.LookupIP(host)
		if lookupErr != nil || len(resolved) == 0 {
			return nil //nolint:nilerr // let http.Client handle DNS failures
		}
		ips = resolved
	}

	for _, ip := range ips {
		if reason := blockedReason(ip); reason != "" {
			return fmt.Errorf("blocked host: %s address %s", reason, host)
		}
	}
	return nil
}

func blockedReason(ip net.IP) string {
	switch {
	case ip.IsLoopback():
		return "loopback"
	case ip.IsPrivate():
		return "private"
	case ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast():
		return "link-local"
	case ip.IsUnspecified():
		return "unspecified"
	}
	return ""
}
