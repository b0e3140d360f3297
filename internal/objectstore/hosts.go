package objectstore

import (
	"net/url"
	"strings"
)

// Hosts that always belong to Cloudflare R2 buckets.
var defaultHostSuffixes = []string{".r2.dev", ".r2.cloudflarestorage.com"}

// HostMatcher recognizes URLs that point into the object store: anything
// under the public base URL, R2 development and API hosts, and custom
// domains given as "img.example.com" or "*.example.com".
type HostMatcher struct {
	publicBase string
	baseHost   string
	basePath   string
	hosts      map[string]struct{}
	suffixes   []string
}

func NewHostMatcher(publicBaseURL string, customHosts []string) *HostMatcher {
	m := &HostMatcher{
		publicBase: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
		hosts:      make(map[string]struct{}),
		suffixes:   append([]string(nil), defaultHostSuffixes...),
	}

	if base, err := url.Parse(m.publicBase); err == nil && base.Host != "" {
		m.baseHost = strings.ToLower(base.Host)
		m.basePath = strings.Trim(base.Path, "/")
	}

	for _, h := range customHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "":
		case strings.HasPrefix(h, "*."):
			m.suffixes = append(m.suffixes, h[1:])
		default:
			m.hosts[h] = struct{}{}
		}
	}
	return m
}

// Match reports whether rawURL is an absolute http(s) URL served by the object store.
func (m *HostMatcher) Match(rawURL string) bool {
	u, ok := parseAbsolute(rawURL)
	if !ok {
		return false
	}

	if m.baseHost != "" && strings.EqualFold(u.Host, m.baseHost) && hasPathPrefix(u.Path, m.basePath) {
		return true
	}

	host := strings.ToLower(u.Hostname())
	if _, ok := m.hosts[host]; ok {
		return true
	}
	for _, suffix := range m.suffixes {
		if strings.HasSuffix(host, suffix) && len(host) > len(suffix) {
			return true
		}
	}
	return false
}

// KeyFromURL extracts the object key from a matching URL. For URLs under the
// public base the base path is removed, otherwise the whole path is the key.
func (m *HostMatcher) KeyFromURL(rawURL string) (string, bool) {
	if !m.Match(rawURL) {
		return "", false
	}
	u, _ := parseAbsolute(rawURL)

	key := strings.TrimPrefix(u.Path, "/")
	if m.basePath != "" && strings.EqualFold(u.Host, m.baseHost) {
		key = strings.TrimPrefix(key, m.basePath+"/")
	}
	if key == "" {
		return "", false
	}
	return key, true
}

func parseAbsolute(rawURL string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || u.User != nil {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	return u, true
}

func hasPathPrefix(path, prefix string) bool {
	if prefix == "" {
		return true
	}
	path = strings.TrimPrefix(path, "/")
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
