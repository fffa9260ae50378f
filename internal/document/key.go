package document

import (
	"net/url"
	"strings"
)

// KeyFromReference derives the canonical storage key from a blob reference.
// The reference may be a bare key, a virtual-hosted-style URL (bucket as
// subdomain), a path-style URL (bucket as first path segment), or a
// previously signed URL carrying query-string authentication parameters.
//
// Returns "" when the reference is empty or yields no key; callers must treat
// "" as "nothing to do". Pure function, no I/O.
func KeyFromReference(ref string) string {
	if ref == "" {
		return ""
	}

	// Signed-URL query parameters never belong to the key.
	if i := strings.IndexByte(ref, '?'); i >= 0 {
		ref = ref[:i]
	}
	if ref == "" {
		return ""
	}

	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" || u.Host == "" {
		// Bare key with no scheme.
		return pathUnescape(strings.TrimPrefix(ref, "/"))
	}

	host := u.Hostname()
	path := strings.TrimPrefix(u.Path, "/")
	if path == "" {
		return ""
	}

	switch {
	case isVirtualHosted(host):
		// https://bucket.s3.region.amazonaws.com/folder/file -> folder/file
		return pathUnescape(path)
	case isPathStyle(u):
		// https://s3.region.amazonaws.com/bucket/folder/file -> folder/file
		if i := strings.IndexByte(path, '/'); i >= 0 {
			return pathUnescape(path[i+1:])
		}
		return ""
	default:
		// Unknown URL shape: last path segment.
		if i := strings.LastIndexByte(path, '/'); i >= 0 {
			path = path[i+1:]
		}
		return pathUnescape(path)
	}
}

// isVirtualHosted reports whether the host names the bucket as a subdomain of
// an S3 endpoint, e.g. bucket.s3.region.amazonaws.com or bucket.s3.amazonaws.com.
func isVirtualHosted(host string) bool {
	return strings.Contains(host, ".s3.") || strings.Contains(host, ".s3-")
}

// isPathStyle reports whether the URL addresses the bucket as the first path
// segment: a bare S3 endpoint (s3.region.amazonaws.com) or a self-hosted
// endpoint with an explicit port, the shape MinIO serves.
func isPathStyle(u *url.URL) bool {
	host := u.Hostname()
	return strings.HasPrefix(host, "s3.") || strings.HasPrefix(host, "s3-") || u.Port() != ""
}

func pathUnescape(s string) string {
	if decoded, err := url.PathUnescape(s); err == nil {
		return decoded
	}
	return s
}
