package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyFromReference(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{
			name: "empty reference",
			ref:  "",
			want: "",
		},
		{
			name: "bare key",
			ref:  "customers/documents/abc.pdf",
			want: "customers/documents/abc.pdf",
		},
		{
			name: "bare key with leading slash",
			ref:  "/customers/documents/abc.pdf",
			want: "customers/documents/abc.pdf",
		},
		{
			name: "virtual-hosted-style url",
			ref:  "https://bucket.s3.ap-south-1.amazonaws.com/customers/documents/abc.pdf",
			want: "customers/documents/abc.pdf",
		},
		{
			name: "virtual-hosted-style url without region",
			ref:  "https://bucket.s3.amazonaws.com/policies/life/policy.pdf",
			want: "policies/life/policy.pdf",
		},
		{
			name: "signed url query string is stripped",
			ref:  "https://bucket.s3.ap-south-1.amazonaws.com/customers/documents/abc.pdf?X-Amz-Algorithm=AWS4-HMAC-SHA256&X-Amz-Expires=3600",
			want: "customers/documents/abc.pdf",
		},
		{
			name: "path-style url",
			ref:  "https://s3.ap-south-1.amazonaws.com/bucket/customers/documents/abc.pdf",
			want: "customers/documents/abc.pdf",
		},
		{
			name: "path-style url with port",
			ref:  "http://minio:9000/bucket/customers/documents/abc.pdf",
			want: "customers/documents/abc.pdf",
		},
		{
			name: "unknown host falls back to last path segment",
			ref:  "https://cdn.example.com/some/deep/path/file.pdf",
			want: "file.pdf",
		},
		{
			name: "url-encoded key is decoded",
			ref:  "https://bucket.s3.ap-south-1.amazonaws.com/customers/documents/my%20file.pdf",
			want: "customers/documents/my file.pdf",
		},
		{
			name: "query only",
			ref:  "?X-Amz-Algorithm=AWS4-HMAC-SHA256",
			want: "",
		},
		{
			name: "url with empty path",
			ref:  "https://bucket.s3.ap-south-1.amazonaws.com/",
			want: "",
		},
		{
			name: "path-style url with bucket only",
			ref:  "https://s3.ap-south-1.amazonaws.com/bucket",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := KeyFromReference(tt.ref)
			assert.Equal(t, tt.want, got)

			// Re-interpreting the output as a reference must yield the same key.
			assert.Equal(t, got, KeyFromReference(got))
		})
	}
}
