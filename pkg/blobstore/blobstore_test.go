package blobstore

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicURL(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		key  string
		want string
	}{
		{
			name: "derived from endpoint",
			cfg:  Config{Endpoint: "localhost:9000", Bucket: "images"},
			key:  "avatars/user-1.png",
			want: "http://localhost:9000/images/avatars/user-1.png",
		},
		{
			name: "ssl endpoint",
			cfg:  Config{Endpoint: "s3.example.com", Bucket: "images", UseSSL: true},
			key:  "avatars/user-1.jpg",
			want: "https://s3.example.com/images/avatars/user-1.jpg",
		},
		{
			name: "explicit public url",
			cfg:  Config{Endpoint: "minio:9000", Bucket: "images", PublicURL: "https://cdn.example.com/images/"},
			key:  "avatars/a b.png",
			want: "https://cdn.example.com/images/avatars/a%20b.png",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &MinioStore{baseURL: publicBaseURL(tc.cfg)}
			assert.Equal(t, tc.want, store.PublicURL(tc.key))
		})
	}
}

// TestMinioStore runs against a real server when BLOB_TEST_ENDPOINT is set,
// e.g. a local `minio server` with the default credentials.
func TestMinioStore(t *testing.T) {
	endpoint := os.Getenv("BLOB_TEST_ENDPOINT")
	if endpoint == "" {
		t.Skip("BLOB_TEST_ENDPOINT not set")
	}
	ctx := context.Background()

	store, err := NewMinioStore(ctx, Config{
		Endpoint:  endpoint,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "kitobxon-test",
	})
	require.NoError(t, err)

	data := []byte("hello")
	require.NoError(t, store.Put(ctx, "avatars/test.txt", bytes.NewReader(data), int64(len(data)), "text/plain"))

	resp, err := http.Get(store.PublicURL("avatars/test.txt"))
	require.NoError(t, err)
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, data, body)
	}

	require.NoError(t, store.Delete(ctx, "avatars/test.txt"))
}
