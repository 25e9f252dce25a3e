package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"planportal/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statOnly struct {
	Storage
	err error
}

func (s statOnly) Stat(context.Context, string) (ObjectInfo, error) {
	return ObjectInfo{}, s.err
}

func TestExists(t *testing.T) {
	ctx := context.Background()

	ok, err := Exists(ctx, statOnly{}, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Exists(ctx, statOnly{err: ErrNotFound}, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Exists(ctx, statOnly{err: errors.New("timeout")}, "k")
	assert.Error(t, err)
}

func TestPublicBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MinIOConfig
		want string
	}{
		{
			name: "derived from endpoint",
			cfg:  config.MinIOConfig{Endpoint: "minio:9000", Bucket: "portal"},
			want: "http://minio:9000/portal",
		},
		{
			name: "tls endpoint",
			cfg:  config.MinIOConfig{Endpoint: "s3.example.in", Bucket: "portal", UseSSL: true},
			want: "https://s3.example.in/portal",
		},
		{
			name: "explicit base trims slash",
			cfg:  config.MinIOConfig{Endpoint: "minio:9000", Bucket: "portal", PublicBaseURL: "https://cdn.example.in/portal/"},
			want: "https://cdn.example.in/portal",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicBaseURL(tt.cfg))
		})
	}
}

func TestURLChecker_Resolves(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/gone":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	c := NewURLCheckerWithClient(&http.Client{Timeout: time.Second})
	ctx := context.Background()

	ok, err := c.Resolves(ctx, srv.URL+"/ok")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Resolves(ctx, srv.URL+"/gone")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Resolves(ctx, srv.URL+"/flaky")
	assert.Error(t, err)
}
