package httpapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServeNgrokRequiresAuthtoken(t *testing.T) {
	srv := New(nil, fakeRegistry{views: map[string]SessionView{}})
	err := Serve(context.Background(), nil, srv, ServeOptions{Mode: ExposeNgrok})
	require.Error(t, err)
	require.Contains(t, err.Error(), "authtoken")
}

func TestServeTLSRequiresDomain(t *testing.T) {
	srv := New(nil, fakeRegistry{views: map[string]SessionView{}})
	err := Serve(context.Background(), nil, srv, ServeOptions{Mode: ExposeTLS})
	require.Error(t, err)
	require.Contains(t, err.Error(), "domain")
}
