package utils

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingService(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	ctx := context.Background()
	assert.NoError(t, PingService(ctx, "http://"+ln.Addr().String(), time.Second))

	addr := ln.Addr().String()
	ln.Close()
	assert.Error(t, PingService(ctx, "http://"+addr, 200*time.Millisecond))

	assert.Error(t, PingService(ctx, "://bad", time.Second))
	assert.Error(t, PingService(ctx, "no-host", time.Second))
}
