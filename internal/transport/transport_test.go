package transport_test

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-seq/api"
	"github.com/momentics/hioload-seq/internal/transport"
)

func listen(t *testing.T) *transport.Listener {
	t.Helper()
	ln, err := transport.Listen(context.Background(), "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	return ln
}

func acceptPair(t *testing.T, ln *transport.Listener) (api.Conn, net.Conn) {
	t.Helper()
	client, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	server, err := ln.Accept()
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })
	return server, client
}

// readSome polls conn until it yields data or a non-would-block result.
func readSome(t *testing.T, conn api.Conn, p []byte) (int, error) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		n, err := conn.Read(p)
		if !errors.Is(err, api.ErrWouldBlock) {
			return n, err
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("connection never became readable")
	return 0, nil
}

func TestReadWouldBlockWithoutData(t *testing.T) {
	server, _ := acceptPair(t, listen(t))
	buf := make([]byte, 16)
	_, err := server.Read(buf)
	assert.ErrorIs(t, err, api.ErrWouldBlock)
}

func TestReadWriteRoundTrip(t *testing.T) {
	server, client := acceptPair(t, listen(t))

	_, err := client.Write([]byte("seq1 5 2\n"))
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, err := readSome(t, server, buf)
	require.NoError(t, err)
	assert.Equal(t, "seq1 5 2\n", string(buf[:n]))

	n, err = server.Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))
	got := make([]byte, 6)
	_, err = io.ReadFull(client, got)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(got))
}

func TestReadEndOfStream(t *testing.T) {
	server, client := acceptPair(t, listen(t))
	require.NoError(t, client.Close())

	n, err := readSome(t, server, make([]byte, 8))
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestRemoteAddr(t *testing.T) {
	server, client := acceptPair(t, listen(t))
	assert.Equal(t, client.LocalAddr().String(), server.RemoteAddr().String())
}

func TestAcceptAfterClose(t *testing.T) {
	ln, err := transport.Listen(context.Background(), "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := ln.Accept()
		done <- err
	}()
	require.NoError(t, ln.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, net.ErrClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("Accept did not return after Close")
	}
}
