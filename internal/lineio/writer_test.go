package lineio_test

import (
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-seq/fake"
	"github.com/momentics/hioload-seq/internal/lineio"
)

func TestWriteAllShortWrites(t *testing.T) {
	c := fake.NewConn("peer")
	c.SetWriteLimit(3)

	require.NoError(t, lineio.WriteString(c, "hello, world\n", 0))
	assert.Equal(t, "hello, world\n", c.Written())
}

func TestWriteAllRetriesWouldBlock(t *testing.T) {
	c := fake.NewConn("peer")
	c.BlockWrites(5)

	require.NoError(t, lineio.WriteString(c, "value\n", 0))
	assert.Equal(t, "value\n", c.Written())
}

func TestWriteAllHardFailure(t *testing.T) {
	c := fake.NewConn("peer")
	c.SetWriteError(syscall.EPIPE)

	err := lineio.WriteString(c, "value\n", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, syscall.EPIPE)
}

func TestWriteAllStall(t *testing.T) {
	c := fake.NewConn("peer")
	c.BlockWrites(1 << 30)

	start := time.Now()
	err := lineio.WriteString(c, "value\n", 20*time.Millisecond)
	require.ErrorIs(t, err, lineio.ErrWriteStalled)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
