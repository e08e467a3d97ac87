package lineio_test

import (
	"errors"
	"io"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-seq/api"
	"github.com/momentics/hioload-seq/fake"
	"github.com/momentics/hioload-seq/internal/lineio"
)

const maxLine = 50

func TestReadLineSingle(t *testing.T) {
	c := fake.NewConn("peer")
	c.AddRecvData("seq1 5 2\n")
	r := lineio.NewReader(c, 0)

	line, err := r.ReadLine(maxLine)
	require.NoError(t, err)
	assert.Equal(t, "seq1 5 2\n", string(line))
}

func TestReadLineKeepsBufferedRemainder(t *testing.T) {
	c := fake.NewConn("peer")
	c.AddRecvData("seq1 5 2\nexport seq\r\n")
	r := lineio.NewReader(c, 0)

	line, err := r.ReadLine(maxLine)
	require.NoError(t, err)
	assert.Equal(t, "seq1 5 2\n", string(line))
	assert.Equal(t, len("export seq\r\n"), r.Buffered())

	line, err = r.ReadLine(maxLine)
	require.NoError(t, err)
	assert.Equal(t, "export seq\r\n", string(line))
	assert.Equal(t, 1, c.Reads(), "second line must come from the buffer")
}

func TestReadLineWouldBlock(t *testing.T) {
	c := fake.NewConn("peer")
	r := lineio.NewReader(c, 0)

	_, err := r.ReadLine(maxLine)
	assert.ErrorIs(t, err, api.ErrWouldBlock)
}

func TestReadLineResumesPartialLine(t *testing.T) {
	c := fake.NewConn("peer")
	c.AddRecvData("seq2 1")
	r := lineio.NewReader(c, 0)

	_, err := r.ReadLine(maxLine)
	require.ErrorIs(t, err, api.ErrWouldBlock)

	c.AddRecvData("0 3\n")
	line, err := r.ReadLine(maxLine)
	require.NoError(t, err)
	assert.Equal(t, "seq2 10 3\n", string(line))
}

func TestReadLineEndOfStream(t *testing.T) {
	c := fake.NewConn("peer")
	c.Hangup()
	r := lineio.NewReader(c, 0)

	_, err := r.ReadLine(maxLine)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadLinePartialThenEndOfStream(t *testing.T) {
	c := fake.NewConn("peer")
	c.AddRecvData("seq1 1 1")
	c.Hangup()
	r := lineio.NewReader(c, 0)

	line, err := r.ReadLine(maxLine)
	require.NoError(t, err)
	assert.Equal(t, "seq1 1 1", string(line))

	_, err = r.ReadLine(maxLine)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadLineBound(t *testing.T) {
	c := fake.NewConn("peer")
	long := strings.Repeat("x", 70) + "\n"
	c.AddRecvData(long)
	r := lineio.NewReader(c, 0)

	line, err := r.ReadLine(maxLine)
	require.NoError(t, err)
	assert.Len(t, line, maxLine)
	assert.NotContains(t, string(line), "\n")

	line, err = r.ReadLine(maxLine)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 20)+"\n", string(line))
}

func TestReadLineRefillsOnlyWhenEmpty(t *testing.T) {
	c := fake.NewConn("peer")
	c.AddRecvData("ab")
	c.AddRecvData("c\n")
	r := lineio.NewReader(c, 4)

	line, err := r.ReadLine(maxLine)
	require.NoError(t, err)
	assert.Equal(t, "abc\n", string(line))
	assert.Equal(t, 2, c.Reads())
}

func TestReadLineTransportError(t *testing.T) {
	c := fake.NewConn("peer")
	c.SetReadError(syscall.ECONNRESET)
	r := lineio.NewReader(c, 0)

	_, err := r.ReadLine(maxLine)
	require.Error(t, err)
	assert.True(t, errors.Is(err, syscall.ECONNRESET))
	assert.False(t, errors.Is(err, api.ErrWouldBlock))
	assert.False(t, errors.Is(err, io.EOF))
}

func TestReaderReset(t *testing.T) {
	c1 := fake.NewConn("one")
	c1.AddRecvData("partial")
	r := lineio.NewReader(c1, 0)
	_, err := r.ReadLine(maxLine)
	require.ErrorIs(t, err, api.ErrWouldBlock)

	c2 := fake.NewConn("two")
	c2.AddRecvData("fresh\n")
	r.Reset(c2)
	line, err := r.ReadLine(maxLine)
	require.NoError(t, err)
	assert.Equal(t, "fresh\n", string(line))
}
