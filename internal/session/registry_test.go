package session_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-seq/fake"
	"github.com/momentics/hioload-seq/internal/session"
)

func TestRegistryConcurrentAttachClose(t *testing.T) {
	reg := session.NewRegistry(8)
	const n = 64

	handlers := make([]*session.Handler, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h := session.New(session.DefaultOptions(), nil, reg)
			h.Attach(fake.NewConn(fmt.Sprintf("peer-%d", i)), nil)
			handlers[i] = h
		}(i)
	}
	wg.Wait()
	assert.Equal(t, n, reg.Len())

	infos := reg.Snapshot()
	require.Len(t, infos, n)
	for _, info := range infos {
		assert.Equal(t, "reading", info.Mode)
		assert.NotEmpty(t, info.ID)
	}

	for _, h := range handlers {
		require.NoError(t, h.Close())
	}
	assert.Equal(t, 0, reg.Len())
	assert.Empty(t, reg.Snapshot())
}
