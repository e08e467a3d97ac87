// Package benchmarks
// Author: momentics <momentics@gmail.com>
//
// Performance benchmarks for hioload-seq components.

package benchmarks

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/momentics/hioload-seq/api"
	"github.com/momentics/hioload-seq/fake"
	"github.com/momentics/hioload-seq/internal/concurrency"
	"github.com/momentics/hioload-seq/internal/session"
	"github.com/momentics/hioload-seq/protocol"
	"github.com/momentics/hioload-seq/server"
)

// BenchmarkParseConfigure measures command parsing.
func BenchmarkParseConfigure(b *testing.B) {
	line := []byte("seq2 123456 7\r\n")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := protocol.Parse(line); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkAppendValues measures output line formatting into a reused buffer.
func BenchmarkAppendValues(b *testing.B) {
	buf := make([]byte, 0, 3*protocol.FieldWidth+1)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf = protocol.AppendValues(buf[:0], uint64(i), uint64(i)*3, 1<<40)
	}
}

// BenchmarkWorkQueueParallel measures push/pop under contention.
func BenchmarkWorkQueueParallel(b *testing.B) {
	q := concurrency.NewWorkQueue()
	h := session.New(session.DefaultOptions(), nil, nil)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			q.Push(h)
			q.TryPop()
		}
	})
}

// BenchmarkHandlerWriting measures one writing-mode step against a fake conn.
func BenchmarkHandlerWriting(b *testing.B) {
	c := fake.NewConn("bench")
	h := session.New(session.DefaultOptions(), nil, nil)
	h.Attach(c, nil)
	c.AddRecvData("seq1 1 1\nseq2 2 2\nseq3 3 3\nexport seq\r\n")
	for i := 0; i < 4; i++ {
		if st := h.Advance(); st != api.StatusOK {
			b.Fatalf("setup step %d: %s", i, st)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if st := h.Advance(); st != api.StatusOK {
			b.Fatalf("step: %s", st)
		}
		if i%1024 == 0 {
			c.ClearWritten()
		}
	}
}

// BenchmarkServerStream measures end-to-end line throughput for one client.
func BenchmarkServerStream(b *testing.B) {
	cfg := server.DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.Pool.Workers = 2
	srv, err := server.New(cfg)
	if err != nil {
		b.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	defer func() {
		cancel()
		<-done
	}()
	<-srv.Ready()

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		b.Fatal(err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(time.Minute))
	if _, err := conn.Write([]byte("seq1 1 1\nexport seq\r\n")); err != nil {
		b.Fatal(err)
	}
	r := bufio.NewReader(conn)

	b.SetBytes(protocol.FieldWidth + 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.ReadString('\n'); err != nil {
			b.Fatal(err)
		}
	}
}
