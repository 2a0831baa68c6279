package tcp

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestTransportReadWrite(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	tr := New(server)

	go func() {
		_, _ = client.Write([]byte("$OK#9a"))
	}()

	ctx := context.Background()

	if err := tr.Poll(ctx); err != nil {
		t.Fatalf("Poll: %v", err)
	}

	avail, err := tr.Peek(ctx)
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}

	if avail == 0 {
		t.Fatal("Peek reported no data after Poll returned")
	}

	buf := make([]byte, avail)

	n, err := tr.Read(ctx, buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if string(buf[:n]) != "$OK#9a" {
		t.Fatalf("got %q", buf[:n])
	}

	done := make(chan struct{})

	go func() {
		defer close(done)

		reply := make([]byte, 6)
		_, _ = client.Read(reply)
	}()

	if err := tr.Write(ctx, []byte("$OK#9a")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("client never received the write")
	}
}

func TestTransportPollTimesOutWithoutError(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	tr := New(server)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := tr.Poll(ctx); err != nil {
		t.Fatalf("Poll with no data should not error on a mere timeout, got %v", err)
	}
}
