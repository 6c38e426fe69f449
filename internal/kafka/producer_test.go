package kafka

import (
	"context"
	"testing"
	"time"
)

// Shutdown closes the inbox and cancels the flush context in quick
// succession; neither order, nor repeating it, may panic.
func TestProducerShutdownCloseThenCancel(t *testing.T) {
	for i := 0; i < 50; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		p := NewProducer([]string{"localhost:9092"}, "test.topic", 8)
		p.Start(ctx)

		p.Close()
		cancel()
		waitClosed(t, p)
	}
}

func TestProducerShutdownCancelThenClose(t *testing.T) {
	for i := 0; i < 50; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		p := NewProducer([]string{"localhost:9092"}, "test.topic", 8)
		p.Start(ctx)

		cancel()
		p.Close()
		waitClosed(t, p)
	}
}

func TestProducerCloseIsIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := NewProducer([]string{"localhost:9092"}, "test.topic", 8)
	p.Start(ctx)

	p.Close()
	p.Close()
	waitClosed(t, p)
}

func waitClosed(t *testing.T, p *Producer) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		p.WaitClosed()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("producer did not shut down")
	}
}
