package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/marpol/driftwatch/internal/domain/model"
)

func update(mmsi string, ts int64) Update {
	return model.PositionUpdate{
		MMSI:   mmsi,
		Report: model.PositionReport{Time: ts, SOG: 10, COG: 90, Lat: 59.62, Lon: 24.51},
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, update("230000001", 1)) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.MMSI != "230000001" {
		t.Errorf("expected 230000001, got %v", got.MMSI)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, update("230000001", 1)) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, update("230000002", 2)) {
		t.Error("expected enqueue to succeed")
	}
	if q.Enqueue(ctx, update("230000003", 3)) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, update("230000001", 1)) {
		t.Error("expected enqueue to succeed")
	}
	if err := q.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if q.Enqueue(ctx, update("230000002", 2)) {
		t.Error("expected enqueue to fail after close")
	}
	// Double close is a no-op.
	if err := q.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}

	// The buffered update drains, then the channel closes.
	updates := q.Dequeue(ctx)
	if got := <-updates; got.MMSI != "230000001" {
		t.Errorf("expected buffered update, got %v", got.MMSI)
	}
	if _, ok := <-updates; ok {
		t.Error("expected channel to be closed")
	}
}

func TestInMemoryQueue_ConcurrentProducers(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1000))
	ctx := context.Background()
	const producers = 10
	const perProducer = 100

	done := make(chan bool, producers)
	for i := 0; i < producers; i++ {
		go func(id int) {
			for j := 0; j < perProducer; j++ {
				u := update(fmt.Sprintf("23000%04d", id), int64(j))
				for !q.Enqueue(ctx, u) {
					time.Sleep(time.Millisecond)
				}
			}
			done <- true
		}(i)
	}

	consumed := 0
	updates := q.Dequeue(ctx)
	finished := 0
	for finished < producers || consumed < producers*perProducer {
		select {
		case <-updates:
			consumed++
		case <-done:
			finished++
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out: consumed %d, finished %d", consumed, finished)
		}
	}

	if consumed != producers*perProducer {
		t.Errorf("expected %d updates, got %d", producers*perProducer, consumed)
	}
}
