package taskfarm

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestSlotState_String(t *testing.T) {
	tests := []struct {
		s    SlotState
		want string
	}{
		{Ready, "Ready"},
		{Start, "Start"},
		{Working, "Working"},
		{Complete, "Complete"},
		{SlotState(42), "Unknown"},
	}
	for _, tc := range tests {
		if got := tc.s.String(); got != tc.want {
			t.Fatalf("SlotState(%d).String() = %q; want %q", uint32(tc.s), got, tc.want)
		}
	}
}

func TestSlotCell_ClaimExactlyOnce(t *testing.T) {
	region, err := NewRegion(1, 8)
	if err != nil {
		t.Fatalf("NewRegion: %v", err)
	}
	c := region.cell(0)

	const (
		rounds   = 200
		claimers = 16
	)
	for round := range rounds {
		c.store(Start)

		var (
			wg      sync.WaitGroup
			winners atomic.Int32
			gate    = make(chan struct{})
		)
		for range claimers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-gate
				if c.claim() {
					winners.Add(1)
				}
			}()
		}
		close(gate)
		wg.Wait()

		if got := winners.Load(); got != 1 {
			t.Fatalf("round %d: %d claimers won; want exactly 1", round, got)
		}
		if got := c.load(); got != Working {
			t.Fatalf("round %d: state = %v; want Working", round, got)
		}
		c.store(Ready)
	}
}

func TestSlotCell_ClaimFailsUnlessStart(t *testing.T) {
	region, _ := NewRegion(1, 8)
	c := region.cell(0)

	for _, s := range []SlotState{Ready, Working, Complete} {
		c.store(s)
		if c.claim() {
			t.Fatalf("claim succeeded from %v", s)
		}
		if got := c.load(); got != s {
			t.Fatalf("failed claim changed state %v -> %v", s, got)
		}
	}
}

func TestSlotCell_RingNeverBlocks(t *testing.T) {
	region, _ := NewRegion(1, 8)
	c := region.cell(0)
	for range 10 {
		c.ring()
	}
	select {
	case <-c.doorbell:
	default:
		t.Fatal("doorbell not rung")
	}
	select {
	case <-c.doorbell:
		t.Fatal("doorbell buffered more than one ring")
	default:
	}
}

func TestRegion_Validation(t *testing.T) {
	if _, err := NewRegion(0, 8); err == nil {
		t.Fatal("expected error for zero workers")
	}
	if _, err := NewRegion(2, 0); err == nil {
		t.Fatal("expected error for zero payload size")
	}
}

func TestRegion_BuffersAreCapped(t *testing.T) {
	region, err := NewRegion(3, 4)
	if err != nil {
		t.Fatalf("NewRegion: %v", err)
	}

	for i := range region.Workers() {
		b := region.Buffer(i)
		if len(b) != 4 || cap(b) != 4 {
			t.Fatalf("buffer %d: len=%d cap=%d; want 4/4", i, len(b), cap(b))
		}
	}

	// append must reallocate, never write into slot 1
	grown := append(region.Buffer(0), 1, 2, 3)
	grown[4] = 9
	for _, v := range region.Buffer(1) {
		if v != 0 {
			t.Fatalf("slot 1 buffer modified through slot 0: %v", region.Buffer(1))
		}
	}

	b := region.Binding(2)
	if b.Index != 2 || b.Region != region || &b.Buffer[0] != &region.Buffer(2)[0] {
		t.Fatal("binding does not describe slot 2")
	}
}
