package taskfarm_test

import (
	"encoding/binary"
	"math"
	"runtime"
	"testing"
	"time"

	tf "github.com/Andrej220/go-utils/taskfarm"
)

type jobType uint8

const (
	jobRandFloat jobType = iota
	jobDouble
	jobChain
)

func newTestOptions(workers int) tf.Options {
	return tf.Options{
		Workers:      workers,
		PayloadSize:  8,
		TickInterval: time.Millisecond,
		Wait:         tf.WaitPolicy{Attempts: 4, Initial: time.Millisecond, Max: 2 * time.Millisecond},
	}
}

func newTestFarm(t *testing.T, opts tf.Options) *tf.Farm[jobType] {
	t.Helper()

	f, err := tf.NewFarm[jobType](opts)
	if err != nil {
		t.Fatalf("NewFarm: %v", err)
	}
	return f
}

func putF64(buf []byte, v float64) {
	binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
}

func getF64(buf []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(buf))
}

func f64Payload(v float64) []byte {
	b := make([]byte, 8)
	putF64(b, v)
	return b
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		runtime.Gosched()
	}
	t.Fatal("condition not satisfied before timeout")
}
