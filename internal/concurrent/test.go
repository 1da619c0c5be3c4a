package concurrent

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Assertion waits for an expected number of events emitted from other go routines.
// Events beyond the expected ones are ignored.
type Assertion struct {
	counter  *Counter
	expected int
}

func NewAssertion(expected int) *Assertion {
	wg := new(sync.WaitGroup)
	wg.Add(expected)
	return &Assertion{
		counter:  NewCounter(wg, expected),
		expected: expected,
	}
}

func (a *Assertion) Expect(v interface{}) {
	a.counter.Track(v)
}

// Assert waits for the expected events, failing the test after the timeout.
func (a *Assertion) Assert(t *testing.T, timeout time.Duration) []interface{} {
	done := make(chan struct{})
	go func() {
		a.counter.waitGroup.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("expected %d events within %v, got %d", a.expected, timeout, a.counter.Get())
	}
	assert.Equal(t, a.expected, a.counter.Get())
	vv := a.counter.Values()
	for _, v := range vv {
		fmt.Printf("v = %+v\n", v)
	}
	return vv
}
