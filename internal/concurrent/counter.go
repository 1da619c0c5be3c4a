package concurrent

import (
	"sync"
)

// Counter is a synchronous counter for tracking events and synchronising progress.
// It releases the wait group once per event, up to the given limit.
type Counter struct {
	mutex     *sync.Mutex
	waitGroup *sync.WaitGroup
	limit     int
	count     int
	vv        []interface{}
}

// NewCounter creates a new counter.
func NewCounter(waitGroup *sync.WaitGroup, limit int) *Counter {
	return &Counter{
		mutex:     new(sync.Mutex),
		waitGroup: waitGroup,
		limit:     limit,
		vv:        make([]interface{}, 0),
	}
}

// Track increments the counter by one and keeps the object, while the limit is not reached.
func (c *Counter) Track(v interface{}) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.count >= c.limit {
		return false
	}
	c.count++
	if v != nil {
		c.vv = append(c.vv, v)
	}
	if c.waitGroup != nil {
		c.waitGroup.Done()
	}
	return true
}

// Get returns the current count.
func (c *Counter) Get() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.count
}

// Values returns the tracked values.
func (c *Counter) Values() []interface{} {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	vv := make([]interface{}, len(c.vv))
	copy(vv, c.vv)
	return vv
}
