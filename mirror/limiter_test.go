package mirror

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t     time.Time
	slept []time.Duration
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.t = c.t.Add(d)
}

func newTestLimiter(fps int) (*FrameLimiter, *fakeClock) {
	c := &fakeClock{t: time.Unix(1000, 0)}
	l := NewFrameLimiter(fps)
	l.now, l.sleep = c.now, c.sleep
	return l, c
}

func TestFrameLimiterPaces(t *testing.T) {
	l, c := newTestLimiter(10)

	l.Wait()
	assert.Empty(t, c.slept, "first frame is immediate")

	c.t = c.t.Add(30 * time.Millisecond)
	l.Wait()
	assert.Equal(t, []time.Duration{70 * time.Millisecond}, c.slept)
}

func TestFrameLimiterLateCaller(t *testing.T) {
	l, c := newTestLimiter(10)
	l.Wait()

	c.t = c.t.Add(250 * time.Millisecond)
	l.Wait()
	assert.Empty(t, c.slept)

	c.t = c.t.Add(50 * time.Millisecond)
	l.Wait()
	assert.Equal(t, []time.Duration{50 * time.Millisecond}, c.slept,
		"pacing restarts from the late frame")
}

func TestFrameLimiterUnlimited(t *testing.T) {
	l, c := newTestLimiter(0)
	l.Wait()
	l.Wait()
	assert.Empty(t, c.slept)
}
