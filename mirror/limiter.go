package mirror

import "time"

// FrameLimiter paces a capture loop to a fixed frame rate.
type FrameLimiter struct {
	interval time.Duration
	last     time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// NewFrameLimiter returns a limiter for fps frames per second. A
// non-positive fps never waits.
func NewFrameLimiter(fps int) *FrameLimiter {
	l := &FrameLimiter{now: time.Now, sleep: time.Sleep}
	if fps > 0 {
		l.interval = time.Second / time.Duration(fps)
	}
	return l
}

// Wait blocks until one interval has passed since the previous Wait
// returned. A caller that is already late is not delayed further.
func (l *FrameLimiter) Wait() {
	if l.interval == 0 {
		return
	}
	now := l.now()
	if !l.last.IsZero() {
		if d := l.interval - now.Sub(l.last); d > 0 {
			l.sleep(d)
			now = now.Add(d)
		}
	}
	l.last = now
}
