package fetch

import "time"

// RetryPolicy is an explicit, injectable retry policy: total attempt count
// and a fixed pause between attempts. Tests substitute a zero-delay Sleep.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	Sleep    func(time.Duration)
}

// DefaultRetryPolicy matches the production behavior: 3 attempts total
// with a 10-second pause between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Delay: 10 * time.Second}
}

func (p RetryPolicy) sleep() {
	if p.Sleep != nil {
		p.Sleep(p.Delay)
		return
	}
	time.Sleep(p.Delay)
}

func (p RetryPolicy) attempts() int {
	if p.Attempts < 1 {
		return 1
	}
	return p.Attempts
}
