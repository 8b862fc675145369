package refresh

import "time"

// PollPolicy bounds how often the scheduler asks the chain for its
// height. While the height is unchanged the delay halves toward Min
// (a new block is due soon), and every ResetEvery polls it snaps back
// to the conservative Max to bound load on the height endpoint. After
// a successful rebuild polling restarts at AfterRebuild.
type PollPolicy struct {
	Min          time.Duration
	Max          time.Duration
	AfterRebuild time.Duration
	ResetEvery   int
}

func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		Min:          1 * time.Second,
		Max:          10 * time.Second,
		AfterRebuild: 25 * time.Second,
		ResetEvery:   100,
	}
}

// NextIdle returns the delay before the next height poll given the
// current delay and how many unchanged polls have happened in a row.
func (p PollPolicy) NextIdle(cur time.Duration, idlePolls int) time.Duration {
	if p.ResetEvery > 0 && idlePolls > 0 && idlePolls%p.ResetEvery == 0 {
		return p.Max
	}
	cur /= 2
	if cur < p.Min {
		cur = p.Min
	}
	if cur > p.Max {
		cur = p.Max
	}
	return cur
}
