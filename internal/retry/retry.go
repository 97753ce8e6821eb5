package retry

import "time"

// Policy is a bounded fixed-delay retry policy. The wait between attempts is
// a blocking sleep; callers wanting timeout semantics wrap the whole call.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Sleep       func(time.Duration)
}

// Do runs op up to MaxAttempts times, sleeping Delay between attempts as
// long as retryable reports the error as transient. The last error is
// returned once the budget is exhausted or a non-retryable error occurs.
func (p Policy) Do(op func(attempt int) error, retryable func(error) bool) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op(attempt)
		if err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		sleep(p.Delay)
	}

	return err
}
