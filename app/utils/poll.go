package utils

import (
	"context"
	"fmt"
	"time"
)

// ErrPollTimeout WaitFor超时
var ErrPollTimeout = fmt.Errorf("等待超时")

// WaitFor 按interval轮询check，直到返回(true, nil)、返回错误、超时或ctx结束。
// maxInterval大于interval时每次轮询间隔翻倍，直到maxInterval。
func WaitFor(ctx context.Context, timeout, interval, maxInterval time.Duration, check func() (done bool, err error)) error {
	deadline := time.Now().Add(timeout)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := check()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("%w: %s", ErrPollTimeout, timeout)
		}
		wait := interval
		if wait > remaining {
			wait = remaining
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		if maxInterval > interval {
			interval *= 2
			if interval > maxInterval {
				interval = maxInterval
			}
		}
	}
}
