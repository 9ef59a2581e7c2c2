// idle_strategy.go: consumer idle/backoff strategies for the ring worker loop.
//
// Five shapes: spin, sleep, yield, channel-wakeup, progressive.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ring

import (
	"runtime"
	"sync/atomic"
	"time"
)

// IdleStrategy controls how the consumer goroutine waits when the ring is empty.
type IdleStrategy interface {
	// Idle is called once per empty poll. It returns true if the caller
	// should keep idling, false if it should re-check the ring immediately.
	Idle() bool
	Reset()
	String() string
}

// SpinningIdleStrategy busy-spins with no backoff. Lowest latency, highest CPU.
type SpinningIdleStrategy struct{}

func NewSpinningIdleStrategy() *SpinningIdleStrategy { return &SpinningIdleStrategy{} }
func (s *SpinningIdleStrategy) Idle() bool            { return true }
func (s *SpinningIdleStrategy) Reset()                {}
func (s *SpinningIdleStrategy) String() string         { return "spinning" }

// SleepingIdleStrategy spins briefly, then sleeps for a fixed duration.
type SleepingIdleStrategy struct {
	spinLimit int
	sleepFor  time.Duration
	spins     int64
}

func NewSleepingIdleStrategy(spinLimit int, sleepFor time.Duration) *SleepingIdleStrategy {
	return &SleepingIdleStrategy{spinLimit: spinLimit, sleepFor: sleepFor}
}

func (s *SleepingIdleStrategy) Idle() bool {
	n := atomic.AddInt64(&s.spins, 1)
	if int(n) <= s.spinLimit {
		runtime.Gosched()
		return true
	}
	time.Sleep(s.sleepFor)
	return true
}

func (s *SleepingIdleStrategy) Reset()         { atomic.StoreInt64(&s.spins, 0) }
func (s *SleepingIdleStrategy) String() string { return "sleeping" }

// YieldingIdleStrategy spins for a bounded number of iterations then yields
// the OS thread via runtime.Gosched on every subsequent poll.
type YieldingIdleStrategy struct {
	spinLimit int
	spins     int64
}

func NewYieldingIdleStrategy(spinLimit int) *YieldingIdleStrategy {
	return &YieldingIdleStrategy{spinLimit: spinLimit}
}

func (s *YieldingIdleStrategy) Idle() bool {
	n := atomic.AddInt64(&s.spins, 1)
	if int(n) > s.spinLimit {
		runtime.Gosched()
	}
	return true
}

func (s *YieldingIdleStrategy) Reset()         { atomic.StoreInt64(&s.spins, 0) }
func (s *YieldingIdleStrategy) String() string { return "yielding" }

// ChannelIdleStrategy parks on a channel until woken, with an optional timeout.
type ChannelIdleStrategy struct {
	wake    chan struct{}
	timeout time.Duration
}

func NewChannelIdleStrategy(timeout time.Duration) *ChannelIdleStrategy {
	return &ChannelIdleStrategy{wake: make(chan struct{}, 1), timeout: timeout}
}

func (s *ChannelIdleStrategy) Idle() bool {
	if s.timeout <= 0 {
		<-s.wake
		return true
	}
	t := time.NewTimer(s.timeout)
	defer t.Stop()
	select {
	case <-s.wake:
	case <-t.C:
	}
	return true
}

// WakeUp signals the idling consumer to re-check the ring immediately.
func (s *ChannelIdleStrategy) WakeUp() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *ChannelIdleStrategy) Reset()         {}
func (s *ChannelIdleStrategy) String() string { return "channel" }

// ProgressiveIdleStrategy escalates from hot-spin to yield to exponential
// backoff sleep, resetting whenever new work arrives.
type ProgressiveIdleStrategy struct {
	spinPhase  int64
	yieldPhase int64
	maxSleep   time.Duration
	spins      int64
}

func NewProgressiveIdleStrategy(spinPhase, yieldPhase int64, maxSleep time.Duration) *ProgressiveIdleStrategy {
	return &ProgressiveIdleStrategy{spinPhase: spinPhase, yieldPhase: yieldPhase, maxSleep: maxSleep}
}

func (s *ProgressiveIdleStrategy) Idle() bool {
	n := atomic.AddInt64(&s.spins, 1)
	switch {
	case n <= s.spinPhase:
		// hot spin
	case n <= s.spinPhase+s.yieldPhase:
		runtime.Gosched()
	default:
		backoff := n - s.spinPhase - s.yieldPhase
		d := time.Duration(backoff) * time.Microsecond
		if d > s.maxSleep {
			d = s.maxSleep
		}
		time.Sleep(d)
	}
	return true
}

func (s *ProgressiveIdleStrategy) Reset()         { atomic.StoreInt64(&s.spins, 0) }
func (s *ProgressiveIdleStrategy) String() string { return "progressive" }
