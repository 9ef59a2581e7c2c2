// crashguard.go: process-wide signal registry with signal-safe-as-Go-
// permits emergency flush dispatch.
//
// A true async-signal handler running on the faulting thread isn't
// reachable from Go user code: os/signal delivers a fatal-adjacent
// signal (SIGTERM, SIGINT, SIGQUIT) on an ordinary goroutine via a
// channel, and SIGSEGV/SIGABRT inside the Go runtime itself aren't
// interceptable at all. What this keeps is the shape of the original
// contract: a single atomic snapshot of registered reporters,
// mutex-protected mutation, lock-free iteration on the delivery path,
// and raw golang.org/x/sys/unix syscalls (not os.File, which can block
// on internal locking) for the actual write/fsync.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"
)

// EmergencyReporter is the signal-safe accessor set a Logger's crash
// path exposes to the registry: a file descriptor and whatever
// in-process bytes still need flushing.
type EmergencyReporter interface {
	EmergencyFD() int
	EmergencyBuffer() []byte
}

// crashRegistry holds every registered reporter behind a single atomic
// snapshot pointer; the handler goroutine reads it lock-free, mutations
// go through mu and build a new slice (copy-on-write).
type crashRegistry struct {
	mu        sync.Mutex
	reporters atomic.Pointer[[]EmergencyReporter]
	installed int32
	sigCh     chan os.Signal
	stopCh    chan struct{}
}

var globalCrashRegistry = &crashRegistry{}

// RegisterCrashGuard adds r to the process-wide registry, installing the
// signal handlers on the first registration.
func RegisterCrashGuard(r EmergencyReporter) {
	globalCrashRegistry.register(r)
}

// UnregisterCrashGuard removes r, restoring the prior signal disposition
// once the last reporter is gone.
func UnregisterCrashGuard(r EmergencyReporter) {
	globalCrashRegistry.unregister(r)
}

func (c *crashRegistry) register(r EmergencyReporter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var next []EmergencyReporter
	if cur := c.reporters.Load(); cur != nil {
		next = append(next, (*cur)...)
	}
	next = append(next, r)
	c.reporters.Store(&next)
	if atomic.CompareAndSwapInt32(&c.installed, 0, 1) {
		c.install()
	}
}

func (c *crashRegistry) unregister(r EmergencyReporter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur := c.reporters.Load()
	if cur == nil {
		return
	}
	next := make([]EmergencyReporter, 0, len(*cur))
	for _, x := range *cur {
		if x != r {
			next = append(next, x)
		}
	}
	c.reporters.Store(&next)
	if len(next) == 0 && atomic.CompareAndSwapInt32(&c.installed, 1, 0) {
		c.uninstall()
	}
}

func (c *crashRegistry) install() {
	c.sigCh = make(chan os.Signal, 1)
	c.stopCh = make(chan struct{})
	signal.Notify(c.sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGABRT)
	go c.handle()
}

func (c *crashRegistry) uninstall() {
	signal.Stop(c.sigCh)
	close(c.stopCh)
}

// handle runs on its own goroutine for the registry's lifetime, woken by
// os/signal's delivery channel rather than a true interrupt context —
// the closest Go gets to the source's signal handler.
func (c *crashRegistry) handle() {
	for {
		select {
		case sig, ok := <-c.sigCh:
			if !ok {
				return
			}
			c.flushAll()
			signal.Stop(c.sigCh)
			exitCode := 1
			if s, ok := sig.(syscall.Signal); ok {
				exitCode = 128 + int(s)
			}
			os.Exit(exitCode)
		case <-c.stopCh:
			return
		}
	}
}

// flushAll writes every reporter's non-empty emergency buffer to its
// emergency fd and fsyncs it, using raw syscalls rather than os.File
// since only async-signal-safe primitives are safe to call here.
func (c *crashRegistry) flushAll() {
	snap := c.reporters.Load()
	if snap == nil {
		return
	}
	for _, r := range *snap {
		buf := r.EmergencyBuffer()
		fd := r.EmergencyFD()
		if fd < 0 {
			continue
		}
		if len(buf) > 0 {
			_, _ = unix.Write(fd, buf)
		}
		_ = unix.Fsync(fd)
	}
}

// registeredCount reports how many reporters are currently installed;
// used by tests to assert registration/unregistration symmetry.
func (c *crashRegistry) registeredCount() int {
	if snap := c.reporters.Load(); snap != nil {
		return len(*snap)
	}
	return 0
}
