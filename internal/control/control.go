// Package control implements spec.md §4.K: SIGQUIT-triggered checkpointed
// cancellation bracketing each strategy "safe point," and CPU affinity
// around a runner call (spec.md §4.H step 5.b).
//
// Grounded on loopy.go's top-level signal-aware control flow, generalized
// from loopy's "catch a fatal signal and exit" shape to "block a signal
// around a safe point, observe a cancel flag between points." Affinity is
// built on golang.org/x/sys/unix.SchedSetaffinity — the pack's own go.mods
// reach for x/sys (joeycumines-go-utilpkg/go.mod) for anything below the
// portable os/signal API, which cannot mask a single goroutine's signal
// delivery around a native call the way this safe-point pattern requires.
package control

import (
	"os"
	"os/signal"
	"runtime"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"
)

// Canceler watches for SIGQUIT and exposes a race-free "cancel requested"
// check bracketed around safe points.
type Canceler struct {
	flag    atomic.Bool
	signals chan os.Signal
	done    chan struct{}
}

// NewCanceler installs a SIGQUIT handler that sets the cancel flag.
func NewCanceler() *Canceler {
	c := &Canceler{
		signals: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
	signal.Notify(c.signals, syscall.SIGQUIT)
	go func() {
		select {
		case <-c.signals:
			c.flag.Store(true)
		case <-c.done:
		}
	}()
	return c
}

// Stop deregisters the SIGQUIT handler.
func (c *Canceler) Stop() {
	signal.Stop(c.signals)
	close(c.done)
}

// Cancelled reports whether SIGQUIT has been observed.
func (c *Canceler) Cancelled() bool { return c.flag.Load() }

// SafePoint blocks SIGQUIT at the OS level, runs fn, then unblocks it and
// returns whether a cancel is now pending — spec.md §5's "SIGQUIT is
// blocked at the OS level during a safe point's body so the check-and-break
// is race-free."
func (c *Canceler) SafePoint(fn func()) (cancelled bool) {
	set := unix.Sigset_t{}
	unix.SigaddSet(&set, int(syscall.SIGQUIT))
	if err := unix.PthreadSigmask(unix.SIG_BLOCK, &set, nil); err != nil {
		fn()
		return c.Cancelled()
	}
	defer unix.PthreadSigmask(unix.SIG_UNBLOCK, &set, nil)
	fn()
	return c.Cancelled()
}

// WithAffinity runs fn with the calling OS thread pinned to cores, saving
// and restoring the previous affinity mask around the call (spec.md §4.H
// step 5.b). A nil or empty cores list runs fn unaffined.
func WithAffinity(cores []int, fn func()) error {
	if len(cores) == 0 {
		fn()
		return nil
	}

	// Affinity is a per-OS-thread property; pin this goroutine to its
	// current thread for the duration so the mask we set is the mask fn
	// actually runs under.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var previous unix.CPUSet
	if err := unix.SchedGetaffinity(0, &previous); err != nil {
		return err
	}

	var desired unix.CPUSet
	desired.Zero()
	for _, c := range cores {
		desired.Set(c)
	}
	if err := unix.SchedSetaffinity(0, &desired); err != nil {
		return err
	}
	defer unix.SchedSetaffinity(0, &previous)

	fn()
	return nil
}
