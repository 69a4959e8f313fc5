// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// keyReader puts stdin into raw, non-blocking mode and delivers one byte
// at a time on Keys. Grounded directly on the teacher's TerminalHost
// (terminal_host.go): same term.MakeRaw/syscall.SetNonblock/polling-read
// idiom, adapted from routing bytes into an emulated machine's MMIO
// device to routing them into this demo's transport-control channel.
type keyReader struct {
	Keys chan byte

	fd           int
	oldTermState *term.State
	nonblockSet  bool

	stopCh  chan struct{}
	done    chan struct{}
	stopped sync.Once
}

func newKeyReader() *keyReader {
	return &keyReader{
		Keys:   make(chan byte, 16),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start switches stdin to raw mode and begins polling it on a goroutine.
// Call Stop to restore the terminal; failing to do so leaves the user's
// shell in raw mode.
func (k *keyReader) Start() error {
	k.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(k.fd)
	if err != nil {
		close(k.done)
		return err
	}
	k.oldTermState = oldState

	if err := syscall.SetNonblock(k.fd, true); err != nil {
		_ = term.Restore(k.fd, k.oldTermState)
		k.oldTermState = nil
		close(k.done)
		return err
	}
	k.nonblockSet = true

	go func() {
		defer close(k.done)
		buf := make([]byte, 1)
		for {
			select {
			case <-k.stopCh:
				return
			default:
			}
			n, err := syscall.Read(k.fd, buf)
			if err != nil {
				if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
					time.Sleep(5 * time.Millisecond)
					continue
				}
				return
			}
			if n == 0 {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			select {
			case k.Keys <- buf[0]:
			default:
			}
		}
	}()
	return nil
}

// Stop terminates the polling goroutine and restores stdin.
func (k *keyReader) Stop() {
	k.stopped.Do(func() {
		close(k.stopCh)
	})
	<-k.done
	if k.nonblockSet {
		_ = syscall.SetNonblock(k.fd, false)
		k.nonblockSet = false
	}
	if k.oldTermState != nil {
		_ = term.Restore(k.fd, k.oldTermState)
		k.oldTermState = nil
	}
}
