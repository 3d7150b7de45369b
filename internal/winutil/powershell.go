package winutil

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
)

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("powershell runner closed")

// Runner runs a PowerShell script and returns its trimmed standard output.
type Runner interface {
	Run(ctx context.Context, script string) (string, error)
}

// DefaultShell is powershell.exe on Windows and pwsh elsewhere.
func DefaultShell() string {
	if runtime.GOOS == "windows" {
		return "powershell.exe"
	}
	return "pwsh"
}

type execFunc func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

type request struct {
	ctx    context.Context
	script string
	reply  chan result
}

type result struct {
	out string
	err error
}

// PowerShell feeds scripts to a single worker. At most one shell process
// runs at a time.
type PowerShell struct {
	binary string
	exec   execFunc

	reqs      chan request
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewPowerShell starts a runner for the given shell binary.
func NewPowerShell(binary string) *PowerShell {
	return newPowerShell(binary, ExecWithContext)
}

func newPowerShell(binary string, fn execFunc) *PowerShell {
	ps := &PowerShell{
		binary: binary,
		exec:   fn,
		reqs:   make(chan request, 8),
		done:   make(chan struct{}),
	}
	ps.wg.Add(1)
	go ps.worker()
	return ps
}

func (ps *PowerShell) worker() {
	defer ps.wg.Done()
	for {
		select {
		case <-ps.done:
			return
		case req := <-ps.reqs:
			if err := req.ctx.Err(); err != nil {
				req.reply <- result{err: err}
				continue
			}
			stdout, stderr, err := ps.exec(req.ctx, ps.binary, "-NoProfile", "-NonInteractive", "-Command", req.script)
			if err != nil {
				req.reply <- result{err: fmt.Errorf("powershell command failed: %w (stderr: %s)", err, strings.TrimSpace(string(stderr)))}
				continue
			}
			req.reply <- result{out: strings.TrimSpace(string(stdout))}
		}
	}
}

// Run queues script and waits for its output.
func (ps *PowerShell) Run(ctx context.Context, script string) (string, error) {
	req := request{ctx: ctx, script: script, reply: make(chan result, 1)}

	select {
	case <-ps.done:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	case ps.reqs <- req:
	}

	select {
	case res := <-req.reply:
		return res.out, res.err
	case <-ps.done:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops the worker. Queued scripts that have not started are dropped.
func (ps *PowerShell) Close() {
	ps.closeOnce.Do(func() {
		close(ps.done)
	})
	ps.wg.Wait()
}

// Quote returns s as a single-quoted PowerShell string literal.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
