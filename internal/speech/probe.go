package speech

import (
	"context"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"
)

const probeTimeout = 10 * time.Second

// Probe reports whether the external audio tool can be started. The answer
// is computed on first use and then cached; only Recheck recomputes it.
type Probe struct {
	bin string
	run func(ctx context.Context, bin string) error

	mu      sync.Mutex
	done    atomic.Bool
	capable atomic.Bool
}

// NewProbe creates a probe for bin (default "ffmpeg").
func NewProbe(bin string) *Probe {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &Probe{bin: bin, run: runVersion}
}

// NewStaticProbe returns a probe whose answer is fixed.
func NewStaticProbe(capable bool) *Probe {
	p := &Probe{bin: "static"}
	p.capable.Store(capable)
	p.done.Store(true)
	return p
}

func (p *Probe) Bin() string { return p.bin }

// Capable returns the cached capability, computing it on first call.
func (p *Probe) Capable(ctx context.Context) bool {
	if p.done.Load() {
		return p.capable.Load()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.done.Load() {
		p.compute(ctx)
	}
	return p.capable.Load()
}

// Recheck recomputes the capability and returns the new value.
func (p *Probe) Recheck(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.compute(ctx)
	return p.capable.Load()
}

func (p *Probe) compute(ctx context.Context) {
	if p.run == nil {
		return
	}
	err := p.run(ctx, p.bin)
	if err != nil && ctx.Err() != nil {
		// the caller gave up; that says nothing about the binary
		return
	}
	p.capable.Store(err == nil)
	p.done.Store(true)
}

// runVersion starts "<bin> -version". Only a failure to start the process
// counts as absence; a non-zero exit means the binary is there.
func runVersion(ctx context.Context, bin string) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, "-version")
	if err := cmd.Start(); err != nil {
		return err
	}
	_ = cmd.Wait()
	return nil
}
