package speech

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbe_CachesFirstResult(t *testing.T) {
	var runs atomic.Int32
	p := NewProbe("ffmpeg")
	p.run = func(ctx context.Context, bin string) error {
		runs.Add(1)
		assert.Equal(t, "ffmpeg", bin)
		return nil
	}

	assert.True(t, p.Capable(context.Background()))
	assert.True(t, p.Capable(context.Background()))
	assert.Equal(t, int32(1), runs.Load())
}

func TestProbe_MissingBinaryStaysMissing(t *testing.T) {
	var runs atomic.Int32
	p := NewProbe("ffmpeg")
	p.run = func(ctx context.Context, bin string) error {
		runs.Add(1)
		return errors.New("executable file not found in $PATH")
	}

	assert.False(t, p.Capable(context.Background()))
	assert.False(t, p.Capable(context.Background()))
	assert.Equal(t, int32(1), runs.Load())
}

func TestProbe_Recheck(t *testing.T) {
	present := false
	p := NewProbe("ffmpeg")
	p.run = func(ctx context.Context, bin string) error {
		if present {
			return nil
		}
		return errors.New("not found")
	}

	assert.False(t, p.Capable(context.Background()))
	present = true
	assert.False(t, p.Capable(context.Background()), "cached value must not change without Recheck")
	assert.True(t, p.Recheck(context.Background()))
	assert.True(t, p.Capable(context.Background()))
}

func TestProbe_ConcurrentReaders(t *testing.T) {
	var runs atomic.Int32
	p := NewProbe("ffmpeg")
	p.run = func(ctx context.Context, bin string) error {
		runs.Add(1)
		return nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, p.Capable(context.Background()))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), runs.Load())
}

func TestProbe_CancelledCallerDoesNotPoisonCache(t *testing.T) {
	var runs atomic.Int32
	p := NewProbe("ffmpeg")
	p.run = func(ctx context.Context, bin string) error {
		runs.Add(1)
		return ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, p.Capable(ctx))
	assert.True(t, p.Capable(context.Background()), "binary is present once a live caller asks")
	assert.Equal(t, int32(2), runs.Load())
}

func TestProbe_RealBinaryAfterCancelledCall(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	p := NewProbe(sh)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Capable(ctx)
	assert.True(t, p.Capable(context.Background()))
}

func TestProbe_RealMissingBinary(t *testing.T) {
	p := NewProbe("voicebridge-no-such-binary-7f3a")
	assert.False(t, p.Capable(context.Background()))
}

func TestNewStaticProbe(t *testing.T) {
	assert.True(t, NewStaticProbe(true).Capable(context.Background()))
	assert.False(t, NewStaticProbe(false).Capable(context.Background()))
	assert.False(t, NewStaticProbe(false).Recheck(context.Background()))
}
