package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpegCodec pipes audio through an ffmpeg subprocess over stdin/stdout, so
// nothing touches the filesystem. Each call is bound to ctx.
type FFmpegCodec struct {
	Bin     string
	Bitrate string // default: "64k"
}

func NewFFmpegCodec(bin string) *FFmpegCodec {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpegCodec{Bin: bin, Bitrate: defaultBitrate}
}

const defaultBitrate = "64k"

func (c *FFmpegCodec) bitrate() string {
	if c.Bitrate == "" {
		return defaultBitrate
	}
	return c.Bitrate
}

// Decode converts any ffmpeg-readable input to s16le mono PCM.
func (c *FFmpegCodec) Decode(ctx context.Context, audio []byte) ([]byte, error) {
	return c.run(ctx, audio,
		"-i", "pipe:0",
		"-f", "s16le", "-acodec", "pcm_s16le",
		"-ac", "1", "-ar", strconv.Itoa(SampleRate),
		"pipe:1",
	)
}

// Encode converts s16le mono PCM to MP3.
func (c *FFmpegCodec) Encode(ctx context.Context, pcm []byte) (*Fragment, error) {
	out, err := c.run(ctx, pcm,
		"-f", "s16le", "-ac", "1", "-ar", strconv.Itoa(SampleRate),
		"-i", "pipe:0",
		"-f", "mp3", "-b:a", c.bitrate(),
		"pipe:1",
	)
	if err != nil {
		return nil, err
	}
	return &Fragment{
		Audio:       out,
		ContentType: "audio/mpeg",
		Duration:    pcmDuration(len(pcm)),
	}, nil
}

func (c *FFmpegCodec) run(ctx context.Context, input []byte, args ...string) ([]byte, error) {
	full := append([]string{"-hide_banner", "-loglevel", "error"}, args...)

	bin := c.Bin
	if bin == "" {
		bin = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, bin, full...)
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
