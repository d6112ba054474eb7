package utils

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// stderrTailBytes bounds how much diagnostic output ends up in errors
const stderrTailBytes = 2048

// FFmpegEngine invokes ffmpeg/ffprobe as subprocesses. It satisfies the
// pipeline's Engine interface.
type FFmpegEngine struct {
	ffmpegBin  string
	ffprobeBin string
}

// NewFFmpegEngine creates an engine using the ffmpeg and ffprobe binaries
// found on PATH
func NewFFmpegEngine() *FFmpegEngine {
	return &FFmpegEngine{ffmpegBin: "ffmpeg", ffprobeBin: "ffprobe"}
}

// Render executes one ffmpeg invocation. A non-zero exit returns an error
// carrying the command and the tail of stderr. Context cancellation or
// deadline expiry kills the child process.
func (e *FFmpegEngine) Render(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, e.ffmpegBin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg killed: %w", ctx.Err())
		}
		return fmt.Errorf("ffmpeg %s: %w, stderr: %s",
			strings.Join(args, " "), err, tail(stderr.String()))
	}
	return nil
}

// Duration returns a media file's duration in seconds, via ffprobe
func (e *FFmpegEngine) Duration(path string) (float64, error) {
	cmd := exec.Command(e.ffprobeBin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe error: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return duration, nil
}

// CodecName returns the codec of a file's first audio stream, via ffprobe
func (e *FFmpegEngine) CodecName(path string) (string, error) {
	cmd := exec.Command(e.ffprobeBin,
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=codec_name",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("ffprobe error: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// EscapeFilterPath quotes a path for use inside an ffmpeg filter
// expression. Backslashes are normalized, colons and single quotes are
// escaped; an unescaped colon would be read as an option separator and an
// unescaped quote would end the filter argument early.
func EscapeFilterPath(path string) string {
	p := strings.ReplaceAll(path, "\\", "/")
	p = strings.ReplaceAll(p, ":", "\\:")
	p = strings.ReplaceAll(p, "'", `'\''`)
	return "'" + p + "'"
}

func tail(s string) string {
	if len(s) <= stderrTailBytes {
		return s
	}
	return s[len(s)-stderrTailBytes:]
}
