package pipeline

import (
	"strings"
	"testing"
)

func TestComposeBuildArgs(t *testing.T) {
	stage := NewCompositionStage(nil)

	args := stage.BuildArgs(
		"/tmp/J1-concat.mp4",
		"/tmp/J1-audio-concat.mp3",
		"/tmp/J1-subtitles.srt",
		"/out/alex.mp4",
	)
	joined := strings.Join(args, " ")

	// Picture from the overlay intermediate, sound from the assembled track
	if !strings.Contains(joined, "-i /tmp/J1-concat.mp4 -i /tmp/J1-audio-concat.mp3") {
		t.Errorf("input order wrong, args: %s", joined)
	}
	if !strings.Contains(joined, "-map 0:v:0") || !strings.Contains(joined, "-map 1:a:0") {
		t.Errorf("stream maps missing, args: %s", joined)
	}

	// -shortest bounds the result to whichever input stream ends first
	if !strings.Contains(joined, "-shortest") {
		t.Errorf("expected -shortest join, args: %s", joined)
	}

	if !strings.Contains(joined, "subtitles='/tmp/J1-subtitles.srt'") {
		t.Errorf("subtitle burn filter missing or unquoted, args: %s", joined)
	}

	if args[len(args)-1] != "/out/alex.mp4" {
		t.Errorf("output must be the final argument, args: %s", joined)
	}
}

func TestComposeBuildArgsEscapesSubtitlePath(t *testing.T) {
	stage := NewCompositionStage(nil)

	args := stage.BuildArgs(
		"/tmp/v.mp4", "/tmp/a.mp3",
		`C:\temp\o'brien.srt`,
		"/out/final.mp4",
	)
	joined := strings.Join(args, " ")

	// Drive colon and embedded quote must survive the filter mini-language
	if !strings.Contains(joined, `subtitles='C\:/temp/o'\''brien.srt'`) {
		t.Errorf("subtitle path not escaped for the filter, args: %s", joined)
	}
}
