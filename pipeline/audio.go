package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// AudioAssemblyStage concatenates the optional intro narration with the
// main narration into one continuous track
type AudioAssemblyStage struct {
	engine Engine
}

// NewAudioAssemblyStage creates the audio assembly stage
func NewAudioAssemblyStage(engine Engine) *AudioAssemblyStage {
	return &AudioAssemblyStage{engine: engine}
}

// BuildManifest renders the concat-demuxer list for the job's audio inputs.
// An absent intro is not an error; the track degrades to main-only.
func (st *AudioAssemblyStage) BuildManifest(job *CompositionJob) (string, error) {
	if job.MainAudioPath == "" {
		return "", NewNotFoundError("main narration audio", job.SubjectName)
	}
	if _, err := os.Stat(job.MainAudioPath); err != nil {
		return "", NewNotFoundError("main narration audio", job.MainAudioPath)
	}

	var b strings.Builder
	if job.IntroAudioPath != "" {
		if _, err := os.Stat(job.IntroAudioPath); err == nil {
			fmt.Fprintf(&b, "file '%s'\n", concatPath(job.IntroAudioPath))
		}
	}
	fmt.Fprintf(&b, "file '%s'\n", concatPath(job.MainAudioPath))

	return b.String(), nil
}

// concatPath normalizes a path for a concat-demuxer list entry
func concatPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.ReplaceAll(p, "'", `'\''`)
}

// Run writes the concat manifest to manifestPath and produces the assembled
// track at outputPath. When intro and main carry the same codec the sources
// are stream-copied; a codec mismatch falls back to re-encoding.
func (st *AudioAssemblyStage) Run(ctx context.Context, job *CompositionJob, manifestPath, outputPath string) error {
	manifest, err := st.BuildManifest(job)
	if err != nil {
		return err
	}

	if err := os.WriteFile(manifestPath, []byte(manifest), 0644); err != nil {
		return NewIOError("write audio manifest", manifestPath, err)
	}

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", manifestPath,
	}
	if st.sourcesMatch(job) {
		args = append(args, "-c", "copy")
	} else {
		args = append(args, "-c:a", "libmp3lame", "-q:a", "2")
	}
	args = append(args, "-y", outputPath)

	if err := st.engine.Render(ctx, args); err != nil {
		return NewCompositionError("audio", err)
	}
	return nil
}

// sourcesMatch reports whether the intro and main tracks share a codec, so
// concatenation can stream-copy. A single-source track always copies.
func (st *AudioAssemblyStage) sourcesMatch(job *CompositionJob) bool {
	if job.IntroAudioPath == "" {
		return true
	}
	if _, err := os.Stat(job.IntroAudioPath); err != nil {
		return true
	}

	introCodec, err := st.engine.CodecName(job.IntroAudioPath)
	if err != nil {
		return false
	}
	mainCodec, err := st.engine.CodecName(job.MainAudioPath)
	if err != nil {
		return false
	}
	return introCodec == mainCodec
}
