package pipeline

import (
	"context"

	"santavideo/utils"
)

// CompositionStage muxes the overlayed video with the assembled audio and
// burns in the subtitle cues
type CompositionStage struct {
	engine Engine
}

// NewCompositionStage creates the composition stage
func NewCompositionStage(engine Engine) *CompositionStage {
	return &CompositionStage{engine: engine}
}

// BuildArgs assembles the final mux invocation. The video stream comes from
// the overlay intermediate, the audio stream from the assembled track, and
// -shortest trims the result to whichever ends first. The subtitle path goes
// through the filter mini-language and must be escaped.
func (st *CompositionStage) BuildArgs(videoPath, audioPath, subtitlePath, outputPath string) []string {
	return []string{
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "libx264",
		"-c:a", "aac",
		"-vf", "subtitles=" + utils.EscapeFilterPath(subtitlePath),
		"-shortest",
		"-y", outputPath,
	}
}

// Run produces the final deliverable at outputPath
func (st *CompositionStage) Run(ctx context.Context, videoPath, audioPath, subtitlePath, outputPath string) error {
	args := st.BuildArgs(videoPath, audioPath, subtitlePath, outputPath)
	if err := st.engine.Render(ctx, args); err != nil {
		return NewCompositionError("compose", err)
	}
	return nil
}
