package pipeline

import (
	"context"
	"fmt"
	"strings"
)

const (
	// OverlayWidth is the fixed width each photo is scaled to, preserving
	// aspect ratio
	OverlayWidth = 300

	// OverlayWindowSeconds is how long each photo stays on screen
	OverlayWindowSeconds = 5
)

// overlayPositions cycles through the four screen corners by index mod 4:
// top-left, top-right, bottom-left, bottom-right. W/H are the base video's
// dimensions, w/h the scaled overlay's.
var overlayPositions = []string{
	"10:10",
	"W-w-10:10",
	"10:H-h-10",
	"W-w-10:H-h-10",
}

// OverlayWindow is one photo's placement in the overlay plan
type OverlayWindow struct {
	Index    int
	Position string
	Start    float64
	End      float64
}

// BuildOverlayPlan computes the placement windows for n photos. Windows are
// back-to-back and non-overlapping: photo i is visible during
// [i*5s, (i+1)*5s) at corner i mod 4.
func BuildOverlayPlan(photoCount int) ([]OverlayWindow, error) {
	if photoCount == 0 {
		return nil, NewCompositionError("overlay", fmt.Errorf("no processed photos for overlay"))
	}

	windows := make([]OverlayWindow, photoCount)
	for i := 0; i < photoCount; i++ {
		windows[i] = OverlayWindow{
			Index:    i,
			Position: overlayPositions[i%4],
			Start:    float64(i * OverlayWindowSeconds),
			End:      float64((i + 1) * OverlayWindowSeconds),
		}
	}
	return windows, nil
}

// PhotoOverlayStage composites the job's photos onto the base visual in a
// single rendering pass
type PhotoOverlayStage struct {
	engine Engine
}

// NewPhotoOverlayStage creates the overlay stage
func NewPhotoOverlayStage(engine Engine) *PhotoOverlayStage {
	return &PhotoOverlayStage{engine: engine}
}

// BuildArgs assembles the full ffmpeg invocation for the overlay render.
// All overlays go into one filter graph so the engine is invoked exactly
// once for this stage.
func (st *PhotoOverlayStage) BuildArgs(job *CompositionJob, outputPath string) ([]string, error) {
	windows, err := BuildOverlayPlan(len(job.BasePhotoAssets))
	if err != nil {
		return nil, err
	}

	args := []string{}
	if job.BaseVideoPath != "" {
		args = append(args, "-i", job.BaseVideoPath)
	} else {
		// Degraded mode: loop the first photo as the base visual for the
		// full overlay timeline
		total := float64(len(windows) * OverlayWindowSeconds)
		args = append(args,
			"-loop", "1",
			"-t", fmt.Sprintf("%.2f", total),
			"-i", job.BasePhotoAssets[0],
		)
	}

	for _, photo := range job.BasePhotoAssets {
		args = append(args, "-i", photo)
	}

	filterParts := []string{}
	lastLabel := "0:v"

	for _, w := range windows {
		inputIndex := w.Index + 1
		scaledLabel := fmt.Sprintf("scaled%d", w.Index)
		outputLabel := fmt.Sprintf("v%d", w.Index)

		filterParts = append(filterParts,
			fmt.Sprintf("[%d:v]scale=%d:-1[%s]", inputIndex, OverlayWidth, scaledLabel))
		filterParts = append(filterParts,
			fmt.Sprintf("[%s][%s]overlay=%s:enable='between(t,%g,%g)'[%s]",
				lastLabel, scaledLabel, w.Position, w.Start, w.End, outputLabel))

		lastLabel = outputLabel
	}

	args = append(args,
		"-filter_complex", strings.Join(filterParts, ";"),
		"-map", "["+lastLabel+"]",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-y", outputPath,
	)

	return args, nil
}

// Run produces the intermediate overlayed video at outputPath
func (st *PhotoOverlayStage) Run(ctx context.Context, job *CompositionJob, outputPath string) error {
	args, err := st.BuildArgs(job, outputPath)
	if err != nil {
		return err
	}
	if err := st.engine.Render(ctx, args); err != nil {
		return NewCompositionError("overlay", err)
	}
	return nil
}
