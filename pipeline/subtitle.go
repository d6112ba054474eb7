package pipeline

import (
	"fmt"
	"os"
	"strings"

	"santavideo/utils"
)

// CueDurationSeconds is the flat on-screen time per script segment. This is
// not derived from narration timing; captions can drift from the spoken
// audio on long segments.
const CueDurationSeconds = 4

// Cue is one timed caption entry
type Cue struct {
	Seq   int
	Start float64
	End   float64
	Text  string
}

// SubtitleStage turns the job's script segments into contiguous timed cues
type SubtitleStage struct{}

// NewSubtitleStage creates the subtitle stage
func NewSubtitleStage() *SubtitleStage {
	return &SubtitleStage{}
}

// PersonalizeText replaces every occurrence of the name placeholder.
// Substitution is idempotent: once no placeholder remains re-running is a
// no-op.
func PersonalizeText(text, subjectName string) string {
	return strings.ReplaceAll(text, NamePlaceholder, subjectName)
}

// BuildCues produces one cue per segment (narration plus optional closing),
// back to back from offset 0 with a fixed duration each
func (st *SubtitleStage) BuildCues(job *CompositionJob) []Cue {
	segments := job.AllSegments()
	cues := make([]Cue, len(segments))

	current := 0.0
	for i, seg := range segments {
		cues[i] = Cue{
			Seq:   i + 1,
			Start: current,
			End:   current + CueDurationSeconds,
			Text:  PersonalizeText(seg.Text, job.SubjectName),
		}
		current = cues[i].End
	}
	return cues
}

// RenderSRT formats cues as SubRip text
func RenderSRT(cues []Cue) string {
	var b strings.Builder
	for _, cue := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			cue.Seq,
			utils.FormatSRTTimestamp(cue.Start),
			utils.FormatSRTTimestamp(cue.End),
			cue.Text)
	}
	return b.String()
}

// Run writes the job's cue file to outputPath
func (st *SubtitleStage) Run(job *CompositionJob, outputPath string) error {
	cues := st.BuildCues(job)
	if err := os.WriteFile(outputPath, []byte(RenderSRT(cues)), 0644); err != nil {
		return NewIOError("write subtitles", outputPath, err)
	}
	return nil
}
