package pipeline

import "regexp"

// JobState tracks where a composition job is in its lifecycle
type JobState string

const (
	JobStateCreated         JobState = "created"
	JobStateOverlaying      JobState = "overlaying"
	JobStateAudioAssembling JobState = "audio_assembling"
	JobStateSubtitling      JobState = "subtitling"
	JobStateComposing       JobState = "composing"
	JobStateCompleted       JobState = "completed"
	JobStateFailed          JobState = "failed"
)

// NamePlaceholder is the token in script text replaced by the subject's name
const NamePlaceholder = "{name}"

// Segment is one narration script segment selected for a job
type Segment struct {
	ID           string
	Text         string
	DurationHint int
}

// CompositionJob is the unit of work for one video. Every intermediate
// artifact is namespaced under WorkDir with the job id so concurrent jobs
// never collide.
type CompositionJob struct {
	JobID       string
	SubjectName string

	// BasePhotoAssets are processed image files, ordered, length 1-4
	BasePhotoAssets []string

	// BaseVideoPath is the background video. When empty the first photo
	// asset substitutes as the sole visual input.
	BaseVideoPath string

	NarrationSegments []Segment
	ClosingSegment    *Segment

	// IntroAudioPath is optional; MainAudioPath is mandatory
	IntroAudioPath string
	MainAudioPath  string

	// WorkDir is the job's transient namespace for intermediates
	WorkDir    string
	OutputPath string
}

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SanitizeName reduces a display name to a filesystem-safe token for use as
// a path component
func SanitizeName(name string) string {
	return unsafePathChars.ReplaceAllString(name, "_")
}

// AllSegments returns the narration segments with the closing segment
// appended when present
func (j *CompositionJob) AllSegments() []Segment {
	segments := make([]Segment, 0, len(j.NarrationSegments)+1)
	segments = append(segments, j.NarrationSegments...)
	if j.ClosingSegment != nil {
		segments = append(segments, *j.ClosingSegment)
	}
	return segments
}
