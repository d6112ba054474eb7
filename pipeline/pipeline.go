package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Engine is the contract with the external rendering process: given input
// files and a filter specification it produces one output file, reporting
// failure through a non-nil error carrying the command and stderr tail.
type Engine interface {
	Render(ctx context.Context, args []string) error
	Duration(path string) (float64, error)
	CodecName(path string) (string, error)
}

// ProgressFunc receives job state transitions as they happen
type ProgressFunc func(jobID string, state JobState)

// Pipeline runs the composition stages for one job: overlay, audio
// assembly, and subtitling dispatch concurrently; composition waits for all
// three; cleanup runs unconditionally.
type Pipeline struct {
	engine       Engine
	log          *zap.Logger
	stageTimeout time.Duration
	progress     ProgressFunc

	overlay  *PhotoOverlayStage
	audio    *AudioAssemblyStage
	subtitle *SubtitleStage
	compose  *CompositionStage
}

// New creates a pipeline. A zero stageTimeout disables per-stage deadlines.
func New(engine Engine, log *zap.Logger, stageTimeout time.Duration, progress ProgressFunc) *Pipeline {
	return &Pipeline{
		engine:       engine,
		log:          log,
		stageTimeout: stageTimeout,
		progress:     progress,
		overlay:      NewPhotoOverlayStage(engine),
		audio:        NewAudioAssemblyStage(engine),
		subtitle:     NewSubtitleStage(),
		compose:      NewCompositionStage(engine),
	}
}

func (p *Pipeline) notify(job *CompositionJob, state JobState) {
	p.log.Info("job state",
		zap.String("job_id", job.JobID),
		zap.String("state", string(state)))
	if p.progress != nil {
		p.progress(job.JobID, state)
	}
}

func (p *Pipeline) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.stageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.stageTimeout)
}

// Run takes the job from created to completed or failed. Whatever the
// outcome, every intermediate under the job's namespace is removed before
// Run returns; the deliverable only appears at OutputPath on success.
func (p *Pipeline) Run(ctx context.Context, job *CompositionJob) error {
	artifacts := NewArtifactManager(job.JobID, p.log)
	defer artifacts.Cleanup()

	overlayPath := filepath.Join(job.WorkDir, job.JobID+"-concat.mp4")
	manifestPath := filepath.Join(job.WorkDir, job.JobID+"-audio-list.txt")
	audioPath := filepath.Join(job.WorkDir, job.JobID+"-audio-concat.mp3")
	subtitlePath := filepath.Join(job.WorkDir, job.JobID+"-subtitles.srt")
	stagedOutput := filepath.Join(job.WorkDir, job.JobID+"-final.mp4")

	for _, path := range []string{overlayPath, manifestPath, audioPath, subtitlePath, stagedOutput} {
		artifacts.Register(path)
	}

	// The three preparatory stages share no mutable state: each reads its
	// own inputs and writes its own intermediate
	var wg sync.WaitGroup
	errs := make([]error, 3)

	wg.Add(3)
	go func() {
		defer wg.Done()
		p.notify(job, JobStateOverlaying)
		stageCtx, cancel := p.stageContext(ctx)
		defer cancel()
		errs[0] = p.overlay.Run(stageCtx, job, overlayPath)
	}()
	go func() {
		defer wg.Done()
		p.notify(job, JobStateAudioAssembling)
		stageCtx, cancel := p.stageContext(ctx)
		defer cancel()
		errs[1] = p.audio.Run(stageCtx, job, manifestPath, audioPath)
	}()
	go func() {
		defer wg.Done()
		p.notify(job, JobStateSubtitling)
		errs[2] = p.subtitle.Run(job, subtitlePath)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			p.failJob(job, err)
			return err
		}
	}

	p.notify(job, JobStateComposing)
	stageCtx, cancel := p.stageContext(ctx)
	defer cancel()
	if err := p.compose.Run(stageCtx, overlayPath, audioPath, subtitlePath, stagedOutput); err != nil {
		p.failJob(job, err)
		return err
	}

	// The deliverable location only ever sees a complete file
	if err := moveFile(stagedOutput, job.OutputPath); err != nil {
		ioErr := NewIOError("publish output", job.OutputPath, err)
		p.failJob(job, ioErr)
		return ioErr
	}

	if duration, err := p.engine.Duration(job.OutputPath); err == nil {
		p.log.Info("composition finished",
			zap.String("job_id", job.JobID),
			zap.String("output", job.OutputPath),
			zap.Float64("duration_seconds", duration))
	}

	p.notify(job, JobStateCompleted)
	return nil
}

// moveFile renames src to dst, falling back to copy-and-remove when the two
// paths live on different filesystems and rename is not possible
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// copyFile copies src to dst, removing a partially written dst on failure
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

func (p *Pipeline) failJob(job *CompositionJob, err error) {
	p.log.Error("composition failed",
		zap.String("job_id", job.JobID),
		zap.Error(err))
	p.notify(job, JobStateFailed)
}
