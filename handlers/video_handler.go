package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"santavideo/config"
	"santavideo/models"
	"santavideo/pipeline"
	"santavideo/services"
	"santavideo/utils"
)

// VideoHandler handles video generation requests
type VideoHandler struct {
	cfg      *config.Config
	log      *zap.Logger
	catalog  *services.Catalog
	resolver *services.AssetResolver
	photos   *services.PhotoService
	voice    *services.VoiceService
	storage  *services.StorageService
	mailer   *services.EmailService
	pipe     *pipeline.Pipeline

	// In-memory job tracking
	jobs    map[string]*models.JobStatus
	jobsMux sync.RWMutex

	// jobSlots bounds how many jobs render at once
	jobSlots chan struct{}
}

// NewVideoHandler creates a new video handler with all collaborators wired
func NewVideoHandler(cfg *config.Config, log *zap.Logger) (*VideoHandler, error) {
	catalog := services.NewCatalog(cfg.DataDir)
	resolver := services.NewAssetResolver(catalog, filepath.Join(cfg.DataDir, "video"))

	storage, err := services.NewStorageService(context.Background(), services.StorageConfig{
		Region:          cfg.AWSRegion,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		Bucket:          cfg.S3Bucket,
	}, log)
	if err != nil {
		return nil, err
	}

	mailer := services.NewEmailService(services.EmailConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.FromEmail,
	}, log)

	h := &VideoHandler{
		cfg:      cfg,
		log:      log,
		catalog:  catalog,
		resolver: resolver,
		photos:   services.NewPhotoService(),
		voice:    services.NewVoiceService(cfg.TTSAPIKeys, cfg.VoiceID, log),
		storage:  storage,
		mailer:   mailer,
		jobs:     make(map[string]*models.JobStatus),
		jobSlots: make(chan struct{}, cfg.MaxConcurrentJobs),
	}

	h.pipe = pipeline.New(
		utils.NewFFmpegEngine(),
		log,
		time.Duration(cfg.StageTimeoutSeconds)*time.Second,
		h.onTransition,
	)

	return h, nil
}

// ListTemplates handles GET /api/templates
func (h *VideoHandler) ListTemplates(c *gin.Context) {
	templates, err := h.catalog.Templates()
	if err != nil {
		h.log.Error("failed to load templates", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load templates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// ListScripts handles GET /api/scripts
func (h *VideoHandler) ListScripts(c *gin.Context) {
	scripts, err := h.catalog.Scripts()
	if err != nil {
		h.log.Error("failed to load scripts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load scripts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scripts": scripts})
}

// Generate handles POST /api/generate: multipart intake with the child's
// name, contact email, template and script selections, and 1-4 photos
func (h *VideoHandler) Generate(c *gin.Context) {
	childName := c.PostForm("childName")
	parentEmail := c.PostForm("parentEmail")
	templateID := c.PostForm("templateId")
	goodbyeScript := c.PostForm("goodbyeScript")
	videoName := c.PostForm("videoName")

	scriptIDs, err := parseScriptSelection(c.PostForm("selectedScripts"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scripts format",
			"message": "Selected scripts must be a script ID or an array of script IDs"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form: " + err.Error()})
		return
	}
	photoFiles := form.File["photos"]

	resolved, err := h.resolver.Resolve(services.ResolveRequest{
		SubjectName:     childName,
		ContactEmail:    parentEmail,
		TemplateID:      templateID,
		ScriptIDs:       scriptIDs,
		GoodbyeScriptID: goodbyeScript,
		PhotoCount:      len(photoFiles),
		VideoName:       videoName,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	for _, f := range photoFiles {
		if !strings.HasPrefix(f.Header.Get("Content-Type"), "image/") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only image files are allowed for photos"})
			return
		}
	}

	jobID := uuid.New().String()

	rawPhotos, processedPhotos, err := h.intakePhotos(c, jobID, photoFiles)
	if err != nil {
		h.log.Error("photo intake failed", zap.String("job_id", jobID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store uploaded photos"})
		return
	}

	now := time.Now()
	h.jobsMux.Lock()
	h.jobs[jobID] = &models.JobStatus{
		JobID:       jobID,
		Status:      "processing",
		Progress:    0,
		CurrentStep: "Initializing",
		SubjectName: childName,
		Recipient:   parentEmail,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	h.jobsMux.Unlock()

	go h.process(jobID, childName, parentEmail, resolved, rawPhotos, processedPhotos)

	c.JSON(http.StatusOK, models.GenerateResponse{
		JobID:  jobID,
		Status: "processing",
	})
}

// GetStatus handles GET /api/status/:job_id
func (h *VideoHandler) GetStatus(c *gin.Context) {
	jobID := c.Param("job_id")

	h.jobsMux.RLock()
	job, exists := h.jobs[jobID]
	h.jobsMux.RUnlock()

	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	resp := models.StatusResponse{
		Status:      job.Status,
		Progress:    job.Progress,
		CurrentStep: job.CurrentStep,
	}

	if job.Status == "completed" && job.VideoURL != "" {
		resp.VideoURL = &job.VideoURL
	}

	if job.Error != nil {
		category := errorCategory(job.Error)
		resp.Error = &category
	}

	c.JSON(http.StatusOK, resp)
}

// Download handles GET /api/download/:job_id
func (h *VideoHandler) Download(c *gin.Context) {
	jobID := c.Param("job_id")

	h.jobsMux.RLock()
	job, exists := h.jobs[jobID]
	h.jobsMux.RUnlock()

	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	if job.Status != "completed" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job not completed yet"})
		return
	}

	if job.VideoPath == "" || !utils.FileExists(job.VideoPath) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video file not found"})
		return
	}

	c.Header("Content-Type", "video/mp4")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=santa-video-%s.mp4",
		pipeline.SanitizeName(job.SubjectName)))
	c.File(job.VideoPath)
}

// process runs one job end to end in the background: narration, the
// composition pipeline, cloud upload, notification, source cleanup
func (h *VideoHandler) process(jobID, childName, parentEmail string, resolved *services.ResolvedAssets, rawPhotos, processedPhotos []string) {
	h.jobSlots <- struct{}{}
	defer func() { <-h.jobSlots }()

	workDir, err := utils.CreateJobDir(h.cfg.TempDir, jobID)
	if err != nil {
		h.markJobFailed(jobID, pipeline.NewIOError("create work dir", h.cfg.TempDir, err))
		return
	}
	defer func() {
		if err := utils.RemoveJobDir(h.cfg.TempDir, jobID); err != nil {
			h.log.Warn("failed to remove work dir", zap.String("job_id", jobID), zap.Error(err))
		}
	}()

	safeName := pipeline.SanitizeName(childName)

	videosDir := filepath.Join(h.cfg.UploadDir, "videos")
	if err := utils.EnsureDirs(videosDir); err != nil {
		h.markJobFailed(jobID, pipeline.NewIOError("create output dir", videosDir, err))
		return
	}

	audioDir := filepath.Join(h.cfg.UploadDir, "audio")
	mainAudio := filepath.Join(audioDir, safeName+".mp3")
	introAudio := filepath.Join(audioDir, safeName+"-intro.mp3")
	if !utils.FileExists(introAudio) {
		introAudio = ""
	}

	if !utils.FileExists(mainAudio) && h.voice.Enabled() {
		h.updateStatus(jobID, "Synthesizing narration", 10)
		if err := h.voice.SynthesizeNarration(fullScriptText(resolved), childName, mainAudio); err != nil {
			h.markJobFailed(jobID, err)
			return
		}
	}

	segments := make([]pipeline.Segment, len(resolved.Scripts))
	for i, s := range resolved.Scripts {
		segments[i] = pipeline.Segment{ID: s.ID, Text: s.Text, DurationHint: s.Duration}
	}
	var closing *pipeline.Segment
	if resolved.Goodbye != nil {
		closing = &pipeline.Segment{
			ID:           resolved.Goodbye.ID,
			Text:         resolved.Goodbye.Text,
			DurationHint: resolved.Goodbye.Duration,
		}
	}

	job := &pipeline.CompositionJob{
		JobID:             jobID,
		SubjectName:       childName,
		BasePhotoAssets:   processedPhotos,
		BaseVideoPath:     resolved.BaseVideoPath,
		NarrationSegments: segments,
		ClosingSegment:    closing,
		IntroAudioPath:    introAudio,
		MainAudioPath:     mainAudio,
		WorkDir:           workDir,
		OutputPath:        filepath.Join(videosDir, safeName+".mp4"),
	}

	if err := h.pipe.Run(context.Background(), job); err != nil {
		h.markJobFailed(jobID, err)
		return
	}

	h.updateStatus(jobID, "Uploading video", 90)
	videoURL, cloudStored := h.publish(jobID, job, safeName)

	if h.mailer.Enabled() {
		if err := h.mailer.SendVideoReady(parentEmail, childName, videoURL, jobID); err != nil {
			h.log.Warn("notification delivery failed",
				zap.String("job_id", jobID), zap.Error(err))
		}
	}

	if cloudStored {
		h.removeSourceUploads(jobID, rawPhotos, processedPhotos)
	}

	h.jobsMux.Lock()
	if status, exists := h.jobs[jobID]; exists {
		status.Status = "completed"
		status.Progress = 100
		status.CurrentStep = "Complete"
		status.VideoPath = job.OutputPath
		status.VideoURL = videoURL
		status.CloudStored = cloudStored
		status.UpdatedAt = time.Now()
	}
	h.jobsMux.Unlock()

	h.log.Info("video generation completed",
		zap.String("job_id", jobID),
		zap.Bool("cloud_stored", cloudStored))
}

// publish uploads the finished video, falling back to a local URL when the
// upload fails or cloud storage is not configured
func (h *VideoHandler) publish(jobID string, job *pipeline.CompositionJob, safeName string) (string, bool) {
	if h.storage.Enabled() {
		url, err := h.storage.UploadVideo(context.Background(), job.OutputPath, jobID, job.SubjectName)
		if err == nil {
			return url, true
		}
		h.log.Warn("cloud upload failed, using local URL",
			zap.String("job_id", jobID), zap.Error(err))
	}
	return h.cfg.BaseURL + "/uploads/videos/" + safeName + ".mp4", false
}

// removeSourceUploads deletes the original and processed photo files. Runs
// only after a successful cloud upload; the pipeline's artifact cleanup
// never touches these.
func (h *VideoHandler) removeSourceUploads(jobID string, rawPhotos, processedPhotos []string) {
	for _, path := range append(append([]string{}, rawPhotos...), processedPhotos...) {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			h.log.Warn("failed to remove source upload",
				zap.String("job_id", jobID),
				zap.String("path", path),
				zap.Error(err))
		}
	}
}

// intakePhotos saves the uploaded photos and runs each through the
// preprocessing service, returning raw and processed paths in upload order
func (h *VideoHandler) intakePhotos(c *gin.Context, jobID string, files []*multipart.FileHeader) ([]string, []string, error) {
	photosDir := filepath.Join(h.cfg.UploadDir, "photos")
	if err := utils.EnsureDirs(photosDir); err != nil {
		return nil, nil, err
	}

	rawPaths := make([]string, 0, len(files))
	processedPaths := make([]string, 0, len(files))

	for i, f := range files {
		ext := filepath.Ext(f.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		rawPath := filepath.Join(photosDir, fmt.Sprintf("photos-%s-%d%s", jobID, i, ext))
		if err := c.SaveUploadedFile(f, rawPath); err != nil {
			return nil, nil, fmt.Errorf("failed to save photo %d: %w", i, err)
		}
		rawPaths = append(rawPaths, rawPath)

		processedPath := filepath.Join(photosDir, fmt.Sprintf("processed-photos-%s-%d.jpg", jobID, i))
		if err := h.photos.Process(rawPath, processedPath); err != nil {
			return nil, nil, err
		}
		processedPaths = append(processedPaths, processedPath)
	}

	return rawPaths, processedPaths, nil
}

// onTransition mirrors pipeline state changes into the job map
func (h *VideoHandler) onTransition(jobID string, state pipeline.JobState) {
	var step string
	var progress int
	switch state {
	case pipeline.JobStateOverlaying:
		step, progress = "Compositing photo overlays", 30
	case pipeline.JobStateAudioAssembling:
		step, progress = "Assembling narration audio", 40
	case pipeline.JobStateSubtitling:
		step, progress = "Generating subtitles", 50
	case pipeline.JobStateComposing:
		step, progress = "Composing final video", 80
	default:
		return
	}
	h.updateStatus(jobID, step, progress)
}

func (h *VideoHandler) updateStatus(jobID, step string, progress int) {
	h.jobsMux.Lock()
	if job, exists := h.jobs[jobID]; exists {
		job.CurrentStep = step
		if progress > job.Progress {
			job.Progress = progress
		}
		job.UpdatedAt = time.Now()
	}
	h.jobsMux.Unlock()
}

func (h *VideoHandler) markJobFailed(jobID string, err error) {
	h.log.Error("job failed", zap.String("job_id", jobID), zap.Error(err))
	h.jobsMux.Lock()
	if job, exists := h.jobs[jobID]; exists {
		job.Status = "failed"
		job.Error = err
		job.UpdatedAt = time.Now()
	}
	h.jobsMux.Unlock()
}

// writeError maps the error taxonomy onto HTTP statuses. Validation and
// not-found surface as client errors; everything else is a server error
// with details kept out of the response.
func (h *VideoHandler) writeError(c *gin.Context, err error) {
	var validationErr *pipeline.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Reason})
		return
	}
	var notFoundErr *pipeline.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
		return
	}
	h.log.Error("request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate video"})
}

// errorCategory reduces an internal error to the user-visible message kind
func errorCategory(err error) string {
	var validationErr *pipeline.ValidationError
	if errors.As(err, &validationErr) {
		return "invalid request"
	}
	var notFoundErr *pipeline.NotFoundError
	if errors.As(err, &notFoundErr) {
		return "referenced resource not found"
	}
	var compositionErr *pipeline.CompositionError
	if errors.As(err, &compositionErr) {
		return "video rendering failed"
	}
	var ioErr *pipeline.IOError
	if errors.As(err, &ioErr) {
		return "storage failure"
	}
	return "internal error"
}

// parseScriptSelection accepts a single script ID or a JSON array of IDs
func parseScriptSelection(raw string) ([]string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var ids []string
		if err := json.Unmarshal([]byte(trimmed), &ids); err != nil {
			return nil, err
		}
		return ids, nil
	}
	return []string{trimmed}, nil
}

// fullScriptText joins the selected segments, plus the goodbye when
// present, into the narration text handed to the voice service
func fullScriptText(resolved *services.ResolvedAssets) string {
	parts := make([]string, 0, len(resolved.Scripts)+2)
	parts = append(parts, "Ho ho ho! Hello there, "+pipeline.NamePlaceholder+"!")
	for _, s := range resolved.Scripts {
		parts = append(parts, s.Text)
	}
	if resolved.Goodbye != nil {
		parts = append(parts, resolved.Goodbye.Text)
	}
	return strings.Join(parts, "\n\n")
}
