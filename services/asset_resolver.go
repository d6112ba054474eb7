package services

import (
	"path/filepath"
	"regexp"

	"santavideo/models"
	"santavideo/pipeline"
	"santavideo/utils"
)

const (
	// MinPhotos and MaxPhotos bound how many photos a job may carry
	MinPhotos = 1
	MaxPhotos = 4
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ResolveRequest is the raw request data a job starts from
type ResolveRequest struct {
	SubjectName     string
	ContactEmail    string
	TemplateID      string
	ScriptIDs       []string
	GoodbyeScriptID string
	PhotoCount      int

	// VideoName optionally selects a base video by file name
	VideoName string
}

// ResolvedAssets carries the catalog records and file paths a validated
// request maps to
type ResolvedAssets struct {
	Template models.Template
	Scripts  []models.Script
	Goodbye  *models.Script

	// BaseVideoPath is empty when neither the request nor the template
	// supplies a provisioned base video; the first photo then substitutes
	// as the sole visual input
	BaseVideoPath string
}

// AssetResolver validates job requests and resolves every referenced
// template, script, and asset. Pure validation and lookup, no side effects.
type AssetResolver struct {
	catalog  *Catalog
	videoDir string
}

// NewAssetResolver creates a resolver over the catalog and the base-video
// directory
func NewAssetResolver(catalog *Catalog, videoDir string) *AssetResolver {
	return &AssetResolver{catalog: catalog, videoDir: videoDir}
}

// Resolve checks every required field and resolves catalog references.
// Missing or malformed fields return ValidationError; unknown identifiers
// and missing base videos return NotFoundError.
func (r *AssetResolver) Resolve(req ResolveRequest) (*ResolvedAssets, error) {
	if req.SubjectName == "" {
		return nil, pipeline.NewValidationError("child name is required")
	}
	if req.ContactEmail == "" {
		return nil, pipeline.NewValidationError("parent email is required")
	}
	if !emailPattern.MatchString(req.ContactEmail) {
		return nil, pipeline.NewValidationError("invalid email format")
	}
	if req.TemplateID == "" {
		return nil, pipeline.NewValidationError("template ID is required")
	}
	if len(req.ScriptIDs) == 0 {
		return nil, pipeline.NewValidationError("at least one script must be selected")
	}
	if req.PhotoCount < MinPhotos {
		return nil, pipeline.NewValidationError("at least %d photo is required", MinPhotos)
	}
	if req.PhotoCount > MaxPhotos {
		return nil, pipeline.NewValidationError("maximum %d photos allowed", MaxPhotos)
	}

	template, err := r.catalog.TemplateByID(req.TemplateID)
	if err != nil {
		return nil, err
	}

	scripts := make([]models.Script, 0, len(req.ScriptIDs))
	for _, id := range req.ScriptIDs {
		script, err := r.catalog.ScriptByID(id)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, script)
	}

	resolved := &ResolvedAssets{
		Template: template,
		Scripts:  scripts,
	}

	if req.GoodbyeScriptID != "" {
		goodbye, err := r.catalog.ScriptByID(req.GoodbyeScriptID)
		if err != nil {
			return nil, err
		}
		resolved.Goodbye = &goodbye
	}

	if req.VideoName != "" {
		candidate := filepath.Join(r.videoDir, req.VideoName)
		if !utils.FileExists(candidate) {
			return nil, pipeline.NewNotFoundError("base video", req.VideoName)
		}
		resolved.BaseVideoPath = candidate
	} else if template.Video != "" {
		// The template's declared base video is a default, not a demand:
		// when the file is not provisioned the job degrades to the
		// photo-loop visual instead of failing
		if candidate := filepath.Join(r.videoDir, template.Video); utils.FileExists(candidate) {
			resolved.BaseVideoPath = candidate
		}
	}

	return resolved, nil
}
