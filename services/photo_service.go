package services

import (
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	photoWidth  = 800
	photoHeight = 600
	jpegQuality = 85
)

// PhotoService normalizes uploaded photos before compositing: fixed-size
// center crop, orientation corrected, re-encoded as JPEG. The pipeline only
// ever sees processed images.
type PhotoService struct{}

// NewPhotoService creates a photo service
func NewPhotoService() *PhotoService {
	return &PhotoService{}
}

// Process reads the raw upload at srcPath and writes the normalized image
// to dstPath
func (ps *PhotoService) Process(srcPath, dstPath string) error {
	img, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to open photo %s: %w", srcPath, err)
	}

	fitted := imaging.Fill(img, photoWidth, photoHeight, imaging.Center, imaging.Lanczos)

	if err := imaging.Save(fitted, dstPath, imaging.JPEGQuality(jpegQuality)); err != nil {
		return fmt.Errorf("failed to save processed photo %s: %w", dstPath, err)
	}
	return nil
}
