package pipeline

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildOverlayPlan(t *testing.T) {
	tests := []struct {
		name       string
		photoCount int
		positions  []string
	}{
		{
			name:       "single photo",
			photoCount: 1,
			positions:  []string{"10:10"},
		},
		{
			name:       "two photos",
			photoCount: 2,
			positions:  []string{"10:10", "W-w-10:10"},
		},
		{
			name:       "four photos cover all corners",
			photoCount: 4,
			positions:  []string{"10:10", "W-w-10:10", "10:H-h-10", "W-w-10:H-h-10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows, err := BuildOverlayPlan(tt.photoCount)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(windows) != tt.photoCount {
				t.Fatalf("expected %d windows, got %d", tt.photoCount, len(windows))
			}

			for i, w := range windows {
				if w.Position != tt.positions[i] {
					t.Errorf("window %d: expected position %s, got %s", i, tt.positions[i], w.Position)
				}
				wantStart := float64(i * OverlayWindowSeconds)
				wantEnd := float64((i + 1) * OverlayWindowSeconds)
				if w.Start != wantStart || w.End != wantEnd {
					t.Errorf("window %d: expected [%g,%g), got [%g,%g)", i, wantStart, wantEnd, w.Start, w.End)
				}
				// Windows must be back to back
				if i > 0 && windows[i-1].End != w.Start {
					t.Errorf("gap between window %d and %d", i-1, i)
				}
			}
			if windows[0].Start != 0 {
				t.Errorf("first window must start at 0, got %g", windows[0].Start)
			}
		})
	}
}

func TestBuildOverlayPlanZeroPhotos(t *testing.T) {
	_, err := BuildOverlayPlan(0)
	if err == nil {
		t.Fatal("expected error for zero photos")
	}
	var compositionErr *CompositionError
	if !errors.As(err, &compositionErr) {
		t.Fatalf("expected CompositionError, got %T", err)
	}
	if compositionErr.Stage != "overlay" {
		t.Errorf("expected overlay stage, got %s", compositionErr.Stage)
	}
}

func TestOverlayBuildArgs(t *testing.T) {
	stage := NewPhotoOverlayStage(nil)
	job := &CompositionJob{
		JobID:           "J1",
		BasePhotoAssets: []string{"/p/one.jpg", "/p/two.jpg"},
		BaseVideoPath:   "/videos/bg.mp4",
	}

	args, err := stage.BuildArgs(job, "/tmp/J1-concat.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(args, " ")

	// One filter graph, one invocation
	if strings.Count(joined, "-filter_complex") != 1 {
		t.Errorf("expected exactly one filter graph, args: %s", joined)
	}
	if !strings.Contains(joined, "scale=300:-1") {
		t.Errorf("photos must scale to fixed width, args: %s", joined)
	}
	if !strings.Contains(joined, "overlay=10:10:enable='between(t,0,5)'") {
		t.Errorf("first photo window wrong, args: %s", joined)
	}
	if !strings.Contains(joined, "overlay=W-w-10:10:enable='between(t,5,10)'") {
		t.Errorf("second photo window wrong, args: %s", joined)
	}
	if args[0] != "-i" || args[1] != "/videos/bg.mp4" {
		t.Errorf("base video must be the first input, args: %s", joined)
	}
}

func TestOverlayBuildArgsDegradedMode(t *testing.T) {
	stage := NewPhotoOverlayStage(nil)
	job := &CompositionJob{
		JobID:           "J2",
		BasePhotoAssets: []string{"/p/only.jpg"},
	}

	args, err := stage.BuildArgs(job, "/tmp/J2-concat.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-loop 1 -t 5.00 -i /p/only.jpg") {
		t.Errorf("first photo must substitute as looped base visual, args: %s", joined)
	}
}
