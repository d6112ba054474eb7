package pipeline

import (
	"strings"
	"testing"
)

func TestPersonalizeText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		child string
	}{
		{
			name:  "single occurrence",
			text:  "Hello, {name}!",
			child: "Alex",
			want:  "Hello, Alex!",
		},
		{
			name:  "every occurrence replaced",
			text:  "{name} and {name} again, {name}",
			child: "Mia",
			want:  "Mia and Mia again, Mia",
		},
		{
			name:  "no placeholder",
			text:  "Ho ho ho!",
			child: "Alex",
			want:  "Ho ho ho!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PersonalizeText(tt.text, tt.child)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}

			// Substitution is idempotent: a second pass changes nothing
			if again := PersonalizeText(got, tt.child); again != got {
				t.Errorf("second pass changed text: %q -> %q", got, again)
			}
		})
	}
}

func TestBuildCues(t *testing.T) {
	stage := NewSubtitleStage()

	tests := []struct {
		name     string
		segments []Segment
		closing  *Segment
		wantCues int
	}{
		{
			name:     "narration only",
			segments: []Segment{{Text: "one"}, {Text: "two"}, {Text: "three"}},
			wantCues: 3,
		},
		{
			name:     "with closing segment",
			segments: []Segment{{Text: "one"}, {Text: "two"}},
			closing:  &Segment{Text: "bye {name}"},
			wantCues: 3,
		},
		{
			name:     "single segment",
			segments: []Segment{{Text: "only"}},
			wantCues: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &CompositionJob{
				SubjectName:       "Alex",
				NarrationSegments: tt.segments,
				ClosingSegment:    tt.closing,
			}
			cues := stage.BuildCues(job)

			if len(cues) != tt.wantCues {
				t.Fatalf("expected %d cues, got %d", tt.wantCues, len(cues))
			}
			if cues[0].Start != 0 {
				t.Errorf("first cue must start at 0, got %g", cues[0].Start)
			}
			for i, cue := range cues {
				if cue.Seq != i+1 {
					t.Errorf("cue %d: expected seq %d, got %d", i, i+1, cue.Seq)
				}
				if cue.End-cue.Start != CueDurationSeconds {
					t.Errorf("cue %d: expected %ds duration, got %g", i, CueDurationSeconds, cue.End-cue.Start)
				}
				if i > 0 && cues[i-1].End != cue.Start {
					t.Errorf("cue %d does not start where cue %d ends", i, i-1)
				}
			}

			total := cues[len(cues)-1].End
			if total != float64(CueDurationSeconds*tt.wantCues) {
				t.Errorf("expected total duration %d, got %g", CueDurationSeconds*tt.wantCues, total)
			}
		})
	}
}

func TestBuildCuesPersonalizes(t *testing.T) {
	stage := NewSubtitleStage()
	job := &CompositionJob{
		SubjectName:       "Alex",
		NarrationSegments: []Segment{{Text: "Hello {name}, dear {name}"}},
	}

	cues := stage.BuildCues(job)
	if cues[0].Text != "Hello Alex, dear Alex" {
		t.Errorf("placeholder not fully substituted: %q", cues[0].Text)
	}
}

func TestRenderSRT(t *testing.T) {
	// Scenario: two narration segments plus a closing segment span
	// 00:00:00,000 through 00:00:12,000
	job := &CompositionJob{
		SubjectName: "Alex",
		NarrationSegments: []Segment{
			{Text: "Hello {name}!"},
			{Text: "You have been good."},
		},
		ClosingSegment: &Segment{Text: "Goodbye {name}!"},
	}

	srt := RenderSRT(NewSubtitleStage().BuildCues(job))

	want := "1\n00:00:00,000 --> 00:00:04,000\nHello Alex!\n\n" +
		"2\n00:00:04,000 --> 00:00:08,000\nYou have been good.\n\n" +
		"3\n00:00:08,000 --> 00:00:12,000\nGoodbye Alex!\n\n"
	if srt != want {
		t.Errorf("SRT mismatch:\ngot:\n%s\nwant:\n%s", srt, want)
	}

	if strings.Contains(srt, NamePlaceholder) {
		t.Error("rendered SRT still contains the name placeholder")
	}
}
