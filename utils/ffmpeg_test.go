package utils

import "testing"

func TestEscapeFilterPath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain path",
			in:   "/tmp/job-1-subtitles.srt",
			want: "'/tmp/job-1-subtitles.srt'",
		},
		{
			name: "windows separators and drive colon",
			in:   `C:\temp\job-1-subtitles.srt`,
			want: `'C\:/temp/job-1-subtitles.srt'`,
		},
		{
			name: "single quote in path",
			in:   "/tmp/o'brien.srt",
			want: `'/tmp/o'\''brien.srt'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeFilterPath(tt.in); got != tt.want {
				t.Errorf("EscapeFilterPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatSRTTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{4, "00:00:04,000"},
		{12.5, "00:00:12,500"},
		{59.9995, "00:01:00,000"},
		{3661.25, "01:01:01,250"},
	}

	for _, tt := range tests {
		if got := FormatSRTTimestamp(tt.seconds); got != tt.want {
			t.Errorf("FormatSRTTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
