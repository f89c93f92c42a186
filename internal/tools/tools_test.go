package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"loopmix/internal/runner"
)

func TestNormalizeFFmpegVersion(t *testing.T) {
	cases := map[string]string{
		"ffmpeg version 6.1.1 Copyright (c) 2000-2023":            "6.1.1",
		"ffmpeg version n7.0 Copyright (c) 2000-2024":             "7.0",
		"ffmpeg version N-113000-gabc Copyright (c) the FFmpeg d": "ffmpeg version N-113000-gabc Copyright (c) the FFmpeg d",
	}
	for in, want := range cases {
		if got := normalizeFFmpegVersion(in); got != want {
			t.Fatalf("normalizeFFmpegVersion(%q) got %q want %q", in, got, want)
		}
	}
}

func TestMeetsMinimum(t *testing.T) {
	cases := []struct {
		version, minimum string
		want             bool
	}{
		{"6.1.1", "4.4", true},
		{"4.4", "4.4", true},
		{"4.3.2", "4.4", false},
		{"", "4.4", false},
		{"7.0", "", true},
	}
	for _, tc := range cases {
		if got := meetsMinimum(tc.version, tc.minimum); got != tc.want {
			t.Fatalf("meetsMinimum(%q, %q) got %v want %v", tc.version, tc.minimum, got, tc.want)
		}
	}
}

func TestDetectorReportsVersion(t *testing.T) {
	d := Detector{
		LookPath: func(name string) (string, error) { return "/usr/bin/" + name, nil },
		Runner: runner.Func(func(ctx context.Context, command string, args []string, opts runner.RunOptions) (runner.RunResult, error) {
			return runner.RunResult{Stdout: []byte("ffmpeg version 6.1.1 Copyright\nbuilt with gcc\n")}, nil
		}),
	}
	statuses, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("statuses got %d want 1", len(statuses))
	}
	st := statuses[0]
	if !st.Satisfied || st.Version != "6.1.1" {
		t.Fatalf("status got %+v", st)
	}
	if st.Paths["ffprobe"] != "/usr/bin/ffprobe" {
		t.Fatalf("ffprobe path got %q", st.Paths["ffprobe"])
	}
}

func TestDetectorMissingBinary(t *testing.T) {
	d := Detector{
		LookPath: func(name string) (string, error) { return "", errors.New("not found") },
	}
	statuses, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if statuses[0].Satisfied || statuses[0].Error == "" {
		t.Fatalf("expected unsatisfied status, got %+v", statuses[0])
	}
	if _, _, err := d.Require(); err == nil {
		t.Fatalf("expected Require to fail")
	}
}

func TestHintsCoverFFprobe(t *testing.T) {
	cases := []struct {
		binary, goos, want string
		count            int
	}{
		{"ffmpeg", "darwin", "Install ffmpeg: brew install ffmpeg", 1},
		{"ffprobe", "darwin", "ffprobe ships with ffmpeg; install ffmpeg: brew install ffmpeg", 1},
		{"ffprobe", "windows", "ffprobe ships with ffmpeg; install ffmpeg: winget install Gyan.FFmpeg", 2},
		{"ffprobe", "plan9", "ffprobe ships with ffmpeg; install ffmpeg using your platform's package manager", 1},
	}
	for _, tc := range cases {
		hints := hintsFor(tc.binary, tc.goos)
		if len(hints) != tc.count || hints[0] != tc.want {
			t.Fatalf("hintsFor(%q, %q) got %q", tc.binary, tc.goos, hints)
		}
	}
	if hints := hintsFor("yt-dlp", "linux"); hints != nil {
		t.Fatalf("unknown binary should have no hints, got %q", hints)
	}
}

func TestRequireHintsMissingFFprobe(t *testing.T) {
	d := Detector{
		LookPath: func(name string) (string, error) {
			if strings.HasPrefix(name, "ffprobe") {
				return "", errors.New("not found")
			}
			return "/usr/bin/" + name, nil
		},
	}
	_, _, err := d.Require()
	if err == nil || !strings.Contains(err.Error(), "ffprobe ships with ffmpeg") {
		t.Fatalf("expected ffprobe hint, got %v", err)
	}

	statuses, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	var found bool
	for _, note := range statuses[0].Notes {
		if strings.Contains(note, "ffprobe ships with ffmpeg") {
			found = true
		}
	}
	if !found {
		t.Fatalf("notes got %q", statuses[0].Notes)
	}
}
