package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loopmix/internal/render"
)

func TestBuildThenSkip(t *testing.T) {
	calls := useFakeBoundaries(t)
	dir := newTestProject(t)

	out, err := runCLI(t, "build", "--project", dir, "--target", "300", "--json")
	if err != nil {
		t.Fatalf("build: %v\n%s", err, out)
	}
	var first buildJSON
	if err := json.Unmarshal([]byte(out), &first); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if first.Action != "build" || first.BuildID == "" || *calls != 1 {
		t.Fatalf("first build got %+v calls=%d", first, *calls)
	}
	if first.Repeats != 3 || first.Target != 300 {
		t.Errorf("plan got repeats=%d target=%v", first.Repeats, first.Target)
	}
	if _, err := os.Stat(first.Tracklist); err != nil {
		t.Errorf("tracklist missing: %v", err)
	}

	out, err = runCLI(t, "build", "--project", dir, "--target", "300", "--json")
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	var second buildJSON
	if err := json.Unmarshal([]byte(out), &second); err != nil {
		t.Fatal(err)
	}
	if second.Action != "skip" || *calls != 1 {
		t.Fatalf("second build should skip, got %+v calls=%d", second, *calls)
	}

	out, err = runCLI(t, "build", "--project", dir, "--target", "300", "--force")
	if err != nil {
		t.Fatalf("forced build: %v", err)
	}
	if *calls != 2 || !strings.Contains(out, "Built ") {
		t.Fatalf("forced build output %q calls=%d", out, *calls)
	}
}

func TestBuildDryRunWritesDiagnostics(t *testing.T) {
	calls := useFakeBoundaries(t)
	dir := newTestProject(t)

	out, err := runCLI(t, "build", "--project", dir, "--target", "5m", "--dry-run", "--no-progress")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if *calls != 0 {
		t.Fatalf("dry run transcoded")
	}
	if !strings.Contains(out, "Dry run") || !strings.Contains(out, "repeats: 3") {
		t.Errorf("output got %q", out)
	}
	for _, name := range []string{render.GraphFile, render.FilterFile, render.CommandFile} {
		if _, err := os.Stat(filepath.Join(dir, "rendered", name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestBuildRejectsBadOverlapBeforeProbing(t *testing.T) {
	useFakeBoundaries(t)
	dir := newTestProject(t)

	_, err := runCLI(t, "build", "--project", dir, "--overlap", "0")
	if err == nil || !strings.Contains(err.Error(), "overlap") {
		t.Fatalf("expected overlap error, got %v", err)
	}
}

func TestPlanPrintsDescription(t *testing.T) {
	useFakeBoundaries(t)
	dir := newTestProject(t)

	out, err := runCLI(t, "plan", "--project", dir, "--target", "300", "--curve", "qsin")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	for _, want := range []string{"# loopmix program", "curve: qsin", "0003 2->3 285-290 d=5 c=qsin"} {
		if !strings.Contains(out, want) {
			t.Errorf("plan output missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "rendered", render.GraphFile)); !os.IsNotExist(err) {
		t.Errorf("plan without --write should not write diagnostics")
	}
}

func TestPlanJSON(t *testing.T) {
	useFakeBoundaries(t)
	dir := newTestProject(t)

	out, err := runCLI(t, "plan", "--project", dir, "--target", "300", "--json", "--write")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	var payload planJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if payload.Cycle != 290 || payload.Segments != 9 || payload.Transitions != 8 {
		t.Errorf("payload got %+v", payload)
	}
	if payload.Diagnostics == "" {
		t.Errorf("expected diagnostics dir with --write")
	}
}

func TestProbeListsClips(t *testing.T) {
	useFakeBoundaries(t)
	dir := newTestProject(t)

	out, err := runCLI(t, "probe", "--project", dir, "--json")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	var payload probeJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(payload.Clips) != 3 || payload.Total != 300 || payload.Cycle != 290 {
		t.Errorf("payload got %+v", payload)
	}
}

func TestStatusAfterBuild(t *testing.T) {
	useFakeBoundaries(t)
	dir := newTestProject(t)

	out, err := runCLI(t, "status", "--project", dir)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "No builds recorded") {
		t.Errorf("status before build got %q", out)
	}

	if _, err := runCLI(t, "build", "--project", dir, "--target", "300", "--no-progress"); err != nil {
		t.Fatalf("build: %v", err)
	}
	out, err = runCLI(t, "status", "--project", dir)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "output.mp4") || strings.Contains(out, "(missing)") {
		t.Errorf("status after build got %q", out)
	}
}
