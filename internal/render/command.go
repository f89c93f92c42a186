package render

import (
	"path/filepath"
	"strconv"
	"strings"
)

// FilterScriptThreshold is the graph length above which the graph is passed
// through -filter_complex_script instead of the command line.
const FilterScriptThreshold = 64 * 1024

// Invocation is a fully planned ffmpeg run.
type Invocation struct {
	Binary      string
	Args        []string
	Graph       string
	ScriptPath  string
	Output      string
	PartialPath string
	Duration    float64
}

// PartialPath returns the temporary name the output is written under until
// ffmpeg succeeds: <name>.partial.<ext>.
func PartialPath(output string) string {
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + ".partial" + ext
}

// Plan builds the ffmpeg invocation for spec. Long graphs are referenced
// from diagDir/filter_complex.txt, which WriteDiagnostics creates.
func Plan(binary string, spec RenderSpec, diagDir string) Invocation {
	if binary == "" {
		binary = "ffmpeg"
	}
	graph := BuildFilterComplex(spec)
	inv := Invocation{
		Binary:      binary,
		Graph:       graph,
		Output:      spec.Output,
		PartialPath: PartialPath(spec.Output),
		Duration:    spec.Duration,
	}
	if len(graph) > FilterScriptThreshold {
		inv.ScriptPath = filepath.Join(diagDir, FilterFile)
	}
	inv.Args = BuildFFmpegArgs(spec, graph, inv.ScriptPath, inv.PartialPath)
	return inv
}

// BuildFFmpegArgs assembles the ffmpeg arguments. When scriptPath is set the
// graph is read from that file.
func BuildFFmpegArgs(spec RenderSpec, graph, scriptPath, output string) []string {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-stream_loop", "-1",
		"-i", spec.Visual.Path,
	}
	for _, in := range spec.Inputs {
		args = append(args, "-i", in)
	}

	if scriptPath != "" {
		args = append(args, "-filter_complex_script", scriptPath)
	} else {
		args = append(args, "-filter_complex", graph)
	}

	enc := spec.Encoding
	args = append(args,
		"-map", "[v]",
		"-map", "[a]",
		"-c:v", enc.VideoCodec,
	)
	if enc.Preset != "" {
		args = append(args, "-preset", enc.Preset)
	}
	if enc.CRF > 0 {
		args = append(args, "-crf", strconv.Itoa(enc.CRF))
	}
	args = append(args, "-c:a", enc.AudioCodec)
	if enc.AudioBitrateKbps > 0 {
		args = append(args, "-b:a", strconv.Itoa(enc.AudioBitrateKbps)+"k")
	}
	args = append(args,
		"-t", formatFloat(spec.Duration),
		"-progress", "pipe:1",
		"-nostats",
	)
	if ext := strings.ToLower(filepath.Ext(output)); ext == ".mp4" || ext == ".mov" || ext == ".m4v" {
		args = append(args, "-movflags", "+faststart")
	}
	args = append(args, output)
	return args
}

// CommandLine renders the invocation as a single shell-quoted line.
func (inv Invocation) CommandLine() string {
	parts := make([]string, 0, len(inv.Args)+1)
	parts = append(parts, shellQuote(inv.Binary))
	for _, a := range inv.Args {
		parts = append(parts, shellQuote(a))
	}
	return strings.Join(parts, " ")
}
