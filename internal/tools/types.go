package tools

type Source string

const (
	SourceUnknown  Source = ""
	SourceSystem   Source = "system"
	SourceOverride Source = "config"
)

// Status captures the resolved state of an external tool.
type Status struct {
	Tool      string            `json:"tool"`
	Version   string            `json:"version,omitempty"`
	Minimum   string            `json:"minimum,omitempty"`
	Source    Source            `json:"source"`
	Path      string            `json:"path,omitempty"`
	Paths     map[string]string `json:"paths,omitempty"`
	Satisfied bool              `json:"satisfied"`
	Error     string            `json:"error,omitempty"`
	Notes     []string          `json:"notes,omitempty"`
}

// BinarySpec describes an executable belonging to a tool.
type BinarySpec struct {
	ID            string
	Executable    string
	VersionSwitch string
}

// ToolDefinition contains metadata required to locate a tool.
type ToolDefinition struct {
	Name           string
	MinimumVersion string
	Binaries       []BinarySpec
}
