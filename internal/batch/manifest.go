package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ManifestEntry represents one frame in the output manifest.
type ManifestEntry struct {
	Frame      int    `json:"frame"`
	Seed       string `json:"seed"`
	Candidate  string `json:"candidate"`
	Output     string `json:"output,omitempty"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	Components int    `json:"components"`
	Pixels     int    `json:"pixels"`
}

// WriteManifest writes the per-frame results as indented JSON. Output
// paths are stored relative to the manifest's directory when possible.
func WriteManifest(path string, results []Result) error {
	dir := filepath.Dir(path)
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		out := r.Output
		if rel, err := filepath.Rel(dir, out); err == nil && out != "" {
			out = rel
		}
		entries[i] = ManifestEntry{
			Frame:      r.Frame,
			Seed:       r.Seed,
			Candidate:  r.Candidate,
			Output:     out,
			Success:    r.Success,
			Error:      r.Error,
			Components: r.Components,
			Pixels:     r.Pixels,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
