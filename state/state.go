// Package state persists the pipeline stage marker used to skip, resume or
// invalidate runs.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/spf13/afero"
)

// Version is the current marker format version
const Version = 1

// ErrInvalidTransition is returned when a stage is not the successor of the
// current stage
var ErrInvalidTransition = errors.New("invalid stage transition")

// Stage is a pipeline stage
type Stage string

// Stages in pipeline order
const (
	StageInit             Stage = "init"
	StageTextExtracted    Stage = "text_extracted"
	StageCleaned          Stage = "cleaned"
	StageChunked          Stage = "chunked"
	StageDatasetsExported Stage = "datasets_exported"
	StageEvaluationDone   Stage = "evaluation_done"
)

var order = []Stage{
	StageInit,
	StageTextExtracted,
	StageCleaned,
	StageChunked,
	StageDatasetsExported,
	StageEvaluationDone,
}

// Stages returns every stage in pipeline order
func Stages() []Stage {
	out := make([]Stage, len(order))
	copy(out, order)
	return out
}

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// Index returns the position of s in pipeline order, or -1 if unknown
func (s Stage) Index() int {
	for i, st := range order {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known stage
func (s Stage) Valid() bool {
	return s.Index() >= 0
}

// Next returns the following stage. ok is false at the final stage.
func (s Stage) Next() (next Stage, ok bool) {
	i := s.Index()
	if i < 0 || i+1 >= len(order) {
		return "", false
	}
	return order[i+1], true
}

// Reached reports whether s is at or past other
func (s Stage) Reached(other Stage) bool {
	return s.Index() >= other.Index() && other.Valid()
}

// Marker records the last processed source and the stage it reached
type Marker struct {
	Version    int       `json:"version"`
	Source     string    `json:"source"`
	SourceName string    `json:"source_name,omitempty"`
	Stage      Stage     `json:"stage"`
	Method     string    `json:"method,omitempty"`
	Chunks     int       `json:"chunks,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// New returns a marker at StageInit for the given source identity
func New(source string) *Marker {
	return &Marker{
		Version:   Version,
		Source:    source,
		Stage:     StageInit,
		UpdatedAt: time.Now().UTC(),
	}
}

// Advance moves the marker to next, which must directly follow the current
// stage
func (m *Marker) Advance(next Stage) error {
	want, ok := m.Stage.Next()
	if !ok || want != next {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.Stage, next)
	}
	m.Stage = next
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// Reset rebinds the marker to a new source and returns it to StageInit
func (m *Marker) Reset(source string) {
	m.Version = Version
	m.Source = source
	m.SourceName = ""
	m.Stage = StageInit
	m.Method = ""
	m.Chunks = 0
	m.UpdatedAt = time.Now().UTC()
}

// Matches reports whether the marker belongs to source
func (m *Marker) Matches(source string) bool {
	return m != nil && m.Source != "" && m.Source == source
}

// Done reports whether the marker reached the final stage
func (m *Marker) Done() bool {
	return m.Stage == StageEvaluationDone
}

// Identify returns the hex SHA-256 digest of r
func Identify(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hashing source: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// IdentifyFile hashes the file at path
func IdentifyFile(fsys afero.Fs, path string) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening source: %w", err)
	}
	defer f.Close()
	return Identify(f)
}

// Load reads a marker. A missing file yields (nil, nil). Markers with an
// unknown stage are reported as errors.
func Load(fsys afero.Fs, path string) (*Marker, error) {
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state: %w", err)
	}

	var m Marker
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	if !m.Stage.Valid() {
		return nil, fmt.Errorf("decoding state: unknown stage %q", m.Stage)
	}
	return &m, nil
}

// Save writes the marker as indented JSON
func Save(fsys afero.Fs, path string, m *Marker) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	return nil
}
