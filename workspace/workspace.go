// Package workspace manages the on-disk layout of a pipeline working
// directory: the data, cache, datasets and outputs folders and the artifacts
// stored in them.
package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

// Folders
const (
	DataDir     = "data"
	CacheDir    = "cache"
	DatasetsDir = "datasets"
	OutputsDir  = "outputs"
)

// Artifacts, relative to the workspace root
const (
	StateFile      = "cache/pipeline_state.json"
	LockFile       = "cache/pipeline.lock"
	RawTextFile    = "datasets/raw_text.txt"
	CleanTextFile  = "datasets/clean_text.txt"
	ChunksFile     = "datasets/chunks.json"
	CorpusFile     = "datasets/corpus.txt"
	ReportJSONFile = "outputs/dataset_report.json"
	ReportTextFile = "outputs/dataset_report.txt"
)

// Record datasets, relative to the workspace root and without extension
const (
	RecordsBase      = "datasets/chunks_with_id"
	InstructionsBase = "datasets/lora_instruct"
	PairsBase        = "datasets/pairs"
	TrainBase        = "datasets/train"
	ValBase          = "datasets/val"
	TestBase         = "datasets/test"
)

var (
	// ErrMissingArtifact is returned when a required artifact does not exist
	ErrMissingArtifact = errors.New("missing artifact")

	// ErrLocked is returned when another run holds the workspace lock
	ErrLocked = errors.New("workspace is locked by another run")
)

// Workspace is a working directory on a filesystem
type Workspace struct {
	fs   afero.Fs
	root string
}

// New returns a workspace rooted at root on fsys
func New(fsys afero.Fs, root string) *Workspace {
	if root == "" {
		root = "."
	}
	return &Workspace{fs: fsys, root: root}
}

// Fs returns the underlying filesystem
func (w *Workspace) Fs() afero.Fs {
	return w.fs
}

// Root returns the workspace root
func (w *Workspace) Root() string {
	return w.root
}

// Path resolves an artifact name against the root
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.root, filepath.FromSlash(name))
}

// Dataset returns the artifact name of a record dataset in the given
// extension
func Dataset(base, ext string) string {
	return base + ext
}

// Init creates the workspace folders
func (w *Workspace) Init() error {
	for _, dir := range []string{DataDir, CacheDir, DatasetsDir, OutputsDir} {
		if err := w.fs.MkdirAll(w.Path(dir), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// Exists reports whether an artifact exists
func (w *Workspace) Exists(name string) bool {
	ok, err := afero.Exists(w.fs, w.Path(name))
	return err == nil && ok
}

// Write buffers the output of fn and stores it as the named artifact. Nothing
// is written when fn fails.
func (w *Workspace) Write(name string, fn func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return w.WriteBytes(name, buf.Bytes())
}

// WriteBytes stores data as the named artifact
func (w *Workspace) WriteBytes(name string, data []byte) error {
	p := w.Path(name)
	if err := w.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", name, err)
	}
	if err := afero.WriteFile(w.fs, p, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// WriteText stores s as the named artifact
func (w *Workspace) WriteText(name, s string) error {
	return w.WriteBytes(name, []byte(s))
}

// Read opens the named artifact and passes it to fn. A missing artifact
// yields an error wrapping ErrMissingArtifact.
func (w *Workspace) Read(name string, fn func(io.Reader) error) error {
	f, err := w.fs.Open(w.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrMissingArtifact, name)
	}
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	return nil
}

// ReadText returns the contents of the named artifact
func (w *Workspace) ReadText(name string) (string, error) {
	var s string
	err := w.Read(name, func(r io.Reader) error {
		data, err := io.ReadAll(r)
		s = string(data)
		return err
	})
	return s, err
}

// Invalidate removes every entry of the cache, datasets and outputs folders
// except the state file and the lock file. It returns the number of entries
// removed.
func (w *Workspace) Invalidate() (int, error) {
	keep := map[string]bool{
		path.Base(StateFile): true,
		path.Base(LockFile):  true,
	}

	removed := 0
	for _, dir := range []string{CacheDir, DatasetsDir, OutputsDir} {
		entries, err := afero.ReadDir(w.fs, w.Path(dir))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("listing %s: %w", dir, err)
		}

		for _, entry := range entries {
			if dir == CacheDir && keep[entry.Name()] {
				continue
			}
			if err := w.fs.RemoveAll(filepath.Join(w.Path(dir), entry.Name())); err != nil {
				return removed, fmt.Errorf("removing %s/%s: %w", dir, entry.Name(), err)
			}
			removed++
		}
	}
	return removed, nil
}

// Lock takes an exclusive advisory lock on the workspace and returns the
// function that releases it. Locking applies to OS-backed workspaces only;
// other filesystems get a no-op lock.
func (w *Workspace) Lock() (func() error, error) {
	if _, ok := w.fs.(*afero.OsFs); !ok {
		return func() error { return nil }, nil
	}

	if err := w.fs.MkdirAll(w.Path(CacheDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", CacheDir, err)
	}

	fl := flock.New(w.Path(LockFile))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking workspace: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, w.root)
	}
	return fl.Unlock, nil
}
