package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/7HR4IZ3/acode-cli/internal/logging"
	"github.com/7HR4IZ3/acode-cli/internal/manifest"
)

// Well-known file and directory names inside an extension root.
const (
	MainFile    = "main.js"
	IconFile    = "icon.png"
	ReadmeFile  = "readme.md"
	DistDir     = "dist"
	OutputFile  = "dist.zip"
	LicenseFile = "LICENSE.txt"
)

// readmeCandidates are preferred in order; any other casing of readme.md is
// accepted after them.
var readmeCandidates = []string{"readme.md", "README.md"}

// entryTime is stamped on every entry so identical inputs give identical bytes.
var entryTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

var (
	// ErrMissingRequiredFile is returned when icon.png or plugin.json is absent.
	ErrMissingRequiredFile = errors.New("missing required file")
	// ErrMissingReadme is returned when neither readme.md nor README.md exists.
	ErrMissingReadme = errors.New("missing readme")
)

// MissingFileError names the required file that was not found.
type MissingFileError struct {
	Name string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingRequiredFile, e.Name)
}

func (e *MissingFileError) Unwrap() error { return ErrMissingRequiredFile }

// Entry is one file in the archive.
type Entry struct {
	// Name is the slash-separated path inside the archive.
	Name string
	// Source is the file it was read from.
	Source string
	Data   []byte
}

// Archive is the ordered set of entries built from an extension root.
type Archive struct {
	Root       string
	OutputPath string
	Plugin     *manifest.Plugin
	Entries    []Entry
}

// Names returns the entry names in archive order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.Entries))
	for i, e := range a.Entries {
		names[i] = e.Name
	}
	return names
}

// Builder builds extension archives.
type Builder struct {
	Log logging.Logger
}

// NewBuilder returns a Builder logging to log.
func NewBuilder(log logging.Logger) *Builder {
	if log == nil {
		log = logging.Discard()
	}
	return &Builder{Log: log}
}

// Build collects the archive for root and writes it to <root>/dist.zip,
// replacing any previous archive. Nothing is written when a required file is
// missing or plugin.json is invalid.
func (b *Builder) Build(root string) (*Archive, error) {
	a, err := b.Collect(root)
	if err != nil {
		return nil, err
	}
	if err := a.Write(); err != nil {
		return nil, err
	}
	b.Log.Info("Archive written", "path", a.OutputPath, "entries", len(a.Entries))
	return a, nil
}

// Collect gathers the archive entries without writing the zip file. It does
// create the dist directory when it is missing.
func (b *Builder) Collect(root string) (*Archive, error) {
	for _, name := range []string{IconFile, manifest.FileName} {
		if !isFile(filepath.Join(root, name)) {
			return nil, &MissingFileError{Name: name}
		}
	}

	plugin, err := manifest.Load(filepath.Join(root, manifest.FileName))
	if err != nil {
		return nil, err
	}
	b.Log.Debug("Loaded plugin manifest", "id", plugin.ID, "version", plugin.Version)

	readme, err := findReadme(root)
	if err != nil {
		return nil, err
	}

	distPath := filepath.Join(root, DistDir)
	if err := os.MkdirAll(distPath, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", distPath, err)
	}

	a := &Archive{
		Root:       root,
		OutputPath: filepath.Join(root, OutputFile),
		Plugin:     plugin,
	}
	index := make(map[string]int)

	// add appends an entry. An existing entry of the same name is kept, or
	// replaced in place when replace is set.
	add := func(name, source string, replace bool) error {
		i, dup := index[name]
		if dup && !replace {
			b.Log.Warn("Skipping duplicate archive entry", "entry", name, "source", source)
			return nil
		}
		data, err := os.ReadFile(source)
		if err != nil {
			return fmt.Errorf("reading %s: %w", source, err)
		}
		e := Entry{Name: name, Source: source, Data: data}
		if dup {
			b.Log.Debug("Build output replaces archive entry", "entry", name, "replaced", a.Entries[i].Source, "source", source)
			a.Entries[i] = e
			return nil
		}
		index[name] = len(a.Entries)
		a.Entries = append(a.Entries, e)
		return nil
	}

	// Root files use their canonical lowercase names.
	if main := filepath.Join(root, MainFile); isFile(main) {
		if err := add(MainFile, main, false); err != nil {
			return nil, err
		}
	}
	rootFiles := []struct{ name, source string }{
		{IconFile, filepath.Join(root, IconFile)},
		{manifest.FileName, filepath.Join(root, manifest.FileName)},
		{ReadmeFile, filepath.Join(root, readme)},
	}
	for _, f := range rootFiles {
		if err := add(f.name, f.source, false); err != nil {
			return nil, err
		}
	}

	for _, rel := range plugin.Files {
		name := path.Clean(filepath.ToSlash(rel))
		if name == "." || strings.HasPrefix(name, "../") || path.IsAbs(name) {
			b.Log.Warn("Ignoring file outside the extension root", "file", rel)
			continue
		}
		source := filepath.Join(root, filepath.FromSlash(name))
		if !isFile(source) {
			b.Log.Warn("File listed in plugin.json not found", "file", rel)
			continue
		}
		if err := add(name, source, false); err != nil {
			return nil, err
		}
	}

	err = filepath.WalkDir(distPath, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if d.Name() == LicenseFile {
			return nil
		}
		rel, err := filepath.Rel(distPath, p)
		if err != nil {
			return err
		}
		// Files under dist are build output and win over root files.
		return add(filepath.ToSlash(rel), p, true)
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", distPath, err)
	}

	return a, nil
}

// WriteTo serializes the archive as a zip stream.
func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)
	for _, e := range a.Entries {
		hdr := &zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Deflate,
			Modified: entryTime,
		}
		hdr.SetMode(0644)
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return cw.n, fmt.Errorf("adding %s: %w", e.Name, err)
		}
		if _, err := fw.Write(e.Data); err != nil {
			return cw.n, fmt.Errorf("writing %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("finalizing zip: %w", err)
	}
	return cw.n, nil
}

// Write writes the archive to OutputPath through a temporary file so readers
// never observe a partial zip. Concurrent writers race; the last rename wins.
func (a *Archive) Write() error {
	tmp, err := os.CreateTemp(filepath.Dir(a.OutputPath), ".dist.zip-*")
	if err != nil {
		return fmt.Errorf("creating temporary archive: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := a.WriteTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temporary archive: %w", err)
	}
	if err := verify(tmpName, a.Entries); err != nil {
		return fmt.Errorf("verifying archive: %w", err)
	}
	if err := os.Rename(tmpName, a.OutputPath); err != nil {
		return fmt.Errorf("replacing %s: %w", a.OutputPath, err)
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// findReadme returns the name of the readme in root, matching readme.md
// case-insensitively.
func findReadme(root string) (string, error) {
	for _, candidate := range readmeCandidates {
		if isFile(filepath.Join(root, candidate)) {
			return candidate, nil
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", root, err)
	}
	// ReadDir sorts by name, so the pick is stable.
	for _, e := range entries {
		if strings.EqualFold(e.Name(), ReadmeFile) && isFile(filepath.Join(root, e.Name())) {
			return e.Name(), nil
		}
	}
	return "", fmt.Errorf("%w: expected %s (any case) in %s", ErrMissingReadme, ReadmeFile, root)
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
