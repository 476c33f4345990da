package archive

import (
	"archive/zip"
	"fmt"
	"io"
)

// ReadEntries opens a zip file and returns its entry names and contents in
// stored order.
func ReadEntries(archivePath string) ([]Entry, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening zip archive: %w", err)
	}
	defer r.Close()

	entries := make([]Entry, 0, len(r.File))
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening zip entry %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading zip entry %s: %w", f.Name, err)
		}
		entries = append(entries, Entry{Name: f.Name, Data: data})
	}
	return entries, nil
}

// verify re-reads a written zip and checks it holds exactly the expected
// entries, in order.
func verify(archivePath string, want []Entry) error {
	got, err := ReadEntries(archivePath)
	if err != nil {
		return err
	}
	if len(got) != len(want) {
		return fmt.Errorf("archive has %d entries, expected %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i].Name || len(got[i].Data) != len(want[i].Data) {
			return fmt.Errorf("archive entry %d is %s, expected %s", i, got[i].Name, want[i].Name)
		}
	}
	return nil
}
