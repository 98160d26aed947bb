// =============================================================================
// Tableau Workbook Fixer - Archive Module
// =============================================================================
//
// This module handles the .twbx container format. A .twbx file is a ZIP
// archive holding one .twb XML document plus auxiliary resources (packaged
// data sources, images, thumbnails). The module covers:
//   - Extraction into a scratch directory
//   - Locating the primary .twb document
//   - Repackaging the scratch directory into a new archive
//   - Read-only member listing for inspection
//
// SCRATCH DIRECTORY:
//   Extraction happens into <stem>_temp relative to the working directory.
//   The directory is exclusively owned by one run: a pre-existing directory
//   of the same name is removed before extraction, and the directory is
//   removed again after successful repackaging. Concurrent runs against the
//   same input name would collide; the tool is single-run by design.
//
// =============================================================================

package workbook

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tableau-tools/twbfix/pkg/utils"
)

// ErrNotFound indicates a missing input archive or an archive without a
// .twb document. Callers check for it with errors.Is.
var ErrNotFound = errors.New("not found")

// documentExt is the extension of the primary document inside the archive.
const documentExt = ".twb"

// =============================================================================
// WORKBOOK
// =============================================================================

// Workbook represents one .twbx archive being repaired.
type Workbook struct {
	// Path is the input archive. It is never modified.
	Path string

	// ScratchDir is the extraction directory, derived from the input stem.
	ScratchDir string

	// Document is the path to the extracted .twb file.
	// Empty until Extract has run.
	Document string
}

// Open validates that the archive exists and derives the scratch directory
// for it. No filesystem writes happen until Extract.
func Open(path string) (*Workbook, error) {
	if !utils.FileExists(path) {
		return nil, fmt.Errorf("workbook %w: %s", ErrNotFound, path)
	}

	return &Workbook{
		Path:       path,
		ScratchDir: utils.ScratchDirName(path),
	}, nil
}

// =============================================================================
// EXTRACTION
// =============================================================================

// Extract unpacks every archive member into a fresh scratch directory and
// locates the primary .twb document.
//
// SIDE EFFECTS:
//   A pre-existing scratch directory of the same derived name is removed.
//
// RETURNS:
//   - ErrNotFound (wrapped) if the archive contains no top-level .twb file.
//   - An error if any member cannot be decompressed.
func (w *Workbook) Extract() error {
	// Start from a fresh scratch directory.
	if err := os.RemoveAll(w.ScratchDir); err != nil {
		return fmt.Errorf("failed to remove stale scratch directory: %w", err)
	}
	if err := os.MkdirAll(w.ScratchDir, 0o755); err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}

	r, err := zip.OpenReader(w.Path)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", w.Path, err)
	}
	defer r.Close()

	for _, member := range r.File {
		if err := extractMember(member, w.ScratchDir); err != nil {
			return err
		}
	}

	// The primary document lives at the top level of the archive.
	matches, err := filepath.Glob(filepath.Join(w.ScratchDir, "*"+documentExt))
	if err != nil {
		return fmt.Errorf("failed to scan scratch directory: %w", err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("%s document %w in %s", documentExt, ErrNotFound, w.Path)
	}

	// More than one document is silently resolved by taking the first
	// match in sorted order.
	sort.Strings(matches)
	w.Document = matches[0]
	return nil
}

// extractMember writes a single archive member under the scratch directory,
// rejecting member names that would escape it.
func extractMember(member *zip.File, scratchDir string) error {
	target := filepath.Join(scratchDir, filepath.FromSlash(member.Name))

	// Zip-slip guard: the member must stay inside the scratch directory.
	rel, err := filepath.Rel(scratchDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("unsafe archive member name: %s", member.Name)
	}

	if member.FileInfo().IsDir() {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", member.Name, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", member.Name, err)
	}

	rc, err := member.Open()
	if err != nil {
		return fmt.Errorf("failed to decompress %s: %w", member.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("failed to extract %s: %w", member.Name, err)
	}

	return out.Sync()
}

// =============================================================================
// REPACKAGING
// =============================================================================

// Repackage walks the scratch directory tree and writes every regular file
// into a new deflate-compressed archive at outputPath, preserving relative
// paths as slash-separated member names.
func (w *Workbook) Repackage(outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output archive %s: %w", outputPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	err = filepath.WalkDir(w.ScratchDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(w.ScratchDir, path)
		if err != nil {
			return err
		}

		// zip.Writer.Create compresses with deflate by default.
		wtr, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()

		_, err = io.Copy(wtr, src)
		return err
	})
	if err != nil {
		zw.Close()
		return fmt.Errorf("failed to repackage workbook: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize output archive: %w", err)
	}

	return out.Sync()
}

// Cleanup removes the scratch directory.
func (w *Workbook) Cleanup() error {
	if err := os.RemoveAll(w.ScratchDir); err != nil {
		return fmt.Errorf("failed to remove scratch directory: %w", err)
	}
	return nil
}

// =============================================================================
// READ-ONLY INSPECTION
// =============================================================================

// Member describes one archive member for inspection output.
type Member struct {
	// Name is the slash-separated member path inside the archive.
	Name string

	// Size is the uncompressed size in bytes.
	Size uint64

	// CompressedSize is the stored size in bytes.
	CompressedSize uint64
}

// List returns the archive's members without extracting anything.
func List(path string) ([]Member, error) {
	if !utils.FileExists(path) {
		return nil, fmt.Errorf("workbook %w: %s", ErrNotFound, path)
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer r.Close()

	members := make([]Member, 0, len(r.File))
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		members = append(members, Member{
			Name:           f.Name,
			Size:           f.UncompressedSize64,
			CompressedSize: f.CompressedSize64,
		})
	}

	return members, nil
}

// ReadMember returns the decompressed contents of a single archive member.
func ReadMember(path, name string) ([]byte, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to decompress %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	return nil, fmt.Errorf("archive member %w: %s", ErrNotFound, name)
}
