// Package vault stores uploaded source files and rendered outputs on disk.
package vault

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"studio/internal/models"
)

var (
	// ErrNotFound is returned when no directory holds the requested file.
	ErrNotFound = errors.New("file not found")
	// ErrInvalidName is returned for names that are not plain base names.
	ErrInvalidName = errors.New("invalid file name")
)

const tempPrefix = ".upload-"

// Vault manages the uploads and outputs directories.
type Vault struct {
	uploads string
	outputs string
	logger  *slog.Logger
}

// Open creates both directories when missing.
func Open(uploadsDir, outputsDir string, logger *slog.Logger) (*Vault, error) {
	if uploadsDir == "" || outputsDir == "" {
		return nil, fmt.Errorf("vault directories must be configured")
	}
	if logger == nil {
		logger = slog.Default()
	}
	for _, dir := range []string{uploadsDir, outputsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create vault dir %s: %w", dir, err)
		}
	}
	return &Vault{uploads: uploadsDir, outputs: outputsDir, logger: logger}, nil
}

// UploadsDir returns the directory new files are saved into.
func (v *Vault) UploadsDir() string { return v.uploads }

// OutputsDir returns the directory holding generated files.
func (v *Vault) OutputsDir() string { return v.outputs }

// List returns the files of both directories, newest first. A non-empty
// fileType keeps only files with that extension ("mp4" or ".mp4").
func (v *Vault) List(fileType string) ([]models.FileInfo, error) {
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(fileType), "."))

	files := []models.FileInfo{}
	for _, dir := range []struct {
		path  string
		label string
	}{{v.uploads, "uploads"}, {v.outputs, "outputs"}} {
		entries, err := os.ReadDir(dir.path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", dir.label, err)
		}
		for _, entry := range entries {
			if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), tempPrefix) {
				continue
			}
			if ext != "" && strings.ToLower(strings.TrimPrefix(filepath.Ext(entry.Name()), ".")) != ext {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				v.logger.Debug("skipping unreadable file", slog.String("name", entry.Name()), slog.String("error", err.Error()))
				continue
			}
			files = append(files, models.FileInfo{
				Name:      entry.Name(),
				Path:      filepath.Join(dir.path, entry.Name()),
				Size:      info.Size(),
				Modified:  info.ModTime().UTC(),
				Directory: dir.label,
			})
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Modified.After(files[j].Modified)
	})
	return files, nil
}

// Path resolves a file name, looking in uploads before outputs.
func (v *Vault) Path(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	for _, dir := range []string{v.uploads, v.outputs} {
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, ErrNotFound)
}

// Save writes r into the uploads directory, replacing any file of the same
// name.
func (v *Vault) Save(name string, r io.Reader) (models.FileInfo, error) {
	if err := checkName(name); err != nil {
		return models.FileInfo{}, err
	}

	target := filepath.Join(v.uploads, name)
	tmp, err := os.CreateTemp(v.uploads, tempPrefix+"*")
	if err != nil {
		return models.FileInfo{}, fmt.Errorf("create temp file: %w", err)
	}
	size, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return models.FileInfo{}, fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return models.FileInfo{}, fmt.Errorf("store %s: %w", name, err)
	}

	info, err := os.Stat(target)
	if err != nil {
		return models.FileInfo{}, fmt.Errorf("stat %s: %w", name, err)
	}
	v.logger.Info("file saved", slog.String("name", name), slog.Int64("size", size))
	return models.FileInfo{
		Name:      name,
		Path:      target,
		Size:      info.Size(),
		Modified:  info.ModTime().UTC(),
		Directory: "uploads",
	}, nil
}

// Delete removes the first file resolved by Path.
func (v *Vault) Delete(name string) error {
	path, err := v.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	v.logger.Info("file deleted", slog.String("name", name))
	return nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	if strings.HasPrefix(name, tempPrefix) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}
