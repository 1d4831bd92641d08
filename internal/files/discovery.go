package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"consolidator/pkg/contracts/domain"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindCSVFiles finds the CSV files of a directory, sorted by name. Hidden
// files and editor lock files are skipped.
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	return d.FindFilesByPattern(dir, "*.csv")
}

// FindFilesByPattern finds regular files whose lower-cased name matches
// pattern, sorted by name.
func (d *Discovery) FindFilesByPattern(dir string, pattern string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)
	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var found []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		matched, err := filepath.Match(pattern, strings.ToLower(name))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if !matched {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].Name < found[j].Name
	})
	return found, nil
}

// Paths returns the paths of the given files.
func Paths(found []FileInfo) []string {
	paths := make([]string, len(found))
	for i, f := range found {
		paths[i] = f.Path
	}
	return paths
}

// LoadUploads reads each path into an Upload named after the file's base
// name. maxBytes bounds the combined size; zero means unbounded.
func LoadUploads(paths []string, maxBytes int64) ([]domain.Upload, error) {
	uploads := make([]domain.Upload, 0, len(paths))
	var total int64
	for _, p := range paths {
		data, err := readLimited(p, maxBytes-total, maxBytes)
		if err != nil {
			return nil, err
		}
		total += int64(len(data))
		uploads = append(uploads, domain.Upload{Name: filepath.Base(p), Content: data})
	}
	return uploads, nil
}

func readLimited(path string, remaining, limit int64) ([]byte, error) {
	bounded := limit > 0
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if bounded {
		r = io.LimitReader(f, remaining+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if bounded && int64(len(data)) > remaining {
		return nil, fmt.Errorf("input files exceed the limit of %d bytes", limit)
	}
	return data, nil
}
