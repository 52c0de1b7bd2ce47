package script

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

// Loader resolves script names to source. Files in Dir win over the embedded
// defaults so scripts can be edited without rebuilding.
type Loader struct {
	Dir string
	FS  fs.FS
}

func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir, FS: ScriptsFS}
}

func (l *Loader) Load(name string) ([]byte, error) {
	clean := cleanScriptName(name)
	if clean == "" {
		return nil, fmt.Errorf("script: load %q: %w", name, ErrScriptNotFound)
	}
	if l != nil && l.Dir != "" {
		data, err := os.ReadFile(filepath.Join(l.Dir, filepath.FromSlash(clean)))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("script: load %s: %w", clean, err)
		}
	}
	if l == nil || l.FS == nil {
		return nil, fmt.Errorf("script: load %s: %w", clean, ErrScriptNotFound)
	}
	data, err := fs.ReadFile(l.FS, "scripts/"+clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("script: load %s: %w", clean, ErrScriptNotFound)
		}
		return nil, fmt.Errorf("script: load %s: %w", clean, err)
	}
	return data, nil
}

// Name maps a file path back to the script name it was loaded under.
func (l *Loader) Name(path string) (string, bool) {
	if l == nil || l.Dir == "" || !IsScriptFile(path) {
		return "", false
	}
	rel, err := filepath.Rel(l.Dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return cleanScriptName(rel), true
}

func IsScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".tengo"
}

func cleanScriptName(name string) string {
	s := strings.TrimSpace(filepath.ToSlash(name))
	if s == "" {
		return ""
	}
	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}
	if !strings.HasSuffix(strings.ToLower(s), ".tengo") {
		s += ".tengo"
	}
	return s
}
