package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths resolves relative file locations. A relative path is taken from the
// working directory when it exists there, otherwise from the directory of
// the executable.
type Paths struct {
	WorkingDir    string
	ExecutableDir string
}

// GetPaths returns the working and executable directories
func GetPaths() (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return &Paths{WorkingDir: wd, ExecutableDir: filepath.Dir(exe)}, nil
}

// Resolve returns path made absolute. Empty and absolute paths are unchanged.
func (p *Paths) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	fromWD := filepath.Join(p.WorkingDir, path)
	if FileExists(fromWD) {
		return fromWD
	}

	fromExe := filepath.Join(p.ExecutableDir, path)
	if FileExists(fromExe) {
		return fromExe
	}
	return fromWD
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// ResolvePaths rewrites the data source and log file paths as absolute paths.
func (c *Config) ResolvePaths(p *Paths) {
	c.Data.SourcePath = p.Resolve(c.Data.SourcePath)
	if c.Logging.Output != "console" {
		c.Logging.FilePath = p.Resolve(c.Logging.FilePath)
	}
}

// LogPathResolution logs the resolved paths for debugging
func (c *Config) LogPathResolution(logger *slog.Logger, p *Paths) {
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("working", p.WorkingDir),
			slog.String("executable", p.ExecutableDir),
		),
		slog.Group("files",
			slog.String("data_source", c.Data.SourcePath),
			slog.String("log_file", c.Logging.FilePath),
		))
}
