package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthService_ReadinessCheck(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cbp.csv")
	require.NoError(t, os.WriteFile(file, []byte("header\n"), 0o644))

	tests := []struct {
		name       string
		path       string
		wantStatus string
	}{
		{name: "readable file", path: file, wantStatus: "ready"},
		{name: "missing file", path: filepath.Join(dir, "absent.csv"), wantStatus: "not_ready"},
		{name: "directory", path: dir, wantStatus: "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService("1.0.0", tt.path, quietLogger())

			status := hs.ReadinessCheck(context.Background())

			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, tt.wantStatus, status.Services["data_source"].Status)
			assert.NotEmpty(t, status.Services["data_source"].Message)
		})
	}
}

func TestHealthService_HealthCheck(t *testing.T) {
	hs := NewHealthService("1.2.3", "unused.csv", nil)

	status := hs.HealthCheck(context.Background())

	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	require.NotNil(t, status.Runtime)
	assert.Greater(t, status.Runtime.Goroutines, 0)

	info := hs.Version()
	assert.Equal(t, "1.2.3", info["version"])
	assert.Contains(t, info, "go_version")
}
