package build

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/dshills/texd/internal/config"
)

func boolPtr(b bool) *bool { return &b }

func TestLatexmk_Build(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell commands")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "main.tex")

	tests := []struct {
		name        string
		options     config.BuildOptions
		wantSuccess bool
		wantErr     bool
	}{
		{
			name:        "zero exit",
			options:     config.BuildOptions{OnSave: boolPtr(true), Executable: "true", Args: []string{}},
			wantSuccess: true,
		},
		{
			name:        "non-zero exit is a failed build",
			options:     config.BuildOptions{OnSave: boolPtr(true), Executable: "false", Args: []string{}},
			wantSuccess: false,
		},
		{
			name:    "missing executable",
			options: config.BuildOptions{OnSave: boolPtr(true), Executable: "definitely-not-a-real-tool", Args: []string{}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Latexmk{}.Build(context.Background(), path, tt.options)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Build = nil error, want failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if result.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v", result.Success, tt.wantSuccess)
			}
			if !strings.HasSuffix(result.LogPath, "main.log") {
				t.Errorf("LogPath = %q, want *.log next to the source", result.LogPath)
			}
		})
	}
}
