package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/chatsession/testutil"
)

func TestExportCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{
			name:    "export with invalid format",
			args:    []string{"export", "--format", "invalid"},
			wantErr: true,
		},
		{
			name:    "export unknown session",
			args:    []string{"export", "--session-id", "missing"},
			wantErr: true,
		},
		{
			name:    "unexpected argument",
			args:    []string{"export", "chat-1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newFixtureEnv(t)
			_, err := env.run(t, append(tt.args, "--out", filepath.Join(env.dir, "out"))...)
			if (err != nil) != tt.wantErr {
				t.Errorf("exportCmd.Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExportCommand_Formats(t *testing.T) {
	tests := []struct {
		format string
		ext    string
		want   string
	}{
		{format: "jsonl", ext: "jsonl", want: `"content":"Explain goroutines"`},
		{format: "md", ext: "md", want: "Explain goroutines"},
		{format: "yaml", ext: "yaml", want: "Goroutines are lightweight threads."},
		{format: "json", ext: "json", want: `"Explain goroutines"`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			env := newFixtureEnv(t)
			outDir := filepath.Join(env.dir, "exports")

			if _, err := env.run(t, "export", "--format", tt.format, "--out", outDir); err != nil {
				t.Fatalf("export error = %v", err)
			}

			for _, id := range []string{"chat-1", "chat-2"} {
				if _, err := os.Stat(filepath.Join(outDir, id+"."+tt.ext)); err != nil {
					t.Errorf("expected export file for %s: %v", id, err)
				}
			}

			data, err := os.ReadFile(filepath.Join(outDir, "chat-1."+tt.ext))
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("chat-1 export missing %q:\n%s", tt.want, data)
			}
		})
	}
}

func TestExportCommand_SingleSession(t *testing.T) {
	env := newFixtureEnv(t)
	outDir := filepath.Join(env.dir, "exports")

	if _, err := env.run(t, "export", "--session-id", "chat-2", "--format", "json", "--out", outDir); err != nil {
		t.Fatalf("export error = %v", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "chat-2.json" {
		t.Fatalf("expected only chat-2.json, got %v", entries)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "chat-2.json"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var decoded map[string]interface{}
	testutil.JSONUnmarshal(t, data, &decoded)
	if decoded["id"] != "chat-2" {
		t.Errorf("exported id = %v, want chat-2", decoded["id"])
	}
}

func TestExportCommand_PinnedOnly(t *testing.T) {
	env := newFixtureEnv(t)
	outDir := filepath.Join(env.dir, "exports")

	if _, err := env.run(t, "export", "--pinned", "--out", outDir); err != nil {
		t.Fatalf("export error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(outDir, "chat-1.jsonl")); err != nil {
		t.Errorf("pinned session should be exported: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "chat-2.jsonl")); !os.IsNotExist(err) {
		t.Error("unpinned session should not be exported")
	}
}

func TestExportCommand_Stdout(t *testing.T) {
	env := newFixtureEnv(t)
	outDir := filepath.Join(env.dir, "exports")

	stdout, err := env.run(t, "export", "--session-id", "chat-1", "--format", "md", "--stdout", "--out", outDir)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.Contains(stdout, "Goroutines are lightweight threads.") {
		t.Errorf("stdout export missing content:\n%s", stdout)
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Error("--stdout should not create the output directory")
	}
}
