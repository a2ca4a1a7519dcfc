package config_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/calvinalkan/bufstream/internal/config"
	"github.com/calvinalkan/bufstream/pkg/fs"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	err = os.WriteFile(path, []byte(content), 0o644)
	if err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func Test_Load_Returns_Defaults_When_No_Files_Exist(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	home := t.TempDir()

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: dir, Env: map[string]string{"HOME": home}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := config.Config{
		Backend:        config.BackendSys,
		LogLevel:       config.LogLevelOff,
		EffectiveCwd:   dir,
		HistoryFileAbs: filepath.Join(home, ".bufstream_history"),
	}

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func Test_Load_Applies_Precedence_When_All_Sources_Are_Set(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	xdg := t.TempDir()
	globalPath := filepath.Join(xdg, "bufstream", "config.json")

	writeFile(t, globalPath, `{
		// global picks os and a history file
		"backend": "os",
		"history_file": "/tmp/global-history",
		"log_level": "info",
	}`)
	writeFile(t, filepath.Join(dir, config.FileName), `{"log_level": "warn"}`)

	tests := []struct {
		name  string
		input config.LoadInput
		want  config.Config
	}{
		{
			name:  "global then project",
			input: config.LoadInput{},
			want: config.Config{
				Backend: "os", HistoryFile: "/tmp/global-history", LogLevel: "warn",
				Sources: config.Sources{Global: globalPath, Project: filepath.Join(dir, config.FileName)},
			},
		},
		{
			name:  "flags win",
			input: config.LoadInput{BackendOverride: "sys", LogLevelOverride: "debug"},
			want: config.Config{
				Backend: "sys", HistoryFile: "/tmp/global-history", LogLevel: "debug",
				Sources: config.Sources{Global: globalPath, Project: filepath.Join(dir, config.FileName)},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			input := tc.input
			input.WorkDirOverride = dir
			input.Env = map[string]string{"XDG_CONFIG_HOME": xdg}

			cfg, err := config.Load(input)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}

			opts := cmpopts.IgnoreFields(config.Config{}, "EffectiveCwd", "HistoryFileAbs")
			if diff := cmp.Diff(tc.want, cfg, opts); diff != "" {
				t.Fatalf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func Test_Load_Uses_Explicit_Config_Instead_Of_Project_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.FileName), `{"backend": "os"}`)
	writeFile(t, filepath.Join(dir, "custom.json"), `{"history_file": "hist"}`)

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: dir, ConfigPath: "custom.json"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got, want := cfg.Backend, config.BackendSys; got != want {
		t.Fatalf("Backend=%q, want %q", got, want)
	}

	if got, want := cfg.HistoryFileAbs, filepath.Join(dir, "hist"); got != want {
		t.Fatalf("HistoryFileAbs=%q, want %q", got, want)
	}

	if got, want := cfg.Sources.Project, filepath.Join(dir, "custom.json"); got != want {
		t.Fatalf("Sources.Project=%q, want %q", got, want)
	}
}

func Test_Load_Returns_Error_When_Config_Is_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		input   config.LoadInput
		wantErr error
	}{
		{name: "syntax", content: `{"backend": `, wantErr: config.ErrConfigInvalid},
		{name: "unknown key", content: `{"buffer_size": 8192}`, wantErr: config.ErrConfigInvalid},
		{name: "unknown backend", content: `{"backend": "mmap"}`, wantErr: config.ErrUnknownBackend},
		{name: "unknown log level", content: `{"log_level": "trace"}`, wantErr: config.ErrUnknownLogLevel},
		{
			name:    "unknown backend flag",
			content: `{}`,
			input:   config.LoadInput{BackendOverride: "nope"},
			wantErr: config.ErrUnknownBackend,
		},
		{
			name:    "missing explicit file",
			content: `{}`,
			input:   config.LoadInput{ConfigPath: "missing.json"},
			wantErr: config.ErrConfigFileNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, config.FileName), tc.content)

			input := tc.input
			input.WorkDirOverride = dir

			_, err := config.Load(input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err=%v, want %v", err, tc.wantErr)
			}
		})
	}
}

func Test_Config_FS_Returns_Backend_By_Name(t *testing.T) {
	t.Parallel()

	if _, ok := (config.Config{Backend: config.BackendOS}).FS().(*fs.Real); !ok {
		t.Fatal("backend os should use fs.Real")
	}

	if got := (config.Config{Backend: config.BackendSys}).FS(); got == nil {
		t.Fatal("backend sys returned nil")
	}
}

func Test_Config_Logger_Writes_Only_At_Or_Above_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := config.Config{LogLevel: "warn"}.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("log output=%q, want only the warn record", out)
	}

	buf.Reset()
	config.Config{LogLevel: config.LogLevelOff}.Logger(&buf).Error("nothing")

	if buf.Len() != 0 {
		t.Fatalf("log output=%q, want nothing when off", buf.String())
	}
}

func Test_Format_Omits_Resolved_Fields(t *testing.T) {
	t.Parallel()

	out, err := config.Format(config.Config{Backend: "os", LogLevel: "off", EffectiveCwd: "/x"})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	want := "{\n  \"backend\": \"os\",\n  \"log_level\": \"off\"\n}"
	if out != want {
		t.Fatalf("Format=%q, want %q", out, want)
	}
}
