package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mkonijn/tafel/internal/model"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("expected a missing file to be tolerated, got %v", err)
	}
	if cfg.Game.Questions != nil || cfg.Colors != nil {
		t.Fatalf("expected a zero config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatal("expected an error for an empty path")
	}
}

func TestLoadConfigDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[game]
questions = 20
time-limit = 8.0
pass-correct = 18

[colors]
"3" = "#123456"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Game.Questions == nil || *cfg.Game.Questions != 20 {
		t.Fatalf("unexpected questions: %+v", cfg.Game.Questions)
	}
	if cfg.Game.TimeLimit == nil || *cfg.Game.TimeLimit != 8.0 {
		t.Fatalf("unexpected time limit: %+v", cfg.Game.TimeLimit)
	}
	if cfg.Game.PassCorrect == nil || *cfg.Game.PassCorrect != 18 {
		t.Fatalf("unexpected pass threshold: %+v", cfg.Game.PassCorrect)
	}
	if cfg.Game.DwellWrong != nil {
		t.Fatalf("expected unset fields to stay nil, got %v", *cfg.Game.DwellWrong)
	}
	if cfg.Colors["3"] != "#123456" {
		t.Fatalf("unexpected colors: %v", cfg.Colors)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for malformed TOML")
	}
}

func TestDefaultColorsCoverAllTables(t *testing.T) {
	colors := DefaultColors()
	for table := model.MinTable; table <= model.MaxTable; table++ {
		if colors[table] == "" {
			t.Fatalf("missing default color for table %d", table)
		}
	}
	if len(colors) != model.MaxTable-model.MinTable+1 {
		t.Fatalf("unexpected color count %d", len(colors))
	}
}

func TestNextColorCycles(t *testing.T) {
	start := colorPalette[0]
	color := start
	for i := 0; i < len(colorPalette); i++ {
		color = NextColor(color)
	}
	if color != start {
		t.Fatalf("expected a full cycle to return to %q, got %q", start, color)
	}
	if NextColor("#not-in-palette") != colorPalette[0] {
		t.Fatal("expected unknown colors to restart the cycle")
	}
}

func TestApplyColorOverrides(t *testing.T) {
	colors := DefaultColors()
	ApplyColorOverrides(colors, map[string]string{
		"2":  "#ABCDEF",
		"11": "#FFFFFF",
		"x":  "#FFFFFF",
		"5":  "",
	})
	if colors[2] != "#ABCDEF" {
		t.Fatalf("expected override for table 2, got %q", colors[2])
	}
	if colors[5] != DefaultColors()[5] {
		t.Fatalf("expected empty override to be ignored, got %q", colors[5])
	}
	if _, ok := colors[11]; ok {
		t.Fatal("expected out-of-range key to be ignored")
	}
}
