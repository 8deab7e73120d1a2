package main

// Notes:
// - run/runMain are exercised end to end on temp directories holding a
//   template, a CSV and a PNG; the PDF is checked by its header only.
// - buildConfig covers the defaults < config < environment < flags order.
// - Environment lookups are injected, so tests run in parallel.

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	cardsheet "github.com/alnah/go-cardsheet"
	"github.com/alnah/go-cardsheet/internal/config"
)

const runTemplate = `{
	"name": "Monsters",
	"unit": "in",
	"page": {"width": 2.5, "height": 3.5},
	"shapes": [
		{"name": "Name", "kind": "text", "x": 0.1, "y": 0.1, "width": 2.3, "height": 0.4, "text": "Unnamed"},
		{"name": "Art", "kind": "image", "x": 0.1, "y": 0.6, "width": 2.3, "height": 1.6, "fit": "cover"}
	]
}`

// testEnv returns an environment with captured output and the given
// variables as the process environment.
func testEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	environ := make([]string, 0, len(vars))
	for k, v := range vars {
		k := k
		v := v
		environ = append(environ, k+"="+v)
	}
	return &Environment{
		Now:     func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) },
		Stdout:  &stdout,
		Stderr:  &stderr,
		Getenv:  mapEnv(vars),
		Environ: func() []string { return environ },
		Config:  config.DefaultConfig(),
	}, &stdout, &stderr
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	for x := 0; x < 40; x++ {
		img.Set(x, 15, color.NRGBA{G: 180, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
}

// setupDeck writes a template, a CSV with rows naming the given images and
// one existing image, art.png.
func setupDeck(t *testing.T, images ...string) (dir, tpl, csv string) {
	t.Helper()
	dir = t.TempDir()
	tpl = writeFile(t, dir, "monster.json", runTemplate)
	var b strings.Builder
	b.WriteString("@Name,@Art,Notes\n")
	for i, img := range images {
		i := i
		img := img
		b.WriteString("Monster ")
		b.WriteByte(byte('A' + i))
		b.WriteString("," + img + ",ignored\n")
	}
	csv = writeFile(t, dir, "monsters.csv", b.String())
	writePNG(t, filepath.Join(dir, "art.png"))
	return dir, tpl, csv
}

func assertPDF(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("%s is not a PDF", path)
	}
}

// ---------------------------------------------------------------------------
// TestRun - End to end conversion
// ---------------------------------------------------------------------------

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("nine-up from csv", func(t *testing.T) {
		t.Parallel()

		dir, tpl, csv := setupDeck(t, "art.png", "art.png", "art.png")
		out := filepath.Join(dir, "out", "monsters.pdf")
		env, stdout, _ := testEnv(nil)

		err := run(context.Background(), []string{tpl, "-i", csv, "-e", out, "-c", "9", "--cut-lines"}, env)
		if err != nil {
			t.Fatalf("run() error = %v", err)
		}
		assertPDF(t, out)
		if want := "3 cards on 1 sheet"; !strings.Contains(stdout.String(), want) {
			t.Errorf("stdout = %q, want %q", stdout.String(), want)
		}
	})

	t.Run("template only renders defaults", func(t *testing.T) {
		t.Parallel()

		dir, tpl, _ := setupDeck(t)
		out := filepath.Join(dir, "defaults.pdf")
		env, stdout, _ := testEnv(nil)

		if err := run(context.Background(), []string{tpl, "-e", out}, env); err != nil {
			t.Fatalf("run() error = %v", err)
		}
		assertPDF(t, out)
		if !strings.Contains(stdout.String(), "1 card on 1 sheet") {
			t.Errorf("stdout = %q", stdout.String())
		}
	})

	t.Run("skip policy reports rows", func(t *testing.T) {
		t.Parallel()

		dir, tpl, csv := setupDeck(t, "art.png", "gone.png", "art.png")
		out := filepath.Join(dir, "skip.pdf")
		env, stdout, stderr := testEnv(map[string]string{"CARDSHEET_ON_MISSING": "skip"})

		if err := run(context.Background(), []string{tpl, "-i", csv, "-e", out, "-c", "8"}, env); err != nil {
			t.Fatalf("run() error = %v", err)
		}
		assertPDF(t, out)
		if !strings.Contains(stdout.String(), "skipped 1 record with missing images (rows 3)") {
			t.Errorf("stdout = %q", stdout.String())
		}
		if !strings.Contains(stderr.String(), "skipping record") {
			t.Errorf("stderr should log the skipped record:\n%s", stderr.String())
		}
	})

	t.Run("quiet prints nothing", func(t *testing.T) {
		t.Parallel()

		dir, tpl, csv := setupDeck(t, "art.png")
		env, stdout, stderr := testEnv(nil)

		if err := run(context.Background(), []string{tpl, "-i", csv, "-e", filepath.Join(dir, "q.pdf"), "-q"}, env); err != nil {
			t.Fatalf("run() error = %v", err)
		}
		if stdout.Len() != 0 || stderr.Len() != 0 {
			t.Errorf("quiet run wrote stdout=%q stderr=%q", stdout.String(), stderr.String())
		}
	})

	t.Run("base dir from flag", func(t *testing.T) {
		t.Parallel()

		dir, tpl, _ := setupDeck(t)
		artDir := filepath.Join(dir, "images")
		if err := os.MkdirAll(artDir, 0o750); err != nil {
			t.Fatal(err)
		}
		writePNG(t, filepath.Join(artDir, "goblin.png"))
		csv := writeFile(t, dir, "data/goblins.csv", "@Name,@Art\nGoblin,goblin.png\n")
		out := filepath.Join(dir, "goblins.pdf")
		env, _, _ := testEnv(nil)

		if err := run(context.Background(), []string{tpl, "-i", csv, "-e", out, "--base-dir", artDir}, env); err != nil {
			t.Fatalf("run() error = %v", err)
		}
		assertPDF(t, out)
	})

	t.Run("unbound columns warn", func(t *testing.T) {
		t.Parallel()

		dir, tpl, _ := setupDeck(t)
		csv := writeFile(t, dir, "plain.csv", "Name,Art\nGoblin,art.png\n")
		env, _, stderr := testEnv(nil)

		if err := run(context.Background(), []string{tpl, "-i", csv, "-e", filepath.Join(dir, "p.pdf")}, env); err != nil {
			t.Fatalf("run() error = %v", err)
		}
		if !strings.Contains(stderr.String(), "no data column matches a shape") {
			t.Errorf("expected unbound warning, got:\n%s", stderr.String())
		}
	})

	t.Run("version and help", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := testEnv(nil)
		if err := run(context.Background(), []string{"version"}, env); err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(stdout.String(), "cardsheet ") {
			t.Errorf("version output = %q", stdout.String())
		}

		for _, arg := range []string{"help", "--help", "-h"} {
			arg := arg
			env, stdout, _ := testEnv(nil)
			if err := run(context.Background(), []string{arg}, env); err != nil {
				t.Fatalf("%s: %v", arg, err)
			}
			if !strings.Contains(stdout.String(), "Usage: cardsheet") {
				t.Errorf("%s: output missing usage", arg)
			}
		}
	})
}

// ---------------------------------------------------------------------------
// TestRun_Errors - Failure classes and hints
// ---------------------------------------------------------------------------

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     func(dir, tpl, csv string) []string
		wantErr  error
		wantCode int
		wantHint string
	}{
		{
			name:     "missing template argument",
			args:     func(dir, _, csv string) []string { return []string{"-i", csv, "-e", filepath.Join(dir, "o.pdf")} },
			wantErr:  ErrUsage,
			wantCode: ExitUsage,
		},
		{
			name:     "template not found",
			args:     func(dir, _, _ string) []string { return []string{filepath.Join(dir, "nope.json"), "-e", filepath.Join(dir, "o.pdf")} },
			wantErr:  cardsheet.ErrReadFile,
			wantCode: ExitIO,
		},
		{
			name:     "missing image aborts",
			args:     func(dir, tpl, csv string) []string { return []string{tpl, "-i", csv, "-e", filepath.Join(dir, "o.pdf")} },
			wantErr:  cardsheet.ErrMissingAsset,
			wantCode: ExitAsset,
			wantHint: "image paths are resolved against",
		},
		{
			name: "cards do not fit",
			args: func(dir, tpl, csv string) []string {
				return []string{tpl, "-e", filepath.Join(dir, "o.pdf"), "-c", "9", "--card-size", "4,5"}
			},
			wantErr:  cardsheet.ErrInvalidLayout,
			wantCode: ExitUsage,
			wantHint: "reduce --margin",
		},
		{
			name: "bad card size",
			args: func(dir, tpl, _ string) []string {
				return []string{tpl, "-e", filepath.Join(dir, "o.pdf"), "--card-size", "wide"}
			},
			wantErr:  cardsheet.ErrInvalidCardSize,
			wantCode: ExitUsage,
		},
		{
			name: "bad policy",
			args: func(dir, tpl, _ string) []string {
				return []string{tpl, "-e", filepath.Join(dir, "o.pdf"), "--on-missing", "retry"}
			},
			wantErr:  config.ErrInvalidValue,
			wantCode: ExitUsage,
		},
		{
			name: "config not found",
			args: func(dir, tpl, _ string) []string {
				return []string{tpl, "-e", filepath.Join(dir, "o.pdf"), "--config", filepath.Join(dir, "none.yaml")}
			},
			wantErr:  config.ErrConfigNotFound,
			wantCode: ExitUsage,
			wantHint: "--config",
		},
		{
			name: "export is a directory",
			args: func(dir, tpl, _ string) []string { return []string{tpl, "-e", dir} },
			wantErr:  cardsheet.ErrWriteOutput,
			wantCode: ExitIO,
			wantHint: "writable",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir, tpl, csv := setupDeck(t, "art.png", "missing.png")
			env, _, _ := testEnv(nil)

			err := run(context.Background(), tt.args(dir, tpl, csv), env)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("run() error = %v, want %v", err, tt.wantErr)
			}
			if got := exitCodeFor(err); got != tt.wantCode {
				t.Errorf("exit code = %d, want %d", got, tt.wantCode)
			}
			if tt.wantHint != "" && !strings.Contains(err.Error(), tt.wantHint) {
				t.Errorf("error %q should contain hint %q", err, tt.wantHint)
			}
			if _, statErr := os.Stat(filepath.Join(dir, "o.pdf")); statErr == nil {
				t.Error("no output should be written on failure")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain - Exit codes and stderr
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		dir, tpl, csv := setupDeck(t, "art.png")
		env, _, _ := testEnv(nil)
		if code := runMain([]string{"cardsheet", tpl, "-i", csv, "-e", filepath.Join(dir, "o.pdf")}, env); code != ExitSuccess {
			t.Errorf("runMain() = %d, want %d", code, ExitSuccess)
		}
	})

	t.Run("usage error points at help", func(t *testing.T) {
		t.Parallel()

		env, _, stderr := testEnv(nil)
		if code := runMain([]string{"cardsheet", "--nope"}, env); code != ExitUsage {
			t.Errorf("runMain() = %d, want %d", code, ExitUsage)
		}
		if !strings.Contains(stderr.String(), "cardsheet help") {
			t.Errorf("stderr = %q", stderr.String())
		}
	})
}

// ---------------------------------------------------------------------------
// TestBuildConfig - Precedence
// ---------------------------------------------------------------------------

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "print.yaml", `page:
  size: a4
  margin: 0.5
cards:
  perPage: 9
  cutLines: true
data:
  marker: "#"
assets:
  onMissing: abort
`)

	tests := []struct {
		name       string
		args       []string
		vars       map[string]string
		wantSize   string
		wantMargin float64
		wantCards  int
		wantMarker string
		wantPolicy string
		wantCut    bool
	}{
		{
			name:       "config file",
			args:       []string{"--config", cfgPath},
			wantSize:   "a4",
			wantMargin: 0.5,
			wantCards:  9,
			wantMarker: "#",
			wantPolicy: "abort",
			wantCut:    true,
		},
		{
			name:       "config from environment",
			vars:       map[string]string{"CARDSHEET_CONFIG": cfgPath},
			wantSize:   "a4",
			wantMargin: 0.5,
			wantCards:  9,
			wantMarker: "#",
			wantPolicy: "abort",
			wantCut:    true,
		},
		{
			name:       "environment beats config",
			args:       []string{"--config", cfgPath},
			vars:       map[string]string{"CARDSHEET_PAGE_SIZE": "legal", "CARDSHEET_MARKER": "$", "CARDSHEET_ON_MISSING": "skip"},
			wantSize:   "legal",
			wantMargin: 0.5,
			wantCards:  9,
			wantMarker: "$",
			wantPolicy: "skip",
			wantCut:    true,
		},
		{
			name:       "flags beat environment",
			args:       []string{"--config", cfgPath, "-p", "letter", "--margin", "0", "-c", "8", "--marker", "%", "--on-missing", "abort", "--cut-lines=false"},
			vars:       map[string]string{"CARDSHEET_PAGE_SIZE": "legal", "CARDSHEET_ON_MISSING": "skip"},
			wantSize:   "letter",
			wantMargin: 0,
			wantCards:  8,
			wantMarker: "%",
			wantPolicy: "abort",
			wantCut:    false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, _, err := parseFlags(tt.args)
			if err != nil {
				t.Fatal(err)
			}
			env, _, _ := testEnv(tt.vars)
			cfg, err := buildConfig(f, env)
			if err != nil {
				t.Fatalf("buildConfig() error = %v", err)
			}
			page := buildPageSettings(cfg)
			if page.Size != tt.wantSize || page.Margin != tt.wantMargin {
				t.Errorf("page = %+v, want size %q margin %g", page, tt.wantSize, tt.wantMargin)
			}
			if cfg.Cards.PerPage != tt.wantCards || cfg.Cards.CutLines != tt.wantCut {
				t.Errorf("cards = %+v, want perPage %d cutLines %v", cfg.Cards, tt.wantCards, tt.wantCut)
			}
			if cfg.Data.Marker != tt.wantMarker || cfg.Assets.OnMissing != tt.wantPolicy {
				t.Errorf("marker=%q policy=%q, want %q and %q",
					cfg.Data.Marker, cfg.Assets.OnMissing, tt.wantMarker, tt.wantPolicy)
			}
		})
	}

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		f, _, err := parseFlags(nil)
		if err != nil {
			t.Fatal(err)
		}
		env, _, _ := testEnv(nil)
		cfg, err := buildConfig(f, env)
		if err != nil {
			t.Fatal(err)
		}
		page, card := buildPageSettings(cfg), buildCardSize(cfg)
		if *page != *cardsheet.DefaultPageSettings() || *card != *cardsheet.DefaultCardSize() {
			t.Errorf("defaults = %+v %+v", page, card)
		}
		if cfg.Cards.PerPage != cardsheet.CardsSingle {
			t.Errorf("PerPage = %d, want single", cfg.Cards.PerPage)
		}
	})
}

// ---------------------------------------------------------------------------
// TestResolveBaseDir - Image directory fallback
// ---------------------------------------------------------------------------

func TestResolveBaseDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		baseDir string
		input   string
		want    string
	}{
		{"configured", "art", "data/deck.csv", "art"},
		{"data file directory", "", filepath.Join("data", "deck.csv"), "data"},
		{"working directory", "", "", "."},
	}
	for _, tt := range tests {
		tt := tt
		cfg := &config.Config{}
		cfg.Assets.BaseDir = tt.baseDir
		if got := resolveBaseDir(cfg, tt.input); got != tt.want {
			t.Errorf("%s: resolveBaseDir() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
