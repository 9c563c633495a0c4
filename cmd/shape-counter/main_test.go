package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sbinet/npyio"
)

func writeScene(t *testing.T, dir string) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 240, 140))
	for y := 0; y < 140; y++ {
		for x := 0; x < 240; x++ {
			c := color.RGBA{255, 255, 255, 255}
			if x >= 30 && x < 90 && y >= 40 && y < 100 {
				c = color.RGBA{0, 0, 0, 255}
			}
			dx, dy := x-170, y-70
			if dx*dx+dy*dy <= 31*31 {
				c = color.RGBA{0, 0, 0, 255}
			}
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(dir, "scene.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create scene: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode scene: %v", err)
	}
	return path
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.HasPrefix(stdout.String(), "shape-counter dev") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-help"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(stderr.String(), "-dump-mask") {
		t.Errorf("usage missing flags: %s", stderr.String())
	}
}

func TestRun_BadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-nope"}, &stdout, &stderr); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
}

func TestRun_MissingImage(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.jpg")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-out", out, filepath.Join(dir, "missing.jpg")}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.HasPrefix(stderr.String(), "can not load image") {
		t.Errorf("stderr = %q", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("unexpected report %q", stdout.String())
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output image should not be written")
	}
}

func TestRun_UnknownBackend(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-backend", "magic", "x.png"}, &stdout, &stderr); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
}

func TestRun_Report(t *testing.T) {
	dir := t.TempDir()
	in := writeScene(t, dir)
	out := filepath.Join(dir, "nested", "detected.png")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-out", out, in}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr.String())
	}

	want := "The Shape counts are:\ntriangle: 0\nsquare: 1\nrectangle: 0\ncircle: 1\n"
	if stdout.String() != want {
		t.Errorf("report = %q, want %q", stdout.String(), want)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("annotated image missing: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("annotated image unreadable: %v", err)
	}
	if cfg.Width != 240 || cfg.Height != 140 {
		t.Errorf("annotated size = %dx%d", cfg.Width, cfg.Height)
	}
}

func TestRun_JSONAndMask(t *testing.T) {
	dir := t.TempDir()
	in := writeScene(t, dir)
	mask := filepath.Join(dir, "mask.npy")

	var stdout, stderr bytes.Buffer
	args := []string{"-json", "-labels", "-dump-mask", mask, "-out", filepath.Join(dir, "out.jpg"), in}
	if code := run(args, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr.String())
	}

	var got struct {
		MD5    string            `json:"md5"`
		Counts map[string]int    `json:"counts"`
		Shapes []json.RawMessage `json:"shapes"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout.String(), err)
	}
	if len(got.MD5) != 32 || got.Counts["square"] != 1 || got.Counts["circle"] != 1 || len(got.Shapes) != 2 {
		t.Errorf("unexpected result %s", stdout.String())
	}

	f, err := os.Open(mask)
	if err != nil {
		t.Fatalf("mask missing: %v", err)
	}
	defer f.Close()
	r, err := npyio.NewReader(f)
	if err != nil {
		t.Fatalf("mask unreadable: %v", err)
	}
	if shape := r.Header.Descr.Shape; len(shape) != 2 || shape[0] != 140 || shape[1] != 240 {
		t.Errorf("mask shape = %v, want [140 240]", shape)
	}
}
