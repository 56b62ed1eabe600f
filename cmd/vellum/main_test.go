package main

import (
	"bytes"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vellum/pkg/logging"
)

const page = `<html><head><style>body { background: #eee } p { color: navy }</style></head>
<body><p>Hello vellum</p><div style="width:50px;height:30px;background:red"></div></body></html>`

func writeDoc(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	logging.ResetForTest()
	t.Cleanup(logging.ResetForTest)
	t.Setenv("VELLUM_LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decodeSize(t *testing.T, path string) image.Point {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return image.Pt(cfg.Width, cfg.Height)
}

func TestBoxesCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeDoc(t, dir, "index.html", page)

	out, err := run(t, "boxes", in)
	require.NoError(t, err)
	assert.Contains(t, out, "block <html>")
	assert.Contains(t, out, `text "Hello vellum"`)
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeDoc(t, dir, "index.html", page)
	out := filepath.Join(dir, "out.png")

	_, err := run(t, "render", in, "-o", out, "--scale", "2")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(1600, 1200), decodeSize(t, out))
}

func TestPrintCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeDoc(t, dir, "index.html", page)
	out := filepath.Join(dir, "page.png")

	_, err := run(t, "print", in, "-o", out, "--paper", "letter")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(816, 1056), decodeSize(t, out))

	_, err = run(t, "print", in, "-o", out, "--paper", "quarto")
	assert.ErrorContains(t, err, "unknown paper size")
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeDoc(t, dir, "a.html", page)
	b := writeDoc(t, dir, "b.html", `<p>b</p>`)
	missing := filepath.Join(dir, "missing.html")
	outDir := filepath.Join(dir, "out")

	_, err := run(t, "batch", "-o", outDir, "-j", "2", a, missing, b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.html")

	assert.FileExists(t, filepath.Join(outDir, "a.png"))
	assert.FileExists(t, filepath.Join(outDir, "b.png"))
	assert.NoFileExists(t, filepath.Join(outDir, "missing.png"))
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeDoc(t, dir, "vellum.yaml", "viewport:\n  width: 320\n  height: 200\n")
	in := writeDoc(t, dir, "index.html", `<p>x</p>`)
	out := filepath.Join(dir, "out.png")

	_, err := run(t, "--config", cfg, "render", in, "-o", out)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(320, 200), decodeSize(t, out))

	bad := writeDoc(t, dir, "bad.yaml", "viewport:\n  width: -1\n")
	_, err = run(t, "--config", bad, "boxes", in)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestPageName(t *testing.T) {
	assert.Equal(t, "out.png", pageName("out.png", 0, 3))
	assert.Equal(t, "out-2.png", pageName("out.png", 1, 3))
	assert.Equal(t, "dir/p-3", pageName("dir/p", 2, 3))
}

func TestCompareCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeDoc(t, dir, "index.html", page)
	ref := filepath.Join(dir, "ref.png")
	_, err := run(t, "render", in, "-o", ref)
	require.NoError(t, err)

	out, err := run(t, "compare", in, ref)
	require.NoError(t, err)
	assert.Contains(t, out, "0/480000 pixels differ")

	other := writeDoc(t, dir, "other.html", `<div style="width:100px;height:100px;background:blue"></div>`)
	diff := filepath.Join(dir, "diff.png")
	_, err = run(t, "compare", other, ref, "--diff", diff)
	assert.ErrorContains(t, err, "does not match")
	assert.FileExists(t, diff)
}
