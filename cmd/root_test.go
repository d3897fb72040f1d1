package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/codetime/internal/output"
	"github.com/joescharf/codetime/internal/sessions"
	"github.com/joescharf/codetime/internal/source"
	"github.com/joescharf/codetime/internal/tags"
)

const exampleTags = `compile-2024.01.01_09.00.00
compile-2024.01.01_09.30.00
submission-hw1
compile-2024.01.01_14.00.00
`

func writeTags(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tags.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRootArgs(t *testing.T) {
	assert.NoError(t, rootArgs(rootCmd, []string{"tags.txt"}))

	err := rootArgs(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage:")

	assert.Error(t, rootArgs(rootCmd, []string{"a", "b"}))
}

func TestAnalyzeRun_Text(t *testing.T) {
	_, out := testEnv(t)

	require.NoError(t, analyzeRun(writeTags(t, exampleTags)))

	result := out.String()
	assert.Contains(t, result, "tags.txt")
	assert.Contains(t, result, "0h 50m")
	assert.Contains(t, result, "4h 30m")
	assert.Contains(t, result, "16.67%")
}

func TestAnalyzeRun_JSON(t *testing.T) {
	_, out := testEnv(t)
	viper.Set("output.format", output.FormatJSON)

	require.NoError(t, analyzeRun(writeTags(t, exampleTags)))

	var v output.ReportView
	require.NoError(t, json.Unmarshal(out.Bytes(), &v))
	assert.Equal(t, 2, v.SessionCount)
	assert.Equal(t, int64(3000), v.Total.Seconds)
}

func TestAnalyzeRun_ConfigOverride(t *testing.T) {
	_, out := testEnv(t)
	viper.Set("output.format", output.FormatJSON)
	viper.Set("session.break_threshold", "6h")

	require.NoError(t, analyzeRun(writeTags(t, exampleTags)))

	var v output.ReportView
	require.NoError(t, json.Unmarshal(out.Bytes(), &v))
	assert.Equal(t, 1, v.SessionCount)
	// 14:00 - (09:00 - 10m)
	assert.Equal(t, int64(5*3600+600), v.Total.Seconds)
}

func TestAnalyzeRun_Malformed(t *testing.T) {
	_, out := testEnv(t)

	err := analyzeRun(writeTags(t, "compile-2024.01.01_09.00.00\nfoo-bar\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, tags.ErrMalformedTag)
	assert.Contains(t, err.Error(), "foo-bar")
	assert.Empty(t, out.String(), "no partial report")
}

func TestAnalyzeRun_Empty(t *testing.T) {
	_, out := testEnv(t)

	err := analyzeRun(writeTags(t, "submission-1\n"))
	assert.ErrorIs(t, err, tags.ErrEmptyInput)
	assert.Empty(t, out.String())
}

func TestAnalyzeRun_MissingFile(t *testing.T) {
	testEnv(t)

	err := analyzeRun(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, source.ErrSourceUnavailable))
	assert.Contains(t, err.Error(), "Try again")
}

func TestAnalyzeRun_InvalidConfig(t *testing.T) {
	testEnv(t)
	viper.Set("session.break_threshold", "0s")

	err := analyzeRun(writeTags(t, exampleTags))
	assert.ErrorIs(t, err, sessions.ErrInvalidConfig)
}

func TestAnalyzeRun_UnknownFormat(t *testing.T) {
	testEnv(t)
	viper.Set("output.format", "xml")

	err := analyzeRun(writeTags(t, exampleTags))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestAnalyzeRun_LocalRepo(t *testing.T) {
	_, out := testEnv(t)
	dir := t.TempDir()
	cmds := [][]string{
		{"git", "-C", dir, "init"},
		{"git", "-C", dir, "config", "user.email", "test@test.com"},
		{"git", "-C", dir, "config", "user.name", "Test"},
		{"git", "-C", dir, "commit", "--allow-empty", "-m", "init"},
		{"git", "-C", dir, "tag", "compile-2024.01.01_09.00.00"},
		{"git", "-C", dir, "tag", "compile-2024.01.01_09.30.00"},
		{"git", "-C", dir, "tag", "compile-2024.01.01_14.00.00"},
		{"git", "-C", dir, "tag", "submission-1"},
	}
	for _, args := range cmds {
		require.NoError(t, exec.Command(args[0], args[1:]...).Run())
	}
	viper.Set("output.format", output.FormatJSON)

	require.NoError(t, analyzeRun(dir))

	var v output.ReportView
	require.NoError(t, json.Unmarshal(out.Bytes(), &v))
	assert.Equal(t, 3, v.Compiles)
	assert.Equal(t, int64(3000), v.Total.Seconds)
}

func TestAnalyzeRun_Remote(t *testing.T) {
	_, out := testEnv(t)
	dir := t.TempDir()
	cmds := [][]string{
		{"git", "-C", dir, "init"},
		{"git", "-C", dir, "config", "user.email", "test@test.com"},
		{"git", "-C", dir, "config", "user.name", "Test"},
		{"git", "-C", dir, "commit", "--allow-empty", "-m", "init"},
		{"git", "-C", dir, "tag", "compile-2024.01.01_09.00.00"},
		{"git", "-C", dir, "tag", "-a", "submission-1", "-m", "submit"},
	}
	for _, args := range cmds {
		require.NoError(t, exec.Command(args[0], args[1:]...).Run())
	}
	remote = true
	viper.Set("output.format", output.FormatJSON)

	require.NoError(t, analyzeRun(dir))

	var v output.ReportView
	require.NoError(t, json.Unmarshal(out.Bytes(), &v))
	assert.Equal(t, 1, v.Compiles)
	assert.Equal(t, int64(600), v.Total.Seconds)
}

func TestAnalyzeRun_RepoSubdirectory(t *testing.T) {
	_, out := testEnv(t)
	dir := filepath.Join(t.TempDir(), "hw3")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0755))
	cmds := [][]string{
		{"git", "-C", dir, "init"},
		{"git", "-C", dir, "config", "user.email", "test@test.com"},
		{"git", "-C", dir, "config", "user.name", "Test"},
		{"git", "-C", dir, "commit", "--allow-empty", "-m", "init"},
		{"git", "-C", dir, "tag", "compile-2024.01.01_09.00.00"},
	}
	for _, args := range cmds {
		require.NoError(t, exec.Command(args[0], args[1:]...).Run())
	}
	viper.Set("output.format", output.FormatJSON)

	require.NoError(t, analyzeRun(filepath.Join(dir, "src")))

	var v output.ReportView
	require.NoError(t, json.Unmarshal(out.Bytes(), &v))
	assert.Equal(t, "hw3", v.Source)
	assert.Equal(t, 1, v.Compiles)
}

func TestReportError(t *testing.T) {
	testEnv(t)
	errOut := &bytes.Buffer{}
	ui.ErrOut = errOut

	reportError(errors.New("couldn't open file tags.txt"))
	assert.Contains(t, errOut.String(), "Error: couldn't open file tags.txt")
	assert.Empty(t, ui.Out.(*bytes.Buffer).String())
}

func TestReportError_NoUI(t *testing.T) {
	testEnv(t)
	ui = nil
	t.Cleanup(func() { ui = nil })

	reportError(errors.New("unknown flag: --bogus"))
	require.NotNil(t, ui)
}
