package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.CSV", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755))

	fm := NewFileManager(dir, t.TempDir(), t.TempDir())
	files, err := fm.DiscoverInputFiles("")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.CSV"), filepath.Join(dir, "b.csv")}, files)

	_, err = NewFileManager(filepath.Join(dir, "missing"), "", "").DiscoverInputFiles("")
	assert.Error(t, err)
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{original}_{report}_{uuid}", map[string]string{
		"original": "slips",
		"report":   "wards",
		"uuid":     "run-1",
	}, ".csv")
	assert.Equal(t, "slips_wards_run-1.csv", name)

	name = GenerateOutputFileName("{uuid}.xlsx", nil, ".xlsx")
	assert.True(t, strings.HasSuffix(name, ".xlsx"))
	assert.Len(t, strings.TrimSuffix(name, ".xlsx"), 36)
	assert.NotContains(t, name, "{")
}

func TestArchiveInputFile(t *testing.T) {
	in := t.TempDir()
	archive := filepath.Join(t.TempDir(), "archive")
	src := filepath.Join(in, "slips.csv")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0o644))

	fm := NewFileManager(in, t.TempDir(), archive)
	path, err := fm.ArchiveInputFile(src)
	require.NoError(t, err)
	assert.Equal(t, src, path, "archiving disabled")
	assert.FileExists(t, src)

	fm.ArchiveOnSuccess = true
	require.NoError(t, fm.EnsureDirectories())
	path, err = fm.ArchiveInputFile(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(archive, "slips.csv"), path)
	assert.NoFileExists(t, src)
	assert.FileExists(t, path)
}

func TestCreateOutputFileNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	fm := NewFileManager("", dir, "")

	var paths []string
	for i := 0; i < 3; i++ {
		f, path, err := fm.CreateOutputFile("report.json")
		require.NoError(t, err)
		_, err = f.WriteString(fmt.Sprint(i))
		require.NoError(t, err)
		require.NoError(t, f.Close())
		paths = append(paths, filepath.Base(path))
	}
	assert.Equal(t, []string{"report.json", "report_1.json", "report_2.json"}, paths)
	assert.Equal(t, "report_1", BaseName(paths[1]))

	data, err := os.ReadFile(filepath.Join(dir, "report.json"))
	require.NoError(t, err)
	assert.Equal(t, "0", string(data))

	_, _, err = NewFileManager("", filepath.Join(dir, "absent"), "").CreateOutputFile("report.json")
	assert.Error(t, err)
}

func TestWriteLogs(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteErrorLog(nil, dir)
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = WriteErrorLog([]ErrorLogEntry{{
		Timestamp: time.Now(), FileName: "bad.csv", ErrorType: "schema", ErrorMessage: "missing Date",
	}}, dir)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "missing Date")

	start := time.Now()
	path, err = WriteSummaryLog(ProcessingSummary{
		StartTime: start, EndTime: start.Add(time.Second),
		TotalFiles: 2, SuccessfulFiles: 1, FailedFiles: 1,
		ProcessedFiles:  []ProcessedFileInfo{{InputFile: "ok.csv", OutputFiles: []string{"ok_report.xlsx"}, Records: 10}},
		FailedFilesList: []FailedFileInfo{{InputFile: "bad.csv", ErrorMessage: "boom"}},
	}, dir)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ok_report.xlsx")
	assert.Contains(t, string(data), "boom")
}
