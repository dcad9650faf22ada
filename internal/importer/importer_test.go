package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VolumeSniper/internal/model"
	"VolumeSniper/internal/store"
)

func testStore(t *testing.T) *store.SQLite {
	t.Helper()
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestImportFile(t *testing.T) {
	s := testStore(t)
	dir := t.TempDir()
	writeCSV(t, dir, "gp.csv",
		"date,open,high,low,close,volume\n"+
			"2025-06-09,100,101,99,100.5,150000\n"+
			"2025-06-10,100.5,103,100,102,\"250,000\"\n")

	n, err := ImportFile(s, filepath.Join(dir, "gp.csv"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	bars, err := s.Bars("GP")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.True(t, bars[0].Final, "imported history is final")
	assert.Equal(t, int64(250000), bars[1].Volume, "thousands separators accepted")
	assert.Equal(t, 102.0, bars[1].Close)
}

func TestImportDir_IsolatesBadFiles(t *testing.T) {
	s := testStore(t)
	dir := t.TempDir()
	writeCSV(t, dir, "good.csv", "2025-06-09,100,101,99,100.5,150000\n")
	writeCSV(t, dir, "bad.csv", "2025-06-09,not-a-price,101,99,100.5,150000\n")

	res, err := ImportDir(s, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Files)
	assert.Equal(t, 1, res.Records)
	assert.Equal(t, []string{"bad.csv"}, res.Failed)

	bars, err := s.Bars("GOOD")
	require.NoError(t, err)
	assert.Len(t, bars, 1)
}

func TestImportDir_EmptyDir(t *testing.T) {
	_, err := ImportDir(testStore(t), t.TempDir())
	assert.Error(t, err)
}

func TestParseBar_Errors(t *testing.T) {
	_, err := parseBar([]string{"June 9", "100", "101", "99", "100.5", "150000"})
	assert.Error(t, err)
	_, err = parseBar([]string{"2025-06-09", "100", "101", "99", "100.5", "lots"})
	assert.Error(t, err)
	_, err = parseBar([]string{"2025-06-09", "100", "101", "99", "100.5", "150000"})
	assert.NoError(t, err)

	bar, err := parseBar([]string{"2025-06-09", "100", "101", "99", "100.5", "150000"})
	require.NoError(t, err)
	assert.Equal(t, model.Bar{
		Date: bar.Date, Open: 100, High: 101, Low: 99, Close: 100.5,
		Volume: 150000, Final: true,
	}, bar)
}
