package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportXYZWithHeader(t *testing.T) {
	path := writeTempFile(t, "site.csv", "X,Y,Z\n0,0,100\n1000,0,110\n0,1000,105\n")
	res := ImportXYZ(path)

	require.Empty(t, res.Errors)
	require.Len(t, res.Points, 3)
	assert.Equal(t, 110.0, res.Points[1].Z)
	assert.Contains(t, strings.Join(res.Warnings, " "), "header")
}

func TestImportXYZHeaderAliases(t *testing.T) {
	path := writeTempFile(t, "site.csv", "Easting,Northing,Elevation\n100,200,5\n300,400,6\n500,100,7\n")
	res := ImportXYZ(path)

	require.Empty(t, res.Errors)
	require.Len(t, res.Points, 3)
	assert.Equal(t, 100.0, res.Points[0].X)
	assert.Equal(t, 200.0, res.Points[0].Y)
	assert.Equal(t, 5.0, res.Points[0].Z)
}

func TestImportXYZNoHeader(t *testing.T) {
	path := writeTempFile(t, "site.xyz", "0,0,100\n1000,0,110\n0,1000,105\n")
	res := ImportXYZ(path)

	require.Empty(t, res.Errors)
	assert.Len(t, res.Points, 3)
}

func TestImportXYZSpaceDelimited(t *testing.T) {
	path := writeTempFile(t, "site.xyz", "0 0 100\n1000  0 110\n0\t1000 105\n")
	res := ImportXYZ(path)

	require.Empty(t, res.Errors)
	require.Len(t, res.Points, 3)
	assert.Equal(t, 1000.0, res.Points[1].X)
}

func TestImportXYZSemicolonDelimiter(t *testing.T) {
	path := writeTempFile(t, "site.csv", "0;0;100\n1000;0;110\n0;1000;105\n")
	res := ImportXYZ(path)

	require.Empty(t, res.Errors)
	assert.Len(t, res.Points, 3)
	assert.Contains(t, strings.Join(res.Warnings, " "), "semicolon")
}

func TestImportXYZDuplicatePositions(t *testing.T) {
	path := writeTempFile(t, "site.csv", "0,0,100\n0,0,200\n1000,0,110\n0,1000,105\n")
	res := ImportXYZ(path)

	require.Empty(t, res.Errors)
	assert.Len(t, res.Points, 3, "duplicate (x, y) keeps the first elevation")
	assert.Equal(t, 100.0, res.Points[0].Z)
	assert.Contains(t, strings.Join(res.Warnings, " "), "Duplicate")
}

func TestImportXYZBadRowsAreSkipped(t *testing.T) {
	path := writeTempFile(t, "site.csv", "0,0,100\nabc,0,110\n1000,0\n0,1000,105\n")
	res := ImportXYZ(path)

	assert.Len(t, res.Points, 2)
	assert.Len(t, res.Errors, 2)
}

func TestImportXYZEmptyFile(t *testing.T) {
	path := writeTempFile(t, "empty.csv", "  \n")
	res := ImportXYZ(path)

	assert.Empty(t, res.Points)
	assert.NotEmpty(t, res.Errors)
}

func TestImportXYZMissingFile(t *testing.T) {
	res := ImportXYZ(filepath.Join(t.TempDir(), "nope.csv"))
	assert.NotEmpty(t, res.Errors)
}

func TestImportFromReader(t *testing.T) {
	res := ImportFromReader(strings.NewReader("x,y,z\n1,2,3\n4,5,6\n"), ',')
	require.Empty(t, res.Errors)
	assert.Len(t, res.Points, 2)
}

func TestDetectCSVDelimiter(t *testing.T) {
	cases := map[string]rune{
		"a,b,c\n1,2,3\n":   ',',
		"a;b;c\n1;2;3\n":   ';',
		"a\tb\tc\n1\t2\t3": '\t',
		"1 2 3\n4 5 6\n":   ' ',
	}
	for data, want := range cases {
		assert.Equal(t, want, DetectCSVDelimiter([]byte(data)), "data %q", data)
	}
}

func TestDetectColumns(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Northing", "Easting", "Alt"})
	assert.True(t, isHeader)
	assert.Equal(t, 1, mapping.X)
	assert.Equal(t, 0, mapping.Y)
	assert.Equal(t, 2, mapping.Z)

	mapping, isHeader = DetectColumns([]string{"1.5", "2.5", "3.5"})
	assert.False(t, isHeader)
	assert.Equal(t, ColumnMapping{X: 0, Y: 1, Z: 2}, mapping)
}
