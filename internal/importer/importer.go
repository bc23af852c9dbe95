// Package importer reads survey point files into terrain sample points.
// It supports plain XYZ text, delimited CSV with automatic delimiter
// detection, and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/terrasolar/rackplan/internal/model"
)

// ImportResult holds the results of an import operation. Errors are
// per-row: a bad row is reported and skipped, not fatal.
type ImportResult struct {
	Points   []model.Point3
	Errors   []string
	Warnings []string
}

// ColumnMapping maps coordinate roles to their indices in the data.
type ColumnMapping struct {
	X int
	Y int
	Z int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"x": {"x", "easting", "east", "e", "lon", "longitude"},
	"y": {"y", "northing", "north", "n", "lat", "latitude"},
	"z": {"z", "elevation", "elev", "alt", "altitude", "height", "h"},
}

// DetectCSVDelimiter reads the file content and determines the most likely
// delimiter. It tries comma, semicolon, tab, pipe, and space. The delimiter
// that produces the most consistent multi-column split across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|', ' '}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		records, err := readAll(bytes.NewReader(data), delim)
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each
// coordinate role. Returns the mapping and true if a header was detected,
// or the default positional X, Y, Z mapping and false if not.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{X: -1, Y: -1, Z: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "x":
					if mapping.X == -1 {
						mapping.X = i
					}
				case "y":
					if mapping.Y == -1 {
						mapping.Y = i
					}
				case "z":
					if mapping.Z == -1 {
						mapping.Z = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{X: 0, Y: 1, Z: 2}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts a survey point from a row using the given column mapping.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (model.Point3, string) {
	coords := [3]float64{}
	for i, idx := range []int{mapping.X, mapping.Y, mapping.Z} {
		name := [3]string{"x", "y", "z"}[i]
		s := getCell(row, idx)
		if s == "" {
			return model.Point3{}, fmt.Sprintf("%s: Missing %s value", rowLabel, name)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.Point3{}, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, name, s)
		}
		coords[i] = v
	}
	return model.Point3{X: coords[0], Y: coords[1], Z: coords[2]}, ""
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportXYZ imports survey points from a delimited text file (.xyz, .csv,
// .txt). It automatically detects the delimiter and maps columns by header
// names when a header row is present.
func ImportXYZ(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe", ' ': "space"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := readAll(bytes.NewReader(data), delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read file: %v", err))
		return result
	}
	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, result.Warnings)
}

// ImportFromReader imports survey points from a reader with a known
// delimiter. Useful for testing or piped input.
func ImportFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	records, err := readAll(reader, delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read file: %v", err))
		return result
	}
	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, nil)
}

// readAll parses delimited text into rows. Space-delimited files collapse
// runs of whitespace, which encoding/csv cannot do, so they get a manual
// splitter.
func readAll(r io.Reader, delimiter rune) ([][]string, error) {
	if delimiter == ' ' {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		var rows [][]string
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
			if line == "" {
				continue
			}
			rows = append(rows, strings.Fields(line))
		}
		return rows, nil
	}

	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// importFromRows is the shared parsing logic. It detects headers, maps
// columns, parses each row, and flags duplicate (x, y) positions since
// those collapse during triangulation.
func importFromRows(rows [][]string, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.X == -1 {
			missing = append(missing, "X")
		}
		if mapping.Y == -1 {
			missing = append(missing, "Y")
		}
		if mapping.Z == -1 {
			missing = append(missing, "Z")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][0]), 64); err != nil {
			// Non-numeric first cell with no recognized aliases: treat as an
			// unknown header and fall back to positional mapping.
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	seen := make(map[[2]float64]bool)
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("Line %d", i+1)
		pt, errMsg := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}

		key := [2]float64{pt.X, pt.Y}
		if seen[key] {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: Duplicate position (%g, %g), keeping first elevation", rowLabel, pt.X, pt.Y))
			continue
		}
		seen[key] = true
		result.Points = append(result.Points, pt)
	}

	return result
}
