package records

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrRecordsRead means the records file could not be read or parsed.
var ErrRecordsRead = errors.New("records: read failed")

// LoadRecords reads the seed records at path. Supported layouts:
//
//   - .json: an array of objects, or an object keyed by document id
//   - .csv: a header row followed by one record per line
//   - .xlsx: the first sheet, laid out like the CSV
//
// Each record's id comes from idField (or the object key for keyed JSON).
// CSV and XLSX values are kept as strings.
func LoadRecords(path, idField string) ([]*Document, error) {
	if idField == "" {
		idField = "id"
	}

	var (
		rows []map[string]interface{}
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path, idField)
	case ".csv":
		rows, err = loadCSV(path)
	case ".xlsx":
		rows, err = loadXLSX(path)
	default:
		return nil, fmt.Errorf("%w: unsupported records format %q", ErrRecordsRead, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRecordsRead, path, err)
	}
	return withIDs(rows, idField)
}

func loadJSON(path, idField string) ([]*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecordsRead, err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var keyed map[string]map[string]interface{}
		if err := json.Unmarshal(data, &keyed); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrRecordsRead, path, err)
		}
		ids := make([]string, 0, len(keyed))
		for id := range keyed {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		docs := make([]*Document, 0, len(ids))
		for _, id := range ids {
			docs = append(docs, &Document{ID: id, Data: keyed[id]})
		}
		return docs, nil
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRecordsRead, path, err)
	}
	return withIDs(rows, idField)
}

func loadCSV(path string) ([]map[string]interface{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	buffered := bufio.NewReader(file)
	if mark, _ := buffered.Peek(len(utf8BOM)); bytes.Equal(mark, utf8BOM) {
		_, _ = buffered.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var rows []map[string]interface{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		rows = append(rows, rowFromCells(header, record))
	}
	return rows, nil
}

// utf8BOM is written by spreadsheet "CSV UTF-8" exports ahead of the header.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func trimBOM(header []string) {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
}

func rowFromCells(header, cells []string) map[string]interface{} {
	row := make(map[string]interface{}, len(header))
	for i, col := range header {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		value := ""
		if i < len(cells) {
			value = strings.TrimSpace(cells[i])
		}
		row[col] = value
	}
	return row
}

func withIDs(rows []map[string]interface{}, idField string) ([]*Document, error) {
	docs := make([]*Document, 0, len(rows))
	for i, row := range rows {
		raw, ok := row[idField]
		if !ok || raw == nil {
			return nil, fmt.Errorf("%w: record %d has no %q field", ErrRecordsRead, i, idField)
		}
		id := strings.TrimSpace(fmt.Sprint(raw))
		if id == "" {
			return nil, fmt.Errorf("%w: record %d has an empty %q field", ErrRecordsRead, i, idField)
		}
		docs = append(docs, &Document{ID: id, Data: row})
	}
	return docs, nil
}
