package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gospc/domain/dataset"
	"gospc/internal"
	"gospc/ports"

	"github.com/xuri/excelize/v2"
)

// Categorical detection thresholds: few distinct values relative to the row count
const (
	maxCategoricalLevels = 20
	maxCategoricalRatio  = 0.1
	numericThreshold     = 0.9
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
	logger   *internal.Logger
}

var _ ports.TableReader = (*DataReader)(nil)

// Option configures a DataReader
type Option func(*DataReader)

// WithSheet reads the named worksheet instead of the first one
func WithSheet(name string) Option {
	return func(r *DataReader) { r.sheet = name }
}

// WithLogger replaces the default logger
func WithLogger(logger *internal.Logger) Option {
	return func(r *DataReader) { r.logger = logger }
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string, opts ...Option) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	r := &DataReader{filePath: filePath, fileType: fileType, logger: internal.DefaultLogger}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("DataReader")
	return r
}

// Path returns the file the reader loads
func (r *DataReader) Path() string {
	return r.filePath
}

// ReadTable reads the file and coerces cells into a dataset table
func (r *DataReader) ReadTable(ctx context.Context) (*dataset.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	return ToTable(data), nil
}

// ReadData reads data from Excel or CSV files into raw string rows
func (r *DataReader) ReadData() (*ExcelData, error) {
	r.logger.Info("Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

func (r *DataReader) readExcelData() (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	r.logger.Debug("Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("Excel file has no worksheets")
		}
		sheet = sheets[0]
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	r.logger.Debug("%s read in %.2fms (%d rows)", sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

func (r *DataReader) readCSVData() (*ExcelData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.logger.Debug("CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// processRows converts raw string rows into ExcelData format
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowData := make(RawRowData)

		for j, cell := range row {
			if j < len(headers) && headers[j] != "" {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}

		dataRows = append(dataRows, rowData)
	}

	r.logger.Info("%s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &ExcelData{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

// ToTable coerces raw cells: numeric text becomes float64, other text stays a
// string, and empty cells are left out of the row so they read as missing.
func ToTable(data *ExcelData) *dataset.Table {
	table := &dataset.Table{
		Headers: append([]string(nil), data.Headers...),
		Rows:    make([]dataset.Row, len(data.Rows)),
	}
	for i, raw := range data.Rows {
		row := make(dataset.Row, len(raw))
		for col, cell := range raw {
			if cell == "" {
				continue
			}
			if f, err := strconv.ParseFloat(cell, 64); err == nil {
				row[col] = f
				continue
			}
			row[col] = cell
		}
		table.Rows[i] = row
	}
	return table
}

// InferColumnKinds classifies every column. A column is numeric when most
// non-empty cells parse as numbers, unless it has only a handful of distinct
// values, in which case it is treated as a categorical code.
func InferColumnKinds(data *ExcelData) map[string]ColumnKind {
	kinds := make(map[string]ColumnKind, len(data.Headers))
	for _, header := range data.Headers {
		if header == "" {
			continue
		}
		unique := make(map[string]bool)
		valid, numeric := 0, 0
		for _, row := range data.Rows {
			cell := row[header]
			if cell == "" {
				continue
			}
			valid++
			unique[cell] = true
			if _, err := strconv.ParseFloat(cell, 64); err == nil {
				numeric++
			}
		}

		if valid == 0 {
			kinds[header] = KindText
			continue
		}
		lowCardinality := len(unique) <= maxCategoricalLevels &&
			(float64(len(unique))/float64(valid) < maxCategoricalRatio || float64(numeric)/float64(valid) < numericThreshold)

		switch {
		case float64(numeric)/float64(valid) >= numericThreshold && !lowCardinality:
			kinds[header] = KindNumeric
		case lowCardinality:
			kinds[header] = KindCategorical
		default:
			kinds[header] = KindText
		}
	}
	return kinds
}

// SuggestColumns picks the first numeric column as outcome and every
// categorical column as a factor, in header order
func SuggestColumns(data *ExcelData) (outcome string, factors []string) {
	kinds := InferColumnKinds(data)
	for _, header := range data.Headers {
		switch kinds[header] {
		case KindNumeric:
			if outcome == "" {
				outcome = header
			}
		case KindCategorical:
			factors = append(factors, header)
		}
	}
	return outcome, factors
}
