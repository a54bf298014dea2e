package results

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/samaralitalim/answersheet/internal/models"
	"gopkg.in/yaml.v3"
)

// Record is a flat row describing one finished submission
type Record struct {
	SubmissionID  string `json:"submission_id" yaml:"submissionid" parquet:"submission_id"`
	CatalogID     int64  `json:"catalog_id" yaml:"catalogid" parquet:"catalog_id"`
	CatalogName   string `json:"catalog_name,omitempty" yaml:"catalogname,omitempty" parquet:"catalog_name"`
	Mode          string `json:"mode" yaml:"mode" parquet:"mode"`
	State         string `json:"state" yaml:"state" parquet:"state"`
	Graded        bool   `json:"graded" yaml:"graded" parquet:"graded"`
	Score         string `json:"score,omitempty" yaml:"score,omitempty" parquet:"score"`
	Response      string `json:"response,omitempty" yaml:"response,omitempty" parquet:"response"`
	Error         string `json:"error,omitempty" yaml:"error,omitempty" parquet:"error"`
	Attempts      int64  `json:"attempts" yaml:"attempts" parquet:"attempts"`
	ImageFilename string `json:"image_filename" yaml:"imagefilename" parquet:"image_filename"`
	SubmittedAt   string `json:"submitted_at" yaml:"submittedat" parquet:"submitted_at"`
}

// Format is a results file encoding
type Format string

const (
	FormatYAML    Format = "yaml"
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
)

// FromSubmission flattens a submission into a record
func FromSubmission(s *models.Submission) Record {
	r := Record{
		SubmissionID:  s.ID,
		CatalogID:     int64(s.CatalogID),
		CatalogName:   s.CatalogName,
		Mode:          string(s.Mode),
		State:         string(s.State),
		Error:         s.Error,
		Attempts:      int64(s.Attempts),
		ImageFilename: s.ImageFilename,
		SubmittedAt:   s.CreatedAt.UTC().Format(time.RFC3339),
	}
	if s.Result != nil {
		r.Graded = s.Result.Graded
		r.Score = s.Result.Score
		r.Response = s.Result.Raw
	}
	return r
}

// FormatFromPath picks the encoding from the file extension
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}

// ParseFormat converts a format name such as "yml" or "parquet"
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("unsupported results format: %q (supported: yaml, json, parquet)", s)
	}
}

// Write saves records to path, choosing the encoding from the extension
func Write(path string, records []Record) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create results directory: %w", err)
		}
	}

	if format == FormatParquet {
		if err := parquet.WriteFile(path, records); err != nil {
			return fmt.Errorf("failed to write parquet file: %w", err)
		}
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer file.Close()

	if err := Encode(file, format, records); err != nil {
		return err
	}
	return file.Close()
}

// Encode writes records to w in the given format
func Encode(w io.Writer, format Format, records []Record) error {
	if records == nil {
		records = []Record{}
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return nil
	case FormatParquet:
		pw := parquet.NewGenericWriter[Record](w)
		if _, err := pw.Write(records); err != nil {
			return fmt.Errorf("failed to write parquet rows: %w", err)
		}
		if err := pw.Close(); err != nil {
			return fmt.Errorf("failed to finalize parquet: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported results format: %q", format)
	}
}

// Read loads records previously written by Write
func Read(path string) ([]Record, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	if format == FormatParquet {
		records, err := parquet.ReadFile[Record](path)
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet file: %w", err)
		}
		return records, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var records []Record
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &records)
	case FormatJSON:
		err = json.Unmarshal(data, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s results: %w", format, err)
	}
	return records, nil
}
