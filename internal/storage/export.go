package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rhystmorgan/contactterm/internal/models"
)

type ExportFormat int

const (
	FormatJSON ExportFormat = iota
	FormatCSV
)

const exportVersion = "1.0"

// ParseExportFormat maps a format name to an ExportFormat.
func ParseExportFormat(name string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return 0, fmt.Errorf("unsupported export format %q", name)
	}
}

func (f ExportFormat) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

type exportDocument struct {
	ExportedAt    time.Time        `json:"exported_at"`
	Version       string           `json:"version"`
	TotalContacts int              `json:"total_contacts"`
	Contacts      []models.Contact `json:"contacts"`
}

// ContactExporter writes a snapshot of the contact collection.
type ContactExporter struct {
	format ExportFormat
	now    func() time.Time
}

func NewContactExporter(format ExportFormat) *ContactExporter {
	return &ContactExporter{format: format, now: time.Now}
}

// ExportFile writes contacts to path, replacing any existing file.
func (e *ContactExporter) ExportFile(path string, contacts []models.Contact) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := e.Export(file, contacts); err != nil {
		return err
	}
	return file.Close()
}

func (e *ContactExporter) Export(w io.Writer, contacts []models.Contact) error {
	switch e.format {
	case FormatJSON:
		return e.exportJSON(w, contacts)
	case FormatCSV:
		return e.exportCSV(w, contacts)
	default:
		return fmt.Errorf("unsupported export format")
	}
}

func (e *ContactExporter) exportJSON(w io.Writer, contacts []models.Contact) error {
	if contacts == nil {
		contacts = []models.Contact{}
	}

	doc := exportDocument{
		ExportedAt:    e.now().UTC(),
		Version:       exportVersion,
		TotalContacts: len(contacts),
		Contacts:      contacts,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func (e *ContactExporter) exportCSV(w io.Writer, contacts []models.Contact) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"id", "name", "phone", "email"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, contact := range contacts {
		record := []string{contact.ID, contact.Name, contact.Phone, contact.Email}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
