// Package excel imports learnable items from spreadsheets.
package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/example/lingua/pkg/models"
)

// ImportConfig defines the import configuration. Column fields hold
// spreadsheet letters; an empty column is not imported.
type ImportConfig struct {
	FilePath          string          // Path to the Excel or CSV file
	Kind              models.ItemKind // Kind used when KindColumn is empty or blank in a row
	KindColumn        string
	TextColumn        string
	TranslationColumn string
	StructureColumn   string
	TopicColumn       string
	VerbGroupColumn   string
	TenseColumn       string
	PersonColumn      string
	SheetName         string // Excel only, defaults to the first sheet
	StartRow          int    // The row to start importing from (1-based index)
	TopicHeaders      bool   // Rows with only the text cell filled set the topic of the rows below
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		Kind:              models.KindVocab,
		TextColumn:        "A",
		TranslationColumn: "B",
		TopicColumn:       "C",
		StructureColumn:   "D",
		VerbGroupColumn:   "E",
		TenseColumn:       "F",
		PersonColumn:      "G",
		StartRow:          2, // By default, start from the second row (skip header)
		TopicHeaders:      true,
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// ItemUpserter stores imported items, matching existing ones by kind and text
type ItemUpserter interface {
	Upsert(ctx context.Context, item *models.LearnableItem) (bool, error)
}

// Importer reads items from files into a store
type Importer struct {
	items  ItemUpserter
	logger *logrus.Logger
}

// NewImporter creates a new importer
func NewImporter(items ItemUpserter, logger *logrus.Logger) *Importer {
	return &Importer{items: items, logger: logger}
}

type columns struct {
	kind, text, translation, structure, topic, verbGroup, tense, person int
}

func resolveColumns(cfg ImportConfig) (columns, error) {
	var cols columns
	fields := []struct {
		name   string
		letter string
		index  *int
	}{
		{"kind", cfg.KindColumn, &cols.kind},
		{"text", cfg.TextColumn, &cols.text},
		{"translation", cfg.TranslationColumn, &cols.translation},
		{"structure", cfg.StructureColumn, &cols.structure},
		{"topic", cfg.TopicColumn, &cols.topic},
		{"verb group", cfg.VerbGroupColumn, &cols.verbGroup},
		{"tense", cfg.TenseColumn, &cols.tense},
		{"person", cfg.PersonColumn, &cols.person},
	}
	for _, f := range fields {
		*f.index = -1
		if f.letter == "" {
			continue
		}
		n, err := excelize.ColumnNameToNumber(strings.ToUpper(f.letter))
		if err != nil {
			return cols, fmt.Errorf("invalid %s column %q: %w", f.name, f.letter, err)
		}
		*f.index = n - 1
	}
	if cols.text < 0 {
		return cols, errors.New("text column is required")
	}
	return cols, nil
}

// Import reads the file named in cfg and upserts every item in it. Row
// problems are collected in the result; only unreadable files fail the import.
func (im *Importer) Import(ctx context.Context, cfg ImportConfig) (*ImportResult, error) {
	if cfg.KindColumn == "" && !cfg.Kind.Valid() {
		return nil, models.ErrInvalidKind
	}
	cols, err := resolveColumns(cfg)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	// Check the file extension
	if strings.ToLower(filepath.Ext(cfg.FilePath)) == ".csv" {
		rows, err = readCSV(cfg.FilePath)
	} else {
		rows, err = readExcel(cfg.FilePath, cfg.SheetName)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	currentTopic := ""
	for i, row := range rows {
		rowNum := i + 1
		// Skip header rows
		if rowNum < cfg.StartRow {
			continue
		}
		if isBlank(row) {
			result.Skipped++
			continue
		}
		if cfg.TopicHeaders && isTopicHeader(row, cols.text) {
			currentTopic = strings.Trim(strings.TrimSpace(row[cols.text]), "\"")
			continue
		}

		result.TotalProcessed++
		if err := im.processRow(ctx, row, cols, cfg.Kind, currentTopic, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}

	im.logger.WithFields(logrus.Fields{
		"file":    cfg.FilePath,
		"created": result.Created,
		"updated": result.Updated,
		"errors":  len(result.Errors),
	}).Info("Import finished")
	return result, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (im *Importer) processRow(ctx context.Context, row []string, cols columns, defaultKind models.ItemKind, currentTopic string, result *ImportResult) error {
	kind := defaultKind
	if raw := cell(row, cols.kind); raw != "" {
		parsed, err := models.ParseItemKind(raw)
		if err != nil {
			return fmt.Errorf("%w: %q", err, raw)
		}
		kind = parsed
	}
	if !kind.Valid() {
		return models.ErrInvalidKind
	}

	item := models.LearnableItem{
		Kind:        kind,
		Text:        cell(row, cols.text),
		Translation: cell(row, cols.translation),
		Structure:   cell(row, cols.structure),
		Topic:       cell(row, cols.topic),
		VerbGroup:   cell(row, cols.verbGroup),
		Tense:       cell(row, cols.tense),
		Person:      cell(row, cols.person),
	}
	if kind == models.KindVocab {
		item.Text = cleanWord(item.Text)
		item.Translation = cleanWord(item.Translation)
	}
	if item.Topic == "" {
		item.Topic = currentTopic
	}

	if item.Text == "" {
		return errors.New("text cannot be empty")
	}
	if kind == models.KindVocab && item.Translation == "" {
		return errors.New("translation cannot be empty")
	}

	created, err := im.items.Upsert(ctx, &item)
	if err != nil {
		return fmt.Errorf("failed to store item: %w", err)
	}
	if created {
		result.Created++
	} else {
		result.Updated++
	}
	return nil
}

func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// isTopicHeader matches rows like "Movement,," where only the text cell is filled
func isTopicHeader(row []string, textIndex int) bool {
	if cell(row, textIndex) == "" {
		return false
	}
	for i, v := range row {
		if i != textIndex && strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// cleanWord drops trailing details in parentheses, e.g. "go (went, gone)"
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		return strings.TrimSpace(word[:i])
	}
	return strings.TrimSpace(word)
}
