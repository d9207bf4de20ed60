// Package extractor turns uploaded statement files into engine documents.
package extractor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/insightdelivered/statement-parser/internal/models"
)

var (
	// ErrUnsupportedFile means the file type has no loader.
	ErrUnsupportedFile = errors.New("unsupported file type")
	// ErrUnreadable means the file could not be decoded into text.
	ErrUnreadable = errors.New("unreadable statement file")
)

// KindForName picks the document kind from a file extension.
func KindForName(name string) (models.Kind, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return models.KindDelimited, nil
	case ".xlsx", ".xlsm":
		return models.KindSpreadsheet, nil
	case ".pdf":
		return models.KindPaged, nil
	case ".txt", ".text":
		return models.KindText, nil
	}
	return "", fmt.Errorf("%w: %q (expected .csv, .xlsx, .pdf or .txt)", ErrUnsupportedFile, filepath.Ext(name))
}

// Load reads a file's content as the kind its name implies.
func Load(name string, data []byte) (models.Document, error) {
	kind, err := KindForName(name)
	if err != nil {
		return models.Document{}, err
	}
	return LoadKind(kind, name, data)
}

// LoadKind reads content as an explicit kind, ignoring the file name. A PDF
// whose text layer has no usable positions comes back as a text document.
func LoadKind(kind models.Kind, name string, data []byte) (models.Document, error) {
	switch kind {
	case models.KindDelimited, models.KindText:
		if !utf8.Valid(data) {
			return models.Document{}, fmt.Errorf("%w: %s is not UTF-8 text", ErrUnreadable, name)
		}
		text := strings.TrimPrefix(string(data), "\ufeff")
		return models.Document{Kind: kind, Name: name, Text: text}, nil
	case models.KindSpreadsheet:
		return Spreadsheet(name, data)
	case models.KindPaged:
		return PDF(name, data)
	}
	return models.Document{}, fmt.Errorf("%w: kind %q", ErrUnsupportedFile, kind)
}
