// Package metadata resolves instrument codes to company names from static
// Code,Name CSV lists, one for Korean and one for US listings.
package metadata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/trogers1052/portfolio-tracker/internal/models"
)

// Lookup holds the loaded code to name tables
type Lookup struct {
	kr map[string]string
	us map[string]string
}

// Load reads the Korean and US lists. A path that is empty or does not exist
// yields an empty table.
func Load(krPath, usPath string) (*Lookup, error) {
	kr, err := loadFile(krPath)
	if err != nil {
		return nil, err
	}
	us, err := loadFile(usPath)
	if err != nil {
		return nil, err
	}
	return &Lookup{kr: kr, us: us}, nil
}

// CompanyName returns the listed name for an exact code match. Korean
// numeric codes are looked up in the KR list, everything else in the US list.
func (l *Lookup) CompanyName(ticker string) (string, bool) {
	ticker = strings.TrimSpace(ticker)
	table := l.us
	if models.IsKoreanTicker(ticker) {
		table = l.kr
	}
	name, ok := table[ticker]
	return name, ok
}

// Len returns the number of KR and US entries
func (l *Lookup) Len() (kr, us int) {
	return len(l.kr), len(l.us)
}

func loadFile(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open stock list %s: %w", path, err)
	}
	defer f.Close()

	table, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stock list %s: %w", path, err)
	}
	return table, nil
}

// Parse reads a CSV with a header row containing Code and Name columns.
// Rows with an empty code or name are skipped.
func Parse(r io.Reader) (map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	codeIdx, nameIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")) {
		case "Code":
			codeIdx = i
		case "Name":
			nameIdx = i
		}
	}
	if codeIdx < 0 || nameIdx < 0 {
		return nil, errors.New("header must contain Code and Name")
	}

	table := make(map[string]string)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if codeIdx >= len(record) || nameIdx >= len(record) {
			continue
		}
		code := strings.TrimSpace(record[codeIdx])
		name := strings.TrimSpace(record[nameIdx])
		if code == "" || name == "" {
			continue
		}
		table[code] = name
	}
	return table, nil
}
