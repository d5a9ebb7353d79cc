package extract

import (
	"bytes"
	"encoding/csv"
	"strings"
)

type csvExtractor struct{}

// Extract renders CSV records as text, one record per line with fields
// joined by ", ".
func (csvExtractor) Extract(data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(records))
	for _, record := range records {
		lines = append(lines, strings.Join(record, ", "))
	}
	return strings.Join(lines, "\n"), nil
}
