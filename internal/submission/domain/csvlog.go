package domain

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// AppendRecord returns existing with record added as the last row.
// An empty log starts with LogHeader. Existing content is kept verbatim and
// gets one line terminator when it does not already end with one.
func AppendRecord(existing []byte, record []string) ([]byte, error) {
	var buf bytes.Buffer
	crlf := true

	if len(existing) > 0 {
		crlf = bytes.Contains(existing, []byte("\r\n"))
		buf.Grow(len(existing) + 128)
		buf.Write(existing)
		if !bytes.HasSuffix(existing, []byte("\n")) {
			if crlf {
				buf.WriteString("\r\n")
			} else {
				buf.WriteByte('\n')
			}
		}
	}

	w := csv.NewWriter(&buf)
	w.UseCRLF = crlf
	if len(existing) == 0 {
		if err := w.Write(LogHeader); err != nil {
			return nil, fmt.Errorf("write log header: %w", err)
		}
	}
	if err := w.Write(record); err != nil {
		return nil, fmt.Errorf("write log row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush log: %w", err)
	}

	return buf.Bytes(), nil
}

// ParseLog splits a log into its header and data rows.
func ParseLog(body []byte) (header []string, rows [][]string, err error) {
	if len(body) == 0 {
		return nil, nil, nil
	}

	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = len(LogHeader)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse log: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}
