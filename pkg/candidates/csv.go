package candidates

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"manet/internal/models"
	"manet/pkg/errs"
)

var csvHeader = []string{"thr", "row", "col"}

// WriteCSV writes the candidates as "thr,row,col" rows under a header line.
func WriteCSV(w io.Writer, cands []models.Candidate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, c := range cands {
		rec := []string{
			strconv.FormatFloat(c.Threshold, 'g', -1, 64),
			strconv.Itoa(c.Row),
			strconv.Itoa(c.Col),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the output of WriteCSV. The header line is optional.
func ReadCSV(r io.Reader) ([]models.Candidate, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var out []models.Candidate
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrInvalidArgument, err)
		}
		if len(rec) != len(csvHeader) {
			return nil, errs.Invalid("line %d has %d columns, expected %d", line, len(rec), len(csvHeader))
		}
		if line == 1 && rec[0] == csvHeader[0] {
			continue
		}

		thr, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, errs.Invalid("line %d: bad threshold %q", line, rec[0])
		}
		row, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, errs.Invalid("line %d: bad row %q", line, rec[1])
		}
		col, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, errs.Invalid("line %d: bad column %q", line, rec[2])
		}
		out = append(out, models.Candidate{Threshold: thr, Row: row, Col: col})
	}
	return out, nil
}

// SaveCSV writes the candidates of a case to path, replacing any existing file.
func SaveCSV(path string, cc models.CaseCandidates) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating candidate file: %w", err)
	}
	defer f.Close()
	if err := WriteCSV(f, cc.Candidates); err != nil {
		return fmt.Errorf("error writing candidate file: %w", err)
	}
	return f.Close()
}

// LoadCSV reads the candidate file at path for the case id.
func LoadCSV(path, id string) (models.CaseCandidates, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.CaseCandidates{}, fmt.Errorf("error opening candidate file: %w", err)
	}
	defer f.Close()
	cands, err := ReadCSV(f)
	if err != nil {
		return models.CaseCandidates{}, fmt.Errorf("%s: %w", path, err)
	}
	return models.CaseCandidates{CaseID: id, Candidates: cands}, nil
}

const (
	beginDescription = "===BEGIN DESCRIPTION==="
	endDescription   = "===END DESCRIPTION==="
)

// ReadList reads one entry per line, trimming whitespace and skipping blank
// lines. A leading block
// between "===BEGIN DESCRIPTION===" and "===END DESCRIPTION===" is skipped.
func ReadList(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			lines = append(lines, l)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if len(lines) > 0 && lines[0] == beginDescription {
		for i, l := range lines {
			if l == endDescription {
				return lines[i+1:], nil
			}
		}
		return nil, errs.Invalid("description block is not terminated")
	}
	return lines, nil
}

// WriteList writes one entry per line, preceded by a description block when
// header is non-empty.
func WriteList(w io.Writer, entries, header []string) error {
	bw := bufio.NewWriter(w)
	if len(header) > 0 {
		fmt.Fprintln(bw, beginDescription)
		for _, h := range header {
			fmt.Fprintln(bw, strings.TrimSpace(h))
		}
		fmt.Fprintln(bw, endDescription)
	}
	for _, e := range entries {
		fmt.Fprintln(bw, strings.TrimSpace(e))
	}
	return bw.Flush()
}
