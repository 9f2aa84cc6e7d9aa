// Package importer membaca bank soal dari file xlsx.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"smartstudy_backend/internals/features/assessments/grading"
)

const MaxRows = 500

var (
	ErrEmptySheet    = errors.New("sheet has no data rows")
	ErrMissingHeader = errors.New("missing required column")
)

// Header kolom yang dikenali (case-insensitive)
const (
	ColType        = "type"
	ColQuestion    = "question"
	ColOptionA     = "option_a"
	ColOptionB     = "option_b"
	ColOptionC     = "option_c"
	ColOptionD     = "option_d"
	ColCorrect     = "correct_answer"
	ColExplanation = "explanation"
	ColMarks       = "marks"
)

// QuestionRow: satu baris valid hasil parse
type QuestionRow struct {
	Line          int
	Type          string
	Question      string
	Options       map[string]string
	CorrectAnswer string
	Explanation   string
	Marks         int
}

type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type Result struct {
	Rows    []QuestionRow
	Invalid []RowError
}

// Parse membaca sheet pertama. withType=false → semua soal dianggap mcq (quiz).
func Parse(r io.Reader, withType bool) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptySheet
	}
	if len(rows)-1 > MaxRows {
		return nil, fmt.Errorf("too many rows: max %d", MaxRows)
	}

	idx := map[string]int{}
	for i, h := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	required := []string{ColQuestion, ColCorrect}
	if !withType {
		required = append(required, ColOptionA, ColOptionB, ColOptionC, ColOptionD)
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingHeader, col)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := &Result{}
	for i, row := range rows[1:] {
		line := i + 2
		if isBlank(row) {
			continue
		}
		q := QuestionRow{
			Line:          line,
			Type:          grading.QuestionMCQ,
			Question:      cell(row, ColQuestion),
			CorrectAnswer: cell(row, ColCorrect),
			Explanation:   cell(row, ColExplanation),
			Marks:         1,
		}
		if withType {
			if t := strings.ToLower(cell(row, ColType)); t != "" {
				q.Type = t
			}
		}
		if q.Type == grading.QuestionMCQ {
			q.Options = map[string]string{
				"A": cell(row, ColOptionA),
				"B": cell(row, ColOptionB),
				"C": cell(row, ColOptionC),
				"D": cell(row, ColOptionD),
			}
			q.CorrectAnswer = strings.ToUpper(q.CorrectAnswer)
		}
		if m := cell(row, ColMarks); m != "" {
			n, err := strconv.Atoi(m)
			if err != nil {
				out.Invalid = append(out.Invalid, RowError{Row: line, Error: "marks must be an integer"})
				continue
			}
			q.Marks = n
		}
		if msg := validateRow(q); msg != "" {
			out.Invalid = append(out.Invalid, RowError{Row: line, Error: msg})
			continue
		}
		out.Rows = append(out.Rows, q)
	}
	return out, nil
}

func validateRow(q QuestionRow) string {
	if q.Question == "" {
		return "question is required"
	}
	if !grading.ValidQuestionType(q.Type) {
		return "type must be mcq, numerical or true_false"
	}
	if q.Marks < 1 || q.Marks > 100 {
		return "marks must be between 1 and 100"
	}
	if q.CorrectAnswer == "" {
		return "correct_answer is required"
	}
	if q.Type == grading.QuestionMCQ {
		for _, k := range []string{"A", "B", "C", "D"} {
			if q.Options[k] == "" {
				return "option_" + strings.ToLower(k) + " is required"
			}
		}
	}
	if !grading.ValidAnswer(q.Type, q.CorrectAnswer) {
		return fmt.Sprintf("correct_answer %q is not valid for type %s", q.CorrectAnswer, q.Type)
	}
	return ""
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
