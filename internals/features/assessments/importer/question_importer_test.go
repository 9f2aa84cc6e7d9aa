package importer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildSheet(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseQuizSheet(t *testing.T) {
	buf := buildSheet(t, [][]interface{}{
		{"question", "option_a", "option_b", "option_c", "option_d", "correct_answer", "explanation", "marks"},
		{"2+2?", "3", "4", "5", "6", "b", "basic", "2"},
		{"", "x", "y", "z", "w", "A", "", ""},
		{"Capital of France?", "Paris", "Rome", "", "Berlin", "A", "", ""},
		{"Largest planet?", "Mars", "Jupiter", "Venus", "Earth", "E", "", ""},
		{"Speed of light unit?", "m/s", "kg", "N", "J", "A", "", "x"},
	})

	res, err := Parse(buf, false)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "B", res.Rows[0].CorrectAnswer)
	assert.Equal(t, 2, res.Rows[0].Marks)
	assert.Equal(t, 2, res.Rows[0].Line)

	require.Len(t, res.Invalid, 4)
	assert.Equal(t, 3, res.Invalid[0].Row)
	assert.Equal(t, "question is required", res.Invalid[0].Error)
	assert.Equal(t, "option_c is required", res.Invalid[1].Error)
	assert.Equal(t, 5, res.Invalid[2].Row)
	assert.Equal(t, "marks must be an integer", res.Invalid[3].Error)
}

func TestParseDPPSheetWithTypes(t *testing.T) {
	buf := buildSheet(t, [][]interface{}{
		{"type", "question", "option_a", "option_b", "option_c", "option_d", "correct_answer", "explanation", "marks"},
		{"numerical", "g on earth?", "", "", "", "", "9.8", "", "4"},
		{"true_false", "Sun is a star", "", "", "", "", "True", "", ""},
		{"essay", "Explain", "", "", "", "", "x", "", ""},
	})

	res, err := Parse(buf, true)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "numerical", res.Rows[0].Type)
	assert.Nil(t, res.Rows[0].Options)
	assert.Equal(t, 4, res.Rows[0].Marks)
	assert.Equal(t, "true_false", res.Rows[1].Type)
	require.Len(t, res.Invalid, 1)
	assert.Equal(t, 4, res.Invalid[0].Row)
}

func TestParseMissingHeader(t *testing.T) {
	buf := buildSheet(t, [][]interface{}{
		{"question", "correct_answer"},
		{"2+2?", "B"},
	})
	_, err := Parse(buf, false)
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestParseEmpty(t *testing.T) {
	buf := buildSheet(t, [][]interface{}{{"question"}})
	_, err := Parse(buf, false)
	assert.ErrorIs(t, err, ErrEmptySheet)
}
