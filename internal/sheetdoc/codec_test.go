package sheetdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagespace/sheetdoc/internal/sheet"
)

func buildFixture(t *testing.T) *sheet.Data {
	t.Helper()
	data := sheet.NewSized(6, 4)
	cells := map[string]string{
		"A1": "10",
		"A2": "32",
		"A3": "=A1+A2",
		"B1": "hello",
		"B2": "TRUE",
		"C1": "=C2",
		"C2": "=C1",
		"D1": "=1/0",
	}
	for addr, raw := range cells {
		require.NoError(t, data.Set(addr, raw))
	}
	return data
}

func TestSerialize_Deterministic(t *testing.T) {
	data := buildFixture(t)
	first := Serialize(data, nil, "page-123")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Serialize(data, nil, "page-123"), "pass %d", i)
	}
}

func TestSerialize_RoundTripIsCanonical(t *testing.T) {
	data := buildFixture(t)
	text := Serialize(data, nil, "page-123")

	doc, err := Parse(text)
	require.NoError(t, err)
	restored := ToSheetData(doc)

	assert.Equal(t, 6, restored.RowCount)
	assert.Equal(t, 4, restored.ColumnCount)
	assert.Equal(t, "=A1+A2", restored.Get("A3"))
	assert.Equal(t, "10", restored.Get("A1"))
	assert.Equal(t, "hello", restored.Get("B1"))
	assert.Equal(t, "TRUE", restored.Get("B2"))
	assert.Equal(t, "=1/0", restored.Get("D1"))

	// serializing the restored sheet reproduces the bytes exactly
	assert.Equal(t, text, Serialize(restored, nil, "page-123"))
}

func TestSerialize_FormulaWithQuotedStrings(t *testing.T) {
	data := sheet.New()
	require.NoError(t, data.Set("A1", `=IF(1>0, "yes", "no")`))
	text := Serialize(data, nil, "")

	doc, err := Parse(text)
	require.NoError(t, err)
	restored := ToSheetData(doc)
	assert.Equal(t, `=IF(1>0, "yes", "no")`, restored.Get("A1"))
}

func TestBuildDocument_ErrorRecords(t *testing.T) {
	doc := BuildDocument(buildFixture(t), nil, "")
	require.Len(t, doc.Sheets, 1)
	cells := doc.Sheets[0].Cells

	div := cells["D1"]
	require.NotNil(t, div)
	require.NotNil(t, div.Error)
	assert.Equal(t, ErrorTypeEval, div.Error.Type)
	assert.Equal(t, "=1/0", div.Formula)
	assert.Nil(t, div.Value)

	cyc := cells["C1"]
	require.NotNil(t, cyc)
	require.NotNil(t, cyc.Error)
	assert.Equal(t, ErrorTypeCircular, cyc.Error.Type)
	assert.ElementsMatch(t, []string{"C1", "C2"}, cyc.Error.Details)
}

func TestBuildDocument_Dependencies(t *testing.T) {
	doc := BuildDocument(buildFixture(t), nil, "")
	deps := doc.Sheets[0].Dependencies

	require.NotNil(t, deps["A3"])
	assert.Equal(t, []string{"A1", "A2"}, deps["A3"].DependsOn)
	require.NotNil(t, deps["A1"])
	assert.Equal(t, []string{"A3"}, deps["A1"].Dependents)

	// cells without edges carry no dependency record
	assert.Nil(t, deps["B1"])
	assert.Nil(t, deps["D1"])
}

func TestParse_HeaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  DocErrorCode
	}{
		{"empty", "", ErrCodeMissingHeader},
		{"no magic", "hello world\n", ErrCodeMissingHeader},
		{"bad version", "#%PAGESPACE_SHEETDOC v99\n", ErrCodeUnsupportedVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			var de *DocError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.code, de.Code)
		})
	}
}

func TestParse_BodyErrors(t *testing.T) {
	_, err := Parse("#%PAGESPACE_SHEETDOC v1\nnot an assignment\n")
	var de *DocError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrCodeMalformedLine, de.Code)
	assert.Equal(t, 2, de.Line)

	_, err = Parse("#%PAGESPACE_SHEETDOC v1\n[sheets.meta]\n")
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrCodeOrphanSection, de.Code)

	_, err = Parse("#%PAGESPACE_SHEETDOC v1\n[bogus]\n")
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrCodeMalformedLine, de.Code)
}

func TestParse_SkipsCommentsAndBlankLines(t *testing.T) {
	doc, err := Parse("#%PAGESPACE_SHEETDOC v1\n\n# a comment\npage_id = \"p-1\"\n")
	require.NoError(t, err)
	assert.Equal(t, "p-1", doc.PageID)
	assert.Equal(t, "v1", doc.Version)
}

func TestParse_ColumnsAndRanges(t *testing.T) {
	input := `#%PAGESPACE_SHEETDOC v1

[[sheets]]
name = "Sheet1"
order = 0

[sheets.columns]
A = { width = 120 }

[sheets.ranges.A1:B2]
label = "totals"
`
	doc, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, doc.Sheets, 1)
	assert.Equal(t, map[string]any{"width": 120}, doc.Sheets[0].Columns["A"])
	assert.Equal(t, map[string]any{"label": "totals"}, doc.Sheets[0].Ranges["A1:B2"])

	// columns and ranges survive a render/parse cycle
	again, err := Parse(Render(doc))
	require.NoError(t, err)
	assert.Equal(t, doc.Sheets[0].Columns, again.Sheets[0].Columns)
	assert.Equal(t, doc.Sheets[0].Ranges, again.Sheets[0].Ranges)
}

func TestToSheetData_PicksFirstSheetByOrder(t *testing.T) {
	doc := &Document{
		Version: Version,
		Sheets: []Sheet{
			{Name: "Second", Order: 1, Cells: map[string]*CellRecord{
				"A1": {Type: "string", Value: "nope"},
			}},
			{Name: "First", Order: 0, Cells: map[string]*CellRecord{
				"A1": {Type: "string", Value: "yes"},
			}},
		},
	}
	data := ToSheetData(doc)
	assert.Equal(t, "yes", data.Get("A1"))
	// missing meta falls back to the default grid size
	assert.Equal(t, sheet.DefaultRows, data.RowCount)
	assert.Equal(t, sheet.DefaultColumns, data.ColumnCount)
}

func TestToSheetData_EmptyDocument(t *testing.T) {
	data := ToSheetData(&Document{Version: Version})
	assert.Equal(t, sheet.DefaultRows, data.RowCount)
	assert.Empty(t, data.Cells)
}

func TestParseSheetContent(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		data := ParseSheetContent("")
		assert.Equal(t, sheet.DefaultRows, data.RowCount)
		assert.Empty(t, data.Cells)
	})

	t.Run("sheetdoc text", func(t *testing.T) {
		text := Serialize(buildFixture(t), nil, "p-1")
		data := ParseSheetContent(text)
		assert.Equal(t, "=A1+A2", data.Get("A3"))
	})

	t.Run("json interchange", func(t *testing.T) {
		data := ParseSheetContent(`{"version":1,"rowCount":5,"columnCount":3,"cells":{"A1":"=1+1"}}`)
		assert.Equal(t, 5, data.RowCount)
		assert.Equal(t, "=1+1", data.Get("A1"))
	})

	t.Run("corrupt sheetdoc degrades to empty", func(t *testing.T) {
		data := ParseSheetContent("#%PAGESPACE_SHEETDOC v1\ngarbage line\n")
		assert.Empty(t, data.Cells)
	})

	t.Run("garbage degrades to empty", func(t *testing.T) {
		data := ParseSheetContent("{not json, not sheetdoc")
		assert.Empty(t, data.Cells)
		assert.Equal(t, sheet.DefaultRows, data.RowCount)
	})
}
