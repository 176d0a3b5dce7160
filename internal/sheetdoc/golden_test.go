package sheetdoc

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/pagespace/sheetdoc/internal/sheet"
)

func assertGolden(t *testing.T, name, text string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(text))
}

func TestRender_GoldenBasic(t *testing.T) {
	assertGolden(t, "basic", Serialize(buildFixture(t), nil, "page-123"))
}

func TestRender_GoldenEmpty(t *testing.T) {
	assertGolden(t, "empty", Serialize(sheet.New(), nil, ""))
}
