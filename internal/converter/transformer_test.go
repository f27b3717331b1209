package converter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ginjaninja78/bill-transformer/internal/classifier"
	"github.com/ginjaninja78/bill-transformer/internal/types"
)

func newTestTransformer(table classifier.KeywordTable) *RowTransformer {
	return NewRowTransformer(
		classifier.New(table),
		classifier.NewAttributor(classifier.DefaultMemberOverrides()),
	)
}

// paddedRows returns n rows of filler so a data row can be placed at index n.
func paddedRows(n int) []types.RawRow {
	rows := make([]types.RawRow, n)
	for i := range rows {
		rows[i] = types.RawRow{"meta", "", "header", "", "header", "", "", "", ""}
	}
	return rows
}

func TestTransformEndToEnd(t *testing.T) {
	// 超市 only appears inside the stripped 【】 annotation; 大米 survives.
	tr := newTestTransformer(classifier.KeywordTable{
		"超市": {"食品", "超市", "综合采购"},
		"大米": {"食品", "生鲜", "米面"},
	})
	cfg := types.SourceFormatConfig{StartIndex: 17, TimeIndex: 0, ValueIndex: 5, NameIndex: 4}

	rows := append(paddedRows(17),
		types.RawRow{"2024-01-01", "", "pay", "", "【超市】大米(5kg)", "12.50", "", "", ""},
	)

	got, err := tr.Transform(rows, cfg, "珏珏子")
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	want := []types.OutputRow{
		{"大米", "2024-01-01", "12.50", "", "", "", "珏珏子", "珏珏子", "食品", "生鲜", "米面"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Transform =\n  %q\nwant\n  %q", got, want)
	}
}

func TestTransformIgnoresKeywordsInsideAnnotations(t *testing.T) {
	tr := newTestTransformer(classifier.KeywordTable{"超市": {"食品", "生鲜", "米面"}})
	cfg := types.SourceFormatConfig{TimeIndex: 0, ValueIndex: 1, NameIndex: 2}

	got, err := tr.Transform([]types.RawRow{
		{"t", "1", "【超市】大米(5kg)"},
		{"t", "2", "酱油(超市装)"},
		{"t", "3", "社区超市"},
	}, cfg, "珏珏子")
	if err != nil {
		t.Fatal(err)
	}

	for i, name := range []string{"大米", "酱油"} {
		if got[i][types.ColName] != name || got[i][types.ColCategoryBroad] != "" {
			t.Errorf("row %d = %q, want %s unclassified", i, got[i], name)
		}
	}
	if got[2][types.ColCategoryBroad] != "食品" {
		t.Errorf("row 2 = %q, want 超市 match", got[2])
	}
}

func TestTransformStartIndexBoundary(t *testing.T) {
	tr := newTestTransformer(nil)
	cfg := types.SourceFormatConfig{StartIndex: 2, TimeIndex: 0, ValueIndex: 1, NameIndex: 2}

	rows := []types.RawRow{
		{"t0", "0", "row0"},
		{"t1", "1", "row1"}, // StartIndex-1
		{"t2", "2", "row2"}, // StartIndex
		{"t3", "3", "row3"},
	}

	got, err := tr.Transform(rows, cfg, "me")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0][types.ColName] != "row2" || got[1][types.ColName] != "row3" {
		t.Errorf("names = %q, %q; want row2, row3", got[0][types.ColName], got[1][types.ColName])
	}
}

func TestTransformSkipsEmptyNames(t *testing.T) {
	tr := newTestTransformer(nil)
	cfg := types.SourceFormatConfig{StartIndex: 0, TimeIndex: 0, ValueIndex: 1, NameIndex: 2}

	rows := []types.RawRow{
		{"t0", "1.00", ""},
		{"t1", "2.00", "   "},
		{""},
		{},
		{"t2", "3.00", "kept"},
	}

	got, err := tr.Transform(rows, cfg, "me")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0][types.ColName] != "kept" {
		t.Errorf("Transform = %q, want only the kept row", got)
	}
}

func TestTransformKeepsRowsThatSanitizeToEmpty(t *testing.T) {
	tr := newTestTransformer(classifier.DefaultKeywords())
	cfg := types.SourceFormatConfig{TimeIndex: 0, ValueIndex: 1, NameIndex: 2}

	got, err := tr.Transform([]types.RawRow{{"t", "9.9", "【赠品】"}}, cfg, "me")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if got[0][types.ColName] != "" || got[0][types.ColCategoryBroad] != "" {
		t.Errorf("row = %q", got[0])
	}
}

func TestTransformUnmatchedRowKeepsWidth(t *testing.T) {
	tr := newTestTransformer(classifier.KeywordTable{"超市": {"食品", "生鲜", "米面"}})
	cfg := types.SourceFormatConfig{TimeIndex: 0, ValueIndex: 1, NameIndex: 2}

	got, err := tr.Transform([]types.RawRow{{"t", "5", "加油站"}}, cfg, "珏珏子")
	if err != nil {
		t.Fatal(err)
	}

	row := got[0]
	if len(row) != types.OutputWidth {
		t.Fatalf("row width = %d, want %d", len(row), types.OutputWidth)
	}
	for _, col := range []int{types.ColCategoryBroad, types.ColCategoryMedium, types.ColCategoryFine} {
		if row[col] != "" {
			t.Errorf("category column %d = %q, want empty", col, row[col])
		}
	}
}

func TestTransformMemberOverride(t *testing.T) {
	tr := newTestTransformer(nil)
	cfg := types.SourceFormatConfig{TimeIndex: 0, ValueIndex: 1, NameIndex: 2}

	got, err := tr.Transform([]types.RawRow{
		{"t", "1", "猫粮(10kg)"},
		{"t", "2", "转账-王敏"},
	}, cfg, "珏珏子")
	if err != nil {
		t.Fatal(err)
	}

	if got[0][types.ColMember] != "Money" || got[0][types.ColPayer] != "珏珏子" {
		t.Errorf("row 0 member/payer = %q/%q", got[0][types.ColMember], got[0][types.ColPayer])
	}
	if got[1][types.ColMember] != "双人成行" {
		t.Errorf("row 1 member = %q", got[1][types.ColMember])
	}
}

func TestTransformShortRowIsFatal(t *testing.T) {
	tr := newTestTransformer(nil)
	cfg := types.SourceFormatConfig{TimeIndex: 0, ValueIndex: 5, NameIndex: 2}

	rows := []types.RawRow{
		{"t", "", "ok", "", "", "1.00"},
		{"t", "", "short"},
	}

	got, err := tr.Transform(rows, cfg, "me")
	if got != nil {
		t.Errorf("partial output returned: %q", got)
	}
	if !errors.Is(err, types.ErrRowShape) {
		t.Fatalf("err = %v, want ErrRowShape", err)
	}

	var shapeErr *types.RowShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("err = %T, want *RowShapeError", err)
	}
	if shapeErr.Row != 1 || shapeErr.Index != 5 || shapeErr.Width != 3 {
		t.Errorf("RowShapeError = %+v", shapeErr)
	}
}

func TestTransformEmptyInputYieldsTitleOnly(t *testing.T) {
	tr := newTestTransformer(nil)

	for _, rows := range [][]types.RawRow{nil, {}} {
		got, err := tr.Transform(rows, types.SourceFormatConfig{StartIndex: 17}, "me")
		if err != nil {
			t.Fatal(err)
		}

		table := WithTitle(got)
		if len(table) != 1 {
			t.Fatalf("table has %d rows, want title only", len(table))
		}
		if !reflect.DeepEqual(table[0], types.TitleRow()) {
			t.Errorf("first row = %q, want title", table[0])
		}
	}
}

func TestWithTitle(t *testing.T) {
	rows := []types.OutputRow{{"a"}, {"b"}}
	table := WithTitle(rows)

	if len(table) != 3 {
		t.Fatalf("len = %d, want 3", len(table))
	}
	title := table[0]
	if len(title) != types.OutputWidth {
		t.Errorf("title width = %d, want %d", len(title), types.OutputWidth)
	}
	if title[types.ColName] != "名称" || title[types.ColCategoryFine] != "细分类" {
		t.Errorf("title = %q", title)
	}
	if table[1][0] != "a" || table[2][0] != "b" {
		t.Errorf("data rows reordered: %q", table)
	}
}
