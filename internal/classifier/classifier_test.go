package classifier

import (
	"testing"

	"github.com/ginjaninja78/bill-transformer/internal/types"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"both bracket styles", "咖啡【进口】(小规格)", "咖啡"},
		{"leading annotation", "【超市】大米(5kg)", "大米"},
		{"every occurrence removed", "a(1)b(2)c【x】d【y】", "abcd"},
		{"entirely bracketed", "【赠品】", ""},
		{"unbalanced left alone", "奶茶(大杯", "奶茶(大杯"},
		{"full-width parentheses kept", "面包（全麦）", "面包（全麦）"},
		{"clean name unchanged", "瑞幸咖啡", "瑞幸咖啡"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"咖啡【进口】(小规格)",
		"((x)y)",
		"【【x】】",
		"【(】)",
		"a(b【c)d】e",
		"plain",
	}

	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Errorf("Sanitize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestClassifyLongestKeywordWins(t *testing.T) {
	a := types.CategoryTriple{"A1", "A2", "A3"}
	b := types.CategoryTriple{"B1", "B2", "B3"}
	c := New(KeywordTable{"超市": a, "大型超市": b})

	got, ok := c.Classify("大型超市购物")
	if !ok {
		t.Fatal("expected a match")
	}
	if got != b {
		t.Errorf("Classify = %v, want %v", got, b)
	}

	got, ok = c.Classify("社区超市")
	if !ok || got != a {
		t.Errorf("Classify(社区超市) = %v, %v; want %v, true", got, ok, a)
	}
}

func TestClassifyCountsCharactersNotBytes(t *testing.T) {
	// "abcdefg" is 7 bytes, "大型超市" is 12 bytes but only 4 characters.
	long := types.CategoryTriple{"latin", "", ""}
	short := types.CategoryTriple{"cjk", "", ""}
	c := New(KeywordTable{"abcdefg": long, "大型超市": short})

	keywords := c.Keywords()
	if keywords[0] != "abcdefg" {
		t.Errorf("Keywords()[0] = %q, want abcdefg", keywords[0])
	}
}

func TestClassifyEqualLengthTieBreak(t *testing.T) {
	first := types.CategoryTriple{"first", "", ""}
	second := types.CategoryTriple{"second", "", ""}

	for i := 0; i < 20; i++ {
		c := New(KeywordTable{"咖啡": second, "奶茶": first})
		kw, got, ok := c.Match("奶茶咖啡")
		if !ok {
			t.Fatal("expected a match")
		}
		// "咖啡" < "奶茶" in byte order, so it is tried first.
		if kw != "咖啡" || got != second {
			t.Fatalf("run %d: Match = %q %v, want 咖啡 %v", i, kw, got, second)
		}
	}
}

func TestClassifyNoMatch(t *testing.T) {
	c := New(KeywordTable{"超市": {"食品", "生鲜", "米面"}})

	if got, ok := c.Classify("加油站"); ok {
		t.Errorf("Classify(加油站) = %v, true; want no match", got)
	}
	if _, ok := c.Classify(""); ok {
		t.Error("empty name should never match")
	}
}

func TestNewIgnoresEmptyKeyword(t *testing.T) {
	c := New(KeywordTable{"": {"x", "y", "z"}, "超市": {"食品", "生鲜", "米面"}})

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	if _, ok := c.Classify("加油站"); ok {
		t.Error("empty keyword must not match everything")
	}
}

func TestNewCopiesTable(t *testing.T) {
	table := KeywordTable{"超市": {"食品", "生鲜", "米面"}}
	c := New(table)
	table["超市"] = types.CategoryTriple{"changed", "", ""}

	got, _ := c.Classify("超市")
	if got[0] != "食品" {
		t.Errorf("classifier saw caller mutation: %v", got)
	}
}

func TestDefaultKeywords(t *testing.T) {
	c := New(DefaultKeywords())

	tests := map[string]types.CategoryTriple{
		"永辉超市":    {"食品", "生鲜", "米面"},
		"大型超市采购":  {"食品", "超市", "综合采购"},
		"瑞幸咖啡":    {"餐饮", "饮品", "咖啡"},
		"老百姓大药房":  {"医疗", "药品", "连锁药店"},
		"宠物医院挂号":  {"宠物", "医疗", "诊疗"},
	}

	for name, want := range tests {
		got, ok := c.Classify(name)
		if !ok || got != want {
			t.Errorf("Classify(%q) = %v, %v; want %v", name, got, ok, want)
		}
	}

	for kw, triple := range DefaultKeywords() {
		for i, label := range triple {
			if label == "" {
				t.Errorf("keyword %q has empty label at level %d", kw, i)
			}
		}
	}
}

func TestAttribute(t *testing.T) {
	a := NewAttributor(DefaultMemberOverrides())

	tests := []struct {
		name        string
		merchant    string
		defaultName string
		want        string
	}{
		{"cat override", "猫粮", "珏珏子", "Money"},
		{"cat override ignores default", "宠物店买猫砂", "双人成行", "Money"},
		{"person override", "转账给王敏", "珏珏子", "双人成行"},
		{"no override", "瑞幸咖啡", "珏珏子", "珏珏子"},
		{"empty name", "", "珏珏子", "珏珏子"},
		{"declaration order", "王敏的猫", "珏珏子", "Money"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Attribute(tt.merchant, tt.defaultName); got != tt.want {
				t.Errorf("Attribute(%q, %q) = %q, want %q", tt.merchant, tt.defaultName, got, tt.want)
			}
		})
	}
}

func TestNewAttributorDropsEmptySubstring(t *testing.T) {
	a := NewAttributor([]MemberOverride{{Substring: "", Member: "everyone"}})

	if got := a.Attribute("anything", "default"); got != "default" {
		t.Errorf("Attribute = %q, want default", got)
	}
}
