package formats

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ginjaninja78/bill-transformer/internal/types"
)

func TestLookup(t *testing.T) {
	wechat, err := Lookup(types.FormatWechat)
	if err != nil {
		t.Fatalf("Lookup(wechat): %v", err)
	}
	if wechat.StartIndex != 17 || wechat.TimeIndex != 0 || wechat.ValueIndex != 5 || wechat.NameIndex != 2 {
		t.Errorf("wechat config = %+v", wechat)
	}

	alipay, err := Lookup(types.FormatAlipay)
	if err != nil {
		t.Fatalf("Lookup(alipay): %v", err)
	}
	if alipay.StartIndex != 1 || alipay.TimeIndex != 0 || alipay.ValueIndex != 6 || alipay.NameIndex != 4 {
		t.Errorf("alipay config = %+v", alipay)
	}

	if _, err := Lookup(types.Format("unionpay")); !errors.Is(err, types.ErrUnknownFormat) {
		t.Errorf("Lookup(unionpay) err = %v, want ErrUnknownFormat", err)
	}
}

func TestRegistryOverrides(t *testing.T) {
	custom := types.SourceFormatConfig{StartIndex: 2, TimeIndex: 1, ValueIndex: 3, NameIndex: 0}
	r, err := NewRegistry(map[string]types.SourceFormatConfig{"WeChat": custom})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	got, err := r.Config(types.FormatWechat)
	if err != nil || got != custom {
		t.Errorf("Config(wechat) = %+v, %v; want override", got, err)
	}

	got, err = r.Config(types.FormatAlipay)
	if err != nil || got != alipayConfig {
		t.Errorf("Config(alipay) = %+v, %v; want built-in", got, err)
	}

	if _, err := NewRegistry(map[string]types.SourceFormatConfig{"paypal": custom}); err == nil {
		t.Error("NewRegistry accepted an unknown format")
	}

	var zero *Registry
	if got, err := zero.Config(types.FormatAlipay); err != nil || got != alipayConfig {
		t.Errorf("nil Registry Config = %+v, %v", got, err)
	}
}

func TestDecoding(t *testing.T) {
	s, err := Decoding(types.FormatAlipay)
	if err != nil {
		t.Fatal(err)
	}
	if s.Encoding != "GBK" || !s.LineMode || !s.SkipEmptyLines {
		t.Errorf("alipay decode settings = %+v", s)
	}

	s, err = Decoding(types.FormatWechat)
	if err != nil {
		t.Fatal(err)
	}
	if s.Encoding != "UTF-8" || s.LineMode {
		t.Errorf("wechat decode settings = %+v", s)
	}
}

func TestPrenormalizeWechatIsIdentity(t *testing.T) {
	table := [][]string{{"a", "b"}, {""}, {"c"}}
	rows, err := Prenormalize(types.FormatWechat, table)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != len(table) {
		t.Fatalf("got %d rows, want %d", len(rows), len(table))
	}
	for i := range table {
		if !reflect.DeepEqual([]string(rows[i]), table[i]) {
			t.Errorf("row %d = %v, want %v", i, rows[i], table[i])
		}
	}
}

func TestPrenormalizeAlipayLineMode(t *testing.T) {
	table := [][]string{
		{"------------------------------------------------------------------------------------"},
		{"导出信息："},
		{"姓名：某某"},
		{""},
		{"交易时间,交易分类,交易对方,对方账号,商品说明,收/支,金额,收/付款方式,交易状态,"},
		{"2024-01-01 12:00:00\t,餐饮美食,瑞幸咖啡,luckin@example.com,\"生椰拿铁(大杯), 冰\",支出,  19.90 ,余额宝,交易成功,"},
		{"   "},
		{"2024-01-02 08:30:00,日用百货,盒马,/,【会员】鸡蛋,支出,15.00,花呗,交易成功,"},
	}

	rows, err := Prenormalize(types.FormatAlipay, table)
	if err != nil {
		t.Fatalf("Prenormalize: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2 data rows: %v", len(rows), rows)
	}

	if rows[0][0] != "交易时间" {
		t.Errorf("header row not at index 0: %v", rows[0])
	}

	first := rows[1]
	if first[0] != "2024-01-01 12:00:00" {
		t.Errorf("time cell = %q, want trimmed timestamp", first[0])
	}
	if first[4] != "生椰拿铁(大杯), 冰" {
		t.Errorf("quoted name = %q", first[4])
	}
	if first[6] != "19.90" {
		t.Errorf("amount = %q, want 19.90", first[6])
	}
}

func TestPrenormalizeAlipayPreSplitRows(t *testing.T) {
	// XLSX decoding already yields one cell per column.
	table := [][]string{
		{"交易时间", "交易分类", "交易对方", "对方账号", "商品说明", "收/支", "金额"},
		{" 2024-03-01 ", "餐饮", "饿了么", "", "午饭", "支出", " 25.00"},
	}

	rows, err := Prenormalize(types.FormatAlipay, table)
	if err != nil {
		t.Fatal(err)
	}
	want := types.RawRow{"2024-03-01", "餐饮", "饿了么", "", "午饭", "支出", "25.00"}
	if !reflect.DeepEqual(rows[1], want) {
		t.Errorf("row = %q, want %q", rows[1], want)
	}
}

func TestPrenormalizeAlipayWithoutHeader(t *testing.T) {
	table := [][]string{{"x,y"}, {"1,2"}}
	rows, err := Prenormalize(types.FormatAlipay, table)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0][0] != "x" {
		t.Errorf("rows = %v, want split rows kept in place", rows)
	}
}

func TestPrenormalizeUnknownFormat(t *testing.T) {
	if _, err := Prenormalize(types.Format("bank"), nil); !errors.Is(err, types.ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}
