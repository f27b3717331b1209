package csvparser

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/bill-transformer/internal/formats"
)

func TestParseUTF8WithBOM(t *testing.T) {
	data := "\ufeff交易时间,交易类型,交易对方\r\n2024-01-01,商户消费,\"瑞幸, 咖啡\"\r\n,,\r\n"

	rows, err := Parse(strings.NewReader(data), formats.DecodeSettings{Encoding: "UTF-8"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := [][]string{
		{"交易时间", "交易类型", "交易对方"},
		{"2024-01-01", "商户消费", "瑞幸, 咖啡"},
		{"", "", ""},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %q, want %q", rows, want)
	}
}

func TestParseVariableWidthAndLazyQuotes(t *testing.T) {
	data := "微信支付账单明细\na,b,c,d\nsay \"hi\",x\n"

	rows, err := Parse(strings.NewReader(data), formats.DecodeSettings{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 3 || len(rows[0]) != 1 || len(rows[1]) != 4 {
		t.Fatalf("rows = %q", rows)
	}
	if rows[2][0] != `say "hi"` {
		t.Errorf("lazy quoted cell = %q", rows[2][0])
	}
}

func TestParseSkipEmpty(t *testing.T) {
	data := "a,b\n,\nc,d\n"

	rows, err := Parse(strings.NewReader(data), formats.DecodeSettings{SkipEmptyLines: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %q, want comma-only line dropped", rows)
	}
}

func TestParseGBKLineMode(t *testing.T) {
	text := "支付宝交易记录明细\r\n\r\n交易时间,商品说明,金额\r\n2024-01-01,【超市】大米,12.50\r\n"
	var encoded bytes.Buffer
	w := transform.NewWriter(&encoded, simplifiedchinese.GBK.NewEncoder())
	if _, err := w.Write([]byte(text)); err != nil {
		t.Fatalf("encode GBK: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("flush GBK: %v", err)
	}

	settings, err := formats.Decoding("alipay")
	if err != nil {
		t.Fatal(err)
	}

	rows, err := Parse(&encoded, settings)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := [][]string{
		{"支付宝交易记录明细"},
		{"交易时间,商品说明,金额"},
		{"2024-01-01,【超市】大米,12.50"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %q, want %q", rows, want)
	}
}

func TestParseLineModeKeepsEmptyLines(t *testing.T) {
	rows, err := Parse(strings.NewReader("a\n\nb"), formats.DecodeSettings{LineMode: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[1][0] != "" {
		t.Errorf("rows = %q", rows)
	}
}

func TestParseUnknownEncoding(t *testing.T) {
	_, err := Parse(strings.NewReader("x"), formats.DecodeSettings{Encoding: "EBCDIC"})
	if !errors.Is(err, ErrUnknownEncoding) {
		t.Errorf("err = %v, want ErrUnknownEncoding", err)
	}
}
