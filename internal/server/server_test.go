package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/bill-transformer/internal/classifier"
	"github.com/ginjaninja78/bill-transformer/internal/converter"
	"github.com/ginjaninja78/bill-transformer/internal/formats"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	registry, err := formats.NewRegistry(nil)
	if err != nil {
		t.Fatal(err)
	}
	pipeline := converter.NewPipeline(registry, converter.NewRowTransformer(
		classifier.New(classifier.KeywordTable{"超市": {"食品", "生鲜", "米面"}}),
		classifier.NewAttributor(classifier.DefaultMemberOverrides()),
	))
	return New(pipeline, Options{DefaultMember: "珏珏子", Members: []string{"珏珏子", "Money"}}, zerolog.Nop()).Routes()
}

func wechatExport(data ...string) string {
	var b strings.Builder
	for i := 0; i < 16; i++ {
		fmt.Fprintf(&b, "说明%d,,,,,,,,,,\n", i)
	}
	b.WriteString("交易时间,交易类型,交易对方,商品,收/支,金额(元),支付方式,当前状态,交易单号,商户单号,备注\n")
	for _, line := range data {
		b.WriteString(line + "\n")
	}
	return b.String()
}

func uploadRequest(t *testing.T, target, fileName, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestConvert(t *testing.T) {
	h := newTestServer(t)
	content := wechatExport("2024-01-01 10:00:00,商户消费,社区超市,大米,支出,¥12.50,零钱,支付成功,1,2,/")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/convert?type=wechat&member=Money", "账单 1.csv", content))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "filename*=UTF-8''custom_%E8%B4%A6%E5%8D%95%201.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, "\ufeff名称,时间,金额") {
		t.Errorf("body = %q", body)
	}
	if !strings.Contains(body, "社区超市,2024-01-01 10:00:00,¥12.50,,,,Money,Money,食品,生鲜,米面") {
		t.Errorf("body = %q", body)
	}
}

func TestConvertErrors(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name   string
		req    *http.Request
		status int
		msg    string
	}{
		{"unknown type", uploadRequest(t, "/convert?type=paypal", "a.csv", "x"), http.StatusBadRequest, converter.MessageUnknownFormat},
		{"unsupported file", uploadRequest(t, "/convert?type=wechat", "a.pdf", "x"), http.StatusBadRequest, converter.MessageUnsupportedFile},
		{"short rows", uploadRequest(t, "/convert?type=wechat", "a.csv", wechatExport("t,消费,盒马")), http.StatusBadRequest, converter.MessageProcessing},
		{"no file", httptest.NewRequest(http.MethodPost, "/convert?type=wechat", nil), http.StatusBadRequest, messageNoFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tt.req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := decodeError(t, rec); got != tt.msg {
				t.Errorf("error = %q, want %q", got, tt.msg)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	h := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/classify?name="+"%E3%80%90%E4%BC%9A%E5%91%98%E3%80%91%E7%8C%AB%E8%B6%85%E5%B8%82", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Row []string `json:"row"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	// 【会员】猫超市
	if len(body.Row) != 11 || body.Row[0] != "猫超市" || body.Row[6] != "Money" || body.Row[8] != "食品" {
		t.Errorf("row = %q", body.Row)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/classify", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing name status = %d", rec.Code)
	}
}

func TestHealthAndFormats(t *testing.T) {
	h := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/formats", nil))
	var resp formatsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Formats) != 2 || resp.Formats[0] != "wechat" || resp.DefaultMember != "珏珏子" {
		t.Errorf("formats = %+v", resp)
	}
}

func TestConvertRejectsLargeUpload(t *testing.T) {
	registry, err := formats.NewRegistry(nil)
	if err != nil {
		t.Fatal(err)
	}
	pipeline := converter.NewPipeline(registry, converter.NewRowTransformer(
		classifier.New(nil),
		classifier.NewAttributor(classifier.DefaultMemberOverrides()),
	))
	h := New(pipeline, Options{DefaultMember: "珏珏子", MaxUploadSize: 1024}, zerolog.Nop()).Routes()

	content := wechatExport(strings.Repeat("2024-01-01 10:00:00,商户消费,社区超市,大米,支出,¥12.50,零钱,支付成功,1,2,/\n", 100))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/convert?type=wechat", "big.csv", content))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
	if got := decodeError(t, rec); got != messageFileTooLarge {
		t.Errorf("error = %q", got)
	}
}
