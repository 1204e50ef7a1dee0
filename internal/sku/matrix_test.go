package sku

import (
	"os"
	"path/filepath"
	"testing"
)

const matrixCsv = `INTERNAL SKU#,CUSTOMER ITEM#,Item Description,check based on internal SKU
205641,30081705,1.36L PL 1/6 NJ STRW BAN,1.36L PL 1/6 NJ STRW BAN
197920,30081706,1.54L PL 1/6 OJ NO PULP,1.54L PL 1/6 OJ NO PULP

,30099999,missing sku,skip me
205650,,missing item,skip me
`

func writeMatrix(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "customer-sku-matrix.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write matrix fixture failed: %v", err)
	}
	return path
}

func TestLoadMatrixSkipsHeaderAndBadLines(t *testing.T) {
	matrix, err := LoadMatrix(writeMatrix(t, matrixCsv))
	if err != nil {
		t.Fatalf("load matrix failed: %v", err)
	}
	if matrix.Count() != 2 {
		t.Fatalf("matrix count want 2 got %d", matrix.Count())
	}
}

func TestMatrixLookupBothDirections(t *testing.T) {
	matrix, err := LoadMatrix(writeMatrix(t, matrixCsv))
	if err != nil {
		t.Fatalf("load matrix failed: %v", err)
	}

	mapping, ok := matrix.FindByInternalSku("205641")
	if !ok {
		t.Fatalf("expected mapping for internal sku 205641")
	}
	if mapping.CustomerItemNo != "30081705" {
		t.Fatalf("customer item want 30081705 got %s", mapping.CustomerItemNo)
	}

	mapping, ok = matrix.FindByCustomerItem("30081706")
	if !ok {
		t.Fatalf("expected reverse mapping for customer item 30081706")
	}
	if mapping.InternalSku != "197920" {
		t.Fatalf("internal sku want 197920 got %s", mapping.InternalSku)
	}

	if _, ok := matrix.FindByInternalSku("999999"); ok {
		t.Fatalf("unknown sku should not resolve")
	}
}

func TestMatrixFindByPrtnumSlidingWindow(t *testing.T) {
	matrix, err := LoadMatrix(writeMatrix(t, matrixCsv))
	if err != nil {
		t.Fatalf("load matrix failed: %v", err)
	}

	// 17 位 PRTNUM 中嵌入短 SKU 197920
	mapping, ok := matrix.FindByPrtnum("10048500019792000")
	if !ok {
		t.Fatalf("expected embedded sku match for prtnum")
	}
	if mapping.InternalSku != "197920" {
		t.Fatalf("internal sku want 197920 got %s", mapping.InternalSku)
	}

	// 已是短格式时直查
	if _, ok := matrix.FindByPrtnum("205641"); !ok {
		t.Fatalf("short prtnum should match directly")
	}

	// 前导零变体
	if _, ok := matrix.FindByPrtnum("00205641"); !ok {
		t.Fatalf("leading-zero prtnum should match after trim")
	}

	if _, ok := matrix.FindByPrtnum("12345678900000000"); ok {
		t.Fatalf("prtnum without embedded sku should not match")
	}
}

func TestResolveMatrixPathPicksFirstExisting(t *testing.T) {
	existing := writeMatrix(t, matrixCsv)
	got := ResolveMatrixPath([]string{
		filepath.Join(t.TempDir(), "missing.csv"),
		existing,
	})
	if got != existing {
		t.Fatalf("resolve path want %s got %s", existing, got)
	}
	if got := ResolveMatrixPath([]string{filepath.Join(t.TempDir(), "missing.csv")}); got != "" {
		t.Fatalf("no existing candidate should resolve empty, got %s", got)
	}
}

const locationCsv = `Sold-To Name,Location #,Sold-To #
WAL-MART CANADA 7087R,7087R,0100003434
WAL-MART CANADA 6080,6080,C100006080
bad line without enough fields
`

func TestLocationMatrixResolvesSoldToVariants(t *testing.T) {
	path := filepath.Join(t.TempDir(), "location-number-matrix.csv")
	if err := os.WriteFile(path, []byte(locationCsv), 0o644); err != nil {
		t.Fatalf("write location fixture failed: %v", err)
	}
	matrix, err := LoadLocationMatrix(path)
	if err != nil {
		t.Fatalf("load location matrix failed: %v", err)
	}
	if matrix.Count() != 2 {
		t.Fatalf("location count want 2 got %d", matrix.Count())
	}

	// C 前缀、前导零与原始形式都规范化到同一键
	if got := matrix.ResolveDcLocation("C100003434"); got != "7087R" {
		t.Fatalf("resolve C100003434 want 7087R got %s", got)
	}
	if got := matrix.ResolveDcLocation("0100003434"); got != "7087R" {
		t.Fatalf("resolve 0100003434 want 7087R got %s", got)
	}
	if got := matrix.ResolveDcLocation("100006080"); got != "6080" {
		t.Fatalf("resolve 100006080 want 6080 got %s", got)
	}

	// 无对应关系时原样返回
	if got := matrix.ResolveDcLocation("9999"); got != "9999" {
		t.Fatalf("unmapped value should pass through, got %s", got)
	}
	if got := matrix.ResolveDcLocation("  "); got != "  " {
		t.Fatalf("blank value should pass through unchanged")
	}
}
