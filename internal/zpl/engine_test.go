package zpl

import (
	"errors"
	"strings"
	"testing"
)

const testTemplateContent = "^XA\n^FO10,10^A0N,25,25^FD{shipToName}^FS\n^FO10,40^A0N,20,20^FD{lpnId}^FS\n^BY2,3,50^BC^FD{sscc}^FS\n^XZ\n"

func testFields() map[string]string {
	return map[string]string{
		"shipToName": "ROSSI DISTRIBUTION",
		"lpnId":      "LPN001",
		"sscc":       "000000000000000001",
	}
}

func mustTemplate(t *testing.T, name, content string) *Template {
	t.Helper()
	template, err := NewTemplate(name, content)
	if err != nil {
		t.Fatalf("new template failed: %v", err)
	}
	return template
}

func TestRenderReplacesAllPlaceholders(t *testing.T) {
	template := mustTemplate(t, "pallet", testTemplateContent)

	got, err := Render(template, testFields())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(got, "{") || strings.Contains(got, "}") {
		t.Fatalf("rendered output still contains placeholder braces: %s", got)
	}
	if !strings.Contains(got, "ROSSI DISTRIBUTION") {
		t.Fatalf("rendered output missing field value: %s", got)
	}
	if !IsValid(got) {
		t.Fatalf("rendered output should be valid zpl: %s", got)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	template := mustTemplate(t, "pallet", testTemplateContent)

	first, err := Render(template, testFields())
	if err != nil {
		t.Fatalf("first render failed: %v", err)
	}
	second, err := Render(template, testFields())
	if err != nil {
		t.Fatalf("second render failed: %v", err)
	}
	if first != second {
		t.Fatalf("identical inputs must render byte-identical output")
	}
}

func TestRenderMissingFieldFails(t *testing.T) {
	template := mustTemplate(t, "pallet", testTemplateContent)
	fields := testFields()
	delete(fields, "sscc")

	_, err := Render(template, fields)
	if err == nil {
		t.Fatalf("expected render error for missing field")
	}
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected RenderError, got %T", err)
	}
	if renderErr.Field != "sscc" {
		t.Fatalf("render error field want sscc got %s", renderErr.Field)
	}
}

func TestRenderEmptyFieldFails(t *testing.T) {
	template := mustTemplate(t, "pallet", testTemplateContent)
	fields := testFields()
	fields["lpnId"] = ""

	_, err := Render(template, fields)
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected RenderError for empty field, got %v", err)
	}
	if renderErr.Field != "lpnId" {
		t.Fatalf("render error field want lpnId got %s", renderErr.Field)
	}
}

func TestRenderAcceptsSpacePlaceholderValue(t *testing.T) {
	// 可选字段以单个空格留白，不能被当成空值拒绝
	template := mustTemplate(t, "pallet", testTemplateContent)
	fields := testFields()
	fields["lpnId"] = " "

	got, err := Render(template, fields)
	if err != nil {
		t.Fatalf("space value should render, got %v", err)
	}
	if !strings.Contains(got, "^FO10,40^A0N,20,20^FD ^FS") {
		t.Fatalf("space value should pass through unchanged:\n%s", got)
	}
}

func TestRenderRejectsFramelessOutput(t *testing.T) {
	template := mustTemplate(t, "frameless", "^FO10,10^FD{name}^FS\n")

	_, err := Render(template, map[string]string{"name": "X"})
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("output without ^XA/^XZ must fail, got %v", err)
	}
}

func TestRenderOverlongFieldFails(t *testing.T) {
	template := mustTemplate(t, "pallet", testTemplateContent)
	fields := testFields()
	fields["shipToName"] = strings.Repeat("A", 256)

	_, err := Render(template, fields)
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected RenderError for overlong field, got %v", err)
	}
	if renderErr.Field != "shipToName" {
		t.Fatalf("render error field want shipToName got %s", renderErr.Field)
	}
}

func TestRenderFieldAt255CharsSucceeds(t *testing.T) {
	template := mustTemplate(t, "pallet", testTemplateContent)
	fields := testFields()
	fields["shipToName"] = strings.Repeat("A", 255)

	if _, err := Render(template, fields); err != nil {
		t.Fatalf("255-char field should render, got %v", err)
	}
}

func TestEscapeFieldOrder(t *testing.T) {
	// 转义顺序固定：先 ^ 后 ~ 再花括号
	cases := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"~", "~~"},
		{"^", "~~~~^"},
		{"{x}", "{{x}}"},
	}
	for _, tc := range cases {
		if got := EscapeField(tc.in); got != tc.want {
			t.Fatalf("escape %q want %q got %q", tc.in, tc.want, got)
		}
	}
}

func TestTemplateRejectsBadPlaceholders(t *testing.T) {
	if _, err := NewTemplate("bad", "^XA^FD{unclosed^XZ"); err == nil {
		t.Fatalf("expected error for unclosed placeholder")
	}
	if _, err := NewTemplate("bad", "^XA^FD{}^XZ"); err == nil {
		t.Fatalf("expected error for empty placeholder")
	}
	if _, err := NewTemplate("bad", "^XA^FD{9bad}^XZ"); err == nil {
		t.Fatalf("expected error for invalid placeholder name")
	}
}

func TestIsValidRequiresFrameMarkers(t *testing.T) {
	if IsValid("^FDno frame^FS") {
		t.Fatalf("zpl without ^XA/^XZ should be invalid")
	}
	if IsValid("^XA^FD{leftover}^FS^XZ") {
		t.Fatalf("zpl with unreplaced placeholder should be invalid")
	}
	if !IsValid("^XA^FDok^FS^XZ") {
		t.Fatalf("framed zpl should be valid")
	}
}
