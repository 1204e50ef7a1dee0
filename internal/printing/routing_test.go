package printing

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/palletprint/internal/constants"
)

func testRouter(t *testing.T) *Router {
	t.Helper()
	printers := []Printer{
		{ID: "P1", Name: "Dispatch", Host: "10.0.0.21", Port: 9100, Enabled: true},
		{ID: "P2", Name: "Office", Host: "10.0.0.22", Port: 9100, Enabled: true},
		{ID: "P3", Name: "Broken", Host: "10.0.0.23", Port: 9100, Enabled: false},
	}
	rules := []RoutingRule{
		{ID: "rossi", Enabled: true, Field: constants.MatchFieldStagingLocation, Operator: constants.MatchTypeStartsWith, Value: "ROSSI*", PrinterID: "P1"},
	}
	router, err := NewRouter("WH3002", printers, rules, "P2")
	if err != nil {
		t.Fatalf("new router failed: %v", err)
	}
	return router
}

func TestSelectPrinterFirstMatchWins(t *testing.T) {
	router := testRouter(t)

	printer, err := router.SelectPrinter(map[string]string{constants.MatchFieldStagingLocation: "ROSSI-A"})
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if printer.ID != "P1" {
		t.Fatalf("staging ROSSI-A want P1 got %s", printer.ID)
	}

	printer, err = router.SelectPrinter(map[string]string{constants.MatchFieldStagingLocation: "OFFICE"})
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if printer.ID != "P2" {
		t.Fatalf("unmatched context want default P2 got %s", printer.ID)
	}
}

func TestRoutingRuleOperators(t *testing.T) {
	cases := []struct {
		name    string
		rule    RoutingRule
		context map[string]string
		want    bool
	}{
		{"equals_case_normalized", RoutingRule{Enabled: true, Field: "stagingLocation", Operator: "EQUALS", Value: "rossi"}, map[string]string{"stagingLocation": "ROSSI"}, true},
		{"equals_miss", RoutingRule{Enabled: true, Field: "stagingLocation", Operator: "EQUALS", Value: "ROSSI"}, map[string]string{"stagingLocation": "ROSSI-A"}, false},
		{"starts_with", RoutingRule{Enabled: true, Field: "stagingLocation", Operator: "STARTS_WITH", Value: "ROS"}, map[string]string{"stagingLocation": "rossi-a"}, true},
		{"contains", RoutingRule{Enabled: true, Field: "carrierCode", Operator: "CONTAINS", Value: "DLE"}, map[string]string{"carrierCode": "MDLE"}, true},
		{"wildcard_always_matches", RoutingRule{Enabled: true, Field: "stagingLocation", Operator: "EQUALS", Value: "*"}, map[string]string{"stagingLocation": "ANYTHING"}, true},
		{"disabled_rule_never_matches", RoutingRule{Enabled: false, Field: "stagingLocation", Operator: "EQUALS", Value: "ROSSI"}, map[string]string{"stagingLocation": "ROSSI"}, false},
		{"missing_field", RoutingRule{Enabled: true, Field: "customerName", Operator: "CONTAINS", Value: "X"}, map[string]string{"stagingLocation": "X"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rule.Matches(tc.context); got != tc.want {
				t.Fatalf("matches want %v got %v", tc.want, got)
			}
		})
	}
}

func TestDisabledPrinterIsRoutingError(t *testing.T) {
	printers := []Printer{
		{ID: "P1", Host: "10.0.0.21", Port: 9100, Enabled: false},
		{ID: "P2", Host: "10.0.0.22", Port: 9100, Enabled: true},
	}
	rules := []RoutingRule{
		{ID: "all-to-p1", Enabled: true, Field: "stagingLocation", Operator: "EQUALS", Value: "*", PrinterID: "P1"},
	}
	router, err := NewRouter("WH3002", printers, rules, "P2")
	if err != nil {
		t.Fatalf("new router failed: %v", err)
	}

	_, err = router.SelectPrinter(map[string]string{"stagingLocation": "ROSSI"})
	var routingErr *RoutingError
	if !errors.As(err, &routingErr) {
		t.Fatalf("disabled target must be a RoutingError, got %v", err)
	}
	if routingErr.PrinterID != "P1" {
		t.Fatalf("routing error want P1 got %s", routingErr.PrinterID)
	}
}

func TestFindPrinterEnforcesEnabled(t *testing.T) {
	router := testRouter(t)

	if _, err := router.FindPrinter("P1"); err != nil {
		t.Fatalf("enabled printer lookup failed: %v", err)
	}
	if _, err := router.FindPrinter("P3"); err == nil {
		t.Fatalf("manual override must still reject a disabled printer")
	}
	if _, err := router.FindPrinter("NOPE"); err == nil {
		t.Fatalf("unknown printer must fail")
	}
}

func TestNewRouterValidation(t *testing.T) {
	printers := []Printer{{ID: "P1", Host: "10.0.0.21", Port: 9100, Enabled: true}}

	if _, err := NewRouter("WH3002", printers, nil, "MISSING"); err == nil {
		t.Fatalf("missing default printer must fail")
	}
	badOp := []RoutingRule{{ID: "r", Enabled: true, Field: "x", Operator: "REGEX", Value: "a", PrinterID: "P1"}}
	if _, err := NewRouter("WH3002", printers, badOp, "P1"); err == nil {
		t.Fatalf("unsupported operator must fail")
	}
	badTarget := []RoutingRule{{ID: "r", Enabled: true, Field: "x", Operator: "EQUALS", Value: "a", PrinterID: "NOPE"}}
	if _, err := NewRouter("WH3002", printers, badTarget, "P1"); err == nil {
		t.Fatalf("rule targeting unknown printer must fail")
	}
}

func TestLoadRouterFromYAML(t *testing.T) {
	dir := t.TempDir()
	siteDir := filepath.Join(dir, "WH3002")
	if err := os.MkdirAll(siteDir, 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	printersYAML := `printers:
  - id: DISPATCH
    name: Dispatch Door Zebra
    host: 10.0.0.21
  - id: OFFICE
    name: Office Zebra
    host: 10.0.0.22
    port: 9101
    enabled: false
    connect_timeout_ms: 500
`
	routingYAML := `default_printer_id: DISPATCH
rules:
  - id: rossi-to-dispatch
    field: stagingLocation
    op: STARTS_WITH
    value: ROSSI*
    printer_id: DISPATCH
`
	if err := os.WriteFile(filepath.Join(siteDir, "printers.yaml"), []byte(printersYAML), 0o644); err != nil {
		t.Fatalf("write printers.yaml failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(siteDir, "printer-routing.yaml"), []byte(routingYAML), 0o644); err != nil {
		t.Fatalf("write printer-routing.yaml failed: %v", err)
	}

	router, err := LoadRouter("WH3002", dir)
	if err != nil {
		t.Fatalf("load router failed: %v", err)
	}

	printers := router.Printers()
	if len(printers) != 2 {
		t.Fatalf("printer count want 2 got %d", len(printers))
	}
	if printers[0].Port != 9100 || !printers[0].Enabled {
		t.Fatalf("omitted port/enabled must default to 9100/true, got %d/%v", printers[0].Port, printers[0].Enabled)
	}
	if printers[1].Port != 9101 || printers[1].Enabled || printers[1].ConnectTimeoutMS != 500 {
		t.Fatalf("explicit printer fields wrong: %+v", printers[1])
	}
	if router.DefaultPrinterID() != "DISPATCH" {
		t.Fatalf("default printer want DISPATCH got %s", router.DefaultPrinterID())
	}

	printer, err := router.SelectPrinter(map[string]string{"stagingLocation": "ROSSI-B"})
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if printer.ID != "DISPATCH" {
		t.Fatalf("want DISPATCH got %s", printer.ID)
	}
}

func TestLoadRouterMissingFiles(t *testing.T) {
	if _, err := LoadRouter("WH3002", t.TempDir()); err == nil {
		t.Fatalf("missing config files must fail")
	}
}
