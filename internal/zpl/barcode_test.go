package zpl

import (
	"strings"
	"testing"
)

func validBarcodeRequest() BarcodeRequest {
	return BarcodeRequest{
		Data:            "000000000000000001",
		Symbology:       SymbologyCode128,
		Orientation:     OrientationPortrait,
		LabelWidthDots:  812,
		LabelHeightDots: 1218,
		OriginX:         50,
		OriginY:         100,
		ModuleWidth:     3,
		ModuleRatio:     3,
		BarcodeHeight:   200,
		HumanReadable:   true,
		Copies:          1,
	}
}

func TestBuildBarcodePortrait(t *testing.T) {
	got, err := BuildBarcode(validBarcodeRequest())
	if err != nil {
		t.Fatalf("build barcode failed: %v", err)
	}
	for _, want := range []string{"^XA\n", "^PON\n", "^PW812\n", "^LL1218\n", "^FWN\n", "^BY3,3,200\n", "^FO50,100\n", "^BCN,200,Y,N,N\n", "^XZ\n"} {
		if !strings.Contains(got, want) {
			t.Fatalf("barcode zpl missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "^PQ") {
		t.Fatalf("single copy should not emit ^PQ:\n%s", got)
	}
}

func TestBuildBarcodeLandscapeRotatesFieldOnly(t *testing.T) {
	request := validBarcodeRequest()
	request.Orientation = OrientationLandscape

	got, err := BuildBarcode(request)
	if err != nil {
		t.Fatalf("build barcode failed: %v", err)
	}
	if !strings.Contains(got, "^FWR\n") {
		t.Fatalf("landscape barcode must rotate via ^FWR:\n%s", got)
	}
	if !strings.Contains(got, "^BCR,") {
		t.Fatalf("landscape barcode must use rotated ^BCR:\n%s", got)
	}
	if strings.Contains(got, "^POI") {
		t.Fatalf("landscape must never flip the whole label with ^POI:\n%s", got)
	}
	if !strings.Contains(got, "^PON\n") {
		t.Fatalf("printer stays in normal orientation:\n%s", got)
	}
}

func TestBuildBarcodeGS1Prefix(t *testing.T) {
	request := validBarcodeRequest()
	request.Symbology = SymbologyGS1128

	got, err := BuildBarcode(request)
	if err != nil {
		t.Fatalf("build barcode failed: %v", err)
	}
	if !strings.Contains(got, "^FD>;000000000000000001^FS") {
		t.Fatalf("gs1-128 barcode must carry >; subset prefix:\n%s", got)
	}
}

func TestBuildBarcodeCopies(t *testing.T) {
	request := validBarcodeRequest()
	request.Copies = 4

	got, err := BuildBarcode(request)
	if err != nil {
		t.Fatalf("build barcode failed: %v", err)
	}
	if !strings.Contains(got, "^PQ4\n") {
		t.Fatalf("multi-copy barcode must emit ^PQ:\n%s", got)
	}
}

func TestBuildBarcodeRejectsBadInput(t *testing.T) {
	request := validBarcodeRequest()
	request.Data = "  "
	if _, err := BuildBarcode(request); err == nil {
		t.Fatalf("blank data must fail")
	}

	request = validBarcodeRequest()
	request.ModuleWidth = 0
	if _, err := BuildBarcode(request); err == nil {
		t.Fatalf("non-positive module width must fail")
	}

	request = validBarcodeRequest()
	request.Orientation = "DIAGONAL"
	if _, err := BuildBarcode(request); err == nil {
		t.Fatalf("unknown orientation must fail")
	}
}
