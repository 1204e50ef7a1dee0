package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/palletprint/internal/provider"

	"github.com/gin-gonic/gin"
)

func barcodeTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := New(&provider.Container{})
	r := gin.New()
	r.POST("/labels/barcode", handler.BuildBarcode)
	return r
}

func TestBuildBarcodeReturnsZpl(t *testing.T) {
	body := `{
		"data": "00123456789012345675",
		"symbology": "GS1_128",
		"orientation": "PORTRAIT",
		"label_width_dots": 812,
		"label_height_dots": 406,
		"origin_x": 40,
		"origin_y": 60,
		"module_width": 3,
		"module_ratio": 3,
		"barcode_height": 200,
		"human_readable": true,
		"copies": 1
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/labels/barcode", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	barcodeTestRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp struct {
		StatusCode int `json:"status_code"`
		Data       struct {
			Zpl string `json:"zpl"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Data.Zpl, "^XA") || !strings.Contains(resp.Data.Zpl, ">;00123456789012345675") {
		t.Fatalf("rendered barcode wrong:\n%s", resp.Data.Zpl)
	}
}

func TestBuildBarcodeRejectsInvalidRequest(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/labels/barcode", strings.NewReader(`{"data":""}`))
	req.Header.Set("Content-Type", "application/json")
	barcodeTestRouter().ServeHTTP(w, req)

	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("status_code want 400 got %d", resp.StatusCode)
	}
}
