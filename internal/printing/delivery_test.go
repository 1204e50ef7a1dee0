package printing

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/palletprint/internal/config"
)

func testDeliverer() *Deliverer {
	return NewDeliverer(config.PrintingConfig{
		ConnectTimeoutMS: 500,
		WriteTimeoutMS:   500,
		MaxRetries:       3,
		RetryDelayMS:     10,
	})
}

func localPrinter(t *testing.T, addr net.Addr) Printer {
	t.Helper()
	host, portText, err := net.SplitHostPort(addr.String())
	if err != nil {
		t.Fatalf("split addr failed: %v", err)
	}
	port, err := strconv.Atoi(portText)
	if err != nil {
		t.Fatalf("parse port failed: %v", err)
	}
	return Printer{ID: "TEST", Name: "test", Host: host, Port: port, Enabled: true}
}

// closedPort 返回一个刚释放、当前无人监听的本地端口
func closedPort(t *testing.T) Printer {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	printer := localPrinter(t, listener.Addr())
	_ = listener.Close()
	return printer
}

func TestPrintWritesDocumentBytes(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer listener.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		data, _ := io.ReadAll(conn)
		_ = conn.Close()
		received <- data
	}()

	document := []byte("^XA\n^FO10,10^FDhello^FS\n^XZ\n")
	err = testDeliverer().Print(context.Background(), localPrinter(t, listener.Addr()), document, "task-1")
	if err != nil {
		t.Fatalf("print failed: %v", err)
	}

	select {
	case data := <-received:
		if string(data) != string(document) {
			t.Fatalf("delivered bytes differ:\nwant %q\ngot  %q", document, data)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("printer listener never received data")
	}
}

func TestPrintRetriesWithIncreasingBackoff(t *testing.T) {
	deliverer := testDeliverer()
	var delays []time.Duration
	deliverer.sleep = func(d time.Duration) { delays = append(delays, d) }

	err := deliverer.Print(context.Background(), closedPort(t), []byte("^XA^XZ"), "task-2")

	var deliveryErr *DeliveryError
	if !errors.As(err, &deliveryErr) {
		t.Fatalf("want DeliveryError got %v", err)
	}
	if deliveryErr.PrinterID != "TEST" {
		t.Fatalf("delivery error must name the printer, got %q", deliveryErr.PrinterID)
	}
	if deliveryErr.Attempts != 4 {
		t.Fatalf("attempts want 4 (1 + 3 retries) got %d", deliveryErr.Attempts)
	}
	if len(delays) != 3 {
		t.Fatalf("retry sleeps want 3 got %d", len(delays))
	}
	for i := 1; i < len(delays); i++ {
		if delays[i] <= delays[i-1] {
			t.Fatalf("backoff must strictly increase, got %v", delays)
		}
	}
	if delays[0] != 10*time.Millisecond || delays[1] != 20*time.Millisecond || delays[2] != 40*time.Millisecond {
		t.Fatalf("backoff schedule want 10/20/40ms got %v", delays)
	}
}

func TestPrintDoesNotRetryUnresolvableHost(t *testing.T) {
	deliverer := testDeliverer()
	slept := 0
	deliverer.sleep = func(time.Duration) { slept++ }

	printer := Printer{ID: "GHOST", Host: "no-such-host.invalid", Port: 9100, Enabled: true}
	err := deliverer.Print(context.Background(), printer, []byte("^XA^XZ"), "task-3")

	var deliveryErr *DeliveryError
	if !errors.As(err, &deliveryErr) {
		t.Fatalf("want DeliveryError got %v", err)
	}
	if deliveryErr.Attempts != 1 {
		t.Fatalf("dns failure must not retry, attempts=%d", deliveryErr.Attempts)
	}
	if slept != 0 {
		t.Fatalf("dns failure must not sleep, slept %d times", slept)
	}
}

func TestTestConnectivity(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer listener.Close()
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	deliverer := testDeliverer()
	if !deliverer.TestConnectivity(context.Background(), localPrinter(t, listener.Addr())) {
		t.Fatalf("listening printer must be reachable")
	}
	if deliverer.TestConnectivity(context.Background(), closedPort(t)) {
		t.Fatalf("closed port must be unreachable")
	}
}

func TestPerPrinterTimeoutOverride(t *testing.T) {
	deliverer := testDeliverer()
	printer := Printer{ID: "X", Host: "10.0.0.9", Port: 9100, ConnectTimeoutMS: 1234, WriteTimeoutMS: 4321}
	if got := deliverer.connectTimeoutFor(printer); got != 1234*time.Millisecond {
		t.Fatalf("connect override want 1234ms got %v", got)
	}
	if got := deliverer.writeTimeoutFor(printer); got != 4321*time.Millisecond {
		t.Fatalf("write override want 4321ms got %v", got)
	}
	if got := deliverer.connectTimeoutFor(Printer{}); got != 500*time.Millisecond {
		t.Fatalf("default connect timeout want 500ms got %v", got)
	}
}
