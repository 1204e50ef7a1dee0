package printing

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/palletprint/internal/config"
	"github.com/palletprint/internal/logger"
)

// DeliveryError 投递失败（所有重试耗尽后抛出）
type DeliveryError struct {
	PrinterID string
	Endpoint  string
	Attempts  int
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("print delivery to printer %s (%s) failed after %d attempts: %v",
		e.PrinterID, e.Endpoint, e.Attempts, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Deliverer 网络打印投递器（RAW TCP，无应用层握手）
//
// 只保证"写完即成功"：字节含义由上游负责，这里只管送达或明确失败。
type Deliverer struct {
	connectTimeout time.Duration
	writeTimeout   time.Duration
	maxRetries     int
	retryDelay     time.Duration

	sleep func(time.Duration) // 测试注入
}

// NewDeliverer 从打印配置构建投递器
func NewDeliverer(cfg config.PrintingConfig) *Deliverer {
	return &Deliverer{
		connectTimeout: msOrDefault(cfg.ConnectTimeoutMS, 2000),
		writeTimeout:   msOrDefault(cfg.WriteTimeoutMS, 5000),
		maxRetries:     cfg.MaxRetries,
		retryDelay:     msOrDefault(cfg.RetryDelayMS, 1000),
		sleep:          time.Sleep,
	}
}

// Print 把文档字节投递到打印机
//
// 瞬时故障（拒绝连接、超时、对端重置）按指数退避重试，
// 非瞬时故障（如域名无法解析）立即失败不重试。
func (d *Deliverer) Print(ctx context.Context, printer Printer, document []byte, correlationID string) error {
	endpoint := printer.Endpoint()
	logger.Infow("print_delivery_start",
		"printer_id", printer.ID,
		"endpoint", endpoint,
		"correlation_id", correlationID,
		"bytes", len(document),
	)

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= d.maxRetries+1; attempt++ {
		attempts = attempt
		err := d.send(ctx, printer, document)
		if err == nil {
			logger.Infow("print_delivery_ok",
				"printer_id", printer.ID,
				"correlation_id", correlationID,
				"attempt", attempt,
			)
			return nil
		}
		lastErr = err

		if !isTransient(err) || attempt > d.maxRetries {
			break
		}
		delay := d.backoffDelay(attempt)
		logger.Warnw("print_delivery_retry",
			"printer_id", printer.ID,
			"correlation_id", correlationID,
			"attempt", attempt,
			"delay_ms", delay.Milliseconds(),
			"error", err,
		)
		d.sleep(delay)
	}

	logger.Errorw("print_delivery_failed",
		"printer_id", printer.ID,
		"endpoint", endpoint,
		"correlation_id", correlationID,
		"attempts", attempts,
		"error", lastErr,
	)
	return &DeliveryError{
		PrinterID: printer.ID,
		Endpoint:  endpoint,
		Attempts:  attempts,
		Err:       lastErr,
	}
}

// TestConnectivity 探测打印机可达性（只建连，不发数据）
func (d *Deliverer) TestConnectivity(ctx context.Context, printer Printer) bool {
	dialer := net.Dialer{Timeout: d.connectTimeoutFor(printer)}
	conn, err := dialer.DialContext(ctx, "tcp", printer.Endpoint())
	if err != nil {
		logger.Warnw("printer_unreachable", "printer_id", printer.ID, "error", err)
		return false
	}
	_ = conn.Close()
	return true
}

func (d *Deliverer) send(ctx context.Context, printer Printer, document []byte) error {
	dialer := net.Dialer{Timeout: d.connectTimeoutFor(printer)}
	conn, err := dialer.DialContext(ctx, "tcp", printer.Endpoint())
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(d.writeTimeoutFor(printer))); err != nil {
		return err
	}
	if _, err := conn.Write(document); err != nil {
		return err
	}
	return nil
}

func (d *Deliverer) connectTimeoutFor(printer Printer) time.Duration {
	if printer.ConnectTimeoutMS > 0 {
		return time.Duration(printer.ConnectTimeoutMS) * time.Millisecond
	}
	return d.connectTimeout
}

func (d *Deliverer) writeTimeoutFor(printer Printer) time.Duration {
	if printer.WriteTimeoutMS > 0 {
		return time.Duration(printer.WriteTimeoutMS) * time.Millisecond
	}
	return d.writeTimeout
}

// backoffDelay 第 attempt 次失败后的等待时长（基础延迟按次左移）
func (d *Deliverer) backoffDelay(attempt int) time.Duration {
	shift := attempt - 1
	if shift < 0 {
		shift = 0
	}
	if shift > 30 {
		shift = 30
	}
	return d.retryDelay << shift
}

// isTransient 判定故障是否值得重试
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	// 域名无法解析属于配置错误，重试无意义
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

func msOrDefault(ms, fallback int) time.Duration {
	if ms <= 0 {
		ms = fallback
	}
	return time.Duration(ms) * time.Millisecond
}
