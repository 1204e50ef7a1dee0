package printing

import (
	"net"
	"strconv"
)

// Printer 网络打印机配置（Zebra RAW 协议，默认 9100 端口）
type Printer struct {
	ID               string   `mapstructure:"id" json:"id"`
	Name             string   `mapstructure:"name" json:"name"`
	Host             string   `mapstructure:"host" json:"host"`
	Port             int      `mapstructure:"port" json:"port"`
	Tags             []string `mapstructure:"tags" json:"tags,omitempty"`
	LocationHint     string   `mapstructure:"location_hint" json:"location_hint,omitempty"`
	Enabled          bool     `mapstructure:"enabled" json:"enabled"`
	ConnectTimeoutMS int      `mapstructure:"connect_timeout_ms" json:"connect_timeout_ms,omitempty"` // 0 用全局默认
	WriteTimeoutMS   int      `mapstructure:"write_timeout_ms" json:"write_timeout_ms,omitempty"`     // 0 用全局默认
}

// Endpoint 返回 host:port 形式的网络地址
func (p Printer) Endpoint() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}
