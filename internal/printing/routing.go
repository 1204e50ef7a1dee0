package printing

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/palletprint/internal/constants"
	"github.com/palletprint/internal/logger"

	"github.com/spf13/viper"
)

// RoutingError 打印机路由失败（目标缺失或被停用）
type RoutingError struct {
	PrinterID string
	Reason    string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("printer routing failed: %s (printer_id=%s)", e.Reason, e.PrinterID)
}

// RoutingRule 路由规则，按声明顺序求值，首条命中生效
type RoutingRule struct {
	ID        string `mapstructure:"id" json:"id"`
	Enabled   bool   `mapstructure:"enabled" json:"enabled"`
	Field     string `mapstructure:"field" json:"field"`
	Operator  string `mapstructure:"op" json:"op"`
	Value     string `mapstructure:"value" json:"value"`
	PrinterID string `mapstructure:"printer_id" json:"printer_id"`
}

// Matches 用路由上下文求值本条规则
//
// 比较统一转大写后进行；匹配值为 "*" 时恒为真，
// 末尾的 "*" 在比较前剔除（如 STARTS_WITH "ROSSI*" 命中 "ROSSI-A"）。
func (r RoutingRule) Matches(context map[string]string) bool {
	if !r.Enabled {
		return false
	}
	contextValue, ok := context[r.Field]
	if !ok || contextValue == "" {
		return false
	}

	expected := strings.ToUpper(strings.TrimSpace(r.Value))
	if expected == "*" {
		return true
	}
	expected = strings.TrimSuffix(expected, "*")
	actual := strings.ToUpper(strings.TrimSpace(contextValue))

	switch strings.ToUpper(r.Operator) {
	case constants.MatchTypeEquals:
		return actual == expected
	case constants.MatchTypeStartsWith:
		return strings.HasPrefix(actual, expected)
	case constants.MatchTypeContains:
		return strings.Contains(actual, expected)
	default:
		return false
	}
}

// Router 站点级打印机路由表（加载后不可变）
type Router struct {
	siteCode         string
	printers         map[string]Printer
	order            []string
	rules            []RoutingRule
	defaultPrinterID string
}

// NewRouter 用已解析的打印机表与规则表构建路由器
func NewRouter(siteCode string, printers []Printer, rules []RoutingRule, defaultPrinterID string) (*Router, error) {
	byID := make(map[string]Printer, len(printers))
	order := make([]string, 0, len(printers))
	for _, p := range printers {
		if p.ID == "" {
			return nil, fmt.Errorf("printer missing id")
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate printer id: %s", p.ID)
		}
		byID[p.ID] = p
		order = append(order, p.ID)
	}
	if _, ok := byID[defaultPrinterID]; !ok {
		return nil, fmt.Errorf("default printer not found: %s", defaultPrinterID)
	}
	for _, rule := range rules {
		switch strings.ToUpper(rule.Operator) {
		case constants.MatchTypeEquals, constants.MatchTypeStartsWith, constants.MatchTypeContains:
		default:
			return nil, fmt.Errorf("rule %s has unsupported operator: %s", rule.ID, rule.Operator)
		}
		if _, ok := byID[rule.PrinterID]; !ok {
			return nil, fmt.Errorf("rule %s targets unknown printer: %s", rule.ID, rule.PrinterID)
		}
	}
	logger.Infow("printer_routing_initialized",
		"site", siteCode,
		"printers", len(printers),
		"rules", len(rules),
		"default_printer", defaultPrinterID,
	)
	return &Router{
		siteCode:         siteCode,
		printers:         byID,
		order:            order,
		rules:            rules,
		defaultPrinterID: defaultPrinterID,
	}, nil
}

// SelectPrinter 按规则顺序求值上下文，无命中时回落默认打印机
func (r *Router) SelectPrinter(context map[string]string) (Printer, error) {
	for _, rule := range r.rules {
		if rule.Matches(context) {
			logger.Infow("routing_rule_matched",
				"rule_id", rule.ID,
				"printer_id", rule.PrinterID,
			)
			return r.getUsable(rule.PrinterID)
		}
	}
	logger.Infow("routing_default_printer", "printer_id", r.defaultPrinterID)
	return r.getUsable(r.defaultPrinterID)
}

// FindPrinter 手工指定打印机时的查找，仍强制启用校验
func (r *Router) FindPrinter(printerID string) (Printer, error) {
	return r.getUsable(printerID)
}

func (r *Router) getUsable(printerID string) (Printer, error) {
	printer, ok := r.printers[printerID]
	if !ok {
		return Printer{}, &RoutingError{PrinterID: printerID, Reason: "printer not found"}
	}
	if !printer.Enabled {
		return Printer{}, &RoutingError{PrinterID: printerID, Reason: "printer is disabled"}
	}
	return printer, nil
}

// Printers 按声明顺序返回全部打印机
func (r *Router) Printers() []Printer {
	out := make([]Printer, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.printers[id])
	}
	return out
}

// Rules 返回全部路由规则
func (r *Router) Rules() []RoutingRule {
	return r.rules
}

// DefaultPrinterID 返回默认打印机编号
func (r *Router) DefaultPrinterID() string {
	return r.defaultPrinterID
}

// SiteCode 返回站点编码
func (r *Router) SiteCode() string {
	return r.siteCode
}

type printerEntry struct {
	ID               string   `mapstructure:"id"`
	Name             string   `mapstructure:"name"`
	Host             string   `mapstructure:"host"`
	Port             int      `mapstructure:"port"`
	Tags             []string `mapstructure:"tags"`
	LocationHint     string   `mapstructure:"location_hint"`
	Enabled          *bool    `mapstructure:"enabled"` // 缺省视为启用
	ConnectTimeoutMS int      `mapstructure:"connect_timeout_ms"`
	WriteTimeoutMS   int      `mapstructure:"write_timeout_ms"`
}

type printersDoc struct {
	Printers []printerEntry `mapstructure:"printers"`
}

type routingDoc struct {
	DefaultPrinterID string        `mapstructure:"default_printer_id"`
	Rules            []routingRule `mapstructure:"rules"`
}

type routingRule struct {
	ID        string `mapstructure:"id"`
	Enabled   *bool  `mapstructure:"enabled"` // 缺省视为启用
	Field     string `mapstructure:"field"`
	Operator  string `mapstructure:"op"`
	Value     string `mapstructure:"value"`
	PrinterID string `mapstructure:"printer_id"`
}

// LoadRouter 加载站点打印机路由配置
//
// 约定两个声明式文件：config/<site>/printers.yaml（打印机表）
// 与 config/<site>/printer-routing.yaml（规则表 + 默认打印机）。
func LoadRouter(siteCode, configDir string) (*Router, error) {
	siteDir := filepath.Join(configDir, siteCode)

	var pDoc printersDoc
	if err := readYAML(filepath.Join(siteDir, "printers.yaml"), &pDoc); err != nil {
		return nil, fmt.Errorf("load printers config: %w", err)
	}
	var rDoc routingDoc
	if err := readYAML(filepath.Join(siteDir, "printer-routing.yaml"), &rDoc); err != nil {
		return nil, fmt.Errorf("load routing config: %w", err)
	}

	printers := make([]Printer, 0, len(pDoc.Printers))
	for _, entry := range pDoc.Printers {
		port := entry.Port
		if port == 0 {
			port = 9100
		}
		enabled := entry.Enabled == nil || *entry.Enabled
		printers = append(printers, Printer{
			ID:               entry.ID,
			Name:             entry.Name,
			Host:             entry.Host,
			Port:             port,
			Tags:             entry.Tags,
			LocationHint:     entry.LocationHint,
			Enabled:          enabled,
			ConnectTimeoutMS: entry.ConnectTimeoutMS,
			WriteTimeoutMS:   entry.WriteTimeoutMS,
		})
	}

	rules := make([]RoutingRule, 0, len(rDoc.Rules))
	for _, entry := range rDoc.Rules {
		rules = append(rules, RoutingRule{
			ID:        entry.ID,
			Enabled:   entry.Enabled == nil || *entry.Enabled,
			Field:     entry.Field,
			Operator:  entry.Operator,
			Value:     entry.Value,
			PrinterID: entry.PrinterID,
		})
	}

	return NewRouter(siteCode, printers, rules, rDoc.DefaultPrinterID)
}

func readYAML(path string, out any) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	return v.Unmarshal(out)
}
