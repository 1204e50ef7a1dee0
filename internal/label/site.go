package label

import "github.com/palletprint/internal/config"

// Site 站点发货方信息（打印在每张标签的 Ship From 区）
type Site struct {
	ShipFromName         string
	ShipFromAddress      string
	ShipFromCityStateZip string
}

// SiteFromConfig 从配置构建站点信息
func SiteFromConfig(cfg config.SiteConfig) Site {
	return Site{
		ShipFromName:         cfg.ShipFromName,
		ShipFromAddress:      cfg.ShipFromAddress,
		ShipFromCityStateZip: cfg.ShipFromCityStZip,
	}
}
