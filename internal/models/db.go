package models

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	applog "github.com/palletprint/internal/logger"

	"github.com/glebarez/sqlite" // 纯 Go SQLite 驱动（基于 modernc.org/sqlite）
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// ErrAuthRejected 数据库认证被拒绝，回退链立即终止
var ErrAuthRejected = errors.New("database authentication rejected")

// DBPoolConfig 数据库连接池配置
type DBPoolConfig struct {
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeSeconds int
	ConnMaxIdleTimeSeconds int
}

// InitDB 初始化数据库连接
//
// candidates 按声明顺序逐个尝试；连接失败继续尝试下一个，
// 认证失败立即终止整条回退链，避免同一错误口令在多个端点上触发账号锁定。
func InitDB(driver string, candidates []string, pool DBPoolConfig) error {
	if len(candidates) == 0 {
		return errors.New("no database dsn configured")
	}

	var lastErr error
	for _, dsn := range candidates {
		db, err := openDB(driver, dsn)
		if err == nil {
			DB = db
			sqlDB, err := DB.DB()
			if err != nil {
				return err
			}
			applyDBPool(sqlDB, pool)
			applog.Infow("database_connected", "driver", driver)
			return nil
		}
		if isAuthError(err) {
			applog.Errorw("database_auth_rejected_fallback_stopped", "error", err)
			return fmt.Errorf("%w: %v", ErrAuthRejected, err)
		}
		applog.Warnw("database_candidate_failed", "error", err)
		lastErr = err
	}
	return fmt.Errorf("all database candidates failed: %w", lastErr)
}

func openDB(driver, dsn string) (*gorm.DB, error) {
	normalized := strings.ToLower(strings.TrimSpace(driver))
	var dialector gorm.Dialector
	switch normalized {
	case "", "sqlite":
		// glebarez/sqlite 是基于 modernc.org/sqlite 的纯 Go 驱动
		dialector = sqlite.Open(dsn)
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// isAuthError 判断错误是否为认证失败（而非网络/超时类失败）
func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "password authentication failed"),
		strings.Contains(message, "sqlstate 28p01"),
		strings.Contains(message, "sqlstate 28000"),
		strings.Contains(message, "role") && strings.Contains(message, "does not exist"):
		return true
	}
	return false
}

func applyDBPool(sqlDB *sql.DB, pool DBPoolConfig) {
	if sqlDB == nil {
		return
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeSeconds) * time.Second)
	}
	if pool.ConnMaxIdleTimeSeconds > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTimeSeconds) * time.Second)
	}
}

// AutoMigrate 自动迁移所有数据库表
func AutoMigrate() error {
	return DB.AutoMigrate(
		&Shipment{},
		&Lpn{},
		&LineItem{},
		&ShipmentSkuFootprint{},
		&CarrierMoveStop{},
	)
}
