package database

import (
	"github.com/glebarez/sqlite"
	"github.com/watchledger/backend/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"k8s.io/klog/v2"
)

// InitDB 打开数据库并迁移表结构
func InitDB(dbType, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch dbType {
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		// 使用 github.com/glebarez/sqlite 驱动（纯 Go，无需 CGO）
		dialector = sqlite.Open(dsn)
	}

	gormCfg := &gorm.Config{}
	if !klog.V(8).Enabled() {
		gormCfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	klog.V(6).Infof("数据库初始化完成: type=%s", dbType)
	return db, nil
}

// Migrate 迁移所有表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Watch{},
		&model.Reference{},
		&model.Prompt{},
		&model.StyleGuide{},
		&model.GenerationLog{},
	)
}
