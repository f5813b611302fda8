package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"imagestudio/internal/config"
	"imagestudio/internal/entity"
	"imagestudio/internal/model/memory"
	"imagestudio/internal/model/sql"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const (
	DBTypeMySQL    = "mysql"
	DBTypeSQLite   = "sqlite"
	DBTypePostgres = "postgres"
	DBTypeMemory   = "memory"

	defaultSQLitePath = "datas/imagestudio.db"
)

// InitRepository 根据 DBType 创建仓库，SQL 类型会自动迁移表结构
func InitRepository(cfg *config.Config) (Repository, error) {
	if cfg == nil || strings.TrimSpace(cfg.DBType) == "" {
		return nil, fmt.Errorf("database type is empty")
	}

	dbType := strings.ToLower(strings.TrimSpace(cfg.DBType))
	if dbType == DBTypeMemory {
		logrus.Warn("using in-memory repository, data is lost on restart")
		return memory.NewRepository(), nil
	}

	dialector, err := dialectorFor(dbType, cfg)
	if err != nil {
		return nil, err
	}

	db, err := openGormDB(dialector, dbType)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", dbType, err)
	}

	// 自动迁移数据库表结构
	if err := migrateSchema(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logrus.WithField("db_type", dbType).Info("repository_ready")
	return sql.NewGormRepository(db), nil
}

func dialectorFor(dbType string, cfg *config.Config) (gorm.Dialector, error) {
	switch dbType {
	case DBTypeMySQL:
		return mysql.Open(mysqlDSN(cfg)), nil
	case DBTypePostgres:
		return postgres.Open(postgresDSN(cfg)), nil
	case DBTypeSQLite:
		filePath := strings.TrimSpace(cfg.DBPath)
		if filePath == "" {
			filePath = defaultSQLitePath
		}
		// SQLite 会自动创建 .db 文件，但目录必须已存在
		if dir := filepath.Dir(filePath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create directory %q: %w", dir, err)
			}
		}
		return sqlite.Open(filePath), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}
}

func mysqlDSN(cfg *config.Config) string {
	if dsn := strings.TrimSpace(cfg.DSNURL); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.DBUser, cfg.DBPassword, cfg.DBAddr, cfg.DBPort, cfg.DBName)
}

// postgresDSN Supabase 托管库要求 TLS
func postgresDSN(cfg *config.Config) string {
	if dsn := strings.TrimSpace(cfg.DSNURL); dsn != "" {
		return dsn
	}
	sslMode := "disable"
	if strings.Contains(strings.ToLower(cfg.DBAddr), "supabase.") {
		sslMode = "require"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBAddr, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, sslMode)
}

func openGormDB(dialector gorm.Dialector, dbType string) (*gorm.DB, error) {
	// GORM 日志输出到 logrus
	gormLogger := logger.New(
		logrus.StandardLogger(),
		logger.Config{
			SlowThreshold:             time.Second * 2,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   gormLogger,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true, // 使用单数表名
		},
	})
	if err != nil {
		return nil, err
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if dbType == DBTypeSQLite {
		// 单连接避免 database is locked
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// migrateSchema 迁移数据库表结构
func migrateSchema(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.DbUser{},
		&entity.DbGeneratedImage{},
		&entity.DbStyleTemplate{},
	)
}
