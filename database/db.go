package database

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/sing-box-orbit/sing-box-orbit-back/config"
	"github.com/sing-box-orbit/sing-box-orbit-back/database/model"
	"github.com/sing-box-orbit/sing-box-orbit-back/logger"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var db *gorm.DB

func GetDBProvider() *gorm.DB {
	return GetDB()
}

// dsn 为 sqlite 文件追加 busy_timeout，并发写入时等待锁而不是直接失败
func dsn(dbPath string) string {
	if strings.Contains(dbPath, "?") {
		return dbPath
	}
	return dbPath + "?_busy_timeout=5000"
}

func initModels(gdb *gorm.DB) error {
	for _, m := range model.AllModels() {
		if err := gdb.AutoMigrate(m); err != nil {
			logger.Errorf("Error auto migrating model: %v", err)
			return err
		}
	}
	return nil
}

// OpenDB 打开并迁移数据库，不修改全局连接
func OpenDB(dbPath string) (*gorm.DB, error) {
	dir := path.Dir(dbPath)
	if err := os.MkdirAll(dir, fs.ModePerm); err != nil {
		return nil, err
	}

	var gormLogger gormlogger.Interface
	if config.IsDebug() {
		gormLogger = gormlogger.Default
	} else {
		gormLogger = gormlogger.Discard
	}

	// 级联删除由 repository 显式完成，不依赖数据库外键
	gdb, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger:                                   gormLogger,
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	// 启用 SQLite WAL 模式
	gdb.Exec("PRAGMA journal_mode=WAL;")
	gdb.Exec("PRAGMA synchronous=NORMAL;")

	if err := initModels(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

func InitDB(dbPath string) error {
	gdb, err := OpenDB(dbPath)
	if err != nil {
		return err
	}
	db = gdb
	return nil
}

func CloseDB() error {
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

func GetDB() *gorm.DB {
	return db
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate 判断是否违反唯一约束
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// WithTx 执行带事务的操作，自动处理 Commit/Rollback
// 如果 fn 返回 nil，事务将被提交；如果返回 error，事务将被回滚
func WithTx(gdb *gorm.DB, fn func(tx *gorm.DB) error) error {
	tx := gdb.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// WithTxResult 执行带事务的操作并返回结果，自动处理 Commit/Rollback
func WithTxResult[T any](gdb *gorm.DB, fn func(tx *gorm.DB) (T, error)) (T, error) {
	var zero T
	tx := gdb.Begin()
	if tx.Error != nil {
		return zero, tx.Error
	}

	result, err := fn(tx)
	if err != nil {
		tx.Rollback()
		return zero, err
	}
	return result, tx.Commit().Error
}
