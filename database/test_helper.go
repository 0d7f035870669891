package database

import (
	"fmt"
	"path/filepath"

	"gorm.io/gorm"
)

// CreateTestDB 在 dir 下创建一个已迁移的临时数据库
func CreateTestDB(dir string) (*gorm.DB, error) {
	gdb, err := OpenDB(filepath.Join(dir, "test.db"))
	if err != nil {
		return nil, fmt.Errorf("创建测试数据库失败: %w", err)
	}
	return gdb, nil
}

// CleanupTestDB 关闭测试数据库连接
func CleanupTestDB(gdb *gorm.DB) error {
	if gdb != nil {
		sqlDB, err := gdb.DB()
		if err != nil {
			return fmt.Errorf("获取数据库实例失败: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("关闭数据库连接失败: %w", err)
		}
	}
	return nil
}
