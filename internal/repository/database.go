package repository

import (
	"database/sql"
	"fmt"
	"time"

	"roversign-go/internal/config"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

type Database struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewDatabase(cfg *config.DatabaseConfig, logger *zap.Logger) (*Database, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
	)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开数据库连接失败: %w", err)
	}

	// 配置连接池
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	// 测试连接
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	d := &Database{
		db:     db,
		logger: logger,
	}

	if err := d.ensureSchema(); err != nil {
		return nil, fmt.Errorf("初始化数据表失败: %w", err)
	}

	logger.Info("✅ 数据库连接成功",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.DBName),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns))

	return d, nil
}

// ensureSchema 建表（幂等）
func (d *Database) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS waves_users (
			id INT AUTO_INCREMENT PRIMARY KEY,
			uid VARCHAR(32) NOT NULL,
			user_id VARCHAR(64) NOT NULL,
			bot_id VARCHAR(64) NOT NULL DEFAULT '',
			cookie TEXT,
			access_token TEXT,
			dev_code VARCHAR(64) NOT NULL DEFAULT '',
			platform VARCHAR(16) NOT NULL DEFAULT 'h5',
			sign_switch VARCHAR(32) NOT NULL DEFAULT 'off',
			bbs_sign_switch VARCHAR(32) NOT NULL DEFAULT 'off',
			status VARCHAR(32) NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_user_uid (user_id, uid)
		) CHARACTER SET utf8mb4`,
		`CREATE TABLE IF NOT EXISTS rover_signs (
			id INT AUTO_INCREMENT PRIMARY KEY,
			uid VARCHAR(32) NOT NULL,
			game_sign INT NOT NULL DEFAULT 0,
			bbs_sign INT NOT NULL DEFAULT 0,
			bbs_detail INT NOT NULL DEFAULT 0,
			bbs_like INT NOT NULL DEFAULT 0,
			bbs_share INT NOT NULL DEFAULT 0,
			date VARCHAR(10) NOT NULL,
			UNIQUE KEY uniq_uid_date (uid, date)
		) CHARACTER SET utf8mb4`,
		`CREATE TABLE IF NOT EXISTS sign_options (
			name VARCHAR(64) PRIMARY KEY,
			value VARCHAR(255) NOT NULL DEFAULT ''
		) CHARACTER SET utf8mb4`,
	}

	for _, stmt := range stmts {
		if _, err := d.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

func (d *Database) Close() error {
	return d.db.Close()
}

// 健康检查
func (d *Database) Ping() error {
	return d.db.Ping()
}
