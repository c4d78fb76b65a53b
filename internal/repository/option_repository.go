package repository

import (
	"database/sql"
	"strconv"

	"roversign-go/internal/model"

	"go.uber.org/zap"
)

// OptionRepository 签到运行配置（命名选项）仓库
type OptionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// 选项默认值（与配置页展示的开关一一对应）
var optionDefaults = map[string]string{
	"UserWavesSignin":     "false", // 用户鸣潮游戏签到开关
	"UserBBSSchedSignin":  "false", // 用户库街区每日任务开关
	"SigninMaster":        "false", // 全部开启签到
	"SchedSignin":         "false", // 定时签到
	"BBSSchedSignin":      "false", // 定时库街区每日任务
	"SignTimeHour":        "3",     // 每晚签到时间（时）
	"SignTimeMinute":      "0",     // 每晚签到时间（分）
	"SigninConcurrentNum": "1",     // 自动签到并发数量，最大5
	"IntervalMin":         "3",     // 批次间隔下限（秒）
	"IntervalMax":         "5",     // 批次间隔上限（秒）
	"PrivateSignReport":   "false", // 签到私聊报告
	"GroupSignReport":     "false", // 签到群组报告
	"GroupSignReportPic":  "false", // 签到群组图片报告
	"KuroUrlProxyUrl":     "",      // 库洛域名代理
	"LocalProxyUrl":       "",      // 本地代理地址
}

func NewOptionRepository(db *sql.DB, logger *zap.Logger) *OptionRepository {
	return &OptionRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureDefaults 补齐缺失的选项行（不覆盖已有值）
func (r *OptionRepository) EnsureDefaults() error {
	for name, value := range optionDefaults {
		query := `INSERT IGNORE INTO sign_options (name, value) VALUES (?, ?)`
		if _, err := r.db.Exec(query, name, value); err != nil {
			r.logger.Error("初始化选项失败", zap.Error(err), zap.String("name", name))
			return err
		}
	}
	return nil
}

// GetAll 读取全部选项
func (r *OptionRepository) GetAll() (map[string]string, error) {
	rows, err := r.db.Query(`SELECT name, value FROM sign_options`)
	if err != nil {
		r.logger.Error("查询选项失败", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	options := make(map[string]string, len(optionDefaults))
	for name, value := range optionDefaults {
		options[name] = value
	}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		options[name] = value
	}

	return options, nil
}

// Set 更新单个选项，未知选项名直接拒绝
func (r *OptionRepository) Set(name, value string) error {
	if _, ok := optionDefaults[name]; !ok {
		return sql.ErrNoRows
	}
	query := `INSERT INTO sign_options (name, value) VALUES (?, ?)
			  ON DUPLICATE KEY UPDATE value = VALUES(value)`
	if _, err := r.db.Exec(query, name, value); err != nil {
		r.logger.Error("更新选项失败", zap.Error(err), zap.String("name", name))
		return err
	}
	return nil
}

// LoadOptions 读取并解析为一次运行使用的配置快照
func (r *OptionRepository) LoadOptions() (*model.SignOptions, error) {
	raw, err := r.GetAll()
	if err != nil {
		return nil, err
	}

	opts := &model.SignOptions{
		UserWavesSignin: raw["UserWavesSignin"] == "true",
		UserBBSSignin:   raw["UserBBSSchedSignin"] == "true",
		SigninMaster:    raw["SigninMaster"] == "true",
		SchedSignin:     raw["SchedSignin"] == "true",
		BBSSchedSignin:  raw["BBSSchedSignin"] == "true",
		SignTimeHour:    parseIntOr(raw["SignTimeHour"], 3),
		SignTimeMinute:  parseIntOr(raw["SignTimeMinute"], 0),
		ConcurrentNum:   parseIntOr(raw["SigninConcurrentNum"], 1),
		IntervalMin:     parseIntOr(raw["IntervalMin"], 3),
		IntervalMax:     parseIntOr(raw["IntervalMax"], 5),
		PrivateReport:   raw["PrivateSignReport"] == "true",
		GroupReport:     raw["GroupSignReport"] == "true",
		GroupReportPic:  raw["GroupSignReportPic"] == "true",
		KuroProxyURL:    raw["KuroUrlProxyUrl"],
		LocalProxyURL:   raw["LocalProxyUrl"],
	}

	// 并发上限5
	if opts.ConcurrentNum < 1 {
		opts.ConcurrentNum = 1
	}
	if opts.ConcurrentNum > 5 {
		opts.ConcurrentNum = 5
	}

	return opts, nil
}

func parseIntOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
