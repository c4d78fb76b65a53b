package repository

import (
	"database/sql"

	"roversign-go/internal/model"

	"go.uber.org/zap"
)

type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewUserRepository(db *sql.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `id, uid, user_id, bot_id, cookie, access_token, dev_code, platform,
			sign_switch, bbs_sign_switch, status, created_at`

func (r *UserRepository) scanUser(row interface{ Scan(...interface{}) error }) (*model.WavesUser, error) {
	var u model.WavesUser
	err := row.Scan(
		&u.ID,
		&u.UID,
		&u.UserID,
		&u.BotID,
		&u.Cookie,
		&u.AccessToken,
		&u.DevCode,
		&u.Platform,
		&u.SignSwitch,
		&u.BBSSignSwitch,
		&u.Status,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetAllAutomatable 获取所有持有cookie且绑定了用户的账号
func (r *UserRepository) GetAllAutomatable() ([]model.WavesUser, error) {
	query := `SELECT ` + userColumns + ` FROM waves_users
			  WHERE cookie IS NOT NULL AND cookie != '' AND user_id != ''
			  ORDER BY created_at ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("查询可签到账号失败", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var users []model.WavesUser
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			r.logger.Error("扫描账号数据失败", zap.Error(err))
			return nil, err
		}
		users = append(users, *u)
	}

	return users, nil
}

// GetByUserID 获取某个用户绑定的全部账号
func (r *UserRepository) GetByUserID(userID string) ([]model.WavesUser, error) {
	query := `SELECT ` + userColumns + ` FROM waves_users WHERE user_id = ? ORDER BY created_at ASC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		r.logger.Error("查询用户绑定账号失败", zap.Error(err), zap.String("user_id", userID))
		return nil, err
	}
	defer rows.Close()

	var users []model.WavesUser
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}

	return users, nil
}

// FindByUID 通过特征码查找账号
func (r *UserRepository) FindByUID(uid string) (*model.WavesUser, error) {
	query := `SELECT ` + userColumns + ` FROM waves_users WHERE uid = ? LIMIT 1`

	u, err := r.scanUser(r.db.QueryRow(query, uid))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // 账号不存在
		}
		r.logger.Error("查询账号失败", zap.Error(err), zap.String("uid", uid))
		return nil, err
	}

	return u, nil
}

// SelectByCookie 通过cookie反查账号（请求头平台选择用）
func (r *UserRepository) SelectByCookie(cookie string) (*model.WavesUser, error) {
	query := `SELECT ` + userColumns + ` FROM waves_users WHERE cookie = ? LIMIT 1`

	u, err := r.scanUser(r.db.QueryRow(query, cookie))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return u, nil
}

// MarkInvalid 标记凭证失效
func (r *UserRepository) MarkInvalid(cookie, reason string) error {
	query := `UPDATE waves_users SET status = ? WHERE cookie = ?`

	_, err := r.db.Exec(query, reason, cookie)
	if err != nil {
		r.logger.Error("标记凭证失效失败", zap.Error(err))
		return err
	}

	r.logger.Info("⚠️ 凭证已标记失效", zap.String("reason", reason))
	return nil
}

// UpdateDevCode 持久化账号的设备标识，保证会话内稳定
func (r *UserRepository) UpdateDevCode(uid, devCode string) error {
	query := `UPDATE waves_users SET dev_code = ? WHERE uid = ?`

	if _, err := r.db.Exec(query, devCode, uid); err != nil {
		r.logger.Error("更新设备标识失败", zap.Error(err), zap.String("uid", uid))
		return err
	}
	return nil
}

// CountSignEnabled 开启了签到的账号数量（状态页用）
func (r *UserRepository) CountSignEnabled() (int, error) {
	query := `SELECT COUNT(*) FROM waves_users WHERE sign_switch != 'off' OR bbs_sign_switch != 'off'`

	var count int
	if err := r.db.QueryRow(query).Scan(&count); err != nil {
		r.logger.Error("统计开启签到账号失败", zap.Error(err))
		return 0, err
	}
	return count, nil
}
