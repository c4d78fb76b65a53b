package repository

import (
	"database/sql"

	"roversign-go/internal/model"
	"roversign-go/internal/utils"

	"go.uber.org/zap"
)

type SignRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSignRepository(db *sql.DB, logger *zap.Logger) *SignRepository {
	return &SignRepository{
		db:     db,
		logger: logger,
	}
}

// GetByDate 查询指定特征码和日期的签到记录，不存在返回nil
func (r *SignRepository) GetByDate(uid, date string) (*model.SignRecord, error) {
	query := `SELECT id, uid, game_sign, bbs_sign, bbs_detail, bbs_like, bbs_share, date
			  FROM rover_signs WHERE uid = ? AND date = ?`

	var rec model.SignRecord
	err := r.db.QueryRow(query, uid, date).Scan(
		&rec.ID,
		&rec.UID,
		&rec.GameSign,
		&rec.BBSSign,
		&rec.BBSDetail,
		&rec.BBSLike,
		&rec.BBSShare,
		&rec.Date,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("查询签到记录失败", zap.Error(err), zap.String("uid", uid))
		return nil, err
	}

	return &rec, nil
}

// GetToday 查询当天签到记录
func (r *SignRepository) GetToday(uid string) (*model.SignRecord, error) {
	return r.GetByDate(uid, utils.TodayDate())
}

// MergeRecord 插入或合并签到记录。
// 记录不存在则插入；存在则仅非零计数覆盖（见 model.SignRecord.Merge），
// 同一天重复提交相同数据不会产生变化。
func (r *SignRepository) MergeRecord(patch *model.SignRecord) (*model.SignRecord, error) {
	if patch == nil || patch.UID == "" {
		return nil, nil
	}
	if patch.Date == "" {
		patch.Date = utils.TodayDate()
	}

	existing, err := r.GetByDate(patch.UID, patch.Date)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		query := `INSERT INTO rover_signs (uid, game_sign, bbs_sign, bbs_detail, bbs_like, bbs_share, date)
				  VALUES (?, ?, ?, ?, ?, ?, ?)`
		result, err := r.db.Exec(query,
			patch.UID, patch.GameSign, patch.BBSSign, patch.BBSDetail, patch.BBSLike, patch.BBSShare, patch.Date)
		if err != nil {
			r.logger.Error("插入签到记录失败", zap.Error(err), zap.String("uid", patch.UID))
			return nil, err
		}
		id, _ := result.LastInsertId()
		patch.ID = int(id)
		return patch, nil
	}

	existing.Merge(patch)

	query := `UPDATE rover_signs SET game_sign = ?, bbs_sign = ?, bbs_detail = ?, bbs_like = ?, bbs_share = ?
			  WHERE id = ?`
	if _, err := r.db.Exec(query,
		existing.GameSign, existing.BBSSign, existing.BBSDetail, existing.BBSLike, existing.BBSShare,
		existing.ID); err != nil {
		r.logger.Error("更新签到记录失败", zap.Error(err), zap.String("uid", patch.UID))
		return nil, err
	}

	return existing, nil
}

// CountByDate 某日签到记录数量（状态页用）
func (r *SignRepository) CountByDate(date string) (int, error) {
	query := `SELECT COUNT(*) FROM rover_signs WHERE date = ?`

	var count int
	if err := r.db.QueryRow(query, date).Scan(&count); err != nil {
		r.logger.Error("统计签到记录失败", zap.Error(err), zap.String("date", date))
		return 0, err
	}
	return count, nil
}
