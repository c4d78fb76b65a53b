package service

import (
	"roversign-go/internal/client"
	"roversign-go/internal/model"

	"go.uber.org/zap"
)

// SignService 游戏签到
type SignService struct {
	api       KuroAPI
	signStore SignStore
	logger    *zap.Logger
}

func NewSignService(api KuroAPI, signStore SignStore, logger *zap.Logger) *SignService {
	return &SignService{
		api:       api,
		signStore: signStore,
		logger:    logger,
	}
}

// SignIn 执行一次游戏签到。
// force为false时先查签到日历，已签则直接落库并跳过。
func (s *SignService) SignIn(uid, cookie string, force bool) TaskOutcome {
	if !force {
		calendar, status := s.api.SignInTaskList(uid, cookie)
		if status == client.TokenValid && calendar != nil && calendar.IsSigIn {
			s.markGameSigned(uid)
			s.logger.Debug("该用户今日已签到，跳过", zap.String("uid", uid))
			return TaskOutcome{Kind: OutcomeSkipped}
		}
	}

	code, status := s.api.SignIn(uid, cookie)
	if status == client.TokenValid {
		s.markGameSigned(uid)
		return TaskOutcome{Kind: OutcomeSucceeded}
	}
	if code == 1511 {
		// 上游判定今日已签
		s.markGameSigned(uid)
		s.logger.Debug("该用户今日已签到，跳过", zap.String("uid", uid))
		return TaskOutcome{Kind: OutcomeSkipped}
	}

	s.logger.Warn("游戏签到失败",
		zap.String("uid", uid),
		zap.Int("code", code),
		zap.String("status", string(status)))
	return TaskOutcome{Kind: OutcomeFailed}
}

func (s *SignService) markGameSigned(uid string) {
	if _, err := s.signStore.MergeRecord(&model.SignRecord{
		UID:      uid,
		GameSign: model.GameSignDone,
	}); err != nil {
		s.logger.Error("保存游戏签到记录失败", zap.Error(err), zap.String("uid", uid))
	}
}

// GameSignMessage 渲染游戏签到结果文案
func GameSignMessage(outcome TaskOutcome) string {
	switch outcome.Kind {
	case OutcomeSkipped:
		return "今日已签到！请勿重复签到！"
	case OutcomeSucceeded:
		return "签到成功！"
	default:
		return "签到失败！"
	}
}
