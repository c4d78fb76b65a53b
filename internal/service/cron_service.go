package service

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronService 定时签到调度。签到时刻存在配置表中，修改后需Reschedule。
type CronService struct {
	cron        *cron.Cron
	autoSignSvc *AutoSignService
	options     OptionSource
	broadcaster Broadcaster
	logger      *zap.Logger

	entryID cron.EntryID
}

func NewCronService(autoSignSvc *AutoSignService, options OptionSource,
	broadcaster Broadcaster, logger *zap.Logger) *CronService {
	// 创建cron实例，使用秒级精度
	c := cron.New(cron.WithSeconds())

	return &CronService{
		cron:        c,
		autoSignSvc: autoSignSvc,
		options:     options,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Start 按当前配置注册每日签到任务并启动调度
func (s *CronService) Start() error {
	s.logger.Info("🕒 启动定时任务服务")

	if err := s.register(); err != nil {
		return err
	}
	s.cron.Start()

	s.logger.Info("✅ 定时任务服务启动成功")
	return nil
}

// Reschedule 配置的签到时刻变化后重新注册任务
func (s *CronService) Reschedule() error {
	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
		s.entryID = 0
	}
	return s.register()
}

func (s *CronService) register() error {
	opts, err := s.options.LoadOptions()
	if err != nil {
		s.logger.Error("读取签到配置失败", zap.Error(err))
		return err
	}

	spec := fmt.Sprintf("0 %d %d * * *", opts.SignTimeMinute, opts.SignTimeHour)
	id, err := s.cron.AddFunc(spec, s.runAutoSign)
	if err != nil {
		s.logger.Error("添加自动签到任务失败", zap.Error(err), zap.String("spec", spec))
		return err
	}
	s.entryID = id

	s.logger.Info("📅 自动签到任务已注册",
		zap.Int("hour", opts.SignTimeHour),
		zap.Int("minute", opts.SignTimeMinute))
	return nil
}

// runAutoSign 跑一轮批量签到并推送广播报告
func (s *CronService) runAutoSign() {
	s.logger.Info("🔄 开始执行自动签到任务")

	reports, err := s.autoSignSvc.RunAll()
	if err != nil {
		s.logger.Error("自动签到任务执行失败", zap.Error(err))
		return
	}

	if reports.GameReport != nil {
		if err := s.broadcaster.Push(BroadcastGameSign, reports.GameReport); err != nil {
			s.logger.Warn("推送游戏签到报告失败", zap.Error(err))
		}
	}
	if reports.BBSReport != nil {
		if err := s.broadcaster.Push(BroadcastBBSSign, reports.BBSReport); err != nil {
			s.logger.Warn("推送社区任务报告失败", zap.Error(err))
		}
	}

	s.logger.Info("✅ 自动签到任务完成", zap.String("summary", reports.Summary))
}

// Stop 停止定时任务
func (s *CronService) Stop() {
	s.logger.Info("🛑 停止定时任务服务")
	s.cron.Stop()
	s.logger.Info("✅ 定时任务服务已停止")
}
