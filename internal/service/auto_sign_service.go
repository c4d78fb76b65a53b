package service

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"roversign-go/internal/client"
	"roversign-go/internal/model"
	"roversign-go/internal/utils"

	"go.uber.org/zap"
)

// ErrBanned 上游判定出口IP被封禁，本轮剩余账号不再继续
var ErrBanned = errors.New("IP封禁")

// RunReports 一轮定时任务产出的广播报告
type RunReports struct {
	Summary    string
	GameReport *model.BoardCastReport
	BBSReport  *model.BoardCastReport
}

// AutoSignService 批量自动签到调度
type AutoSignService struct {
	users     UserStore
	signStore SignStore
	options   OptionSource
	api       KuroAPI
	signSvc   *SignService
	bbsSvc    *BBSService
	logger    *zap.Logger

	running atomic.Bool
	sleep   func(time.Duration) // 测试时替换
}

func NewAutoSignService(users UserStore, signStore SignStore, options OptionSource,
	api KuroAPI, signSvc *SignService, bbsSvc *BBSService, logger *zap.Logger) *AutoSignService {
	return &AutoSignService{
		users:     users,
		signStore: signStore,
		options:   options,
		api:       api,
		signSvc:   signSvc,
		bbsSvc:    bbsSvc,
		logger:    logger,
		sleep:     time.Sleep,
	}
}

// Running 当前是否有正在进行的批量任务
func (s *AutoSignService) Running() bool {
	return s.running.Load()
}

// RunAll 对全部可自动执行的账号跑一轮签到任务。
// 配置在运行开始时读取一次，整轮使用同一份快照。
func (s *AutoSignService) RunAll() (*RunReports, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, errors.New("上一轮自动签到尚未结束")
	}
	defer s.running.Store(false)

	opts, err := s.options.LoadOptions()
	if err != nil {
		return nil, fmt.Errorf("读取签到配置失败: %w", err)
	}
	s.api.ApplyOptions(opts)

	doGame := opts.SigninMaster || opts.SchedSignin
	doBBS := opts.SigninMaster || opts.BBSSchedSignin
	if !doGame && !doBBS {
		return &RunReports{Summary: "暂无需要签到的账号"}, nil
	}

	users, err := s.users.GetAllAutomatable()
	if err != nil {
		return nil, fmt.Errorf("读取账号列表失败: %w", err)
	}

	targets := s.filterTargets(users, opts, doGame, doBBS)
	if len(targets) == 0 {
		return &RunReports{Summary: "暂无需要签到的账号"}, nil
	}

	s.logger.Info("🔄 开始批量签到",
		zap.Int("total", len(targets)),
		zap.Int("concurrent", opts.ConcurrentNum),
		zap.Bool("game", doGame),
		zap.Bool("bbs", doBBS))

	signBags := NewResultBags()
	bbsBags := NewResultBags()

	banned := s.runBatches(targets, opts, doGame, doBBS, signBags, bbsBags)

	summary := fmt.Sprintf("[鸣潮]自动任务\n今日成功游戏签到 %d 个账号\n今日社区签到 %d 个账号",
		signBags.Success, bbsBags.Success)
	if banned {
		summary = "自动签到失败: IP封禁\n" + summary
		s.logger.Error("❌ 批量签到因IP封禁中止",
			zap.Int("game_success", signBags.Success),
			zap.Int("bbs_success", bbsBags.Success))
	} else {
		s.logger.Info("📊 批量签到完成",
			zap.Int("game_success", signBags.Success),
			zap.Int("game_failed", signBags.Failed),
			zap.Int("bbs_success", bbsBags.Success),
			zap.Int("bbs_failed", bbsBags.Failed))
	}

	reports := &RunReports{Summary: summary}
	if doGame {
		reports.GameReport = ToBoardCast(signBags, "签到", "blue", opts.GroupReportPic, opts, s.logger)
	}
	if doBBS {
		reports.BBSReport = ToBoardCast(bbsBags, "社区签到", "yellow", opts.GroupReportPic, opts, s.logger)
	}
	return reports, nil
}

// signTarget 一个账号在本轮中的执行计划
type signTarget struct {
	user   model.WavesUser
	doGame bool
	doBBS  bool
}

// filterTargets 按总开关、账号开关与今日进度筛出需要执行的账号
func (s *AutoSignService) filterTargets(users []model.WavesUser, opts *model.SignOptions, doGame, doBBS bool) []signTarget {
	var targets []signTarget
	for _, u := range users {
		game := doGame && (opts.SigninMaster || u.SignSwitch != "off")
		bbs := doBBS && (opts.SigninMaster || u.BBSSignSwitch != "off")
		if !game && !bbs {
			continue
		}

		rec, err := s.signStore.GetToday(u.UID)
		if err != nil {
			s.logger.Warn("读取签到记录失败", zap.Error(err), zap.String("uid", u.UID))
		}
		if game && rec.GameSignComplete() {
			game = false
		}
		if bbs && rec.BBSSignComplete() {
			bbs = false
		}
		if !game && !bbs {
			continue
		}
		targets = append(targets, signTarget{user: u, doGame: game, doBBS: bbs})
	}
	return targets
}

// runBatches 按并发上限分批执行，批次间随机停顿；遇到封禁停止后续批次
func (s *AutoSignService) runBatches(targets []signTarget, opts *model.SignOptions,
	doGame, doBBS bool, signBags, bbsBags *ResultBags) bool {
	size := opts.ConcurrentNum
	if size < 1 {
		size = 1
	}

	var bannedFlag atomic.Bool
	for start := 0; start < len(targets); start += size {
		end := start + size
		if end > len(targets) {
			end = len(targets)
		}

		var wg sync.WaitGroup
		for _, t := range targets[start:end] {
			wg.Add(1)
			go func(t signTarget) {
				defer wg.Done()
				if err := s.processUser(t, signBags, bbsBags); errors.Is(err, ErrBanned) {
					bannedFlag.Store(true)
				}
			}(t)
		}
		wg.Wait()

		if bannedFlag.Load() {
			return true
		}
		if end < len(targets) {
			delay := utils.RandomSeconds(float64(opts.IntervalMin), float64(opts.IntervalMax))
			if doBBS {
				delay = time.Duration(float64(delay) * (1 + rand.Float64()))
			}
			s.sleep(delay)
		}
	}
	return false
}

// processUser 单账号流水线：凭证校验 -> 游戏签到 -> 社区任务。
// 凭证缺失或校验未通过的账号静默跳过，不产生任何结果消息。
func (s *AutoSignService) processUser(t signTarget, signBags, bbsBags *ResultBags) error {
	u := t.user
	if !u.HasCookie() {
		s.logger.Debug("账号无可用凭证，跳过", zap.String("uid", u.UID))
		return nil
	}

	if status := s.api.LoginLog(u.UID, u.Cookie); status != client.TokenValid {
		s.logger.Warn("登录校验未通过，跳过该账号",
			zap.String("uid", u.UID), zap.String("status", string(status)))
		return nil
	}
	s.sleep(utils.RandomSeconds(1, 2))

	status := s.api.RefreshData(u.UID, u.Cookie)
	if status == client.TokenBanned {
		return ErrBanned
	}
	if status != client.TokenValid {
		s.logger.Warn("刷新角色数据未通过，跳过该账号",
			zap.String("uid", u.UID), zap.String("status", string(status)))
		return nil
	}
	s.sleep(utils.RandomSeconds(1, 2))

	if t.doGame {
		outcome := s.signSvc.SignIn(u.UID, u.Cookie, false)
		signBags.Route(u.SignSwitch, u.UserID, u.BotID, u.UID, GameSignMessage(outcome), outcome.Failed())
	}
	if t.doBBS {
		outcome := s.bbsSvc.RunDailyTasks(u.UID, u.Cookie)
		bbsBags.Route(u.BBSSignSwitch, u.UserID, u.BotID, u.UID, BBSTaskMessage(outcome), outcome.Failed())
	}
	return nil
}

// SignUpForUser 单用户手动签到，返回面向用户的文案
func (s *AutoSignService) SignUpForUser(userID string) (string, error) {
	opts, err := s.options.LoadOptions()
	if err != nil {
		return "", fmt.Errorf("读取签到配置失败: %w", err)
	}
	if !opts.UserWavesSignin && !opts.UserBBSSignin {
		return "手动签到功能未开启", nil
	}
	s.api.ApplyOptions(opts)

	users, err := s.users.GetByUserID(userID)
	if err != nil {
		return "", fmt.Errorf("读取账号失败: %w", err)
	}
	if len(users) == 0 {
		return "当前特征码未绑定鸣潮账号", nil
	}

	var lines []string
	var expired []string
	for _, u := range users {
		if !u.HasCookie() {
			expired = append(expired, u.UID)
			continue
		}

		rec, err := s.signStore.GetToday(u.UID)
		if err != nil {
			s.logger.Warn("读取签到记录失败", zap.Error(err), zap.String("uid", u.UID))
		}
		gameDone := rec.GameSignComplete()
		bbsDone := rec.BBSSignComplete()

		if (!opts.UserWavesSignin || gameDone) && (!opts.UserBBSSignin || bbsDone) {
			lines = append(lines, fmt.Sprintf("🚫 请勿重复签到\n特征码: %s\n游戏签到: %s\n社区任务: %s",
				u.UID, doneMark(gameDone), doneMark(bbsDone)))
			continue
		}

		userLines := []string{"特征码: " + u.UID}
		if opts.UserWavesSignin && !gameDone {
			outcome := s.signSvc.SignIn(u.UID, u.Cookie, false)
			userLines = append(userLines, "游戏"+GameSignMessage(outcome))
			s.sleep(utils.RandomSeconds(1, 2))
		}
		if opts.UserBBSSignin && !bbsDone {
			outcome := s.bbsSvc.RunDailyTasks(u.UID, u.Cookie)
			userLines = append(userLines, BBSTaskMessage(outcome))
		}
		if gold, status := s.api.GetGold(u.UID, u.Cookie); status == client.TokenValid {
			userLines = append(userLines, fmt.Sprintf("库洛币: %d", gold))
		}
		lines = append(lines, strings.Join(userLines, "\n"))
	}

	if len(expired) > 0 {
		lines = append(lines, "失效特征码: "+strings.Join(expired, "、"))
	}
	return strings.Join(lines, "\n\n"), nil
}

func doneMark(done bool) string {
	if done {
		return "✅ 已完成"
	}
	return "❌ 未完成"
}
