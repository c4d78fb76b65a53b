package service

import (
	"math/rand"
	"strings"
	"time"

	"roversign-go/internal/client"
	"roversign-go/internal/model"

	"go.uber.org/zap"
)

// BBSService 库街区每日任务（签到/浏览/点赞/分享）
type BBSService struct {
	api       KuroAPI
	signStore SignStore
	logger    *zap.Logger
	sleep     func(time.Duration) // 测试时替换
}

func NewBBSService(api KuroAPI, signStore SignStore, logger *zap.Logger) *BBSService {
	return &BBSService{
		api:       api,
		signStore: signStore,
		logger:    logger,
		sleep:     time.Sleep,
	}
}

// actionDelay 动作间随机停顿0~1秒，避免请求节奏呈现脚本特征
func (s *BBSService) actionDelay() {
	s.sleep(time.Duration(rand.Float64() * float64(time.Second)))
}

// RunDailyTasks 执行一个账号当日的社区任务集。
// 任务以随机顺序逐项执行，全部结束后进度一次性落库。
func (s *BBSService) RunDailyTasks(uid, cookie string) TaskOutcome {
	rec, err := s.signStore.GetToday(uid)
	if err != nil {
		return TaskOutcome{Kind: OutcomeFailed}
	}
	if rec == nil {
		rec = &model.SignRecord{UID: uid}
	}

	process, status := s.api.GetTask(uid, cookie)
	if status != client.TokenValid || process == nil || len(process.DailyTask) == 0 {
		s.logger.Warn("获取任务列表失败", zap.String("uid", uid), zap.String("status", string(status)))
		return TaskOutcome{Kind: OutcomeFailed}
	}

	// 上游已全部完成：本地计数对齐后直接返回
	if allComplete(process.DailyTask) {
		s.selfHeal(uid, rec)
		return TaskOutcome{Kind: OutcomeSucceeded}
	}

	// 浏览/点赞需要候选帖子
	var posts []model.Post
	if needPostList(process.DailyTask) {
		posts, status = s.api.GetFormList(uid, cookie)
		if status != client.TokenValid || len(posts) == 0 {
			s.logger.Warn("获取帖子列表失败", zap.String("uid", uid), zap.String("status", string(status)))
			return TaskOutcome{Kind: OutcomeFailed}
		}
		posts = append([]model.Post(nil), posts...)
		rand.Shuffle(len(posts), func(i, j int) {
			posts[i], posts[j] = posts[j], posts[i]
		})
	}

	results := map[string]bool{
		TaskBBSSign:   false,
		TaskBBSDetail: false,
		TaskBBSLike:   false,
		TaskBBSShare:  false,
	}

	// 随机打乱任务顺序
	entries := append([]model.TaskEntry(nil), process.DailyTask...)
	rand.Shuffle(len(entries), func(i, j int) {
		entries[i], entries[j] = entries[j], entries[i]
	})

	for _, entry := range entries {
		switch {
		case strings.Contains(entry.Remark, "签到"):
			results[TaskBBSSign] = s.doSignIn(entry, uid, cookie, rec)
		case strings.Contains(entry.Remark, "浏览"):
			results[TaskBBSDetail] = s.doDetail(entry, uid, cookie, posts, rec)
		case strings.Contains(entry.Remark, "点赞"):
			results[TaskBBSLike] = s.doLike(entry, uid, cookie, posts, rec)
		case strings.Contains(entry.Remark, "分享"):
			results[TaskBBSShare] = s.doShare(entry, uid, cookie, rec)
		}

		s.actionDelay()
	}

	if _, err := s.signStore.MergeRecord(rec); err != nil {
		s.logger.Error("保存社区任务进度失败", zap.Error(err), zap.String("uid", uid))
	}

	return TaskOutcome{Kind: OutcomePartial, Tasks: results}
}

func allComplete(entries []model.TaskEntry) bool {
	for _, e := range entries {
		if !e.Complete() {
			return false
		}
	}
	return true
}

// needPostList 是否存在未完成的浏览/点赞任务
func needPostList(entries []model.TaskEntry) bool {
	for _, e := range entries {
		if e.Complete() {
			continue
		}
		if strings.Contains(e.Remark, "浏览") || strings.Contains(e.Remark, "点赞") {
			return true
		}
	}
	return false
}

// selfHeal 上游全部完成时将本地落后的计数补齐，只落库一次
func (s *BBSService) selfHeal(uid string, rec *model.SignRecord) {
	changed := false
	if rec.BBSSign != model.BBSSignDone {
		rec.BBSSign = model.BBSSignDone
		changed = true
	}
	if rec.BBSDetail != model.BBSDetailDone {
		rec.BBSDetail = model.BBSDetailDone
		changed = true
	}
	if rec.BBSLike != model.BBSLikeDone {
		rec.BBSLike = model.BBSLikeDone
		changed = true
	}
	if rec.BBSShare != model.BBSShareDone {
		rec.BBSShare = model.BBSShareDone
		changed = true
	}
	if changed {
		if _, err := s.signStore.MergeRecord(rec); err != nil {
			s.logger.Error("补齐社区任务进度失败", zap.Error(err), zap.String("uid", uid))
		}
	}
}

// doSignIn 社区签到
func (s *BBSService) doSignIn(entry model.TaskEntry, uid, cookie string, rec *model.SignRecord) bool {
	if entry.Complete() || rec.BBSSign == model.BBSSignDone {
		rec.BBSSign = model.BBSSignDone
		return true
	}

	if status := s.api.BBSSignIn(uid, cookie); status != client.TokenValid {
		s.logger.Warn("社区签到失败", zap.String("uid", uid), zap.String("status", string(status)))
		return false
	}
	rec.BBSSign = model.BBSSignDone
	return true
}

// doDetail 浏览帖子直至补足缺口，单次失败即中止本轮
func (s *BBSService) doDetail(entry model.TaskEntry, uid, cookie string, posts []model.Post, rec *model.SignRecord) bool {
	if entry.Complete() || rec.BBSDetail == model.BBSDetailDone {
		rec.BBSDetail = model.BBSDetailDone
		return true
	}

	need := entry.NeedActionTimes - entry.CompleteTimes
	succ := 0
	for _, post := range posts {
		if status := s.api.PostDetail(uid, cookie, post.PostID); status != client.TokenValid {
			break
		}
		succ++
		rec.BBSDetail++
		if succ >= need {
			rec.BBSDetail = model.BBSDetailDone
			return true
		}
		s.actionDelay()
	}

	s.logger.Warn("浏览任务未完成", zap.String("uid", uid), zap.Int("succ", succ), zap.Int("need", need))
	return false
}

// doLike 点赞帖子直至补足缺口，单次失败即中止本轮
func (s *BBSService) doLike(entry model.TaskEntry, uid, cookie string, posts []model.Post, rec *model.SignRecord) bool {
	if entry.Complete() || rec.BBSLike == model.BBSLikeDone {
		rec.BBSLike = model.BBSLikeDone
		return true
	}

	need := entry.NeedActionTimes - entry.CompleteTimes
	succ := 0
	for _, post := range posts {
		if status := s.api.Like(uid, cookie, post.PostID, post.UserID); status != client.TokenValid {
			break
		}
		succ++
		rec.BBSLike++
		if succ >= need {
			rec.BBSLike = model.BBSLikeDone
			return true
		}
		s.actionDelay()
	}

	s.logger.Warn("点赞任务未完成", zap.String("uid", uid), zap.Int("succ", succ), zap.Int("need", need))
	return false
}

// doShare 分享，单次尝试
func (s *BBSService) doShare(entry model.TaskEntry, uid, cookie string, rec *model.SignRecord) bool {
	if entry.Complete() || rec.BBSShare == model.BBSShareDone {
		rec.BBSShare = model.BBSShareDone
		return true
	}

	if status := s.api.Share(uid, cookie); status != client.TokenValid {
		s.logger.Warn("分享任务失败", zap.String("uid", uid), zap.String("status", string(status)))
		return false
	}
	rec.BBSShare = model.BBSShareDone
	return true
}

// BBSTaskMessage 渲染社区任务结果文案
func BBSTaskMessage(outcome TaskOutcome) string {
	switch outcome.Kind {
	case OutcomeSucceeded, OutcomeSkipped:
		return "社区签到成功"
	case OutcomeFailed:
		return "社区签到失败"
	}

	var lines []string
	for _, name := range []string{TaskBBSSign, TaskBBSDetail, TaskBBSLike, TaskBBSShare} {
		if outcome.Tasks[name] {
			lines = append(lines, name+": 成功")
		} else {
			lines = append(lines, name+": 失败")
		}
	}
	return strings.Join(lines, "\n")
}
