package service

import (
	"roversign-go/internal/client"
	"roversign-go/internal/model"
)

// 社区四项任务在结果中的展示名
const (
	TaskBBSSign   = "用户签到"
	TaskBBSDetail = "浏览帖子"
	TaskBBSLike   = "点赞帖子"
	TaskBBSShare  = "分享帖子"
)

// OutcomeKind 单项任务执行结果类别
type OutcomeKind int

const (
	OutcomeSkipped  OutcomeKind = iota // 今日已完成，未发起请求
	OutcomeSucceeded
	OutcomeFailed
	OutcomePartial // 社区任务逐项结果，见Tasks
)

// TaskOutcome 一个账号单条任务线的执行结果
type TaskOutcome struct {
	Kind  OutcomeKind
	Tasks map[string]bool // Kind==OutcomePartial时有效
}

// Failed 是否计入失败统计（部分完成时只要有一项失败即失败）
func (o TaskOutcome) Failed() bool {
	switch o.Kind {
	case OutcomeFailed:
		return true
	case OutcomePartial:
		for _, ok := range o.Tasks {
			if !ok {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// AllDone 是否全部完成（含跳过）
func (o TaskOutcome) AllDone() bool {
	switch o.Kind {
	case OutcomeSkipped, OutcomeSucceeded:
		return true
	case OutcomePartial:
		for _, ok := range o.Tasks {
			if !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// SignStore 签到进度仓库契约
type SignStore interface {
	GetByDate(uid, date string) (*model.SignRecord, error)
	GetToday(uid string) (*model.SignRecord, error)
	MergeRecord(patch *model.SignRecord) (*model.SignRecord, error)
	CountByDate(date string) (int, error)
}

// UserStore 账号仓库契约
type UserStore interface {
	GetAllAutomatable() ([]model.WavesUser, error)
	GetByUserID(userID string) ([]model.WavesUser, error)
	CountSignEnabled() (int, error)
}

// OptionSource 运行配置来源
type OptionSource interface {
	GetAll() (map[string]string, error)
	Set(name, value string) error
	LoadOptions() (*model.SignOptions, error)
}

// KuroAPI 上游接口契约（由 client.KuroClient 实现）
type KuroAPI interface {
	ApplyOptions(opts *model.SignOptions)
	LoginLog(uid, cookie string) client.TokenStatus
	RefreshData(uid, cookie string) client.TokenStatus
	SignInTaskList(uid, cookie string) (*model.SignCalendar, client.TokenStatus)
	SignIn(uid, cookie string) (int, client.TokenStatus)
	GetTask(uid, cookie string) (*model.TaskProcess, client.TokenStatus)
	GetFormList(uid, cookie string) ([]model.Post, client.TokenStatus)
	PostDetail(uid, cookie, postID string) client.TokenStatus
	Like(uid, cookie, postID, toUserID string) client.TokenStatus
	BBSSignIn(uid, cookie string) client.TokenStatus
	Share(uid, cookie string) client.TokenStatus
	GetGold(uid, cookie string) (int, client.TokenStatus)
}
