package service

import (
	"testing"
	"time"

	"roversign-go/internal/client"
	"roversign-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBBSService(api *fakeAPI, store *fakeSignStore) *BBSService {
	svc := NewBBSService(api, store, zap.NewNop())
	svc.sleep = func(time.Duration) {}
	return svc
}

func TestRunDailyTasksAllSucceed(t *testing.T) {
	api := &fakeAPI{}
	store := newFakeSignStore()
	svc := newTestBBSService(api, store)

	outcome := svc.RunDailyTasks("100000001", "ck")

	assert.Equal(t, OutcomePartial, outcome.Kind)
	for name, ok := range outcome.Tasks {
		assert.True(t, ok, name)
	}
	assert.True(t, outcome.AllDone())
	assert.False(t, outcome.Failed())

	rec, err := store.GetToday("100000001")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.BBSSignComplete())
	assert.Equal(t, 1, store.merges, "进度应一次性落库")

	assert.Equal(t, model.BBSDetailDone, api.callCount("PostDetail"))
	assert.Equal(t, model.BBSLikeDone, api.callCount("Like"))
	assert.Equal(t, 1, api.callCount("BBSSignIn"))
	assert.Equal(t, 1, api.callCount("Share"))
}

func TestRunDailyTasksSelfHeal(t *testing.T) {
	api := &fakeAPI{
		getTask: func(_, _ string) (*model.TaskProcess, client.TokenStatus) {
			return &model.TaskProcess{DailyTask: doneDailyTasks()}, client.TokenValid
		},
	}
	store := newFakeSignStore()
	store.records["100000001"] = &model.SignRecord{UID: "100000001", BBSSign: 1}
	svc := newTestBBSService(api, store)

	outcome := svc.RunDailyTasks("100000001", "ck")

	assert.Equal(t, OutcomeSucceeded, outcome.Kind)
	rec, _ := store.GetToday("100000001")
	assert.True(t, rec.BBSSignComplete(), "本地计数应补齐")
	assert.Equal(t, 0, api.callCount("BBSSignIn"))
	assert.Equal(t, 0, api.callCount("GetFormList"))
}

func TestRunDailyTasksBrowseFailureIsPartial(t *testing.T) {
	api := &fakeAPI{
		postDetail: func(_, _, _ string) client.TokenStatus {
			return client.TokenError
		},
	}
	store := newFakeSignStore()
	svc := newTestBBSService(api, store)

	outcome := svc.RunDailyTasks("100000001", "ck")

	require.Equal(t, OutcomePartial, outcome.Kind)
	assert.False(t, outcome.Tasks[TaskBBSDetail])
	assert.True(t, outcome.Tasks[TaskBBSSign])
	assert.True(t, outcome.Tasks[TaskBBSLike])
	assert.True(t, outcome.Tasks[TaskBBSShare])
	assert.True(t, outcome.Failed())

	// 其余任务的进度仍然落库
	rec, _ := store.GetToday("100000001")
	require.NotNil(t, rec)
	assert.Equal(t, model.BBSLikeDone, rec.BBSLike)
	assert.NotEqual(t, model.BBSDetailDone, rec.BBSDetail)
}

func TestRunDailyTasksTaskListError(t *testing.T) {
	api := &fakeAPI{
		getTask: func(_, _ string) (*model.TaskProcess, client.TokenStatus) {
			return nil, client.TokenInvalid
		},
	}
	svc := newTestBBSService(api, newFakeSignStore())

	outcome := svc.RunDailyTasks("100000001", "ck")
	assert.Equal(t, OutcomeFailed, outcome.Kind)
}

func TestRunDailyTasksSkipsFormListWhenNotNeeded(t *testing.T) {
	api := &fakeAPI{
		getTask: func(_, _ string) (*model.TaskProcess, client.TokenStatus) {
			return &model.TaskProcess{DailyTask: []model.TaskEntry{
				{Remark: "用户签到", NeedActionTimes: 1, CompleteTimes: 0},
				{Remark: "浏览3篇帖子", NeedActionTimes: 3, CompleteTimes: 3},
				{Remark: "点赞5次", NeedActionTimes: 5, CompleteTimes: 5},
				{Remark: "分享1次帖子", NeedActionTimes: 1, CompleteTimes: 0},
			}}, client.TokenValid
		},
	}
	store := newFakeSignStore()
	svc := newTestBBSService(api, store)

	outcome := svc.RunDailyTasks("100000001", "ck")

	assert.Equal(t, 0, api.callCount("GetFormList"), "无未完成的浏览/点赞任务时不应拉取帖子")
	require.Equal(t, OutcomePartial, outcome.Kind)
	assert.True(t, outcome.AllDone())
}

func TestRunDailyTasksFillsBrowseGapOnly(t *testing.T) {
	api := &fakeAPI{
		getTask: func(_, _ string) (*model.TaskProcess, client.TokenStatus) {
			return &model.TaskProcess{DailyTask: []model.TaskEntry{
				{Remark: "用户签到", NeedActionTimes: 1, CompleteTimes: 1},
				{Remark: "浏览3篇帖子", NeedActionTimes: 3, CompleteTimes: 1},
				{Remark: "点赞5次", NeedActionTimes: 5, CompleteTimes: 5},
				{Remark: "分享1次帖子", NeedActionTimes: 1, CompleteTimes: 1},
			}}, client.TokenValid
		},
	}
	store := newFakeSignStore()
	store.records["100000001"] = &model.SignRecord{UID: "100000001", BBSSign: 1, BBSDetail: 1}
	svc := newTestBBSService(api, store)

	outcome := svc.RunDailyTasks("100000001", "ck")

	assert.Equal(t, 2, api.callCount("PostDetail"), "只应补足浏览缺口")
	assert.Equal(t, 0, api.callCount("Like"))
	require.Equal(t, OutcomePartial, outcome.Kind)
	assert.True(t, outcome.AllDone())

	rec, _ := store.GetToday("100000001")
	assert.Equal(t, model.BBSDetailDone, rec.BBSDetail)

	// 当日二次执行：上游已全部完成，不再发起动作
	api2 := &fakeAPI{
		getTask: func(_, _ string) (*model.TaskProcess, client.TokenStatus) {
			return &model.TaskProcess{DailyTask: doneDailyTasks()}, client.TokenValid
		},
	}
	svc2 := newTestBBSService(api2, store)
	outcome2 := svc2.RunDailyTasks("100000001", "ck")

	assert.Equal(t, OutcomeSucceeded, outcome2.Kind)
	assert.Equal(t, 0, api2.callCount("PostDetail"))
}

func TestBBSTaskMessage(t *testing.T) {
	assert.Equal(t, "社区签到成功", BBSTaskMessage(TaskOutcome{Kind: OutcomeSucceeded}))
	assert.Equal(t, "社区签到失败", BBSTaskMessage(TaskOutcome{Kind: OutcomeFailed}))

	msg := BBSTaskMessage(TaskOutcome{Kind: OutcomePartial, Tasks: map[string]bool{
		TaskBBSSign:   true,
		TaskBBSDetail: false,
		TaskBBSLike:   true,
		TaskBBSShare:  true,
	}})
	assert.Contains(t, msg, TaskBBSSign+": 成功")
	assert.Contains(t, msg, TaskBBSDetail+": 失败")
}
