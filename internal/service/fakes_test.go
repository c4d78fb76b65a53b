package service

import (
	"sync"

	"roversign-go/internal/client"
	"roversign-go/internal/model"
)

// fakeAPI 按函数字段桩掉上游接口，未设置的方法返回有效状态
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	loginLog       func(uid, cookie string) client.TokenStatus
	refreshData    func(uid, cookie string) client.TokenStatus
	signInTaskList func(uid, cookie string) (*model.SignCalendar, client.TokenStatus)
	signIn         func(uid, cookie string) (int, client.TokenStatus)
	getTask        func(uid, cookie string) (*model.TaskProcess, client.TokenStatus)
	getFormList    func(uid, cookie string) ([]model.Post, client.TokenStatus)
	postDetail     func(uid, cookie, postID string) client.TokenStatus
	like           func(uid, cookie, postID, toUserID string) client.TokenStatus
	bbsSignIn      func(uid, cookie string) client.TokenStatus
	share          func(uid, cookie string) client.TokenStatus
	getGold        func(uid, cookie string) (int, client.TokenStatus)
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeAPI) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) ApplyOptions(_ *model.SignOptions) {}

func (f *fakeAPI) LoginLog(uid, cookie string) client.TokenStatus {
	f.record("LoginLog")
	if f.loginLog != nil {
		return f.loginLog(uid, cookie)
	}
	return client.TokenValid
}

func (f *fakeAPI) RefreshData(uid, cookie string) client.TokenStatus {
	f.record("RefreshData")
	if f.refreshData != nil {
		return f.refreshData(uid, cookie)
	}
	return client.TokenValid
}

func (f *fakeAPI) SignInTaskList(uid, cookie string) (*model.SignCalendar, client.TokenStatus) {
	f.record("SignInTaskList")
	if f.signInTaskList != nil {
		return f.signInTaskList(uid, cookie)
	}
	return &model.SignCalendar{}, client.TokenValid
}

func (f *fakeAPI) SignIn(uid, cookie string) (int, client.TokenStatus) {
	f.record("SignIn")
	if f.signIn != nil {
		return f.signIn(uid, cookie)
	}
	return 200, client.TokenValid
}

func (f *fakeAPI) GetTask(uid, cookie string) (*model.TaskProcess, client.TokenStatus) {
	f.record("GetTask")
	if f.getTask != nil {
		return f.getTask(uid, cookie)
	}
	return &model.TaskProcess{DailyTask: freshDailyTasks()}, client.TokenValid
}

func (f *fakeAPI) GetFormList(uid, cookie string) ([]model.Post, client.TokenStatus) {
	f.record("GetFormList")
	if f.getFormList != nil {
		return f.getFormList(uid, cookie)
	}
	return samplePosts(10), client.TokenValid
}

func (f *fakeAPI) PostDetail(uid, cookie, postID string) client.TokenStatus {
	f.record("PostDetail")
	if f.postDetail != nil {
		return f.postDetail(uid, cookie, postID)
	}
	return client.TokenValid
}

func (f *fakeAPI) Like(uid, cookie, postID, toUserID string) client.TokenStatus {
	f.record("Like")
	if f.like != nil {
		return f.like(uid, cookie, postID, toUserID)
	}
	return client.TokenValid
}

func (f *fakeAPI) BBSSignIn(uid, cookie string) client.TokenStatus {
	f.record("BBSSignIn")
	if f.bbsSignIn != nil {
		return f.bbsSignIn(uid, cookie)
	}
	return client.TokenValid
}

func (f *fakeAPI) Share(uid, cookie string) client.TokenStatus {
	f.record("Share")
	if f.share != nil {
		return f.share(uid, cookie)
	}
	return client.TokenValid
}

func (f *fakeAPI) GetGold(uid, cookie string) (int, client.TokenStatus) {
	f.record("GetGold")
	if f.getGold != nil {
		return f.getGold(uid, cookie)
	}
	return 0, client.TokenValid
}

// freshDailyTasks 四项任务全部未完成
func freshDailyTasks() []model.TaskEntry {
	return []model.TaskEntry{
		{Remark: "用户签到", NeedActionTimes: 1, CompleteTimes: 0},
		{Remark: "浏览3篇帖子", NeedActionTimes: 3, CompleteTimes: 0},
		{Remark: "点赞5次", NeedActionTimes: 5, CompleteTimes: 0},
		{Remark: "分享1次帖子", NeedActionTimes: 1, CompleteTimes: 0},
	}
}

func doneDailyTasks() []model.TaskEntry {
	return []model.TaskEntry{
		{Remark: "用户签到", NeedActionTimes: 1, CompleteTimes: 1},
		{Remark: "浏览3篇帖子", NeedActionTimes: 3, CompleteTimes: 3},
		{Remark: "点赞5次", NeedActionTimes: 5, CompleteTimes: 5},
		{Remark: "分享1次帖子", NeedActionTimes: 1, CompleteTimes: 1},
	}
}

func samplePosts(n int) []model.Post {
	posts := make([]model.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, model.Post{PostID: string(rune('a' + i)), UserID: "u"})
	}
	return posts
}

// fakeSignStore 内存签到进度仓库
type fakeSignStore struct {
	mu      sync.Mutex
	records map[string]*model.SignRecord // uid -> 今日记录
	merges  int
	err     error
}

func newFakeSignStore() *fakeSignStore {
	return &fakeSignStore{records: make(map[string]*model.SignRecord)}
}

func (s *fakeSignStore) GetByDate(uid, _ string) (*model.SignRecord, error) {
	return s.GetToday(uid)
}

func (s *fakeSignStore) GetToday(uid string) (*model.SignRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	rec, ok := s.records[uid]
	if !ok {
		return nil, nil
	}
	clone := *rec
	return &clone, nil
}

func (s *fakeSignStore) MergeRecord(patch *model.SignRecord) (*model.SignRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.merges++
	rec, ok := s.records[patch.UID]
	if !ok {
		clone := *patch
		s.records[patch.UID] = &clone
		return &clone, nil
	}
	rec.Merge(patch)
	clone := *rec
	return &clone, nil
}

func (s *fakeSignStore) CountByDate(_ string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), nil
}

// fakeUserStore 内存账号仓库
type fakeUserStore struct {
	users []model.WavesUser
}

func (s *fakeUserStore) GetAllAutomatable() ([]model.WavesUser, error) {
	return s.users, nil
}

func (s *fakeUserStore) GetByUserID(userID string) ([]model.WavesUser, error) {
	var out []model.WavesUser
	for _, u := range s.users {
		if u.UserID == userID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *fakeUserStore) CountSignEnabled() (int, error) {
	return len(s.users), nil
}

// fakeOptions 固定配置来源
type fakeOptions struct {
	opts *model.SignOptions
}

func defaultTestOptions() *model.SignOptions {
	return &model.SignOptions{
		UserWavesSignin: true,
		UserBBSSignin:   true,
		SchedSignin:     true,
		BBSSchedSignin:  true,
		SignTimeHour:    3,
		ConcurrentNum:   1,
		IntervalMin:     0,
		IntervalMax:     0,
		PrivateReport:   true,
		GroupReport:     true,
	}
}

func (s *fakeOptions) GetAll() (map[string]string, error) {
	return map[string]string{}, nil
}

func (s *fakeOptions) Set(_, _ string) error { return nil }

func (s *fakeOptions) LoadOptions() (*model.SignOptions, error) {
	return s.opts, nil
}
