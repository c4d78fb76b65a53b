package model

import (
	"time"
)

// WavesUser 已绑定的鸣潮账号
type WavesUser struct {
	ID            int       `json:"id" db:"id"`
	UID           string    `json:"uid" db:"uid"`
	UserID        string    `json:"user_id" db:"user_id"`
	BotID         string    `json:"bot_id" db:"bot_id"`
	Cookie        string    `json:"-" db:"cookie"`
	AccessToken   string    `json:"-" db:"access_token"`
	DevCode       string    `json:"-" db:"dev_code"`
	Platform      string    `json:"platform" db:"platform"`
	SignSwitch    string    `json:"sign_switch" db:"sign_switch"`
	BBSSignSwitch string    `json:"bbs_sign_switch" db:"bbs_sign_switch"`
	Status        string    `json:"status" db:"status"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// HasCookie 是否持有可用凭证（status非空表示已被标记失效）
func (u *WavesUser) HasCookie() bool {
	return u.Cookie != "" && u.Status == ""
}

// 各子任务完成阈值
const (
	GameSignDone  = 1 // 游戏签到
	BBSSignDone   = 1 // 社区签到
	BBSDetailDone = 3 // 社区浏览
	BBSLikeDone   = 5 // 社区点赞
	BBSShareDone  = 1 // 社区分享
)

// SignRecord 每日签到进度，按 (uid, date) 唯一
type SignRecord struct {
	ID        int    `json:"id" db:"id"`
	UID       string `json:"uid" db:"uid"`
	GameSign  int    `json:"game_sign" db:"game_sign"`
	BBSSign   int    `json:"bbs_sign" db:"bbs_sign"`
	BBSDetail int    `json:"bbs_detail" db:"bbs_detail"`
	BBSLike   int    `json:"bbs_like" db:"bbs_like"`
	BBSShare  int    `json:"bbs_share" db:"bbs_share"`
	Date      string `json:"date" db:"date"`
}

// GameSignComplete 游戏签到是否完成
func (r *SignRecord) GameSignComplete() bool {
	return r != nil && r.GameSign == GameSignDone
}

// BBSSignComplete 社区四项任务是否全部完成
func (r *SignRecord) BBSSignComplete() bool {
	return r != nil &&
		r.BBSSign == BBSSignDone &&
		r.BBSDetail == BBSDetailDone &&
		r.BBSLike == BBSLikeDone &&
		r.BBSShare == BBSShareDone
}

// Merge 将 patch 中非零的计数合并进当前记录。
// 同一份数据重复合并结果不变，重试场景下安全。
func (r *SignRecord) Merge(patch *SignRecord) {
	if patch == nil {
		return
	}
	if patch.GameSign != 0 {
		r.GameSign = patch.GameSign
	}
	if patch.BBSSign != 0 {
		r.BBSSign = patch.BBSSign
	}
	if patch.BBSDetail != 0 {
		r.BBSDetail = patch.BBSDetail
	}
	if patch.BBSLike != 0 {
		r.BBSLike = patch.BBSLike
	}
	if patch.BBSShare != 0 {
		r.BBSShare = patch.BBSShare
	}
}

// TaskEntry 库街区每日任务条目（上游返回，不落库）
type TaskEntry struct {
	Remark          string `json:"remark"`
	NeedActionTimes int    `json:"needActionTimes"`
	CompleteTimes   int    `json:"completeTimes"`
}

// Complete 该条目上游是否已完成
func (t *TaskEntry) Complete() bool {
	return t.CompleteTimes == t.NeedActionTimes
}

// TaskProcess getTaskProcess 响应数据
type TaskProcess struct {
	DailyTask []TaskEntry `json:"dailyTask"`
}

// Post 论坛帖子（浏览/点赞的候选对象）
type Post struct {
	PostID string `json:"postId"`
	UserID string `json:"userId"`
}

// FormList forum/list 响应数据
type FormList struct {
	PostList []Post `json:"postList"`
}

// SignCalendar initSignInV2 响应数据
type SignCalendar struct {
	IsSigIn bool `json:"isSigIn"`
}

// SignOptions 一次批量签到运行所使用的配置快照。
// 批次开始时从配置仓库读取一次，运行中不再回读。
type SignOptions struct {
	UserWavesSignin bool   `json:"user_waves_signin"` // 用户手动游戏签到开关
	UserBBSSignin   bool   `json:"user_bbs_signin"`   // 用户手动社区任务开关
	SigninMaster    bool   `json:"signin_master"`     // 全部开启签到
	SchedSignin     bool   `json:"sched_signin"`      // 定时游戏签到
	BBSSchedSignin  bool   `json:"bbs_sched_signin"`  // 定时社区任务
	SignTimeHour    int    `json:"sign_time_hour"`
	SignTimeMinute  int    `json:"sign_time_minute"`
	ConcurrentNum   int    `json:"concurrent_num"`   // 并发上限（最大5）
	IntervalMin     int    `json:"interval_min"`     // 批次间隔下限（秒）
	IntervalMax     int    `json:"interval_max"`     // 批次间隔上限（秒）
	PrivateReport   bool   `json:"private_report"`   // 私聊报告
	GroupReport     bool   `json:"group_report"`     // 群组报告
	GroupReportPic  bool   `json:"group_report_pic"` // 群组图片报告
	KuroProxyURL    string `json:"kuro_proxy_url"`   // 库洛域名代理
	LocalProxyURL   string `json:"local_proxy_url"`  // 本地出口代理
}

// MessageSegment 广播消息段（text / at / image）
type MessageSegment struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// TextSegment 文本消息段
func TextSegment(text string) MessageSegment {
	return MessageSegment{Type: "text", Data: text}
}

// AtSegment @用户消息段
func AtSegment(userID string) MessageSegment {
	return MessageSegment{Type: "at", Data: userID}
}

// ImageSegment base64编码的PNG图片消息段
func ImageSegment(b64 string) MessageSegment {
	return MessageSegment{Type: "image", Data: b64}
}

// BoardCastMsg 单个目标的广播消息
type BoardCastMsg struct {
	BotID    string           `json:"bot_id"`
	Messages []MessageSegment `json:"messages"`
}

// BoardCastReport 聚合后的广播报告：私聊目标 -> 消息列表，群 -> 单条汇总
type BoardCastReport struct {
	PrivateMsgs map[string][]BoardCastMsg `json:"private_msg_dict"`
	GroupMsgs   map[string]BoardCastMsg   `json:"group_msg_dict"`
}

// APIResponse HTTP接口统一响应结构
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}
