package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"roversign-go/internal/model"
	"roversign-go/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// TokenStatus 凭证/响应分类
type TokenStatus string

const (
	TokenUnbound       TokenStatus = "未绑定"
	TokenValid         TokenStatus = "有效"
	TokenInvalid       TokenStatus = "登录已过期"
	TokenError         TokenStatus = "错误"
	TokenNotRegistered TokenStatus = "未注册库街区"
	TokenUnknown       TokenStatus = "未知"
	TokenBanned        TokenStatus = "IP封禁"
)

// CredentialStore 客户端回写凭证状态所需的最小仓库契约
type CredentialStore interface {
	SelectByCookie(cookie string) (*model.WavesUser, error)
	MarkInvalid(cookie, reason string) error
	UpdateDevCode(uid, devCode string) error
}

// KuroResponse 库街区API通用响应
type KuroResponse struct {
	Code interface{} `json:"code"` // 可能返回字符串或数字
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// KuroClient 库街区API客户端
type KuroClient struct {
	store   CredentialStore
	limiter *rate.Limiter
	logger  *zap.Logger
	client  *http.Client

	mu       sync.Mutex
	baseURL  string
	proxyURL string
	devCodes map[string]string // cookie -> devCode，同会话内保持稳定
}

func NewKuroClient(baseURL string, qps int, store CredentialStore, logger *zap.Logger) *KuroClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if qps <= 0 {
		qps = 4
	}
	return &KuroClient{
		store:   store,
		limiter: rate.NewLimiter(rate.Limit(qps), qps*2),
		logger:  logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:  baseURL,
		devCodes: make(map[string]string),
	}
}

// ApplyOptions 同步运行配置（域名代理与出口代理），每轮批量开始前调用一次
func (c *KuroClient) ApplyOptions(opts *model.SignOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if opts.KuroProxyURL != "" {
		c.baseURL = strings.TrimRight(opts.KuroProxyURL, "/")
	} else {
		c.baseURL = DefaultBaseURL
	}
	c.proxyURL = opts.LocalProxyURL
}

// parseCode 将可能为string或number的code转换为int
func (c *KuroClient) parseCode(codeAny interface{}) int {
	switch v := codeAny.(type) {
	case nil:
		return 0
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		c.logger.Warn("无法解析响应code", zap.String("code_str", v))
		return 0
	default:
		s := fmt.Sprintf("%v", v)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		return 0
	}
}

// classify 响应分类（与库街区返回文案对齐）
func (c *KuroClient) classify(resp *KuroResponse) TokenStatus {
	if resp == nil {
		return TokenError
	}
	if c.parseCode(resp.Code) == 200 {
		return TokenValid
	}

	dataStr := ""
	if s, ok := resp.Data.(string); ok {
		dataStr = s
	}

	switch {
	case resp.Msg == "请求成功":
		return TokenNotRegistered
	case strings.Contains(resp.Msg, "重新登录") || strings.Contains(resp.Msg, "登录已过期"):
		return TokenInvalid
	case strings.Contains(dataStr, "denied") || strings.Contains(dataStr, "RBAC"):
		return TokenBanned
	default:
		return TokenUnknown
	}
}

// checkResponse 分类响应；凭证失效时回写仓库（尽力而为，不阻塞调用方）
func (c *KuroClient) checkResponse(resp *KuroResponse, uid, cookie string) TokenStatus {
	status := c.classify(resp)
	if status == TokenValid {
		return status
	}

	c.logger.Warn("请求未通过",
		zap.String("uid", uid),
		zap.String("status", string(status)),
		zap.String("msg", respMsg(resp)))

	if status == TokenInvalid && cookie != "" && c.store != nil {
		if err := c.store.MarkInvalid(cookie, "无效"); err != nil {
			c.logger.Error("回写凭证失效状态失败", zap.Error(err), zap.String("uid", uid))
		}
	}
	return status
}

func respMsg(resp *KuroResponse) string {
	if resp == nil {
		return ""
	}
	return resp.Msg
}

// devCodeFor 取账号的稳定设备标识：库里有则用库里的，没有则生成一次并回写
func (c *KuroClient) devCodeFor(cookie, platform string) string {
	c.mu.Lock()
	if code, ok := c.devCodes[cookie]; ok {
		c.mu.Unlock()
		return code
	}
	c.mu.Unlock()

	var user *model.WavesUser
	if c.store != nil {
		user, _ = c.store.SelectByCookie(cookie)
	}

	code := ""
	if user != nil && user.DevCode != "" {
		code = user.DevCode
	} else {
		if platform == "ios" {
			code = utils.GenerateUUID()
		} else {
			code = utils.GenerateDevCode()
		}
		if user != nil && c.store != nil {
			if err := c.store.UpdateDevCode(user.UID, code); err != nil {
				c.logger.Debug("持久化设备标识失败", zap.Error(err))
			}
		}
	}

	c.mu.Lock()
	c.devCodes[cookie] = code
	c.mu.Unlock()
	return code
}

// buildHeaders 构造请求头；withToken为false时仅带设备身份（登录校验场景）
func (c *KuroClient) buildHeaders(cookie string, withToken bool) http.Header {
	platform := "h5"
	accessToken := ""
	if c.store != nil && cookie != "" {
		if user, err := c.store.SelectByCookie(cookie); err == nil && user != nil {
			if user.Platform != "" {
				platform = user.Platform
			}
			accessToken = user.AccessToken
		}
	}

	// 上游对头部键名大小写敏感，直接赋值绕过规范化
	h := http.Header{}
	h.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	h["version"] = []string{"2.5.0"}
	h["devCode"] = []string{c.devCodeFor(cookie, platform)}
	if platform == "ios" {
		h["source"] = []string{"ios"}
		h.Set("User-Agent", "KuroGameBox/1 CFNetwork/3826.500.111.2.2 Darwin/24.4.0")
	} else {
		h["source"] = []string{"h5"}
		h.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36 Edg/136.0.0.0")
	}
	if withToken {
		h["token"] = []string{cookie}
	}
	if accessToken != "" {
		h["b-at"] = []string{accessToken}
	}
	return h
}

// httpClientFor 出口代理按调用时的配置决定
func (c *KuroClient) httpClientFor() *http.Client {
	c.mu.Lock()
	proxy := c.proxyURL
	c.mu.Unlock()

	if proxy == "" {
		return c.client
	}
	proxyFunc := func(*http.Request) (*url.URL, error) {
		return url.Parse(proxy)
	}
	return &http.Client{
		Timeout:   10 * time.Second,
		Transport: &http.Transport{Proxy: proxyFunc},
	}
}

// request 发起一次API调用：最多3次尝试，固定1秒间隔。
// 仅传输失败与非JSON响应触发重试；拿到JSON后无论code是什么都立即返回。
func (c *KuroClient) request(path string, headers http.Header, form url.Values) (*KuroResponse, error) {
	const maxRetries = 3
	const retryDelay = time.Second

	c.mu.Lock()
	fullURL := c.baseURL + path
	c.mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(context.Background()); err != nil {
			return nil, err
		}

		req, err := http.NewRequest("POST", fullURL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header = headers.Clone()

		resp, err := c.httpClientFor().Do(req)
		if err != nil {
			lastErr = err
			c.logger.Warn("请求异常",
				zap.String("url", fullURL),
				zap.Int("attempt", attempt),
				zap.Error(err))
			if attempt < maxRetries {
				time.Sleep(retryDelay)
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			if attempt < maxRetries {
				time.Sleep(retryDelay)
			}
			continue
		}

		var kuroResp KuroResponse
		if err := json.Unmarshal(body, &kuroResp); err != nil {
			lastErr = fmt.Errorf("响应非JSON: %w", err)
			c.logger.Warn("响应解析失败",
				zap.String("url", fullURL),
				zap.Int("attempt", attempt),
				zap.Error(err))
			if attempt < maxRetries {
				time.Sleep(retryDelay)
			}
			continue
		}

		// data有时是再编码过的JSON字符串，尝试二次解码，失败则保留原值
		if s, ok := kuroResp.Data.(string); ok {
			var nested interface{}
			if err := json.Unmarshal([]byte(s), &nested); err == nil {
				kuroResp.Data = nested
			}
		}

		c.logger.Debug("请求完成", zap.String("url", fullURL), zap.Any("code", kuroResp.Code))
		return &kuroResp, nil
	}

	return nil, fmt.Errorf("请求失败(已重试%d次): %w", maxRetries, lastErr)
}

// decodeData 将通用data经二次marshal解析到具体结构
func decodeData(data interface{}, target interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

// LoginLog 登录校验。唯一一个不携带token头的调用。
func (c *KuroClient) LoginLog(uid, cookie string) TokenStatus {
	resp, err := c.request(loginLogPath, c.buildHeaders(cookie, false), url.Values{})
	if err != nil {
		c.logger.Warn("登录校验失败", zap.String("uid", uid), zap.Error(err))
		return TokenError
	}
	return c.checkResponse(resp, uid, cookie)
}

// RefreshData 刷新数据（会话续期）
func (c *KuroClient) RefreshData(uid, cookie string) TokenStatus {
	form := url.Values{}
	form.Set("gameId", strconv.Itoa(GameID))
	form.Set("serverId", ServerIDFor(uid))
	form.Set("roleId", uid)

	resp, err := c.request(refreshDataPath, c.buildHeaders(cookie, true), form)
	if err != nil {
		c.logger.Warn("刷新数据失败", zap.String("uid", uid), zap.Error(err))
		return TokenError
	}
	return c.checkResponse(resp, uid, cookie)
}

// SignInTaskList 游戏签到日历状态
func (c *KuroClient) SignInTaskList(uid, cookie string) (*model.SignCalendar, TokenStatus) {
	form := url.Values{}
	form.Set("gameId", strconv.Itoa(GameID))
	form.Set("serverId", ServerIDFor(uid))
	form.Set("roleId", uid)

	headers := c.buildHeaders(cookie, true)
	headers["devcode"] = []string{""} // 与devCode并存的独立空键，上游如此校验

	resp, err := c.request(signInTaskListPath, headers, form)
	if err != nil {
		return nil, TokenError
	}
	status := c.checkResponse(resp, uid, cookie)
	if status != TokenValid {
		return nil, status
	}

	var calendar model.SignCalendar
	if err := decodeData(resp.Data, &calendar); err != nil {
		c.logger.Warn("签到日历解析失败", zap.String("uid", uid), zap.Error(err))
		return nil, TokenUnknown
	}
	return &calendar, TokenValid
}

// SignIn 游戏签到。返回应用code（1511表示今日已签）与分类。
func (c *KuroClient) SignIn(uid, cookie string) (int, TokenStatus) {
	form := url.Values{}
	form.Set("gameId", strconv.Itoa(GameID))
	form.Set("serverId", ServerIDFor(uid))
	form.Set("roleId", uid)
	form.Set("reqMonth", fmt.Sprintf("%02d", time.Now().Month()))

	headers := c.buildHeaders(cookie, true)
	headers["devcode"] = []string{""} // 与devCode并存的独立空键，上游如此校验

	resp, err := c.request(signInPath, headers, form)
	if err != nil {
		return 0, TokenError
	}
	return c.parseCode(resp.Code), c.checkResponse(resp, uid, cookie)
}

// GetTask 每日任务进度
func (c *KuroClient) GetTask(uid, cookie string) (*model.TaskProcess, TokenStatus) {
	form := url.Values{}
	form.Set("gameId", "0")

	resp, err := c.request(getTaskPath, c.buildHeaders(cookie, true), form)
	if err != nil {
		return nil, TokenError
	}
	status := c.checkResponse(resp, uid, cookie)
	if status != TokenValid {
		return nil, status
	}

	var process model.TaskProcess
	if err := decodeData(resp.Data, &process); err != nil {
		c.logger.Warn("任务进度解析失败", zap.String("uid", uid), zap.Error(err))
		return nil, TokenUnknown
	}
	return &process, TokenValid
}

// GetFormList 论坛帖子列表（1小时缓存，仅成功响应进缓存）
func (c *KuroClient) GetFormList(uid, cookie string) ([]model.Post, TokenStatus) {
	value := forumListCache.Get("forum_list", func() (interface{}, bool) {
		posts, status := c.fetchFormList(uid, cookie)
		return postsWithStatus{posts: posts, status: status}, status == TokenValid
	})

	ps, ok := value.(postsWithStatus)
	if !ok {
		return nil, TokenError
	}
	return ps.posts, ps.status
}

type postsWithStatus struct {
	posts  []model.Post
	status TokenStatus
}

func (c *KuroClient) fetchFormList(uid, cookie string) ([]model.Post, TokenStatus) {
	form := url.Values{}
	form.Set("pageIndex", "1")
	form.Set("pageSize", "20")
	form.Set("timeType", "0")
	form.Set("searchType", "1")
	form.Set("forumId", "9")
	form.Set("gameId", strconv.Itoa(GameID))

	headers := c.buildHeaders(cookie, true)
	headers["version"] = []string{"2.25"}

	resp, err := c.request(forumListPath, headers, form)
	if err != nil {
		return nil, TokenError
	}
	status := c.checkResponse(resp, uid, cookie)
	if status != TokenValid {
		return nil, status
	}

	var list model.FormList
	if err := decodeData(resp.Data, &list); err != nil {
		c.logger.Warn("帖子列表解析失败", zap.String("uid", uid), zap.Error(err))
		return nil, TokenUnknown
	}
	return list.PostList, TokenValid
}

// PostDetail 浏览帖子
func (c *KuroClient) PostDetail(uid, cookie, postID string) TokenStatus {
	form := url.Values{}
	form.Set("postId", postID)
	form.Set("showOrderType", "2")
	form.Set("isOnlyPublisher", "0")

	resp, err := c.request(postDetailPath, c.buildHeaders(cookie, true), form)
	if err != nil {
		return TokenError
	}
	return c.checkResponse(resp, uid, cookie)
}

// Like 点赞帖子
func (c *KuroClient) Like(uid, cookie, postID, toUserID string) TokenStatus {
	form := url.Values{}
	form.Set("gameId", strconv.Itoa(GameID))
	form.Set("likeType", "1")    // 1.点赞帖子 2.评论
	form.Set("operateType", "1") // 1.点赞 2.取消
	form.Set("postId", postID)
	form.Set("toUserId", toUserID)

	resp, err := c.request(likePath, c.buildHeaders(cookie, true), form)
	if err != nil {
		return TokenError
	}
	return c.checkResponse(resp, uid, cookie)
}

// BBSSignIn 社区签到
func (c *KuroClient) BBSSignIn(uid, cookie string) TokenStatus {
	form := url.Values{}
	form.Set("gameId", "2")

	resp, err := c.request(bbsSignInPath, c.buildHeaders(cookie, true), form)
	if err != nil {
		return TokenError
	}
	return c.checkResponse(resp, uid, cookie)
}

// Share 分享任务
func (c *KuroClient) Share(uid, cookie string) TokenStatus {
	form := url.Values{}
	form.Set("gameId", strconv.Itoa(GameID))

	resp, err := c.request(sharePath, c.buildHeaders(cookie, true), form)
	if err != nil {
		return TokenError
	}
	return c.checkResponse(resp, uid, cookie)
}

// GetGold 库街区金币总数
func (c *KuroClient) GetGold(uid, cookie string) (int, TokenStatus) {
	resp, err := c.request(getGoldPath, c.buildHeaders(cookie, true), url.Values{})
	if err != nil {
		return 0, TokenError
	}
	status := c.checkResponse(resp, uid, cookie)
	if status != TokenValid {
		return 0, status
	}

	var gold struct {
		GoldNum int `json:"goldNum"`
	}
	if err := decodeData(resp.Data, &gold); err != nil {
		return 0, TokenValid
	}
	return gold.GoldNum, TokenValid
}
