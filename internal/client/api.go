package client

import "strconv"

// 库街区接口路径与游戏常量
const (
	GameID      = 3
	ServerID    = "76402e5b20be2c39f095a152090afddc"
	ServerIDNet = "919752ae5ea09c1ced910dd668a63ffb"

	DefaultBaseURL = "https://api.kurobbs.com"

	refreshDataPath    = "/aki/roleBox/akiBox/refreshData"
	loginLogPath       = "/user/login/log"
	signInPath         = "/encourage/signIn/v2"
	signInTaskListPath = "/encourage/signIn/initSignInV2"
	getTaskPath        = "/encourage/level/getTaskProcess"
	getGoldPath        = "/encourage/gold/getTotalGold"
	forumListPath      = "/forum/list"
	likePath           = "/forum/like"
	bbsSignInPath      = "/user/signIn"
	postDetailPath     = "/forum/getPostDetail"
	sharePath          = "/encourage/level/shareTask"
)

// IsNetUID 国际服特征码从200000000起
func IsNetUID(uid string) bool {
	n, err := strconv.Atoi(uid)
	return err == nil && n >= 200000000
}

// ServerIDFor 根据特征码选择服务器
func ServerIDFor(uid string) string {
	if IsNetUID(uid) {
		return ServerIDNet
	}
	return ServerID
}
