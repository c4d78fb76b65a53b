package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"roversign-go/internal/model"

	"go.uber.org/zap"
)

// 广播报告类别
const (
	BroadcastGameSign = "订阅鸣潮签到"
	BroadcastBBSSign  = "订阅签到结果"
)

// Broadcaster 将聚合后的签到报告推送出去
type Broadcaster interface {
	Push(kind string, report *model.BoardCastReport) error
}

// WebhookBroadcaster 通过HTTP回调把报告交给下游机器人网关。
// 未配置回调地址时静默丢弃。
type WebhookBroadcaster struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

func NewWebhookBroadcaster(url string, logger *zap.Logger) *WebhookBroadcaster {
	return &WebhookBroadcaster{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

type broadcastPayload struct {
	Kind   string                 `json:"kind"`
	Report *model.BoardCastReport `json:"report"`
}

func (b *WebhookBroadcaster) Push(kind string, report *model.BoardCastReport) error {
	if b.url == "" {
		return nil
	}
	if report == nil || (len(report.PrivateMsgs) == 0 && len(report.GroupMsgs) == 0) {
		return nil
	}

	body, err := json.Marshal(broadcastPayload{Kind: kind, Report: report})
	if err != nil {
		return fmt.Errorf("序列化广播报告失败: %w", err)
	}

	resp, err := b.client.Post(b.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("推送广播报告失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("广播回调返回异常状态: %d", resp.StatusCode)
	}

	b.logger.Info("✅ 广播报告已推送",
		zap.String("kind", kind),
		zap.Int("private", len(report.PrivateMsgs)),
		zap.Int("group", len(report.GroupMsgs)))
	return nil
}
