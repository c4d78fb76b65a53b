package service

import (
	"fmt"
	"sync"

	"roversign-go/internal/model"

	"go.uber.org/zap"
)

// GroupBag 一个群的签到结果聚合
type GroupBag struct {
	BotID   string
	Success int
	Failed  int
	Push    []model.MessageSegment // 失败账号的@与明细
}

// ResultBags 一条任务线（游戏签到或社区任务）的路由结果。
// 按账号的开关值路由：on走私聊，off只计数，群号进群聚合。
type ResultBags struct {
	mu      sync.Mutex
	Private map[string][]model.BoardCastMsg // qid -> 私聊消息
	Group   map[string]*GroupBag            // gid -> 群聚合
	Success int
	Failed  int
}

func NewResultBags() *ResultBags {
	return &ResultBags{
		Private: make(map[string][]model.BoardCastMsg),
		Group:   make(map[string]*GroupBag),
	}
}

// Route 将一个账号的结果计入对应的袋子
func (b *ResultBags) Route(gid, qid, botID, uid, msg string, failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if failed {
		b.Failed++
	} else {
		b.Success++
	}

	switch gid {
	case "on":
		b.Private[qid] = append(b.Private[qid], model.BoardCastMsg{
			BotID:    botID,
			Messages: []model.MessageSegment{model.TextSegment(fmt.Sprintf("特征码: %s\n%s", uid, msg))},
		})
	case "off":
		// 仅计数
	default:
		bag, ok := b.Group[gid]
		if !ok {
			bag = &GroupBag{BotID: botID}
			b.Group[gid] = bag
		}
		if failed {
			bag.Failed++
			bag.Push = append(bag.Push,
				model.AtSegment(qid),
				model.TextSegment(fmt.Sprintf("特征码: %s\n%s\n", uid, msg)),
			)
		} else {
			bag.Success++
		}
	}
}

// ToBoardCast 将路由结果展开为广播报告。
// taskName用于群汇总标题；pic为真时群汇总以图片形式发送。
func ToBoardCast(bags *ResultBags, taskName, theme string, pic bool, opts *model.SignOptions, logger *zap.Logger) *model.BoardCastReport {
	report := &model.BoardCastReport{
		PrivateMsgs: make(map[string][]model.BoardCastMsg),
		GroupMsgs:   make(map[string]model.BoardCastMsg),
	}

	if opts.PrivateReport {
		for qid, msgs := range bags.Private {
			report.PrivateMsgs[qid] = append(report.PrivateMsgs[qid], msgs...)
		}
	}

	if !opts.GroupReport {
		return report
	}

	for gid, bag := range bags.Group {
		title := fmt.Sprintf("✅[鸣潮]今日%s任务已完成！\n本群共签到成功%d人\n共签到失败%d人",
			taskName, bag.Success, bag.Failed)

		var segments []model.MessageSegment
		if pic {
			b64, err := RenderSignCard(title, theme)
			if err != nil {
				logger.Warn("生成签到结果图片失败", zap.Error(err), zap.String("gid", gid))
				segments = append(segments, model.TextSegment(title))
			} else {
				segments = append(segments, model.TextSegment(title), model.ImageSegment(b64))
			}
		} else {
			segments = append(segments, model.TextSegment(title))
		}
		segments = append(segments, bag.Push...)

		report.GroupMsgs[gid] = model.BoardCastMsg{
			BotID:    bag.BotID,
			Messages: segments,
		}
	}

	return report
}
