package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignRecordMerge(t *testing.T) {
	rec := &SignRecord{UID: "1", GameSign: 1, BBSDetail: 2}

	// 只有非零计数才覆盖
	rec.Merge(&SignRecord{UID: "1", BBSSign: 1, BBSDetail: 3})
	assert.Equal(t, 1, rec.GameSign)
	assert.Equal(t, 1, rec.BBSSign)
	assert.Equal(t, 3, rec.BBSDetail)

	// 零值补丁不回退已有进度
	rec.Merge(&SignRecord{UID: "1"})
	assert.Equal(t, 1, rec.GameSign)
	assert.Equal(t, 3, rec.BBSDetail)

	// 重复合并幂等
	before := *rec
	rec.Merge(&before)
	assert.Equal(t, before, *rec)
}

func TestSignRecordComplete(t *testing.T) {
	rec := &SignRecord{UID: "1", GameSign: 1}
	assert.True(t, rec.GameSignComplete())
	assert.False(t, rec.BBSSignComplete())

	rec.BBSSign = BBSSignDone
	rec.BBSDetail = BBSDetailDone
	rec.BBSLike = BBSLikeDone
	rec.BBSShare = BBSShareDone
	assert.True(t, rec.BBSSignComplete())

	var nilRec *SignRecord
	assert.False(t, nilRec.GameSignComplete())
	assert.False(t, nilRec.BBSSignComplete())
}

func TestWavesUserHasCookie(t *testing.T) {
	u := &WavesUser{Cookie: "ck"}
	assert.True(t, u.HasCookie())

	u.Status = "登录已过期"
	assert.False(t, u.HasCookie())

	assert.False(t, (&WavesUser{}).HasCookie())
}

func TestTaskEntryComplete(t *testing.T) {
	assert.True(t, (&TaskEntry{NeedActionTimes: 3, CompleteTimes: 3}).Complete())
	assert.False(t, (&TaskEntry{NeedActionTimes: 3, CompleteTimes: 1}).Complete())
}
