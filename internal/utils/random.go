package utils

import (
	"fmt"
	"math/rand"
	"time"
)

const devCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!#$%&*+-=?@_~"

// GenerateDevCode 生成h5端设备标识（32位随机串）
func GenerateDevCode() string {
	b := make([]byte, 32)
	for i := range b {
		b[i] = devCodeCharset[rand.Intn(len(devCodeCharset))]
	}
	return string(b)
}

// GenerateUUID ios端devCode使用的uuid v4格式
func GenerateUUID() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	buf[6] = (buf[6] & 0x0f) | 0x40
	buf[8] = (buf[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", buf[0:4], buf[4:6], buf[6:8], buf[8:10], buf[10:16])
}

// RandomSeconds [min,max)秒之间的随机时长
func RandomSeconds(min, max float64) time.Duration {
	if max <= min {
		return time.Duration(min * float64(time.Second))
	}
	return time.Duration((min + rand.Float64()*(max-min)) * float64(time.Second))
}

// TodayDate 当天日期 YYYY-MM-DD
func TodayDate() string {
	return time.Now().Format("2006-01-02")
}

// YesterdayDate 昨天日期 YYYY-MM-DD
func YesterdayDate() string {
	return time.Now().AddDate(0, 0, -1).Format("2006-01-02")
}
