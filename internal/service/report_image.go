package service

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
)

// 结果卡片配色
var cardThemes = map[string][2]color.RGBA{
	"blue":   {{58, 123, 213, 255}, {0, 210, 255, 255}},
	"yellow": {{247, 151, 30, 255}, {255, 210, 0, 255}},
	"pink":   {{236, 110, 173, 255}, {255, 190, 220, 255}},
	"green":  {{17, 153, 142, 255}, {56, 239, 125, 255}},
}

const (
	cardWidth  = 600
	cardHeight = 250
	cardBorder = 6
)

// RenderSignCard 生成签到结果底图（渐变色卡片）并返回base64编码的PNG。
// 文案由调用方以文本消息段单独携带。
func RenderSignCard(_ string, theme string) (string, error) {
	colors, ok := cardThemes[theme]
	if !ok {
		colors = cardThemes["blue"]
	}
	top, bottom := colors[0], colors[1]

	img := image.NewRGBA(image.Rect(0, 0, cardWidth, cardHeight))
	for y := 0; y < cardHeight; y++ {
		t := float64(y) / float64(cardHeight-1)
		c := color.RGBA{
			R: lerp(top.R, bottom.R, t),
			G: lerp(top.G, bottom.G, t),
			B: lerp(top.B, bottom.B, t),
			A: 255,
		}
		for x := 0; x < cardWidth; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	// 内边框
	border := color.RGBA{255, 255, 255, 200}
	for x := cardBorder; x < cardWidth-cardBorder; x++ {
		img.SetRGBA(x, cardBorder, border)
		img.SetRGBA(x, cardHeight-cardBorder-1, border)
	}
	for y := cardBorder; y < cardHeight-cardBorder; y++ {
		img.SetRGBA(cardBorder, y, border)
		img.SetRGBA(cardWidth-cardBorder-1, y, border)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}
