package qrgenerator

import (
	qr "github.com/skip2/go-qrcode"

	"github.com/Xausdorf/paycrew/internal/domain/qrcode"
)

const defaultSize = 256

type Generator struct {
	size  int
	level qr.RecoveryLevel
}

func NewGenerator(size int) *Generator {
	if size <= 0 {
		size = defaultSize
	}
	return &Generator{size: size, level: qr.Medium}
}

func (g *Generator) Generate(content string) ([]byte, error) {
	if content == "" {
		return nil, qrcode.ErrEmptyContent
	}
	return qr.Encode(content, g.level, g.size)
}

var _ qrcode.Generator = (*Generator)(nil)
