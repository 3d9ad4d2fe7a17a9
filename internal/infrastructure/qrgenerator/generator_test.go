package qrgenerator_test

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xausdorf/paycrew/internal/domain/qrcode"
	"github.com/Xausdorf/paycrew/internal/infrastructure/qrgenerator"
)

func TestGenerator_Generate(t *testing.T) {
	img, err := qrgenerator.NewGenerator(128).Generate("https://pay.example.com/checkout/abc")
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(img))
	require.NoError(t, err)
	assert.Equal(t, 128, decoded.Bounds().Dx())
}

func TestGenerator_DefaultSize(t *testing.T) {
	img, err := qrgenerator.NewGenerator(0).Generate("hello")
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(img))
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Width)
}

func TestGenerator_EmptyContent(t *testing.T) {
	_, err := qrgenerator.NewGenerator(128).Generate("")
	assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
}
