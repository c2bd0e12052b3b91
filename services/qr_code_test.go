package services

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRService_Encode(t *testing.T) {
	data, err := NewQRService().Encode("https://sho.rt/k3Xp9")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, qrCodeSize, img.Bounds().Dx())
	assert.Equal(t, qrCodeSize, img.Bounds().Dy())
}
