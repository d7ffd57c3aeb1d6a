package qrimage

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPNGSize(t *testing.T) {
	data, err := PNG(`{"v":1,"data":{"nome":"Maria Silva"}}`, 256, LevelM)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}

func TestDataURL(t *testing.T) {
	url, err := DataURL("João da Silva", 0, LevelH)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, img.Bounds().Dx())
}

func TestEmptyPayload(t *testing.T) {
	_, err := PNG("", 100, LevelM)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelH, ParseLevel("h"))
	assert.Equal(t, LevelL, ParseLevel(" L "))
	assert.Equal(t, LevelQ, ParseLevel("Q"))
	assert.Equal(t, LevelM, ParseLevel("bogus"))
}
