package carteira_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/carteira"
)

func TestNewExportConfigDefaults(t *testing.T) {
	cfg := carteira.NewExportConfig()

	assert.Equal(t, carteira.ModePrint, cfg.Mode)
	assert.False(t, cfg.Toolbar)
	assert.Equal(t, carteira.DefaultFileName, cfg.FileName)
	assert.Equal(t, carteira.DefaultIPLookupURL, cfg.IPLookupURL)
	assert.Equal(t, carteira.DefaultIPLookupTimeout, cfg.IPLookupTimeout)
	assert.Zero(t, cfg.ResourceTimeout, "resource wait is unbounded by default")
	assert.NotEmpty(t, cfg.FontStylesheet)
}

func TestNewExportConfigOptions(t *testing.T) {
	cfg := carteira.NewExportConfig(
		carteira.WithMode(carteira.ModeDownload),
		carteira.WithToolbar(true),
		carteira.WithTitle("Carteiras"),
		carteira.WithFileName("carteiras.pdf"),
		carteira.WithIPLookup("", 0),
		carteira.WithResourceTimeout(5*time.Second),
		carteira.WithFontStylesheet(""),
	)

	assert.Equal(t, carteira.ModeDownload, cfg.Mode)
	assert.True(t, cfg.Toolbar)
	assert.Equal(t, "Carteiras", cfg.Title)
	assert.Equal(t, "carteiras.pdf", cfg.FileName)
	assert.Empty(t, cfg.IPLookupURL)
	assert.Equal(t, carteira.DefaultIPLookupTimeout, cfg.IPLookupTimeout)
	assert.Equal(t, 5*time.Second, cfg.ResourceTimeout)
	assert.Empty(t, cfg.FontStylesheet)
}

func TestNewExportConfigFallbacks(t *testing.T) {
	cfg := carteira.NewExportConfig(
		carteira.WithMode("fax"),
		carteira.WithFileName(""),
	)
	assert.Equal(t, carteira.ModePrint, cfg.Mode)
	assert.Equal(t, carteira.DefaultFileName, cfg.FileName)
}

func TestModeValid(t *testing.T) {
	assert.True(t, carteira.ModePrint.Valid())
	assert.True(t, carteira.ModeDownload.Valid())
	assert.False(t, carteira.Mode("").Valid())
	assert.False(t, carteira.Mode("PRINT").Valid())
}

func TestErrorWrapping(t *testing.T) {
	err := fmt.Errorf("request: %w", carteira.NewError("photo.Resolve", carteira.ErrUnsafeSource))

	require.ErrorIs(t, err, carteira.ErrUnsafeSource)
	var ce *carteira.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "photo.Resolve", ce.Op)
	assert.Contains(t, err.Error(), "carteira.photo.Resolve: carteira: image source")

	empty := &carteira.Error{Op: "Render"}
	assert.Equal(t, "carteira.Render: unknown error", empty.Error())
	assert.False(t, errors.Is(empty, carteira.ErrFetch))
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	clock := carteira.FixedClock(at)
	assert.Equal(t, at, clock.Now())
	assert.Equal(t, at, clock.Now())
	assert.False(t, carteira.SystemClock.Now().IsZero())
}
