package service

import (
	"testing"

	"classguard-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestDetectorFlagsGameProcess(t *testing.T) {
	d := NewViolationDetector(nil)

	matches := d.Scan([]string{"chrome.exe", "fortnite.exe"}, nil)

	assert.Len(t, matches, 1)
	assert.Equal(t, "game", matches[0].Category)
	assert.Equal(t, "Detected process: fortnite.exe", matches[0].Detail)
	assert.Equal(t, entity.ViolationSeverityHigh, matches[0].Severity)
}

func TestDetectorIsCaseInsensitive(t *testing.T) {
	d := NewViolationDetector(nil)

	matches := d.Scan([]string{"FORTNITE.EXE"}, nil)

	assert.Len(t, matches, 1)
	assert.Equal(t, "game", matches[0].Category)
}

func TestDetectorScansURLs(t *testing.T) {
	d := NewViolationDetector(nil)

	matches := d.Scan(nil, []string{"https://www.youtube.com/watch?v=abc"})

	assert.Len(t, matches, 1)
	assert.Equal(t, "video", matches[0].Category)
	assert.Equal(t, "Detected URL: https://www.youtube.com/watch?v=abc", matches[0].Detail)
	assert.Equal(t, entity.ViolationSeverityMedium, matches[0].Severity)
}

func TestDetectorOneMatchPerOffendingEntry(t *testing.T) {
	d := NewViolationDetector(nil)

	matches := d.Scan([]string{"roblox.exe", "minecraft.exe"}, nil)

	assert.Len(t, matches, 2, "each offending process is reported on its own")
	assert.Equal(t, "Detected process: roblox.exe", matches[0].Detail)
	assert.Equal(t, "Detected process: minecraft.exe", matches[1].Detail)
	for _, m := range matches {
		assert.Equal(t, "game", m.Category)
	}
}

func TestDetectorProcessAndURLSameCategory(t *testing.T) {
	d := NewViolationDetector(nil)

	matches := d.Scan(
		[]string{"discord.exe"},
		[]string{"https://discord.com/channels/1"},
	)

	assert.Len(t, matches, 2)
	assert.Equal(t, "Detected process: discord.exe", matches[0].Detail)
	assert.Equal(t, "Detected URL: https://discord.com/channels/1", matches[1].Detail)
}

func TestDetectorMultipleCategoriesInOrder(t *testing.T) {
	d := NewViolationDetector(nil)

	matches := d.Scan(
		[]string{"steam.exe", "discord.exe"},
		[]string{"https://netflix.com"},
	)

	assert.Len(t, matches, 3)
	assert.Equal(t, "game", matches[0].Category)
	assert.Equal(t, "social_media", matches[1].Category)
	assert.Equal(t, "video", matches[2].Category)
}

func TestDetectorCleanActivity(t *testing.T) {
	d := NewViolationDetector(nil)

	matches := d.Scan(
		[]string{"code.exe", "python.exe", "chrome.exe"},
		[]string{"https://docs.python.org/3/tutorial/"},
	)

	assert.Empty(t, matches)
}

func TestDetectorCustomTaxonomy(t *testing.T) {
	d := NewViolationDetector(map[string][]string{
		"music": {"spotify"},
	})

	matches := d.Scan([]string{"Spotify.exe"}, nil)

	assert.Len(t, matches, 1)
	assert.Equal(t, "music", matches[0].Category)
	assert.Equal(t, entity.ViolationSeverityLow, matches[0].Severity)
}
