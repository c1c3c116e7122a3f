package menu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractLocation(t *testing.T) {
	e := NewExtractor(Dutch, IncludeToday)

	assert.Equal(t, "HQ", e.ExtractLocation("Wat is de soep vandaag bij HQ?"))
	assert.Equal(t, "HSL", e.ExtractLocation("soep bij hsl"))
	assert.Equal(t, "LD", e.ExtractLocation("Welke soep is er bij Ld?"))
	assert.Equal(t, "", e.ExtractLocation("welke soep is er?"))
}

func TestExtractLocation_PriorityIgnoresTokenOrder(t *testing.T) {
	e := NewExtractor(Dutch, IncludeToday)

	first := e.ExtractLocation("soep bij ld of hq")
	second := e.ExtractLocation("soep bij hq of ld")
	assert.Equal(t, "HQ", first)
	assert.Equal(t, first, second)
	assert.Equal(t, first, e.ExtractLocation(first))
}

func TestExtractWeekday(t *testing.T) {
	nl := NewExtractor(Dutch, IncludeToday)
	en := NewExtractor(English, IncludeToday)

	day, ok := nl.ExtractWeekday("Toon me de soep voor Donderdag")
	assert.True(t, ok)
	assert.Equal(t, time.Thursday, day)

	day, ok = en.ExtractWeekday("soup on friday please")
	assert.True(t, ok)
	assert.Equal(t, time.Friday, day)

	_, ok = nl.ExtractWeekday("soep op zaterdag")
	assert.False(t, ok)
}

func TestExtract(t *testing.T) {
	loc := amsterdam(t)
	now := time.Date(2024, 3, 20, 11, 0, 0, 0, loc) // Wednesday
	midnight := time.Date(2024, 3, 20, 0, 0, 0, 0, loc)
	e := NewExtractor(Dutch, IncludeToday)

	t.Run("today at location", func(t *testing.T) {
		got := e.Extract("Wat is de soep vandaag bij HQ?", now)
		assert.True(t, got.AboutSoup)
		assert.True(t, got.Today)
		assert.Equal(t, "HQ", got.Location)
		assert.Equal(t, midnight, got.Date)
	})

	t.Run("weekday at location", func(t *testing.T) {
		got := e.Extract("Toon me de soep voor maandag bij HSL", now)
		assert.True(t, got.HasWeekday)
		assert.Equal(t, time.Monday, got.Weekday)
		assert.Equal(t, "HSL", got.Location)
		assert.Equal(t, time.Date(2024, 3, 25, 0, 0, 0, 0, loc), got.Date)
	})

	t.Run("today wins over weekday", func(t *testing.T) {
		got := e.Extract("soep vandaag of vrijdag", now)
		assert.True(t, got.Today)
		assert.Equal(t, midnight, got.Date)
	})

	t.Run("location only", func(t *testing.T) {
		got := e.Extract("welke soep is er bij LD", now)
		assert.True(t, got.AboutSoup)
		assert.Equal(t, "LD", got.Location)
		assert.False(t, got.HasDate())
	})

	t.Run("not about soup", func(t *testing.T) {
		got := e.Extract("hallo daar", now)
		assert.False(t, got.AboutSoup)
	})
}

func TestExtract_SameWeekdayPerPolicy(t *testing.T) {
	loc := amsterdam(t)
	monday := time.Date(2024, 3, 18, 10, 0, 0, 0, loc)

	telegram := NewExtractor(Dutch, StrictlyAfterToday)
	got := telegram.Extract("soep op maandag", monday)
	assert.Equal(t, time.Date(2024, 3, 25, 0, 0, 0, 0, loc), got.Date)

	teams := NewExtractor(English, IncludeToday)
	got = teams.Extract("soup on monday", monday)
	assert.Equal(t, time.Date(2024, 3, 18, 0, 0, 0, 0, loc), got.Date)
}
