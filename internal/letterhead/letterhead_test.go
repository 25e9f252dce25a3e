package letterhead

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oneLine(s string) []string { return []string{s} }

func TestLayout(t *testing.T) {
	t.Run("places lines top down", func(t *testing.T) {
		placed, dropped := Layout([]string{"first", "second"}, oneLine)
		require.Len(t, placed, 2)
		assert.Zero(t, dropped)
		assert.Equal(t, BodyTop, placed[0].Y)
		assert.Greater(t, placed[1].Y, placed[0].Y)
	})

	t.Run("drops lines past the footer", func(t *testing.T) {
		span := FooterTop - BodyTop
		capacity := int(span / LineHeight)
		lines := make([]string, capacity+7)
		for i := range lines {
			lines[i] = "x"
		}
		split := func(string) []string { return lines }

		placed, dropped := Layout([]string{"long"}, split)
		assert.Len(t, placed, capacity)
		assert.Equal(t, 7, dropped)
		for _, l := range placed {
			assert.LessOrEqual(t, l.Y+LineHeight, FooterTop)
		}
	})

	t.Run("blank paragraph keeps a line", func(t *testing.T) {
		placed, _ := Layout([]string{"a", "  ", "b"}, oneLine)
		require.Len(t, placed, 3)
		assert.Equal(t, "", placed[1].Text)
	})
}

func TestRenderer_Render(t *testing.T) {
	r := &Renderer{}

	t.Run("blank base", func(t *testing.T) {
		res, err := r.Render(Content{
			Name:    "Asha Rao",
			Email:   "asha@example.in",
			Date:    "18/10/2026",
			Subject: "Building permit",
			Body:    []string{"Please find enclosed the drawings.", "Regards"},
		}, nil)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(res.PDF, []byte("%PDF")))
		assert.Zero(t, res.Dropped)
	})

	t.Run("overflow is reported not paginated", func(t *testing.T) {
		body := make([]string, 80)
		for i := range body {
			body[i] = strings.Repeat("word ", 5)
		}
		res, err := r.Render(Content{Name: "Asha Rao", Body: body}, nil)
		require.NoError(t, err)
		assert.Positive(t, res.Dropped)
	})

	t.Run("empty content", func(t *testing.T) {
		_, err := r.Render(Content{}, nil)
		assert.ErrorIs(t, err, ErrEmptyContent)
	})
}

func TestNewRenderer_MissingFile(t *testing.T) {
	r, err := NewRenderer(t.TempDir() + "/missing.pdf")
	require.NoError(t, err)
	assert.Empty(t, r.BasePDF)
}
