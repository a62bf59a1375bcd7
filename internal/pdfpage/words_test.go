package pdfpage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWords_MergesAdjacentFragments(t *testing.T) {
	chunks := []textChunk{
		{x: 100, y: 700, w: 6, size: 10, s: "B"},
		{x: 106, y: 700, w: 6, size: 10, s: "o"},
		{x: 112, y: 700, w: 6, size: 10, s: "m"},
		{x: 140, y: 700, w: 20, size: 10, s: "List"},
	}

	words := buildWords(chunks)
	require.Len(t, words, 2)
	assert.Equal(t, "Bom", words[0].Text)
	assert.Equal(t, "List", words[1].Text)
}

func TestBuildWords_SeparatesLines(t *testing.T) {
	chunks := []textChunk{
		{x: 100, y: 700, w: 20, size: 10, s: "top"},
		{x: 100, y: 680, w: 20, size: 10, s: "bottom"},
	}

	words := buildWords(chunks)
	require.Len(t, words, 2)
	assert.Equal(t, "top", words[0].Text)
	assert.Equal(t, "bottom", words[1].Text)
}

func TestCropText_FiltersAndOrders(t *testing.T) {
	p := &Page{
		Words: []Word{
			{Text: "68.1", BBox: Rect{X0: 40, Y0: 650, X1: 60, Y1: 660}},
			{Text: "BRACKET", BBox: Rect{X0: 200, Y0: 650, X1: 260, Y1: 660}},
			{Text: "67", BBox: Rect{X0: 40, Y0: 700, X1: 55, Y1: 710}},
		},
	}

	got := p.CropText(Rect{X0: 0, Y0: 640, X1: 103, Y1: 670})
	assert.Equal(t, "68.1", got)

	got = p.CropText(Rect{X0: 0, Y0: 640, X1: 500, Y1: 720})
	assert.Equal(t, "67\n68.1 BRACKET", got)
}
