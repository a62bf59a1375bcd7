package pdfpage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanContent_StrokedLine(t *testing.T) {
	stream := []byte("1 0 0 RG 10 700 m 100 700 l S")

	segments, marks := scanContent(stream)
	require.Len(t, segments, 1)
	assert.Empty(t, marks)

	seg := segments[0]
	assert.Equal(t, SegmentLine, seg.Kind)
	assert.True(t, seg.Stroke.Equals(Red))
	assert.InDelta(t, 10.0, seg.BBox.X0, 0.001)
	assert.InDelta(t, 100.0, seg.BBox.X1, 0.001)
	assert.InDelta(t, 700.0, seg.BBox.Y0, 0.001)
	assert.InDelta(t, 700.0, seg.BBox.Y1, 0.001)
}

func TestScanContent_RectangleEdges(t *testing.T) {
	stream := []byte("0 0 0 RG 50 100 200 300 re S")

	segments, _ := scanContent(stream)
	require.Len(t, segments, 4)
	for _, seg := range segments {
		assert.Equal(t, SegmentRectEdge, seg.Kind)
		assert.True(t, seg.Stroke.Equals(Color{}))
	}
}

func TestScanContent_UnpaintedPathIsDropped(t *testing.T) {
	stream := []byte("10 10 m 20 20 l n")

	segments, _ := scanContent(stream)
	assert.Empty(t, segments)
}

func TestScanContent_CurveUsesControlPoints(t *testing.T) {
	stream := []byte("1 0 0 RG 10 50 m 20 80 40 90 60 50 c S")

	segments, _ := scanContent(stream)
	require.Len(t, segments, 1)
	assert.Equal(t, SegmentCurve, segments[0].Kind)
	// control point y=90 widens the bbox beyond the endpoints
	assert.InDelta(t, 90.0, segments[0].BBox.Y1, 0.001)
}

func TestScanContent_GraphicsStateStack(t *testing.T) {
	stream := []byte("1 0 0 RG q 0 0 1 RG 0 0 m 5 0 l S Q 10 0 m 15 0 l S")

	segments, _ := scanContent(stream)
	require.Len(t, segments, 2)
	assert.True(t, segments[0].Stroke.Equals(Color{B: 1}))
	assert.True(t, segments[1].Stroke.Equals(Red))
}

func TestScanContent_TextMarkCarriesFillColor(t *testing.T) {
	stream := []byte("BT /F1 12 Tf 1 0 0 rg 40 650 Td (68.1) Tj ET")

	_, marks := scanContent(stream)
	require.Len(t, marks, 1)
	assert.Equal(t, "68.1", marks[0].Text)
	assert.True(t, marks[0].Fill.Equals(Red))
	assert.InDelta(t, 40.0, marks[0].BBox.X0, 0.001)
	assert.InDelta(t, 650.0, marks[0].BBox.Y0, 0.001)
}

func TestScanContent_TJArray(t *testing.T) {
	stream := []byte("BT 12 0 0 12 100 200 Tm [(AS) -20 (SY)] TJ ET")

	_, marks := scanContent(stream)
	require.Len(t, marks, 1)
	assert.Equal(t, "ASSY", marks[0].Text)
	assert.InDelta(t, 100.0, marks[0].BBox.X0, 0.001)
}

func TestScanContent_GrayAndCMYKColors(t *testing.T) {
	stream := []byte("0.5 G 0 0 m 1 0 l S 0 1 1 0 K 0 0 m 1 0 l S")

	segments, _ := scanContent(stream)
	require.Len(t, segments, 2)
	assert.True(t, segments[0].Stroke.Equals(Color{R: 0.5, G: 0.5, B: 0.5}))
	assert.True(t, segments[1].Stroke.Equals(Red))
}

func TestScanContent_EscapesAndHexStrings(t *testing.T) {
	stream := []byte(`BT (a\(b\)c) Tj <414243> Tj ET`)

	_, marks := scanContent(stream)
	require.Len(t, marks, 2)
	assert.Equal(t, "a(b)c", marks[0].Text)
	assert.Equal(t, "ABC", marks[1].Text)
}

func TestColorEquals_Tolerance(t *testing.T) {
	assert.True(t, Color{R: 0.999, G: 0.001, B: 0}.Equals(Red))
	assert.False(t, Color{R: 0.9, G: 0, B: 0}.Equals(Red))
}
