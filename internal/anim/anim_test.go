package anim

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/mediaconv/internal/anim/animtest"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
)

func threeFrameWebP(t *testing.T) []byte {
	return animtest.AnimatedWebP(t, 8, 6, []animtest.Frame{
		{Image: animtest.Solid(8, 6, red), Duration: 100},
		{Image: animtest.Solid(8, 6, green), Duration: 100},
		{Image: animtest.Solid(8, 6, blue), Duration: 100},
	})
}

// --- Inspection ---

func TestInspectWebP_Still(t *testing.T) {
	data := animtest.WebP(t, animtest.Solid(64, 48, red))
	info, err := InspectWebP(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "webp", info.Format)
	assert.Equal(t, 1, info.Frames)
	assert.False(t, info.Declared)
	assert.False(t, info.Animated())
	assert.Equal(t, 64, info.Width)
	assert.Equal(t, 48, info.Height)
}

func TestInspectWebP_Animated(t *testing.T) {
	info, err := InspectWebP(bytes.NewReader(threeFrameWebP(t)))
	require.NoError(t, err)
	assert.Equal(t, 3, info.Frames)
	assert.True(t, info.Declared)
	assert.True(t, info.Animated())
	assert.Equal(t, 8, info.Width)
	assert.Equal(t, 6, info.Height)
	assert.Equal(t, 0, info.LoopCount)
}

func TestInspectWebP_DeclaredButEmpty(t *testing.T) {
	info, err := InspectWebP(bytes.NewReader(animtest.EmptyAnimatedWebP(10, 10)))
	require.NoError(t, err)
	assert.True(t, info.Declared)
	assert.Equal(t, 0, info.Frames)
}

func TestInspectWebP_Rejects(t *testing.T) {
	_, err := InspectWebP(bytes.NewReader([]byte("GIF89a not a webp")))
	assert.Error(t, err)

	data := threeFrameWebP(t)
	_, err = InspectWebP(bytes.NewReader(data[:15]))
	assert.Error(t, err)
}

func TestInspectWebP_ChunkPastEOF(t *testing.T) {
	data := threeFrameWebP(t)
	_, err := InspectWebP(bytes.NewReader(data[:len(data)-7]))
	assert.ErrorIs(t, err, errTruncatedChunk)
}

func TestInspectGIF(t *testing.T) {
	frames := []image.Image{animtest.Solid(5, 4, red), animtest.Solid(5, 4, green), animtest.Solid(5, 4, blue)}
	info, err := InspectGIF(bytes.NewReader(animtest.GIF(t, frames, []int{10, 10, 10}, 0)))
	require.NoError(t, err)
	assert.Equal(t, "gif", info.Format)
	assert.Equal(t, 3, info.Frames)
	assert.True(t, info.Declared)
	assert.Equal(t, 0, info.LoopCount)
	assert.Equal(t, 5, info.Width)
	assert.Equal(t, 4, info.Height)

	still, err := InspectGIF(bytes.NewReader(animtest.GIF(t, frames[:1], []int{0}, 0)))
	require.NoError(t, err)
	assert.Equal(t, 1, still.Frames)
	assert.False(t, still.Declared)
	assert.False(t, still.Animated())
}

func TestInspectGIF_Rejects(t *testing.T) {
	_, err := InspectGIF(bytes.NewReader([]byte("RIFF0000WEBP")))
	assert.Error(t, err)

	data := animtest.GIF(t, []image.Image{animtest.Solid(5, 4, red)}, []int{0}, 0)
	_, err = InspectGIF(bytes.NewReader(data[:len(data)-1]))
	assert.Error(t, err, "missing trailer")
}

// --- Decoding ---

func TestDecodeWebP_Still(t *testing.T) {
	fs, info, err := DecodeWebP(animtest.WebP(t, animtest.Solid(16, 9, green)), 0)
	require.NoError(t, err)
	require.Equal(t, 1, fs.Len())
	assert.Equal(t, []int{DefaultDuration}, fs.Durations)
	assert.Equal(t, 16, info.Width)
	assert.Equal(t, 9, info.Height)
	assert.Equal(t, green, fs.Frames[0].NRGBAAt(3, 3))
}

func TestDecodeWebP_FramesInOrder(t *testing.T) {
	fs, info, err := DecodeWebP(threeFrameWebP(t), 0)
	require.NoError(t, err)
	require.NoError(t, fs.Validate())
	assert.Equal(t, 3, info.Frames)
	assert.Equal(t, []int{100, 100, 100}, fs.Durations)
	for i, want := range []color.NRGBA{red, green, blue} {
		assert.Equal(t, image.Rect(0, 0, 8, 6), fs.Frames[i].Bounds())
		assert.Equal(t, want, fs.Frames[i].NRGBAAt(4, 3), "frame %d", i)
	}
}

func TestDecodeWebP_BlendAndDispose(t *testing.T) {
	data := animtest.AnimatedWebP(t, 4, 4, []animtest.Frame{
		{Image: animtest.Solid(4, 4, red), Duration: 50},
		{Image: animtest.Solid(2, 2, blue), X: 2, Y: 2, Duration: 0, Dispose: true},
		{Image: animtest.Solid(2, 2, green), Duration: 70, NoBlend: true},
	})
	fs, _, err := DecodeWebP(data, 0)
	require.NoError(t, err)
	require.Equal(t, 3, fs.Len())
	assert.Equal(t, []int{50, DefaultDuration, 70}, fs.Durations)

	// Frame 2 is drawn over frame 1.
	assert.Equal(t, red, fs.Frames[1].NRGBAAt(0, 0))
	assert.Equal(t, blue, fs.Frames[1].NRGBAAt(3, 3))

	// Frame 2's area was disposed to transparent before frame 3.
	assert.Equal(t, green, fs.Frames[2].NRGBAAt(0, 0))
	assert.Equal(t, red, fs.Frames[2].NRGBAAt(3, 0))
	assert.Equal(t, uint8(0), fs.Frames[2].NRGBAAt(3, 3).A)

	// Earlier frames are not mutated by later compositing.
	assert.Equal(t, red, fs.Frames[0].NRGBAAt(0, 0))
}

func TestDecodeWebP_DeclaredButEmpty(t *testing.T) {
	fs, info, err := DecodeWebP(animtest.EmptyAnimatedWebP(6, 6), 0)
	require.NoError(t, err)
	assert.True(t, info.Declared)
	assert.Equal(t, 0, fs.Len())
	assert.ErrorIs(t, fs.Validate(), ErrNoFrames)
}

func TestDecodeWebP_Corrupt(t *testing.T) {
	_, _, err := DecodeWebP([]byte("not a webp at all"), 0)
	assert.Error(t, err)

	data := threeFrameWebP(t)
	_, _, err = DecodeWebP(data[:len(data)-7], 0)
	assert.Error(t, err)
}

func TestDecodeWebP_CanvasLimit(t *testing.T) {
	// A few header bytes declaring a 16777216x16777216 canvas.
	huge := animtest.EmptyAnimatedWebP(1<<24, 1<<24)
	_, _, err := DecodeWebP(huge, 0)
	assert.ErrorIs(t, err, ErrCanvasTooLarge)

	_, _, err = DecodeWebP(threeFrameWebP(t), 8*6-1)
	assert.ErrorIs(t, err, ErrCanvasTooLarge)
	fs, _, err := DecodeWebP(threeFrameWebP(t), 8*6)
	require.NoError(t, err)
	assert.Equal(t, 3, fs.Len())
}

func TestDecodeWebP_FrameOutsideCanvas(t *testing.T) {
	data := animtest.AnimatedWebP(t, 4, 4, []animtest.Frame{
		{Image: animtest.Solid(2, 2, red), X: 4, Duration: 100},
	})
	_, _, err := DecodeWebP(data, 0)
	assert.Error(t, err)
}

func TestDecodeGIF_ScreenLimit(t *testing.T) {
	one := animtest.GIF(t, []image.Image{animtest.Solid(1, 1, red)}, []int{0}, 0)
	_, err := DecodeGIF(bytes.NewReader(animtest.WithScreen(one, 65535, 65535)), 0)
	assert.ErrorIs(t, err, ErrCanvasTooLarge)

	fs, err := DecodeGIF(bytes.NewReader(one), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, fs.Len())
}

func TestCheckCanvas(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		max     int
		wantErr bool
	}{
		{"small", 640, 480, 0, false},
		{"at limit", 100, 100, 10000, false},
		{"over limit", 101, 100, 10000, true},
		{"default limit", 1 << 14, 1 << 14, 0, true},
		{"container limit", 1 << 24, 1 << 24, math.MaxInt, true},
		{"empty", 0, 10, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCanvas(tt.w, tt.h, tt.max)
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestDecodeGIF_DelaysAndDisposal(t *testing.T) {
	frames := []image.Image{animtest.Solid(4, 4, red), animtest.Solid(4, 4, green), animtest.Solid(4, 4, blue)}
	fs, err := DecodeGIF(bytes.NewReader(animtest.GIF(t, frames, []int{10, 0, 25}, 0)), 0)
	require.NoError(t, err)
	require.Equal(t, 3, fs.Len())
	assert.Equal(t, []int{100, DefaultDuration, 250}, fs.Durations)
	last := fs.Frames[2].NRGBAAt(1, 1)
	assert.Greater(t, last.B, last.R)
	assert.Equal(t, uint8(255), last.A)
}

// --- Encoding ---

func TestEncodeGIF_RoundTrip(t *testing.T) {
	fs := &FrameSet{}
	fs.Append(animtest.Solid(8, 6, red), 100)
	fs.Append(animtest.Solid(8, 6, green), 100)
	fs.Append(animtest.Solid(8, 6, blue), 40)

	var buf bytes.Buffer
	require.NoError(t, EncodeGIF(&buf, fs, GIFOptions{Dither: true}))

	g, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	require.Len(t, g.Image, 3)
	assert.Equal(t, 0, g.LoopCount)
	assert.Equal(t, []int{10, 10, 4}, g.Delay)
	for i, d := range g.Disposal {
		assert.Equal(t, byte(gif.DisposalBackground), d, "frame %d", i)
	}
	assert.Equal(t, 8, g.Config.Width)
	assert.Equal(t, 6, g.Config.Height)
}

func TestEncodeGIF_PreservesTransparency(t *testing.T) {
	img := animtest.Solid(4, 4, red)
	for y := 0; y < 4; y++ {
		img.SetNRGBA(0, y, color.NRGBA{})
		img.SetNRGBA(1, y, color.NRGBA{R: 255, A: 40})
	}
	fs := &FrameSet{}
	fs.Append(img, 100)
	fs.Append(animtest.Solid(4, 4, blue), 100)

	var buf bytes.Buffer
	require.NoError(t, EncodeGIF(&buf, fs, GIFOptions{}))
	g, err := gif.DecodeAll(&buf)
	require.NoError(t, err)

	_, _, _, a := g.Image[0].At(0, 0).RGBA()
	assert.Zero(t, a)
	_, _, _, a = g.Image[0].At(1, 0).RGBA()
	assert.Zero(t, a, "alpha below threshold becomes transparent")
	_, _, _, a = g.Image[0].At(3, 0).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestEncodeGIF_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, EncodeGIF(&buf, &FrameSet{}, GIFOptions{}), ErrNoFrames)
	assert.Zero(t, buf.Len())
}

func TestEncodeStillGIF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeStillGIF(&buf, animtest.Solid(7, 3, green), GIFOptions{}))
	g, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	require.Len(t, g.Image, 1)
	assert.Equal(t, image.Rect(0, 0, 7, 3), g.Image[0].Bounds())
}

func TestFrameSet_Validate(t *testing.T) {
	fs := &FrameSet{Frames: []*image.NRGBA{animtest.Solid(1, 1, red)}}
	assert.Error(t, fs.Validate())
	fs.Durations = []int{100}
	assert.NoError(t, fs.Validate())
}

func TestCentiseconds(t *testing.T) {
	tests := map[int]int{100: 10, 40: 4, 15: 2, 4: 1, 0: 1, 1000: 100}
	for ms, want := range tests {
		assert.Equal(t, want, centiseconds(ms), "%d ms", ms)
	}
}
