package convert

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/mediaconv/internal/anim/animtest"
	"github.com/backmassage/mediaconv/internal/media"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
)

// fixtures writes the inputs shared by the encoder tests into a fresh
// directory and returns it.
func fixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	animtest.WriteFile(t, dir, "a.webp", animtest.WebP(t, animtest.Solid(64, 64, red)))
	animtest.WriteFile(t, dir, "b.webp", animtest.AnimatedWebP(t, 16, 12, []animtest.Frame{
		{Image: animtest.Solid(16, 12, red), Duration: 100},
		{Image: animtest.Solid(16, 12, green), Duration: 100},
		{Image: animtest.Solid(16, 12, blue), Duration: 100},
	}))
	animtest.WriteFile(t, dir, "empty.webp", animtest.EmptyAnimatedWebP(8, 8))
	animtest.WriteFile(t, dir, "loop.gif", animtest.GIF(t,
		[]image.Image{animtest.Solid(6, 6, red), animtest.Solid(6, 6, blue)}, []int{20, 30}, 0))
	animtest.WriteFile(t, dir, "broken.webp", []byte("RIFF\x10\x00\x00\x00WEBPVP8 \x04\x00\x00\x00junk"))
	require.NoError(t, imaging.Save(animtest.Solid(20, 10, green), filepath.Join(dir, "photo.png")))
	return dir
}

// jpegWithOrientation encodes img as a JPEG carrying an EXIF APP1 segment
// with the given orientation tag.
func jpegWithOrientation(t *testing.T, img image.Image, orientation byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	data := buf.Bytes()

	payload := []byte("Exif\x00\x00")
	payload = append(payload,
		'I', 'I', 0x2a, 0x00, 0x08, 0x00, 0x00, 0x00, // little-endian TIFF, IFD at 8
		0x01, 0x00, // one entry
		0x12, 0x01, 0x03, 0x00, 0x01, 0x00, 0x00, 0x00, orientation, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // no next IFD
	)
	n := len(payload) + 2
	out := append([]byte{}, data[:2]...) // SOI
	out = append(out, 0xff, 0xe1, byte(n>>8), byte(n))
	out = append(out, payload...)
	return append(out, data[2:]...)
}

func src(dir, name string) media.Source { return media.NewSource(filepath.Join(dir, name)) }

// entries lists file names in dir.
func entries(t *testing.T, dir string) []string {
	t.Helper()
	des, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, d := range des {
		names = append(names, d.Name())
	}
	return names
}

func decodeGIF(t *testing.T, path string) *gif.GIF {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	g, err := gif.DecodeAll(f)
	require.NoError(t, err)
	return g
}

// --- Outcome ---

func TestOutcome(t *testing.T) {
	s := media.NewSource("/in/a.webp")

	ok := Succeeded(s, "/out/a.png")
	assert.True(t, ok.Ok())
	assert.Equal(t, "", ok.Reason())
	assert.Equal(t, "succeeded", ok.Status.String())

	skip := Skipped(s, ErrNotVideo)
	assert.Equal(t, StatusSkipped, skip.Status)
	assert.Equal(t, "not a video", skip.Reason())
	assert.True(t, IsUnsupported(skip.Err))

	fail := Failed(s, decodeErr(errors.New("bad header")))
	assert.Equal(t, "failed", fail.Status.String())
	assert.Equal(t, "decode error: bad header", fail.Reason())
	assert.ErrorIs(t, fail.Err, ErrDecode)
	assert.False(t, IsUnsupported(fail.Err))
	assert.Empty(t, fail.OutputPath)
}

// --- StaticEncoder ---

func TestStaticEncoder_WebPToPNG(t *testing.T) {
	in, out := fixtures(t), t.TempDir()
	enc := &StaticEncoder{}

	o := enc.Encode(context.Background(), src(in, "a.webp"), out)
	require.Equal(t, StatusSucceeded, o.Status, o.Reason())
	assert.Equal(t, filepath.Join(out, "a.png"), o.OutputPath)

	img, err := imaging.Open(o.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())
	assert.Equal(t, []string{"a.png"}, entries(t, out))
}

func TestStaticEncoder_AnimatedSourceUsesFirstFrame(t *testing.T) {
	in, out := fixtures(t), t.TempDir()
	o := (&StaticEncoder{}).Encode(context.Background(), src(in, "b.webp"), out)
	require.Equal(t, StatusSucceeded, o.Status, o.Reason())

	img, err := imaging.Open(o.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 12), img.Bounds())
	r, g, b, _ := img.At(8, 6).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g)
	assert.Zero(t, b)
}

func TestStaticEncoder_OverwritesExisting(t *testing.T) {
	in, out := fixtures(t), t.TempDir()
	stale := filepath.Join(out, "a.png")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o644))

	o := (&StaticEncoder{}).Encode(context.Background(), src(in, "a.webp"), out)
	require.Equal(t, StatusSucceeded, o.Status, o.Reason())
	img, err := imaging.Open(stale)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
}

func TestStaticEncoder_DecodeFailure(t *testing.T) {
	in, out := fixtures(t), t.TempDir()
	o := (&StaticEncoder{}).Encode(context.Background(), src(in, "broken.webp"), out)
	assert.Equal(t, StatusFailed, o.Status)
	assert.ErrorIs(t, o.Err, ErrDecode)
	assert.Empty(t, entries(t, out), "no output or temp file left behind")
}

func TestStaticEncoder_MissingDestination(t *testing.T) {
	in := fixtures(t)
	o := (&StaticEncoder{}).Encode(context.Background(), src(in, "a.webp"), filepath.Join(in, "no", "such", "dir"))
	assert.Equal(t, StatusFailed, o.Status)
	assert.ErrorIs(t, o.Err, ErrEncode)
}

func TestStaticEncoder_KeepsStoredDimensions(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	path := animtest.WriteFile(t, in, "rotated.jpg", jpegWithOrientation(t, animtest.Solid(40, 20, red), 6))

	// The fixture really carries a 90° rotation.
	rotated, err := imaging.Open(path, imaging.AutoOrientation(true))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 20, 40), rotated.Bounds())

	o := (&StaticEncoder{}).Encode(context.Background(), src(in, "rotated.jpg"), out)
	require.Equal(t, StatusSucceeded, o.Status, o.Reason())
	img, err := imaging.Open(o.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 20), img.Bounds())
}

func TestStaticEncoder_OversizedCanvas(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	animtest.WriteFile(t, in, "huge.webp", animtest.EmptyAnimatedWebP(1<<24, 1<<24))
	one := animtest.GIF(t, []image.Image{animtest.Solid(1, 1, red)}, []int{0}, 0)
	animtest.WriteFile(t, in, "huge.gif", animtest.WithScreen(one, 65535, 65535))

	for _, name := range []string{"huge.webp", "huge.gif"} {
		o := (&StaticEncoder{}).Encode(context.Background(), src(in, name), out)
		assert.Equal(t, StatusFailed, o.Status, name)
		assert.ErrorIs(t, o.Err, ErrDecode, name)
	}
	assert.Empty(t, entries(t, out))
}

func TestStaticEncoder_MaxPixels(t *testing.T) {
	in, out := fixtures(t), t.TempDir()
	o := (&StaticEncoder{MaxPixels: 64*64 - 1}).Encode(context.Background(), src(in, "a.webp"), out)
	assert.Equal(t, StatusFailed, o.Status)
	assert.Contains(t, o.Reason(), "canvas too large")

	o = (&StaticEncoder{MaxPixels: 64 * 64}).Encode(context.Background(), src(in, "a.webp"), out)
	assert.Equal(t, StatusSucceeded, o.Status, o.Reason())
}

// --- AnimatedEncoder ---

func TestAnimatedEncoder_AnimatedWebP(t *testing.T) {
	in, out := fixtures(t), t.TempDir()
	o := (&AnimatedEncoder{Dither: true}).Encode(context.Background(), src(in, "b.webp"), out)
	require.Equal(t, StatusSucceeded, o.Status, o.Reason())
	assert.Equal(t, filepath.Join(out, "b.gif"), o.OutputPath)

	g := decodeGIF(t, o.OutputPath)
	assert.Len(t, g.Image, 3)
	assert.Equal(t, 0, g.LoopCount)
	assert.Equal(t, []int{10, 10, 10}, g.Delay)
	for _, d := range g.Disposal {
		assert.Equal(t, byte(gif.DisposalBackground), d)
	}
}

func TestAnimatedEncoder_StillSourceGivesOneFrame(t *testing.T) {
	in, out := fixtures(t), t.TempDir()
	for _, name := range []string{"a.webp", "photo.png"} {
		o := (&AnimatedEncoder{}).Encode(context.Background(), src(in, name), out)
		require.Equal(t, StatusSucceeded, o.Status, "%s: %s", name, o.Reason())
		g := decodeGIF(t, o.OutputPath)
		assert.Len(t, g.Image, 1, name)
	}
	assert.ElementsMatch(t, []string{"a.gif", "photo.gif"}, entries(t, out))
}

func TestAnimatedEncoder_GIFSource(t *testing.T) {
	in, out := fixtures(t), t.TempDir()
	o := (&AnimatedEncoder{}).Encode(context.Background(), src(in, "loop.gif"), out)
	require.Equal(t, StatusSucceeded, o.Status, o.Reason())
	g := decodeGIF(t, o.OutputPath)
	assert.Len(t, g.Image, 2)
	assert.Equal(t, []int{20, 30}, g.Delay)
}

func TestAnimatedEncoder_EmptyAnimation(t *testing.T) {
	in, out := fixtures(t), t.TempDir()
	o := (&AnimatedEncoder{}).Encode(context.Background(), src(in, "empty.webp"), out)
	assert.Equal(t, StatusFailed, o.Status)
	assert.ErrorIs(t, o.Err, ErrEmptyMedia)
	assert.Equal(t, "empty frame set", o.Reason())
	assert.Empty(t, entries(t, out))
}

func TestAnimatedEncoder_Unreadable(t *testing.T) {
	out := t.TempDir()
	o := (&AnimatedEncoder{}).Encode(context.Background(), media.NewSource(filepath.Join(out, "gone.webp")), out)
	assert.Equal(t, StatusFailed, o.Status)
	assert.ErrorIs(t, o.Err, ErrDecode)
}

func TestAnimatedEncoder_KeepsTransparency(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	frame := animtest.Solid(4, 4, red)
	frame.SetNRGBA(0, 0, color.NRGBA{})
	animtest.WriteFile(t, in, "alpha.webp", animtest.AnimatedWebP(t, 4, 4, []animtest.Frame{
		{Image: frame, Duration: 80, NoBlend: true},
		{Image: animtest.Solid(4, 4, blue), Duration: 80, NoBlend: true},
	}))

	o := (&AnimatedEncoder{}).Encode(context.Background(), src(in, "alpha.webp"), out)
	require.Equal(t, StatusSucceeded, o.Status, o.Reason())
	g := decodeGIF(t, o.OutputPath)
	_, _, _, a := g.Image[0].At(0, 0).RGBA()
	assert.Zero(t, a)
	_, _, _, a = g.Image[0].At(3, 3).RGBA()
	assert.NotZero(t, a)
}

func TestAnimatedEncoder_OversizedCanvas(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	animtest.WriteFile(t, in, "huge.webp", animtest.EmptyAnimatedWebP(1<<24, 1<<24))
	one := animtest.GIF(t, []image.Image{animtest.Solid(1, 1, red), animtest.Solid(1, 1, blue)}, []int{10, 10}, 0)
	animtest.WriteFile(t, in, "huge.gif", animtest.WithScreen(one, 65535, 65535))

	for _, name := range []string{"huge.webp", "huge.gif"} {
		o := (&AnimatedEncoder{}).Encode(context.Background(), src(in, name), out)
		assert.Equal(t, StatusFailed, o.Status, name)
		assert.ErrorIs(t, o.Err, ErrDecode, name)
		assert.Contains(t, o.Reason(), "canvas too large", name)
	}
	assert.Empty(t, entries(t, out))
}

func TestAnimatedEncoder_MaxPixels(t *testing.T) {
	in, out := fixtures(t), t.TempDir()
	o := (&AnimatedEncoder{MaxPixels: 16*12 - 1}).Encode(context.Background(), src(in, "b.webp"), out)
	assert.Equal(t, StatusFailed, o.Status)
	assert.Contains(t, o.Reason(), "canvas too large")
}

func TestRecoverFailed(t *testing.T) {
	s := media.NewSource("/in/x.gif")
	o := func() (o Outcome) {
		defer recoverFailed(s, &o)
		panic("index out of range")
	}()
	assert.Equal(t, StatusFailed, o.Status)
	assert.ErrorIs(t, o.Err, ErrDecode)
	assert.Contains(t, o.Reason(), "index out of range")
}
