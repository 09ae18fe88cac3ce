package convert

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/backmassage/mediaconv/internal/ffmpeg"
	"github.com/backmassage/mediaconv/internal/media"
	"github.com/backmassage/mediaconv/internal/naming"
	"github.com/backmassage/mediaconv/internal/probe"
)

// FrameSource yields packed RGB24 frames until io.EOF.
type FrameSource interface {
	ReadFrame(buf []byte) error
	Close() error
}

// FrameSink consumes packed RGB24 frames. Close finalizes the output;
// Abort discards it.
type FrameSink interface {
	WriteFrame(frame []byte) error
	Close() error
	Abort()
}

// VideoTranscoder re-encodes WebM video to MP4 frame by frame. The three
// function fields are the seams to the outside world; NewVideoTranscoder
// wires them to ffprobe and ffmpeg.
type VideoTranscoder struct {
	Probe      func(ctx context.Context, path string) (media.VideoProps, error)
	OpenSource func(ctx context.Context, path string, props media.VideoProps) (FrameSource, error)
	OpenSink   func(ctx context.Context, path string, props media.VideoProps) (FrameSink, error)
}

// NewVideoTranscoder returns a transcoder backed by the ffprobe and ffmpeg
// binaries.
func NewVideoTranscoder(opts ffmpeg.Options, ffprobePath string) *VideoTranscoder {
	return &VideoTranscoder{
		Probe: func(ctx context.Context, path string) (media.VideoProps, error) {
			return probe.Video(ctx, ffprobePath, path)
		},
		OpenSource: func(ctx context.Context, path string, props media.VideoProps) (FrameSource, error) {
			return ffmpeg.OpenReader(ctx, opts, path, props)
		},
		OpenSink: func(ctx context.Context, path string, props media.VideoProps) (FrameSink, error) {
			return ffmpeg.OpenWriter(ctx, opts, path, props)
		},
	}
}

// Encode transcodes src to <destDir>/<stem>.mp4 with the source's frame
// rate and size. Non-WebM inputs are skipped. Both frame handles are
// closed on every path, and a failed transcode leaves no output behind.
//
// A file in progress always runs to completion: the child processes do
// not inherit ctx cancellation.
func (t *VideoTranscoder) Encode(ctx context.Context, src media.Source, destDir string) (o Outcome) {
	defer recoverFailed(src, &o)

	if !src.IsVideo() {
		return Skipped(src, ErrNotVideo)
	}
	ctx = context.WithoutCancel(ctx)

	props, err := t.Probe(ctx, src.Path)
	if err != nil {
		return Failed(src, decodeErr(err))
	}

	out := naming.OutputPath(destDir, src.Stem(), media.VideoExt)
	tmp, err := tempPath(out)
	if err != nil {
		return Failed(src, encodeErr(err))
	}

	if err := t.transcode(ctx, src.Path, tmp, props); err != nil {
		os.Remove(tmp)
		return Failed(src, err)
	}
	if err := commit(tmp, out); err != nil {
		os.Remove(tmp)
		return Failed(src, encodeErr(err))
	}
	return Succeeded(src, out)
}

// transcode copies every frame from input to output in order. The returned
// error is already tagged as a decode or encode failure.
func (t *VideoTranscoder) transcode(ctx context.Context, input, output string, props media.VideoProps) error {
	reader, err := t.OpenSource(ctx, input, props)
	if err != nil {
		return decodeErr(err)
	}
	defer reader.Close()

	writer, err := t.OpenSink(ctx, output, props)
	if err != nil {
		return encodeErr(err)
	}

	buf := make([]byte, props.FrameSize())
	frames := 0
	for {
		err := reader.ReadFrame(buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			writer.Abort()
			return decodeErr(err)
		}
		if err := writer.WriteFrame(buf); err != nil {
			writer.Abort()
			return encodeErr(err)
		}
		frames++
	}

	if frames == 0 {
		writer.Abort()
		return ErrEmptyMedia
	}
	if err := writer.Close(); err != nil {
		return encodeErr(err)
	}
	return nil
}
