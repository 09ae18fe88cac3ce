package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/backmassage/mediaconv/internal/media"
)

// ErrShortFrame is returned when the decoder stream ends partway through a
// frame.
var ErrShortFrame = errors.New("truncated frame in decoder output")

// ExecError is a failed ffmpeg process with its classified stderr.
type ExecError struct {
	Op     string // "decode" or "encode"
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	if reason := Reason(e.Stderr); reason != "" {
		return fmt.Sprintf("ffmpeg %s: %s", e.Op, reason)
	}
	return fmt.Sprintf("ffmpeg %s: %v", e.Op, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// command creates the process for args. When verbose, stderr is tee'd to
// os.Stderr in real time; otherwise it is captured silently for
// classification.
func command(ctx context.Context, o Options, args []string) (*exec.Cmd, *bytes.Buffer) {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stderrBuf bytes.Buffer
	if o.Verbose {
		cmd.Stderr = io.MultiWriter(&stderrBuf, os.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}
	return cmd, &stderrBuf
}

// FrameReader streams decoded RGB24 frames from an ffmpeg child process.
type FrameReader struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *bytes.Buffer
	size   int
	done   bool
}

// OpenReader starts ffmpeg decoding input. Frames are props.FrameSize()
// bytes each.
func OpenReader(ctx context.Context, o Options, input string, props media.VideoProps) (*FrameReader, error) {
	cmd, stderr := command(ctx, o, DecodeArgs(o, input))
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, &ExecError{Op: "decode", Err: err}
	}
	return &FrameReader{cmd: cmd, stdout: stdout, stderr: stderr, size: props.FrameSize()}, nil
}

// ReadFrame fills buf with the next frame. It returns io.EOF after the last
// frame when the decoder exited cleanly, or an *ExecError when it failed.
func (r *FrameReader) ReadFrame(buf []byte) error {
	if r.done {
		return io.EOF
	}
	if len(buf) != r.size {
		return fmt.Errorf("frame buffer is %d bytes, want %d", len(buf), r.size)
	}
	_, err := io.ReadFull(r.stdout, buf)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return r.finish(io.EOF)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return r.finish(ErrShortFrame)
	default:
		return r.finish(err)
	}
}

// finish reaps the process once stdout is exhausted. A non-zero exit takes
// precedence over the read result.
func (r *FrameReader) finish(readErr error) error {
	r.done = true
	if err := r.cmd.Wait(); err != nil {
		return &ExecError{Op: "decode", Stderr: r.stderr.String(), Err: err}
	}
	return readErr
}

// Close stops the decoder if it is still running and releases its pipe.
// It is safe to call more than once.
func (r *FrameReader) Close() error {
	if r.done {
		return nil
	}
	r.done = true
	if r.cmd.Process != nil {
		_ = r.cmd.Process.Kill()
	}
	_ = r.cmd.Wait()
	return nil
}

// FrameWriter feeds RGB24 frames to an ffmpeg encoder child process.
type FrameWriter struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bytes.Buffer
	size   int
	done   bool
}

// OpenWriter starts ffmpeg encoding to output with the given stream
// properties.
func OpenWriter(ctx context.Context, o Options, output string, props media.VideoProps) (*FrameWriter, error) {
	cmd, stderr := command(ctx, o, EncodeArgs(o, output, props))
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, &ExecError{Op: "encode", Err: err}
	}
	return &FrameWriter{cmd: cmd, stdin: stdin, stderr: stderr, size: props.FrameSize()}, nil
}

// WriteFrame writes one frame. A write failure means the encoder died; the
// process is reaped and its stderr returned in an *ExecError.
func (w *FrameWriter) WriteFrame(frame []byte) error {
	if w.done {
		return errors.New("write to closed frame writer")
	}
	if len(frame) != w.size {
		return fmt.Errorf("frame is %d bytes, want %d", len(frame), w.size)
	}
	if _, err := w.stdin.Write(frame); err != nil {
		w.done = true
		_ = w.stdin.Close()
		waitErr := w.cmd.Wait()
		if waitErr == nil {
			waitErr = err
		}
		return &ExecError{Op: "encode", Stderr: w.stderr.String(), Err: waitErr}
	}
	return nil
}

// Close signals end of stream and waits for the encoder to finalize the
// output file.
func (w *FrameWriter) Close() error {
	if w.done {
		return nil
	}
	w.done = true
	_ = w.stdin.Close()
	if err := w.cmd.Wait(); err != nil {
		return &ExecError{Op: "encode", Stderr: w.stderr.String(), Err: err}
	}
	return nil
}

// Abort kills the encoder without finalizing. The partial output must be
// discarded by the caller.
func (w *FrameWriter) Abort() {
	if w.done {
		return
	}
	w.done = true
	_ = w.stdin.Close()
	if w.cmd.Process != nil {
		_ = w.cmd.Process.Kill()
	}
	_ = w.cmd.Wait()
}
