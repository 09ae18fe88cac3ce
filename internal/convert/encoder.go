package convert

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/backmassage/mediaconv/internal/media"
)

// Encoder converts one source into destDir. Implementations report every
// problem through the returned Outcome.
type Encoder interface {
	Encode(ctx context.Context, src media.Source, destDir string) Outcome
}

// decodeErr and encodeErr tag a primitive error with its category.
func decodeErr(err error) error { return fmt.Errorf("%w: %v", ErrDecode, err) }
func encodeErr(err error) error { return fmt.Errorf("%w: %v", ErrEncode, err) }

// recoverFailed turns a panic inside an encoder into a Failed outcome for
// src. It must be deferred directly by Encode.
func recoverFailed(src media.Source, o *Outcome) {
	if r := recover(); r != nil {
		*o = Failed(src, decodeErr(fmt.Errorf("panic: %v", r)))
	}
}

// tempPath reserves a hidden temporary file next to path and returns its
// name. The file exists and is empty.
func tempPath(path string) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

// commit moves a finished temporary file into place with regular file
// permissions.
func commit(tmp, path string) error {
	if err := os.Chmod(tmp, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// writeAtomic streams write's output into a temporary file beside path and
// renames it over path only when write and the flush both succeed. An
// existing file at path is replaced; on failure or panic it is left
// untouched and the temporary file is removed.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	tmp, err := tempPath(path)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmp)
		}
	}()

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err = write(bw); err != nil {
		f.Close()
		return err
	}
	if err = bw.Flush(); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = commit(tmp, path); err != nil {
		return err
	}
	committed = true
	return nil
}
