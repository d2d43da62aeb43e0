package filing

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"invoicefiler/internal/logger"
)

// Mover places finished files in their folder.
type Mover struct {
	log zerolog.Logger
}

// NewMover returns a Mover backed by the local filesystem.
func NewMover() *Mover {
	return &Mover{log: logger.WithComponent("filing")}
}

// Move renames src to dst, creating dst's folder. Across filesystems it
// falls back to copy and remove. An existing dst is never overwritten.
func (m *Mover) Move(src, dst string) error {
	taken, err := exists(dst)
	if err != nil {
		return err
	}
	if taken {
		return &IOError{Op: "move", Path: dst, Err: ErrDestinationExists}
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return ioError("mkdir", filepath.Dir(dst), err)
	}

	if err := os.Rename(src, dst); err == nil {
		m.log.Debug().Str("src", src).Str("dst", dst).Msg("File moved")
		return nil
	} else if _, statErr := os.Stat(src); statErr != nil {
		return ioError("move", src, err)
	}

	if err := copyFile(src, dst); err != nil {
		os.Remove(dst)
		return err
	}
	if err := os.Remove(src); err != nil {
		return ioError("remove", src, err)
	}
	m.log.Debug().Str("src", src).Str("dst", dst).Msg("File copied across devices")
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return ioError("open", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return ioError("create", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return ioError("copy", dst, err)
	}
	if err := out.Close(); err != nil {
		return ioError("close", dst, err)
	}
	return nil
}
