// Released under an MIT license. See LICENSE.

// Package history loads and saves the interactive session's history.
package history

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/joomcode/errorx"
)

// Load passes the history file to read. A missing file is not an error.
func Load(read func(r io.Reader) (int, error)) error {
	f, err := file(os.Open)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return errorx.ExternalError.Wrap(err, "cannot open history")
	}

	_, err = read(f)
	if err != nil {
		_ = f.Close()

		return errorx.ExternalError.Wrap(err, "cannot read history")
	}

	return f.Close()
}

// Save passes a freshly truncated history file to write.
func Save(write func(w io.Writer) (int, error)) error {
	f, err := file(os.Create)
	if err != nil {
		return errorx.ExternalError.Wrap(err, "cannot create history")
	}

	_, err = write(f)
	if err != nil {
		_ = f.Close()

		return errorx.ExternalError.Wrap(err, "cannot write history")
	}

	return f.Close()
}
