// Released under an MIT license. See LICENSE.

// Package image saves and restores mu heaps.
//
// An image is a tar archive with two members. The .allocator member is
// a YAML record of the configuration, the write barrier and the per-type
// allocation counts. The .image member holds the heap bytes below the
// write barrier.
package image

import (
	"archive/tar"
	"bytes"
	"io"
	"os"

	"github.com/joomcode/errorx"
	"github.com/michaelmacinnis/mu/internal/system/config"
	"github.com/michaelmacinnis/mu/internal/system/heap"
	"gopkg.in/yaml.v3"
)

const (
	allocatorMember = ".allocator"
	imageMember     = ".image"
)

// Allocator is the decoded .allocator member.
type Allocator struct {
	Config  *config.T       `yaml:"config"`
	Barrier int             `yaml:"barrier"`
	Free    [][]int         `yaml:"free"`
	Types   []heap.TypeInfo `yaml:"types"`
}

// T (image) is a saved heap.
type T struct {
	Allocator
	Image []byte
}

type image = T

// New captures the live portion of h.
func New(c *config.T, h *heap.T) *T {
	s := h.Snapshot()

	return &T{
		Allocator: Allocator{
			Config:  c,
			Barrier: s.Barrier,
			Free:    s.Free,
			Types:   s.Types,
		},
		Image: s.Image,
	}
}

// Load reads the image saved at path.
func Load(path string) (*T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errorx.ExternalError.Wrap(err, "cannot open image %s", path)
	}
	defer f.Close()

	return Read(f)
}

// Read decodes an image from r.
func Read(r io.Reader) (*T, error) {
	i := &T{}

	found := map[string]bool{}
	tr := tar.NewReader(r)

	for {
		hdr, err := tr.Next()
		if err == io.EOF { //nolint:errorlint
			break
		} else if err != nil {
			return nil, errorx.IllegalFormat.Wrap(err, "cannot read image")
		}

		switch hdr.Name {
		case allocatorMember:
			decoder := yaml.NewDecoder(tr)
			decoder.KnownFields(true)

			if err := decoder.Decode(&i.Allocator); err != nil {
				return nil, errorx.IllegalFormat.Wrap(err, "cannot decode %s", allocatorMember)
			}
		case imageMember:
			b, err := io.ReadAll(tr)
			if err != nil {
				return nil, errorx.IllegalFormat.Wrap(err, "cannot read %s", imageMember)
			}

			i.Image = b
		default:
			return nil, errorx.IllegalFormat.New("unexpected image member %q", hdr.Name)
		}

		found[hdr.Name] = true
	}

	for _, name := range []string{allocatorMember, imageMember} {
		if !found[name] {
			return nil, errorx.IllegalFormat.New("image has no %s member", name)
		}
	}

	if i.Config == nil {
		return nil, errorx.IllegalFormat.New("image has no configuration")
	}

	if i.Config.Version != config.Version {
		return nil, errorx.UnsupportedVersion.New("image version %q, runtime version %q", i.Config.Version, config.Version)
	}

	return i, nil
}

// Restore installs the image in h.
func (i *image) Restore(h *heap.T) error {
	return h.Restore(heap.Snapshot{
		Barrier: i.Barrier,
		Free:    i.Free,
		Image:   i.Image,
		Types:   i.Types,
	})
}

// Save writes the image to a file at path.
func (i *image) Save(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errorx.ExternalError.Wrap(err, "cannot create image %s", path)
	}

	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errorx.ExternalError.Wrap(cerr, "cannot close image %s", path)
		}
	}()

	return Write(f, i)
}

// Describe writes the image's .allocator record to w.
func (i *image) Describe(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(&i.Allocator); err != nil {
		return errorx.IllegalFormat.Wrap(err, "cannot encode %s", allocatorMember)
	}

	if err := encoder.Close(); err != nil {
		return errorx.IllegalFormat.Wrap(err, "cannot encode %s", allocatorMember)
	}

	return nil
}

// Write encodes i to w.
func Write(w io.Writer, i *T) error {
	var allocator bytes.Buffer

	if err := i.Describe(&allocator); err != nil {
		return err
	}

	tw := tar.NewWriter(w)

	for _, m := range []struct {
		name string
		data []byte
	}{
		{allocatorMember, allocator.Bytes()},
		{imageMember, i.Image},
	} {
		hdr := &tar.Header{
			Name: m.name,
			Mode: 0o600,
			Size: int64(len(m.data)),
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return errorx.ExternalError.Wrap(err, "cannot write %s", m.name)
		}

		if _, err := tw.Write(m.data); err != nil {
			return errorx.ExternalError.Wrap(err, "cannot write %s", m.name)
		}
	}

	if err := tw.Close(); err != nil {
		return errorx.ExternalError.Wrap(err, "cannot finish image")
	}

	return nil
}
