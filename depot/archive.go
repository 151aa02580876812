package depot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
)

// DefaultDescriptorPath is where template archives keep their descriptor.
const DefaultDescriptorPath = "template.pros"

var ErrDescriptorNotFound = errors.New("template descriptor not found in archive")

// ExtractDescriptor returns the contents of the file at name inside the zip
// archive held in data.
func ExtractDescriptor(data []byte, name string) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("error opening archive: %w", err)
	}

	want := strings.TrimPrefix(name, "./")
	for _, f := range r.File {
		if strings.TrimPrefix(f.Name, "./") != want || f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("error opening %s: %w", f.Name, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", f.Name, err)
		}
		return content, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrDescriptorNotFound, name)
}
