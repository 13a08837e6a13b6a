package bootUtils

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/exp/slices"
)

var (
	ErrUnsupportedMime = errors.New("unsupported mime-type")
	ErrTooLarge        = errors.New("exceeds file size limit")
)

// sniffLen is how many leading bytes mimetype needs to classify common images.
const sniffLen = 3072

// BufferImage reads r fully, up to maxFileSize bytes, and returns the data and
// its detected mime-type. The type is checked against acceptableMimeTypes as
// soon as enough of the header is buffered.
func BufferImage(r io.Reader, acceptableMimeTypes []string, maxFileSize int64) ([]byte, string, error) {
	var data bytes.Buffer
	contentType := "application/octet-stream"
	headerChecked := false

	checkHeader := func() error {
		contentType = mimetype.Detect(data.Bytes()).String()
		if !slices.Contains(acceptableMimeTypes, contentType) {
			return fmt.Errorf("%w: %s", ErrUnsupportedMime, contentType)
		}
		headerChecked = true
		return nil
	}

	chunk := make([]byte, 32*1024)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			data.Write(chunk[:n])

			if int64(data.Len()) > maxFileSize {
				return nil, contentType, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxFileSize)
			}

			if !headerChecked && data.Len() >= sniffLen {
				if err := checkHeader(); err != nil {
					return nil, contentType, err
				}
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, contentType, err
		}
	}

	if data.Len() == 0 {
		return nil, contentType, errors.New("empty image body")
	}
	if !headerChecked {
		if err := checkHeader(); err != nil {
			return nil, contentType, err
		}
	}

	return data.Bytes(), contentType, nil
}
