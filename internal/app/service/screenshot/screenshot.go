// Package screenshot validates and stages proof-of-payment images.
package screenshot

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

// MaxSize is the largest accepted upload, 5 MiB.
const MaxSize int64 = 5 * 1024 * 1024

var ErrRejected = errors.New("screenshot rejected")

// image/jpg is not registered but some browsers send it.
var acceptedTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
}

// File is a client-selected image held in memory.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// Ext returns the storage extension for the declared type, or "".
func (f *File) Ext() string {
	if f == nil {
		return ""
	}
	return acceptedTypes[normalizeType(f.ContentType)]
}

// RejectedError carries the reason shown to the user.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string { return e.Reason }

func (e *RejectedError) Unwrap() error { return ErrRejected }

func reject(format string, args ...any) error {
	return &RejectedError{Reason: fmt.Sprintf(format, args...)}
}

func normalizeType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

// Validate checks declared type, size and that the bytes really are PNG/JPEG.
func Validate(f *File) error {
	if f == nil {
		return reject("No file selected")
	}
	if _, ok := acceptedTypes[normalizeType(f.ContentType)]; !ok {
		return reject("Please upload a PNG or JPEG image")
	}
	size := f.Size
	if n := int64(len(f.Data)); n > size {
		size = n
	}
	if size > MaxSize {
		return reject("File size must be less than 5MB")
	}
	if len(f.Data) == 0 {
		return reject("The selected file is empty")
	}
	detected := mimetype.Detect(f.Data)
	if !detected.Is("image/png") && !detected.Is("image/jpeg") {
		return reject("The selected file is not a valid PNG or JPEG image")
	}
	return nil
}

// Slot holds at most one staged screenshot.
type Slot struct {
	mu   sync.Mutex
	file *File
}

// Stage validates f and, only if it passes, replaces the staged file.
// A rejected file leaves the previous one in place.
func (s *Slot) Stage(f *File) error {
	if err := Validate(f); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file = f
	return nil
}

// File returns the staged file or nil. A nil slot is empty.
func (s *Slot) File() *File {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file
}

func (s *Slot) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file = nil
}

// ReadMultipart loads a form file, reading at most MaxSize+1 bytes so an
// oversized upload is detected without buffering all of it.
func ReadMultipart(fh *multipart.FileHeader) (*File, error) {
	if fh == nil {
		return nil, reject("No file selected")
	}
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	size := fh.Size
	if n := int64(len(data)); n > size {
		size = n
	}
	return &File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        size,
		Data:        data,
	}, nil
}
