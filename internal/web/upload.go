package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/linecap/internal/source"
)

// errBadRequest marks request parameter errors.
var errBadRequest = errors.New("bad request")

// upload is a multipart file spooled to disk. PDF and workbook readers need
// a seekable file, so the upload is never processed from the request body.
type upload struct {
	Path     string
	Filename string
	Size     int64
}

func (u *upload) Remove() {
	if u != nil && u.Path != "" {
		os.Remove(u.Path)
	}
}

// receiveUpload reads the "file" form field into a temporary file. The
// caller must call Remove on the result.
func (s *Server) receiveUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	maxSize := s.cfg.Extract.MaxFileSize
	if r.ContentLength > maxSize {
		return nil, fmt.Errorf("file too large: %d bytes exceeds limit %d", r.ContentLength, maxSize)
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, fmt.Errorf("file too large: limit %d bytes: %w", maxSize, err)
		}
		return nil, fmt.Errorf("%w: invalid multipart form: %v", errBadRequest, err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("no file provided")
	}
	defer file.Close()

	if header.Size == 0 {
		return nil, errors.New("empty file")
	}
	if _, err := source.DetectFormat(header.Filename); err != nil {
		return nil, err
	}

	// Keep the extension; sources pick their reader by it.
	tmp, err := os.CreateTemp("", "linecap-*"+filepath.Ext(header.Filename))
	if err != nil {
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	up := &upload{Path: tmp.Name(), Filename: filepath.Base(header.Filename)}

	up.Size, err = io.Copy(tmp, file)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		up.Remove()
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	return up, nil
}
