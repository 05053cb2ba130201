package serializer

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
)

// WriteMultipart renders the payload as a multipart/form-data body and
// returns the content type carrying the boundary. Used by the remote record
// backend; the local backend consumes the payload directly.
func (p *Payload) WriteMultipart(w io.Writer) (string, error) {
	mw := multipart.NewWriter(w)

	for name, value := range p.Fields {
		if err := mw.WriteField(name, value); err != nil {
			return "", fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	for _, part := range p.Files {
		fw, err := mw.CreateFormFile(part.Field, part.FileName)
		if err != nil {
			return "", fmt.Errorf("failed to create part %s: %w", part.Field, err)
		}
		f, err := os.Open(part.Path)
		if err != nil {
			return "", fmt.Errorf("failed to open upload %s: %w", part.FileName, err)
		}
		if _, err := io.Copy(fw, f); err != nil {
			f.Close()
			return "", fmt.Errorf("failed to copy upload %s: %w", part.FileName, err)
		}
		f.Close()
	}

	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return mw.FormDataContentType(), nil
}
