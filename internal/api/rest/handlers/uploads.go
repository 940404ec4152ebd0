package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/internal/storage"
	"github.com/gin-gonic/gin"
)

// isMultipart reports whether the request carries a multipart form
func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// formFiles returns the files of one multipart field. A missing field is not an error.
func formFiles(c *gin.Context, field string) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, domain.NewValidationError(field, "malformed multipart form: "+err.Error())
	}
	return form.File[field], nil
}

// openUploads opens every file header. The returned func closes whatever was opened.
func openUploads(headers []*multipart.FileHeader) ([]storage.Upload, func(), error) {
	uploads := make([]storage.Upload, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, domain.NewStoreError("open upload", err)
		}
		opened = append(opened, f)
		uploads = append(uploads, storage.Upload{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}

	return uploads, closeAll, nil
}
