package middleware

import (
	"errors"        // Error matching
	"fmt"           // Error formatting
	"net/http"      // HTTP status codes
	"os"            // File system
	"path/filepath" // Path handling
	"strings"       // String manipulation

	"learnshop/internal/utils" // Response envelope

	"github.com/gabriel-vasile/mimetype" // Content sniffing
	"github.com/gin-gonic/gin"           // Gin web framework
	"github.com/google/uuid"             // Unique file names
	"github.com/sirupsen/logrus"         // Logrus for structured logging
)

// Context keys set by UploadImage
const (
	UploadURLKey  = "uploadedFileURL"  // Public URL of the stored file
	UploadPathKey = "uploadedFilePath" // Path on disk
)

// UploadURLPrefix is where uploaded files are served from
const UploadURLPrefix = "/uploads/"

// allowedImageTypes maps accepted MIME types to their allowed extensions
var allowedImageTypes = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
	"image/webp": {".webp"},
}

// UploadImage stores an optional image sent in the multipart field.
// Requests that are not multipart, or carry no file, pass through untouched.
func UploadImage(field, dir string, maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
			c.Next()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+1<<20) // Body cap, leaves room for form fields
		header, err := c.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			c.Next()
			return
		}
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid upload")
			return
		}
		if header.Size > maxBytes {
			utils.Fail(c, http.StatusBadRequest, fmt.Sprintf("File too large, maximum is %d MB", maxBytes>>20))
			return
		}
		ext := strings.ToLower(filepath.Ext(header.Filename))

		file, err := header.Open()
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid upload")
			return
		}
		mtype, err := mimetype.DetectReader(file) // Sniff the real content type
		_ = file.Close()
		if err != nil || !extensionMatches(mtype.String(), ext) {
			utils.Fail(c, http.StatusBadRequest, "Only JPEG, PNG, GIF and WEBP images are allowed")
			return
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			_ = c.Error(fmt.Errorf("create upload dir: %w", err))
			c.Abort()
			return
		}
		name := uuid.New().String() + ext
		path := filepath.Join(dir, name)
		if err := c.SaveUploadedFile(header, path); err != nil {
			_ = c.Error(fmt.Errorf("save upload: %w", err))
			c.Abort()
			return
		}
		logrus.WithFields(logrus.Fields{
			"file": name,        // Stored file name
			"size": header.Size, // Bytes
		}).Info("Image uploaded")

		c.Set(UploadURLKey, UploadURLPrefix+name)
		c.Set(UploadPathKey, path)
		c.Next()
	}
}

// UploadedURL returns the URL of the image stored by UploadImage
func UploadedURL(c *gin.Context) (string, bool) {
	url := c.GetString(UploadURLKey)
	return url, url != ""
}

// DiscardUpload removes the stored file when the handler could not use it
func DiscardUpload(c *gin.Context) {
	if path := c.GetString(UploadPathKey); path != "" {
		_ = os.Remove(path)
	}
}

func extensionMatches(mime, ext string) bool {
	for _, allowed := range allowedImageTypes[mime] {
		if allowed == ext {
			return true
		}
	}
	return false
}
