package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestFileHeader creates a mock multipart.FileHeader for testing
func createTestFileHeader(filename string, size int64, content []byte) *multipart.FileHeader {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", "image/png")
	part, _ := writer.CreatePart(h)
	part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content)) + 1024)
	defer form.RemoveAll()

	if len(form.File["file"]) > 0 {
		fileHeader := form.File["file"][0]
		// Override size for testing purposes
		fileHeader.Size = size
		return fileHeader
	}

	return nil
}

func TestValidateImageFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantCode string
	}{
		{name: "valid png", filename: "menu.png", size: 1024},
		{name: "valid jpg", filename: "menu.jpg", size: 1024},
		{name: "valid jpeg uppercase", filename: "MENU.JPEG", size: 1024},
		{name: "too large", filename: "huge.png", size: 6 * 1024 * 1024, wantCode: "FILE_TOO_LARGE"},
		{name: "wrong format", filename: "menu.gif", size: 1024, wantCode: "INVALID_FILE_FORMAT"},
		{name: "no extension", filename: "menu", size: 1024, wantCode: "INVALID_FILE_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := []byte("fake image content")
			fileHeader := createTestFileHeader(tt.filename, tt.size, content)
			require.NotNil(t, fileHeader)

			err := ValidateImageFile(fileHeader)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			var uploadErr *FileUploadError
			require.ErrorAs(t, err, &uploadErr)
			assert.Equal(t, tt.wantCode, uploadErr.Code)
		})
	}
}

func TestValidateImageFileAtSizeLimit(t *testing.T) {
	content := []byte("fake image content")
	fileHeader := createTestFileHeader("exact.png", MaxImageSize, content)
	require.NotNil(t, fileHeader)

	assert.NoError(t, ValidateImageFile(fileHeader))
}
