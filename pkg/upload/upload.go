// Package upload turns a chat attachment into model input: an image for
// vision models or plain text appended to the prompt.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"nmai-api/pkg/llm"
)

const (
	// MaxTextRunes caps attachment text handed to the model.
	MaxTextRunes = 8000
	// TruncationNote is appended when attachment text was cut.
	TruncationNote = "\n\n[Dipotong karena terlalu panjang, hanya sebagian data file yang ditampilkan.]"
	// DefaultMaxBytes bounds uploads when no limit is configured.
	DefaultMaxBytes = 10 << 20

	maxSheetRows = 50
	maxSheetCols = 15

	defaultImageMime = "image/png"
	xlsxMime         = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	xlsMime          = "application/vnd.ms-excel"
)

// ErrTooLarge is returned for uploads above the configured size.
var ErrTooLarge = errors.New("upload: file too large")

// Attachment is an extracted upload. Exactly one of Image and Text is set.
type Attachment struct {
	Name      string
	Image     *llm.Image
	Text      string
	Truncated bool
}

// Extract classifies data by mime type and file name.
func Extract(filename, mimeType string, data []byte) (*Attachment, error) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	ext := strings.ToLower(filepath.Ext(filename))
	att := &Attachment{Name: filename}

	switch {
	case strings.HasPrefix(mimeType, "image/"):
		att.Image = &llm.Image{MimeType: mimeType, Data: data}
		return att, nil
	case mimeType == "text/plain" || mimeType == "text/csv" || ext == ".txt" || ext == ".csv":
		att.Text = toUTF8(data)
	case mimeType == xlsxMime || mimeType == xlsMime || ext == ".xlsx" || ext == ".xls":
		text, err := sheetText(data)
		if err != nil {
			// Legacy .xls files are not zip containers; fall back to raw text.
			text = toUTF8(data)
		}
		att.Text = text
	default:
		att.Text = toUTF8(data)
	}
	att.Text, att.Truncated = truncate(att.Text)
	return att, nil
}

// AsImage wraps data as an image regardless of its declared type. A blank
// mime type becomes image/png.
func AsImage(mimeType string, data []byte) llm.Image {
	if strings.TrimSpace(mimeType) == "" {
		mimeType = defaultImageMime
	}
	return llm.Image{MimeType: mimeType, Data: data}
}

// ReadFile reads a multipart upload, enforcing maxBytes (DefaultMaxBytes
// when non-positive).
func ReadFile(fh *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if fh.Size > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, fh.Size)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("upload: open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("upload: read %s: %w", fh.Filename, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxBytes)
	}
	return data, nil
}

// sheetText renders the first sheet, up to 50 rows of 15 cells, as
// tab-separated lines.
func sheetText(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("upload: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("upload: read sheet %s: %w", sheets[0], err)
	}
	if len(rows) > maxSheetRows {
		rows = rows[:maxSheetRows]
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		if len(row) > maxSheetCols {
			row = row[:maxSheetCols]
		}
		lines[i] = strings.Join(row, "\t")
	}
	return strings.Join(lines, "\n"), nil
}

func toUTF8(data []byte) string {
	return strings.ToValidUTF8(string(data), string(utf8.RuneError))
}

func truncate(text string) (string, bool) {
	if utf8.RuneCountInString(text) <= MaxTextRunes {
		return text, false
	}
	runes := []rune(text)
	return string(runes[:MaxTextRunes]) + TruncationNote, true
}
