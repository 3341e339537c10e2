package export

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"

	"github.com/govbilling/billdash/internal/platform/httpx"
)

// Format names an export encoding.
type Format string

// Supported export formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var contentTypes = map[Format]string{
	FormatCSV:  "text/csv; charset=utf-8",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatPDF:  "application/pdf",
}

var bufPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if _, ok := contentTypes[f]; !ok {
		return "", fmt.Errorf("%w: unsupported export format %q", httpx.ErrValidation, s)
	}
	return f, nil
}

// Respond encodes t and streams it as an attachment named base.<format>.
func Respond(w http.ResponseWriter, r *http.Request, format Format, base string, t Table, pdf Renderer) error {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		bufPool.Put(buf)
	}()

	switch format {
	case FormatCSV:
		if err := WriteCSV(buf, t); err != nil {
			return err
		}
	case FormatXLSX:
		if err := WriteXLSX(buf, t); err != nil {
			return err
		}
	case FormatPDF:
		data, err := WritePDF(r.Context(), pdf, t)
		if err != nil {
			return err
		}
		buf.Write(data)
	default:
		return fmt.Errorf("%w: unsupported export format %q", httpx.ErrValidation, format)
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.%s\"", base, format))
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(buf.Bytes())
	return err
}
