package codec

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JonMunkholm/SheetEdit/internal/core"
)

// DecodeFunc reads one file into a workbook.
type DecodeFunc func(fileName string, data []byte) (core.Workbook, error)

// Registry maps file extensions to decoders. It implements core.Decoder.
type Registry struct {
	byExt map[string]DecodeFunc
}

// NewRegistry returns a registry with the built-in decoders: OOXML
// workbooks via excelize and delimited text via encoding/csv.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]DecodeFunc)}
	for _, ext := range []string{".xlsx", ".xlsm", ".xltx", ".xltm"} {
		r.Register(ext, DecodeXLSX)
	}
	r.Register(".csv", DecodeCSV)
	r.Register(".tsv", DecodeTSV)
	return r
}

// Register adds or replaces the decoder for ext.
func (r *Registry) Register(ext string, fn DecodeFunc) {
	r.byExt[normalizeExt(ext)] = fn
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Decode picks a decoder by the file's extension.
func (r *Registry) Decode(fileName string, data []byte) (core.Workbook, error) {
	ext := normalizeExt(filepath.Ext(fileName))
	fn, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q files", core.ErrUnsupportedFormat, ext)
	}
	return fn(fileName, data)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
