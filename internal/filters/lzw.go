package filters

import (
	"bytes"
	"compress/lzw"
	"fmt"
	"io"

	tifflzw "golang.org/x/image/tiff/lzw"
)

// LZWDecode decodes LZW data. PDF's default /EarlyChange 1 is the TIFF
// variant of the code width switch; /EarlyChange 0 is the plain GIF-style
// coding of compress/lzw.
func LZWDecode(data []byte, params Params) ([]byte, error) {
	var r io.ReadCloser
	if params.Int("EarlyChange", 1) == 0 {
		r = lzw.NewReader(bytes.NewReader(data), lzw.MSB, 8)
	} else {
		r = tifflzw.NewReader(bytes.NewReader(data), tifflzw.MSB, 8)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil && len(out) == 0 {
		return nil, fmt.Errorf("lzw decompression failed: %w", err)
	}
	return unpredict(out, params)
}
