package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// FlateDecode inflates zlib data and undoes any /Predictor.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib decompression failed: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		// Truncated streams are common; keep what was inflated.
		if len(out) == 0 {
			return nil, fmt.Errorf("zlib decompression failed: %w", err)
		}
	}
	return unpredict(out, params)
}

// unpredict reverses TIFF predictor 2 and the PNG predictors 10-15.
func unpredict(data []byte, params Params) ([]byte, error) {
	predictor := params.Int("Predictor", 1)
	if predictor == 1 {
		return data, nil
	}

	colors := params.Int("Colors", 1)
	bpc := params.Int("BitsPerComponent", 8)
	columns := params.Int("Columns", 1)
	bpp := (colors*bpc + 7) / 8
	rowLen := (columns*colors*bpc + 7) / 8
	if rowLen <= 0 || bpp <= 0 {
		return nil, fmt.Errorf("invalid predictor parameters: colors=%d bpc=%d columns=%d", colors, bpc, columns)
	}

	switch {
	case predictor == 2:
		if bpc != 8 {
			return nil, fmt.Errorf("TIFF predictor with %d bits per component is not supported", bpc)
		}
		out := append([]byte(nil), data...)
		for row := 0; row+rowLen <= len(out); row += rowLen {
			for i := row + bpp; i < row+rowLen; i++ {
				out[i] += out[i-bpp]
			}
		}
		return out, nil
	case predictor >= 10 && predictor <= 15:
		return unpredictPNG(data, rowLen, bpp)
	}
	return nil, fmt.Errorf("unsupported predictor: %d", predictor)
}

// unpredictPNG decodes rows that each start with a PNG filter type byte.
func unpredictPNG(data []byte, rowLen, bpp int) ([]byte, error) {
	stride := rowLen + 1
	if len(data)%stride != 0 {
		// drop a trailing partial row
		data = data[:len(data)-len(data)%stride]
	}
	out := make([]byte, 0, len(data)/stride*rowLen)
	prev := make([]byte, rowLen)
	for off := 0; off < len(data); off += stride {
		typ, row := data[off], append([]byte(nil), data[off+1:off+stride]...)
		for i := range row {
			var left, upLeft byte
			if i >= bpp {
				left, upLeft = row[i-bpp], prev[i-bpp]
			}
			up := prev[i]
			switch typ {
			case 0:
			case 1:
				row[i] += left
			case 2:
				row[i] += up
			case 3:
				row[i] += byte((int(left) + int(up)) / 2)
			case 4:
				row[i] += paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("unknown PNG filter type %d in row %d", typ, off/stride)
			}
		}
		out = append(out, row...)
		prev = row
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := absInt(p-int(a)), absInt(p-int(b)), absInt(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
