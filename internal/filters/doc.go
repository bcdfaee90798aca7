// Package filters implements the PDF stream decoding filters.
//
// Streams name their filters in /Filter and pass parameters through
// /DecodeParms. [Decode] dispatches on the filter name, accepting both the
// full and the abbreviated inline-image names:
//
//	data, err := filters.Decode("FlateDecode", raw, filters.Params{"Predictor": 12, "Columns": 5})
//
// Image-only codecs (DCTDecode, JPXDecode, JBIG2Decode) are passed through
// unchanged: text extraction never needs their pixels.
package filters
