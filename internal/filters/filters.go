package filters

import (
	"errors"
	"fmt"
)

// Params holds /DecodeParms values converted to Go types (int, float64,
// bool, string).
type Params map[string]interface{}

// ErrUnsupported is returned for filters this package cannot decode.
var ErrUnsupported = errors.New("unsupported filter")

// DecodeFunc decodes data for one filter.
type DecodeFunc func(data []byte, params Params) ([]byte, error)

var registry = map[string]DecodeFunc{
	"FlateDecode":     FlateDecode,
	"Fl":              FlateDecode,
	"LZWDecode":       LZWDecode,
	"LZW":             LZWDecode,
	"ASCIIHexDecode":  ignoreParams(ASCIIHexDecode),
	"AHx":             ignoreParams(ASCIIHexDecode),
	"ASCII85Decode":   ignoreParams(ASCII85Decode),
	"A85":             ignoreParams(ASCII85Decode),
	"RunLengthDecode": ignoreParams(RunLengthDecode),
	"RL":              ignoreParams(RunLengthDecode),
	"CCITTFaxDecode":  CCITTFaxDecode,
	"CCF":             CCITTFaxDecode,
	"DCTDecode":       passThrough,
	"DCT":             passThrough,
	"JPXDecode":       passThrough,
	"JBIG2Decode":     passThrough,
}

// Decode applies the named filter.
func Decode(name string, data []byte, params Params) ([]byte, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
	return fn(data, params)
}

func ignoreParams(fn func([]byte) ([]byte, error)) DecodeFunc {
	return func(data []byte, _ Params) ([]byte, error) {
		return fn(data)
	}
}

func passThrough(data []byte, _ Params) ([]byte, error) {
	return data, nil
}

// Int returns an integer parameter, or def when it is missing or not numeric.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Bool returns a boolean parameter, or def.
func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}
