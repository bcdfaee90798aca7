package core

import (
	"fmt"

	"github.com/tsawler/pdftext/internal/filters"
)

// Decode runs the stream data through its /Filter chain, pairing each
// filter with the matching /DecodeParms entry.
func (s *Stream) Decode() ([]byte, error) {
	names, params, err := s.filterChain()
	if err != nil {
		return nil, err
	}
	data := s.Data
	for i, name := range names {
		data, err = filters.Decode(name, data, params[i])
		if err != nil {
			return nil, fmt.Errorf("filter %d (%s) failed: %w", i, name, err)
		}
	}
	return data, nil
}

func (s *Stream) filterChain() ([]string, []filters.Params, error) {
	var names []string
	switch f := s.Dict.Get("Filter").(type) {
	case nil:
		return nil, nil, nil
	case Name:
		names = []string{string(f)}
	case Array:
		for i, elem := range f {
			n, ok := elem.(Name)
			if !ok {
				return nil, nil, fmt.Errorf("filter %d is not a name: %T", i, elem)
			}
			names = append(names, string(n))
		}
	default:
		return nil, nil, fmt.Errorf("invalid Filter type: %T", f)
	}

	params := make([]filters.Params, len(names))
	switch p := s.Dict.Get("DecodeParms").(type) {
	case Dict:
		params[0] = toParams(p)
	case Array:
		for i := range names {
			if d, ok := p.Get(i).(Dict); ok {
				params[i] = toParams(d)
			}
		}
	}
	return names, params, nil
}

func toParams(d Dict) filters.Params {
	params := make(filters.Params, len(d))
	for k, v := range d {
		switch obj := v.(type) {
		case Int:
			params[k] = int(obj)
		case Real:
			params[k] = float64(obj)
		case Bool:
			params[k] = bool(obj)
		case String:
			params[k] = string(obj)
		case Name:
			params[k] = string(obj)
		}
	}
	return params
}
