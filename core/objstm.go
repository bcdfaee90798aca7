package core

import (
	"bytes"
	"fmt"
)

// ObjectStream is a decoded /Type /ObjStm stream. It holds N objects whose
// numbers and offsets are listed in a header before byte offset First.
type ObjectStream struct {
	stream  *Stream
	n       int
	first   int
	extends *IndirectRef

	decoded []byte
	header  []objStmEntry
	cache   map[int]Object
}

type objStmEntry struct {
	num    int
	offset int
}

// NewObjectStream validates the stream dictionary. The data is decoded
// lazily on first access.
func NewObjectStream(stream *Stream) (*ObjectStream, error) {
	if stream == nil {
		return nil, fmt.Errorf("stream is nil")
	}
	if typ, _ := stream.Dict.GetName("Type"); typ != "ObjStm" {
		return nil, fmt.Errorf("stream is not an object stream, got type %v", stream.Dict.Get("Type"))
	}

	n, ok := stream.Dict.GetInt("N")
	if !ok || n < 0 {
		return nil, fmt.Errorf("object stream has invalid /N: %v", stream.Dict.Get("N"))
	}
	first, ok := stream.Dict.GetInt("First")
	if !ok || first < 0 {
		return nil, fmt.Errorf("object stream has invalid /First: %v", stream.Dict.Get("First"))
	}

	os := &ObjectStream{
		stream: stream,
		n:      int(n),
		first:  int(first),
		cache:  make(map[int]Object),
	}
	if ext := stream.Dict.Get("Extends"); ext != nil {
		ref, ok := ext.(IndirectRef)
		if !ok {
			return nil, fmt.Errorf("invalid /Extends type: %T", ext)
		}
		os.extends = &ref
	}
	return os, nil
}

// N returns the number of objects in the stream.
func (os *ObjectStream) N() int { return os.n }

// First returns the offset of the first object in the decoded data.
func (os *ObjectStream) First() int { return os.first }

// Extends returns the object stream this one extends, or nil.
func (os *ObjectStream) Extends() *IndirectRef { return os.extends }

func (os *ObjectStream) load() error {
	if os.decoded != nil {
		return nil
	}
	data, err := os.stream.Decode()
	if err != nil {
		return fmt.Errorf("failed to decode object stream: %w", err)
	}
	if os.first > len(data) {
		return fmt.Errorf("/First (%d) exceeds decoded length (%d)", os.first, len(data))
	}

	p := NewParser(bytes.NewReader(data[:os.first]))
	header := make([]objStmEntry, 0, os.n)
	for i := 0; i < os.n; i++ {
		num, err1 := p.ParseObject()
		off, err2 := p.ParseObject()
		numInt, ok1 := num.(Int)
		offInt, ok2 := off.(Int)
		if err1 != nil || err2 != nil || !ok1 || !ok2 {
			return fmt.Errorf("malformed object stream header at pair %d", i)
		}
		header = append(header, objStmEntry{num: int(numInt), offset: int(offInt)})
	}
	os.decoded, os.header = data, header
	return nil
}

// GetObjectByIndex parses the object at position index in the header and
// returns it with its object number.
func (os *ObjectStream) GetObjectByIndex(index int) (Object, int, error) {
	if err := os.load(); err != nil {
		return nil, 0, err
	}
	if index < 0 || index >= len(os.header) {
		return nil, 0, fmt.Errorf("index %d out of range [0, %d)", index, len(os.header))
	}
	num := os.header[index].num
	if obj, ok := os.cache[index]; ok {
		return obj, num, nil
	}

	start := os.first + os.header[index].offset
	end := len(os.decoded)
	if index+1 < len(os.header) {
		end = os.first + os.header[index+1].offset
	}
	if start >= len(os.decoded) || end > len(os.decoded) || start > end {
		return nil, 0, fmt.Errorf("object %d has offset outside the stream", num)
	}

	obj, err := NewParser(bytes.NewReader(os.decoded[start:end])).ParseObject()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse object at index %d: %w", index, err)
	}
	os.cache[index] = obj
	return obj, num, nil
}

// GetObjectByNumber finds an object by number and returns it with its index.
func (os *ObjectStream) GetObjectByNumber(objNum int) (Object, int, error) {
	if err := os.load(); err != nil {
		return nil, 0, err
	}
	for i, e := range os.header {
		if e.num == objNum {
			obj, _, err := os.GetObjectByIndex(i)
			return obj, i, err
		}
	}
	return nil, 0, fmt.Errorf("object %d not found in object stream", objNum)
}
