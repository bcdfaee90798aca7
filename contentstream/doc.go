// Package contentstream splits PDF content streams into operations.
//
// A content stream is a sequence of operands followed by an operator:
//
//	p := contentstream.NewParser(streamData)
//	for {
//	    op, err := p.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(op.Operator, op.Operands)
//	}
//
// Operands are core objects: numbers, strings, names, arrays,
// dictionaries, booleans and null. Comments are skipped. Inline images
// (BI ... ID data EI) are returned as one "BI" operation carrying the
// image dictionary and the raw data.
package contentstream
