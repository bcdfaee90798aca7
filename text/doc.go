// Package text interprets the text operators of a content stream and
// assembles the text they show.
//
// # Interpretation
//
// Only four operators carry text meaning:
//
//   - Tf selects the current font resource
//   - Td moves the text position; a vertical move is a line break and a
//     horizontal one a word break
//   - Tj shows one string
//   - TJ shows strings interleaved with position adjustments; an
//     adjustment beyond half a space width is a word break
//
// Every other operator passes through without effect. Each content stream
// is interpreted on its own with a fresh [Context]:
//
//	table, _ := font.NewCharMapTable(page, font.DefaultSpaceWidth, nil)
//	frags, err := text.NewInterpreter().Run(ops, table)
//	block := text.Assemble(frags)
//
// A Tj or TJ remembers the font that was current when it was constructed,
// so later Tf operations never change it.
//
// # Assembly
//
// [Assemble] concatenates fragment texts. An [Assembler] can additionally
// normalize the result with a form from golang.org/x/text/unicode/norm.
// [DetectDirection] classifies a block as left-to-right or right-to-left.
package text
