package pdftext

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tsawler/pdftext/contentstream"
	"github.com/tsawler/pdftext/font"
	"github.com/tsawler/pdftext/pages"
	"github.com/tsawler/pdftext/text"
)

// Block is the text of one content stream.
type Block struct {
	// Page is the 1-based page number.
	Page int
	// Stream is the 0-based index of the stream among the page's contents.
	Stream int
	// Text holds everything assembled before the stream ended or failed.
	Text string
	// Err is the reason the stream stopped early, if it did.
	Err error
	// Direction is the dominant writing direction of Text.
	Direction text.Direction
}

// PageConfig controls ExtractPage. The zero value is usable.
type PageConfig struct {
	// Number is recorded in each Block.Page.
	Number int
	// SpaceWidth is the fallback space width for fonts that give no hint.
	// Zero means font.DefaultSpaceWidth.
	SpaceWidth float64
	// Assembler joins fragments into blocks. Nil means text.Assemble.
	Assembler *text.Assembler
	// Logger receives progress and failure records. Nil discards them.
	Logger *slog.Logger
	// StopOnError makes the first failed stream the error of the call.
	StopOnError bool
	// Analyzer overrides font.DefaultAnalyzer.
	Analyzer font.Analyzer
}

// ExtractPage interprets the content streams of page one by one and
// returns a Block for each. A failed stream keeps the text assembled
// before the failure and records the error in Block.Err; the remaining
// streams are still interpreted unless cfg.StopOnError is set.
//
// A page whose fonts cannot be analyzed returns an error and no blocks.
func ExtractPage(page *pages.Page, cfg PageConfig) ([]Block, error) {
	log := cfg.Logger
	if log == nil {
		log = discardLogger()
	}
	spaceWidth := cfg.SpaceWidth
	if spaceWidth == 0 {
		spaceWidth = font.DefaultSpaceWidth
	}
	assembler := cfg.Assembler
	if assembler == nil {
		assembler = text.NewAssembler()
	}

	streams, err := page.Contents()
	if err != nil {
		return nil, fmt.Errorf("contents: %w", err)
	}
	if len(streams) == 0 {
		log.Debug("page has no content", "page", cfg.Number)
		return nil, nil
	}

	table, err := font.NewCharMapTable(page, spaceWidth, cfg.Analyzer)
	if err != nil {
		return nil, fmt.Errorf("fonts: %w", err)
	}
	log.Debug("fonts analyzed", "page", cfg.Number, "fonts", table.IDs())

	current := 0
	var hook text.OperationHook
	if log.Enabled(context.Background(), slog.LevelDebug) {
		hook = func(i int, op contentstream.Operation, frags []text.Fragment) {
			if len(frags) == 0 {
				return
			}
			log.Debug("text operation", "page", cfg.Number, "stream", current,
				"index", i, "operator", op.Operator, "text", text.Assemble(frags))
		}
	}
	in := text.NewInterpreter(text.WithOperationHook(hook))

	blocks := make([]Block, 0, len(streams))
	for i, s := range streams {
		current = i
		block := Block{Page: cfg.Number, Stream: i}

		data, err := s.Decode()
		if err != nil {
			block.Err = fmt.Errorf("%w: %w", text.ErrStreamCorruption, err)
		} else {
			frags, runErr := in.RunStream(data, table)
			block.Text = assembler.Assemble(frags)
			block.Err = runErr
		}
		block.Direction = text.DetectDirection(block.Text)
		blocks = append(blocks, block)

		if block.Err != nil {
			log.Warn("stream failed", "page", cfg.Number, "stream", i, "error", block.Err)
			if cfg.StopOnError {
				return blocks, fmt.Errorf("stream %d: %w", i, block.Err)
			}
			continue
		}
		log.Debug("stream done", "page", cfg.Number, "stream", i, "bytes", len(block.Text))
	}
	return blocks, nil
}
