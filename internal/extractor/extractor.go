package extractor

import (
	"bufio"
	"io"
	"log/slog"
	"strings"

	"github.com/iotux/log-parser/internal/models"
	"github.com/iotux/log-parser/internal/scanner"
)

// Options controls extraction behavior.
type Options struct {
	// QuoteAwareDepth makes brace counting skip braces inside quoted
	// spans. The default (false) counts every brace, including braces
	// inside string values, which corrupts depth when a value contains a
	// literal brace.
	QuoteAwareDepth bool

	// Logger receives per-block debug diagnostics. Nil disables them.
	Logger *slog.Logger
}

// Extractor consumes a line stream and yields the raw text block of
// each complete record that starts on a line prefixed with the trigger
// keyword. Blocks are brace-balanced by construction. Usage mirrors
// bufio.Scanner: call Next until it returns false, then check Err.
type Extractor struct {
	trigger string
	opts    Options

	lines   *bufio.Scanner
	lineNum int

	recording bool
	startLine int
	buf       strings.Builder
	tracker   scanner.DepthTracker
}

// New creates an Extractor reading lines from r. The trigger keyword is
// matched as a literal prefix of each line.
func New(r io.Reader, trigger string, opts Options) *Extractor {
	lines := bufio.NewScanner(r)
	// Log lines can be long; allow up to 1 MiB per line.
	lines.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Extractor{
		trigger: trigger,
		opts:    opts,
		lines:   lines,
		tracker: scanner.DepthTracker{QuoteAware: opts.QuoteAwareDepth},
	}
}

// Next advances to the next complete record block. It returns false at
// end of input or on a read error; Err distinguishes the two. A block
// still open when input ends is discarded, not returned.
func (e *Extractor) Next() (models.RecordBlock, bool) {
	for e.lines.Scan() {
		e.lineNum++
		line := e.lines.Text()

		if !e.recording {
			if !strings.HasPrefix(strings.TrimLeft(line, " \t"), e.trigger) {
				continue
			}
			e.recording = true
			e.startLine = e.lineNum
			e.tracker.Reset()

			start := strings.IndexByte(line, '{')
			if start < 0 {
				// Trigger line with no opening brace: depth never
				// leaves zero, so the cycle completes immediately with
				// an empty block.
				return e.emit(), true
			}
			rest := line[start:]
			e.buf.WriteString(rest)
			e.tracker.StepString(rest)
		} else {
			e.buf.WriteByte('\n')
			e.buf.WriteString(line)
			e.tracker.StepString(line)
		}

		if e.tracker.Depth() == 0 {
			return e.emit(), true
		}
	}
	if e.recording && e.opts.Logger != nil {
		e.opts.Logger.Debug("discarding unterminated record block",
			"start_line", e.startLine,
			"depth", e.tracker.Depth())
	}
	return models.RecordBlock{}, false
}

// Err returns the first error encountered while reading lines, or nil
// if input ended cleanly.
func (e *Extractor) Err() error {
	return e.lines.Err()
}

func (e *Extractor) emit() models.RecordBlock {
	block := models.RecordBlock{Text: e.buf.String(), Line: e.startLine}
	e.buf.Reset()
	e.recording = false
	if e.opts.Logger != nil {
		e.opts.Logger.Debug("extracted record block",
			"line", block.Line,
			"bytes", len(block.Text))
	}
	return block
}

// ExtractAll eagerly collects every block from r. Convenience wrapper
// for callers that do not need streaming.
func ExtractAll(r io.Reader, trigger string, opts Options) ([]models.RecordBlock, error) {
	ex := New(r, trigger, opts)
	var blocks []models.RecordBlock
	for {
		block, ok := ex.Next()
		if !ok {
			break
		}
		blocks = append(blocks, block)
	}
	return blocks, ex.Err()
}
