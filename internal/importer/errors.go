package importer

import "fmt"

// MalformedInputError reports a document that does not have the shape its
// format expects: wrong column count, unexpected header, unparsable cell.
type MalformedInputError struct {
	Format string
	Line   int // 1-based row, or entry position in JSON/XML formats; 0 for the whole document
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.Format, e.Line, msg)
	}
	return fmt.Sprintf("%s: %s", e.Format, msg)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// UnsupportedFormatError reports a format key or file extension that has no
// registered extractor.
type UnsupportedFormatError struct {
	Key       string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("unsupported format: %q", e.Key)
	}
	return fmt.Sprintf("no format registered for extension %q", e.Extension)
}
