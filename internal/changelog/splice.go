package changelog

import "bytes"

// Location is where a new row goes relative to the header line.
type Location struct {
	// Offset is the byte offset at which the row is inserted.
	Offset int
	// Line is the 1-based line number the inserted row will occupy.
	Line int
	// EOL is the line terminator used for the inserted row.
	EOL string
	// Terminated is false when the header is the last line and has no
	// terminator of its own.
	Terminated bool
}

// Locate finds the first occurrence of marker and returns the position
// right after the line break that ends the line containing it.
func Locate(content []byte, marker string) (Location, error) {
	if marker == "" {
		return Location{}, ErrEmptyMarker
	}

	start := bytes.Index(content, []byte(marker))
	if start < 0 {
		return Location{}, ErrMarkerNotFound
	}

	lineRest := content[start+len(marker):]
	nl := bytes.IndexByte(lineRest, '\n')
	if nl < 0 {
		// Header is the final line: it gets a terminator and the row
		// becomes the new final line.
		eol := "\n"
		if bytes.Contains(content, []byte("\r\n")) {
			eol = "\r\n"
		}
		return Location{
			Offset:     len(content),
			Line:       bytes.Count(content, []byte{'\n'}) + 2,
			EOL:        eol,
			Terminated: false,
		}, nil
	}

	end := start + len(marker) + nl + 1
	eol := "\n"
	if nl > 0 && lineRest[nl-1] == '\r' {
		eol = "\r\n"
	}

	return Location{
		Offset:     end,
		Line:       bytes.Count(content[:end], []byte{'\n'}) + 1,
		EOL:        eol,
		Terminated: true,
	}, nil
}

// Splice returns a copy of content with row inserted at loc.
func Splice(content []byte, loc Location, row string) []byte {
	out := make([]byte, 0, len(content)+len(row)+2*len(loc.EOL))
	out = append(out, content[:loc.Offset]...)

	if !loc.Terminated {
		out = append(out, loc.EOL...)
		out = append(out, row...)
		return out
	}

	out = append(out, row...)
	out = append(out, loc.EOL...)
	out = append(out, content[loc.Offset:]...)
	return out
}

// Insert places row on the line directly after the header marker line.
// Every other byte of content is preserved.
func Insert(content []byte, marker, row string) ([]byte, error) {
	loc, err := Locate(content, marker)
	if err != nil {
		return nil, err
	}
	return Splice(content, loc, row), nil
}
