package console

import (
	"bufio"
	"io"
	"strings"
)

// Frame is one server-sent event: an optional event name plus the data payload
// accumulated from its data lines.
type Frame struct {
	Event string
	Data  string
}

// FrameReader decodes text/event-stream frames: lines are accumulated until a
// blank line closes the frame. Comment lines (leading ':') and unknown fields
// are ignored. Frames with no data are skipped rather than delivered.
type FrameReader struct {
	scanner *bufio.Scanner
}

func NewFrameReader(r io.Reader) *FrameReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &FrameReader{scanner: sc}
}

// Next returns the next complete frame, or io.EOF when the stream ends.
func (fr *FrameReader) Next() (Frame, error) {
	var frame Frame
	var data []string

	for fr.scanner.Scan() {
		line := fr.scanner.Text()
		if line == "" {
			if len(data) == 0 && frame.Event == "" {
				continue
			}
			if len(data) == 0 {
				// Event name without payload; keep scanning.
				frame = Frame{}
				continue
			}
			frame.Data = strings.Join(data, "\n")
			return frame, nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "data":
			data = append(data, value)
		case "event":
			frame.Event = value
		}
	}

	if err := fr.scanner.Err(); err != nil {
		return Frame{}, err
	}
	if len(data) > 0 {
		frame.Data = strings.Join(data, "\n")
		return frame, nil
	}
	return Frame{}, io.EOF
}

// WriteFrame encodes a frame in wire format. Multi-line data is split into one
// data line per line so boundaries survive the round trip.
func WriteFrame(w io.Writer, f Frame) error {
	var b strings.Builder
	if f.Event != "" {
		b.WriteString("event: ")
		b.WriteString(f.Event)
		b.WriteString("\n")
	}
	for _, line := range strings.Split(f.Data, "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}
