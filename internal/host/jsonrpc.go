package host

import (
	"bufio"
	"fmt"
	"io"
	"net/textproto"
	"strconv"
)

// readMessage reads one Content-Length framed payload.
func readMessage(r *bufio.Reader) ([]byte, error) {
	headers, err := textproto.NewReader(r).ReadMIMEHeader()
	if err != nil {
		return nil, err
	}
	value := headers.Get("Content-Length")
	if value == "" {
		return nil, fmt.Errorf("frame without Content-Length header")
	}
	length, err := strconv.Atoi(value)
	if err != nil || length < 0 {
		return nil, fmt.Errorf("bad Content-Length %q", value)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func writeMessage(w io.Writer, payload []byte) error {
	if _, err := fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(payload)); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
