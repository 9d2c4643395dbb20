package core

import (
	"bufio"
	"io"
	"strings"
	"sync"

	"golang.org/x/text/encoding/unicode"
)

// capture is the combined, decoded output of one invocation. Chunks from
// stdout and stderr are kept in arrival order.
type capture struct {
	mu     sync.Mutex
	chunks []string
}

func (c *capture) append(s string) {
	c.mu.Lock()
	c.chunks = append(c.chunks, s)
	c.mu.Unlock()
}

func (c *capture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.chunks, "")
}

// drain copies r line by line to console and into out until EOF.
// Bytes that are not valid UTF-8 are replaced with U+FFFD.
func drain(r io.Reader, console io.Writer, out *capture) error {
	br := bufio.NewReader(r)
	dec := unicode.UTF8.NewDecoder()

	for {
		chunk, err := br.ReadBytes('\n')
		if len(chunk) > 0 {
			text, decErr := dec.Bytes(chunk)
			if decErr != nil {
				text = []byte(strings.ToValidUTF8(string(chunk), "\uFFFD"))
			}
			// Console errors must not stop the capture.
			_, _ = console.Write(text)
			out.append(string(text))
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
