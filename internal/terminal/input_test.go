package terminal

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestScannerReader_ReadLine(t *testing.T) {
	output := &bytes.Buffer{}
	reader := NewScannerReader(strings.NewReader("ls -la\r\nlast line"), output)

	line, err := reader.ReadLine("> ")
	if err != nil || line != "ls -la" {
		t.Fatalf("ReadLine() = %q, %v", line, err)
	}

	line, err = reader.ReadLine("> ")
	if err != nil || line != "last line" {
		t.Fatalf("ReadLine() = %q, %v; want unterminated last line", line, err)
	}

	if _, err := reader.ReadLine("> "); err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}

	if output.String() != "> > > " {
		t.Errorf("Expected prompts echoed, got %q", output.String())
	}
	if err := reader.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
