package ai

import (
	"sort"
	"strings"
)

// Section labels of the reply format requested by the system prompt.
const (
	LabelCommand     = "COMMAND:"
	LabelExplanation = "EXPLANATION:"
	LabelSafe        = "SAFE:"
)

var labels = []string{LabelCommand, LabelExplanation, LabelSafe}

// Verdict is the model's safety judgement of its proposed command.
//
// A reply without a SAFE: section yields Safe=true with Present=false: the
// gate does not block on it, but callers can tell it apart from an explicit
// endorsement.
type Verdict struct {
	Safe    bool
	Reason  string
	Present bool
}

// ParsedResponse is the structured form of a model reply.
type ParsedResponse struct {
	Command     string
	Explanation string
	Verdict     Verdict
}

// ParseResponse splits a reply into its COMMAND, EXPLANATION and SAFE sections.
//
// Each section starts at the first occurrence of its label and runs until the
// next label occurrence (of any kind) or the end of text. A label appearing
// inside another section's body therefore ends that section early.
func ParseResponse(raw string) ParsedResponse {
	bounds := labelOffsets(raw)

	section := func(label string) (string, bool) {
		start := strings.Index(raw, label)
		if start < 0 {
			return "", false
		}
		body := start + len(label)
		end := len(raw)
		for _, off := range bounds {
			if off >= body {
				end = off
				break
			}
		}
		return strings.TrimSpace(raw[body:end]), true
	}

	cmd, _ := section(LabelCommand)
	explanation, _ := section(LabelExplanation)
	safe, found := section(LabelSafe)

	verdict := parseVerdict(safe)
	verdict.Present = found && safe != ""

	return ParsedResponse{
		Command:     cmd,
		Explanation: explanation,
		Verdict:     verdict,
	}
}

// labelOffsets returns the sorted start offsets of every label occurrence.
func labelOffsets(raw string) []int {
	var offsets []int
	for _, label := range labels {
		from := 0
		for {
			i := strings.Index(raw[from:], label)
			if i < 0 {
				break
			}
			offsets = append(offsets, from+i)
			from += i + len(label)
		}
	}
	sort.Ints(offsets)
	return offsets
}

func parseVerdict(body string) Verdict {
	if body == "" {
		return Verdict{Safe: true}
	}

	word := strings.Fields(body)[0]
	rest := strings.Trim(strings.TrimSpace(body[len(word):]), "-:,. \t")

	switch strings.ToLower(strings.Trim(word, ".,:;!-*")) {
	case "yes", "y", "true", "safe":
		return Verdict{Safe: true, Reason: rest}
	case "no", "n", "false", "unsafe":
		if rest == "" {
			rest = body
		}
		return Verdict{Safe: false, Reason: rest}
	default:
		// Anything we cannot read as a clear yes must be confirmed.
		return Verdict{Safe: false, Reason: body}
	}
}

// RunnableCommand returns the proposed command with markdown code markers
// removed. Placeholders such as "none" yield an empty string.
func (p ParsedResponse) RunnableCommand() string {
	cmd := strings.TrimSpace(p.Command)

	if strings.HasPrefix(cmd, "```") {
		cmd = strings.TrimPrefix(cmd, "```")
		// First line of a fenced block is the language tag.
		if i := strings.IndexByte(cmd, '\n'); i >= 0 {
			cmd = cmd[i+1:]
		}
		cmd = strings.TrimSuffix(strings.TrimSpace(cmd), "```")
	} else if len(cmd) >= 2 && cmd[0] == '`' && cmd[len(cmd)-1] == '`' {
		cmd = cmd[1 : len(cmd)-1]
	}
	cmd = strings.TrimSpace(cmd)

	switch strings.ToLower(cmd) {
	case "none", "n/a", "-", "(none)":
		return ""
	}
	return cmd
}

// HasCommand reports whether the reply proposes something to run.
func (p ParsedResponse) HasCommand() bool {
	return p.RunnableCommand() != ""
}
