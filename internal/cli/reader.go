package cli

import (
	"bufio"
	"io"
	"strings"
)

// ReadMessages splits notification text into messages. When a blank line separates
// two lines of text, each blank-line separated block is one message with its lines
// joined by spaces; otherwise every non-empty line is a message.
func ReadMessages(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	var seenText, gap, blocks bool
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			gap = seenText
		case gap:
			blocks = true
		default:
			seenText = true
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var messages []string
	if !blocks {
		for _, line := range lines {
			if line != "" {
				messages = append(messages, line)
			}
		}
		return messages, nil
	}

	var block []string
	flush := func() {
		if len(block) > 0 {
			messages = append(messages, strings.Join(block, " "))
			block = nil
		}
	}
	for _, line := range lines {
		if line == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	flush()

	return messages, nil
}
