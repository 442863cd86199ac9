package scanning

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zombor/paynotify/internal/corpus"
)

type linesResponse struct {
	Lines []struct {
		Text string      `json:"text"`
		Box  *corpus.Box `json:"box"`
	} `json:"lines"`
}

// parseLinesJSON reads the model's reply into a corpus. Blank lines are
// skipped and boxes outside the unit square are dropped from their line.
func parseLinesJSON(text string) (corpus.Corpus, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	start := strings.Index(text, "{")
	if start == -1 {
		return corpus.Corpus{}, fmt.Errorf("no JSON object found in response")
	}
	end := strings.LastIndex(text, "}")
	if end < start {
		return corpus.Corpus{}, fmt.Errorf("invalid JSON object in response")
	}

	var resp linesResponse
	if err := json.Unmarshal([]byte(text[start:end+1]), &resp); err != nil {
		return corpus.Corpus{}, fmt.Errorf("unmarshaling json: %w", err)
	}

	var c corpus.Corpus
	for _, l := range resp.Lines {
		t := strings.TrimSpace(l.Text)
		if t == "" {
			continue
		}
		line := corpus.Line{Text: t}
		if l.Box != nil && l.Box.Valid() {
			b := *l.Box
			line.Box = &b
		}
		c.Lines = append(c.Lines, line)
	}
	return c, nil
}
