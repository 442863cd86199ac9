// Package scanning recognizes text lines, with their positions, in screen
// captures of banking apps using a vision model.
package scanning

import (
	"context"

	"github.com/zombor/paynotify/internal/corpus"
)

// Recognizer turns an image into recognized text lines.
type Recognizer interface {
	// Recognize returns the text lines found in imageData, top to bottom.
	Recognize(ctx context.Context, imageData []byte, contentType string) (corpus.Corpus, error)
	// Close releases the model client.
	Close() error
}

// linesPrompt asks the model for the lines and their boxes as JSON.
const linesPrompt = `This image is a screenshot of a Thai mobile banking app or a bank transfer slip.
Read every line of text exactly as it appears, in Thai or English, from top to bottom.

For each line give its bounding box as fractions of the image size:
x and y are the top-left corner, width and height the size, all between 0 and 1.

Return ONLY JSON in this exact format:
{
  "lines": [
    {"text": "SCB Easy", "box": {"x": 0.05, "y": 0.04, "width": 0.3, "height": 0.05}}
  ]
}

Rules:
- Copy digits, commas, decimal points and currency symbols (฿, บาท, THB) exactly
- Keep Thai text as Thai; do not translate or transliterate
- Do not merge separate lines
- If you cannot locate a line, omit its "box"
- Do not include any text before or after the JSON`
