package extract

import "context"

// Extractor reads text out of an image given an instruction prompt.
type Extractor interface {
	// Extract sends the base64-encoded JPEG image and prompt to the reading
	// service and returns its raw text answer.
	Extract(ctx context.Context, image, prompt string) (string, error)
}
