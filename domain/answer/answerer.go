// Package answer defines the grounded answering port.
package answer

import "context"

// Answerer turns a question plus an ordered set of chunk images into a
// free-text answer grounded only in those images.
type Answerer interface {
	// Question sends the images (in the given order) and the prompt as one
	// completion request. A completion failure propagates unretried.
	Question(ctx context.Context, prompt string, images [][]byte) (string, error)
}
