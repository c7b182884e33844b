package backend

import (
	"io"

	"github.com/antonholmquist/jason"
)

const maxPredictBodyBytes = 1 << 20

// parseLabel extracts "emotion" and any server "error" text from a predict response.
// Malformed or unexpected payloads yield an empty label and no error; only read
// failures are returned.
func parseLabel(body io.Reader) (label string, detail string, err error) {
	raw, err := io.ReadAll(io.LimitReader(body, maxPredictBodyBytes))
	if err != nil {
		return "", "", err
	}

	obj, parseErr := jason.NewObjectFromBytes(raw)
	if parseErr != nil {
		return "", "", nil
	}

	if msg, detailErr := obj.GetString("error"); detailErr == nil {
		detail = msg
	}
	if emotion, labelErr := obj.GetString("emotion"); labelErr == nil {
		label = emotion
	}
	return label, detail, nil
}
