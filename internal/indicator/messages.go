package indicator

import "strings"

// messages holds the user-facing notice texts.
type messages struct {
	recording     string
	uploading     string
	emotionPrefix string
	alertSent     string
	errorText     string
}

var english = messages{
	recording:     "Recording…",
	uploading:     "Analyzing…",
	emotionPrefix: "Detected Emotion: ",
	alertSent:     "Emergency message sent!",
	errorText:     "Error: classification failed",
}

// emotion renders the detected-label notice. The label is shown as the
// classifier returned it.
func (m messages) emotion(label string) string {
	if label = strings.TrimSpace(label); label == "" {
		label = "Unknown"
	}
	return m.emotionPrefix + label
}
