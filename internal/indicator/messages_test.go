package indicator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmotionNotice(t *testing.T) {
	for label, want := range map[string]string{
		"Fear":    "Detected Emotion: Fear",
		"angry":   "Detected Emotion: angry",
		" Happy ": "Detected Emotion: Happy",
		"  ":      "Detected Emotion: Unknown",
		"":        "Detected Emotion: Unknown",
	} {
		require.Equal(t, want, english.emotion(label), "label %q", label)
	}
}
