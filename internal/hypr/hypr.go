// Package hypr drives Hyprland's built-in notification overlay through
// hyprctl dispatchers.
package hypr

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Notification icons understood by the notify dispatcher.
const (
	IconWarning = 0
	IconInfo    = 1
	IconHint    = 2
	IconError   = 3
	IconConfuse = 4
	IconOK      = 5
)

const fallbackColor = "rgb(89b4fa)"

// Notice is one overlay notification.
type Notice struct {
	Icon      int
	TimeoutMS int
	Color     string
	Text      string
}

func (n Notice) args() []string {
	color := strings.TrimSpace(n.Color)
	if color == "" {
		color = fallbackColor
	}
	return []string{strconv.Itoa(n.Icon), strconv.Itoa(n.TimeoutMS), color, n.Text}
}

// Notify shows n on top of any notices already visible.
func Notify(ctx context.Context, n Notice) error {
	return dispatch(ctx, "notify", n.args()...)
}

// Dismiss clears every visible overlay notification.
func Dismiss(ctx context.Context) error {
	return dispatch(ctx, "dismissnotify")
}

func dispatch(ctx context.Context, dispatcher string, args ...string) error {
	argv := append([]string{"--quiet", "dispatch", dispatcher}, args...)
	out, err := exec.CommandContext(ctx, "hyprctl", argv...).CombinedOutput()
	if err == nil {
		return nil
	}
	if detail := strings.TrimSpace(string(out)); detail != "" {
		return fmt.Errorf("hyprctl dispatch %s: %w (%s)", dispatcher, err, detail)
	}
	return fmt.Errorf("hyprctl dispatch %s: %w", dispatcher, err)
}
