package shared

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// CopyToClipboard writes text to the system clipboard.
//
// Headless sessions without xclip/xsel/wl-copy return an error the caller may ignore.
func CopyToClipboard(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("%w: clipboard unavailable", ErrServiceUnavailable)
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
