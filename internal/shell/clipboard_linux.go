//go:build linux

package shell

import "fmt"

const clipboardAvailable = false

func writeClipboard(text string) error {
	return fmt.Errorf("clipboard not available on this platform (Linux without X11)")
}
