package cli

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// isInteractive reports whether stdin is a terminal that can answer prompts.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ConfirmSingleKey displays a yes/no prompt and waits for a single keypress.
// Returns true for 'y'/'Y', false for 'n'/'N', or error on Ctrl+C.
// No Enter key is required - responds immediately to keypress.
func ConfirmSingleKey(prompt string) (bool, error) {
	fd := int(os.Stdin.Fd())

	for {
		fmt.Printf("%s (y/n): ", prompt)

		key, err := readKey(fd)
		if err != nil {
			return false, err
		}

		switch key {
		case 3: // Ctrl+C
			fmt.Println("^C")
			return false, fmt.Errorf("interrupted")
		case 'y', 'Y':
			fmt.Println("y")
			return true, nil
		case 'n', 'N':
			fmt.Println("n")
			return false, nil
		}

		fmt.Println()
		fmt.Println("Invalid key. Please press 'y' or 'n'.")
	}
}

// readKey reads one byte with the terminal in raw mode, restoring it before
// returning.
func readKey(fd int) (byte, error) {
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return 0, fmt.Errorf("failed to set raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	b := make([]byte, 1)
	if _, err := os.Stdin.Read(b); err != nil {
		return 0, fmt.Errorf("failed to read input: %w", err)
	}
	return b[0], nil
}
