package utils

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

const minPasswordLength = 8

// PromptPasswordTwice reads a password from the terminal without echo and
// asks again until both entries match.
func PromptPasswordTwice() (string, error) {
	for {
		fmt.Print("Enter password: ")
		pass1, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		if len(pass1) < minPasswordLength {
			fmt.Printf("Password must be at least %d characters.\n", minPasswordLength)
			continue
		}
		fmt.Print("Repeat password: ")
		pass2, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		if string(pass1) != string(pass2) {
			fmt.Println("Passwords do not match. Try again.")
			continue
		}
		return string(pass1), nil
	}
}
