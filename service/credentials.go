package service

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Credentials holds the username/password of a catalog account
type Credentials struct {
	Username string
	Password string
}

// LoadCredentials reads a settings file containing the username on the first
// non-blank line and the password on the second.
// If path is "-", the credentials are read interactively from the terminal.
func LoadCredentials(path string) (Credentials, error) {
	if path == "-" {
		return readCredentialsPrompt()
	}

	fd, err := os.Open(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("open settings file: %w", err)
	}
	defer fd.Close()
	return parseCredentials(fd)
}

func parseCredentials(r io.Reader) (Credentials, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return Credentials{}, fmt.Errorf("read settings file: %w", err)
	}
	if len(lines) < 2 {
		return Credentials{}, fmt.Errorf("invalid settings file: expected username and password lines")
	}
	return Credentials{Username: lines[0], Password: lines[1]}, nil
}

func readCredentialsPrompt() (Credentials, error) {
	fmt.Fprint(os.Stderr, "Insert username: ")
	reader := bufio.NewReader(os.Stdin)
	user, err := reader.ReadString('\n')
	if err != nil {
		return Credentials{}, fmt.Errorf("read username: %w", err)
	}
	fmt.Fprint(os.Stderr, "Insert password: ")
	pword, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return Credentials{}, fmt.Errorf("read password: %w", err)
	}
	return Credentials{Username: strings.TrimSpace(user), Password: string(pword)}, nil
}
