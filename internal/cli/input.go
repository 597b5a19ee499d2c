package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// prompt prints label and reads one trimmed line.
func (a *App) prompt(label string) (string, error) {
	line, err := a.promptRaw(label)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptRaw is prompt without trimming; only the line ending is dropped.
func (a *App) promptRaw(label string) (string, error) {
	fmt.Fprint(a.Stdout, label+": ")
	line, err := a.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// password reads without echo when stdin is a terminal and falls back to
// a plain line otherwise, so scripts can pipe it in.
func (a *App) password() (string, error) {
	if f, ok := a.Stdin.(*os.File); ok && isTerminal(int(f.Fd())) {
		fmt.Fprint(a.Stdout, "Password: ")
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(a.Stdout)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}
	return a.promptRaw("Password")
}
