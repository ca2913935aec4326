package main

import (
	"bufio"
	"career-ebook-generator/internal/auth"
	"log/slog"
	"os"
	"strings"
)

// prints a bcrypt hash for Session.PasscodeHash; the passcode is read from stdin
func main() {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && len(line) == 0 {
		slog.Error("reading passcode: " + err.Error())
		os.Exit(1)
	}

	hash, err := auth.Hash(strings.TrimRight(line, "\r\n"))
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	slog.Info(string(hash))
}
