package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

var errPasswordMismatch = errors.New("passwords do not match")

// promptPassword pide el password dos veces sin eco. Falla si stdin no es una terminal.
func promptPassword(w io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--password is required when stdin is not a terminal")
	}
	return readPasswordTwice(w, func() ([]byte, error) { return term.ReadPassword(fd) })
}

func readPasswordTwice(w io.Writer, read func() ([]byte, error)) (string, error) {
	fmt.Fprint(w, "Password: ")
	pwd, err := read()
	fmt.Fprintln(w) // nueva línea después del input oculto
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errors.New("password cannot be empty")
	}

	fmt.Fprint(w, "Confirm Password: ")
	confirm, err := read()
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	if string(pwd) != string(confirm) {
		return "", errPasswordMismatch
	}
	return string(pwd), nil
}
