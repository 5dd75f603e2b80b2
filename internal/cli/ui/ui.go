// Package ui provides the terminal output helpers shared by the CLI
// commands: status lines and simple aligned tables.
package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
)

// Successf prints a bold green status line.
func Successf(w io.Writer, format string, args ...interface{}) {
	successColor.Fprintf(w, format+"\n", args...)
}

// Errorf prints a bold red status line.
func Errorf(w io.Writer, format string, args ...interface{}) {
	errorColor.Fprintf(w, format+"\n", args...)
}

// Infof prints a cyan status line.
func Infof(w io.Writer, format string, args ...interface{}) {
	infoColor.Fprintf(w, format+"\n", args...)
}

// Warnf prints a yellow status line.
func Warnf(w io.Writer, format string, args ...interface{}) {
	warnColor.Fprintf(w, format+"\n", args...)
}

// Plainf prints an uncolored line.
func Plainf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}
