// Package ui provides colored terminal output helpers for the importer CLI.
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

const headerWidth = 60

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	stepColor    = color.New(color.FgBlue, color.Bold)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgWhite)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

// Header prints a prominent banner for the start of a run.
func Header(text string) {
	line := strings.Repeat("=", headerWidth)
	headerColor.Println(line)
	headerColor.Println(center(text, headerWidth))
	headerColor.Println(line)
}

// Step prints a numbered progress step, e.g. "[2/4] Loading rules".
func Step(current, total int, text string) {
	stepColor.Printf("[%d/%d] ", current, total)
	fmt.Println(text)
}

// Success prints a message with a green check mark.
func Success(text string) {
	successColor.Printf("✓ %s\n", text)
}

// Info prints a neutral informational message.
func Info(text string) {
	infoColor.Printf("  %s\n", text)
}

// Warning prints a yellow warning message.
func Warning(text string) {
	warningColor.Printf("⚠ %s\n", text)
}

// Error prints a red error message.
func Error(text string) {
	errorColor.Printf("✗ %s\n", text)
}

// BlueText returns the text colored blue.
func BlueText(text string) string {
	return color.BlueString(text)
}

// YellowText returns the text colored yellow.
func YellowText(text string) string {
	return color.YellowString(text)
}

// center left-pads text so it sits in the middle of width. Text wider than
// width is returned unchanged.
func center(text string, width int) string {
	if len(text) >= width {
		return text
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}
