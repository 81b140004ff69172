package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// palette styles the parts of a formatted error. The zero value is plain text.
type palette struct {
	label, message, category, fix, usage, bullet func(a ...interface{}) string
}

func plainPalette() palette {
	id := fmt.Sprint
	return palette{label: id, message: id, category: id, fix: id, usage: id, bullet: id}
}

// colorPalette honours NO_COLOR and non-terminal output through fatih/color.
func colorPalette() palette {
	return palette{
		label:    color.New(color.FgRed, color.Bold).SprintFunc(),
		message:  color.New(color.FgRed).SprintFunc(),
		category: color.New(color.FgYellow).SprintFunc(),
		fix:      color.New(color.FgGreen, color.Bold).SprintFunc(),
		usage:    color.New(color.FgCyan).SprintFunc(),
		bullet:   color.New(color.FgGreen).SprintFunc(),
	}
}

// FormatError formats a CLIError for display in the terminal.
func FormatError(err *CLIError) string {
	if err == nil {
		return ""
	}
	return formatError(err, colorPalette())
}

// FormatErrorPlain formats a CLIError without colors.
func FormatErrorPlain(err *CLIError) string {
	if err == nil {
		return ""
	}
	return formatError(err, plainPalette())
}

// formatError renders:
//
//	Error [Category]: message
//
//	Usage: syntax
//
//	To fix this:
//	  • step
func formatError(err *CLIError, p palette) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s [%s]: %s\n", p.label("Error"), p.category(err.Category.String()), p.message(err.Message))

	if err.Usage != "" {
		fmt.Fprintf(&sb, "\n%s %s\n", p.usage("Usage:"), p.usage(err.Usage))
	}

	if len(err.Remediation) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", p.fix("To fix this:"))
		for _, step := range err.Remediation {
			fmt.Fprintf(&sb, "  %s %s\n", p.bullet("•"), step)
		}
	}

	return sb.String()
}

// FprintError prints a formatted CLIError to w.
func FprintError(w io.Writer, err *CLIError) {
	if err == nil {
		return
	}
	fmt.Fprint(w, FormatError(err))
}
