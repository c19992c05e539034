/*
Package cmd provides CLI functionality shared by the todo and todod binaries.
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/leg100/todo/internal"
)

func PrintError(err error) {
	printError(os.Stderr, err)
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", color.HiRedString("Error:"), err.Error())
	if hint := errorHint(err); hint != "" {
		fmt.Fprintf(w, "%s %s\n", color.HiYellowString("Hint:"), hint)
	}
}

// errorHint suggests a remedy for errors commonly caused by misconfiguration.
func errorHint(err error) string {
	var missing *internal.MissingParameterError
	switch {
	case errors.Is(err, internal.ErrUnauthorized):
		return "check the credentials set with --username and --password"
	case errors.As(err, &missing):
		return fmt.Sprintf("set it with --%s or its environment variable", missing.Parameter)
	}
	return ""
}
