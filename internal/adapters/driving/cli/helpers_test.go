package cli

import (
	"bytes"
	"io"
)

// executeCommand runs the root command with args and returns everything it
// printed to stdout and stderr.
func executeCommand(args ...string) (string, error) {
	return executeCommandWithInput(nil, args...)
}

func executeCommandWithInput(in io.Reader, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	if in != nil {
		rootCmd.SetIn(in)
	}
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
