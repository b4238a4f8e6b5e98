package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

// Execute runs the cardstack CLI with args and returns an error if any
// command fails. Logs go to stderr at info level, or debug level with
// --verbose (-v).
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//	if err := cli.Execute(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
//	    os.Exit(1)
//	}
func Execute(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	var verbose bool

	c := New(stderr, LogInfo)
	root := c.RootCommand()
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	preRun := root.PersistentPreRun
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			c.SetLogLevel(LogDebug)
		}
		preRun(cmd, args)
	}

	return root.ExecuteContext(ctx)
}
