package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jsru [file]",
	Short: "Embedded JavaScript evaluation with promise awaiting",
	Long: `jsru - Evaluate JavaScript in an embedded engine and print the result.

Code can come from a file, an inline string, or stdin. Evaluations await
promises by default and drain the event loop before reporting, so async
code returns its settled value.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRun, // Default to run command behavior
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	addRunFlags(rootCmd)
}

// readSource resolves code from the -c flag, a file argument, or stdin,
// in that order. An empty string with ok=false means nothing was given.
func readSource(cmd *cobra.Command, args []string) (string, bool) {
	code, _ := cmd.Flags().GetString("code")
	if code != "" {
		return code, true
	}

	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return string(data), true
	}

	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return "", false
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(data) == 0 {
		return "", false
	}
	return string(data), true
}

// printValue renders a host value the way the guest serialized it.
func printValue(v any) {
	out, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
