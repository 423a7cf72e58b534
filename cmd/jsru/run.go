package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/caffeineduck/jsru/engine"
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Evaluate code and print the result",
	Long: `Evaluate JavaScript code and print the result as JSON.

Code can be provided via:
  - File argument: jsru run script.js
  - Inline flag: jsru run -c '1 + 2 + 3'
  - Stdin: echo '6 * 7' | jsru run`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRun,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("code", "c", "", "Code to evaluate")
	cmd.Flags().String("init", "", "Init script compiled into the context before evaluation")
	cmd.Flags().Duration("timeout", 30*time.Second, "Evaluation timeout (0 = none)")
	cmd.Flags().Bool("no-await", false, "Do not await promises or drain the event loop")
}

func runRun(cmd *cobra.Command, args []string) {
	source, ok := readSource(cmd, args)
	if !ok {
		cmd.Help()
		return
	}

	initPath, _ := cmd.Flags().GetString("init")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	noAwait, _ := cmd.Flags().GetBool("no-await")

	var opts []engine.Option
	if timeout > 0 {
		opts = append(opts, engine.WithTimeout(timeout))
	}

	var ectx *engine.Context
	var err error
	if initPath != "" {
		ectx, err = engine.NewFromFile(initPath, opts...)
	} else {
		ectx, err = engine.New("", opts...)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer ectx.Close()

	value, err := ectx.Eval(context.Background(), source, engine.WithAwait(!noAwait))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printValue(value)
}
