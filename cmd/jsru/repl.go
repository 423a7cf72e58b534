package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/caffeineduck/jsru/engine"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive REPL on a persistent context",
	Long: `Start an interactive REPL (Read-Eval-Print Loop) session.

State defined through --init or via assignments to globals persists for
the lifetime of the session. Features:
  - Command history (up/down arrows)
  - Line editing (left/right, backspace, delete)
  - History search (Ctrl+R)
  - Multi-line input (end line with \)

Type 'exit' or 'quit' to end the session, or press Ctrl+D.`,
	Run: runRepl,
}

func init() {
	replCmd.Flags().String("init", "", "Init script compiled into the session context")
	replCmd.Flags().Duration("timeout", 0, "Per-evaluation timeout (0 = none)")
	replCmd.Flags().Bool("no-await", false, "Do not await promises")
	replCmd.Flags().String("history", "", "History file path (default: ~/.jsru_history)")
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) {
	initPath, _ := cmd.Flags().GetString("init")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	noAwait, _ := cmd.Flags().GetBool("no-await")
	historyFile, _ := cmd.Flags().GetString("history")

	if historyFile == "" {
		home, _ := os.UserHomeDir()
		historyFile = filepath.Join(home, ".jsru_history")
	}

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

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            ">>> ",
		HistoryFile:       historyFile,
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Fprintln(os.Stderr, "jsru REPL (type 'exit' to quit, Ctrl+D to exit)")

	var multiLine strings.Builder
	inMultiLine := false

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if inMultiLine {
					multiLine.Reset()
					inMultiLine = false
					rl.SetPrompt(">>> ")
				}
				continue
			}
			if err == io.EOF {
				fmt.Println()
				break
			}
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			break
		}

		// Handle multi-line input
		if strings.HasSuffix(line, "\\") {
			multiLine.WriteString(strings.TrimSuffix(line, "\\"))
			multiLine.WriteString("\n")
			inMultiLine = true
			rl.SetPrompt("... ")
			continue
		}

		if inMultiLine {
			multiLine.WriteString(line)
			line = multiLine.String()
			multiLine.Reset()
			inMultiLine = false
			rl.SetPrompt(">>> ")
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if line == ".stats" {
			fmt.Printf("evaluations: %d\n", ectx.Stats().ExecCount)
			continue
		}

		value, err := ectx.Eval(context.Background(), line, engine.WithAwait(!noAwait))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		printValue(value)
	}
}
