package cmd

import (
	"fmt"
	"os"

	"github.com/go-mil/mil/cmd/milsim/internal/script"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Replay a pointer-event script once",
		Usage: "milsim run <script.yaml>",
		Run:   runRun,
	})
}

func runRun(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("a script file is required\n\nUsage: milsim run <script.yaml>")
	}
	s, err := script.Load(args[0])
	if err != nil {
		return err
	}
	if s.Name != "" {
		fmt.Printf("Replaying %q (%d events)\n\n", s.Name, len(s.Events))
	}
	return script.Replay(s, os.Stdout)
}
