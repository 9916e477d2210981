package cmd

import "fmt"

// Version of the milsim tool.
const Version = "0.1.0"

func init() {
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Print the milsim version",
		Usage: "milsim version",
		Run: func(args []string) error {
			fmt.Println("milsim version " + Version)
			return nil
		},
	})
}
