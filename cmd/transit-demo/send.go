package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newSendCmd() *cobra.Command {
	var destDir string
	cmd := &cobra.Command{
		Use:   "send <path>",
		Short: "Offer a file or directory and transfer it to an in-process receiver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if destDir == "" {
				var err error
				destDir, err = os.MkdirTemp("", "transit-demo-recv-*")
				if err != nil {
					return err
				}
			}
			_, err := runDemo(path, destDir)
			if err != nil {
				return err
			}
			fmt.Printf("received into %s\n", destDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&destDir, "dest", "", "destination directory for the in-process receiver (default: a fresh temp dir)")
	return cmd
}
