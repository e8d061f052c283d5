package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newReceiveCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "receive <dest-dir>",
		Short: "Receive a file or directory from an in-process sender into dest-dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			destDir := args[0]
			if path == "" {
				var err error
				path, err = writeSampleFile()
				if err != nil {
					return err
				}
				defer os.Remove(path)
			}
			destPath, err := runDemo(path, destDir)
			if err != nil {
				return err
			}
			fmt.Printf("saved to %s\n", destPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "file or directory for the in-process sender to offer (default: a generated sample file)")
	return cmd
}

func writeSampleFile() (string, error) {
	f, err := os.CreateTemp("", "transit-demo-sample-*.txt")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.WriteString("hello from transit-demo\n"); err != nil {
		return "", err
	}
	return f.Name(), nil
}
