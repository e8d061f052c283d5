// Command transit-demo drives one complete Transit transfer in-process,
// standing in for the out-of-scope Wormhole CLI. There is no real mailbox
// client here — both sides of the demo run in this one process over a
// wormhole.LoopbackConnection pair, since the PAKE step that would let two
// separate processes agree on a shared key is out of scope for this
// module.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "transit-demo",
		Short: "Run a Transit file transfer end to end over an in-process loopback connection",
	}
	root.AddCommand(newSendCmd())
	root.AddCommand(newReceiveCmd())
	return root
}
