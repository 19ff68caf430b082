// Command cherub mediates AI agent tool invocations against a
// capability-tiered policy, escalating commit-tier actions to human
// approval and recording every decision to an append-only sink.
package main

import "github.com/kennwilliamson/cherub/cmd/cherub/cmd"

func main() {
	cmd.Execute()
}
