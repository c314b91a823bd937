// Command tilematch creates, plays, inspects and serves tile-matching games.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/tilematch/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
