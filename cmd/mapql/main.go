// Command mapql compiles criteria-mapping statement documents to SQL and
// runs them.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/mapql/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "mapql:", err)

		// Usage errors from cobra carry no exit code of their own.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			os.Exit(cli.ExitCommandError)
		}
		os.Exit(exitErr.Code)
	}
}
