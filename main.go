// Command abc-res-link links compiled Android resource inputs into
// application packages. See cmd.Execute for the CLI surface.
package main

import "github.com/ABC-KANG/abc-res-link/cmd"

func main() {
	cmd.Execute()
}
