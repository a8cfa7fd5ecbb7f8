// Command appgate runs the monetization gate of an application instance
// from the terminal.
package main

import "github.com/Sentinel-Gate/appgate/cmd/appgate/cmd"

func main() {
	cmd.Execute()
}
