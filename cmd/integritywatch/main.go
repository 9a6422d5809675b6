// Command integritywatch is the filesystem integrity monitor daemon.
package main

import "github.com/ppiankov/integritywatch/internal/cli"

func main() {
	cli.Execute()
}
