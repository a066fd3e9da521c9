// Command authctl drives the socialauth coordinator from a terminal.
//
// It keeps the active session in a preferences file (or Redis), credentials in
// the OS keychain, and completes Google and Facebook sign-in through a
// loopback redirect server.
package main

import (
	"os"

	"github.com/dmitrymomot/socialauth/pkg/logger"
)

func main() {
	c := &cli{}
	err := c.rootCommand().Execute()
	c.close()
	logger.Flush()
	if err != nil {
		os.Exit(1)
	}
}
