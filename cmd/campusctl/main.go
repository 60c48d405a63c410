// Command campusctl inspects the SmartCampus assistant offline and runs
// housekeeping jobs against the configured database.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
