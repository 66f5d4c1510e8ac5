// Command cloudfilesctl runs offline maintenance against the file store.
package main

import (
	"log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("error executing command: %s", err)
	}
}
