// Command ariadnectl is the SRE assistant's CLI: ask a question in
// plain English, get back Cypher-grounded answers about the cluster.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
