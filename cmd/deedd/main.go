// Command deedd runs the tokenized real-estate settlement engine.
package main

import "github.com/opendeed/deedd/internal/cli"

func main() {
	cli.Execute()
}
