// Command msg2 decodes, generates, validates, publishes and archives ICOADS
// MSG2 record files.
package main

import "github.com/couchcryptid/msg2-etl/cmd/msg2/cmd"

func main() {
	cmd.Execute()
}
