package main

import "github.com/tvet-mis/console/cmd/tvetmis/cmd"

func main() {
	cmd.Execute()
}
