package main

import "github.com/theirongolddev/ledgr/cmd"

func main() {
	cmd.Execute()
}
