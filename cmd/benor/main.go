package main

import (
	"boscoin.io/benor/cmd/benor/cmd"
)

func main() {
	cmd.Execute()
}
