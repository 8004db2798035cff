package main

import (
	"github.com/dreamerjackson/ducrawler/cmd"
)

func main() {
	cmd.Execute()
}
