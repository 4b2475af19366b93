package main

import (
	"github.com/spf13/cobra"

	"github.com/zostay/go-globalmail/tools/mailfmt/cmd"
)

func main() {
	err := cmd.Execute()
	cobra.CheckErr(err)
}
