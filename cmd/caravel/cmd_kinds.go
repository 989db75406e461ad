package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yairfalse/caravel/catalog"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the resource kinds in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := catalog.New("")
		for _, kind := range c.Kinds() {
			desc, err := c.Lookup(kind)
			if err != nil {
				return err
			}
			fmt.Printf("%-20s Azure::%-28s %s\n", desc.Kind, desc.TypeTag, desc.StoragePrefix)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}
