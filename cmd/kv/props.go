package kv

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/kvt/lib/template"
	"github.com/spf13/cobra"
)

var (
	// PropsCommands represents the properties command group
	PropsCommands = &cobra.Command{
		Use:   "props",
		Short: "Manage a properties hash",
	}

	propsGetCmd = &cobra.Command{
		Use:   "get [key] [name] [default]",
		Short: "Prints a property, falling back to default if given",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			props := newProps(args[0])
			if len(args) == 3 {
				v, err := props.GetPropertyDefault(ctx, args[1], args[2])
				if err != nil {
					return err
				}
				printValue(v, true)
				return nil
			}
			v, ok, err := props.GetProperty(ctx, args[1])
			if err != nil {
				return err
			}
			printValue(v, ok)
			return nil
		},
	}
	propsSetCmd = &cobra.Command{
		Use:   "set [key] [name] [value]",
		Short: "Sets a property",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newProps(args[0]).SetProperty(ctx, args[1], args[2]); err != nil {
				return err
			}
			fmt.Println("OK")
			return nil
		},
	}
	propsNamesCmd = &cobra.Command{
		Use:   "names [key]",
		Short: "Prints the sorted names of all properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := newProps(args[0]).StringPropertyNames(ctx)
			if err != nil {
				return err
			}
			printValues(names)
			return nil
		},
	}
	propsLoadCmd = &cobra.Command{
		Use:   "load [key] [file]",
		Short: "Loads KEY=VALUE lines or a properties XML document into the properties hash",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			props := newProps(args[0])
			load := props.Load
			if asXML, _ := cmd.Flags().GetBool("xml"); asXML {
				load = props.LoadXML
			}
			if err := load(ctx, f); err != nil {
				return err
			}
			fmt.Println("OK")
			return nil
		},
	}
	propsStoreCmd = &cobra.Command{
		Use:   "store [key] [file]",
		Short: "Writes the properties hash to a file, use - for stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			comment, _ := cmd.Flags().GetString("comment")
			props := newProps(args[0])
			store := props.Store
			if asXML, _ := cmd.Flags().GetBool("xml"); asXML {
				store = props.StoreXML
			}
			if args[1] == "-" {
				return store(ctx, os.Stdout, comment)
			}
			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			if err := store(ctx, f, comment); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	propsListCmd = &cobra.Command{
		Use:   "list [key]",
		Short: "Lists all properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newProps(args[0]).List(ctx, os.Stdout)
		},
	}
)

func init() {
	propsStoreCmd.Flags().String("comment", "", "Comment written as the first line")
	propsStoreCmd.Flags().Bool("xml", false, "Write a properties XML document")
	propsLoadCmd.Flags().Bool("xml", false, "Read a properties XML document")
	PropsCommands.AddCommand(propsGetCmd, propsSetCmd, propsNamesCmd, propsLoadCmd, propsStoreCmd, propsListCmd)
}

func newProps(key string) *template.Properties[string] {
	return template.NewProperties(client.Template, key, nil)
}
