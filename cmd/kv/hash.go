package kv

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// HashCommands represents the hash command group
	HashCommands = &cobra.Command{
		Use:   "hash",
		Short: "Perform hash operations",
	}

	hputCmd = &cobra.Command{
		Use:   "put [key] [field] [value] [field value...]",
		Short: "Sets one or more fields of a hash",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 3 || len(args)%2 == 0 {
				return fmt.Errorf("requires a key followed by field value pairs")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ops := client.Template.OpsForHash()
			if len(args) == 3 {
				if err := ops.Put(ctx, args[0], args[1], args[2]); err != nil {
					return err
				}
			} else {
				m := make(map[string]string, len(args)/2)
				for i := 1; i < len(args); i += 2 {
					m[args[i]] = args[i+1]
				}
				if err := ops.PutAll(ctx, args[0], m); err != nil {
					return err
				}
			}
			fmt.Println("OK")
			return nil
		},
	}
	hgetCmd = &cobra.Command{
		Use:   "get [key] [field...]",
		Short: "Prints the value of one or more fields",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops := client.Template.OpsForHash()
			if len(args) == 2 {
				v, ok, err := ops.Get(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				printValue(v, ok)
				return nil
			}
			values, err := ops.MultiGet(ctx, args[0], args[1:]...)
			if err != nil {
				return err
			}
			printValues(values)
			return nil
		},
	}
	hdelCmd = &cobra.Command{
		Use:   "del [key] [field...]",
		Short: "Deletes fields from a hash",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := client.Template.OpsForHash().Delete(ctx, args[0], args[1:]...)
			if err != nil {
				return err
			}
			printInt(n)
			return nil
		},
	}
	hkeysCmd = &cobra.Command{
		Use:   "keys [key]",
		Short: "Prints all fields of a hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := client.Template.OpsForHash().Keys(ctx, args[0])
			if err != nil {
				return err
			}
			printValues(keys)
			return nil
		},
	}
	hvalsCmd = &cobra.Command{
		Use:   "values [key]",
		Short: "Prints all values of a hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := client.Template.OpsForHash().Values(ctx, args[0])
			if err != nil {
				return err
			}
			printValues(values)
			return nil
		},
	}
	hentriesCmd = &cobra.Command{
		Use:   "entries [key]",
		Short: "Prints all field value pairs of a hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := client.Template.OpsForHash().Entries(ctx, args[0])
			if err != nil {
				return err
			}
			if entries == nil {
				fmt.Println("(nil)")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%q => %q\n", e.Key, e.Value)
			}
			return nil
		},
	}
	hlenCmd = &cobra.Command{
		Use:   "len [key]",
		Short: "Prints the number of fields of a hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := client.Template.OpsForHash().Size(ctx, args[0])
			if err != nil {
				return err
			}
			printInt(n)
			return nil
		},
	}
)

func init() {
	HashCommands.AddCommand(hputCmd, hgetCmd, hdelCmd, hkeysCmd, hvalsCmd, hentriesCmd, hlenCmd)
}
