package kv

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	// ValueCommands represents the plain value command group
	ValueCommands = &cobra.Command{
		Use:   "value",
		Short: "Perform plain value operations",
	}

	vsetCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops := client.Template.OpsForValue()
			if nx, _ := cmd.Flags().GetBool("nx"); nx {
				ok, err := ops.SetIfAbsent(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				printBool(ok)
				return nil
			}
			if err := ops.Set(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("OK")
			return nil
		},
	}
	vgetCmd = &cobra.Command{
		Use:   "get [key...]",
		Short: "Reads the value of one or more keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops := client.Template.OpsForValue()
			if len(args) == 1 {
				v, ok, err := ops.Get(ctx, args[0])
				if err != nil {
					return err
				}
				printValue(v, ok)
				return nil
			}
			values, err := ops.MultiGet(ctx, args...)
			if err != nil {
				return err
			}
			printValues(values)
			return nil
		},
	}
	vincrCmd = &cobra.Command{
		Use:   "incr [key] [delta]",
		Short: "Increments the integer stored at key (requires --value-serializer string)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta := int64(1)
			if len(args) == 2 {
				var err error
				if delta, err = strconv.ParseInt(args[1], 10, 64); err != nil {
					return fmt.Errorf("delta must be a number: %w", err)
				}
			}
			n, err := client.Template.OpsForValue().Increment(ctx, args[0], delta)
			if err != nil {
				return err
			}
			printInt(n)
			return nil
		},
	}
)

func init() {
	vsetCmd.Flags().Bool("nx", false, "Only set the value if the key does not exist")
	ValueCommands.AddCommand(vsetCmd, vgetCmd, vincrCmd)
}
