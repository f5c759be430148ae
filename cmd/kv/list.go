package kv

import (
	"fmt"
	"strconv"

	"github.com/ValentinKolb/kvt/cmd/util"
	"github.com/spf13/cobra"
)

var (
	// ListCommands represents the list command group
	ListCommands = &cobra.Command{
		Use:   "list",
		Short: "Perform list operations",
	}

	lpushCmd = &cobra.Command{
		Use:   "lpush [key] [value...]",
		Short: "Prepends values to a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := client.Template.OpsForList().LeftPush(ctx, args[0], args[1:]...)
			if err != nil {
				return err
			}
			printInt(n)
			return nil
		},
	}
	rpushCmd = &cobra.Command{
		Use:   "rpush [key] [value...]",
		Short: "Appends values to a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := client.Template.OpsForList().RightPush(ctx, args[0], args[1:]...)
			if err != nil {
				return err
			}
			printInt(n)
			return nil
		},
	}
	lpopCmd = &cobra.Command{
		Use:   "lpop [key] [timeout]",
		Short: "Removes and prints the first element of a list, waiting up to timeout if given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops := client.Template.OpsForList()
			if len(args) == 1 {
				v, ok, err := ops.LeftPop(ctx, args[0])
				if err != nil {
					return err
				}
				printValue(v, ok)
				return nil
			}
			timeout, err := util.ParseTimeout(args[1])
			if err != nil {
				return err
			}
			v, ok, err := ops.BlockingLeftPop(ctx, args[0], timeout)
			if err != nil {
				return err
			}
			printValue(v, ok)
			return nil
		},
	}
	rpopCmd = &cobra.Command{
		Use:   "rpop [key] [timeout]",
		Short: "Removes and prints the last element of a list, waiting up to timeout if given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops := client.Template.OpsForList()
			if len(args) == 1 {
				v, ok, err := ops.RightPop(ctx, args[0])
				if err != nil {
					return err
				}
				printValue(v, ok)
				return nil
			}
			timeout, err := util.ParseTimeout(args[1])
			if err != nil {
				return err
			}
			v, ok, err := ops.BlockingRightPop(ctx, args[0], timeout)
			if err != nil {
				return err
			}
			printValue(v, ok)
			return nil
		},
	}
	lrangeCmd = &cobra.Command{
		Use:   "range [key] [start] [end]",
		Short: "Prints the elements between start and end (inclusive, negative indexes count from the end)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseRange(args[1], args[2])
			if err != nil {
				return err
			}
			values, err := client.Template.OpsForList().Range(ctx, args[0], start, end)
			if err != nil {
				return err
			}
			printValues(values)
			return nil
		},
	}
	llenCmd = &cobra.Command{
		Use:   "len [key]",
		Short: "Prints the length of a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := client.Template.OpsForList().Size(ctx, args[0])
			if err != nil {
				return err
			}
			printInt(n)
			return nil
		},
	}
	ltrimCmd = &cobra.Command{
		Use:   "trim [key] [start] [end]",
		Short: "Trims a list to the elements between start and end",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseRange(args[1], args[2])
			if err != nil {
				return err
			}
			if err := client.Template.OpsForList().Trim(ctx, args[0], start, end); err != nil {
				return err
			}
			fmt.Println("OK")
			return nil
		},
	}
	lindexCmd = &cobra.Command{
		Use:   "index [key] [index]",
		Short: "Prints the element at index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("index must be a number: %w", err)
			}
			v, ok, err := client.Template.OpsForList().Index(ctx, args[0], index)
			if err != nil {
				return err
			}
			printValue(v, ok)
			return nil
		},
	}
	lsetCmd = &cobra.Command{
		Use:   "set [key] [index] [value]",
		Short: "Replaces the element at index",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("index must be a number: %w", err)
			}
			if err := client.Template.OpsForList().Set(ctx, args[0], index, args[2]); err != nil {
				return err
			}
			fmt.Println("OK")
			return nil
		},
	}
	lremCmd = &cobra.Command{
		Use:   "rem [key] [count] [value]",
		Short: "Removes count occurrences of value (all if count is 0, from the tail if negative)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("count must be a number: %w", err)
			}
			n, err := client.Template.OpsForList().Remove(ctx, args[0], count, args[2])
			if err != nil {
				return err
			}
			printInt(n)
			return nil
		},
	}
)

func init() {
	ListCommands.AddCommand(lpushCmd, rpushCmd, lpopCmd, rpopCmd, lrangeCmd, llenCmd, ltrimCmd, lindexCmd, lsetCmd, lremCmd)
}

func parseRange(startArg, endArg string) (int64, int64, error) {
	start, err := strconv.ParseInt(startArg, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("start must be a number: %w", err)
	}
	end, err := strconv.ParseInt(endArg, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("end must be a number: %w", err)
	}
	return start, end, nil
}
