package kv

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	// SetCommands represents the set command group
	SetCommands = &cobra.Command{
		Use:   "set",
		Short: "Perform set operations",
	}

	saddCmd = &cobra.Command{
		Use:   "add [key] [member...]",
		Short: "Adds members to a set",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := client.Template.OpsForSet().Add(ctx, args[0], args[1:]...)
			if err != nil {
				return err
			}
			printInt(n)
			return nil
		},
	}
	sremCmd = &cobra.Command{
		Use:   "rem [key] [member...]",
		Short: "Removes members from a set",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := client.Template.OpsForSet().Remove(ctx, args[0], args[1:]...)
			if err != nil {
				return err
			}
			printInt(n)
			return nil
		},
	}
	smembersCmd = &cobra.Command{
		Use:   "members [key]",
		Short: "Prints all members of a set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := client.Template.OpsForSet().Members(ctx, args[0])
			if err != nil {
				return err
			}
			printValues(members)
			return nil
		},
	}
	sismemberCmd = &cobra.Command{
		Use:   "ismember [key] [member]",
		Short: "Checks if member is in the set",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := client.Template.OpsForSet().IsMember(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			printBool(ok)
			return nil
		},
	}
	sdiffCmd = &cobra.Command{
		Use:   "diff [key] [other...]",
		Short: "Prints the members of the first set that are in none of the others",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return combine(cmd, args, client.Template.OpsForSet().Difference, client.Template.OpsForSet().DifferenceAndStore)
		},
	}
	sinterCmd = &cobra.Command{
		Use:   "inter [key] [other...]",
		Short: "Prints the members present in all sets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return combine(cmd, args, client.Template.OpsForSet().Intersect, client.Template.OpsForSet().IntersectAndStore)
		},
	}
	sunionCmd = &cobra.Command{
		Use:   "union [key] [other...]",
		Short: "Prints the members present in any set",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return combine(cmd, args, client.Template.OpsForSet().Union, client.Template.OpsForSet().UnionAndStore)
		},
	}
	spopCmd = &cobra.Command{
		Use:   "pop [key]",
		Short: "Removes and prints a random member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok, err := client.Template.OpsForSet().Pop(ctx, args[0])
			if err != nil {
				return err
			}
			printValue(v, ok)
			return nil
		},
	}
	scardCmd = &cobra.Command{
		Use:   "card [key]",
		Short: "Prints the number of members of a set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := client.Template.OpsForSet().Size(ctx, args[0])
			if err != nil {
				return err
			}
			printInt(n)
			return nil
		},
	}
)

func init() {
	for _, c := range []*cobra.Command{sdiffCmd, sinterCmd, sunionCmd} {
		c.Flags().String("store", "", "Store the result at this key instead of printing it")
	}
	SetCommands.AddCommand(saddCmd, sremCmd, smembersCmd, sismemberCmd, sdiffCmd, sinterCmd, sunionCmd, spopCmd, scardCmd)
}

func combine(
	cmd *cobra.Command,
	args []string,
	op func(ctx context.Context, key string, others ...string) ([]string, error),
	store func(ctx context.Context, key string, others []string, dest string) (int64, error),
) error {
	dest, _ := cmd.Flags().GetString("store")
	if dest != "" {
		n, err := store(ctx, args[0], args[1:], dest)
		if err != nil {
			return err
		}
		printInt(n)
		return nil
	}
	members, err := op(ctx, args[0], args[1:]...)
	if err != nil {
		return err
	}
	printValues(members)
	return nil
}
