package kv

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	// ZSetCommands represents the sorted set command group
	ZSetCommands = &cobra.Command{
		Use:   "zset",
		Short: "Perform sorted set operations",
	}

	zaddCmd = &cobra.Command{
		Use:   "add [key] [score] [member]",
		Short: "Adds a member with a score, or updates the score of an existing member",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := parseScore(args[1])
			if err != nil {
				return err
			}
			added, err := client.Template.OpsForZSet().Add(ctx, args[0], args[2], score)
			if err != nil {
				return err
			}
			printBool(added)
			return nil
		},
	}
	zrangeCmd = &cobra.Command{
		Use:   "range [key] [start] [end]",
		Short: "Prints the members between two ranks, lowest score first",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseRange(args[1], args[2])
			if err != nil {
				return err
			}
			ops := client.Template.OpsForZSet()
			if reverse, _ := cmd.Flags().GetBool("reverse"); reverse {
				values, err := ops.ReverseRange(ctx, args[0], start, end)
				if err != nil {
					return err
				}
				printValues(values)
				return nil
			}
			if withScores, _ := cmd.Flags().GetBool("withscores"); withScores {
				tuples, err := ops.RangeWithScores(ctx, args[0], start, end)
				if err != nil {
					return err
				}
				for i, t := range tuples {
					fmt.Printf("%d) %q %s\n", i+1, t.Value, strconv.FormatFloat(t.Score, 'g', -1, 64))
				}
				return nil
			}
			values, err := ops.Range(ctx, args[0], start, end)
			if err != nil {
				return err
			}
			printValues(values)
			return nil
		},
	}
	zrangeByScoreCmd = &cobra.Command{
		Use:   "rangebyscore [key] [min] [max]",
		Short: "Prints the members with a score between min and max (use -inf and +inf for open ranges)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			min, err := parseScore(args[1])
			if err != nil {
				return err
			}
			max, err := parseScore(args[2])
			if err != nil {
				return err
			}
			values, err := client.Template.OpsForZSet().RangeByScore(ctx, args[0], min, max)
			if err != nil {
				return err
			}
			printValues(values)
			return nil
		},
	}
	zscoreCmd = &cobra.Command{
		Use:   "score [key] [member]",
		Short: "Prints the score of a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, ok, err := client.Template.OpsForZSet().Score(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			printValue(strconv.FormatFloat(score, 'g', -1, 64), ok)
			return nil
		},
	}
	zrankCmd = &cobra.Command{
		Use:   "rank [key] [member]",
		Short: "Prints the rank of a member, lowest score first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops := client.Template.OpsForZSet()
			rank := ops.Rank
			if reverse, _ := cmd.Flags().GetBool("reverse"); reverse {
				rank = ops.ReverseRank
			}
			r, ok, err := rank(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("(nil)")
				return nil
			}
			printInt(r)
			return nil
		},
	}
	zremCmd = &cobra.Command{
		Use:   "rem [key] [member...]",
		Short: "Removes members from a sorted set",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := client.Template.OpsForZSet().Remove(ctx, args[0], args[1:]...)
			if err != nil {
				return err
			}
			printInt(n)
			return nil
		},
	}
	zcardCmd = &cobra.Command{
		Use:   "card [key]",
		Short: "Prints the number of members of a sorted set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := client.Template.OpsForZSet().Size(ctx, args[0])
			if err != nil {
				return err
			}
			printInt(n)
			return nil
		},
	}
)

func init() {
	zrangeCmd.Flags().Bool("reverse", false, "Order by highest score first")
	zrangeCmd.Flags().Bool("withscores", false, "Print the score of each member")
	zrankCmd.Flags().Bool("reverse", false, "Rank by highest score first")

	ZSetCommands.AddCommand(zaddCmd, zrangeCmd, zrangeByScoreCmd, zscoreCmd, zrankCmd, zremCmd, zcardCmd)
}

// parseScore parses a score, accepting -inf and +inf
func parseScore(s string) (float64, error) {
	score, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("score must be a number: %w", err)
	}
	return score, nil
}
