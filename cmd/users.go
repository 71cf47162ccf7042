package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/restkit/dummyjson"
	"github.com/s0up4200/restkit/filter"
)

var listOpts dummyjson.ListOptions

// usersCmd represents the users command
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Query users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users, optionally narrowed by a filter expression",
	Example: `  restkit users list --limit 10
  restkit users list -f 'age > 40 && role == "admin"'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := client.Users.List(cmd.Context(), listOptions())
		if err != nil {
			return err
		}
		return printFilteredUsers(cmd, page)
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		user, err := client.Users.Get(cmd.Context(), ids[0])
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(user)
		}
		return printUsers([]dummyjson.User{*user}, nil)
	},
}

var usersGetManyCmd = &cobra.Command{
	Use:     "get-many <id>...",
	Short:   "Fetch several users concurrently",
	Example: `  restkit users get-many 1 2 3,4`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		result, err := client.Users.GetMany(cmd.Context(), ids)
		if err != nil {
			return err
		}

		users := make([]dummyjson.User, 0, len(result.Found))
		for _, u := range result.Found {
			users = append(users, *u)
		}
		if err := printUsers(users, nil); err != nil {
			return err
		}
		for _, failed := range result.Failed {
			fmt.Printf("✗ %v\n", failed)
		}
		return nil
	},
}

var usersSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search users by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := client.Users.Search(cmd.Context(), strings.Join(args, " "), listOptions())
		if err != nil {
			return err
		}
		return printFilteredUsers(cmd, page)
	},
}

var usersFilterCmd = &cobra.Command{
	Use:     "filter <key> <value>",
	Short:   "List users whose field key equals value, evaluated by the server",
	Example: `  restkit users filter hair.color Brown`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := client.Users.Filter(cmd.Context(), args[0], args[1], listOptions())
		if err != nil {
			return err
		}
		return printFilteredUsers(cmd, page)
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd, usersGetCmd, usersGetManyCmd, usersSearchCmd, usersFilterCmd)

	for _, c := range []*cobra.Command{usersListCmd, usersSearchCmd, usersFilterCmd} {
		addListFlags(c)
		addFilterFlags(c)
	}
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&listOpts.Limit, "limit", dummyjson.DefaultLimit, "page size, 0 returns every item")
	cmd.Flags().IntVar(&listOpts.Skip, "skip", 0, "number of items to skip")
	cmd.Flags().StringSliceVar(&listOpts.Select, "select", nil, "fields to return")
	cmd.Flags().StringVar(&listOpts.SortBy, "sort-by", "", "field to sort by")
	cmd.Flags().StringVar(&listOpts.Order, "order", "", "sort order (asc/desc)")
}

// listOptions returns the list flags, with --limit 0 requesting every item
func listOptions() *dummyjson.ListOptions {
	opts := listOpts
	opts.All = opts.Limit == 0
	return &opts
}

func printFilteredUsers(cmd *cobra.Command, page *dummyjson.UsersPage) error {
	f, err := getFilter()
	if err != nil {
		return err
	}

	if f == nil {
		return printUsers(page.Users, &page.Pagination)
	}

	logger.Info().Str("filter", f.Expression()).Int("users", len(page.Users)).Msg("Applying filter")
	users, err := filter.ApplyConcurrent(cmd.Context(), f, page.Users)
	if err != nil {
		return err
	}
	return printUsers(users, nil)
}
