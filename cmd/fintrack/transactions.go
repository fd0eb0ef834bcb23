package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/session"
)

var (
	searchFlag   string
	typeFlag     string
	categoryFlag string
	sortFlag     string

	amountFlag      string
	dateFlag        string
	descriptionFlag string
)

func init() {
	listCmd.Flags().StringVar(&searchFlag, "search", "", "free-text search")
	listCmd.Flags().StringVar(&typeFlag, "type", "", "income or expense")
	listCmd.Flags().StringVar(&categoryFlag, "category", "", "exact category")
	listCmd.Flags().StringVar(&sortFlag, "sort", "ignore", "ignore, ascAmount or descAmount")

	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().StringVar(&typeFlag, "type", "", "income or expense")
		c.Flags().StringVar(&amountFlag, "amount", "", "amount, e.g. 12.50")
		c.Flags().StringVar(&categoryFlag, "category", "", "category name")
		c.Flags().StringVar(&dateFlag, "date", "", "date as YYYY-MM-DD")
		c.Flags().StringVar(&descriptionFlag, "description", "", "free-form note")
	}
	addCmd.MarkFlagRequired("type")
	addCmd.MarkFlagRequired("amount")
	addCmd.MarkFlagRequired("category")
	addCmd.MarkFlagRequired("date")

	rootCmd.AddCommand(listCmd, addCmd, editCmd, removeCmd, statsCmd, categoriesCmd, themeCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		order := core.SortOrder(sortFlag)
		if err := order.Validate(); err != nil {
			return err
		}
		if err := application.Store.Sort(cmd.Context(), order); err != nil {
			return err
		}

		f := core.Filter{
			Search:   searchFlag,
			Kind:     core.Kind(typeFlag),
			Category: categoryFlag,
		}
		if typeFlag != "" {
			if err := f.Kind.Validate(); err != nil {
				return err
			}
		}

		view := application.Store.View(f, order)
		if len(view) == 0 {
			fmt.Println("No transactions")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tTYPE\tAMOUNT\tCATEGORY\tDESCRIPTION")
		for _, t := range view {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				t.ID, t.Date, t.Kind, t.Amount.StringFixed(2), t.Category, t.Description)
		}
		return w.Flush()
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		d, err := draftFromFlags(core.Draft{})
		if err != nil {
			return err
		}
		created, err := application.Store.Add(cmd.Context(), d)
		if err != nil {
			return err
		}
		fmt.Printf("Added transaction %d\n", created.ID)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change an existing transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid transaction id %q", args[0])
		}
		current, ok := application.Store.Find(id)
		if !ok {
			return fmt.Errorf("transaction %d not found", id)
		}
		d, err := draftFromFlags(current.Draft())
		if err != nil {
			return err
		}
		if _, err := application.Store.Update(cmd.Context(), id, d); err != nil {
			return err
		}
		fmt.Printf("Updated transaction %d\n", id)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>...",
	Short: "Delete transactions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		ids := make([]int64, len(args))
		for i, arg := range args {
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transaction id %q", arg)
			}
			ids[i] = id
		}
		if err := application.Store.Remove(cmd.Context(), ids); err != nil {
			return err
		}
		fmt.Printf("Removed %d transaction(s)\n", len(ids))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show income, expenses and balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		sum := application.Store.Summary()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(w, "Income\t%s\n", sum.Income.StringFixed(2))
		fmt.Fprintf(w, "Expenses\t%s\n", sum.Expenses.StringFixed(2))
		fmt.Fprintf(w, "Balance\t%s\n", sum.Balance.StringFixed(2))
		return w.Flush()
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List known categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		for _, c := range application.Store.Categories() {
			fmt.Println(c.Name)
		}
		return nil
	},
}

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Toggle between light and dark mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if application.Store.ToggleTheme(cmd.Context()) {
			fmt.Println("Dark mode on")
		} else {
			fmt.Println("Dark mode off")
		}
		return nil
	},
}

// draftFromFlags overlays the provided flags on top of base, so edit only
// changes what was passed and add starts from an empty draft.
func draftFromFlags(base core.Draft) (core.Draft, error) {
	d := base
	if typeFlag != "" {
		d.Kind = core.Kind(typeFlag)
	}
	if amountFlag != "" {
		amount, err := decimal.NewFromString(amountFlag)
		if err != nil {
			return core.Draft{}, fmt.Errorf("invalid amount %q", amountFlag)
		}
		d.Amount = amount
	}
	if categoryFlag != "" {
		d.Category = categoryFlag
	}
	if dateFlag != "" {
		d.Date = dateFlag
	}
	if descriptionFlag != "" {
		d.Description = descriptionFlag
	}
	return d, d.Validate()
}

func requireSession() error {
	if application.Session.State() == session.Unauthenticated {
		return errors.New("no active session: run 'fintrack login' or 'fintrack guest' first")
	}
	return nil
}
