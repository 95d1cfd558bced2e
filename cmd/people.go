package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"persondir/person"
)

var (
	addFields person.Fields

	listQuery string
	listSort  string
	listDesc  bool
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a person",
	Long: `Validate the given fields and append a new person to the directory.

Example:
  persondir add --first Ana --last Lee --email ana@x.com --phone 9876543210 --state MH --city Mumbai`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List people",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a person by id",
	Long: `Delete the person with the given id. Deleting an id that is not in the
directory succeeds without changing anything.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(addCmd, listCmd, deleteCmd)

	addCmd.Flags().StringVar(&addFields.FirstName, "first", "", "First name")
	addCmd.Flags().StringVar(&addFields.LastName, "last", "", "Last name")
	addCmd.Flags().StringVar(&addFields.Email, "email", "", "Email address")
	addCmd.Flags().StringVar(&addFields.Phone, "phone", "", "10 digit phone number")
	addCmd.Flags().StringVar(&addFields.State, "state", "", "State code, see the states command")
	addCmd.Flags().StringVar(&addFields.City, "city", "", "City of the state")

	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Only show people matching this text")
	listCmd.Flags().StringVarP(&listSort, "sort", "s", "", "Sort by name, email, city or state")
	listCmd.Flags().BoolVar(&listDesc, "desc", false, "Reverse the order")
}

func runAdd(cmd *cobra.Command, args []string) error {
	if err := person.Validate(addFields); err != nil {
		var verrs person.ValidationErrors
		if errors.As(err, &verrs) {
			for _, field := range verrs.Fields() {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", field, verrs[field])
			}
		}
		return err
	}

	a, err := openApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	t := a.dir.AddPerson(addFields)
	if err := t.Wait(ctx); err != nil {
		return fmt.Errorf("add %s: %w", t.Person.Name(), err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Person.ID)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	q := person.Query{Search: listQuery, Sort: person.SortKey(strings.ToLower(listSort)), Desc: listDesc}
	if !q.Sort.Valid() {
		return fmt.Errorf("unknown sort key %q", listSort)
	}

	a, err := openApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.dir.Initialize().Wait(ctx); err != nil {
		return err
	}
	people := q.Apply(a.dir.People())
	if len(people) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No people found")
		return nil
	}

	rows := make([][]string, 0, len(people))
	for _, p := range people {
		rows = append(rows, []string{p.ID, p.Name(), p.Email, p.Phone, p.Location()})
	}
	fmt.Fprintln(cmd.OutOrStdout(), newTable("ID", "NAME", "EMAIL", "PHONE", "LOCATION").Rows(rows...))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	t := a.dir.DeletePerson(args[0])
	if err := t.Wait(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d people left\n", len(t.People()))
	return nil
}

func newTable(headers ...string) *table.Table {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}
