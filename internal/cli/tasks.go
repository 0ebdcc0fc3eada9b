package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"todo/internal/task"
)

func newListCmd(app *App) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print tasks with their index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(app)
			if err != nil {
				return err
			}
			defer s.close()

			out := cmd.OutOrStdout()
			if all {
				fmt.Fprint(out, s.store.TasksIntoString())
				return nil
			}
			for _, i := range s.store.Visible(s.cfg.ShowCompleted) {
				t, err := s.store.Task(i)
				if err != nil {
					return err
				}
				line := fmt.Sprintf("%d %s %s", i, task.Checkbox(t.Completed), t.Description)
				if t.Body != "" {
					line += " - " + t.Body
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include completed tasks, in the plain list format")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	var body string
	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Append a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := task.New(0, args[0], body)
			if err != nil {
				return err
			}
			s, err := openSession(app)
			if err != nil {
				return err
			}
			defer s.close()

			idx, err := s.store.Add(t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d\n", idx)
			return nil
		},
	}
	cmd.Flags().StringVar(&body, "body", "", "Free-text body")
	return cmd
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <index>",
		Short: "Toggle a task's completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIndex(app, args[0], func(s *session, i int) error {
				if err := s.store.ToggleCompleted(i); err != nil {
					return err
				}
				t, _ := s.store.Task(i)
				fmt.Fprintf(cmd.OutOrStdout(), "%d %s %s\n", i, task.Checkbox(t.Completed), t.Description)
				return nil
			})
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	var description, body string
	cmd := &cobra.Command{
		Use:   "edit <index>",
		Short: "Replace a task's description and/or body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			descSet := cmd.Flags().Changed("description")
			bodySet := cmd.Flags().Changed("body")
			if !descSet && !bodySet {
				return errors.New("nothing to change: pass --description and/or --body")
			}
			return withIndex(app, args[0], func(s *session, i int) error {
				if descSet {
					if err := s.store.SetDescription(i, description); err != nil {
						return err
					}
				}
				if bodySet {
					if err := s.store.SetBody(i, body); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&body, "body", "", "New body")
	return cmd
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <index>",
		Aliases: []string{"remove"},
		Short:   "Remove a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIndex(app, args[0], func(s *session, i int) error {
				return s.store.Remove(i)
			})
		},
	}
}

func newClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(app)
			if err != nil {
				return err
			}
			defer s.close()
			return s.store.Clear()
		},
	}
}

func withIndex(app *App, arg string, fn func(*session, int) error) error {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid index %q: %w", arg, err)
	}
	s, err := openSession(app)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(s, i)
}
