package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/auditlog"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/work"
)

// dispatch loads the board, applies actions in order and commits.
func dispatch(ctx context.Context, a *app, actions ...work.Action) (string, error) {
	board, err := work.Load(ctx, a.store, a.company, a.log)
	if err != nil {
		return "", err
	}
	var id string
	for _, act := range actions {
		if id, err = board.Dispatch(act); err != nil {
			return "", err
		}
	}
	if err := board.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func newTaskCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Track back-office tasks",
	}
	cmd.AddCommand(
		newTaskAddCommand(opts),
		newTaskMoveCommand(opts),
		newTaskAssignCommand(opts),
		newTaskLinkCommand(opts),
		newTaskListCommand(opts),
	)
	return cmd
}

func newTaskAddCommand(opts *rootOptions) *cobra.Command {
	var assignee, due string
	var docs []string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task to the todo column",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			dueDate, err := parseDay("due", due)
			if err != nil {
				return err
			}
			title := strings.Join(args, " ")
			id, err := dispatch(ctx, a, work.AddTask{Title: title, Assignee: assignee, DueDate: dueDate, DocumentIDs: docs})
			if err != nil {
				return err
			}
			a.record(auditlog.ActionWork, "added task "+title, id)
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %s\n", id)
			return nil
		}),
	}
	cmd.Flags().StringVar(&assignee, "assignee", "", "who owns the task")
	cmd.Flags().StringVar(&due, "due", "", "due date YYYY-MM-DD")
	cmd.Flags().StringSliceVar(&docs, "doc", nil, "linked document IDs")
	return cmd
}

func newTaskMoveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> <todo|in-progress|done>",
		Short: "Move a task to another column",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			status := model.TaskStatus(args[1])
			if _, err := dispatch(ctx, a, work.MoveTask{TaskID: args[0], Status: status}); err != nil {
				return err
			}
			a.record(auditlog.ActionWork, "moved task to "+string(status), args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", args[0], status)
			return nil
		}),
	}
}

func newTaskAssignCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <task-id> [assignee]",
		Short: "Assign a task, or clear the assignee",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			assignee := ""
			if len(args) == 2 {
				assignee = args[1]
			}
			if _, err := dispatch(ctx, a, work.AssignTask{TaskID: args[0], Assignee: assignee}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Assigned %s to %q\n", args[0], assignee)
			return nil
		}),
	}
}

func newTaskLinkCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "link <task-id> <document-id>",
		Short: "Link a document to a task",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			if _, err := dispatch(ctx, a, work.LinkDocument{TaskID: args[0], DocumentID: args[1]}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Linked %s to %s\n", args[1], args[0])
			return nil
		}),
	}
}

func newTaskListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the board by column",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			board, err := work.Load(ctx, a.store, a.company, a.log)
			if err != nil {
				return err
			}
			snap := board.Snapshot()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, status := range []model.TaskStatus{model.TaskTodo, model.TaskInProgress, model.TaskDone} {
				tasks := snap.TasksByStatus(status)
				fmt.Fprintf(tw, "%s (%d)\t\t\t\t\n", strings.ToUpper(string(status)), len(tasks))
				for _, t := range tasks {
					due := ""
					if !t.DueDate.IsZero() {
						due = "due " + t.DueDate.Format(model.DateFormat)
					}
					waiting := ""
					if pending := snap.Outstanding(t); len(pending) > 0 {
						waiting = fmt.Sprintf("waiting on %d document(s)", len(pending))
					}
					fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Assignee, due, waiting)
				}
			}
			return tw.Flush()
		}),
	}
}

func newDocumentCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "document",
		Short: "Track paperwork",
	}
	cmd.AddCommand(newDocumentAddCommand(opts), newDocumentFileCommand(opts), newDocumentListCommand(opts))
	return cmd
}

func newDocumentAddCommand(opts *rootOptions) *cobra.Command {
	var kind, task string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Start tracking a document as pending",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			name := strings.Join(args, " ")
			board, err := work.Load(ctx, a.store, a.company, a.log)
			if err != nil {
				return err
			}
			id, err := board.Dispatch(work.AddDocument{Name: name, Kind: kind})
			if err != nil {
				return err
			}
			if task != "" {
				if _, err := board.Dispatch(work.LinkDocument{TaskID: task, DocumentID: id}); err != nil {
					return err
				}
			}
			if err := board.Commit(ctx); err != nil {
				return err
			}
			a.record(auditlog.ActionWork, "added document "+name, id)
			fmt.Fprintf(cmd.OutOrStdout(), "Added document %s\n", id)
			return nil
		}),
	}
	cmd.Flags().StringVar(&kind, "kind", "", "document kind (w9, i9, receipt, ...)")
	cmd.Flags().StringVar(&task, "task", "", "link the new document to this task")
	return cmd
}

func newDocumentFileCommand(opts *rootOptions) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "file <document-id>",
		Short: "Mark a document received or filed",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			st := model.DocumentStatus(status)
			if _, err := dispatch(ctx, a, work.FileDocument{DocumentID: args[0], Status: st}); err != nil {
				return err
			}
			a.record(auditlog.ActionWork, "document marked "+string(st), args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], st)
			return nil
		}),
	}
	cmd.Flags().StringVar(&status, "status", string(model.DocumentFiled), "pending, received or filed")
	return cmd
}

func newDocumentListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked documents",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			docs, err := a.store.ListDocuments(ctx, a.company)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tKIND\tSTATUS\tUPDATED")
			for _, d := range docs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Kind, d.Status, d.UpdatedAt.Format(model.DateFormat))
			}
			return tw.Flush()
		}),
	}
}
