package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mission-desk/internal/client"
	"mission-desk/internal/domain"
)

func examCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exam",
		Short: "Show the assigned exam",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(ctx context.Context, rt *runtime) error {
				exam, err := client.NewMissionController(rt.api, rt.session).LoadAssignedExam(ctx)
				if err != nil {
					return err
				}
				if exam == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "No exam is assigned to this account.")
					return nil
				}
				return printJSON(cmd, exam)
			})
		},
	}
}

func answerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "answer",
		Short: "Submit the main answer and print its analysis",
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := answerText(cmd)
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, rt *runtime) error {
				mission := client.NewMissionController(rt.api, rt.session)
				exam, err := mission.LoadAssignedExam(ctx)
				if err != nil {
					return err
				}
				if exam == nil {
					return errors.New("no exam is assigned to this account")
				}
				analysis, submissionID, err := mission.SubmitAndAnalyze(ctx, exam.ID, text)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]interface{}{"submissionId": submissionID, "analysis": analysis})
			})
		},
	}
	cmd.Flags().StringP("text", "t", "", "Answer text")
	cmd.Flags().StringP("file", "f", "", "Read the answer from a file")
	return cmd
}

func answerText(cmd *cobra.Command) (string, error) {
	v := viperForCmd(cmd)
	if path := v.GetString("file"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return v.GetString("text"), nil
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show, save or analyse the action plan",
	}
	cmd.AddCommand(planShowCmd(), planSaveCmd(), planAnalyzeCmd())
	return cmd
}

func planShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the plan with task countdowns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			examID := viperForCmd(cmd).GetString("exam")
			return withSession(cmd, func(ctx context.Context, rt *runtime) error {
				plan, err := client.NewPlanManager(rt.api, rt.session, rt.loc).LoadPlan(ctx, examID)
				if err != nil {
					return err
				}
				if plan == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "No action plan yet.")
					return nil
				}
				printPlan(cmd, plan, time.Now())
				return nil
			})
		},
	}
	cmd.Flags().String("exam", "", "Exam ID")
	_ = cmd.MarkFlagRequired("exam")
	return cmd
}

func printPlan(cmd *cobra.Command, plan *domain.ActionPlan, now time.Time) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Plan %s (%d tasks)\n", plan.ID, len(plan.Tasks))
	for _, t := range plan.Tasks {
		left := "-"
		if cd, ok := client.TaskCountdown(t, now); ok {
			left = cd
		}
		fmt.Fprintf(out, "  %-26s %-5s %-9s %s\n", t.ID, t.Status, left, t.Title)
	}
}

func planSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Replace the plan's task list",
		Long:  "Each --task is \"title\" or \"title|due\" where due is 2006-01-02T15:04 or RFC 3339. Prefix \"id=\" keeps an existing task: \"id=01H...|title|due\".",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := viperForCmd(cmd)
			rows := parseRows(v.GetStringSlice("task"))
			return withSession(cmd, func(ctx context.Context, rt *runtime) error {
				plan, err := client.NewPlanManager(rt.api, rt.session, rt.loc).SavePlan(ctx, v.GetString("exam"), rows)
				if err != nil {
					return err
				}
				printPlan(cmd, plan, time.Now())
				return nil
			})
		},
	}
	cmd.Flags().String("exam", "", "Exam ID")
	cmd.Flags().StringArray("task", nil, "Task row (repeatable)")
	_ = cmd.MarkFlagRequired("exam")
	return cmd
}

func parseRows(specs []string) []client.DraftRow {
	rows := make([]client.DraftRow, 0, len(specs))
	for _, spec := range specs {
		var row client.DraftRow
		parts := strings.Split(spec, "|")
		if strings.HasPrefix(parts[0], "id=") {
			row.ID = strings.TrimPrefix(parts[0], "id=")
			parts = parts[1:]
		}
		if len(parts) > 0 {
			row.Title = parts[0]
		}
		if len(parts) > 1 {
			row.DueAt = parts[1]
		}
		rows = append(rows, row)
	}
	return rows
}

func planAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Upload a task report and print the analysed task",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := viperForCmd(cmd)
			var pdf []byte
			if path := v.GetString("pdf"); path != "" {
				b, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				pdf = b
			}
			return withSession(cmd, func(ctx context.Context, rt *runtime) error {
				task, err := client.NewPlanManager(rt.api, rt.session, rt.loc).
					AnalyzeTask(ctx, v.GetString("plan"), v.GetString("task"), v.GetString("report-text"), pdf)
				if err != nil {
					return err
				}
				return printJSON(cmd, task)
			})
		},
	}
	f := cmd.Flags()
	f.String("plan", "", "Plan ID")
	f.String("task", "", "Task ID")
	f.String("report-text", "", "What was done for the task")
	f.String("pdf", "", "Path of the PDF report")
	_ = cmd.MarkFlagRequired("plan")
	_ = cmd.MarkFlagRequired("task")
	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the final report, generating it on first view",
		RunE: func(cmd *cobra.Command, _ []string) error {
			examID := viperForCmd(cmd).GetString("exam")
			return withSession(cmd, func(ctx context.Context, rt *runtime) error {
				report, err := client.NewReportGenerator(rt.api, rt.session).GetOrGenerateFinalReport(ctx, examID)
				if err != nil {
					return err
				}
				return printJSON(cmd, report)
			})
		},
	}
	cmd.Flags().String("exam", "", "Exam ID")
	_ = cmd.MarkFlagRequired("exam")
	return cmd
}

func slotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slots",
		Short: "List finish slots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(ctx context.Context, rt *runtime) error {
				slots, err := rt.api.GetFinishSlots(ctx, rt.session)
				if err != nil {
					return err
				}
				return printJSON(cmd, slots)
			})
		},
	}
}
