package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezcool/darslik/core/provider"
)

func (cli *commandLine) generateCourseCmd() *cobra.Command {
	var courseID string

	cmd := &cobra.Command{
		Use:   "generate-course",
		Short: "Generate the content and quiz of every lesson of a course that has materials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if courseID == "" {
				_ = cmd.Usage()
				return errHelp
			}
			rep, err := cli.courseGen.Generate(context.Background(), courseID, nil)
			if err != nil {
				return err
			}

			for _, res := range rep.Results {
				line := fmt.Sprintf("%-8s %s", res.Status, res.LessonTitle)
				switch {
				case res.Reason != "":
					line += " (" + res.Reason + ")"
				case res.Error != "":
					line += ": " + res.Error
				case res.QuizError != "":
					line += " (quiz: " + res.QuizError + ")"
				}
				fmt.Fprintln(cli.out, line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&courseID, "course", "", "the course ID")
	return cmd
}

func (cli *commandLine) testProviderCmd() *cobra.Command {
	var providerID string

	cmd := &cobra.Command{
		Use:   "test-provider",
		Short: "Send a short prompt through a saved AI provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if providerID == "" {
				_ = cmd.Usage()
				return errHelp
			}
			ctx := context.Background()
			p, err := cli.providerSvc.GetByID(ctx, providerID)
			if err != nil {
				return err
			}
			reply, err := cli.assistant.TestProvider(ctx, p.TeacherID, provider.TestRequest{ProviderID: p.ID})
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "%s (%s) answered: %s\n", p.Name, provider.Adapt(p).ModelID(), reply)
			return nil
		},
	}
	cmd.Flags().StringVar(&providerID, "provider", "", "the provider ID")
	return cmd
}
