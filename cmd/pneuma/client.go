package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/autopneuma/pneuma/internal/apiclient"
	"github.com/autopneuma/pneuma/internal/content"
	"github.com/autopneuma/pneuma/internal/contracts"
	"github.com/autopneuma/pneuma/internal/hooks"
	"github.com/autopneuma/pneuma/internal/scripture"
)

// The commands in this file talk to a running API server at server.api_url.

func newAPIClient() *apiclient.Client {
	return apiclient.New(cfg.Server.APIURL)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func moderateCmd() *cobra.Command {
	var contentType, contentID string

	cmd := &cobra.Command{
		Use:   "moderate [content]",
		Short: "Screen content with the moderation service",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mod := hooks.NewModeration(newAPIClient())
			resp := mod.Moderate(cmd.Context(), contracts.ModerationRequest{
				Content:     content.PlainText(strings.Join(args, " ")),
				ContentType: contracts.ContentType(contentType),
				ContentID:   contentID,
			})
			if msg, failed := mod.Err(); failed {
				return fmt.Errorf("moderation: %s", msg)
			}

			fmt.Printf("Recommendation: %s (score %.2f)\n", resp.Recommendation, resp.OverallScore)
			for _, f := range resp.Flags {
				fmt.Printf("  [%s] %s %.2f: %s\n", f.Severity, f.Category, f.Confidence, f.Explanation)
			}
			fmt.Println(resp.Reasoning)
			return nil
		},
	}

	cmd.Flags().StringVarP(&contentType, "type", "t", string(contracts.ContentPost), "content type (post, comment, prayer_request, project)")
	cmd.Flags().StringVar(&contentID, "id", "", "content id, logs flagged content for review")
	return cmd
}

func scriptureCmd() *cobra.Command {
	var extra, contentType, version string

	cmd := &cobra.Command{
		Use:   "scripture [query]",
		Short: "Ask the scripture assistant for biblical context",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lookup := hooks.NewScripture(newAPIClient())
			resp := lookup.GetContext(cmd.Context(), contracts.ScriptureContextRequest{
				Query:        strings.Join(args, " "),
				Context:      extra,
				ContentType:  contentType,
				BibleVersion: version,
			})
			if msg, failed := lookup.Err(); failed {
				return fmt.Errorf("scripture: %s", msg)
			}

			fmt.Println(resp.Summary)
			if len(resp.BiblicalPrinciples) > 0 {
				fmt.Println("\nPrinciples:")
				for _, p := range resp.BiblicalPrinciples {
					fmt.Printf("  - %s\n", p)
				}
			}
			fmt.Printf("\n%s\n", scripture.FormatReferenceList(resp.ScriptureReferences))
			if resp.PracticalApplication != "" {
				fmt.Printf("\nApplication: %s\n", resp.PracticalApplication)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&extra, "context", "", "additional context")
	cmd.Flags().StringVar(&contentType, "type", "", "context type (discussion, prayer_request, project, general)")
	cmd.Flags().StringVar(&version, "version", "", "bible version (default from server)")
	return cmd
}

func toolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Browse, register, and run community AI tools",
	}
	cmd.AddCommand(toolsListCmd(), toolsShowCmd(), toolsRegisterCmd(), toolsExecuteCmd())
	return cmd
}

func toolsListCmd() *cobra.Command {
	var params contracts.ToolListParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newAPIClient().ListTools(cmd.Context(), params)
			if err != nil {
				return err
			}
			if len(resp.Tools) == 0 {
				fmt.Println("No tools found")
				return nil
			}
			for _, t := range resp.Tools {
				fmt.Printf("%s  %-30s [%s] %d runs, %.0f%% success\n",
					t.ID[:8], content.Truncate(t.ToolName, 30), t.Category, t.TotalExecutions, t.SuccessRate*100)
			}
			fmt.Printf("\nPage %d, %d of %d tools\n", resp.Page, len(resp.Tools), resp.Total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&params.Category, "category", "c", "", "filter by category ("+strings.Join(contracts.ToolCategories, ", ")+")")
	cmd.Flags().StringVar(&params.Status, "status", "", "filter by status (default active)")
	cmd.Flags().IntVar(&params.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&params.PerPage, "per-page", 20, "tools per page")
	return cmd
}

func toolsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [tool-id]",
		Short: "Show a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool, err := newAPIClient().GetTool(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(tool)
		},
	}
}

func toolsRegisterCmd() *cobra.Command {
	var file, creator string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a tool from a YAML description",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read tool file: %w", err)
			}
			var reg contracts.ToolRegistration
			if err := yaml.Unmarshal(data, &reg); err != nil {
				return fmt.Errorf("parse tool file: %w", err)
			}

			tool, err := newAPIClient().RegisterTool(cmd.Context(), reg, creator)
			if err != nil {
				return err
			}
			fmt.Printf("Registered tool %s (%s)\n", tool.ID, tool.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "tool description (YAML)")
	cmd.Flags().StringVar(&creator, "creator", "", "creator user id")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("creator")
	return cmd
}

func toolsExecuteCmd() *cobra.Command {
	var input, user string

	cmd := &cobra.Command{
		Use:   "execute [tool-id]",
		Short: "Run a tool with JSON input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := map[string]any{}
			if input != "" {
				if err := json.Unmarshal([]byte(input), &data); err != nil {
					return fmt.Errorf("parse input: %w", err)
				}
			}

			run := hooks.NewCommunityTool(newAPIClient())
			resp := run.ExecuteTool(cmd.Context(), contracts.ToolExecutionRequest{
				ToolID:    args[0],
				InputData: data,
				UserID:    user,
			})
			if msg, failed := run.Err(); failed {
				return fmt.Errorf("execute: %s", msg)
			}
			if !resp.Success {
				return fmt.Errorf("tool failed: %s", *resp.ErrorMessage)
			}
			fmt.Printf("Completed in %.0fms\n", resp.ExecutionTimeMS)
			return printJSON(resp.OutputData)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input data as a JSON object")
	cmd.Flags().StringVar(&user, "user", "", "user id to run as")
	cmd.MarkFlagRequired("user")
	return cmd
}
