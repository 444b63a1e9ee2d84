package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/autopneuma/pneuma/internal/content"
	"github.com/autopneuma/pneuma/internal/domain"
)

// The commands in this file work on the local database directly.

func postCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Read community discussions",
	}

	var category string
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List approved posts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.store.Close()

			posts, err := b.community.ListPosts(cmd.Context(), category, limit, 0)
			if err != nil {
				return err
			}
			if len(posts) == 0 {
				fmt.Println("No posts found")
				return nil
			}
			for _, p := range posts {
				fmt.Printf("%s  [%s] %s\n", p.ID[:8], p.CategoryID, content.Truncate(p.Title, 60))
			}
			return nil
		},
	}
	list.Flags().StringVarP(&category, "category", "c", "", "filter by category")
	list.Flags().IntVarP(&limit, "limit", "n", 20, "max posts")

	show := &cobra.Command{
		Use:   "show [post-id]",
		Short: "Show a post with its comments and related posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.store.Close()

			thread, err := b.community.GetPost(cmd.Context(), "", args[0])
			if err != nil {
				return err
			}
			p := thread.Post
			fmt.Printf("%s\n%s\n\n%s\n", p.Title, strings.Repeat("-", len(p.Title)), p.Content)
			if len(p.Tags) > 0 {
				fmt.Printf("\nTags: %s\n", strings.Join(p.Tags, ", "))
			}
			fmt.Printf("\n%d comments\n", len(thread.Comments))
			for _, c := range thread.Comments {
				indent := "  "
				if c.ParentID != nil {
					indent = "    "
				}
				fmt.Printf("%s%s\n", indent, content.Truncate(c.Content, 80))
			}

			related, err := b.community.RelatedPosts(cmd.Context(), p.ID)
			if err != nil {
				return err
			}
			if len(related) > 0 {
				fmt.Println("\nRelated:")
				for _, r := range related {
					fmt.Printf("  %s  %s\n", r.ID[:8], r.Title)
				}
			}
			return nil
		},
	}

	categories := &cobra.Command{
		Use:   "categories",
		Short: "List forum categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range domain.Categories {
				fmt.Printf("%-16s %s\n", c.ID, c.Name)
			}
			return nil
		},
	}

	cmd.AddCommand(list, show, categories)
	return cmd
}

func prayerCmd() *cobra.Command {
	var category string
	var limit int

	cmd := &cobra.Command{
		Use:   "prayer",
		Short: "List public prayer requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.store.Close()

			reqs, err := b.community.ListPrayerRequests(cmd.Context(), domain.PrayerCategory(category), limit, 0)
			if err != nil {
				return err
			}
			if len(reqs) == 0 {
				fmt.Println("No prayer requests found")
				return nil
			}
			for _, r := range reqs {
				fmt.Printf("%s  [%s] %s (%d praying)\n", r.ID[:8], r.Category, content.Truncate(r.Title, 60), r.PrayerCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "filter by category")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max requests")
	return cmd
}

func projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Browse and submit showcase projects",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List projects by stars",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.store.Close()

			projects, err := b.community.ListProjects(cmd.Context(), domain.ProjectStatus(status), 50, 0)
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Println("No projects found")
				return nil
			}
			for _, p := range projects {
				fmt.Printf("%-30s %-10s %3d stars  %s\n", p.Slug, p.Status, p.StarCount, content.Truncate(strings.Join(p.TechStack, ", "), 40))
			}
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", "", "filter by status")

	var file, creator string
	submit := &cobra.Command{
		Use:   "submit",
		Short: "Submit a project from a YAML description",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read project file: %w", err)
			}
			var in domain.NewProject
			if err := yaml.Unmarshal(data, &in); err != nil {
				return fmt.Errorf("parse project file: %w", err)
			}

			b, err := newBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.store.Close()

			project, err := b.community.SubmitProject(cmd.Context(), creator, in)
			if err != nil {
				return err
			}
			fmt.Printf("Submitted project: %s\n", project.Slug)
			return nil
		},
	}
	submit.Flags().StringVarP(&file, "file", "f", "", "project description (YAML)")
	submit.Flags().StringVar(&creator, "creator", "", "creator user id")
	submit.MarkFlagRequired("file")
	submit.MarkFlagRequired("creator")

	cmd.AddCommand(list, submit)
	return cmd
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administer members and review moderation flags",
	}

	promote := &cobra.Command{
		Use:   "set-role [user-id] [member|moderator|admin]",
		Short: "Change a member's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := domain.Role(args[1])
			switch role {
			case domain.RoleMember, domain.RoleModerator, domain.RoleAdmin:
			default:
				return fmt.Errorf("unknown role %q", args[1])
			}

			s, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.SetRole(cmd.Context(), args[0], role); err != nil {
				return err
			}
			fmt.Printf("%s is now %s\n", args[0], role)
			return nil
		},
	}

	metrics := &cobra.Command{
		Use:   "metrics",
		Short: "Show platform counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			m, err := s.Metrics(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(m)
		},
	}

	var flagStatus string
	flags := &cobra.Command{
		Use:   "flags",
		Short: "List AI moderation flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.ListModerationFlags(cmd.Context(), flagStatus, 50)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No flags")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s  %-15s %-20s %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.ContentType, e.Reason, e.ContentID)
			}
			return nil
		},
	}
	flags.Flags().StringVar(&flagStatus, "status", "pending", "flag status")

	approve := &cobra.Command{
		Use:   "approve-tool [tool-id] [approver-id]",
		Short: "Activate a tool awaiting approval",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.store.Close()

			tool, err := b.tools.Approve(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Approved %s (%s)\n", tool.ToolName, tool.Status)
			return nil
		},
	}

	cmd.AddCommand(promote, metrics, flags, approve)
	return cmd
}
