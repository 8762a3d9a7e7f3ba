package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goaltrack/goaltrack/internal/config"
	"github.com/goaltrack/goaltrack/internal/db"
	"github.com/goaltrack/goaltrack/internal/repository"
	"github.com/goaltrack/goaltrack/internal/service"
)

func BlogCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blog",
		Short: "Blog content commands",
	}

	cmd.AddCommand(blogImportCmd(cfg))
	return cmd
}

func blogImportCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "import [dir]",
		Short: "Import Markdown posts into the blog_posts table",
		Long:  "Upserts every *.md file in dir (default CONTENT_PATH/blog) keyed by slug.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := filepath.Join(cfg.ContentPath, "blog")
			if len(args) == 1 {
				dir = args[0]
			}

			database, err := db.Open(cmd.Context(), cfg.DBDriver, cfg.DBConnection)
			if err != nil {
				return err
			}
			defer database.Close()

			blog := service.NewBlogService(config.BlogSourceDatabase, nil, repository.NewBlogRepository(database))
			n, err := blog.ImportMarkdown(cmd.Context(), dir)
			if err != nil {
				return err
			}

			fmt.Printf("==> Imported %d posts from %s\n", n, dir)
			return nil
		},
	}
}
