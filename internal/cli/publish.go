package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wavetree-cli/internal/publish"
)

func newPublishCmd(app *App) *cobra.Command {
	var toDir string
	var title string
	var all bool
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Render the tree as Markdown (stdout, or pages under --to)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			toDir = strings.TrimSpace(toDir)
			if toDir == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), publish.RenderIndexMarkdown(sess, publish.RenderOptions{
					Title:         title,
					IncludeFolded: all,
				}))
				return err
			}
			res, err := publish.WriteSession(sess, toDir, publish.WriteOptions{
				Title:         title,
				IncludeFolded: all,
				Overwrite:     overwrite,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	cmd.Flags().StringVar(&toDir, "to", "", "Write index.md and item pages into this directory")
	cmd.Flags().StringVar(&title, "title", "", "Index page title")
	cmd.Flags().BoolVar(&all, "all", false, "Include items hidden inside folded groups")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files")

	cmd.AddCommand(&cobra.Command{
		Use:   "item <ref>",
		Short: "Render one item and its children as Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			_, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			md, err := publish.RenderItemMarkdown(sess, ref)
			if err != nil {
				return writeErr(cmd, err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), md)
			return err
		},
	})
	return cmd
}
