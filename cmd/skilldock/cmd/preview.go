package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/skilldock/skilldock/internal/core/bundle"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview [name]",
	Short: "Render bundled skills and agents in the terminal",
	Long: `Render the bundled content as formatted Markdown. Without an argument,
lists everything in the bundle; with a skill or agent name, renders that
unit in full.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, cleanup, err := loadBundle("")
		if err != nil {
			return err
		}
		defer cleanup()

		if len(args) == 0 {
			return renderMarkdown(bundleIndex(b))
		}
		return previewUnit(b, args[0])
	},
}

// bundleIndex builds the listing shown by a bare preview.
func bundleIndex(b *bundle.Bundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s %s\n\n## Skills\n\n", b.Name, b.Version)
	for _, s := range b.Skills {
		fmt.Fprintf(&sb, "- **%s** (%d file(s))\n", s.Name, len(s.Files))
	}
	sb.WriteString("\n## Agents\n\n")
	for _, a := range b.Agents {
		fmt.Fprintf(&sb, "- **%s**: %s\n", a.Name, a.Description)
	}
	return sb.String()
}

func previewUnit(b *bundle.Bundle, name string) error {
	if sk, ok := b.Skill(name); ok {
		data, err := os.ReadFile(filepath.Join(sk.Dir, "SKILL.md"))
		if err != nil {
			return fmt.Errorf("reading skill %s: %w", name, err)
		}
		return renderMarkdown(string(data))
	}
	for _, a := range b.Agents {
		if a.Name == name {
			doc := fmt.Sprintf("# %s\n\n> %s\n\n%s", a.Name, a.Description, a.Body)
			return renderMarkdown(doc)
		}
	}
	return fmt.Errorf("no skill or agent named %q in the bundle", name)
}

func renderMarkdown(md string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		// No usable terminal style; fall back to plain text.
		fmt.Print(md)
		return nil
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return nil
	}
	fmt.Print(out)
	return nil
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
