package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smartlabel/smartlabel/internal/config"
	"github.com/smartlabel/smartlabel/internal/google"
	"github.com/smartlabel/smartlabel/internal/taxonomy"
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Authorize Gmail access and review the category taxonomy",
		Long: `Run the one-time Google OAuth authorization if no cached token
exists, then open the generated taxonomy in $EDITOR for review.

Edits to the taxonomy file take effect on the next labeling run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if !google.HasToken(cfg.TokenPath()) {
				if err := authorize(cmd, cfg); err != nil {
					return err
				}
			} else {
				fmt.Println("Google OAuth token found")
			}

			if !taxonomy.Exists(cfg.TaxonomyPath()) {
				fmt.Println(`No taxonomy yet; run "smartlabel analyze" to generate one.`)
				return nil
			}

			editor := defaultEditor()
			fmt.Printf("Opening %s in %s\n", cfg.TaxonomyPath(), editor)

			edit := exec.Command(editor, cfg.TaxonomyPath())
			edit.Stdin = os.Stdin
			edit.Stdout = os.Stdout
			edit.Stderr = os.Stderr
			if err := edit.Run(); err != nil {
				return fmt.Errorf("editor exited with error: %w", err)
			}

			// Surface schema-breaking edits immediately instead of on
			// the next labeling run.
			if _, err := taxonomy.Load(cfg.TaxonomyPath()); err != nil {
				return err
			}

			fmt.Println("Taxonomy updated")
			return nil
		},
	}
}

// authorize runs the out-of-band OAuth code flow on the terminal.
func authorize(cmd *cobra.Command, cfg *config.Config) error {
	url, err := google.GetAuthURL()
	if err != nil {
		return err
	}

	fmt.Println("Authorize Gmail access by visiting:")
	fmt.Printf("\n  %s\n\n", url)
	fmt.Print("Paste the authorization code here: ")

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("no authorization code provided")
	}

	if err := google.SaveToken(cmd.Context(), cfg.TokenPath(), code); err != nil {
		return err
	}

	fmt.Printf("Token saved to %s\n", cfg.TokenPath())
	return nil
}

func defaultEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if runtime.GOOS == "windows" {
		return "notepad"
	}
	return "vi"
}
