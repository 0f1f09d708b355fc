// palctl drives the palette API from the terminal. It keeps the same
// client-side state a browser session would: cached palettes, the
// favorites set, the submitted business profile, the chat transcript,
// and a stable session id, all in a local store under --state-dir.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chromabiz/palette-api/internal/apiclient"
	"github.com/chromabiz/palette-api/internal/export"
	"github.com/chromabiz/palette-api/internal/palette"
	"github.com/chromabiz/palette-api/internal/statestore"
)

var (
	serverURL string
	stateDir  string

	genName        string
	genCategory    string
	genCountry     string
	genAgeGroups   []string
	genGender      string
	genValues      string
	genCompetitors string

	exportFormat string
	exportOut    string

	clearChatOnly bool
)

func main() {
	root := &cobra.Command{
		Use:           "palctl",
		Short:         "Command-line client for the ChromaBiz palette API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "base URL of the palette API")
	root.PersistentFlags().StringVar(&stateDir, "state-dir", defaultStateDir(), "directory for local client state")

	root.AddCommand(
		generateCmd(),
		chatCmd(),
		showCmd(),
		favoriteCmd(),
		exportCmd(),
		limitsCmd(),
		historyCmd(),
		clearCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func defaultServer() string {
	if v := os.Getenv("PALETTE_SERVER"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "chromabiz")
	}
	return ".chromabiz"
}

func openStore() (*statestore.Store, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return statestore.Open(stateDir)
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate palettes for a business profile",
		Long:  "Submit a business profile and cache the generated palettes locally.\n\nExample:\n  palctl generate --name \"Acme Corp\" --category Technology --country \"United States\" --ages 26-35 --gender All",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := palette.BusinessProfile{
				BusinessName:     genName,
				BusinessCategory: genCategory,
				TargetCountry:    genCountry,
				AgeGroups:        genAgeGroups,
				TargetGender:     genGender,
				BrandValues:      genValues,
				Competitors:      genCompetitors,
			}
			if missing := profile.Validate(); missing != nil {
				fields := make([]string, 0, len(missing))
				for f := range missing {
					fields = append(fields, strings.ReplaceAll(f, "_", "-"))
				}
				return fmt.Errorf("missing required flags: --%s", strings.Join(fields, ", --"))
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			resp, err := apiclient.New(serverURL).GeneratePalettes(cmd.Context(), profile)
			if err != nil {
				return err
			}

			if err := store.SavePalettes(resp.Palettes); err != nil {
				return err
			}
			if err := store.SaveBusinessInfo(profile); err != nil {
				return err
			}

			for _, p := range resp.Palettes {
				printPalette(p, nil)
			}
			fmt.Printf("Generations remaining today: %d\n", resp.RemainingGenerations)
			return nil
		},
	}
	cmd.Flags().StringVar(&genName, "name", "", "business name (required)")
	cmd.Flags().StringVar(&genCategory, "category", "", "business category (required)")
	cmd.Flags().StringVar(&genCountry, "country", "", "target country (required)")
	cmd.Flags().StringSliceVar(&genAgeGroups, "ages", nil, "target age groups, e.g. 18-25,26-35 (required)")
	cmd.Flags().StringVar(&genGender, "gender", "", "target gender (required)")
	cmd.Flags().StringVar(&genValues, "values", "", "brand values (optional)")
	cmd.Flags().StringVar(&genCompetitors, "competitors", "", "competitors (optional)")
	return cmd
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "Ask the color consultant to refine the cached palettes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			st, err := store.Load()
			if err != nil {
				return err
			}

			req := palette.ChatRequest{
				Message:   message,
				SessionID: st.SessionID,
				Context: palette.ChatContext{
					Palettes:     st.Palettes,
					BusinessInfo: st.BusinessInfo,
				},
			}
			resp, err := apiclient.New(serverURL).Chat(cmd.Context(), req)
			if err != nil {
				return err
			}

			if _, err := store.AppendChatMessage("user", message); err != nil {
				return err
			}
			if _, err := store.AppendChatMessage("assistant", resp.Response); err != nil {
				return err
			}

			fmt.Println(resp.Response)
			fmt.Printf("\nRevisions remaining today: %d\n", resp.RemainingRevisions)
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the cached palettes and favorites",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			st, err := store.Load()
			if err != nil {
				return err
			}
			if len(st.Palettes) == 0 {
				fmt.Println("No cached palettes. Run `palctl generate` first.")
				return nil
			}

			favorites := map[string]bool{}
			for _, id := range st.Favorites {
				favorites[id] = true
			}
			for _, p := range st.Palettes {
				printPalette(p, favorites)
			}
			if st.BusinessInfo != nil {
				fmt.Printf("Profile: %s (%s)\n", st.BusinessInfo.BusinessName, st.BusinessInfo.BusinessCategory)
			}
			return nil
		},
	}
}

func favoriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <palette-id>",
		Short: "Toggle a palette in the favorites set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			favorites, err := store.ToggleFavorite(args[0])
			if err != nil {
				return err
			}
			if len(favorites) == 0 {
				fmt.Println("No favorites.")
				return nil
			}
			fmt.Println("Favorites:")
			for _, id := range favorites {
				fmt.Printf("  %s\n", id)
			}
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <palette-id>",
		Short: "Export a cached palette as css, json, or png",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			st, err := store.Load()
			if err != nil {
				return err
			}
			p, ok := findPalette(st.Palettes, args[0])
			if !ok {
				return fmt.Errorf("no cached palette with id %q", args[0])
			}

			switch exportFormat {
			case "css":
				return writeExport([]byte(export.CSS(p)), exportOut)
			case "json":
				out, err := export.JSON(p)
				if err != nil {
					return err
				}
				return writeExport([]byte(out), exportOut)
			case "png":
				data, err := export.PNG(p)
				if err != nil {
					return err
				}
				out := exportOut
				if out == "" {
					out = sanitizeFilename(p.Name) + ".png"
				}
				return writeExport(data, out)
			default:
				return fmt.Errorf("unknown format %q (want css, json, or png)", exportFormat)
			}
		},
	}
	cmd.Flags().StringVarP(&exportFormat, "format", "f", "css", "export format: css|json|png")
	cmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (defaults to stdout for css/json)")
	return cmd
}

func limitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "limits",
		Short: "Show today's remaining generations and revisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := apiclient.New(serverURL).RateLimit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Generations remaining: %d\n", status.GenerationsRemaining)
			fmt.Printf("Revisions remaining:   %d\n", status.RevisionsRemaining)
			if reset, err := time.Parse(time.RFC3339, status.ResetTime); err == nil {
				fmt.Printf("Resets in:             %s (at %s)\n",
					time.Until(reset).Round(time.Minute), status.ResetTime)
			} else {
				fmt.Printf("Resets at:             %s\n", status.ResetTime)
			}
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the chat transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			history, err := store.ChatHistory()
			if err != nil {
				return err
			}
			if len(history) == 0 {
				fmt.Println("No chat history.")
				return nil
			}
			for _, msg := range history {
				fmt.Printf("[%s] %s: %s\n", msg.Timestamp.Local().Format("15:04"), msg.Role, msg.Content)
			}
			return nil
		},
	}
}

func clearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear local state (palettes, favorites, profile, chat, session)",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if clearChatOnly {
				if err := store.ClearChatHistory(); err != nil {
					return err
				}
				fmt.Println("Chat history cleared.")
				return nil
			}

			sessionID, err := store.ClearAll()
			if err != nil {
				return err
			}
			fmt.Printf("All state cleared. New session: %s\n", sessionID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearChatOnly, "chat", false, "clear only the chat transcript")
	return cmd
}

func findPalette(palettes []palette.Palette, id string) (palette.Palette, bool) {
	for _, p := range palettes {
		if p.ID == id {
			return p, true
		}
	}
	// Accept a unique prefix so users can paste the short form.
	var match palette.Palette
	count := 0
	for _, p := range palettes {
		if strings.HasPrefix(p.ID, id) {
			match = p
			count++
		}
	}
	if count == 1 {
		return match, true
	}
	return palette.Palette{}, false
}

func printPalette(p palette.Palette, favorites map[string]bool) {
	marker := ""
	if favorites[p.ID] {
		marker = " *"
	}
	fmt.Printf("%s%s  (%s)\n", p.Name, marker, p.ID)
	if p.Description != "" {
		fmt.Printf("  %s\n", p.Description)
	}
	for _, c := range p.Colors {
		fmt.Printf("  %s  %-20s %s\n", c.Hex, c.Name, c.Usage)
	}
	fmt.Println()
}

func writeExport(data []byte, out string) error {
	if out == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", out, len(data))
	return nil
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "palette"
	}
	return b.String()
}
