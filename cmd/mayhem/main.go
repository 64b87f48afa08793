package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/modelmayhem/mayhem/internal/config"
	"github.com/modelmayhem/mayhem/internal/core"
	"github.com/modelmayhem/mayhem/internal/export"
	"github.com/modelmayhem/mayhem/internal/orchestrator"
	"github.com/modelmayhem/mayhem/internal/persona"
	"github.com/modelmayhem/mayhem/internal/prompt"
	"github.com/modelmayhem/mayhem/internal/storage"
	"github.com/modelmayhem/mayhem/internal/tui"
	"github.com/modelmayhem/mayhem/web/handlers"
)

var (
	dbPath    string
	cfgPath   string
	appConfig *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mayhem",
	Short: "Multi-agent AI chat chaos",
	Long: `mayhem pits a fixed roster of AI personas against each other.

Send one message and watch three models with clashing personalities pile
on, or start a continuous debate and let them argue until the turn cap.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgPath != "" {
			appConfig, err = config.LoadFrom(cfgPath)
		} else {
			appConfig, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: ~/.mayhem/mayhem.db)")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file path (default: ~/.mayhem/config.yaml)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(modesCmd)
	rootCmd.AddCommand(personasCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
}

func getStorage() (*storage.SQLiteStorage, error) {
	path := dbPath
	if path == "" {
		path = storage.DefaultDBPath()
	}

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(); err != nil {
		return nil, err
	}

	return store, nil
}

func getOrchestrator(store persona.Store) *orchestrator.Orchestrator {
	registry := appConfig.CreateRegistry()
	return orchestrator.New(registry, prompt.Composer{Store: store})
}

// ============================================================================
// ASK COMMAND
// ============================================================================

var (
	askModeFlag   string
	askFormatFlag string
	askOutputFlag string
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send one message through a full round-robin pass",
	Long: `Send a single message and print every persona's response.

Examples:
  mayhem ask "Is cereal a soup?"
  mayhem ask "Explain monads" --mode academic
  mayhem ask "Roast my code" --mode roast --format markdown --output roast.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args, " ")

		mode := core.Mode(askModeFlag)
		if !core.ValidMode(mode) {
			return fmt.Errorf("invalid mode %q, use one of: %s", askModeFlag, modeList())
		}

		store, err := getStorage()
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		orch := getOrchestrator(store)
		responses := orch.RunAgents(cmd.Context(), message, mode, nil)

		for _, r := range responses {
			fmt.Printf("\n%s:\n%s\n", r.AgentName, r.Text)
		}

		if askOutputFlag != "" {
			return writeAskExport(message, mode, responses)
		}
		return nil
	},
}

func writeAskExport(message string, mode core.Mode, responses []core.AgentResponse) error {
	exporter, err := export.GetExporter(export.Format(askFormatFlag))
	if err != nil {
		return err
	}

	now := time.Now()
	transcript := &export.Transcript{
		SessionID: core.GenerateID(),
		Mode:      mode,
		Prompt:    message,
		CreatedAt: now,
	}
	for i, r := range responses {
		transcript.Turns = append(transcript.Turns, core.Turn{
			ID:        core.GenerateID(),
			SessionID: transcript.SessionID,
			Index:     i,
			AgentName: r.AgentName,
			Content:   r.Text,
			CreatedAt: now,
		})
	}

	f, err := os.Create(askOutputFlag)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := exporter.Export(transcript, f); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Printf("\nWrote %s\n", askOutputFlag)
	return nil
}

func init() {
	askCmd.Flags().StringVarP(&askModeFlag, "mode", "m", "roast", "Chat mode")
	askCmd.Flags().StringVarP(&askFormatFlag, "format", "f", "markdown", "Export format (markdown, json, pdf)")
	askCmd.Flags().StringVarP(&askOutputFlag, "output", "o", "", "Write the pass to a file")
}

// ============================================================================
// CHAT COMMAND
// ============================================================================

var chatModeFlag string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive terminal chat",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := core.Mode(chatModeFlag)
		if !core.ValidMode(mode) {
			return fmt.Errorf("invalid mode %q, use one of: %s", chatModeFlag, modeList())
		}

		store, err := getStorage()
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		return tui.Run(getOrchestrator(store), mode)
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatModeFlag, "mode", "m", "roast", "Chat mode")
}

// ============================================================================
// MODES COMMAND
// ============================================================================

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List chat modes",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("\nAvailable modes:")
		fmt.Println(strings.Repeat("─", 40))
		for _, m := range core.Modes() {
			fmt.Printf("  %s\n", m)
		}
	},
}

func modeList() string {
	parts := make([]string, 0, len(core.Modes()))
	for _, m := range core.Modes() {
		parts = append(parts, string(m))
	}
	return strings.Join(parts, ", ")
}

// ============================================================================
// PERSONAS COMMAND
// ============================================================================

var personasCmd = &cobra.Command{
	Use:     "persona",
	Short:   "Manage agent personas",
	Aliases: []string{"personas"},
}

var personaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all personas",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("\nBuilt-in Personas:")
		fmt.Println(strings.Repeat("─", 60))
		for _, f := range persona.DefaultFragments() {
			fmt.Printf("\n%s (%s) [builtin]\n", f.Name, f.ID)
			fmt.Printf("  %s\n", f.Fragment)
		}

		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		customs, err := store.ListPersonas()
		if err != nil {
			return err
		}

		if len(customs) > 0 {
			fmt.Println("\nCustom Personas:")
			fmt.Println(strings.Repeat("─", 60))
			for _, f := range customs {
				fmt.Printf("\n%s (%s)\n", f.Name, f.ID)
				fmt.Printf("  %s\n", f.Fragment)
			}
		}

		return nil
	},
}

var personaShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show persona details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		if f := persona.GetFragment(id); f != nil {
			fmt.Printf("\nPersona: %s (%s) [builtin]\n", f.Name, f.ID)
			fmt.Println("\nCharacter Fragment:")
			fmt.Println(strings.Repeat("─", 40))
			fmt.Println(f.Fragment)
			return nil
		}

		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		f, err := store.GetPersona(id)
		if err != nil {
			return err
		}
		if f == nil {
			return fmt.Errorf("persona not found: %s", id)
		}

		fmt.Printf("\nPersona: %s (%s)\n", f.Name, f.ID)
		fmt.Println("\nCharacter Fragment:")
		fmt.Println(strings.Repeat("─", 40))
		fmt.Println(f.Fragment)
		return nil
	},
}

var personaCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new persona",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		name, _ := cmd.Flags().GetString("name")
		fragment, _ := cmd.Flags().GetString("fragment")

		if id == "" || name == "" || fragment == "" {
			return fmt.Errorf("--id, --name, and --fragment are required")
		}

		if persona.Valid(id) {
			return fmt.Errorf("cannot use ID '%s': conflicts with builtin persona", id)
		}

		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		f := &persona.StoredFragment{
			ID:       id,
			Name:     name,
			Fragment: fragment,
		}

		if err := store.SavePersona(f); err != nil {
			return err
		}

		fmt.Printf("Created persona: %s (%s)\n", name, id)
		return nil
	},
}

var personaDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a custom persona",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		if persona.Valid(id) {
			return fmt.Errorf("cannot delete builtin persona: %s", id)
		}

		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeletePersona(id); err != nil {
			return err
		}

		fmt.Printf("Deleted persona: %s\n", id)
		return nil
	},
}

func init() {
	personaCreateCmd.Flags().String("id", "", "Persona ID (required)")
	personaCreateCmd.Flags().String("name", "", "Persona name (required)")
	personaCreateCmd.Flags().String("fragment", "", "Character fragment (required)")

	personasCmd.AddCommand(personaListCmd)
	personasCmd.AddCommand(personaShowCmd)
	personasCmd.AddCommand(personaCreateCmd)
	personasCmd.AddCommand(personaDeleteCmd)
}

// ============================================================================
// CONFIG COMMAND
// ============================================================================

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Config file: %s\n\n", config.DefaultConfigPath())

		if appConfig != nil {
			fmt.Println("Current settings:")
			fmt.Printf("  Server port: %d\n", appConfig.Server.Port)
			fmt.Printf("  Debate wait: %s - %s\n", appConfig.Debate.MinWait, appConfig.Debate.MaxWait)
			fmt.Printf("  Debate max turns: %d\n", appConfig.Debate.MaxTurns)
			fmt.Println("\nModel keys:")
			for name, m := range appConfig.Models {
				status := "disabled"
				if m.Enabled {
					status = "enabled"
				}
				fmt.Printf("  %s: %s (%s)\n", name, status, m.Kind)
			}
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigPath()
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}

		if err := config.Default().SaveTo(path); err != nil {
			return err
		}

		fmt.Printf("Created config at: %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

// ============================================================================
// SERVE COMMAND
// ============================================================================

var (
	servePort  int
	serveDebug bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("port") && appConfig != nil && appConfig.Server.Port != 0 {
			servePort = appConfig.Server.Port
		}

		opts := &slog.HandlerOptions{Level: slog.LevelInfo}
		if serveDebug {
			opts.Level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, opts)))

		store, err := getStorage()
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		registry := appConfig.CreateRegistry()
		orch := orchestrator.New(registry, prompt.Composer{Store: store})
		h := handlers.New(orch, registry, store, appConfig.Debate)

		addr := fmt.Sprintf(":%d", servePort)
		server := &http.Server{
			Addr:    addr,
			Handler: h.Router(),
		}

		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			<-sigCh
			slog.Info("Shutting down...")
			server.Close()
		}()

		slog.Info("Starting mayhem server", "url", fmt.Sprintf("http://localhost%s", addr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8182, "Server port")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
}
