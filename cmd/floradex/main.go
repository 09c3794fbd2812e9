package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"floradex/internal/app"
	"floradex/internal/config"
	"floradex/internal/encryption"
	"floradex/internal/flora"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	confidenceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	careStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Login", "Identify").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation, flora.UUIDGenerator{})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// readPassword prompts for a password without echoing when stdin is a
// terminal, falling back to a plain line read otherwise (pipes, tests).
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var rootCmd = &cobra.Command{
	Use:   "floradex",
	Short: "Plant identification and collection client",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		baseURL, _ := cmd.Flags().GetString("base-url")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		installID := uuid.New().String()
		cfg := config.NewConfig(installID, defaults["base_dir"], baseURL)

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		// Generate the session-token key pair up front so the first login
		// can seal its token.
		sealer, err := encryption.NewTokenSealerFromConfig(cfg.Encryption)
		if err != nil {
			return fmt.Errorf("creating token sealer: %w", err)
		}
		if sealer != nil && !sealer.IsConfigured() {
			if err := sealer.Setup(); err != nil {
				return fmt.Errorf("generating session key pair: %w", err)
			}
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Install ID: %s\n", installID)
		fmt.Printf("Backend:    %s\n", baseURL)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Install ID:    %s\n", cfg.InstallID)
		fmt.Printf("Base Dir:      %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:       %s\n", cfg.LogDir)
		fmt.Printf("Backend:       %s\n", cfg.API.BaseURL)
		fmt.Printf("Session store: %s\n", cfg.Session.Type)
		fmt.Printf("Encryption:    %s\n", cfg.Encryption.Type)
		return nil
	},
}

// auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
}

var authLoginCmd = &cobra.Command{
	Use:   "login USERNAME",
	Short: "Log in and store a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Login")
		if err != nil {
			return err
		}
		defer a.Close()

		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		sess, err := a.Login(cmd.Context(), args[0], password)
		if err != nil {
			return userFacing(err)
		}

		fmt.Printf("Logged in as %s\n", sess.Username)
		return nil
	},
}

var authRegisterCmd = &cobra.Command{
	Use:   "register USERNAME",
	Short: "Create an account and store a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Register")
		if err != nil {
			return err
		}
		defer a.Close()

		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		sess, err := a.Register(cmd.Context(), args[0], password)
		if err != nil {
			return userFacing(err)
		}

		fmt.Printf("Account created, logged in as %s\n", sess.Username)
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Logout")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var authWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Whoami")
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.Session()
		if err != nil {
			return err
		}
		if sess == nil {
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Printf("%s (user id %s)\n", sess.Username, sess.UserID)
		return nil
	},
}

// identify command
var identifyCmd = &cobra.Command{
	Use:   "identify IMAGE",
	Short: "Identify a plant from an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		save, _ := cmd.Flags().GetBool("save")
		name, _ := cmd.Flags().GetString("name")

		a, err := newApp("Identify")
		if err != nil {
			return err
		}
		defer a.Close()

		result, img, err := a.Identify(cmd.Context(), args[0])
		if err != nil {
			return userFacing(err)
		}

		printResult(result)

		if !save {
			return a.Discard()
		}

		plant, err := a.SaveResult(cmd.Context(), result, img, name)
		if err != nil {
			return userFacing(err)
		}
		fmt.Printf("\nSaved to collection as %s (%s)\n", plant.Name, idStyle.Render(plant.ID))
		return nil
	},
}

// collection command
var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage your plant collection",
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved plants",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListCollection")
		if err != nil {
			return err
		}
		defer a.Close()

		plants, err := a.ListCollection(cmd.Context())
		if err != nil {
			return userFacing(err)
		}

		if len(plants) == 0 {
			fmt.Println("No plants saved yet.")
			return nil
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("Collection (%d)", len(plants))))
		for _, p := range plants {
			fmt.Printf("%s  %s  %s  %s\n",
				idStyle.Render(p.ID),
				titleStyle.Render(p.Name),
				confidenceStyle.Render(fmt.Sprintf("%.0f%%", p.Confidence*100)),
				dateStyle.Render(p.DateAdded.Format("2006-01-02")),
			)
		}
		return nil
	},
}

var collectionSaveCmd = &cobra.Command{
	Use:   "save IMAGE",
	Short: "Identify a plant and save it to the collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")

		a, err := newApp("SaveToCollection")
		if err != nil {
			return err
		}
		defer a.Close()

		result, img, err := a.Identify(cmd.Context(), args[0])
		if err != nil {
			return userFacing(err)
		}

		printResult(result)

		plant, err := a.SaveResult(cmd.Context(), result, img, name)
		if err != nil {
			return userFacing(err)
		}
		fmt.Printf("\nSaved to collection as %s (%s)\n", plant.Name, idStyle.Render(plant.ID))
		return nil
	},
}

var collectionRemoveCmd = &cobra.Command{
	Use:   "remove PLANT_ID",
	Short: "Remove a plant from the collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RemovePlant")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RemovePlant(cmd.Context(), args[0]); err != nil {
			return userFacing(err)
		}
		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}

// account command
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage your account",
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete your account and clear the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("account deletion is permanent; re-run with --yes to confirm")
		}

		a, err := newApp("DeleteAccount")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteAccount(cmd.Context()); err != nil {
			return userFacing(err)
		}
		fmt.Println("Account deleted.")
		return nil
	},
}

// printResult renders an identification result with its predictions and any
// care info.
func printResult(result *flora.IdentificationResult) {
	fmt.Printf("%s %s\n",
		titleStyle.Render(result.PrimaryType),
		confidenceStyle.Render(fmt.Sprintf("%.0f%%", result.Confidence*100)),
	)

	if len(result.Predictions) > 1 {
		fmt.Println(headerStyle.Render("Other candidates"))
		for _, p := range result.Predictions[1:] {
			fmt.Printf("  %s  %.0f%%\n", p.Type, p.Confidence*100)
		}
	}

	if c := result.CareInfo; c != nil {
		fmt.Println(headerStyle.Render("Care"))
		for _, line := range []struct{ label, text string }{
			{"Watering", c.Watering},
			{"Sunlight", c.Sunlight},
			{"Humidity", c.Humidity},
			{"Temperature", c.Temperature},
			{"Fertilization", c.Fertilization},
			{"Notes", c.Instructions},
		} {
			if line.text != "" {
				fmt.Printf("  %s %s\n", careStyle.Render(line.label+":"), line.text)
			}
		}
	}
}

// userFacing maps orchestration errors to the messages the user should see:
// fetches get a retry hint, everything else is a one-shot message the user
// re-triggers manually.
func userFacing(err error) error {
	var fetchErr *flora.FetchError
	if errors.As(err, &fetchErr) {
		return fmt.Errorf("%s (check your connection and run the command again)",
			errorStyle.Render(fetchErr.Error()))
	}

	var notAuth *flora.NotAuthenticatedError
	if errors.As(err, &notAuth) {
		return fmt.Errorf("not logged in; run `floradex auth login` first")
	}

	var identErr *flora.IdentificationError
	if errors.As(err, &identErr) {
		return fmt.Errorf("%s", errorStyle.Render(identErr.Error()))
	}

	return err
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().String("base-url", "https://floradex.app", "Backend base URL")

	// auth subcommands
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authWhoamiCmd)

	// collection subcommands
	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionSaveCmd)
	collectionCmd.AddCommand(collectionRemoveCmd)
	collectionSaveCmd.Flags().String("name", "", "Name for the saved plant (defaults to the identified type)")

	// account subcommands
	accountCmd.AddCommand(accountDeleteCmd)
	accountDeleteCmd.Flags().Bool("yes", false, "Confirm account deletion")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(identifyCmd)
	identifyCmd.Flags().Bool("save", false, "Save the result to your collection")
	identifyCmd.Flags().String("name", "", "Name for the saved plant (defaults to the identified type)")
	rootCmd.AddCommand(collectionCmd)
	rootCmd.AddCommand(accountCmd)
}
