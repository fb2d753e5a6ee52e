// Package cmd provides CLI commands for the librarian bot.
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yourgamermom/japari-librarian/credentials"
)

// Auth command flags.
var (
	authClientID       string
	authClientSecret   string
	authUsername       string
	authPassword       string
	authNonInteractive bool
)

// AuthCmd represents the auth command group.
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage reddit app credentials",
	Long: `Manage the reddit script-app credentials the bot runs with.

The auth commands let you store, inspect, and clear the four credentials a
reddit script app needs: client id, client secret, account username, and
account password. Sensitive fields are stored encrypted in
~/.librarian/credentials.yaml.

Environment variables (LIBRARIAN_CLIENT_ID, LIBRARIAN_CLIENT_SECRET,
LIBRARIAN_USERNAME, LIBRARIAN_PASSWORD) take precedence over stored
credentials at run time.`,
}

// loginCmd stores the credentials.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store reddit app credentials",
	Long: `Store the reddit script-app credentials for the bot.

Examples:
  # Interactive login (prompts for all four fields, secrets hidden)
  librarian auth login

  # Non-interactive login with flags
  librarian auth login --client-id abc --client-secret xyz \
    --username japari_librarian --password hunter2

Notes:
  - The client secret and password are encrypted at rest
  - The encryption key lives in the system keyring, or in
    LIBRARIAN_ENCRYPTION_KEY for headless environments`,
	RunE: runLogin,
}

// logoutCmd clears stored credentials.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear stored credentials",
	Long: `Remove the stored reddit credentials from the local credential store.

Environment variables are not affected.

Examples:
  librarian auth logout`,
	RunE: runLogout,
}

// statusCmd shows credential status.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show credential status",
	Long: `Display which credentials are available and where they come from.

Shows:
  - Credential source (stored file or environment)
  - Masked credential values

Examples:
  librarian auth status`,
	RunE: runStatus,
}

func init() {
	loginCmd.Flags().StringVar(&authClientID, "client-id", "", "reddit app client id")
	loginCmd.Flags().StringVar(&authClientSecret, "client-secret", "", "reddit app client secret")
	loginCmd.Flags().StringVar(&authUsername, "username", "", "bot account username")
	loginCmd.Flags().StringVar(&authPassword, "password", "", "bot account password")
	loginCmd.Flags().BoolVar(&authNonInteractive, "non-interactive", false, "Fail instead of prompting for input")

	AuthCmd.AddCommand(loginCmd)
	AuthCmd.AddCommand(logoutCmd)
	AuthCmd.AddCommand(statusCmd)
}

// runLogin handles the login command.
func runLogin(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("initializing credential store: %w", err)
	}

	creds := &credentials.Credentials{
		ClientID:     authClientID,
		ClientSecret: authClientSecret,
		Username:     authUsername,
		Password:     authPassword,
	}

	// Prompt for whatever the flags did not provide.
	if !creds.Complete() {
		if authNonInteractive {
			return fmt.Errorf("missing credentials and --non-interactive flag set")
		}
		if err := promptForMissing(creds); err != nil {
			return fmt.Errorf("reading credentials: %w", err)
		}
	}

	if !creds.Complete() {
		return fmt.Errorf("all four credential fields are required")
	}

	if err := store.Save(creds); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}

	fmt.Println("Credentials stored.")
	printCredentials(creds)

	credPath, _ := credentials.CredentialsPath()
	fmt.Printf("\nCredentials stored in: %s\n", credPath)

	return nil
}

// promptForMissing interactively fills the empty credential fields.
// Secrets are read with hidden input when a terminal is available.
func promptForMissing(creds *credentials.Credentials) error {
	reader := bufio.NewReader(os.Stdin)

	if creds.ClientID == "" {
		value, err := promptPlain(reader, "Client ID: ")
		if err != nil {
			return err
		}
		creds.ClientID = value
	}

	if creds.ClientSecret == "" {
		value, err := promptHidden(reader, "Client Secret: ")
		if err != nil {
			return err
		}
		creds.ClientSecret = value
	}

	if creds.Username == "" {
		value, err := promptPlain(reader, "Username: ")
		if err != nil {
			return err
		}
		creds.Username = value
	}

	if creds.Password == "" {
		value, err := promptHidden(reader, "Password: ")
		if err != nil {
			return err
		}
		creds.Password = value
	}

	return nil
}

func promptPlain(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptHidden(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)

	value, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // Add newline after hidden input
	if err != nil {
		// Fall back to regular input if terminal not available.
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	return strings.TrimSpace(string(value)), nil
}

// runLogout handles the logout command.
func runLogout(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("initializing credential store: %w", err)
	}

	if !store.Exists() {
		fmt.Println("No stored credentials found.")
		return nil
	}

	if err := store.Delete(); err != nil {
		return fmt.Errorf("removing credentials: %w", err)
	}

	fmt.Println("Stored credentials have been removed.")

	// Warn about environment variables.
	if os.Getenv("LIBRARIAN_CLIENT_SECRET") != "" || os.Getenv("LIBRARIAN_PASSWORD") != "" {
		fmt.Println("\nNote: LIBRARIAN_* credential environment variables are still set.")
	}

	return nil
}

// runStatus handles the status command.
func runStatus(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("initializing credential store: %w", err)
	}

	envCreds := &credentials.Credentials{
		ClientID:     os.Getenv("LIBRARIAN_CLIENT_ID"),
		ClientSecret: os.Getenv("LIBRARIAN_CLIENT_SECRET"),
		Username:     os.Getenv("LIBRARIAN_USERNAME"),
		Password:     os.Getenv("LIBRARIAN_PASSWORD"),
	}

	if envCreds.Complete() {
		fmt.Println("Source: environment variables")
		printCredentials(envCreds)
		return nil
	}

	creds, err := store.Load()
	if err != nil {
		if err == credentials.ErrNoCredentials {
			fmt.Println("No credentials stored. Run 'librarian auth login' first.")
			return nil
		}
		return fmt.Errorf("loading credentials: %w", err)
	}

	fmt.Println("Source: stored file")
	printCredentials(creds)
	if !creds.LastUpdated.IsZero() {
		fmt.Printf("  Last updated: %s\n", creds.LastUpdated.Format("2006-01-02 15:04:05"))
	}
	if !creds.Complete() {
		fmt.Println("\nWarning: stored credentials are incomplete.")
	}

	return nil
}

func printCredentials(creds *credentials.Credentials) {
	fmt.Printf("  Client ID: %s\n", creds.ClientID)
	fmt.Printf("  Client Secret: %s\n", credentials.MaskCredential(creds.ClientSecret))
	fmt.Printf("  Username: %s\n", creds.Username)
	fmt.Printf("  Password: %s\n", credentials.MaskCredential(creds.Password))
}
