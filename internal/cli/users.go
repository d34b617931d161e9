package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/martijn/clientbook/internal/core/repository"
)

const minPasswordLength = 8

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage API users",
	Long:  "Manage the accounts that may request tokens from the REST API",
}

// readNewPassword prompts twice and checks the entries match.
func readNewPassword(cmd *cobra.Command, prompt string) (string, error) {
	out := cmd.OutOrStdout()
	fd := int(os.Stdin.Fd())

	fmt.Fprintf(out, "%s: ", prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(out, "Confirm password: ")
	confirmPassword, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if string(password) != string(confirmPassword) {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return string(password), nil
}

var usersAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Add a new user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]

		services, err := initServices(cfg, logger)
		if err != nil {
			return err
		}
		defer services.Close()

		password, err := readNewPassword(cmd, "Enter password")
		if err != nil {
			return err
		}

		if _, err := services.AuthService.CreateUser(cmd.Context(), username, password); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fmt.Errorf("user already exists: %s", username)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "User '%s' created successfully\n", username)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]

		if !assumeYes && !confirm(cmd, fmt.Sprintf("Are you sure you want to delete user '%s'? (yes/no): ", username)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}

		services, err := initServices(cfg, logger)
		if err != nil {
			return err
		}
		defer services.Close()

		if err := services.AuthService.DeleteUser(cmd.Context(), username); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("user not found: %s", username)
			}
			return fmt.Errorf("failed to delete user: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "User '%s' deleted successfully\n", username)
		return nil
	},
}

var usersUpdatePasswordCmd = &cobra.Command{
	Use:   "update-password <username>",
	Short: "Update user password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]

		services, err := initServices(cfg, logger)
		if err != nil {
			return err
		}
		defer services.Close()

		password, err := readNewPassword(cmd, "Enter new password")
		if err != nil {
			return err
		}

		if err := services.AuthService.ChangePassword(cmd.Context(), username, password); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("user not found: %s", username)
			}
			return fmt.Errorf("failed to update user: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Password updated for user '%s'\n", username)
		return nil
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cfg, logger)
		if err != nil {
			return err
		}
		defer services.Close()

		users, err := services.AuthService.ListUsers(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		if len(users) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No users found")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "USERNAME\tCREATED AT\tUPDATED AT")
		for _, user := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				user.Username,
				user.CreatedAt.Format("2006-01-02 15:04:05"),
				user.UpdatedAt.Format("2006-01-02 15:04:05"),
			)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	usersCmd.AddCommand(usersUpdatePasswordCmd)
	usersCmd.AddCommand(usersListCmd)
}
