package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/martijn/clientbook/internal/bridge"
	"github.com/martijn/clientbook/internal/core/service"
)

// clientCommands is the command surface shared by the in-process service
// and the bridge client.
type clientCommands interface {
	CreateClient(ctx context.Context, in service.CreateClientInput) (service.ClientView, error)
	ListClients(ctx context.Context) ([]service.ClientView, error)
	GetClient(ctx context.Context, id string) (service.ClientView, error)
	FindClient(ctx context.Context, in service.FindClientInput) (service.ClientView, error)
	UpdateClient(ctx context.Context, id string, in service.UpdateClientInput) (service.ClientView, error)
	DeleteClient(ctx context.Context, id string) (string, error)
	ListSettings(ctx context.Context) ([]service.SettingView, error)
}

var (
	_ clientCommands = (*service.ClientService)(nil)
	_ clientCommands = (*bridge.Client)(nil)
)

var (
	useRemote  bool
	jsonOutput bool
)

const bridgeTimeout = 30 * time.Second

// withCommands runs fn against the bridge when --remote is set, and against
// a local store otherwise.
func withCommands(cmd *cobra.Command, fn func(ctx context.Context, c clientCommands) error) error {
	if useRemote {
		return fn(cmd.Context(), bridge.NewClient(cfg.SocketPath, bridgeTimeout))
	}

	services, err := initServices(cfg, logger)
	if err != nil {
		return err
	}
	defer services.Close()
	return fn(cmd.Context(), services.ClientService)
}

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage client records",
}

var (
	name      string
	taxID     string
	email     string
	phone     string
	address   string
	note      string
	assumeYes bool
)

// optional returns a pointer to value when the flag was set on cmd.
func optional(cmd *cobra.Command, flag, value string) *string {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	return &value
}

var clientsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCommands(cmd, func(ctx context.Context, c clientCommands) error {
			view, err := c.CreateClient(ctx, service.CreateClientInput{
				Name:    args[0],
				TaxID:   optional(cmd, "tax-id", taxID),
				Email:   optional(cmd, "email", email),
				Phone:   optional(cmd, "phone", phone),
				Address: optional(cmd, "address", address),
				Note:    optional(cmd, "note", note),
			})
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Client created successfully")
			fmt.Fprintf(cmd.OutOrStdout(), "Client ID: %s\n", view.ID)
			return nil
		})
	},
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all clients",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCommands(cmd, func(ctx context.Context, c clientCommands) error {
			views, err := c.ListClients(ctx)
			if err != nil {
				return fmt.Errorf("failed to list clients: %w", err)
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), views)
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No clients found")
				return nil
			}
			return writeClientTable(cmd.OutOrStdout(), views...)
		})
	},
}

var clientsGetCmd = &cobra.Command{
	Use:   "get <client-id>",
	Short: "Show one client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCommands(cmd, func(ctx context.Context, c clientCommands) error {
			view, err := c.GetClient(ctx, args[0])
			if err != nil {
				return err
			}
			return writeClient(cmd.OutOrStdout(), view)
		})
	},
}

var clientsFindCmd = &cobra.Command{
	Use:   "find",
	Short: "Find a client by tax ID or email",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if taxID == "" && email == "" {
			return fmt.Errorf("one of --tax-id or --email is required")
		}
		return withCommands(cmd, func(ctx context.Context, c clientCommands) error {
			view, err := c.FindClient(ctx, service.FindClientInput{TaxID: taxID, Email: email})
			if err != nil {
				return err
			}
			return writeClient(cmd.OutOrStdout(), view)
		})
	},
}

var clientsUpdateCmd = &cobra.Command{
	Use:   "update <client-id>",
	Short: "Update fields of a client",
	Long:  "Update the fields given as flags. Fields without a flag keep their value.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.UpdateClientInput{
			Name:    optional(cmd, "name", name),
			TaxID:   optional(cmd, "tax-id", taxID),
			Email:   optional(cmd, "email", email),
			Phone:   optional(cmd, "phone", phone),
			Address: optional(cmd, "address", address),
			Note:    optional(cmd, "note", note),
		}
		return withCommands(cmd, func(ctx context.Context, c clientCommands) error {
			view, err := c.UpdateClient(ctx, args[0], in)
			if err != nil {
				return fmt.Errorf("failed to update client: %w", err)
			}
			return writeClient(cmd.OutOrStdout(), view)
		})
	},
}

var clientsDeleteCmd = &cobra.Command{
	Use:   "delete <client-id>",
	Short: "Delete a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if !assumeYes && !confirm(cmd, fmt.Sprintf("Are you sure you want to delete client '%s'? (yes/no): ", id)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}
		return withCommands(cmd, func(ctx context.Context, c clientCommands) error {
			deleted, err := c.DeleteClient(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to delete client: %w", err)
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), bridge.DeleteResult{ID: deleted})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Client '%s' deleted successfully\n", deleted)
			return nil
		})
	},
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.TrimSpace(answer) == "yes"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeClient(w io.Writer, view service.ClientView) error {
	if jsonOutput {
		return writeJSON(w, view)
	}
	return writeClientTable(w, view)
}

func writeClientTable(out io.Writer, views ...service.ClientView) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTAX ID\tEMAIL\tPHONE\tCREATED AT")
	for _, v := range views {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.Name, orDash(v.TaxID), orDash(v.Email), orDash(v.Phone), v.CreatedAt)
	}
	return w.Flush()
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func init() {
	rootCmd.AddCommand(clientsCmd)
	clientsCmd.PersistentFlags().BoolVar(&useRemote, "remote", false, "send commands to a running 'clientbook serve' over its socket")
	clientsCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")

	for _, c := range []*cobra.Command{clientsAddCmd, clientsUpdateCmd} {
		c.Flags().StringVar(&taxID, "tax-id", "", "tax ID (CPF/CNPJ)")
		c.Flags().StringVar(&email, "email", "", "email address")
		c.Flags().StringVar(&phone, "phone", "", "phone number")
		c.Flags().StringVar(&address, "address", "", "postal address")
		c.Flags().StringVar(&note, "note", "", "free-form note")
	}
	clientsUpdateCmd.Flags().StringVar(&name, "name", "", "client name")

	clientsFindCmd.Flags().StringVar(&taxID, "tax-id", "", "tax ID to look up")
	clientsFindCmd.Flags().StringVar(&email, "email", "", "email to look up")

	clientsDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")

	clientsCmd.AddCommand(clientsAddCmd)
	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsGetCmd)
	clientsCmd.AddCommand(clientsFindCmd)
	clientsCmd.AddCommand(clientsUpdateCmd)
	clientsCmd.AddCommand(clientsDeleteCmd)
}
