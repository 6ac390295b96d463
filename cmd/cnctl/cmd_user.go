package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cinenacional-backend/internal/domains/user"
	"cinenacional-backend/pkg/container"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage back-office accounts",
}

var (
	userEmail    string
	userName     string
	userRole     string
	userPassword string
)

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an editor or admin account",
	Long: `Create a back-office account. There is no public sign-up; every
editor is created here.

The password can also be passed in CNCTL_PASSWORD to keep it out of
the shell history.`,
	Args: cobra.NoArgs,
	RunE: runUserCreate,
}

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "Login email (required)")
	userCreateCmd.Flags().StringVar(&userName, "name", "", "Display name (required)")
	userCreateCmd.Flags().StringVar(&userRole, "role", string(user.RoleEditor), "ADMIN, EDITOR or USER")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "Initial password (or CNCTL_PASSWORD)")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("name")

	userCmd.AddCommand(userCreateCmd)
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	req := user.CreateUserRequest{
		Email:    strings.TrimSpace(userEmail),
		Name:     strings.TrimSpace(userName),
		Role:     user.Role(strings.ToUpper(strings.TrimSpace(userRole))),
		Password: userPassword,
	}
	if req.Password == "" {
		req.Password = os.Getenv("CNCTL_PASSWORD")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
		created, err := c.UserService.CreateUser(ctx, req)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd, created)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (id %d)\n", created.Role, created.Email, created.ID)
		return nil
	})
}
