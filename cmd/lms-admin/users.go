package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/domain/model"
	"github.com/starter-squad/lms/internal/service"
)

func userCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(
		userCreateCmd(a),
		userSetRoleCmd(a),
		userSetActiveCmd(a),
		userSetPasswordCmd(a),
	)
	return cmd
}

func userCreateCmd(a *app) *cobra.Command {
	var email, name, role, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an active account with any role",
		Long: `Create an active account. Use this to bootstrap the first ADMIN or
SUPER_ADMIN, since self-service registration only creates students.
Without --password the password is read from the first line of stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := parseRoleFlag(role)
			if err != nil {
				return err
			}
			if password == "" {
				if password, err = readPassword(a); err != nil {
					return err
				}
			}
			return a.withInfra(cmd.Context(), infraNeeds{Services: true}, func(deps *infra) error {
				u, err := deps.Users.CreateUser(cmd.Context(), service.CreateUserInput{
					Email:    email,
					Name:     name,
					Password: password,
					Role:     r,
				})
				if err != nil {
					return fmt.Errorf("create user: %w", err)
				}
				printUser(a, "created", u)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&role, "role", string(domainauth.RoleStudent), "STUDENT, INSTRUCTOR, ADMIN or SUPER_ADMIN")
	cmd.Flags().StringVar(&password, "password", "", "initial password; read from stdin when empty")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func userSetRoleCmd(a *app) *cobra.Command {
	var email, role string

	cmd := &cobra.Command{
		Use:   "set-role",
		Short: "Change a user's role and end their sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := parseRoleFlag(role)
			if err != nil {
				return err
			}
			return a.withInfra(cmd.Context(), infraNeeds{Services: true}, func(deps *infra) error {
				u, err := lookupUser(cmd, deps, email)
				if err != nil {
					return err
				}
				if u, err = deps.Users.ChangeRole(cmd.Context(), u.ID, r); err != nil {
					return fmt.Errorf("change role: %w", err)
				}
				printUser(a, "updated", u)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&role, "role", "", "new role (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func userSetActiveCmd(a *app) *cobra.Command {
	var (
		email  string
		active bool
	)

	cmd := &cobra.Command{
		Use:   "set-active",
		Short: "Enable or disable an account; disabling ends its sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withInfra(cmd.Context(), infraNeeds{Services: true}, func(deps *infra) error {
				u, err := lookupUser(cmd, deps, email)
				if err != nil {
					return err
				}
				if u, err = deps.Users.SetActive(cmd.Context(), u.ID, active); err != nil {
					return fmt.Errorf("set active: %w", err)
				}
				printUser(a, "updated", u)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().BoolVar(&active, "active", true, "whether the account may sign in")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func userSetPasswordCmd(a *app) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Replace a user's password (read from stdin) and end their sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(a)
			if err != nil {
				return err
			}
			return a.withInfra(cmd.Context(), infraNeeds{Services: true}, func(deps *infra) error {
				u, err := lookupUser(cmd, deps, email)
				if err != nil {
					return err
				}
				if err := deps.Users.SetPassword(cmd.Context(), u.ID, password); err != nil {
					return fmt.Errorf("set password: %w", err)
				}
				a.printf("password updated for %s\n", u.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func parseRoleFlag(value string) (domainauth.Role, error) {
	r, ok := domainauth.ParseRole(value)
	if !ok {
		return "", fmt.Errorf("invalid role %q", value)
	}
	return r, nil
}

func lookupUser(cmd *cobra.Command, deps *infra, email string) (*model.User, error) {
	u, err := deps.Users.GetByEmail(cmd.Context(), email)
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", email, err)
	}
	return u, nil
}

func readPassword(a *app) (string, error) {
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New("password required on stdin")
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password required on stdin")
	}
	return password, nil
}

func printUser(a *app, verb string, u *model.User) {
	a.printf("%s user %s\n  email:  %s\n  role:   %s\n  active: %t\n", verb, u.ID, u.Email, u.Role, u.Active)
}
