package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pribylovaa/car-market/internal/api"
	"github.com/pribylovaa/car-market/internal/models"
)

func (c *cli) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Учётные записи администраторов",
	}

	cmd.AddCommand(
		c.adminListCmd(),
		c.adminGetCmd(),
		c.adminCreateCmd(),
		c.adminUpdateCmd(),
		c.adminDeleteCmd(),
	)

	return cmd
}

func (c *cli) adminListCmd() *cobra.Command {
	var opts api.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Список администраторов",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			admins, err := c.app.client.ListAdmins(cmd.Context(), opts)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), admins)
		},
	}

	bindListFlags(cmd.Flags(), &opts)
	cmd.Flags().StringVar(&opts.Status, "status", "", "account status")

	return cmd
}

func (c *cli) adminGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Администратор по id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app.client.GetAdmin(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), a)
		},
	}
}

// adminFlags - поля AdminInput; --active учитывается, только если флаг задан явно.
type adminFlags struct {
	in     models.AdminInput
	active bool
}

func (a *adminFlags) bind(f *pflag.FlagSet) {
	f.StringVar(&a.in.Email, "email", "", "email")
	f.StringVar(&a.in.Name, "name", "", "display name")
	f.StringVar(&a.in.Password, "password", "", "password")
	f.StringVar(&a.in.Role, "role", "", "role: admin|superadmin")
	f.BoolVar(&a.active, "active", true, "account is active")
}

func (a *adminFlags) input(f *pflag.FlagSet) models.AdminInput {
	in := a.in
	if f.Changed("active") {
		active := a.active
		in.IsActive = &active
	}

	return in
}

func (c *cli) adminCreateCmd() *cobra.Command {
	var af adminFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Создать администратора",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app.client.CreateAdmin(cmd.Context(), af.input(cmd.Flags()))
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), a)
		},
	}

	af.bind(cmd.Flags())
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func (c *cli) adminUpdateCmd() *cobra.Command {
	var af adminFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Изменить администратора",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app.client.UpdateAdmin(cmd.Context(), args[0], af.input(cmd.Flags()))
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), a)
		},
	}

	af.bind(cmd.Flags())

	return cmd
}

func (c *cli) adminDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Удалить администратора",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.client.DeleteAdmin(cmd.Context(), args[0]); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
			return err
		},
	}
}

func (c *cli) usersCmd() *cobra.Command {
	var opts api.ListOptions

	cmd := &cobra.Command{
		Use:   "users",
		Short: "Пользователи (для администраторов)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := c.app.client.ListUsers(cmd.Context(), opts)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), page)
		},
	}

	bindListFlags(cmd.Flags(), &opts)
	cmd.Flags().StringVar(&opts.City, "city", "", "city")

	return cmd
}
