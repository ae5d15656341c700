package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pribylovaa/car-market/internal/models"
)

func (c *cli) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Войти и сохранить пару токенов",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := c.app.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			if resp.User != nil {
				return printJSON(cmd.OutOrStdout(), resp.User)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Удалить сохранённую сессию",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.client.Logout(cmd.Context())
		},
	}
}

func (c *cli) signupCmd() *cobra.Command {
	var (
		in     models.SignupInput
		avatar string
	)

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Зарегистрировать пользователя",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if avatar != "" {
				f, err := os.Open(avatar)
				if err != nil {
					return err
				}
				defer f.Close()

				in.Avatar = &models.File{Name: filepath.Base(avatar), Content: f}
			}

			resp, err := c.app.client.Signup(cmd.Context(), in)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Email, "email", "", "account email")
	f.StringVar(&in.Password, "password", "", "account password")
	f.StringVar(&in.FirstName, "first-name", "", "first name")
	f.StringVar(&in.LastName, "last-name", "", "last name")
	f.StringVar(&in.Phone, "phone", "", "phone")
	f.StringVar(&in.City, "city", "", "city")
	f.StringVar(&avatar, "avatar", "", "path to avatar image")

	return cmd
}

func (c *cli) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Профиль текущего пользователя",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := c.app.client.Me(cmd.Context())
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), u)
		},
	}
}

// tokenStatus - вывод команды token. Сами токены не печатаются.
type tokenStatus struct {
	LoggedIn   bool       `json:"loggedIn"`
	HasRefresh bool       `json:"hasRefreshToken"`
	Expired    bool       `json:"expired"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	Storage    string     `json:"storage"`
}

func (c *cli) tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Состояние сохранённой сессии",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := tokenStatus{Storage: c.app.cfg.Storage.Driver}

			pair, ok := c.app.tokens.Pair(cmd.Context())
			if ok {
				st.LoggedIn = pair.AccessToken != ""
				st.HasRefresh = pair.RefreshToken != ""
				st.Expired = c.app.tokens.IsTokenExpired(pair.AccessToken)
				if !pair.ExpiresAt.IsZero() {
					exp := pair.ExpiresAt.UTC()
					st.ExpiresAt = &exp
				}
			}

			return printJSON(cmd.OutOrStdout(), st)
		},
	}
}

func (c *cli) forgotPasswordCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Запросить письмо для сброса пароля",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := c.app.client.ForgotPassword(cmd.Context(), email)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func (c *cli) checkTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-token <reset-token>",
		Short: "Проверить токен сброса пароля",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.app.client.CheckResetToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func (c *cli) resetPasswordCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "reset-password <reset-token>",
		Short: "Установить новый пароль по токену сброса",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return errors.New("--password is required")
			}

			resp, err := c.app.client.ResetPassword(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "new password")

	return cmd
}
