package commands

import (
	"fmt"

	"sentimentreviews/pkg/logger"
	"sentimentreviews/reviews-cli/internal/app/cli/form"
	"sentimentreviews/reviews-cli/internal/app/cli/render"
	"sentimentreviews/reviews-cli/internal/app/cli/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

func (a *App) signupCommand() *cobra.Command {
	var f form.SignupForm

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			if err := p.askIfEmpty(&f.Name, "Name"); err != nil {
				return err
			}
			if err := p.askIfEmpty(&f.Email, "Email"); err != nil {
				return err
			}
			if err := p.askIfEmpty(&f.Password, "Password"); err != nil {
				return err
			}
			if err := p.askIfEmpty(&f.ConfirmPassword, "Confirm password"); err != nil {
				return err
			}
			if err := f.Validate(); err != nil {
				return err
			}

			if err := a.api.Signup(cmd.Context(), f.Request()); err != nil {
				return err
			}

			printer(cmd).Messagef("Account created successfully! Run 'reviews-cli login' to sign in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&f.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&f.Email, "email", "", "Email")
	cmd.Flags().StringVar(&f.Password, "password", "", "Password (prompted when omitted)")
	cmd.Flags().StringVar(&f.ConfirmPassword, "confirm-password", "", "Password confirmation (prompted when omitted)")
	return cmd
}

func (a *App) loginCommand() *cobra.Command {
	var f form.LoginForm

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			if err := p.askIfEmpty(&f.Email, "Email"); err != nil {
				return err
			}
			if err := p.askIfEmpty(&f.Password, "Password"); err != nil {
				return err
			}
			if err := f.Validate(); err != nil {
				return err
			}

			resp, err := a.api.Login(cmd.Context(), f.Email, f.Password)
			if err != nil {
				return err
			}

			user := session.User{ID: resp.User.ID, Name: resp.User.Name, Email: resp.User.Email}
			if err := a.session.Login(user, resp.Token); err != nil {
				return err
			}
			a.api.SetAuthToken(resp.Token)

			logger.Info().Str("user_id", user.ID).Msg("User logged in")
			printer(cmd).Messagef("Welcome back, %s!", displayName(user))
			return nil
		},
	}

	cmd.Flags().StringVar(&f.Email, "email", "", "Email")
	cmd.Flags().StringVar(&f.Password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.session.IsLoggedIn() {
				printer(cmd).Messagef("Not logged in")
				return nil
			}

			// локальная сессия очищается даже если сервер недоступен
			if err := a.api.Logout(cmd.Context()); err != nil {
				logger.Warn().Err(err).Msg("Logout request failed")
			}
			if err := a.session.Logout(); err != nil {
				return err
			}
			a.api.SetAuthToken("")

			printer(cmd).Messagef("Logged out")
			return nil
		},
	}
}

func (a *App) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}

			p := printer(cmd)
			user, _ := a.session.User()
			p.Messagef("%s <%s>", displayName(user), user.Email)
			p.Messagef("id: %s", user.ID)

			// подпись не проверяется: секрет есть только у сервера
			claims := jwt.MapClaims{}
			if _, _, err := jwt.NewParser().ParseUnverified(a.session.Token(), claims); err != nil {
				logger.Debug().Err(err).Msg("Failed to decode token")
				return nil
			}
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				p.Messagef("token expires: %s", exp.Time.Local().Format(render.DateLayout+" 15:04"))
			}
			return nil
		},
	}
}

func displayName(u session.User) string {
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return fmt.Sprintf("user %s", u.ID)
}
