package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/socialauth"
	"github.com/dmitrymomot/socialauth/pkg/logger"
	"github.com/dmitrymomot/socialauth/pkg/redis"
)

const (
	outText = "text"
	outJSON = "json"
)

var (
	errUnknownKind   = errors.New("authctl: unknown provider")
	errUnknownOutput = errors.New("authctl: unknown output format")
)

// cli holds flags shared by every command and the app built for the run.
type cli struct {
	app     *app
	envFile string
	out     string
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "authctl",
		Short:        "Sign in, restore and sign out through socialauth providers",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c.out != outText && c.out != outJSON {
				return fmt.Errorf("%w: %q", errUnknownOutput, c.out)
			}
			cfg, err := loadConfig(c.envFile)
			if err != nil {
				return err
			}
			cfg.Log.Output = cmd.ErrOrStderr()
			log := logger.NewWithSentry(cfg.Log, logger.DefaultExtractors()...)

			c.app, err = newApp(cmd.Context(), cfg, log)
			return err
		},
	}

	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before reading AUTHCTL_* variables")
	root.PersistentFlags().StringVarP(&c.out, "out", "o", outText, "output format: text|json")

	root.AddCommand(
		c.statusCommand(),
		c.signInCommand(),
		c.signUpCommand(),
		c.signOutCommand(),
		c.restoreCommand(),
		c.invalidateCommand(),
	)
	return root
}

func (c *cli) close() {
	if c.app == nil {
		return
	}
	if err := c.app.close(context.Background()); err != nil {
		c.app.log.Warn("authctl: cleanup failed", slog.Any("error", err))
	}
}

func (c *cli) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active session and which providers can restore one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			auth := c.app.auth

			previous, err := auth.PreviousSignIns(ctx)
			if err != nil {
				return err
			}

			st := statusView{
				Active:    auth.ActiveKind().String(),
				Store:     c.app.store,
				Providers: make([]providerStatus, 0, len(previous)),
			}
			for _, kind := range auth.Providers() {
				st.Providers = append(st.Providers, providerStatus{
					Kind:              kind.String(),
					HasPreviousSignIn: previous[kind],
					CanSignUp:         auth.CanSignUp(kind),
				})
			}
			if cred, ok := auth.CurrentIdentity(); ok {
				v := newCredentialView(cred)
				st.Identity = &v
			}
			if c.app.redis != nil {
				st.StoreHealthy = redis.Healthcheck(c.app.redis)(ctx) == nil
			} else {
				st.StoreHealthy = true
			}

			return c.print(cmd.OutOrStdout(), st, st.writeText)
		},
	}
}

func (c *cli) signInCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:       "signin <google|facebook|manual>",
		Short:     "Sign in with a provider and make it the active session",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"google", "facebook", "manual"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := c.operationContext(cmd.Context())
			defer cancel()

			req := socialauth.SignInRequest{
				Presenter: urlPresenter(cmd.ErrOrStderr()),
				Username:  username,
				Password:  password,
			}

			if kind != socialauth.KindManual {
				srv, err := startCallbackServer(c.app.cfg.CallbackAddr, newCallbackRouter(c.app.auth, c.app.log), c.app.log)
				if err != nil {
					return err
				}
				defer func() {
					if err := srv.Shutdown(ctx); err != nil {
						c.app.log.Warn("authctl: callback server shutdown failed", slog.Any("error", err))
					}
				}()
			}

			cred, err := c.app.auth.SignIn(ctx, kind, req)
			if err != nil {
				return err
			}
			v := newCredentialView(cred)
			return c.print(cmd.OutOrStdout(), v, v.writeText)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username for manual sign-in")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password for manual sign-in")
	return cmd
}

func (c *cli) signUpCommand() *cobra.Command {
	var req socialauth.SignUpRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a manual account and sign in with it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.operationContext(cmd.Context())
			defer cancel()

			cred, err := c.app.auth.SignUp(ctx, socialauth.KindManual, req)
			if err != nil {
				return err
			}
			v := newCredentialView(cred)
			return c.print(cmd.OutOrStdout(), v, v.writeText)
		},
	}

	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password")
	cmd.Flags().StringVar(&req.DisplayName, "name", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) signOutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign the active provider out and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind := c.app.auth.ActiveKind()
			ok, err := c.app.auth.SignOut(cmd.Context())
			if err != nil {
				return err
			}
			res := signOutView{Provider: kind.String(), SignedOut: ok}
			return c.print(cmd.OutOrStdout(), res, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "signed out of %s\n", res.Provider)
				return err
			})
		},
	}
}

func (c *cli) restoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore [google|facebook|manual]",
		Short: "Silently restore the active session, or the named provider's session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.operationContext(cmd.Context())
			defer cancel()

			var (
				cred socialauth.Credential
				err  error
			)
			if len(args) == 0 {
				cred, err = c.app.auth.RestoreSession(ctx)
			} else {
				var kind socialauth.Kind
				if kind, err = parseKind(args[0]); err != nil {
					return err
				}
				cred, err = c.app.auth.RestoreSessionExplicit(ctx, kind)
			}
			if err != nil {
				return err
			}
			v := newCredentialView(cred)
			return c.print(cmd.OutOrStdout(), v, v.writeText)
		},
	}
}

func (c *cli) invalidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate",
		Short: "Drop the active session locally without contacting the provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.app.auth.InvalidateOnExternalError(cmd.Context())
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "session invalidated")
			return err
		},
	}
}

// operationContext bounds an interactive operation by the sign-in timeout and
// cancels it on interrupt.
func (c *cli) operationContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, c.app.cfg.SignInTimeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func (c *cli) print(w io.Writer, v any, text func(io.Writer) error) error {
	if c.out == outJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w)
}

// urlPresenter prints the authorization URL for the user to open.
func urlPresenter(w io.Writer) socialauth.Presenter {
	return socialauth.PresenterFunc(func(_ context.Context, authURL string) error {
		_, err := fmt.Fprintf(w, "Open this URL in your browser to continue:\n\n  %s\n\n", authURL)
		return err
	})
}

var kindNames = map[string]socialauth.Kind{
	"google":   socialauth.KindGoogle,
	"facebook": socialauth.KindFacebook,
	"apple":    socialauth.KindApple,
	"manual":   socialauth.KindManual,
}

// parseKind accepts short names and full kind identifiers.
func parseKind(s string) (socialauth.Kind, error) {
	if kind, ok := kindNames[strings.ToLower(s)]; ok {
		return kind, nil
	}
	for _, kind := range kindNames {
		if string(kind) == s {
			return kind, nil
		}
	}
	names := make([]string, 0, len(kindNames))
	for name := range kindNames {
		names = append(names, name)
	}
	slices.Sort(names)
	return "", fmt.Errorf("%w: %q (want one of %s)", errUnknownKind, s, strings.Join(names, ", "))
}

type credentialView struct {
	Kind         string `json:"kind"`
	UserID       string `json:"user_id,omitempty"`
	DisplayName  string `json:"display_name,omitempty"`
	Email        string `json:"email,omitempty"`
	Username     string `json:"username,omitempty"`
	IsNewAccount bool   `json:"is_new_account"`
	HasAuthToken bool   `json:"has_auth_token"`
}

func newCredentialView(cred socialauth.Credential) credentialView {
	v := credentialView{
		Kind:         cred.Kind.String(),
		HasAuthToken: cred.AuthToken != "",
	}
	if id := cred.Identity; id != nil {
		v.UserID = id.UserID
		v.DisplayName = id.DisplayName
		v.Email = id.Email
		v.IsNewAccount = id.IsNewAccount
	}
	if pw := cred.Password; pw != nil {
		v.Username = pw.Username
	}
	return v
}

func (v credentialView) writeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"provider", v.Kind},
		{"user id", v.UserID},
		{"name", v.DisplayName},
		{"email", v.Email},
		{"username", v.Username},
	}
	for _, r := range rows {
		if r[1] != "" {
			fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
		}
	}
	fmt.Fprintf(tw, "new account:\t%t\n", v.IsNewAccount)
	return tw.Flush()
}

type providerStatus struct {
	Kind              string `json:"kind"`
	HasPreviousSignIn bool   `json:"has_previous_sign_in"`
	CanSignUp         bool   `json:"can_sign_up"`
}

type statusView struct {
	Identity     *credentialView  `json:"identity,omitempty"`
	Active       string           `json:"active"`
	Store        string           `json:"store"`
	Providers    []providerStatus `json:"providers"`
	StoreHealthy bool             `json:"store_healthy"`
}

func (s statusView) writeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "active:\t%s\n", s.Active)
	fmt.Fprintf(tw, "store:\t%s (healthy: %t)\n", s.Store, s.StoreHealthy)
	if s.Identity != nil {
		fmt.Fprintf(tw, "user:\t%s %s\n", s.Identity.UserID, s.Identity.DisplayName)
	}
	fmt.Fprintln(tw, "\nPROVIDER\tPREVIOUS SIGN-IN\tSIGN-UP")
	for _, p := range s.Providers {
		fmt.Fprintf(tw, "%s\t%t\t%t\n", p.Kind, p.HasPreviousSignIn, p.CanSignUp)
	}
	return tw.Flush()
}

type signOutView struct {
	Provider  string `json:"provider"`
	SignedOut bool   `json:"signed_out"`
}
