package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/foodwaste-zero/internal/config"
	"github.com/jrsteele09/foodwaste-zero/inventory"
	"github.com/jrsteele09/foodwaste-zero/metrics"
	"github.com/jrsteele09/foodwaste-zero/session"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const passwordEnvVar = "FWZ_PASSWORD"

type options struct {
	envFile  string
	timeout  time.Duration
	email    string
	password string
	limit    int
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "fwz",
		Short:        "FoodWaste Zero household inventory client",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Optional .env file to load")
	rootCmd.PersistentFlags().DurationVarP(&opts.timeout, "timeout", "t", 30*time.Second, "Timeout for the whole operation")

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange credentials for a session",
		Long:  `The login command exchanges email and password for a token, stores it and confirms it against the profile endpoint. The password may also be given through ` + passwordEnvVar + `.`,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			if _, err := a.boot(ctx); err != nil {
				return err
			}
			password := opts.password
			if password == "" {
				password = os.Getenv(passwordEnvVar)
			}
			user, err := a.manager.Login(ctx, opts.email, password)
			switch {
			case errors.Is(err, session.ErrInvalidCredentials):
				return errors.New("incorrect email or password")
			case errors.Is(err, session.ErrNetwork):
				return errors.Wrap(err, "server unreachable")
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.DisplayName())
			return nil
		}),
	}
	loginCmd.Flags().StringVarP(&opts.email, "email", "e", "", "Account email")
	loginCmd.Flags().StringVarP(&opts.password, "password", "p", "", "Account password")
	_ = loginCmd.MarkFlagRequired("email")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			if err := a.manager.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		}),
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Validate the stored session and show its user",
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			snap, err := a.boot(ctx)
			if err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), snap)
			return nil
		}),
	}

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Re-validate the stored token",
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			if err := a.manager.Refresh(ctx); err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), a.manager.Snapshot())
			return nil
		}),
	}

	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show inventory metrics, priorities and alerts",
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			snap, err := a.boot(ctx)
			if err != nil {
				return err
			}
			if !snap.IsAuthenticated() {
				return errors.New("not logged in, run fwz login first")
			}

			products, err := a.inventory.Products(ctx)
			if err != nil {
				return err
			}
			history, err := a.inventory.History(ctx)
			if err != nil {
				return err
			}
			printDashboard(cmd.OutOrStdout(), snap, metrics.AggregateWithHistory(products, history), metrics.TopPriorities(products, opts.limit), metrics.Alerts(products))
			return nil
		}),
	}
	dashboardCmd.Flags().IntVarP(&opts.limit, "limit", "n", 5, "Number of priority products to list")

	gateCmd := &cobra.Command{
		Use:   "gate <path>",
		Short: "Show what the access gate decides for a path after boot",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			snap, err := a.boot(ctx)
			if err != nil {
				return err
			}
			d := a.gate.Evaluate(snap.Status, args[0])
			if d.RedirectTo != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", d.Kind, d.RedirectTo)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), d.Kind)
			return nil
		}),
	}

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, refreshCmd, dashboardCmd, gateCmd)
	return rootCmd
}

// withApp builds the app for one command run and tears it down afterwards.
func withApp(opts *options, fn func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
		defer cancel()

		var envFiles []string
		if opts.envFile != "" {
			envFiles = append(envFiles, opts.envFile)
		}
		a, err := newApp(config.New(envFiles...))
		if err != nil {
			return err
		}
		defer a.close()
		return fn(ctx, cmd, args, a)
	}
}

func printSnapshot(w io.Writer, snap session.Snapshot) {
	if !snap.IsAuthenticated() {
		fmt.Fprintln(w, snap.Status)
		return
	}
	fmt.Fprintf(w, "%s %s <%s> household of %d\n", snap.Status, snap.User.DisplayName(), snap.User.Email, snap.User.HouseholdSize)
}

func printDashboard(w io.Writer, snap session.Snapshot, m metrics.Metrics, priorities []inventory.Product, alerts []metrics.Alert) {
	fmt.Fprintf(w, "Household of %s\n\n", snap.User.DisplayName())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total\t%d\n", m.Total)
	fmt.Fprintf(tw, "Expired\t%d\n", m.ExpiredCount)
	fmt.Fprintf(tw, "At risk\t%d\n", m.RiskyCount)
	fmt.Fprintf(tw, "Safe\t%d\n", m.SafeCount)
	fmt.Fprintf(tw, "Consumed\t%d\n", m.ConsumedCount)
	fmt.Fprintf(tw, "Wasted\t%d\n", m.WastedCount)
	fmt.Fprintf(tw, "Waste rate\t%.0f%%\n", m.WasteRate())
	_ = tw.Flush()

	if len(priorities) > 0 {
		fmt.Fprintln(w, "\nUse first")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, p := range priorities {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%d days\n", p.Name, p.CategoryName(), p.Bucket().Label(), p.DaysLeft)
		}
		_ = tw.Flush()
	}

	for _, a := range alerts {
		fmt.Fprintf(w, "\n%s: %d product(s)\n", a.Bucket.Label(), len(a.Products))
	}
}
