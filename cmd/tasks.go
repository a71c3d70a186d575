package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"student-mess-api/seed"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(true)
		if err != nil {
			return err
		}
		defer rt.close()
		rt.log.Info("schema migrated", zap.String("driver", rt.cfg.Database.Driver))
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with demo providers, students and orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(true)
		if err != nil {
			return err
		}
		defer rt.close()
		a := buildApp(cmd.Context(), rt)
		defer a.closeFn()

		opts := seed.Options{Output: os.Stderr}
		f := cmd.Flags()
		opts.Providers, _ = f.GetInt("providers")
		opts.Students, _ = f.GetInt("students")
		opts.ItemsPerProvider, _ = f.GetInt("items")
		opts.Seed, _ = f.GetInt64("seed")

		res, err := seed.Run(cmd.Context(), seed.Services{
			Auth:      a.auth,
			Providers: a.providers,
			Subs:      a.subs,
			Orders:    a.orders,
		}, opts, rt.log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nseeded %d providers, %d students, %d orders (password %q)\n",
			res.Providers, res.Students, res.Orders, seed.DemoPassword)
		return nil
	},
}

var expireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Mark subscriptions past their end date as expired",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(false)
		if err != nil {
			return err
		}
		defer rt.close()
		a := buildApp(cmd.Context(), rt)
		defer a.closeFn()

		n, err := a.subs.ExpireSubscriptions(cmd.Context(), time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "expired %d subscriptions\n", n)
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify-provider <provider-id>",
	Short: "Mark a provider as verified",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid provider id %q", args[0])
		}
		rt, err := setup(false)
		if err != nil {
			return err
		}
		defer rt.close()
		a := buildApp(cmd.Context(), rt)
		defer a.closeFn()

		p, err := a.providers.GetProvider(cmd.Context(), uint(id))
		if err != nil {
			return err
		}
		if !p.ReadyForVerification && !p.Verified {
			force, _ := cmd.Flags().GetBool("force")
			if !force {
				return fmt.Errorf("provider %d has not completed its profile, use --force to verify anyway", id)
			}
		}
		if p, err = a.providers.VerifyProvider(cmd.Context(), uint(id)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "verified %s (%d)\n", p.BusinessName, p.UserID)
		return nil
	},
}

func init() {
	seedCmd.Flags().Int("providers", 5, "number of providers")
	seedCmd.Flags().Int("students", 20, "number of students")
	seedCmd.Flags().Int("items", 6, "menu items per provider")
	seedCmd.Flags().Int64("seed", 0, "random seed (0 for time based)")

	verifyCmd.Flags().Bool("force", false, "verify even when the provider is not ready")
}
