package main

import (
	"encoding/json"
	"os"
	"time"

	"orgcore/internal/modkit/module"
	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/logger"
	pnet "orgcore/internal/platform/net"
	"orgcore/internal/platform/store/schema"
	auditmod "orgcore/internal/services/audit/module"
	"orgcore/internal/services/billing/domain"
	billingmod "orgcore/internal/services/billing/module"

	"github.com/spf13/cobra"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseInstant(field, v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, perr.Validationf(field, "%s must be RFC3339", field)
	}
	return t, nil
}

func sweepAuditCmd() *cobra.Command {
	var who actor
	var before string
	cmd := &cobra.Command{
		Use:   "sweep-audit",
		Short: "Soft delete the org's audit events older than --before",
		RunE: func(cmd *cobra.Command, _ []string) error {
			at, err := parseInstant("before", before)
			if err != nil {
				return err
			}
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			ctx, a, err := e.context(cmd.Context(), who)
			if err != nil {
				return err
			}
			svc := module.MustPortsOf[auditmod.Ports](e.mods.Audit).Service
			res, err := svc.SweepRetention(ctx, a, at)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	who.flags(cmd)
	cmd.Flags().StringVar(&before, "before", "", "RFC3339 cut off; events strictly older are retired")
	_ = cmd.MarkFlagRequired("before")
	return cmd
}

func resolvePlanCmd() *cobra.Command {
	var who actor
	var asOf string
	cmd := &cobra.Command{
		Use:   "resolve-plan",
		Short: "Activate due assignments and print the org's current billing plan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts domain.ResolveOptions
			if asOf != "" {
				t, err := parseInstant("as-of", asOf)
				if err != nil {
					return err
				}
				opts.AsOf = &t
			}
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			ctx, a, err := e.context(cmd.Context(), who)
			if err != nil {
				return err
			}
			resolver := module.MustPortsOf[billingmod.Exports](e.mods.Billing).Resolver
			res, err := resolver.ResolveTenantBillingPlan(ctx, a, opts)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	who.flags(cmd)
	cmd.Flags().StringVar(&asOf, "as-of", "", "RFC3339 instant to resolve at, defaults to now")
	return cmd
}

// issueTokenCmd mints a bearer token for a member, for local use against the API
func issueTokenCmd() *cobra.Command {
	var who actor
	var mfa bool
	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Issue a bearer token for an existing member",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			// the member must resolve before a token is minted for it
			if _, _, err := e.context(cmd.Context(), who); err != nil {
				return err
			}
			tok, err := e.mods.Identity.Tokens().Issue(pnet.Principal{UserID: who.user, OrgID: who.org, MFAVerified: mfa})
			if err != nil {
				return err
			}
			return printJSON(map[string]string{"token": tok})
		},
	}
	who.flags(cmd)
	cmd.Flags().BoolVar(&mfa, "mfa", false, "mark the token as multi factor verified")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded postgres schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()
			if err := schema.Apply(cmd.Context(), e.st.PG); err != nil {
				return err
			}
			logger.C(cmd.Context()).Info().Msg("migrate done")
			return nil
		},
	}
}
