package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"avelements/internal/address"
	"avelements/internal/verification/client"
	"avelements/internal/verification/denormalize"
	"avelements/internal/verification/policy"
)

type verifyOutput struct {
	Outcome       address.Outcome      `json:"outcome"`
	Category      client.ErrorCategory `json:"category,omitempty"`
	International bool                 `json:"international"`
	Verdict       policy.Verdict       `json:"verdict"`
	Reason        policy.Reason        `json:"reason"`
	Message       string               `json:"message,omitempty"`
	Suggested     *address.Fields      `json:"suggested,omitempty"`
}

func newVerifyCommand(root *rootOptions) *cobra.Command {
	var (
		fields     address.Fields
		strictness string
		apiKey     string
		env        string
		denorm     bool
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify one address and show the decision a form would make",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := root.load(cmd)
			if err != nil {
				return err
			}
			if strings.TrimSpace(fields.Primary) == "" {
				return fmt.Errorf("--primary is required")
			}
			if apiKey == "" {
				apiKey = cfg.Verification.APIKey
			}
			if env == "" {
				env = cfg.Env
			}

			level := address.ResolveStrictness(strictness, cfg.Verification.Strictness)
			res := client.Result{Outcome: address.OutcomeDeliverable, Code: 200}
			if level != address.StrictnessOff {
				c := client.New(client.DefaultEndpoints(env).Merge(cfg.Verification.Endpoints),
					client.WithAPIKey(apiKey),
					client.WithOrigin(cfg.Origin),
					client.WithTimeout(cfg.VerificationTimeout),
					client.WithInternationalVerification(cfg.VerifyIntl),
					client.WithLogger(log),
				)
				res = c.Verify(cmd.Context(), fields)
			}

			decision := policy.Evaluate(policy.Input{
				Strictness: level,
				Outcome:    res.Outcome,
				Kind:       res.Kind,
			})
			out := verifyOutput{
				Outcome:       res.Outcome,
				Category:      res.Category,
				International: res.International,
				Verdict:       decision.Verdict,
				Reason:        decision.Reason,
			}
			if decision.Kind != "" {
				out.Message = address.DefaultMessages().Merge(cfg.Verification.Messages).Text(decision.Kind)
			}
			if v := res.Verified; decision.Allowed() && v != nil && v.PrimaryLine != "" && res.Outcome.IsDeliverable() {
				parts := denormalize.Resolve(*v, fields.Secondary != "", denorm)
				suggested := fields
				suggested.Primary = parts.Primary
				suggested.Secondary = parts.Secondary
				out.Suggested = &suggested
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	f := cmd.Flags()
	f.StringVar(&fields.Primary, "primary", "", "primary address line")
	f.StringVar(&fields.Secondary, "secondary", "", "secondary address line")
	f.StringVar(&fields.City, "city", "", "city")
	f.StringVar(&fields.State, "state", "", "state or province")
	f.StringVar(&fields.Zip, "zip", "", "ZIP or postal code")
	f.StringVar(&fields.Country, "country", "", "country name or code")
	f.StringVar(&strictness, "strictness", "", "strictness level (strict, normal, relaxed, passthrough, false)")
	f.StringVar(&apiKey, "key", "", "API key, defaults to AV_API_KEY")
	f.StringVar(&env, "env", "", "service environment (production or staging)")
	f.BoolVar(&denorm, "denormalize", true, "split a recognized unit back into the secondary line when one was typed")
	return cmd
}

func newAutocompleteCommand(root *rootOptions) *cobra.Command {
	var req client.AutocompleteRequest
	cmd := &cobra.Command{
		Use:   "autocomplete PREFIX",
		Short: "List suggestions for a partially typed primary line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.load(cmd)
			if err != nil {
				return err
			}
			c := client.New(client.DefaultEndpoints(cfg.Env).Merge(cfg.Verification.Endpoints),
				client.WithAPIKey(cfg.Verification.APIKey),
				client.WithOrigin(cfg.Origin),
				client.WithLogger(log),
			)
			req.Prefix = args[0]
			suggestions, err := c.Autocomplete(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), suggestions)
		},
	}
	cmd.Flags().StringVar(&req.City, "city", "", "restrict to a city")
	cmd.Flags().StringVar(&req.State, "state", "", "restrict to a state")
	cmd.Flags().StringVar(&req.Zip, "zip", "", "restrict to a ZIP code")
	return cmd
}
