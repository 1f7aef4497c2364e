package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/student-assessment/internal/observability"
	"github.com/jonathan/student-assessment/internal/perturbation"
	"github.com/jonathan/student-assessment/internal/types"
)

var variantsFlags sharedFlags

var variantsCommand = &cobra.Command{
	Use:   "variants",
	Short: "Generate profile variants without running the pipeline",
	Long: `Generates the original, injection, removal and rephrased variants of every selected
profile and writes them as JSON. No LLM is called; use --seed to reproduce a batch.`,
	RunE: runVariants,
}

func init() {
	bindInputFlags(variantsCommand, &variantsFlags)
	rootCmd.AddCommand(variantsCommand)
}

// variantGroup is one profile's generated variants.
type variantGroup struct {
	ProfileID   string                  `json:"profile_id"`
	ProfileName string                  `json:"profile_name"`
	Variants    []*types.ProfileVariant `json:"variants"`
}

// variantsOutput is the JSON written by the variants command.
type variantsOutput struct {
	Seed     uint64         `json:"seed"`
	Profiles []variantGroup `json:"profiles"`
}

func runVariants(cmd *cobra.Command, _ []string) error {
	cfg, err := variantsFlags.resolve(cmd)
	if err != nil {
		return err
	}
	input, err := loadInput(cfg.Input)
	if err != nil {
		return err
	}
	variantsFlags.applyInputOverrides(cmd, input)

	rs, err := loadRuleSet(cfg)
	if err != nil {
		return err
	}
	generator, seed := newGenerator(rs, cfg.Seed)

	runner := &perturbation.Runner{Generator: generator, Logger: logger}
	plan, err := runner.Prepare(input)
	if err != nil {
		return err
	}

	out := variantsOutput{Seed: seed, Profiles: make([]variantGroup, 0, len(plan))}
	var printer *observability.Printer
	if cfg.Verbose {
		printer = observability.NewPrinter(progressOut(cfg.Output))
	}
	for _, pv := range plan {
		out.Profiles = append(out.Profiles, variantGroup{
			ProfileID:   pv.Entry.ID,
			ProfileName: pv.Entry.Name,
			Variants:    pv.Variants,
		})
		if printer != nil {
			for _, v := range pv.Variants {
				printer.PrintVariant(v)
			}
		}
	}
	return writeJSON(cfg.Output, out)
}
