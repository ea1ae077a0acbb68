// Package launcher wires the prizepool CLI: flag parsing, logging setup and
// the scenario commands.
package launcher

import (
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-prize-pool/flags"
	"github.com/rony4d/go-prize-pool/scenario"
)

var app = flags.NewApp()

func init() {
	app.Flags = flags.CommonFlags()
	app.Commands = []cli.Command{
		validateCommand,
		simulateCommand,
	}
}

// Launch parses the arguments and runs the selected command.
func Launch(args []string) error {
	return app.Run(args)
}

var validateCommand = cli.Command{
	Name:      "validate",
	Usage:     "Check every draw's settings in a scenario file",
	ArgsUsage: "<scenario.json>",
	Action:    validateScenario,
}

var simulateCommand = cli.Command{
	Name:      "simulate",
	Usage:     "Replay a scenario file and log the resolved payouts",
	ArgsUsage: "<scenario.json>",
	Action:    simulateScenario,
}

func loadScenario(ctx *cli.Context) (*scenario.Scenario, error) {
	if ctx.NArg() < 1 {
		return nil, errors.New("a scenario file is required")
	}
	s, err := scenario.ReadFile(ctx.Args().First())
	if err != nil {
		return nil, err
	}
	if s.Rules == "" {
		s.Rules = ctx.GlobalString("rules")
	}
	return s, nil
}

func validateScenario(ctx *cli.Context) error {
	log, err := setupLogging(ctx)
	if err != nil {
		return err
	}
	s, err := loadScenario(ctx)
	if err != nil {
		return err
	}
	if err := s.ValidateSettings(); err != nil {
		log.WithError(err).Error("scenario has invalid draw settings")
		return err
	}
	log.WithField("draws", len(s.Draws)).Info("all draw settings are valid")
	return nil
}

func simulateScenario(ctx *cli.Context) error {
	log, err := setupLogging(ctx)
	if err != nil {
		return err
	}
	s, err := loadScenario(ctx)
	if err != nil {
		return err
	}

	log.WithField("name", s.Name).WithField("rules", s.Rules).Info("replaying scenario")
	out, err := s.Apply()
	if err != nil {
		log.WithError(err).Error("replay failed")
		return err
	}

	for i, claim := range out.Claims {
		for _, r := range claim.Results {
			log.WithField("claim", i).
				WithField("user", claim.User.String()).
				WithField("draw", r.DrawID).
				WithField("picks", r.UserPicks).
				WithField("payout", r.Payout.String()).
				Info("claim resolved")
		}
	}

	digest, err := out.Pool.History.Hash()
	if err != nil {
		return err
	}
	log.WithField("ledger", digest.Hex()).Info("replay finished")
	return nil
}
