// Package scenario replays JSON fixtures against a fresh pool: genesis
// balances, timed balance events, draw closes and claims. Replays are
// deterministic, so a fixture doubles as a regression record of expected
// payouts.
package scenario

import (
	"encoding/json"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/rony4d/go-prize-pool/draw"
	"github.com/rony4d/go-prize-pool/inter"
	"github.com/rony4d/go-prize-pool/pool"
)

// BalanceEvent is one balance mutation: the account's new balance level
// and, when the mutation changed it, the new total supply.
type BalanceEvent struct {
	Account common.Address  `json:"account"`
	Amount  *hexutil.Big    `json:"amount"`
	Supply  *hexutil.Big    `json:"supply,omitempty"`
	Time    inter.Timestamp `json:"time"`
}

// Settings mirrors inter.DrawSettings with JSON-friendly big integers.
type Settings struct {
	BitRangeSize     uint8           `json:"bitRangeSize"`
	MatchCardinality uint8           `json:"matchCardinality"`
	Distributions    []uint32        `json:"distributions"`
	NumberOfPicks    uint64          `json:"numberOfPicks"`
	StartOffset      inter.Timestamp `json:"startOffset"`
	EndOffset        inter.Timestamp `json:"endOffset"`
	ExpiryDuration   inter.Timestamp `json:"expiryDuration"`
	MaxPicksPerUser  uint64          `json:"maxPicksPerUser"`
	Prize            *hexutil.Big    `json:"prize"`
}

// DrawClose is one closed draw with its winning random and settings.
type DrawClose struct {
	ID            inter.DrawID    `json:"id"`
	Time          inter.Timestamp `json:"time"`
	WinningRandom common.Hash     `json:"winningRandom"`
	Settings      Settings        `json:"settings"`
}

// Claim is one batch claim to resolve after all draws have closed.
type Claim struct {
	User    common.Address  `json:"user"`
	Seed    common.Hash     `json:"seed"`
	DrawIDs []inter.DrawID  `json:"drawIds"`
	Picks   [][]uint64      `json:"picks"`
	Time    inter.Timestamp `json:"time"`
}

// Scenario is one replayable fixture. Events, draws and claims each apply
// in their listed order; ordering violations surface as the same sequence
// errors a live host would see.
type Scenario struct {
	Name   string         `json:"name"`
	Rules  string         `json:"rules,omitempty"`
	Events []BalanceEvent `json:"events"`
	Draws  []DrawClose    `json:"draws"`
	Claims []Claim        `json:"claims"`
}

// ClaimOutcome is the resolved result of one claim.
type ClaimOutcome struct {
	User    common.Address
	Results []draw.Result
}

// Outcome is the full replay result, claims in input order.
type Outcome struct {
	Pool   *pool.Pool
	Claims []ClaimOutcome
}

func (s Settings) toSettings(id inter.DrawID) inter.DrawSettings {
	out := inter.DrawSettings{
		DrawID:           id,
		BitRangeSize:     s.BitRangeSize,
		MatchCardinality: s.MatchCardinality,
		Distributions:    append([]uint32{}, s.Distributions...),
		NumberOfPicks:    s.NumberOfPicks,
		StartOffset:      s.StartOffset,
		EndOffset:        s.EndOffset,
		ExpiryDuration:   s.ExpiryDuration,
		MaxPicksPerUser:  s.MaxPicksPerUser,
	}
	if s.Prize != nil {
		out.Prize = s.Prize.ToInt()
	}
	return out
}

// Read decodes a scenario from JSON.
func Read(r io.Reader) (*Scenario, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	s := new(Scenario)
	if err := dec.Decode(s); err != nil {
		return nil, errors.Wrap(err, "failed to decode scenario")
	}
	return s, nil
}

// ReadFile decodes a scenario from a JSON file.
func ReadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open scenario")
	}
	defer f.Close()
	return Read(f)
}

// ValidateSettings checks every draw's settings without building a pool.
// Used by the CLI validate command.
func (s *Scenario) ValidateSettings() error {
	for _, d := range s.Draws {
		if err := d.Settings.toSettings(d.ID).Validate(); err != nil {
			return errors.Wrapf(err, "draw %d", d.ID)
		}
	}
	return nil
}

// Apply replays the scenario against a fresh pool built from its rules
// profile. The first failing step aborts the replay.
func (s *Scenario) Apply() (*Outcome, error) {
	rules, ok := pool.RulesByName(s.Rules)
	if !ok {
		return nil, errors.Wrapf(inter.ErrConfiguration, "unknown rules profile %q", s.Rules)
	}
	p, err := pool.New(rules)
	if err != nil {
		return nil, err
	}

	for i, e := range s.Events {
		if e.Amount == nil {
			return nil, errors.Wrapf(inter.ErrConfiguration, "event %d has no amount", i)
		}
		if err := p.Checkpoint(e.Account, e.Amount.ToInt(), e.Time); err != nil {
			return nil, errors.Wrapf(err, "event %d", i)
		}
		if e.Supply != nil {
			if err := p.CheckpointSupply(e.Supply.ToInt(), e.Time); err != nil {
				return nil, errors.Wrapf(err, "event %d supply", i)
			}
		}
	}

	for _, d := range s.Draws {
		closed := inter.Draw{
			ID:            d.ID,
			Time:          d.Time,
			WinningRandom: d.WinningRandom,
		}
		if err := p.CloseDraw(closed, d.Settings.toSettings(d.ID)); err != nil {
			return nil, errors.Wrapf(err, "draw %d", d.ID)
		}
	}

	out := &Outcome{
		Pool:   p,
		Claims: make([]ClaimOutcome, len(s.Claims)),
	}
	for i, c := range s.Claims {
		results, err := p.Calculate(c.User, c.Seed, c.DrawIDs, c.Picks, c.Time)
		if err != nil {
			return nil, errors.Wrapf(err, "claim %d by %s", i, c.User.String())
		}
		out.Claims[i] = ClaimOutcome{
			User:    c.User,
			Results: results,
		}
	}
	return out, nil
}
