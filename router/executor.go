package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/shieldswap/zkrouter/log"
	"github.com/shieldswap/zkrouter/types"
)

// ErrTerminal signals a non-retryable executor failure: the action is
// marked Failed and any funds path (refund) is the executor's concern.
// Executors wrap it: fmt.Errorf("%w: pool drained", router.ErrTerminal).
var ErrTerminal = errors.New("terminal executor failure")

// Executor is the narrow entrypoint each downstream domain module
// implements. Payout parameters are read from the bound action.
type Executor interface {
	Apply(ctx context.Context, action *types.Action) (*types.Outcome, error)
}

// Executors holds one executor per downstream domain. The private swap
// variants dispatch to the swap executor.
type Executors struct {
	Swap       Executor
	Bridge     Executor
	Stake      Executor
	LimitOrder Executor
	Referral   Executor
	Rewards    Executor
	Points     Executor
	Snapshot   Executor
}

func (e *Executors) check() error {
	for _, t := range []types.ActionType{
		types.ActionSwap, types.ActionBridge, types.ActionStake,
		types.ActionLimitOrder, types.ActionReferral, types.ActionRewards,
		types.ActionPoints, types.ActionSnapshot, types.ActionPrivateSwap,
		types.ActionPrivateBTCSwap,
	} {
		if _, err := e.forType(t); err != nil {
			return err
		}
	}
	return nil
}

// forType routes an action type to its executor. The switch is
// exhaustive over the closed ActionType set; adding a type without a
// route is a compile-visible change here.
func (e *Executors) forType(t types.ActionType) (Executor, error) {
	var exec Executor
	switch t {
	case types.ActionSwap, types.ActionPrivateSwap, types.ActionPrivateBTCSwap:
		exec = e.Swap
	case types.ActionBridge:
		exec = e.Bridge
	case types.ActionStake:
		exec = e.Stake
	case types.ActionLimitOrder:
		exec = e.LimitOrder
	case types.ActionReferral:
		exec = e.Referral
	case types.ActionRewards:
		exec = e.Rewards
	case types.ActionPoints:
		exec = e.Points
	case types.ActionSnapshot:
		exec = e.Snapshot
	default:
		return nil, fmt.Errorf("no executor for action type %s", t)
	}
	if exec == nil {
		return nil, fmt.Errorf("executor for %s not configured", t)
	}
	return exec, nil
}

// DevExecutor is a stand-in executor that logs the action and reports
// success. Used in local development wiring; real deployments inject the
// domain modules.
type DevExecutor struct {
	Domain string
}

// Apply implements Executor.
func (d *DevExecutor) Apply(_ context.Context, action *types.Action) (*types.Outcome, error) {
	log.Infow("dev executor applied action",
		"domain", d.Domain,
		"id", action.ID.String(),
		"type", action.Type.String(),
		"asset", action.Asset.Hex(),
		"amount", action.Amount.String(),
		"recipient", action.Recipient.Hex())
	return &types.Outcome{Detail: d.Domain + " applied"}, nil
}

// DevExecutors returns an Executors set backed by DevExecutor instances.
func DevExecutors() Executors {
	return Executors{
		Swap:       &DevExecutor{Domain: "swap"},
		Bridge:     &DevExecutor{Domain: "bridge"},
		Stake:      &DevExecutor{Domain: "stake"},
		LimitOrder: &DevExecutor{Domain: "limit"},
		Referral:   &DevExecutor{Domain: "referral"},
		Rewards:    &DevExecutor{Domain: "rewards"},
		Points:     &DevExecutor{Domain: "points"},
		Snapshot:   &DevExecutor{Domain: "snapshot"},
	}
}
