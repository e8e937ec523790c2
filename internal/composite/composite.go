// Package composite is the top-level dispatcher for multi-step tasks. It
// routes between three paths: reusing an atomic validator constructed from
// the observed transaction, verifying a self-reported error claim against
// ground truth, and scanning a multi-turn interaction history for the task's
// completing transaction. Before the completion path grants any credit it
// applies the parameter-compliance gate: a transaction that succeeded
// on-chain but substituted its own recipient or amount scores zero.
package composite

import (
	"fmt"
	"math/big"

	"github.com/questbench/txvalidator/internal/check"
	"github.com/questbench/txvalidator/internal/envelope"
	"github.com/questbench/txvalidator/internal/ops"
	"github.com/questbench/txvalidator/internal/registry"
)

// Result statuses reported by the dispatcher.
const (
	StatusValidatorLoadFailed = "validator_load_failed"
	StatusValidationError     = "validation_error"
	StatusNoTransaction       = "no_transaction_executed"
	StatusTransactionMissing  = "transaction_not_found"
	StatusParameterMismatch   = "parameter_mismatch"
	StatusTaskCompleted       = "task_completed"
	StatusErrorReportValid    = "error_report_valid"
	StatusErrorReportInvalid  = "error_report_invalid"
)

// Error types a submission may claim, verified against the initial chain
// state. An unknown type is always an invalid claim.
const (
	ErrTokenInsufficientBalance = "TOKEN_INSUFFICIENT_BALANCE"
	ErrInsufficientBNBBalance   = "INSUFFICIENT_BNB_BALANCE"
	ErrInsufficientAllowance    = "INSUFFICIENT_ALLOWANCE"
	ErrTokenNotFound            = "TOKEN_NOT_FOUND"
)

// noTransactionScore is the fixed partial credit for a submission that never
// executed a transaction: the model engaged with the task but produced
// nothing to judge on-chain.
const noTransactionScore = 50

// passScore is the multi-turn pass threshold after step decay.
const passScore = 60

// Strategy tells the dispatcher which operation anchors the task's score.
type Strategy struct {
	KeyOperation string `yaml:"key_operation" json:"key_operation"`
}

// Validator dispatches composite validation. Construct one per attempt; it
// holds only immutable task configuration.
type Validator struct {
	params   ops.Params
	strategy Strategy
	registry *registry.Registry
}

// New binds task parameters and the scoring strategy. A nil registry gets
// the default table.
func New(params ops.Params, strategy Strategy, reg *registry.Registry) *Validator {
	if reg == nil {
		reg = registry.Default()
	}
	params.Normalize()
	return &Validator{params: params, strategy: strategy, registry: reg}
}

func statusResult(status string, score float64, passed bool, msg string) *check.ValidationResult {
	return &check.ValidationResult{
		Passed:   passed,
		Score:    score,
		MaxScore: check.MaxScore,
		Status:   status,
		Details:  map[string]any{"message": msg},
		Trace:    []string{msg},
	}
}

// Validate routes the composite input. It never panics: internal faults are
// converted to a validation_error result at this boundary, preserving
// whatever was computed before the fault.
func (v *Validator) Validate(in *envelope.CompositeInput) (res *check.ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			if res == nil {
				res = statusResult(StatusValidationError, 0, false, "internal fault during composite validation")
			} else {
				res.Passed = false
				res.Score = 0
				res.Status = StatusValidationError
			}
			res.Details["error"] = fmt.Sprintf("%v", r)
		}
	}()

	if in == nil {
		return statusResult(StatusValidationError, 0, false, "no composite input")
	}
	if in.FinalSubmission == nil {
		return v.validateAtomicReuse(in)
	}
	if in.FinalSubmission.ErrorDetected {
		// Error reports pay the same efficiency cost as completions: a
		// correct diagnosis reached in too many rounds decays like any
		// other outcome.
		return v.applyStepDecay(v.verifyErrorReport(in.FinalSubmission, in.ChainState), len(in.InteractionHistory))
	}
	return v.validateTaskCompletion(in)
}

// validateAtomicReuse scores a single observed transaction with a validator
// constructed from that transaction's own parameters.
func (v *Validator) validateAtomicReuse(in *envelope.CompositeInput) *check.ValidationResult {
	kind := ops.Kind(v.strategy.KeyOperation)
	entry, ok := v.registry.Resolve(kind)
	if !ok {
		return statusResult(StatusValidatorLoadFailed, 0, false,
			fmt.Sprintf("no validator registered for operation %q", kind))
	}
	if in.Envelope == nil {
		return statusResult(StatusValidationError, 0, false, "atomic-reuse input carries no envelope")
	}
	atomic, ok := entry.Build(in.Envelope.Tx)
	if !ok {
		return statusResult(StatusValidatorLoadFailed, 0, false,
			fmt.Sprintf("could not extract %q parameters from submitted calldata", kind))
	}
	res := atomic.Validate(in.Envelope)
	res.Details["key_operation"] = string(kind)
	res.Trace = append([]string{fmt.Sprintf("atomic reuse: validator %q constructed from submitted transaction", kind)}, res.Trace...)
	return res
}

// verifyErrorReport judges a claimed error against ground truth. The outcome
// is binary: a correct diagnosis is worth full score, a false alarm nothing.
func (v *Validator) verifyErrorReport(sub *envelope.FinalSubmission, cs *envelope.ChainState) *check.ValidationResult {
	valid := false
	reason := fmt.Sprintf("unknown error type %q", sub.ErrorType)
	if cs != nil {
		initial := cs.InitialState
		amount := v.params.Amount
		if amount == nil {
			amount = new(big.Int)
		}
		switch sub.ErrorType {
		case ErrTokenInsufficientBalance:
			valid = initial.BigInt("token_balance").Cmp(amount) < 0
			reason = fmt.Sprintf("token_balance %s vs required %s", initial.BigInt("token_balance"), amount)
		case ErrInsufficientBNBBalance:
			valid = initial.BigInt("balance").Cmp(amount) < 0
			reason = fmt.Sprintf("balance %s vs required %s", initial.BigInt("balance"), amount)
		case ErrInsufficientAllowance:
			valid = initial.BigInt("allowance").Cmp(amount) < 0
			reason = fmt.Sprintf("allowance %s vs required %s", initial.BigInt("allowance"), amount)
		case ErrTokenNotFound:
			valid = !initial.Has("token_balance")
			reason = "token_balance field presence"
		}
	}

	status := StatusErrorReportInvalid
	score := 0.0
	if valid {
		status = StatusErrorReportValid
		score = check.MaxScore
	}
	res := statusResult(status, score, valid, fmt.Sprintf("error claim %q verified against chain state: %s", sub.ErrorType, reason))
	res.Details["is_valid_error"] = valid
	res.Details["error_type"] = sub.ErrorType
	return res
}

// validateTaskCompletion scans the interaction history in reverse for the
// most recent successful executed transaction and scores task completion.
func (v *Validator) validateTaskCompletion(in *envelope.CompositeInput) *check.ValidationResult {
	var executed *envelope.ActionResult
	for i := len(in.InteractionHistory) - 1; i >= 0; i-- {
		ar := in.InteractionHistory[i].ActionResult
		if ar != nil && ar.Success && ar.TxHash != "" {
			executed = ar
			break
		}
	}
	if executed == nil {
		res := statusResult(StatusNoTransaction, noTransactionScore, false,
			"no successful transaction found in interaction history")
		return v.applyStepDecay(res, len(in.InteractionHistory))
	}

	res := &check.ValidationResult{
		MaxScore: check.MaxScore,
		Details:  map[string]any{"tx_hash": executed.TxHash},
		Trace:    []string{fmt.Sprintf("found successful transaction %s in interaction history", executed.TxHash)},
	}

	tx, found := findTransaction(in.ChainState, executed.TxHash)
	if !found {
		// A hash the chain never recorded cannot pass the compliance gate,
		// and an ungated success must not score.
		res.Status = StatusTransactionMissing
		res.Score = 0
		res.Passed = false
		res.Trace = append(res.Trace, "executed transaction not found in chain state")
		return v.applyStepDecay(res, len(in.InteractionHistory))
	}
	if ok, detail := v.checkParameterCompliance(tx); !ok {
		res.Status = StatusParameterMismatch
		res.Score = 0
		res.Passed = false
		res.Details["parameter_mismatch"] = detail
		res.Trace = append(res.Trace, "parameter compliance gate failed: "+detail)
		return v.applyStepDecay(res, len(in.InteractionHistory))
	}
	res.Trace = append(res.Trace, "parameter compliance gate passed")

	// TODO: re-run the key operation's business-effect checks against the
	// final chain state instead of granting full score for any successful
	// transaction. Needs per-round state snapshots from the executor.
	res.Score = check.MaxScore
	res.Passed = true
	res.Status = StatusTaskCompleted
	res.Trace = append(res.Trace, "task completion scored on transaction success only, business effects not re-checked")
	return v.applyStepDecay(res, len(in.InteractionHistory))
}

// checkParameterCompliance decodes the executed transaction and compares its
// parameters exactly against the task's required recipient and amount. No
// tolerance applies here: a generated transaction must not substitute its
// own values, however close.
func (v *Validator) checkParameterCompliance(tx envelope.ExecutedTx) (bool, string) {
	kind := ops.Kind(v.strategy.KeyOperation)
	entry, ok := v.registry.Resolve(kind)
	if !ok {
		// No extractor for the key operation; nothing to compare against.
		return true, ""
	}
	observed, ok := entry.Extract(envelope.Transaction{
		From: tx.From, To: tx.To, Value: tx.Value, Data: tx.Data,
	})
	if !ok {
		return false, "could not decode submitted transaction parameters"
	}
	if v.params.ToAddress != "" && !envelope.SameAddress(observed.ToAddress, v.params.ToAddress) {
		return false, fmt.Sprintf("recipient %s does not match required %s",
			envelope.NormalizeAddress(observed.ToAddress), envelope.NormalizeAddress(v.params.ToAddress))
	}
	if v.params.Amount != nil && v.params.Amount.Sign() > 0 {
		if observed.Amount == nil || observed.Amount.Cmp(v.params.Amount) != 0 {
			return false, fmt.Sprintf("amount %s does not match required %s", observed.Amount, v.params.Amount)
		}
	}
	return true, ""
}

// applyStepDecay scales the score by optimal/actual rounds when the task
// defines an optimal step count. More rounds than optimal means the model
// wandered; the decayed score must still clear the pass mark.
func (v *Validator) applyStepDecay(res *check.ValidationResult, actualSteps int) *check.ValidationResult {
	if v.params.OptimalSteps <= 0 || actualSteps <= 0 {
		return res
	}
	decay := float64(v.params.OptimalSteps) / float64(actualSteps)
	if decay > 1 {
		decay = 1
	}
	res.Details["base_score"] = res.Score
	res.Details["decay_factor"] = decay
	res.Details["optimal_steps"] = v.params.OptimalSteps
	res.Details["actual_steps"] = actualSteps
	res.Score *= decay
	res.Passed = res.Score >= passScore
	res.Trace = append(res.Trace, fmt.Sprintf("step decay %.3f applied (%d optimal / %d actual)", decay, v.params.OptimalSteps, actualSteps))
	return res
}

func findTransaction(cs *envelope.ChainState, hash string) (envelope.ExecutedTx, bool) {
	if cs == nil {
		return envelope.ExecutedTx{}, false
	}
	for _, tx := range cs.Transactions {
		if envelope.SameAddress(tx.Hash, hash) {
			return tx, true
		}
	}
	return envelope.ExecutedTx{}, false
}
