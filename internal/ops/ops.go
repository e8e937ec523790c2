// Package ops holds the operation-spec table: for every supported operation
// kind, the declarative check list, its expected function selector and the
// passing policy. A single evaluator interprets the table; no operation has
// code of its own.
package ops

import (
	"fmt"
	"math/big"

	"github.com/questbench/txvalidator/internal/check"
	"github.com/questbench/txvalidator/internal/envelope"
)

// Kind identifies an operation the engine can judge.
type Kind string

const (
	BNBTransfer            Kind = "bnb_transfer"
	BNBTransferMaxAmount   Kind = "bnb_transfer_max_amount"
	BNBTransferWithMessage Kind = "bnb_transfer_with_message"
	ERC20Transfer          Kind = "erc20_transfer"
	ERC20TransferPct       Kind = "erc20_transfer_percentage"
	ERC20TransferMax       Kind = "erc20_transfer_max_amount"
	ERC20TransferFrom      Kind = "erc20_transferfrom_basic"
	ERC20Burn              Kind = "erc20_burn"
	ERC20Approve           Kind = "erc20_approve"
	ERC20IncreaseAllowance Kind = "erc20_increase_allowance"
	ERC20DecreaseAllowance Kind = "erc20_decrease_allowance"
	ERC20ApproveAndCall    Kind = "erc20_approve_and_call_1363"
	ERC20TransferCallback  Kind = "erc20_transfer_with_callback_1363"
	WBNBDeposit            Kind = "wbnb_deposit"
	WBNBWithdraw           Kind = "wbnb_withdraw"
	ERC721SafeTransfer     Kind = "erc721_safe_transfer"
	ERC721Approve          Kind = "erc721_approve"
	ERC721SetApprovalAll   Kind = "erc721_set_approval_for_all"
	ERC1155TransferSingle  Kind = "erc1155_transfer_single"
	ERC1155TransferData    Kind = "erc1155_safe_transfer_with_data"
	SwapExactTokens        Kind = "swap_exact_tokens_for_tokens"
	SwapExactBNBForTokens  Kind = "swap_exact_bnb_for_tokens"
	SwapExactTokensForBNB  Kind = "swap_exact_tokens_for_bnb"
	SwapTokensForExact     Kind = "swap_tokens_for_exact_tokens"
	SwapMultihop           Kind = "swap_multihop_routing"
	AddLiquidityTokens     Kind = "add_liquidity_tokens"
	AddLiquidityBNB        Kind = "add_liquidity_bnb_token"
	RemoveLiquidityTokens  Kind = "remove_liquidity_tokens"
	RemoveLiquidityBNB     Kind = "remove_liquidity_bnb_token"
	StakeSingleToken       Kind = "stake_single_token"
	StakeLPTokens          Kind = "stake_lp_tokens"
	UnstakeLPTokens        Kind = "unstake_lp_tokens"
	HarvestRewards         Kind = "harvest_rewards"
	EmergencyWithdraw      Kind = "emergency_withdraw"
	ContractCallSimple     Kind = "contract_call_simple"
	ContractCallParams     Kind = "contract_call_with_params"
	ContractCallValue      Kind = "contract_call_with_value"
	ContractDelegateCall   Kind = "contract_delegate_call"
	ContractPayable        Kind = "contract_payable_fallback"
	ERC20Flashloan         Kind = "erc20_flashloan"
	ERC20Permit            Kind = "erc20_permit"

	QueryBNBBalance       Kind = "query_bnb_balance"
	QueryERC20Balance     Kind = "query_erc20_balance"
	QueryERC20Allowance   Kind = "query_erc20_allowance"
	QueryNFTOwner         Kind = "query_nft_owner"
	QueryBlockNumber      Kind = "query_current_block_number"
	QueryGasPrice         Kind = "query_gas_price"
	QueryTotalSupply      Kind = "query_token_total_supply"
	QueryStakedAmount     Kind = "query_staked_amount"
	QueryPendingRewards   Kind = "query_pending_rewards"
	QueryTransactionCount Kind = "query_transaction_count_nonce"
	QueryPairReserves     Kind = "query_pair_reserves"
	QueryNFTApproval      Kind = "query_nft_approval_status"
	QueryNFTBalance       Kind = "query_nft_balance"
	QueryNFTTokenURI      Kind = "query_nft_token_uri"
	QuerySwapInput        Kind = "query_swap_input_amount"
	QuerySwapOutput       Kind = "query_swap_output_amount"
	QueryTokenMetadata    Kind = "query_token_metadata"
)

// Function selectors for the well-known signatures the operations call.
// Selectors are fixed per signature, so no runtime hashing is needed; the
// table is cross-checked against keccak256 in tests.
const (
	selTransfer           = "0xa9059cbb" // transfer(address,uint256)
	selApprove            = "0x095ea7b3" // approve(address,uint256)
	selTransferFrom       = "0x23b872dd" // transferFrom(address,address,uint256)
	selIncreaseAllowance  = "0x39509351" // increaseAllowance(address,uint256)
	selDecreaseAllowance  = "0xa457c2d7" // decreaseAllowance(address,uint256)
	selApproveAndCall     = "0x3177029f" // approveAndCall(address,uint256)
	selApproveAndCallData = "0xcae9ca51" // approveAndCall(address,uint256,bytes)
	selTransferAndCall    = "0x1296ee62" // transferAndCall(address,uint256)
	selDeposit            = "0xd0e30db0" // deposit()
	selWithdraw           = "0x2e1a7d4d" // withdraw(uint256)
	selSafeTransfer721    = "0x42842e0e" // safeTransferFrom(address,address,uint256)
	selSetApprovalForAll  = "0xa22cb465" // setApprovalForAll(address,bool)
	selSafeTransfer1155   = "0xf242432a" // safeTransferFrom(address,address,uint256,uint256,bytes)
	selSwapExactTokens    = "0x38ed1739" // swapExactTokensForTokens(uint256,uint256,address[],address,uint256)
	selSwapExactETH       = "0x7ff36ab5" // swapExactETHForTokens(uint256,address[],address,uint256)
	selSwapTokensForETH   = "0x18cbafe5" // swapExactTokensForETH(uint256,uint256,address[],address,uint256)
	selSwapForExact       = "0x8803dbee" // swapTokensForExactTokens(uint256,uint256,address[],address,uint256)
	selAddLiquidity       = "0xe8e33700" // addLiquidity(address,address,uint256,uint256,uint256,uint256,address,uint256)
	selAddLiquidityETH    = "0xf305d719" // addLiquidityETH(address,uint256,uint256,uint256,address,uint256)
	selRemoveLiquidity    = "0xbaa2abde" // removeLiquidity(address,address,uint256,uint256,uint256,address,uint256)
	selRemoveLiquidityETH = "0x02751cec" // removeLiquidityETH(address,uint256,uint256,uint256,address,uint256)
	selIncrement          = "0xd09de08a" // increment()
	selUpdateData         = "0x368b8772" // setMessage(string)
	selContribute         = "0xed88c68e" // donate()
	selEmergencyWithdraw  = "0x5312ea8e" // emergencyWithdraw(uint256)
	selSetValue           = "0x55241077" // setValue(uint256)
	selFlashLoan          = "0x6065c245" // executeFlashLoan(address,uint256)
)

// Params is the task-generated ground truth an operation spec is constructed
// from. Expected balance deltas are always derived from these fields, never
// from decoded calldata; calldata only feeds the identity checks.
type Params struct {
	TokenAddress       string `yaml:"token_address" json:"token_address"`
	TargetTokenAddress string `yaml:"target_token_address" json:"target_token_address"`
	ContractAddress    string `yaml:"contract_address" json:"contract_address"`
	RouterAddress      string `yaml:"router_address" json:"router_address"`
	PoolAddress        string `yaml:"pool_address" json:"pool_address"`
	NFTAddress         string `yaml:"nft_address" json:"nft_address"`
	ToAddress          string `yaml:"to_address" json:"to_address"`
	FromAddress        string `yaml:"from_address" json:"from_address"`
	SpenderAddress     string `yaml:"spender_address" json:"spender_address"`
	OperatorAddress    string `yaml:"operator_address" json:"operator_address"`

	Amount     *big.Int `yaml:"-" json:"-"`
	AmountB    *big.Int `yaml:"-" json:"-"`
	AmountOut  *big.Int `yaml:"-" json:"-"`
	Liquidity  *big.Int `yaml:"-" json:"-"`
	TokenID    *big.Int `yaml:"-" json:"-"`
	Percentage int64    `yaml:"percentage" json:"percentage"`
	Approved   bool     `yaml:"approved" json:"approved"`

	// Expected metadata for token-metadata queries, used only when the
	// executor captured no reference in state_before.
	TokenName   string `yaml:"token_name" json:"token_name"`
	TokenSymbol string `yaml:"token_symbol" json:"token_symbol"`

	// Raw decimal/hex forms for the big integer fields, for YAML/JSON task
	// parameter files. Applied by Normalize.
	AmountRaw    string `yaml:"amount" json:"amount"`
	AmountBRaw   string `yaml:"amount_b" json:"amount_b"`
	AmountOutRaw string `yaml:"amount_out" json:"amount_out"`
	LiquidityRaw string `yaml:"liquidity" json:"liquidity"`
	TokenIDRaw   string `yaml:"token_id" json:"token_id"`

	// OptimalSteps enables step-decay scoring on the multi-turn path.
	OptimalSteps int `yaml:"optimal_steps" json:"optimal_steps"`
}

// Normalize fills the big integer fields from their raw string forms and
// defaults nil amounts to zero so spec construction never dereferences nil.
func (p *Params) Normalize() {
	fill := func(dst **big.Int, raw string) {
		if *dst == nil {
			*dst = parseAmount(raw)
		}
	}
	fill(&p.Amount, p.AmountRaw)
	fill(&p.AmountB, p.AmountBRaw)
	fill(&p.AmountOut, p.AmountOutRaw)
	fill(&p.Liquidity, p.LiquidityRaw)
	fill(&p.TokenID, p.TokenIDRaw)
}

func parseAmount(raw string) *big.Int {
	if raw == "" {
		return new(big.Int)
	}
	v, ok := new(big.Int).SetString(raw, 0)
	if !ok {
		return new(big.Int)
	}
	return v
}

// Spec is one operation's immutable validation recipe, constructed fresh per
// attempt from task parameters and never mutated during validation.
type Spec struct {
	Kind   Kind
	Checks []check.Check
	Policy check.PassPolicy
}

// AtomicValidator binds a Spec for evaluation. It holds no state across
// calls; Validate is a pure function of the envelope.
type AtomicValidator struct {
	spec Spec
}

// New constructs the validator for a kind from task parameters. Unknown
// kinds are configuration errors and surface as an error, not a panic.
func New(kind Kind, p Params) (*AtomicValidator, error) {
	build, ok := specTable[kind]
	if !ok {
		return nil, fmt.Errorf("unknown operation kind %q", kind)
	}
	p.Normalize()
	spec := build(p)
	spec.Kind = kind
	if f, ok := passFractionOverride(kind); ok && !spec.Policy.AllRequired {
		spec.Policy = check.Threshold(f)
	}
	return &AtomicValidator{spec: spec}, nil
}

// Kinds lists every operation kind in the table.
func Kinds() []Kind {
	out := make([]Kind, 0, len(specTable))
	for k := range specTable {
		out = append(out, k)
	}
	return out
}

// Known reports whether kind has a spec.
func Known(kind Kind) bool {
	_, ok := specTable[kind]
	return ok
}

// Spec exposes the bound spec, mainly for the registry and tests.
func (v *AtomicValidator) Spec() Spec { return v.spec }

// Validate evaluates the spec's checks in declared order against the
// envelope and returns the scored result. It never returns an error:
// malformed input degrades to failed checks.
func (v *AtomicValidator) Validate(env *envelope.Envelope) *check.ValidationResult {
	res := check.Evaluate(v.spec.Checks, v.spec.Policy, env)
	res.Details["operation"] = string(v.spec.Kind)
	return res
}
