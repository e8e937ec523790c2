package ops

import (
	"math/big"

	"github.com/questbench/txvalidator/internal/check"
	"github.com/questbench/txvalidator/internal/tolerance"
)

// Snapshot field names the executor populates. The snapshot is an open map;
// these are the keys the table reads.
const (
	keyBalance         = "balance"
	keyTokenBalance    = "token_balance"
	keyTargetBalance   = "target_token_balance"
	keyAllowance       = "allowance"
	keyNFTOwner        = "nft_owner"
	keyNFTApproved     = "nft_approved"
	keyApprovedForAll  = "approved_for_all"
	keyCounterValue    = "counter_value"
	keyContractValue   = "contract_value"
	keyContractBalance = "contract_balance"
	keyStakedAmount    = "staked_amount"
	keyLPTokenBalance  = "lp_token_balance"
	keyProxyValue      = "proxy_value"
	keyImplValue       = "implementation_value"
	keyTargetNative    = "target_balance"
	keyNFTBalance      = "nft_balance"
)

// maxRemainingDust is the residue allowed after a "send everything" native
// transfer: 0.0001 BNB.
var maxRemainingDust = big.NewInt(100_000_000_000_000)

var one = big.NewInt(1)

func txOK(w int) check.Check {
	return check.Check{Name: "Transaction Success", Kind: check.TxSuccess, Weight: w}
}

func queryOK(w int) check.Check {
	return check.Check{Name: "Query Execution Success", Kind: check.QuerySuccess, Weight: w}
}

func sel(w int, selector string) check.Check {
	return check.Check{Name: "Function Signature", Kind: check.SelectorEq, Weight: w, Selector: selector}
}

func toAddr(w int, name, addr string) check.Check {
	return check.Check{Name: name, Kind: check.ToAddress, Weight: w, ExpectedAddr: addr}
}

func decrease(w int, name, key string, expected *big.Int, tol tolerance.Policy) check.Check {
	return check.Check{Name: name, Kind: check.BalanceDelta, Weight: w, BeforeKey: key, Decrease: true, Expected: expected, Tol: tol}
}

func increase(w int, name, key string, expected *big.Int, tol tolerance.Policy) check.Check {
	return check.Check{Name: name, Kind: check.BalanceDelta, Weight: w, BeforeKey: key, Expected: expected, Tol: tol}
}

func anyIncrease(w int, name, key string) check.Check {
	return increase(w, name, key, one, tolerance.AtLeast())
}

func fields(w int, keys ...string) check.Check {
	return check.Check{Name: "Return Format Correct", Kind: check.FieldPresent, Weight: w, Keys: keys}
}

func valueEq(w int, name, dataKey, refKey string, tol tolerance.Policy) check.Check {
	return check.Check{Name: name, Kind: check.ValueEq, Weight: w, DataKey: dataKey, RefKey: refKey, Tol: tol}
}

func approval(w int, amount *big.Int) check.Check {
	return check.Check{Name: "Token Approval", Kind: check.ApprovalHandled, Weight: w, BeforeKey: keyAllowance, Expected: amount}
}

func idx(i int) *int { return &i }

// specTable maps every operation kind to its spec builder. Pass thresholds
// differ by difficulty tier (0.8 transfers, 0.7 liquidity, 0.6 chain-info
// queries) and are deliberately not unified with the all-required operations.
var specTable = map[Kind]func(Params) Spec{
	BNBTransfer: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			toAddr(20, "Recipient Address", p.ToAddress),
			{Name: "Transfer Amount", Kind: check.TxValue, Weight: 20, Expected: p.Amount, Tol: tolerance.Fixed(10, 0)},
			{Name: "Sender Balance Change", Kind: check.BalanceDelta, Weight: 30, BeforeKey: keyBalance, Decrease: true,
				Expected: p.Amount, Mode: check.ExpPlusGas, Tol: tolerance.Fixed(10, 0)},
		}}
	},

	BNBTransferMaxAmount: func(p Params) Spec {
		return Spec{Policy: check.Threshold(0.8), Checks: []check.Check{
			txOK(30),
			toAddr(20, "Recipient Address", p.ToAddress),
			{Name: "Maximum Amount Transferred", Kind: check.TxValue, Weight: 30, Mode: check.ExpMaxNative,
				RefKey: keyBalance, Tol: tolerance.Fixed(1000, 10)},
			{Name: "Sender Balance Minimal", Kind: check.StateValue, Weight: 20, AfterKey: keyBalance,
				Tol: tolerance.FixedBig(maxRemainingDust, 0)},
		}}
	},

	BNBTransferWithMessage: func(p Params) Spec {
		return Spec{Policy: check.Threshold(0.8), Checks: []check.Check{
			txOK(30),
			toAddr(20, "Recipient Address", p.ToAddress),
			{Name: "Transfer Amount", Kind: check.TxValue, Weight: 20, Expected: p.Amount, Tol: tolerance.Fixed(10, 0)},
			{Name: "Message Payload", Kind: check.DataPresent, Weight: 30},
		}}
	},

	ERC20Transfer: func(p Params) Spec {
		return Spec{Policy: check.Threshold(0.8), Checks: []check.Check{
			txOK(30),
			toAddr(20, "Contract Address", p.TokenAddress),
			sel(20, selTransfer),
			decrease(15, "Sender Balance Decrease", keyTokenBalance, p.Amount, tolerance.Fixed(0, 10)),
			increase(15, "Receiver Balance Increase", keyTargetBalance, p.Amount, tolerance.Fixed(0, 10)),
		}}
	},

	ERC20TransferPct: func(p Params) Spec {
		return Spec{Policy: check.Threshold(0.8), Checks: []check.Check{
			txOK(30),
			toAddr(20, "Contract Address", p.TokenAddress),
			sel(10, selTransfer),
			{Name: "Transfer Amount (Percentage)", Kind: check.BalanceDelta, Weight: 30, BeforeKey: keyTokenBalance,
				Decrease: true, Mode: check.ExpPercentBefore, Percent: p.Percentage, Tol: tolerance.Fixed(0, 200)},
			{Name: "Receiver Balance Increase", Kind: check.BalanceDelta, Weight: 10, BeforeKey: keyTargetBalance,
				RefKey: keyTokenBalance, Mode: check.ExpPercentBefore, Percent: p.Percentage, Tol: tolerance.Fixed(0, 200)},
		}}
	},

	ERC20TransferMax: func(p Params) Spec {
		return Spec{Policy: check.Threshold(0.8), Checks: []check.Check{
			txOK(30),
			toAddr(20, "Contract Address", p.TokenAddress),
			sel(10, selTransfer),
			{Name: "Maximum Amount Transferred", Kind: check.BalanceDelta, Weight: 20, BeforeKey: keyTokenBalance,
				Decrease: true, Mode: check.ExpBefore, Tol: tolerance.Fixed(1, 10)},
			{Name: "Receiver Balance Increase", Kind: check.BalanceDelta, Weight: 20, BeforeKey: keyTargetBalance,
				RefKey: keyTokenBalance, Mode: check.ExpBefore, Tol: tolerance.Fixed(1, 10)},
		}}
	},

	ERC20TransferFrom: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(20),
			sel(20, selTransferFrom),
			decrease(20, "Allowance Decrease", keyAllowance, p.Amount, tolerance.Fixed(0, 100)),
			decrease(20, "From Balance Decrease", keyTokenBalance, p.Amount, tolerance.Fixed(0, 100)),
			increase(20, "To Balance Increase", keyTargetBalance, p.Amount, tolerance.Fixed(0, 100)),
		}}
	},

	ERC20Burn: func(p Params) Spec {
		return Spec{Policy: check.Threshold(0.8), Checks: []check.Check{
			txOK(30),
			toAddr(20, "Contract Address", p.TokenAddress),
			sel(20, selTransfer),
			decrease(30, "Balance Decrease", keyTokenBalance, p.Amount, tolerance.Fixed(1, 10)),
		}}
	},

	ERC20Approve: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			sel(20, selApprove),
			{Name: "Allowance Set Correctly", Kind: check.StateValue, Weight: 40, AfterKey: keyAllowance,
				Expected: p.Amount, Tol: tolerance.Fixed(0, 100)},
			increase(10, "No Token Transfer", keyTokenBalance, new(big.Int), tolerance.Fixed(0, 0)),
		}}
	},

	ERC20IncreaseAllowance: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			sel(20, selIncreaseAllowance),
			increase(40, "Allowance Increase", keyAllowance, p.Amount, tolerance.Fixed(0, 100)),
			increase(10, "No Token Transfer", keyTokenBalance, new(big.Int), tolerance.Fixed(0, 0)),
		}}
	},

	ERC20DecreaseAllowance: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			sel(20, selDecreaseAllowance),
			decrease(40, "Allowance Decrease", keyAllowance, p.Amount, tolerance.Fixed(0, 100)),
			increase(10, "No Token Transfer", keyTokenBalance, new(big.Int), tolerance.Fixed(0, 0)),
		}}
	},

	ERC20ApproveAndCall: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			toAddr(20, "Contract Address", p.TokenAddress),
			{Name: "Function Signature", Kind: check.SelectorEq, Weight: 20, Selector: selApproveAndCall, AltSelector: selApproveAndCallData},
			{Name: "Allowance Set Correctly", Kind: check.StateValue, Weight: 30, AfterKey: keyAllowance,
				Expected: p.Amount, Tol: tolerance.Fixed(0, 100)},
		}}
	},

	ERC20TransferCallback: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			toAddr(20, "Contract Address", p.TokenAddress),
			sel(20, selTransferAndCall),
			decrease(15, "Sender Balance Decrease", keyTokenBalance, p.Amount, tolerance.Fixed(0, 10)),
			increase(15, "Receiver Balance Increase", keyTargetBalance, p.Amount, tolerance.Fixed(0, 10)),
		}}
	},

	WBNBDeposit: func(p Params) Spec {
		return Spec{Policy: check.Threshold(0.8), Checks: []check.Check{
			txOK(30),
			toAddr(20, "Contract Address", p.TokenAddress),
			sel(20, selDeposit),
			{Name: "Deposit Amount", Kind: check.TxValue, Weight: 20, Expected: p.Amount, Tol: tolerance.Fixed(0, 10)},
			increase(10, "WBNB Balance Increase", keyTokenBalance, p.Amount, tolerance.Fixed(0, 10)),
		}}
	},

	WBNBWithdraw: func(p Params) Spec {
		return Spec{Policy: check.Threshold(0.8), Checks: []check.Check{
			txOK(30),
			toAddr(20, "Contract Address", p.TokenAddress),
			sel(20, selWithdraw),
			decrease(15, "WBNB Balance Decrease", keyTokenBalance, p.Amount, tolerance.Fixed(0, 10)),
			{Name: "BNB Balance Increase", Kind: check.BalanceDelta, Weight: 15, BeforeKey: keyBalance,
				Expected: p.Amount, Mode: check.ExpMinusGas, Tol: tolerance.Fixed(0, 10)},
		}}
	},

	ERC721SafeTransfer: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			sel(30, selSafeTransfer721),
			{Name: "NFT Ownership Transfer", Kind: check.StateAddress, Weight: 40, AfterKey: keyNFTOwner, ExpectedAddr: p.ToAddress},
		}}
	},

	ERC721Approve: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			toAddr(20, "Contract Address", p.NFTAddress),
			sel(20, selApprove),
			{Name: "Approval Set", Kind: check.StateAddress, Weight: 30, AfterKey: keyNFTApproved, ExpectedAddr: p.OperatorAddress},
		}}
	},

	ERC721SetApprovalAll: func(p Params) Spec {
		expected := new(big.Int)
		if p.Approved {
			expected = big.NewInt(1)
		}
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			toAddr(20, "Contract Address", p.NFTAddress),
			sel(20, selSetApprovalForAll),
			{Name: "Operator Approval", Kind: check.StateValue, Weight: 30, AfterKey: keyApprovedForAll,
				Expected: expected, Tol: tolerance.Exact()},
		}}
	},

	ERC1155TransferSingle: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			toAddr(20, "Contract Address", p.NFTAddress),
			sel(20, selSafeTransfer1155),
			decrease(15, "Sender Balance Decrease", keyTokenBalance, p.Amount, tolerance.Exact()),
			increase(15, "Receiver Balance Increase", keyTargetBalance, p.Amount, tolerance.Exact()),
		}}
	},

	ERC1155TransferData: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(25),
			toAddr(15, "Contract Address", p.NFTAddress),
			sel(15, selSafeTransfer1155),
			// The bytes argument is the 5th head word of safeTransferFrom.
			{Name: "Data Parameter", Kind: check.DataPresent, Weight: 15, WordIndex: 4, MinLen: 1},
			decrease(15, "Sender Balance Decrease", keyTokenBalance, p.Amount, tolerance.Exact()),
			increase(15, "Receiver Balance Increase", keyTargetBalance, p.Amount, tolerance.Exact()),
		}}
	},

	SwapExactTokens: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			approval(15, p.Amount),
			toAddr(10, "Router Contract", p.RouterAddress),
			sel(10, selSwapExactTokens),
			decrease(20, "Input Token Balance Decrease", keyTokenBalance, p.Amount, tolerance.Fixed(10, 0)),
			anyIncrease(15, "Output Token Balance Increase", keyTargetBalance),
		}}
	},

	SwapExactBNBForTokens: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			toAddr(15, "Router Contract", p.RouterAddress),
			sel(15, selSwapExactETH),
			{Name: "BNB Balance Decrease", Kind: check.BalanceDelta, Weight: 20, BeforeKey: keyBalance,
				Decrease: true, Expected: p.Amount, Mode: check.ExpPlusGas, Tol: tolerance.Fixed(0, 10)},
			anyIncrease(20, "Token Balance Increase", keyTargetBalance),
		}}
	},

	SwapExactTokensForBNB: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			approval(15, p.Amount),
			toAddr(10, "Router Contract", p.RouterAddress),
			sel(10, selSwapTokensForETH),
			decrease(20, "Token Balance Decrease", keyTokenBalance, p.Amount, tolerance.Fixed(10, 0)),
			anyIncrease(15, "BNB Balance Increase", keyBalance),
		}}
	},

	SwapTokensForExact: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			approval(15, p.Amount),
			toAddr(10, "Router Contract", p.RouterAddress),
			sel(10, selSwapForExact),
			increase(20, "Exact Output Received", keyTargetBalance, p.AmountOut, tolerance.Fixed(10, 0)),
			decrease(15, "Input Token Spent", keyTokenBalance, one, tolerance.AtLeast()),
		}}
	},

	SwapMultihop: func(p Params) Spec {
		return Spec{Policy: check.Threshold(0.8), Checks: []check.Check{
			txOK(30),
			toAddr(10, "Router Contract", p.RouterAddress),
			sel(10, selSwapExactTokens),
			// path is the 3rd argument of swapExactTokensForTokens.
			{Name: "Multi-Hop Path", Kind: check.PathLength, Weight: 20, WordIndex: 2, MinLen: 3},
			anyIncrease(30, "Output Token Balance Increase", keyTargetBalance),
		}}
	},

	AddLiquidityTokens: func(p Params) Spec {
		return Spec{Policy: check.Threshold(0.7), Checks: []check.Check{
			txOK(30),
			approval(10, p.Amount),
			{Name: "Token B Approval", Kind: check.ApprovalHandled, Weight: 10, BeforeKey: keyAllowance, Expected: p.AmountB},
			toAddr(10, "Correct Router", p.RouterAddress),
			sel(5, selAddLiquidity),
			decrease(15, "Token A Deposited", keyTokenBalance, p.Amount, tolerance.Band(5000, 15000)),
			decrease(15, "Token B Deposited", keyTargetBalance, p.AmountB, tolerance.Band(5000, 15000)),
			anyIncrease(5, "LP Tokens Received", keyLPTokenBalance),
		}}
	},

	AddLiquidityBNB: func(p Params) Spec {
		return Spec{Policy: check.Threshold(0.7), Checks: []check.Check{
			txOK(30),
			toAddr(10, "Correct Router", p.RouterAddress),
			sel(5, selAddLiquidityETH),
			{Name: "BNB Amount", Kind: check.TxValue, Weight: 15, Expected: p.Amount, Tol: tolerance.Fixed(0, 100)},
			decrease(20, "Token Deposited", keyTokenBalance, p.AmountB, tolerance.Band(5000, 15000)),
			anyIncrease(20, "LP Tokens Received", keyLPTokenBalance),
		}}
	},

	RemoveLiquidityTokens: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			toAddr(10, "Correct Router", p.RouterAddress),
			sel(10, selRemoveLiquidity),
			decrease(20, "LP Tokens Burned", keyLPTokenBalance, p.Liquidity, tolerance.Band(9900, 10100)),
			anyIncrease(15, "Token A Received", keyTokenBalance),
			anyIncrease(15, "Token B Received", keyTargetBalance),
		}}
	},

	RemoveLiquidityBNB: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			toAddr(10, "Correct Router", p.RouterAddress),
			sel(10, selRemoveLiquidityETH),
			decrease(20, "LP Tokens Burned", keyLPTokenBalance, p.Liquidity, tolerance.Band(9900, 10100)),
			anyIncrease(15, "Token Received", keyTokenBalance),
			anyIncrease(15, "BNB Received", keyBalance),
		}}
	},

	StakeSingleToken: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(25),
			approval(20, p.Amount),
			decrease(25, "Token Balance Decrease", keyTokenBalance, p.Amount, tolerance.Fixed(0, 100)),
			increase(30, "Staking Balance Increase", keyStakedAmount, p.Amount, tolerance.Fixed(0, 100)),
		}}
	},

	StakeLPTokens: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			approval(15, p.Amount),
			decrease(25, "LP Balance Decrease", keyLPTokenBalance, p.Amount, tolerance.Fixed(0, 100)),
			increase(30, "Staked Amount Increase", keyStakedAmount, p.Amount, tolerance.Fixed(0, 100)),
		}}
	},

	UnstakeLPTokens: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			decrease(35, "Staked Amount Decrease", keyStakedAmount, p.Amount, tolerance.Fixed(0, 100)),
			increase(35, "LP Balance Increase", keyLPTokenBalance, p.Amount, tolerance.Fixed(0, 100)),
		}}
	},

	HarvestRewards: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			anyIncrease(70, "Reward Token Balance Increase", keyTokenBalance),
		}}
	},

	EmergencyWithdraw: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			{Name: "Staked Amount Zeroed", Kind: check.StateValue, Weight: 35, AfterKey: keyStakedAmount, Tol: tolerance.Exact()},
			{Name: "LP Tokens Returned", Kind: check.BalanceDelta, Weight: 35, BeforeKey: keyLPTokenBalance,
				RefKey: keyStakedAmount, Mode: check.ExpBefore, Tol: tolerance.Fixed(0, 100)},
		}}
	},

	ContractCallSimple: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(40),
			toAddr(20, "Contract Address", p.ContractAddress),
			sel(20, selIncrement),
			increase(20, "Counter Incremented", keyCounterValue, one, tolerance.Exact()),
		}}
	},

	ContractCallParams: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			toAddr(20, "Contract Address", p.ContractAddress),
			sel(20, selUpdateData),
			{Name: "Stored Value Updated", Kind: check.StateValue, Weight: 30, AfterKey: keyContractValue,
				Expected: p.Amount, Tol: tolerance.Exact()},
		}}
	},

	ContractCallValue: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			toAddr(20, "Contract Address", p.ContractAddress),
			sel(20, selContribute),
			{Name: "Transaction Value", Kind: check.TxValue, Weight: 15, Expected: p.Amount, Tol: tolerance.Fixed(1, 0)},
			increase(15, "Contract Balance Increase", keyContractBalance, p.Amount, tolerance.Fixed(1, 0)),
		}}
	},

	ContractDelegateCall: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			toAddr(20, "Proxy Contract Address", p.ContractAddress),
			sel(20, selSetValue),
			{Name: "Proxy Storage Updated", Kind: check.StateValue, Weight: 15, AfterKey: keyProxyValue,
				Expected: p.Amount, Tol: tolerance.Exact()},
			// delegatecall writes through the proxy's storage; the
			// implementation's own slot must stay untouched.
			increase(15, "Implementation Storage Unchanged", keyImplValue, new(big.Int), tolerance.Exact()),
		}}
	},

	ContractPayable: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			toAddr(20, "Contract Address", p.ContractAddress),
			{Name: "BNB Amount", Kind: check.TxValue, Weight: 20, Expected: p.Amount, Tol: tolerance.Fixed(10, 0)},
			{Name: "Empty Data Field", Kind: check.DataEmpty, Weight: 15},
			increase(15, "Contract Balance Increase", keyTargetNative, p.Amount, tolerance.FixedBig(maxRemainingDust, 0)),
		}}
	},

	ERC20Flashloan: func(p Params) Spec {
		fee := new(big.Int).Mul(p.Amount, big.NewInt(p.Percentage))
		fee.Quo(fee, big.NewInt(100))
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(30),
			toAddr(20, "Contract Address", p.ContractAddress),
			sel(20, selFlashLoan),
			// The loan itself nets to zero within the tx; only the fee leaves
			// the borrower's balance.
			decrease(30, "Fee Payment", keyTokenBalance, fee, tolerance.Fixed(1, 100)),
		}}
	},

	ERC20Permit: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			txOK(40),
			{Name: "Allowance Set Correctly", Kind: check.StateValue, Weight: 60, AfterKey: keyAllowance,
				Expected: p.Amount, Tol: tolerance.Exact()},
		}}
	},

	QueryBNBBalance: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			queryOK(30),
			fields(30, "balance_wei"),
			valueEq(40, "Balance Correctness", "balance_wei", keyBalance, tolerance.Exact()),
		}}
	},

	QueryERC20Balance: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			queryOK(30),
			fields(30, "balance_raw"),
			valueEq(40, "Balance Correctness", "balance_raw", keyTokenBalance, tolerance.Exact()),
		}}
	},

	QueryERC20Allowance: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			queryOK(30),
			fields(30, "allowance_raw"),
			valueEq(40, "Allowance Correctness", "allowance_raw", keyAllowance, tolerance.Exact()),
		}}
	},

	QueryNFTOwner: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			queryOK(30),
			fields(30, "owner"),
			valueEq(40, "Owner Correctness", "owner", keyNFTOwner, tolerance.Exact()),
		}}
	},

	QueryBlockNumber: func(p Params) Spec {
		return Spec{Policy: check.Threshold(0.6), Checks: []check.Check{
			queryOK(50),
			fields(25, "block_number"),
			valueEq(25, "Block Number Validity", "block_number", "reference_block_number", tolerance.Fixed(100, 0)),
		}}
	},

	QueryGasPrice: func(p Params) Spec {
		return Spec{Policy: check.Threshold(0.6), Checks: []check.Check{
			queryOK(50),
			fields(25, "max_fee_per_gas", "max_priority_fee_per_gas"),
			// Gas prices move block to block; anything within 0.1x-10x of
			// the reference captured at setup counts.
			valueEq(25, "Gas Price Validity", "max_fee_per_gas", "reference_max_fee_per_gas", tolerance.Band(1000, 100000)),
		}}
	},

	QueryTotalSupply: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			queryOK(30),
			fields(30, "totalSupply"),
			valueEq(40, "Total Supply Correctness", "totalSupply", "token_total_supply", tolerance.Fixed(0, 10)),
		}}
	},

	QueryStakedAmount: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			queryOK(30),
			fields(30, "staked_amount"),
			valueEq(40, "Staked Amount Correctness", "staked_amount", keyStakedAmount, tolerance.Fixed(0, 100)),
		}}
	},

	QueryPendingRewards: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			queryOK(30),
			fields(30, "pending_rewards"),
			// Rewards accrue per block between capture and query; 5% drift.
			valueEq(40, "Pending Rewards Correctness", "pending_rewards", "pending_rewards", tolerance.Fixed(0, 500)),
		}}
	},

	QueryTransactionCount: func(p Params) Spec {
		return Spec{Policy: check.Threshold(0.6), Checks: []check.Check{
			queryOK(50),
			fields(25, "nonce"),
			valueEq(25, "Nonce Validity", "nonce", "reference_nonce", tolerance.Fixed(2, 0)),
		}}
	},

	QueryPairReserves: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			queryOK(30),
			fields(30, "reserve0", "reserve1"),
			valueEq(20, "Reserve0 Correctness", "reserve0", "reserve0", tolerance.Fixed(0, 100)),
			valueEq(20, "Reserve1 Correctness", "reserve1", "reserve1", tolerance.Fixed(0, 100)),
		}}
	},

	QueryNFTApproval: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			queryOK(30),
			fields(30, "approved_address"),
			valueEq(40, "Approved Address Correctness", "approved_address", "approved_address", tolerance.Exact()),
		}}
	},

	QueryNFTBalance: func(p Params) Spec {
		return Spec{Policy: check.Threshold(0.6), Checks: []check.Check{
			queryOK(40),
			fields(30, "balance"),
			valueEq(30, "Balance Correctness", "balance", keyNFTBalance, tolerance.Exact()),
		}}
	},

	QueryNFTTokenURI: func(p Params) Spec {
		return Spec{Policy: check.Threshold(0.6), Checks: []check.Check{
			queryOK(40),
			fields(30, "tokenURI"),
			{Name: "Token URI Validation", Kind: check.DataStringEq, Weight: 30, DataKey: "tokenURI", RefKey: "token_uri"},
		}}
	},

	QuerySwapInput: func(p Params) Spec {
		return Spec{Policy: check.Threshold(0.6), Checks: []check.Check{
			queryOK(30),
			fields(30, "amounts", "amount_in", "amount_out"),
			{Name: "Input Amount Correctness", Kind: check.ValueEq, Weight: 20, DataKey: "amount_in",
				RefKey: "expected_amounts", RefIdx: idx(0), Tol: tolerance.Fixed(0, 100)},
			{Name: "Output Amount Correctness", Kind: check.ValueEq, Weight: 20, DataKey: "amount_out",
				RefKey: "expected_amounts", RefIdx: idx(-1), Tol: tolerance.Fixed(0, 100)},
		}}
	},

	QuerySwapOutput: func(p Params) Spec {
		return Spec{Policy: check.AllRequired(), Checks: []check.Check{
			queryOK(30),
			fields(30, "amounts"),
			{Name: "Output Amount Correctness", Kind: check.ValueEq, Weight: 40, DataKey: "amounts", DataIdx: idx(-1),
				RefKey: "expected_amounts", RefIdx: idx(-1), Tol: tolerance.Fixed(0, 100)},
		}}
	},

	QueryTokenMetadata: func(p Params) Spec {
		return Spec{Policy: check.Threshold(0.6), Checks: []check.Check{
			queryOK(25),
			fields(25, "name", "symbol", "decimals", "totalSupply"),
			{Name: "Name Correctness", Kind: check.DataStringEq, Weight: 15, DataKey: "name",
				RefKey: "token_name", ExpectedStr: p.TokenName},
			{Name: "Symbol Correctness", Kind: check.DataStringEq, Weight: 15, DataKey: "symbol",
				RefKey: "token_symbol", ExpectedStr: p.TokenSymbol},
			valueEq(20, "Decimals Correctness", "decimals", "token_decimals", tolerance.Exact()),
		}}
	},
}
