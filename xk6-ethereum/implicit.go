package ethereum

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// ErrConflictingOverrides is wrapped by the UsageError returned when an invocation
// carries both a call and a transact override.
var ErrConflictingOverrides = errors.New("only one of call or transact options may be supplied")

var errUnknownFunction = errors.New("function not found in ABI")

// Mode is the execution path chosen for a single contract function invocation.
type Mode int

const (
	// ModeCall executes the function read-only via eth_call.
	ModeCall Mode = iota
	// ModeTransact submits a signed transaction invoking the function.
	ModeTransact
)

func (m Mode) String() string {
	switch m {
	case ModeCall:
		return "call"
	case ModeTransact:
		return "transact"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Override forces the execution path of one invocation. The zero value means
// no override: the ABI state mutability decides.
type Override struct {
	Call     *CallOpts
	Transact *TxnOpts
}

// CallOverride forces a read-only call with the given options.
func CallOverride(opts CallOpts) Override {
	return Override{Call: &opts}
}

// TransactOverride forces a transaction with the given options.
func TransactOverride(opts TxnOpts) Override {
	return Override{Transact: &opts}
}

// IsSet reports whether any override kind is present.
func (o Override) IsSet() bool {
	return o.Call != nil || o.Transact != nil
}

// Decision is the resolved execution path for one invocation.
type Decision struct {
	Mode       Mode
	Call       CallOpts
	Txn        TxnOpts
	Overridden bool
}

// UsageError reports an invocation that was rejected before reaching the node.
type UsageError struct {
	Function string
	Err      error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("invalid invocation of %q: %v", e.Function, e.Err)
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// NoticeKind classifies a deprecation notice.
type NoticeKind int

const (
	// NoticeImplicitContract is emitted once when an implicit contract is created.
	NoticeImplicitContract NoticeKind = iota
	// NoticeImplicitDispatch is emitted for every implicit invocation.
	NoticeImplicitDispatch
	// NoticeLegacyOverride is emitted when an invocation carries a call or transact override.
	NoticeLegacyOverride
)

// Notice is a structured deprecation diagnostic returned alongside a result.
type Notice struct {
	Kind    NoticeKind
	Message string
}

const (
	implicitContractMessage = "ImplicitContract is deprecated in favor of Contract.Call and Contract.Txn"
	implicitDispatchMessage = "implicit call/transact selection is deprecated in favor of classic contract syntax"
	legacyOverrideMessage   = "call/transact override options are deprecated in favor of classic contract syntax"
)

// InvocationResult carries either decoded outputs (call) or a transaction hash (transact).
type InvocationResult struct {
	Mode    Mode
	Outputs []any
	TxHash  string
	Notices []Notice
}

// Values returns the call outputs converted to plain values: hex strings for
// addresses and bytes, int64 or decimal strings for integers.
func (r *InvocationResult) Values() []any {
	if r == nil || len(r.Outputs) == 0 {
		return nil
	}

	values := make([]any, len(r.Outputs))
	for i, output := range r.Outputs {
		values[i] = normalizeValue(output)
	}

	return values
}

// resolveMode picks the execution path for one invocation of method.
// An override always wins over the ABI default; without one, view and pure
// functions are called and everything else is transacted.
func resolveMode(method abi.Method, override Override) (Decision, error) {
	switch {
	case override.Call != nil && override.Transact != nil:
		return Decision{}, &UsageError{Function: method.Name, Err: ErrConflictingOverrides}
	case override.Call != nil:
		return Decision{Mode: ModeCall, Call: *override.Call, Overridden: true}, nil
	case override.Transact != nil:
		return Decision{Mode: ModeTransact, Txn: *override.Transact, Overridden: true}, nil
	case method.IsConstant():
		return Decision{Mode: ModeCall}, nil
	default:
		return Decision{Mode: ModeTransact}, nil
	}
}

// ImplicitContract exposes contract functions through a single Invoke entry
// point that decides between call and transact per invocation.
//
// Deprecated: use Contract.Call and Contract.Txn.
type ImplicitContract struct {
	contract *Contract
	logger   func() logrus.FieldLogger
	notice   Notice
	report   func(Decision)
	defaults Defaults
}

// Defaults are the options used when the ABI state mutability picks the path.
type Defaults struct {
	Call CallOpts
	Txn  TxnOpts
}

// NewImplicitContract wraps contract in the implicit calling convention.
// A nil logger disables notice logging; notices are still returned.
func NewImplicitContract(contract *Contract, logger logrus.FieldLogger) (*ImplicitContract, error) {
	return newImplicitContract(contract, func() logrus.FieldLogger { return logger })
}

// newImplicitContract looks the logger up on every notice, so a contract built
// in the k6 init context logs through the VU logger once iterations run.
func newImplicitContract(contract *Contract, logger func() logrus.FieldLogger) (*ImplicitContract, error) {
	if contract == nil || contract.abi == nil || contract.backend == nil {
		return nil, errContractNotInitialized
	}

	ic := &ImplicitContract{
		contract: contract,
		logger:   logger,
		notice:   Notice{Kind: NoticeImplicitContract, Message: implicitContractMessage},
	}

	if log := ic.currentLogger(); log != nil {
		log.WithFields(logrus.Fields{
			"address":     contract.addr.Hex(),
			"deprecation": noticeTag(NoticeImplicitContract),
		}).Warn(ic.notice.Message)
	}

	return ic, nil
}

func (ic *ImplicitContract) currentLogger() logrus.FieldLogger {
	if ic.logger == nil {
		return nil
	}

	return ic.logger()
}

// SetDefaults sets the options applied to invocations without an override.
func (ic *ImplicitContract) SetDefaults(defaults Defaults) {
	ic.defaults = defaults
}

// ConstructionNotice returns the notice emitted when the contract was created.
func (ic *ImplicitContract) ConstructionNotice() Notice {
	return ic.notice
}

// Address returns the contract address.
func (ic *ImplicitContract) Address() common.Address {
	return ic.contract.addr
}

// Functions returns the ABI function names invocable through this contract, sorted.
func (ic *ImplicitContract) Functions() []string {
	return ic.contract.methodNames()
}

// Invoke resolves the execution path for the named function and runs it.
// Usage errors are returned before the backend is touched; backend errors are
// returned as-is and never retried.
func (ic *ImplicitContract) Invoke(ctx context.Context, name string, args []any, override Override) (*InvocationResult, error) {
	method, ok := ic.contract.abi.Methods[name]
	if !ok {
		return nil, &UsageError{Function: name, Err: errUnknownFunction}
	}

	decision, err := resolveMode(method, override)
	if err != nil {
		return nil, err
	}

	if !decision.Overridden {
		decision.Call = ic.defaults.Call
		decision.Txn = ic.defaults.Txn
	}

	notices := ic.notify(name, decision)

	if ic.report != nil {
		ic.report(decision)
	}

	result := &InvocationResult{Mode: decision.Mode, Notices: notices}

	switch decision.Mode {
	case ModeCall:
		result.Outputs, err = ic.contract.call(ctx, method, decision.Call, args)
	case ModeTransact:
		result.TxHash, err = ic.contract.transact(ctx, method, decision.Txn, args)
	}

	if err != nil {
		return nil, err
	}

	return result, nil
}

func (ic *ImplicitContract) notify(name string, decision Decision) []Notice {
	notices := []Notice{{Kind: NoticeImplicitDispatch, Message: implicitDispatchMessage}}
	if decision.Overridden {
		notices = append(notices, Notice{Kind: NoticeLegacyOverride, Message: legacyOverrideMessage})
	}

	logger := ic.currentLogger()
	if logger == nil {
		return notices
	}

	for _, notice := range notices {
		logger.WithFields(logrus.Fields{
			"method":      name,
			"mode":        decision.Mode.String(),
			"deprecation": noticeTag(notice.Kind),
		}).Warn(notice.Message)
	}

	return notices
}

func noticeTag(kind NoticeKind) string {
	switch kind {
	case NoticeImplicitContract:
		return "implicit_contract"
	case NoticeImplicitDispatch:
		return "implicit_dispatch"
	case NoticeLegacyOverride:
		return "legacy_override"
	default:
		return fmt.Sprintf("notice_%d", int(kind))
	}
}
