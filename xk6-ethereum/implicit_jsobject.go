package ethereum

import (
	"context"
	"errors"
	"fmt"

	"github.com/grafana/sobek"
	jscommon "go.k6.io/k6/js/common"
)

var (
	errUnknownOverrideKey = errors.New("unknown invocation option, expected call or transact")
	errInvalidOverride    = errors.New("invalid invocation options")
	errVUNotAvailable     = errors.New("implicit contracts can only be created inside a VU")
)

const implicitAddressKey = "address"

// NewImplicitContract returns a script object with one function per ABI
// function. Each function accepts the ABI arguments followed by an optional
// options object {call: {...}} or {transact: {...}} forcing the execution path.
//
// Deprecated: use NewContract with Call and Txn.
func (c *Client) NewImplicitContract(address string, abiStr string) (*sobek.Object, error) {
	if c.vu == nil {
		return nil, errVUNotAvailable
	}

	contract, err := c.NewContract(address, abiStr)
	if err != nil {
		return nil, err
	}

	ic, err := newImplicitContract(contract, c.getLogger)
	if err != nil {
		return nil, err
	}

	ic.report = c.reportImplicitDispatch

	return newImplicitObject(c.vu.Runtime(), ic, c.getBaseContext), nil
}

// implicitObject backs the script object of an ImplicitContract. It is read-only.
type implicitObject struct {
	rt        *sobek.Runtime
	ic        *ImplicitContract
	ctx       func() context.Context
	functions map[string]sobek.Value
}

func newImplicitObject(rt *sobek.Runtime, ic *ImplicitContract, ctx func() context.Context) *sobek.Object {
	obj := &implicitObject{
		rt:        rt,
		ic:        ic,
		ctx:       ctx,
		functions: make(map[string]sobek.Value),
	}

	for _, name := range ic.Functions() {
		obj.functions[name] = rt.ToValue(obj.invoker(name))
	}

	return rt.NewDynamicObject(obj)
}

func (o *implicitObject) Get(key string) sobek.Value {
	if key == implicitAddressKey {
		return o.rt.ToValue(o.ic.Address().Hex())
	}

	if fn, ok := o.functions[key]; ok {
		return fn
	}

	return nil
}

func (o *implicitObject) Set(string, sobek.Value) bool { return false }

func (o *implicitObject) Has(key string) bool {
	if key == implicitAddressKey {
		return true
	}

	_, ok := o.functions[key]

	return ok
}

func (o *implicitObject) Delete(string) bool { return false }

func (o *implicitObject) Keys() []string {
	keys := []string{implicitAddressKey}

	for _, name := range o.ic.Functions() {
		if name != implicitAddressKey {
			keys = append(keys, name)
		}
	}

	return keys
}

func (o *implicitObject) invoker(name string) func(sobek.FunctionCall) sobek.Value {
	return func(call sobek.FunctionCall) sobek.Value {
		args := make([]any, len(call.Arguments))
		for i, arg := range call.Arguments {
			args[i] = arg.Export()
		}

		method := o.ic.contract.abi.Methods[name]

		args, override, err := splitInvocationOptions(name, len(method.Inputs), args)
		if err != nil {
			jscommon.Throw(o.rt, err)
		}

		result, err := o.ic.Invoke(o.ctx(), name, args, override)
		if err != nil {
			jscommon.Throw(o.rt, err)
		}

		return o.rt.ToValue(scriptResult(result))
	}
}

// splitInvocationOptions separates a trailing options object from the ABI
// arguments. The object is only recognized when exactly one extra argument is
// given, so functions taking a tuple are unaffected.
func splitInvocationOptions(name string, inputs int, args []any) ([]any, Override, error) {
	if len(args) != inputs+1 {
		return args, Override{}, nil
	}

	options, ok := args[inputs].(map[string]any)
	if !ok {
		return args, Override{}, nil
	}

	override, err := parseOverride(options)
	if err != nil {
		return nil, Override{}, &UsageError{Function: name, Err: err}
	}

	return args[:inputs], override, nil
}

func parseOverride(options map[string]any) (Override, error) {
	var override Override

	for key, value := range options {
		switch key {
		case "call":
			var opts CallOpts
			if err := decodeOptional(value, &opts); err != nil {
				return Override{}, fmt.Errorf("%w: call: %w", errInvalidOverride, err)
			}

			override.Call = &opts
		case "transact":
			var opts TxnOpts
			if err := decodeOptional(value, &opts); err != nil {
				return Override{}, fmt.Errorf("%w: transact: %w", errInvalidOverride, err)
			}

			override.Transact = &opts
		default:
			return Override{}, fmt.Errorf("%w: %q", errUnknownOverrideKey, key)
		}
	}

	return override, nil
}

func decodeOptional(value any, target any) error {
	if value == nil {
		return nil
	}

	return decodeStrict(value, target)
}

// scriptResult shapes an invocation result for scripts: the transaction hash
// for transactions, the single output or an array of outputs for calls.
func scriptResult(result *InvocationResult) any {
	if result.Mode == ModeTransact {
		return result.TxHash
	}

	values := result.Values()

	switch len(values) {
	case 0:
		return nil
	case 1:
		return values[0]
	default:
		return values
	}
}
