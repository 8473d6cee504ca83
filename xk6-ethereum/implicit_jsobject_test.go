package ethereum

import (
	"context"
	"testing"

	"github.com/grafana/sobek"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newScriptContract(t *testing.T, backend Backend) (*sobek.Runtime, *ImplicitContract) {
	t.Helper()

	ic, _ := newTestImplicit(t, backend)

	rt := sobek.New()
	require.NoError(t, rt.Set("math", newImplicitObject(rt, ic, context.Background)))

	return rt, ic
}

func TestScriptImplicitCall(t *testing.T) {
	backend := &mockBackend{}
	backend.On("ContractCall", mock.Anything, mock.Anything, selector(t, "counter"), CallOpts{}).Return(word(7), nil).Once()

	rt, _ := newScriptContract(t, backend)

	value, err := rt.RunString(`math.counter()`)
	require.NoError(t, err)
	require.Equal(t, int64(7), value.Export())

	backend.AssertExpectations(t)
}

func TestScriptImplicitTransact(t *testing.T) {
	backend := &mockBackend{}
	backend.On("ContractTransact", mock.Anything, mock.Anything, mock.Anything, TxnOpts{}).Return("0xfeed", nil).Once()

	rt, _ := newScriptContract(t, backend)

	value, err := rt.RunString(`math.incrementBy(3)`)
	require.NoError(t, err)
	require.Equal(t, "0xfeed", value.Export())

	backend.AssertExpectations(t)
}

func TestScriptOverrides(t *testing.T) {
	backend := &mockBackend{}
	backend.On("ContractTransact", mock.Anything, mock.Anything, selector(t, "counter"), TxnOpts{GasLimit: 60_000}).
		Return("0xbeef", nil).Once()
	backend.On("ContractCall", mock.Anything, mock.Anything, selector(t, "increment"), CallOpts{Block: "pending"}).
		Return(word(2), nil).Once()

	rt, _ := newScriptContract(t, backend)

	value, err := rt.RunString(`math.counter({transact: {gasLimit: 60000}})`)
	require.NoError(t, err)
	require.Equal(t, "0xbeef", value.Export())

	value, err = rt.RunString(`math.increment({call: {block: "pending"}})`)
	require.NoError(t, err)
	require.Equal(t, int64(2), value.Export())

	backend.AssertExpectations(t)
}

func TestScriptMultipleOutputs(t *testing.T) {
	backend := &mockBackend{}
	backend.On("ContractCall", mock.Anything, mock.Anything, selector(t, "stats"), CallOpts{}).
		Return(append(word(3), word(0)...), nil).Once()

	rt, _ := newScriptContract(t, backend)

	value, err := rt.RunString(`JSON.stringify(math.stats())`)
	require.NoError(t, err)
	require.Equal(t, `[3,"0x0000000000000000000000000000000000000000"]`, value.String())
}

func TestScriptInvalidOptionsThrow(t *testing.T) {
	scripts := map[string]string{
		"both overrides":   `math.counter({call: {}, transact: {}})`,
		"unknown option":   `math.counter({gas: 1})`,
		"unknown call key": `math.counter({call: {nonce: 1}})`,
	}

	for name, script := range scripts {
		t.Run(name, func(t *testing.T) {
			backend := &mockBackend{}
			rt, _ := newScriptContract(t, backend)

			_, err := rt.RunString(script)
			require.Error(t, err)

			var exception *sobek.Exception

			require.ErrorAs(t, err, &exception)
			require.Empty(t, backend.Calls)
		})
	}
}

func TestScriptErrorsCanBeCaught(t *testing.T) {
	rt, _ := newScriptContract(t, &mockBackend{})

	value, err := rt.RunString(`
		let message = "";
		try {
			math.counter({call: {}, transact: {}});
		} catch (e) {
			message = String(e);
		}
		message;
	`)
	require.NoError(t, err)
	require.Contains(t, value.String(), "only one of call or transact")
}

func TestScriptObjectShape(t *testing.T) {
	rt, _ := newScriptContract(t, &mockBackend{})

	value, err := rt.RunString(`math.address`)
	require.NoError(t, err)
	require.Equal(t, mathAddress, value.String())

	value, err = rt.RunString(`Object.keys(math).join(",")`)
	require.NoError(t, err)
	require.Equal(t, "address,add,counter,deposit,increment,incrementBy,stats", value.String())

	value, err = rt.RunString(`typeof math.decrement`)
	require.NoError(t, err)
	require.Equal(t, "undefined", value.String())
}

func TestSplitInvocationOptions(t *testing.T) {
	args, override, err := splitInvocationOptions("incrementBy", 1, []any{int64(1)})
	require.NoError(t, err)
	require.Equal(t, []any{int64(1)}, args)
	require.False(t, override.IsSet())

	args, override, err = splitInvocationOptions("incrementBy", 1, []any{int64(1), map[string]any{"call": nil}})
	require.NoError(t, err)
	require.Equal(t, []any{int64(1)}, args)
	require.NotNil(t, override.Call)
	require.Nil(t, override.Transact)

	_, override, err = splitInvocationOptions("increment", 0, []any{map[string]any{"transact": map[string]any{"nonce": int64(0)}}})
	require.NoError(t, err)
	require.NotNil(t, override.Transact)
	require.NotNil(t, override.Transact.Nonce, "nonce 0 is kept")
	require.Zero(t, *override.Transact.Nonce)

	args, _, err = splitInvocationOptions("incrementBy", 1, []any{int64(1), int64(2)})
	require.NoError(t, err)
	require.Len(t, args, 2, "non-object extra argument is left for the argument count check")
}

func TestClientImplicitContractRequiresVU(t *testing.T) {
	_, err := (&Client{}).NewImplicitContract(mathAddress, mathABI)
	require.ErrorIs(t, err, errVUNotAvailable)
}
