package ethereum

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Static errors for ABI argument conversion.
var (
	errInvalidArgCount    = errors.New("invalid arg count")
	errInvalidAddressType = errors.New("expected address string")
	errInvalidNumberType  = errors.New("expected number or numeric string")
	errInvalidBoolType    = errors.New("expected boolean")
	errInvalidStringType  = errors.New("expected string")
	errInvalidBytesType   = errors.New("expected hex string or bytes")
	errInvalidArrayType   = errors.New("expected array")
	errArrayLength        = errors.New("array length mismatch")
	errFixedBytesLength   = errors.New("fixed bytes length mismatch")
	errIntegerOverflow    = errors.New("integer overflow")
)

// Integers above 2^53 lose precision as JS numbers and must be passed as strings.
const maxSafeJSInt = 1<<53 - 1

// packMethodCall converts args for method and returns selector-prefixed calldata.
func packMethodCall(method abi.Method, args []any) ([]byte, error) {
	converted, err := convertArgs(method.Inputs, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method.Name, err)
	}

	packed, err := method.Inputs.Pack(converted...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s arguments: %w", method.Name, err)
	}

	input := make([]byte, 0, len(method.ID)+len(packed))
	input = append(input, method.ID...)

	return append(input, packed...), nil
}

// convertArgs converts loosely typed values (as exported from JS or parsed from
// the command line) into the Go types go-ethereum's packer expects.
func convertArgs(inputs abi.Arguments, args []any) ([]any, error) {
	if len(args) != len(inputs) {
		return nil, fmt.Errorf("%w: got %d, want %d", errInvalidArgCount, len(args), len(inputs))
	}

	converted := make([]any, len(args))

	for index, input := range inputs {
		value, err := convertValue(args[index], input.Type)
		if err != nil {
			return nil, fmt.Errorf("arg %d (%s): %w", index, input.Name, err)
		}

		converted[index] = value
	}

	return converted, nil
}

func convertValue(arg any, typ abi.Type) (any, error) {
	//nolint:exhaustive // Remaining kinds are passed through to the packer.
	switch typ.T {
	case abi.AddressTy:
		text, ok := arg.(string)
		if !ok {
			if addr, isAddr := arg.(common.Address); isAddr {
				return addr, nil
			}

			return nil, fmt.Errorf("%w: got %T", errInvalidAddressType, arg)
		}

		return parseHexAddress(text)

	case abi.IntTy, abi.UintTy:
		number, err := convertNumber(arg)
		if err != nil {
			return nil, err
		}

		return fitInteger(number, typ)

	case abi.BoolTy:
		switch v := arg.(type) {
		case bool:
			return v, nil
		case string:
			switch strings.ToLower(v) {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
		}

		return nil, fmt.Errorf("%w: got %v", errInvalidBoolType, arg)

	case abi.StringTy:
		text, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("%w: got %T", errInvalidStringType, arg)
		}

		return text, nil

	case abi.BytesTy:
		return convertBytes(arg)

	case abi.FixedBytesTy:
		raw, err := convertBytes(arg)
		if err != nil {
			return nil, err
		}

		if len(raw) != typ.Size {
			return nil, fmt.Errorf("%w: want %d bytes, got %d", errFixedBytesLength, typ.Size, len(raw))
		}

		fixed := reflect.New(typ.GetType()).Elem()
		reflect.Copy(fixed, reflect.ValueOf(raw))

		return fixed.Interface(), nil

	case abi.SliceTy, abi.ArrayTy:
		return convertSequence(arg, typ)

	case abi.TupleTy:
		return convertTuple(arg, typ)
	}

	return arg, nil
}

func convertSequence(arg any, typ abi.Type) (any, error) {
	items, ok := arg.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", errInvalidArrayType, arg)
	}

	var out reflect.Value

	if typ.T == abi.ArrayTy {
		if len(items) != typ.Size {
			return nil, fmt.Errorf("%w: want %d, got %d", errArrayLength, typ.Size, len(items))
		}

		out = reflect.New(typ.GetType()).Elem()
	} else {
		out = reflect.MakeSlice(typ.GetType(), len(items), len(items))
	}

	for index, item := range items {
		value, err := convertValue(item, *typ.Elem)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", index, err)
		}

		out.Index(index).Set(reflect.ValueOf(value))
	}

	return out.Interface(), nil
}

// convertTuple builds the anonymous struct go-ethereum generates for a tuple
// type from a positional array of field values.
func convertTuple(arg any, typ abi.Type) (any, error) {
	if reflect.TypeOf(arg) == typ.GetType() {
		return arg, nil
	}

	items, ok := arg.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: tuple %s, got %T", errInvalidArrayType, typ.String(), arg)
	}

	if len(items) != len(typ.TupleElems) {
		return nil, fmt.Errorf("%w: tuple %s wants %d fields, got %d", errArrayLength, typ.String(), len(typ.TupleElems), len(items))
	}

	out := reflect.New(typ.GetType()).Elem()

	for index, elem := range typ.TupleElems {
		value, err := convertValue(items[index], *elem)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", typ.TupleRawNames[index], err)
		}

		out.Field(index).Set(reflect.ValueOf(value))
	}

	return out.Interface(), nil
}

func convertNumber(arg any) (*big.Int, error) {
	switch value := arg.(type) {
	case int:
		return big.NewInt(int64(value)), nil
	case int64:
		return big.NewInt(value), nil
	case uint64:
		return new(big.Int).SetUint64(value), nil
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) || value != math.Trunc(value) {
			return nil, fmt.Errorf("%w: got %v", errInvalidNumberType, value)
		}

		if math.Abs(value) > maxSafeJSInt {
			return nil, fmt.Errorf("%w: %v is outside the safe integer range, pass it as a string", errInvalidNumberType, value)
		}

		return big.NewInt(int64(value)), nil
	case *big.Int:
		if value == nil {
			return nil, fmt.Errorf("%w: nil", errInvalidNumberType)
		}

		return value, nil
	case string:
		clean := strings.TrimSpace(value)
		base := 10

		if strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X") {
			base = 16
			clean = clean[2:]
		}

		number, ok := new(big.Int).SetString(clean, base)
		if clean == "" || !ok {
			return nil, fmt.Errorf("%w: %q", errInvalidNumberType, value)
		}

		return number, nil
	default:
		return nil, fmt.Errorf("%w: got %T", errInvalidNumberType, arg)
	}
}

// fitInteger narrows number to the native Go integer type go-ethereum uses for
// typ (uint8..uint64, int8..int64), keeping *big.Int for wider types.
func fitInteger(number *big.Int, typ abi.Type) (any, error) {
	target := typ.GetType()
	if target == reflect.TypeOf((*big.Int)(nil)) {
		if typ.T == abi.UintTy && number.Sign() < 0 {
			return nil, fmt.Errorf("%w: %s is negative for %s", errIntegerOverflow, number, typ.String())
		}

		return number, nil
	}

	out := reflect.New(target).Elem()

	//nolint:exhaustive // Only integer kinds reach here.
	switch out.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if !number.IsUint64() || out.OverflowUint(number.Uint64()) {
			return nil, fmt.Errorf("%w: %s does not fit %s", errIntegerOverflow, number, typ.String())
		}

		out.SetUint(number.Uint64())
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !number.IsInt64() || out.OverflowInt(number.Int64()) {
			return nil, fmt.Errorf("%w: %s does not fit %s", errIntegerOverflow, number, typ.String())
		}

		out.SetInt(number.Int64())
	default:
		return number, nil
	}

	return out.Interface(), nil
}

func convertBytes(arg any) ([]byte, error) {
	switch v := arg.(type) {
	case []byte:
		return v, nil
	case string:
		clean := strings.TrimPrefix(strings.TrimPrefix(v, "0x"), "0X")
		if len(clean)%2 != 0 {
			clean = "0" + clean
		}

		decoded, err := hex.DecodeString(clean)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errInvalidBytesType, err)
		}

		return decoded, nil
	default:
		return nil, fmt.Errorf("%w: got %T", errInvalidBytesType, arg)
	}
}
