package wasmfn

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	threadproxy "github.com/wippyai/thread-proxy"
	"github.com/wippyai/thread-proxy/errors"
	"github.com/wippyai/thread-proxy/sig"
)

// Signature derives the proxy signature of a wazero function definition.
// Functions with more than 12 parameters, multiple results, or reference
// types cannot be described by the scheme.
func Signature(def api.FunctionDefinition) (sig.Signature, error) {
	params := def.ParamTypes()
	if len(params) > sig.MaxParams {
		return 0, errors.TooManyParams(len(params))
	}

	tags := make([]sig.ParamType, len(params))
	for i, vt := range params {
		tag, ok := paramTag(vt)
		if !ok {
			return 0, errors.Unsupported(errors.PhaseBind,
				fmt.Sprintf("parameter %d: value type %s", i, api.ValueTypeName(vt)))
		}
		tags[i] = tag
	}

	results := def.ResultTypes()
	ret := sig.RetVoid
	switch len(results) {
	case 0:
	case 1:
		r, ok := retClass(results[0])
		if !ok {
			return 0, errors.Unsupported(errors.PhaseBind,
				fmt.Sprintf("result value type %s", api.ValueTypeName(results[0])))
		}
		ret = r
	default:
		return 0, errors.Unsupported(errors.PhaseBind,
			fmt.Sprintf("%d results; at most one supported", len(results)))
	}

	return sig.Encode(ret, tags...)
}

// Option configures a binding.
type Option func(*config)

type config struct {
	onError func(error)
}

// WithErrorHandler routes call failures (traps, closed modules) to fn
// instead of the package logger. The bound Func returns the signature's
// zero result after a failure.
func WithErrorHandler(fn func(error)) Option {
	return func(c *config) { c.onError = fn }
}

// Bind wraps fn for proxied invocation. The returned Func unmarshals typed
// arguments into wazero's raw stack form, invokes fn with ctx, and
// marshals the result back.
func Bind(ctx context.Context, fn api.Function, opts ...Option) (sig.Signature, threadproxy.Func, error) {
	if fn == nil {
		return 0, nil, errors.NilFunc(errors.PhaseBind)
	}

	cfg := config{onError: func(err error) {
		Logger().Error("proxied wasm call failed", zap.Error(err))
	}}
	for _, opt := range opts {
		opt(&cfg)
	}

	s, err := Signature(fn.Definition())
	if err != nil {
		return 0, nil, err
	}

	call := func(args []threadproxy.Arg) threadproxy.Ret {
		raw := make([]uint64, len(args))
		for i, a := range args {
			raw[i] = a.Bits()
		}

		results, err := fn.Call(ctx, raw...)
		if err != nil {
			cfg.onError(err)
			return zeroRet(s.Ret())
		}
		if s.Ret() == sig.RetVoid || len(results) == 0 {
			return threadproxy.Void()
		}
		return decodeRet(s.Ret(), results[0])
	}
	return s, call, nil
}

func paramTag(vt api.ValueType) (sig.ParamType, bool) {
	switch vt {
	case api.ValueTypeI32:
		return sig.ParamInt, true
	case api.ValueTypeI64:
		return sig.ParamInt64, true
	case api.ValueTypeF32:
		return sig.ParamFloat, true
	case api.ValueTypeF64:
		return sig.ParamDouble, true
	}
	return 0, false
}

func retClass(vt api.ValueType) (sig.RetType, bool) {
	switch vt {
	case api.ValueTypeI32:
		return sig.RetInt, true
	case api.ValueTypeI64:
		return sig.RetInt64, true
	case api.ValueTypeF32:
		return sig.RetFloat, true
	case api.ValueTypeF64:
		return sig.RetDouble, true
	}
	return 0, false
}

func decodeRet(r sig.RetType, raw uint64) threadproxy.Ret {
	switch r {
	case sig.RetInt:
		return threadproxy.RetOfInt(api.DecodeI32(raw))
	case sig.RetInt64:
		return threadproxy.RetOfInt64(int64(raw))
	case sig.RetFloat:
		return threadproxy.RetOfFloat(api.DecodeF32(raw))
	case sig.RetDouble:
		return threadproxy.RetOfDouble(api.DecodeF64(raw))
	}
	return threadproxy.Void()
}

func zeroRet(r sig.RetType) threadproxy.Ret {
	switch r {
	case sig.RetInt:
		return threadproxy.RetOfInt(0)
	case sig.RetInt64:
		return threadproxy.RetOfInt64(0)
	case sig.RetFloat:
		return threadproxy.RetOfFloat(0)
	case sig.RetDouble:
		return threadproxy.RetOfDouble(0)
	}
	return threadproxy.Void()
}
