// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package hook_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/holotrace/internal/hook"
	"github.com/holomush/holotrace/pkg/errutil"
)

func echo(_ context.Context, args []any) (any, error) {
	return args, nil
}

func TestTable_CallDeclared(t *testing.T) {
	tbl := hook.NewTable()
	require.NoError(t, tbl.Declare("echo", echo))

	result, err := tbl.Call(context.Background(), "echo", "a", 1)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", 1}, result)
}

func TestTable_CallUnknown(t *testing.T) {
	tbl := hook.NewTable()

	_, err := tbl.Call(context.Background(), "missing")
	errutil.AssertErrorCode(t, err, hook.CodeUnknownEntryPoint)
	errutil.AssertErrorContext(t, err, "entry_point", "missing")
}

func TestTable_DeclareTwice(t *testing.T) {
	tbl := hook.NewTable()
	require.NoError(t, tbl.Declare("echo", echo))

	err := tbl.Declare("echo", echo)
	errutil.AssertErrorCode(t, err, hook.CodeEntryPointExists)
}

func TestTable_DeclareNil(t *testing.T) {
	tbl := hook.NewTable()

	err := tbl.Declare("nil", nil)
	errutil.AssertErrorCode(t, err, hook.CodeNilEntryPoint)
	assert.False(t, tbl.Declared("nil"))
}

func TestTable_WrapDeclared(t *testing.T) {
	tbl := hook.NewTable()
	require.NoError(t, tbl.Declare("echo", echo))

	var seen []any
	tbl.Wrap("echo", hook.Before(func(_ context.Context, args []any) {
		seen = args
	}))

	result, err := tbl.Call(context.Background(), "echo", "x")
	require.NoError(t, err)
	assert.Equal(t, []any{"x"}, result)
	assert.Equal(t, []any{"x"}, seen)
}

func TestTable_WrapBeforeDeclareIsDeferred(t *testing.T) {
	tbl := hook.NewTable()

	var order []string
	tbl.Wrap("late", hook.Before(func(context.Context, []any) { order = append(order, "first") }))
	tbl.Wrap("late", hook.Before(func(context.Context, []any) { order = append(order, "second") }))
	assert.Equal(t, 2, tbl.Pending("late"))

	require.NoError(t, tbl.Declare("late", echo))
	assert.Zero(t, tbl.Pending("late"))

	_, err := tbl.Call(context.Background(), "late")
	require.NoError(t, err)
	// Wrappers applied in order nest outward: the last one added runs first.
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestTable_DisabledIgnoresWrappers(t *testing.T) {
	tbl := hook.NewTable()
	require.NoError(t, tbl.Declare("echo", echo))
	tbl.Disable()

	called := false
	tbl.Wrap("echo", hook.Before(func(context.Context, []any) { called = true }))

	_, err := tbl.Call(context.Background(), "echo")
	require.NoError(t, err)
	assert.False(t, called)
	assert.False(t, tbl.Available())
}

func TestTable_NilIsUnavailable(t *testing.T) {
	var tbl *hook.Table
	assert.False(t, tbl.Available())
}

func TestTable_ProvideLookup(t *testing.T) {
	tbl := hook.NewTable()

	_, ok := tbl.Lookup("cfg")
	assert.False(t, ok)

	tbl.Provide("cfg", 42)
	v, ok := tbl.Lookup("cfg")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestTable_OnChangeNotifiesDeclareAndProvide(t *testing.T) {
	tbl := hook.NewTable()

	var keys []string
	tbl.OnChange(func(key string) { keys = append(keys, key) })

	require.NoError(t, tbl.Declare("entry", echo))
	tbl.Provide("value", true)

	assert.Equal(t, []string{"entry", "value"}, keys)
}

func TestTable_StateIsCreatedOnceWithoutNotifying(t *testing.T) {
	tbl := hook.NewTable()
	notified := 0
	tbl.OnChange(func(string) { notified++ })

	inits := 0
	newCounter := func() any { inits++; return new(int) }

	first := tbl.State("counter", newCounter).(*int)
	*first = 7
	second := tbl.State("counter", newCounter).(*int)

	assert.Same(t, first, second)
	assert.Equal(t, 1, inits)
	assert.Zero(t, notified)

	_, published := tbl.Lookup("counter")
	assert.False(t, published, "state is not a published value")
}

func TestTable_EnableAcceptsWrappersAgain(t *testing.T) {
	tbl := hook.NewTable()
	tbl.Disable()
	tbl.Wrap("entry", hook.Passthrough())
	assert.Zero(t, tbl.Pending("entry"))

	tbl.Enable()
	assert.True(t, tbl.Available())
	tbl.Wrap("entry", hook.Passthrough())
	assert.Equal(t, 1, tbl.Pending("entry"))
}

func TestBefore_CannotAlterArguments(t *testing.T) {
	tbl := hook.NewTable()
	require.NoError(t, tbl.Declare("echo", echo))
	tbl.Wrap("echo", hook.Before(func(_ context.Context, args []any) {
		args[0] = "tampered"
	}))

	result, err := tbl.Call(context.Background(), "echo", "original")
	require.NoError(t, err)
	assert.Equal(t, []any{"original"}, result)
}

func TestAfter_ObservesResultAndError(t *testing.T) {
	hostErr := errors.New("host failure")
	tbl := hook.NewTable()
	require.NoError(t, tbl.Declare("fail", func(context.Context, []any) (any, error) {
		return "partial", hostErr
	}))

	var gotResult any
	var gotErr error
	tbl.Wrap("fail", hook.After(func(_ context.Context, _ []any, result any, err error) {
		gotResult, gotErr = result, err
	}))

	result, err := tbl.Call(context.Background(), "fail")
	assert.Equal(t, "partial", result)
	assert.Same(t, hostErr, err)
	assert.Equal(t, "partial", gotResult)
	assert.Same(t, hostErr, gotErr)
}

func TestAfter_PanicPropagates(t *testing.T) {
	tbl := hook.NewTable()
	require.NoError(t, tbl.Declare("boom", func(context.Context, []any) (any, error) {
		panic("host panic")
	}))

	ran := false
	tbl.Wrap("boom", hook.After(func(context.Context, []any, any, error) { ran = true }))

	assert.PanicsWithValue(t, "host panic", func() {
		_, _ = tbl.Call(context.Background(), "boom")
	})
	assert.False(t, ran)
}

func TestPassthrough(t *testing.T) {
	tbl := hook.NewTable()
	require.NoError(t, tbl.Declare("echo", echo))
	tbl.Wrap("echo", hook.Passthrough())

	result, err := tbl.Call(context.Background(), "echo", 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, result)
}

func TestSetDefault_Restore(t *testing.T) {
	orig := hook.Default()
	replacement := hook.NewTable()

	restore := hook.SetDefault(replacement)
	assert.Same(t, replacement, hook.Default())

	restore()
	assert.Same(t, orig, hook.Default())
}
