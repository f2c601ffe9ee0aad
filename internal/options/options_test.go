package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type target struct {
	a int
	b string
}

func TestApplyAppliesInOrder(t *testing.T) {
	opts := []Option[*target]{
		NoError(func(tg *target) { tg.a = 1 }),
		NoError(func(tg *target) { tg.a = 2 }),
		NoError(func(tg *target) { tg.b = "set" }),
	}
	tg := &target{}
	require.NoError(t, Apply(tg, opts...))
	require.Equal(t, 2, tg.a)
	require.Equal(t, "set", tg.b)
}

func TestApplyStopsOnError(t *testing.T) {
	sentinel := errors.New("boom")
	opts := []Option[*target]{
		NoError(func(tg *target) { tg.a = 1 }),
		New(func(tg *target) error { return sentinel }),
		NoError(func(tg *target) { tg.a = 99 }),
	}
	tg := &target{}
	err := Apply(tg, opts...)
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 1, tg.a)
}

func TestApplyNoOptions(t *testing.T) {
	tg := &target{a: 5}
	require.NoError(t, Apply(tg))
	require.Equal(t, 5, tg.a)
}
