package window

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reflow/pkg/report"
)

type counter struct{ n int }

func TestRefAnySharedBorrowsCoexist(t *testing.T) {
	ref := NewRefAny(&counter{n: 7})

	a, releaseA, err := ref.Borrow()
	require.NoError(t, err)
	b, releaseB, err := ref.Borrow()
	require.NoError(t, err)

	assert.Equal(t, 7, a.(*counter).n)
	assert.Equal(t, 7, b.(*counter).n)

	releaseA()
	releaseB()
}

func TestRefAnyMutableBorrowIsExclusive(t *testing.T) {
	ref := NewRefAny(&counter{})

	_, release, err := ref.Borrow()
	require.NoError(t, err)

	_, _, _, err = ref.BorrowMut()
	require.Error(t, err)
	assert.True(t, errors.Is(err, report.ErrConcurrentBorrow))

	release()

	v, set, releaseMut, err := ref.BorrowMut()
	require.NoError(t, err)
	v.(*counter).n = 42
	set(v)

	// shared borrows fail while the writer is live
	_, _, err = ref.Borrow()
	assert.True(t, errors.Is(err, report.ErrConcurrentBorrow))

	releaseMut()

	got, releaseGot, err := ref.Borrow()
	require.NoError(t, err)
	assert.Equal(t, 42, got.(*counter).n)
	releaseGot()
}

func TestRefAnySetReplacesValue(t *testing.T) {
	ref := NewRefAny("old")

	_, set, release, err := ref.BorrowMut()
	require.NoError(t, err)
	set("new")
	release()

	got, releaseGot, err := ref.Borrow()
	require.NoError(t, err)
	assert.Equal(t, "new", got)
	releaseGot()
}
