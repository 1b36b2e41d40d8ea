// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package errors

import "testing"

// Assert err is (contains, wraps, etc) target.
// If target is nil then err must be nil.
func Assert(t testing.TB, err, target error) {
	t.Helper()

	if target == nil {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
	if !Is(err, target) {
		t.Fatalf("error[%v] is not target[%v]", err, target)
	}
}

// AssertKind asserts that got is of same error kind as want.
func AssertKind(t testing.TB, got, want error) {
	t.Helper()
	if (got == nil) != (want == nil) {
		t.Fatalf("got error[%v] differs from want[%v]", got, want)
	}
	if want == nil {
		return
	}
	var e2 *Error
	if !As(want, &e2) {
		t.Fatal("want is not an *errors.Error")
	}
	AssertIsKind(t, got, e2.Kind)
}

// AssertIsKind asserts err is of kind k.
func AssertIsKind(t testing.TB, err error, k Kind) {
	t.Helper()
	if !IsKind(err, k) {
		t.Fatalf("error[%v] is not of kind %q", err, k)
	}
}

// AssertErrorList asserts that the given errs is an *errors.List with
// the same errors as in targets, in order.
func AssertErrorList(t testing.TB, err error, targets []error) {
	t.Helper()

	var list *List
	if !As(err, &list) {
		t.Fatalf("error[%v] is not an *errors.List", err)
	}
	if list.Len() != len(targets) {
		t.Fatalf("got %d errors but want %d: %s", list.Len(), len(targets), list.Detailed())
	}
	for i, e := range list.errs {
		Assert(t, e, targets[i])
	}
}
