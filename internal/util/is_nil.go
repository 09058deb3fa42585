// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package util

import "reflect"

// IsNil returns true if the given interface is nil, or if it holds a
// pointer, map, chan, slice or func whose value is nil.
func IsNil(i any) bool {
	if i == nil {
		return true
	}
	switch reflect.TypeOf(i).Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Slice, reflect.Func:
		return reflect.ValueOf(i).IsNil()
	}
	return false
}
