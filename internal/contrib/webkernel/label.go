// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package webkernel

import (
	"reflect"
	"strings"
)

// ControllerLabel derives a resource label from a controller reference.
//
// A string is used as is. A two-element pair [target, member] is labeled
// "target member", where a string target is taken as a type name and any
// other target contributes its runtime type. A nil target leaves only the
// member. Anything else yields "".
func ControllerLabel(ref any) string {
	switch c := ref.(type) {
	case string:
		return c
	case []any:
		if len(c) != 2 {
			return ""
		}
		return pairLabel(c[0], c[1])
	case [2]any:
		return pairLabel(c[0], c[1])
	default:
		return ""
	}
}

func pairLabel(target, member any) string {
	m, _ := member.(string)
	return strings.TrimSpace(typeName(target) + " " + m)
}

func typeName(target any) string {
	switch t := target.(type) {
	case nil:
		return ""
	case string:
		return t
	}
	rt := reflect.TypeOf(target)
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt.String()
}
