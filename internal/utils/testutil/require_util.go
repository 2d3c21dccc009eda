package testutil

import (
	"math/big"
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// Assertions extends require.Assertions to support comparison of values holding big integers.
type Assertions struct {
	*require.Assertions
}

var bigIntType = reflect.TypeOf((*big.Int)(nil))

func Require(t require.TestingT) *Assertions {
	return &Assertions{
		Assertions: require.New(t),
	}
}

func (a *Assertions) Equal(expected interface{}, actual interface{}, msgAndArgs ...interface{}) {
	// big.Int values are equal by Cmp, not by their internal representation.
	if expected != nil && actual != nil {
		typ := reflect.TypeOf(expected)
		if typ == reflect.TypeOf(actual) && containsBigInt(typ, make(map[reflect.Type]bool)) {
			a.equalCmp(expected, actual, msgAndArgs...)
			return
		}
	}

	// Everything else goes through testify.
	a.Assertions.Equal(expected, actual, msgAndArgs...)
}

func (a *Assertions) equalCmp(expected interface{}, actual interface{}, msgAndArgs ...interface{}) {
	if diff := cmp.Diff(expected, actual, bigIntComparer); diff != "" {
		a.FailNow(diff, msgAndArgs...)
	}
}

var bigIntComparer = cmp.Comparer(func(x, y *big.Int) bool {
	if x == nil || y == nil {
		return x == y
	}

	return x.Cmp(y) == 0
})

func containsBigInt(typ reflect.Type, visited map[reflect.Type]bool) bool {
	if typ == bigIntType {
		return true
	}

	if visited[typ] {
		return false
	}
	visited[typ] = true

	switch typ.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return containsBigInt(typ.Elem(), visited)
	case reflect.Map:
		return containsBigInt(typ.Key(), visited) || containsBigInt(typ.Elem(), visited)
	case reflect.Struct:
		for i := 0; i < typ.NumField(); i++ {
			if typ.Field(i).IsExported() && containsBigInt(typ.Field(i).Type, visited) {
				return true
			}
		}
	}

	return false
}
