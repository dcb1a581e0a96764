package reflectx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type calc struct{}

type point struct{ X int }

func (calc) Add(a, b int) int          { return a + b }
func (calc) Div(a, b int) (int, error) { return 0, errors.New("x") }
func (calc) Reset()                    {}
func (calc) Many() (int, int, error)   { return 0, 0, nil }
func (calc) Pair() (int, int)          { return 0, 0 }
func (calc) Sum(nums ...int) int       { return 0 }
func (calc) Move(p point) point        { return p }
func (calc) hidden(a int) int          { return a }

func TestSuitableMethods(t *testing.T) {
	methods := SuitableMethods(calc{})
	assert.Contains(t, methods, "Add")
	assert.Contains(t, methods, "Div")
	assert.Contains(t, methods, "Reset")
	assert.NotContains(t, methods, "Many")
	assert.NotContains(t, methods, "Pair")
	assert.NotContains(t, methods, "Sum")
	assert.NotContains(t, methods, "Move")
	assert.NotContains(t, methods, "hidden")
}

func TestTypeFullName(t *testing.T) {
	assert.Equal(t, "gbus/pkg/utils/reflectx:calc", TypeFullName(&calc{}))
}
