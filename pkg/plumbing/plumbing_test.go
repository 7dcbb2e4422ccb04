package plumbing_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/plumbing/pkg/plumbing"
	"github.com/mesh-intelligence/plumbing/pkg/types"
)

func ExampleCompose() {
	salute := types.NewPlugin("Salute", "").
		Define("greet", types.PlumbMethod(func(owner *types.Plugin, next types.Method, self any, args ...any) (any, error) {
			v, err := next(self, args...)
			if err != nil {
				return nil, err
			}
			return "Hi, " + v.(string), nil
		}))
	world := types.NewPlugin("World", "").
		Define("greet", types.Default(types.Method(func(self any, args ...any) (any, error) {
			return "World", nil
		})))

	hello, err := plumbing.Compose(types.TypeSpec{Name: "Hello", Plugins: []*types.Plugin{salute, world}})
	if err != nil {
		fmt.Println(err)
		return
	}
	out, _ := hello.Call(nil, "greet")
	fmt.Println(out)
	// Output: Hi, World
}

func TestNewComposerWithRegistry(t *testing.T) {
	reg := plumbing.NewRegistry()
	require.NoError(t, reg.Declare("Counter", "Countable"))

	counter := types.NewPlugin("Counter", "").Define("count", types.Default(0))
	d, err := plumbing.NewComposer(types.Config{Registry: reg}).Compose(types.TypeSpec{
		Name:    "Tally",
		Plugins: []*types.Plugin{counter},
	})
	require.NoError(t, err)

	caps, err := reg.ImplementedBy("Tally")
	require.NoError(t, err)
	assert.Equal(t, []string{"Countable"}, caps)
	assert.Equal(t, []string{"Countable"}, d.Capabilities)
}
