package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsAggregate(t *testing.T) {
	plain := Binary{Op: "=", Left: Prop("a", "name"), Right: String("Ada")}
	assert.False(t, ContainsAggregate(plain))

	counted := FuncCall{Name: "count", Star: true}
	assert.True(t, ContainsAggregate(counted))

	nested := Case{
		Whens: []When{{
			When: Binary{Op: ">", Left: FuncCall{Name: "sum", Args: []Expr{Prop("a", "age")}}, Right: Int(10)},
			Then: Bool(true),
		}},
	}
	assert.True(t, ContainsAggregate(nested))
}

func TestIsAggregateFunc(t *testing.T) {
	for _, name := range []string{"count", "sum", "min", "max", "avg", "collect"} {
		assert.True(t, IsAggregateFunc(name), name)
	}
	assert.False(t, IsAggregateFunc("lower"))
	assert.False(t, IsAggregateFunc("coalesce"))
}

func TestWalk_VisitsDepthFirst(t *testing.T) {
	expr := Binary{
		Op:    "AND",
		Left:  Binary{Op: "=", Left: Prop("a", "name"), Right: String("Ada")},
		Right: Unary{Op: "NOT", Operand: Prop("a", "active")},
	}

	var visited []Expr
	Walk(expr, func(e Expr) bool {
		visited = append(visited, e)
		return true
	})

	// Root, left subtree (3 nodes), right subtree (2 nodes).
	assert.Len(t, visited, 6)
	assert.Equal(t, expr, visited[0])
}

func TestWalk_EarlyStop(t *testing.T) {
	expr := Binary{Op: "=", Left: Prop("a", "name"), Right: String("Ada")}

	count := 0
	Walk(expr, func(Expr) bool {
		count++
		return false
	})

	assert.Equal(t, 1, count)
}

func TestQuerySpec_Grouped(t *testing.T) {
	ungrouped := &QuerySpec{
		Projections: []Projection{{Expr: Prop("a", "name")}},
	}
	assert.False(t, ungrouped.Grouped())

	grouped := &QuerySpec{
		Projections: []Projection{
			{Expr: Prop("a", "name")},
			{Expr: FuncCall{Name: "count", Star: true}, Alias: "n"},
		},
	}
	assert.True(t, grouped.Grouped())
}
