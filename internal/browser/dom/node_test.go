package dom

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree() (*Node, map[string]*Node) {
	a := NewNode(KindContainer, nil, []Event{{Name: "onclick", Callback: "hitA"}}, nil)
	a.SetID("a")
	label := NewTextNode("hello", nil, nil)
	label.SetID("label")
	b := NewNode(KindContainer, []*Node{label}, nil, nil)
	b.SetID("b")
	script := NewScriptNode("function hitA() {}")
	root := NewNode(KindView, []*Node{a, b, script}, nil, nil)
	root.SetID("root")
	return root, map[string]*Node{"root": root, "a": a, "b": b, "label": label, "script": script}
}

func TestWalkPreOrder(t *testing.T) {
	root, nodes := buildTree()

	var order []*Node
	ForEachDescendant(root, func(n *Node) { order = append(order, n) })

	require.Len(t, order, 5)
	assert.Equal(t, []*Node{nodes["root"], nodes["a"], nodes["b"], nodes["label"], nodes["script"]}, order)
}

func TestWalkSkipSubtree(t *testing.T) {
	root, nodes := buildTree()

	var visited []string
	Walk(root, func(n *Node) bool {
		visited = append(visited, n.Kind().String())
		return n != nodes["b"]
	})
	assert.Equal(t, []string{"view", "obj", "obj", "script"}, visited)
}

func TestFindByID(t *testing.T) {
	root, nodes := buildTree()

	assert.Same(t, nodes["label"], FindByID(root, "label"))
	assert.Nil(t, FindByID(root, "missing"))
	assert.Nil(t, FindByID(root, ""))

	nodes["a"].SetID("renamed")
	assert.Nil(t, FindByID(root, "a"))
	assert.Same(t, nodes["a"], FindByID(root, "renamed"))
}

func TestKindAccessors(t *testing.T) {
	_, nodes := buildTree()

	txt, ok := nodes["label"].AsText()
	require.True(t, ok)
	assert.Equal(t, "hello", txt.Content())

	_, ok = nodes["a"].AsText()
	assert.False(t, ok)

	src, ok := nodes["script"].AsScript()
	require.True(t, ok)
	assert.Contains(t, src, "hitA")

	assert.True(t, KindText.IsVisual())
	assert.False(t, KindScript.IsVisual())
	assert.False(t, KindView.IsVisual())
}

func TestSetTextMarksDirty(t *testing.T) {
	_, nodes := buildTree()
	label := nodes["label"]
	label.Style().TakeDirty()

	assert.True(t, label.SetText("bye"))
	txt, _ := label.AsText()
	assert.Equal(t, "bye", txt.Content())
	assert.True(t, label.Style().TakeDirty())

	assert.False(t, nodes["a"].SetText("nope"))
}

func TestChildrenSnapshotIsACopy(t *testing.T) {
	root, _ := buildTree()
	snap := root.ChildrenSnapshot()
	require.Len(t, snap, 3)

	snap[0] = nil
	root.AppendChild(NewNode(KindContainer, nil, nil, nil))

	assert.NotNil(t, root.ChildrenSnapshot()[0])
	assert.Len(t, snap, 3)
	assert.Equal(t, 4, root.NumChildren())
}

func TestGeometryContains(t *testing.T) {
	g := Geometry{X: 10, Y: 10, Width: 20, Height: 5}
	assert.True(t, g.Contains(10, 10))
	assert.True(t, g.Contains(30, 15), "edges are inclusive")
	assert.False(t, g.Contains(30.5, 12))
	assert.False(t, g.Contains(15, 9))
}

// Concurrent appends must all land exactly once while readers walk.
func TestConcurrentAppendIntegrity(t *testing.T) {
	root := NewNode(KindView, nil, nil, nil)

	const writers = 8
	const perWriter = 100

	var wg sync.WaitGroup
	stop := make(chan struct{})
	var readerWG sync.WaitGroup
	readerWG.Add(1)
	go func() {
		defer readerWG.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			seen := map[*Node]bool{}
			ForEachDescendant(root, func(n *Node) {
				if seen[n] {
					t.Errorf("node visited twice in one walk")
				}
				seen[n] = true
			})
		}
	}()

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				child := NewNode(KindContainer, nil, nil, nil)
				child.SetID(fmt.Sprintf("w%d-%d", w, i))
				root.AppendChild(child)
				child.AppendEvent(Event{Name: "onclick", Callback: "f"})
			}
		}(w)
	}
	wg.Wait()
	close(stop)
	readerWG.Wait()

	children := root.ChildrenSnapshot()
	require.Len(t, children, writers*perWriter)

	ids := make(map[string]int, len(children))
	for _, c := range children {
		ids[c.ID()]++
		assert.Len(t, c.EventsSnapshot(), 1)
	}
	for id, count := range ids {
		assert.Equal(t, 1, count, id)
	}

	// Per-writer order is preserved.
	last := make(map[int]int)
	for _, c := range children {
		var w, n int
		_, err := fmt.Sscanf(c.ID(), "w%d-%d", &w, &n)
		require.NoError(t, err)
		if prev, ok := last[w]; ok {
			assert.Less(t, prev, n)
		}
		last[w] = n
	}
}
