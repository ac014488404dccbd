// Package tree indexes an immutable snapshot of analytic accounts.
//
// Accounts are kept in an arena slice; parent and child links are indexes
// into it. Build rejects snapshots whose parent relation is not a forest, so
// every traversal terminates.
package tree

import (
	"context"
	"fmt"
	"sort"

	"github.com/cleared-dev/analytic/internal/errs"
	"github.com/cleared-dev/analytic/internal/model"
)

// CycleError reports an account that is its own ancestor.
type CycleError struct {
	AccountID int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("account %d: you can not create recursive accounts", e.AccountID)
}

// Is matches errs.ErrCycle.
func (e *CycleError) Is(target error) bool {
	return target == errs.ErrCycle
}

// InvalidAccountError describes a broken root/parent reference.
type InvalidAccountError struct {
	AccountID int
	Reason    string
}

func (e *InvalidAccountError) Error() string {
	return fmt.Sprintf("account %d: %s", e.AccountID, e.Reason)
}

// Is matches errs.ErrConfiguration.
func (e *InvalidAccountError) Is(target error) bool {
	return target == errs.ErrConfiguration
}

type node struct {
	account  model.Account
	parent   int // arena index, -1 for roots
	children []int
	depth    int
}

// Tree is a read-only forest of accounts spanning any number of roots.
type Tree struct {
	nodes []node
	index map[int]int // account id -> arena index
	roots []int
}

// Build validates accounts and links them into a forest.
func Build(accounts []model.Account) (*Tree, error) {
	t := &Tree{
		nodes: make([]node, len(accounts)),
		index: make(map[int]int, len(accounts)),
	}
	for i, a := range accounts {
		if _, dup := t.index[a.ID]; dup {
			return nil, &InvalidAccountError{AccountID: a.ID, Reason: "duplicate id"}
		}
		t.index[a.ID] = i
		t.nodes[i] = node{account: a, parent: -1}
	}

	for i := range t.nodes {
		if err := t.link(i); err != nil {
			return nil, err
		}
	}
	if err := t.checkAcyclic(); err != nil {
		return nil, err
	}

	for i := range t.nodes {
		sort.Slice(t.nodes[i].children, t.byCode(t.nodes[i].children))
	}
	sort.Slice(t.roots, t.byCode(t.roots))
	for _, r := range t.roots {
		t.setDepth(r, 0)
	}
	return t, nil
}

func (t *Tree) link(i int) error {
	a := t.nodes[i].account
	if a.Currency == "" {
		return &InvalidAccountError{AccountID: a.ID, Reason: "missing currency"}
	}
	if !a.Type.Valid() {
		return &InvalidAccountError{AccountID: a.ID, Reason: fmt.Sprintf("unknown type %q", a.Type)}
	}
	if !a.DisplayBalance.Valid() {
		return &InvalidAccountError{AccountID: a.ID, Reason: fmt.Sprintf("unknown display balance %q", a.DisplayBalance)}
	}

	if a.IsRoot() {
		if a.ParentID != 0 || (a.RootID != 0 && a.RootID != a.ID) {
			return &InvalidAccountError{AccountID: a.ID, Reason: "root account can not have a parent"}
		}
		t.roots = append(t.roots, i)
		return nil
	}

	ri, ok := t.index[a.RootID]
	if !ok || !t.nodes[ri].account.IsRoot() {
		return &InvalidAccountError{AccountID: a.ID, Reason: fmt.Sprintf("root %d is not a root account", a.RootID)}
	}
	pi, ok := t.index[a.ParentID]
	if !ok {
		return &InvalidAccountError{AccountID: a.ID, Reason: fmt.Sprintf("unknown parent %d", a.ParentID)}
	}
	if t.nodes[pi].account.Root() != a.RootID {
		return &InvalidAccountError{AccountID: a.ID, Reason: fmt.Sprintf("parent %d is outside root %d", a.ParentID, a.RootID)}
	}
	t.nodes[i].parent = pi
	t.nodes[pi].children = append(t.nodes[pi].children, i)
	return nil
}

// checkAcyclic walks every parent chain with three-colour marking.
func (t *Tree) checkAcyclic() error {
	const (
		unseen = iota
		onPath
		done
	)
	state := make([]int, len(t.nodes))
	for start := range t.nodes {
		var path []int
		i := start
		for i >= 0 && state[i] == unseen {
			state[i] = onPath
			path = append(path, i)
			i = t.nodes[i].parent
		}
		if i >= 0 && state[i] == onPath {
			return &CycleError{AccountID: t.nodes[i].account.ID}
		}
		for _, p := range path {
			state[p] = done
		}
	}
	return nil
}

func (t *Tree) setDepth(i, depth int) {
	t.nodes[i].depth = depth
	for _, c := range t.nodes[i].children {
		t.setDepth(c, depth+1)
	}
}

// byCode orders arena indexes by code, then id.
func (t *Tree) byCode(idx []int) func(i, j int) bool {
	return func(i, j int) bool {
		a, b := t.nodes[idx[i]].account, t.nodes[idx[j]].account
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.ID < b.ID
	}
}

// Len returns the number of accounts in the snapshot.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Get returns an account by id.
func (t *Tree) Get(id int) (model.Account, bool) {
	i, ok := t.index[id]
	if !ok {
		return model.Account{}, false
	}
	return t.nodes[i].account, true
}

// Roots returns the root accounts ordered by code.
func (t *Tree) Roots() []model.Account {
	out := make([]model.Account, len(t.roots))
	for k, i := range t.roots {
		out[k] = t.nodes[i].account
	}
	return out
}

// Children returns the direct children of id ordered by code.
func (t *Tree) Children(id int) []model.Account {
	i, ok := t.index[id]
	if !ok {
		return nil
	}
	out := make([]model.Account, len(t.nodes[i].children))
	for k, c := range t.nodes[i].children {
		out[k] = t.nodes[c].account
	}
	return out
}

// Depth returns the distance from id to its root, or -1 if id is unknown.
func (t *Tree) Depth(id int) int {
	i, ok := t.index[id]
	if !ok {
		return -1
	}
	return t.nodes[i].depth
}

// Descendants returns ids together with all of their transitive children,
// deduplicated. Unknown ids are skipped. Inactive and view accounts are
// traversed like any other node.
func (t *Tree) Descendants(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	var out []int
	var visit func(i int)
	visit = func(i int) {
		id := t.nodes[i].account.ID
		if seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
		for _, c := range t.nodes[i].children {
			visit(c)
		}
	}
	for _, id := range ids {
		if i, ok := t.index[id]; ok {
			visit(i)
		}
	}
	return out
}

// Walk visits every account depth-first, roots and siblings in code order.
func (t *Tree) Walk(fn func(a model.Account, depth int)) {
	var visit func(i int)
	visit = func(i int) {
		fn(t.nodes[i].account, t.nodes[i].depth)
		for _, c := range t.nodes[i].children {
			visit(c)
		}
	}
	for _, r := range t.roots {
		visit(r)
	}
}

// DescendantsOf implements the aggregation engine's account repository.
func (t *Tree) DescendantsOf(_ context.Context, ids []int) ([]int, error) {
	for _, id := range ids {
		if _, ok := t.index[id]; !ok {
			return nil, &InvalidAccountError{AccountID: id, Reason: "unknown account"}
		}
	}
	return t.Descendants(ids), nil
}

// Accounts implements the aggregation engine's account repository.
func (t *Tree) Accounts(_ context.Context, ids []int) (map[int]model.Account, error) {
	out := make(map[int]model.Account, len(ids))
	for _, id := range ids {
		a, ok := t.Get(id)
		if !ok {
			return nil, &InvalidAccountError{AccountID: id, Reason: "unknown account"}
		}
		out[id] = a
	}
	return out, nil
}
