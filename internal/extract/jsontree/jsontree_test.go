package jsontree

import (
    "errors"
    "strings"
    "testing"
)

func TestParse_KeepsKeyOrderAndNumberText(t *testing.T) {
    n, err := Parse(`{"z":1, "a":{"pnl_7d":88.20,"list":[1e3,"x",true,null]}, "m":-0.5}`, 16)
    if err != nil {
        t.Fatalf("parse: %v", err)
    }
    if n.Kind != Object {
        t.Fatalf("kind=%v, want Object", n.Kind)
    }
    if got := strings.Join(n.Keys, ","); got != "z,a,m" {
        t.Fatalf("keys=%q, want z,a,m", got)
    }
    inner := n.Values[1]
    if inner.Keys[0] != "pnl_7d" || inner.Values[0].Kind != Number || inner.Values[0].Text != "88.20" {
        t.Fatalf("unexpected inner node: %+v", inner.Values[0])
    }
    list := inner.Values[1]
    if list.Kind != Array || len(list.Values) != 4 {
        t.Fatalf("unexpected list: %+v", list)
    }
    if list.Values[0].Text != "1e3" || list.Values[2].Kind != Bool || list.Values[3].Kind != Null {
        t.Fatalf("unexpected scalars: %+v", list.Values)
    }
}

func TestParse_RejectsTrailingAndMalformed(t *testing.T) {
    bad := []string{
        `{"a":1} {"b":2}`,
        `{"a":1,}`,
        `window.__STATE__ = {"a":1}`,
        ``,
        `{"a":`,
    }
    for _, in := range bad {
        if _, err := Parse(in, 16); err == nil {
            t.Fatalf("expected error for %q", in)
        }
    }
}

func TestParse_DepthBound(t *testing.T) {
    deep := strings.Repeat("[", 20) + strings.Repeat("]", 20)
    if _, err := Parse(deep, 8); !errors.Is(err, ErrTooDeep) {
        t.Fatalf("expected ErrTooDeep, got %v", err)
    }
    if _, err := Parse(deep, 32); err != nil {
        t.Fatalf("expected success within bound, got %v", err)
    }
}
