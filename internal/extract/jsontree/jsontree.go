// Package jsontree decodes JSON into an ordered tagged-variant tree. Object
// members keep their document order and numbers keep their literal text, so a
// depth-first walk over the tree is deterministic.
package jsontree

import (
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "strconv"
    "strings"
)

// Kind tags the variant held by a Node.
type Kind int

const (
    Null Kind = iota
    Bool
    Number
    String
    Object
    Array
)

// Node is one value of a parsed document. Keys and Values are aligned for
// objects; arrays use Values only. Text carries the scalar payload.
type Node struct {
    Kind   Kind
    Text   string
    Keys   []string
    Values []Node
}

// ErrTooDeep is returned when nesting exceeds the depth passed to Parse.
var ErrTooDeep = errors.New("jsontree: nesting too deep")

// Parse strictly decodes exactly one JSON value from data. Trailing content
// other than whitespace is an error.
func Parse(data string, maxDepth int) (Node, error) {
    dec := json.NewDecoder(strings.NewReader(data))
    dec.UseNumber()
    n, err := decode(dec, 0, maxDepth)
    if err != nil {
        return Node{}, err
    }
    if _, err := dec.Token(); err != io.EOF {
        return Node{}, errors.New("jsontree: trailing data after value")
    }
    return n, nil
}

func decode(dec *json.Decoder, depth, maxDepth int) (Node, error) {
    tok, err := dec.Token()
    if err != nil {
        return Node{}, err
    }
    switch v := tok.(type) {
    case json.Delim:
        if depth >= maxDepth {
            return Node{}, ErrTooDeep
        }
        switch v {
        case '{':
            n := Node{Kind: Object}
            for dec.More() {
                kt, err := dec.Token()
                if err != nil {
                    return Node{}, err
                }
                key, ok := kt.(string)
                if !ok {
                    return Node{}, fmt.Errorf("jsontree: object key is %T", kt)
                }
                val, err := decode(dec, depth+1, maxDepth)
                if err != nil {
                    return Node{}, err
                }
                n.Keys = append(n.Keys, key)
                n.Values = append(n.Values, val)
            }
            if _, err := dec.Token(); err != nil {
                return Node{}, err
            }
            return n, nil
        case '[':
            n := Node{Kind: Array}
            for dec.More() {
                val, err := decode(dec, depth+1, maxDepth)
                if err != nil {
                    return Node{}, err
                }
                n.Values = append(n.Values, val)
            }
            if _, err := dec.Token(); err != nil {
                return Node{}, err
            }
            return n, nil
        }
        return Node{}, fmt.Errorf("jsontree: unexpected delimiter %q", rune(v))
    case json.Number:
        return Node{Kind: Number, Text: v.String()}, nil
    case string:
        return Node{Kind: String, Text: v}, nil
    case bool:
        return Node{Kind: Bool, Text: strconv.FormatBool(v)}, nil
    case nil:
        return Node{Kind: Null}, nil
    }
    return Node{}, fmt.Errorf("jsontree: unexpected token %T", tok)
}
