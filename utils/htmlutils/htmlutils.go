// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutils builds and inspects the small HTML fragments shown in
// map popups.
package htmlutils

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Text returns a text node. The renderer escapes it.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Element returns an element node with the given children appended.
func Element(a atom.Atom, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
	for _, c := range children {
		if c != nil {
			n.AppendChild(c)
		}
	}

	return n
}

// Strong wraps s in a <strong> element.
func Strong(s string) *html.Node {
	return Element(atom.Strong, nil, Text(s))
}

// Br returns a line break.
func Br() *html.Node {
	return Element(atom.Br, nil)
}

// Lines joins each group of nodes with <br> separators under a single
// <div>.
func Lines(lines ...[]*html.Node) *html.Node {
	div := Element(atom.Div, nil)

	for i, line := range lines {
		if i > 0 {
			div.AppendChild(Br())
		}

		for _, n := range line {
			div.AppendChild(n)
		}
	}

	return div
}

// Render serializes n.
func Render(n *html.Node) (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return "", fmt.Errorf("rendering html: %w", err)
	}

	return sb.String(), nil
}

// Node2string collects the trimmed text of n and its descendants, joined
// by single spaces.
func Node2string(n *html.Node, sb *strings.Builder) (err error) {
	if n.Type == html.TextNode {
		tmp := strings.Join(strings.Fields(n.Data), " ")

		if strings.ContainsRune(tmp, utf8.RuneError) {
			return fmt.Errorf("invalid encoding found: `%s'", tmp)
		}

		if len(tmp) > 0 {
			if sb.Len() != 0 {
				sb.WriteByte(' ')
			}

			sb.WriteString(tmp)
		}

		return nil
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if err = Node2string(child, sb); err != nil {
			break
		}
	}

	return err
}

// TextContent parses an HTML fragment and returns its plain text.
func TextContent(fragment string) (string, error) {
	ctx := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}

	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return "", fmt.Errorf("parsing fragment: %w", err)
	}

	sb := strings.Builder{}
	for _, n := range nodes {
		if err := Node2string(n, &sb); err != nil {
			return "", err
		}
	}

	return sb.String(), nil
}
