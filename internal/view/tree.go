package view

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"gamehistory/internal/format"
	"gamehistory/internal/history"

	"github.com/mattn/go-runewidth"
)

type treeRenderer struct {
	h        *history.History
	width    int
	maxDepth int
	details  bool
	color    bool
}

func (r treeRenderer) render(start history.NodeID) ([]string, error) {
	var lines []string
	if err := r.renderNode(start, "", "", 0, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// renderNode appends id and its subtree. lead prefixes the node's own line;
// indent prefixes everything below it.
func (r treeRenderer) renderNode(id history.NodeID, lead, indent string, depth int, lines *[]string) error {
	n, err := r.h.Tree().Node(id)
	if err != nil {
		return err
	}
	idx, err := r.h.EffectiveIndex(id)
	if err != nil {
		return err
	}

	body := format.RenderNodeLines(n, idx, 0)
	*lines = append(*lines, r.line(lead, n, body[0]))
	if r.details {
		for _, text := range body[1:] {
			for _, wrapped := range wrapText(text, r.width-visibleWidth(indent)-2) {
				*lines = append(*lines, truncateToWidth(r.guide(indent)+"  "+wrapped, r.width))
			}
		}
	}

	if r.maxDepth > 0 && depth >= r.maxDepth {
		return nil
	}
	for i, child := range n.Children {
		branch, next := "├─ ", "│  "
		if i == len(n.Children)-1 {
			branch, next = "└─ ", "   "
		}
		if err := r.renderNode(child, indent+branch, indent+next, depth+1, lines); err != nil {
			return err
		}
	}
	return nil
}

func (r treeRenderer) line(lead string, n history.Node, label string) string {
	id := fmt.Sprintf("#%d", n.ID)
	budget := r.width - visibleWidth(lead) - visibleWidth(id) - 1
	if budget < 8 {
		budget = 8
	}
	label = clip(label, budget)
	full := r.guide(lead) + colorize(r.color, ansiSeparator, id) + " " + colorize(r.color, kindColor(n), label)
	return truncateToWidth(full, r.width)
}

func (r treeRenderer) guide(prefix string) string {
	if prefix == "" {
		return ""
	}
	return colorize(r.color, ansiSeparator, prefix)
}

// clip shortens text to width display cells, marking the cut with an ellipsis.
func clip(text string, width int) string {
	if runewidth.StringWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, "…")
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	text = strings.TrimRight(text, " ")
	if text == "" {
		return []string{""}
	}
	var out []string
	var current strings.Builder
	currentWidth := 0

	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if currentWidth+rw > width && current.Len() > 0 {
			out = append(out, current.String())
			current.Reset()
			currentWidth = 0
		}
		current.WriteRune(r)
		currentWidth += rw
	}
	if currentWidth > 0 || current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}

func truncateToWidth(text string, width int) string {
	if visibleWidth(text) <= width {
		return text
	}
	var colored strings.Builder
	current := 0
	styled := false

	for i := 0; i < len(text); {
		if m := ansiPattern.FindStringIndex(text[i:]); m != nil && m[0] == 0 {
			colored.WriteString(text[i : i+m[1]])
			styled = true
			i += m[1]
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		rw := runewidth.RuneWidth(r)
		if current+rw > width {
			break
		}
		colored.WriteRune(r)
		current += rw
		i += size
	}
	if styled {
		colored.WriteString(ansiReset)
	}
	return colored.String()
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func visibleWidth(text string) int {
	clean := ansiPattern.ReplaceAllString(text, "")
	return runewidth.StringWidth(clean)
}
