package formatter

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/grindlemire/tagfmt/pkg/doc"
	"github.com/grindlemire/tagfmt/pkg/embed"
	"github.com/grindlemire/tagfmt/pkg/markup"
)

// SubFormatter formats embedded code. Errors are reported as diagnostics and
// the code is printed unchanged.
type SubFormatter interface {
	Format(ctx context.Context, code string, syntax embed.Syntax) (doc.Doc, error)
}

var _ SubFormatter = (*embed.Registry)(nil)

const sentinelFormat = "__EMBEDDED_PLACEHOLDER_%d__"

var sentinelReg = regexp.MustCompile(`__EMBEDDED_PLACEHOLDER_(\d+)__`)

func sentinel(i int) string {
	return fmt.Sprintf(sentinelFormat, i)
}

// embed runs the sub-formatter. ok is false when the caller should print
// the source of n instead.
func (p *printer) embed(n markup.Node, code string, syntax embed.Syntax) (doc.Doc, bool) {
	if p.err != nil {
		return nil, false
	}
	d, err := p.opts.Embed.Format(p.ctx, code, syntax)
	if err != nil {
		if ctxErr := p.ctx.Err(); ctxErr != nil {
			p.err = ctxErr
			return nil, false
		}
		p.diagnose(EmbedSyntax, n, err)
		return nil, false
	}
	return d, true
}

// splice replaces every sentinel in d with the doc at its index. Each doc
// must be used exactly once.
func splice(d doc.Doc, docs []doc.Doc) (doc.Doc, error) {
	if len(docs) == 0 {
		return d, nil
	}

	used := make([]int, len(docs))
	var unknown []int
	out := doc.ReplaceText(d, func(s string) (doc.Doc, bool) {
		matches := sentinelReg.FindAllStringSubmatchIndex(s, -1)
		if matches == nil {
			return nil, false
		}

		var parts doc.Concat
		last := 0
		for _, m := range matches {
			i, err := strconv.Atoi(s[m[2]:m[3]])
			if err != nil || i >= len(docs) {
				unknown = append(unknown, i)
				continue
			}
			if m[0] > last {
				parts = append(parts, doc.Text(s[last:m[0]]))
			}
			parts = append(parts, docs[i])
			used[i]++
			last = m[1]
		}
		if last < len(s) {
			parts = append(parts, doc.Text(s[last:]))
		}
		return parts, true
	})

	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown placeholder %d", unknown[0])
	}
	for i, n := range used {
		if n != 1 {
			return nil, fmt.Errorf("placeholder %d was used %d times", i, n)
		}
	}
	return out, nil
}
