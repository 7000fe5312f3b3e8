// Package embed provides the default sub-formatters used for code embedded
// in templates: a script formatter covering expressions, statements,
// argument and parameter lists, method shorthands and JSON, and a
// stylesheet formatter for css, less and scss.
//
// Each formatter returns a doc.Doc so the template printer can splice the
// result into its own document and let one width resolution pass lay out
// both.
//
// # Usage
//
//	r := embed.New(embed.Options{TrailingComma: embed.TrailingCommaAll})
//	d, err := r.Format(ctx, "a+b", embed.SyntaxExpression)
//	if err != nil {
//		var syntaxErr *embed.SyntaxError
//		if errors.As(err, &syntaxErr) {
//			// fall back to the source text
//		}
//	}
package embed
