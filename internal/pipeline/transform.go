package pipeline

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"go-lifeexp-report/internal/model"
)

// labelTransform rewrites a Race or Sex label
type labelTransform func(string) string

var labelTransforms = map[string]labelTransform{
	"normalizenames":     normalizeNames,
	"converttolowercase": strings.ToLower,
	"converttouppercase": strings.ToUpper,
	"collapsewhitespace": collapseWhitespace,
}

// TransformTable applies the named label transformations, in order, to the
// Race and Sex columns and returns a new table. The input is not modified.
// Unknown names fail before any record is touched.
func TransformTable(table *model.Table, transformations []string) (*model.Table, error) {
	fns := make([]labelTransform, 0, len(transformations))
	for _, name := range transformations {
		fn, ok := labelTransforms[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown transformation: %s", name)
		}
		fns = append(fns, fn)
	}

	out := &model.Table{
		Source:  table.Source,
		Columns: append([]string(nil), table.Columns...),
		Records: make([]model.Record, len(table.Records)),
	}
	copy(out.Records, table.Records)
	if len(fns) == 0 {
		return out, nil
	}

	for i := range out.Records {
		rec := &out.Records[i]
		for _, fn := range fns {
			rec.Race = fn(rec.Race)
			rec.Sex = fn(rec.Sex)
		}
	}
	return out, nil
}

// normalizeNames title-cases labels: "BOTH SEXES" -> "Both Sexes"
func normalizeNames(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

// collapseWhitespace turns any run of whitespace into a single space
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
