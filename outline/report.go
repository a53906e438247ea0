package outline

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Render serializes the outline document into its textual report form. The
// output is a pure function of the document: the same tree always renders to
// byte-identical text.
func Render(f *File) string {
	return strings.Join(reportLines(f), "\n") + "\n"
}

// Write renders the document and writes the report to w.
func Write(w io.Writer, f *File) error {
	_, err := io.WriteString(w, Render(f))
	return err
}

func reportLines(f *File) []string {
	lines := []string{
		"---",
		"type : file",
		"name : " + f.Name,
		"locationSpan : " + f.Location.String(),
		"footerSpan : " + f.Footer.String(),
		"parsingErrorsDetected : " + strconv.FormatBool(len(f.ParsingErrors) > 0),
	}
	if len(f.Children) > 0 {
		lines = append(lines, "children :")
		for _, child := range f.Children {
			lines = append(lines, indent(sectionLines(child))...)
		}
	}
	if len(f.ParsingErrors) > 0 {
		lines = append(lines, "parsingErrors :")
		for _, pe := range f.ParsingErrors {
			lines = append(lines, indent(errorLines(pe))...)
		}
	}
	return lines
}

// sectionLines renders one section as a list item: the marker on the first
// field line, continuation fields two spaces past it, and nested children
// spliced in already indented one level further.
func sectionLines(s Section) []string {
	switch sec := s.(type) {
	case Container:
		lines := []string{
			"- type : " + sec.Kind,
			"  name : " + sec.Name,
			"  locationSpan : " + sec.Location.String(),
			"  headerSpan : " + sec.Header.String(),
			"  footerSpan : " + sec.Footer.String(),
		}
		if len(sec.Children) > 0 {
			lines = append(lines, "  children :")
			for _, child := range sec.Children {
				lines = append(lines, indent(sectionLines(child))...)
			}
		}
		return lines
	case Terminal:
		return []string{
			"- type : " + sec.Kind,
			"  name : " + sec.Name,
			"  locationSpan : " + sec.Location.String(),
			"  span : " + sec.Span.String(),
		}
	default:
		panic(fmt.Sprintf("outline: unknown section type %T", s))
	}
}

func errorLines(pe ParsingError) []string {
	return []string{
		fmt.Sprintf("- location: [%d,%d]", pe.Location.Line, pe.Location.Column),
		`  message: "` + strings.ReplaceAll(pe.Message, `"`, `\"`) + `"`,
	}
}

func indent(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = "  " + line
	}
	return out
}
