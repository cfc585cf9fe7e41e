// =============================================================================
// Slip Report - XML Exporter
// =============================================================================
//
// This file writes a Document as an indented XML tree.
//
// DOCUMENT STRUCTURE:
//   <slipReport id source generated>
//     <supervisors> <supervisor> ... <wards><ward/></wards> </supervisor>
//     <supervisorSummary> ...
//     <wards> <ward id hasData> ... </ward>
//     <unlistedWards> ...
//     <wardSummary> ... <missing><ward/></missing>
//   </slipReport>
//
// Wards without data are written as self-closing <ward hasData="false"/>.
//
// =============================================================================

package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/ginjaninja78/slip-report/internal/report"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// XMLOptions contains options for XML generation.
type XMLOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration writes <?xml version="1.0" encoding="UTF-8"?>.
	// Default: true
	IncludeXMLDeclaration bool

	// RootElement is the document element name.
	// Default: "slipReport"
	RootElement string
}

// DefaultXMLOptions returns the default generation options.
func DefaultXMLOptions() XMLOptions {
	return XMLOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		RootElement:           "slipReport",
	}
}

// element is one node of the output tree. An element has either a text
// value or children.
type element struct {
	name     string
	attrs    []xml.Attr
	value    string
	children []element
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// WriteXML writes the document with the default options.
func WriteXML(w io.Writer, doc Document) error {
	return WriteXMLWithOptions(w, doc, DefaultXMLOptions())
}

// WriteXMLWithOptions writes the document as XML, laid out as described at
// the top of this file.
func WriteXMLWithOptions(w io.Writer, doc Document, options XMLOptions) error {
	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		buffer.WriteString(xml.Header)
	}
	writeElement(&buffer, buildDocument(doc, options), options.Indent, 0)

	if _, err := w.Write(buffer.Bytes()); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	return nil
}

func buildDocument(doc Document, options XMLOptions) element {
	root := element{
		name: options.RootElement,
		attrs: []xml.Attr{
			attr("id", doc.ID),
			attr("source", doc.Source),
			attr("generated", doc.GeneratedAt.UTC().Format(time.RFC3339)),
		},
	}

	supervisors := element{name: "supervisors"}
	for i, e := range doc.Supervisors.Entries {
		supervisors.children = append(supervisors.children, supervisorElement(e, i+1))
	}

	wards := element{name: "wards"}
	for _, e := range doc.Wards.Entries {
		wards.children = append(wards.children, wardElement(e))
	}

	unlisted := element{name: "unlistedWards"}
	for _, e := range doc.Wards.Unlisted {
		unlisted.children = append(unlisted.children, wardElement(e))
	}

	root.children = []element{
		supervisors,
		supervisorSummaryElement(doc.Supervisors.Summary),
		wards,
		unlisted,
		wardSummaryElement(doc.Wards.Summary),
	}
	return root
}

func supervisorElement(e report.SupervisorEntry, n int) element {
	breakdown := element{name: "wards"}
	for _, w := range e.Wards {
		breakdown.children = append(breakdown.children, element{
			name:  "ward",
			attrs: []xml.Attr{attr("id", w.Ward), attr("count", strconv.Itoa(w.Count)), attr("amount", money(w.Amount))},
		})
	}

	return element{
		name:  "supervisor",
		attrs: []xml.Attr{attr("n", strconv.Itoa(n))},
		children: []element{
			text("name", e.Name),
			text("id", e.ID),
			text("firstDate", e.FirstDate),
			text("firstTime", e.FirstTime),
			text("lastDate", e.LastDate),
			text("lastTime", e.LastTime),
			text("count", strconv.Itoa(e.Count)),
			text("workingHours", fixed2(e.WorkingHours)),
			text("wardList", e.WardList),
			text("slipsPerWard", fixed2(e.SlipsPerWard)),
			text("totalAmount", money(e.TotalAmount)),
			breakdown,
		},
	}
}

func supervisorSummaryElement(s report.SupervisorSummary) element {
	return element{
		name: "supervisorSummary",
		children: []element{
			text("totalSupervisors", strconv.Itoa(s.TotalSupervisors)),
			text("totalTransactions", strconv.Itoa(s.TotalTransactions)),
			text("dateRange", s.DateRange.String()),
			text("mostActive", s.MostActiveLabel()),
			text("overallTotalAmount", money(s.OverallTotalAmount)),
		},
	}
}

func wardElement(e report.WardEntry) element {
	el := element{
		name:  "ward",
		attrs: []xml.Attr{attr("id", e.Ward), attr("hasData", strconv.FormatBool(e.HasData))},
	}
	if !e.HasData {
		return el
	}

	el.children = []element{
		text("totalSlips", strconv.Itoa(e.TotalSlips)),
		text("totalAmount", money(e.TotalAmount)),
		{name: "supervisors", children: lo.Map(e.Supervisors, func(name string, _ int) element {
			return text("name", name)
		})},
		{name: "propertyTypes", children: lo.Map(e.PropertyTypes, func(p report.PropertyTypeDetail, _ int) element {
			return element{name: "propertyType", attrs: []xml.Attr{attr("name", p.PropertyType), attr("count", strconv.Itoa(p.Count))}}
		})},
	}
	return el
}

func wardSummaryElement(s report.WardSummary) element {
	return element{
		name: "wardSummary",
		children: []element{
			text("wardsWithData", strconv.Itoa(s.WardsWithData)),
			text("totalSlips", strconv.Itoa(s.TotalSlips)),
			text("totalAmount", money(s.TotalAmount)),
			text("missingCount", strconv.Itoa(s.MissingCount)),
			{name: "missing", children: lo.Map(s.Missing, func(id string, _ int) element {
				return text("ward", id)
			})},
		},
	}
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func text(name, value string) element {
	return element{name: name, value: value}
}

// writeElement writes an element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, el element, indent string, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	buffer.WriteString("<")
	buffer.WriteString(el.name)
	for _, a := range el.attrs {
		fmt.Fprintf(buffer, " %s=\"%s\"", a.Name.Local, escapeXML(a.Value))
	}

	// Self-closing tag.
	if len(el.children) == 0 && el.value == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")
	if el.value != "" {
		buffer.WriteString(escapeXML(el.value))
	} else {
		buffer.WriteString("\n")
		for _, child := range el.children {
			writeElement(buffer, child, indent, level+1)
		}
		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	buffer.WriteString("</")
	buffer.WriteString(el.name)
	buffer.WriteString(">\n")
}

// escapeXML escapes text and attribute values.
func escapeXML(s string) string {
	var buffer bytes.Buffer
	// xml.EscapeText only fails on writer errors; bytes.Buffer has none.
	_ = xml.EscapeText(&buffer, []byte(s))
	return buffer.String()
}
