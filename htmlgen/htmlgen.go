package htmlgen

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"reflect"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/relmap/relmap"
	"github.com/relmap/relmap/schema"
)

// Option one entry of a foreign key select
type Option struct {
	Key         string
	Description string
}

// Lookup lists the rows referenced by a foreign key
type Lookup func(ctx context.Context, ref schema.ForeignKey) ([]Option, error)

// Generator renders forms and grids from model metadata
type Generator struct {
	*relmap.Generator
	// NewPage page linked by the grid's new button
	NewPage string
	// ImagePath prefix of the grid's edit.png and erase.png
	ImagePath string
	// Lookup renders foreign key fields as selects when set
	Lookup Lookup
}

// New returns a markup generator sharing g's cache, formats and messages
func New(g *relmap.Generator) *Generator {
	return &Generator{Generator: g, ImagePath: "img/"}
}

const (
	formLine  = `<div class="formLine">%s%s</div>`
	labelHTML = `<label class='formLabel' for='%s'>%s</label>`
	inputHTML = `<input type='text' id='%s' name='%s' class='formField' %s value="%s"/>`
)

// Label label of field, its text is the upper-cased field name
func (h *Generator) Label(field *schema.Field) string {
	return fmt.Sprintf(labelHTML, field.Name, cases.Upper(language.Und).String(field.Name))
}

// Input text input of field holding its display value, read-only for identity and
// transient fields. Foreign keys render as a select when a Lookup is configured.
func (h *Generator) Input(field *schema.Field, value interface{}) (string, error) {
	return h.input(field, value, field.IsIdentity || field.IsTransient)
}

func (h *Generator) input(field *schema.Field, value interface{}, readonly bool) (string, error) {
	v, err := field.ValueOf(reflect.ValueOf(value))
	if err != nil {
		return "", err
	}

	display := h.display(field, v)
	name := inputName(field)

	if field.IsForeignKey && h.Lookup != nil && !readonly {
		sel, err := h.selectOf(field, name, display)
		if err == nil {
			return sel, nil
		}
		h.Logger.Warn(h.Context, "failed to look up %v for %v: %v", field.Reference.Table, name, err)
	}

	readonlyAttr := ""
	if readonly {
		readonlyAttr = "readonly"
	}
	return fmt.Sprintf(inputHTML, name, name, readonlyAttr, html.EscapeString(display)), nil
}

func (h *Generator) selectOf(field *schema.Field, name, selected string) (string, error) {
	options, err := h.Lookup(h.Context, field.Reference)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<select id='%s' name='%s' class='formField'>", name, name)
	for _, option := range options {
		attr := ""
		if option.Key == selected {
			attr = " selected"
		}
		fmt.Fprintf(&b, "<option value='%s'%s>%s</option>", html.EscapeString(option.Key), attr, html.EscapeString(option.Description))
	}
	b.WriteString("</select>")
	return b.String(), nil
}

// display renders v, values failing to coerce render empty
func (h *Generator) display(field *schema.Field, v interface{}) string {
	text, err := h.Coercer().ToDisplayValue(field, v)
	if err != nil {
		h.Logger.Warn(h.Context, "%v rendered empty: %v", field.DBName, err)
	}
	return text
}

func inputName(field *schema.Field) string {
	return strings.ToLower(field.Schema.Name) + "." + strings.ToLower(field.Name)
}

// Form form posting value to page. Action "new" posts an insert, anything else an update;
// fields not accepted by that operation are read-only.
func (h *Generator) Form(value interface{}, page, action string) (string, error) {
	s, err := h.Parse(value)
	if err != nil {
		return "", err
	}

	insert := action == "new"
	if insert {
		action = "insert"
	} else {
		action = "update"
	}

	page = html.EscapeString(page)

	var b strings.Builder
	fmt.Fprintf(&b, "<form name='form1' action='%s' method='post'>", page)
	for _, field := range s.Fields {
		if !field.Access.Visible || !field.Access.ShowInForm {
			continue
		}

		readonly := field.IsIdentity || field.IsTransient ||
			(insert && !field.Access.InInsert) || (!insert && !field.Access.InUpdate)
		input, err := h.input(field, value, readonly)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, formLine, h.Label(field), input)
	}

	fmt.Fprintf(&b, `<div class="formLine"><input type="submit" value="%s" style="height: 24px" class="linkButton" /> `+
		`<a class="linkButton" href="%s">%s</a></div>`+
		`<input type="hidden" name="action" value="%s" /> <input type="hidden" name="type" value="1" /></form>`,
		h.Messages.Get("form.save", "Salvar"), page, h.Messages.Get("form.back", "Voltar"), action)
	return b.String(), nil
}

// FieldParameters column=value pairs of the non-transient fields of value joined by &,
// values query-escaped when encode is set
func (h *Generator) FieldParameters(value interface{}, encode bool) (string, error) {
	s, err := h.Parse(value)
	if err != nil {
		return "", err
	}

	rv := reflect.ValueOf(value)
	params := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		if field.IsTransient {
			continue
		}

		v, err := field.ValueOf(rv)
		if err != nil {
			return "", err
		}

		text := h.display(field, v)
		if encode {
			text = url.QueryEscape(text)
		}
		params = append(params, field.DBName+"="+text)
	}
	return strings.Join(params, "&"), nil
}
