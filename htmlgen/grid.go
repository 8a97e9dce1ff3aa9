package htmlgen

import (
	"fmt"
	"html"
	"html/template"
	"reflect"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/relmap/relmap"
	"github.com/relmap/relmap/schema"
)

const (
	gridScript = "<script type='text/javascript'>" +
		"function __delete(code){\n\tif(! confirm(\"%s\")) return false;\n\t" +
		"location.assign('%s?type=0&' + code + '&action=remove');}\n\n" +
		"function __alter(code){\n\t" +
		"location.assign('%s?type=0&' + code + '&action=alter');}\n\n" +
		"</script>"
	gridButtons = `<div style="height: 35px"><a class="linkButton" href="%s?action=new">%s</a>` +
		`<a class="linkButton" onClick='var value = prompt("%s"); if(value) location.assign("%s?action=find&term=" + value); return false;' href="#">%s</a></div>`
	gridHeader     = `<div id="dataGrid"><div class='linha' id='gridHeader' style='background:#E8E8E8'><div class='col' style='width:50px'></div><div class='col' style='width:50px'></div>`
	gridHeaderCell = `<div class='col' style='width:%s' ><a href='%s?order=%s'>%s</a></div>`
	gridRow        = `<a href='#' class='linha linha%s linkLine'>`
	gridEdit       = `<div class='col'><img src='%sedit.png' onclick="return __alter('%s')"/></div>`
	gridDelete     = `<div class='col'><img src='%serase.png' onclick="return __delete('%s')" /></div>`
	gridCell       = `<div class='col' style='width:%s'>%s</div>`
)

func columnWidth(idx int) string {
	if idx == 0 {
		return "50px"
	}
	return "100px"
}

// Grid lists items, a slice of models of one schema, with edit and delete links carrying
// their FieldParameters. An empty slice renders "".
func (h *Generator) Grid(items interface{}, page string) (string, error) {
	rv := reflect.Indirect(reflect.ValueOf(items))
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return "", fmt.Errorf("%w: grid items must be a slice, got %T", relmap.ErrUnsupportedType, items)
	}
	if rv.Len() == 0 {
		return "", nil
	}

	s, err := h.Parse(rv.Index(0).Interface())
	if err != nil {
		return "", err
	}

	var fields []*schema.Field
	for _, field := range s.Fields {
		if field.Access.Visible && field.Access.ShowInGrid {
			fields = append(fields, field)
		}
	}

	newPage := h.NewPage
	if newPage == "" {
		newPage = page
	}

	// page lands in script strings and in attributes
	scriptPage, hrefPage := template.JSEscapeString(page), html.EscapeString(page)

	var b strings.Builder
	fmt.Fprintf(&b, gridScript, h.Messages.Get("grid.delete.confirm", "Deseja realmente excluir este registro?"), scriptPage, scriptPage)
	fmt.Fprintf(&b, gridButtons, html.EscapeString(newPage), h.Messages.Get("grid.new", "Novo"),
		h.Messages.Get("grid.search.prompt", "Digite o valor a ser localizado:"), html.EscapeString(scriptPage), h.Messages.Get("grid.search", "Pesquisar"))

	upper := cases.Upper(language.Und)
	b.WriteString(gridHeader)
	for idx, field := range fields {
		fmt.Fprintf(&b, gridHeaderCell, columnWidth(idx), hrefPage, field.DBName, upper.String(field.Name))
	}
	b.WriteString("</div>")

	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i).Interface()
		parsed, err := h.Parse(item)
		if err != nil {
			return "", err
		}
		if parsed != s {
			return "", fmt.Errorf("%w: grid items mix %v and %v", relmap.ErrUnsupportedType, s, parsed)
		}

		params, err := h.FieldParameters(item, true)
		if err != nil {
			return "", err
		}

		parity := "Par"
		if i%2 == 1 {
			parity = "Impar"
		}
		fmt.Fprintf(&b, gridRow, parity)
		fmt.Fprintf(&b, gridEdit, h.ImagePath, params)
		fmt.Fprintf(&b, gridDelete, h.ImagePath, params)

		itemValue := reflect.ValueOf(item)
		for idx, field := range fields {
			v, err := field.ValueOf(itemValue)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, gridCell, columnWidth(idx), html.EscapeString(h.display(field, v)))
		}
		b.WriteString("</a>")
	}

	b.WriteString("</div>")
	return b.String(), nil
}
