package pagination

import (
	"html/template"
	"io"
	"strings"
)

var bulma = template.Must(template.New("bulma").Parse(`
{{- if .}}<nav class="pagination is-centered" role="navigation" aria-label="pagination">
{{- range .}}{{if eq .Kind "previous"}}
    {{if .Disabled}}<a class="pagination-previous" disabled>{{.Label}}</a>{{else}}<a class="pagination-previous" href="{{.URL}}" rel="prev">{{.Label}}</a>{{end}}
{{- else if eq .Kind "next"}}
    {{if .Disabled}}<a class="pagination-next" disabled>{{.Label}}</a>{{else}}<a class="pagination-next" href="{{.URL}}" rel="next">{{.Label}}</a>{{end}}
{{- end}}{{end}}
    <ul class="pagination-list">
{{- range .}}{{if eq .Kind "ellipsis"}}
        <li><span class="pagination-ellipsis">{{.Label}}</span></li>
{{- else if eq .Kind "page"}}
        <li><a class="pagination-link" href="{{.URL}}" aria-label="Goto page {{.Page}}">{{.Label}}</a></li>
{{- else if eq .Kind "current"}}
        <li><a class="pagination-link is-current" aria-label="Page {{.Page}}" aria-current="page">{{.Label}}</a></li>
{{- end}}{{end}}
    </ul>
</nav>
{{end}}`))

// Render writes Bulma pagination markup for p. Nothing is written when p has
// a single page.
func Render(w io.Writer, p Paginator, elements []Element) error {
	return bulma.Execute(w, Links(p, elements))
}

// HTML is Render into a template.HTML value for embedding in a page
// template.
func HTML(p Paginator, elements []Element) (template.HTML, error) {
	var b strings.Builder
	if err := Render(&b, p, elements); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}
