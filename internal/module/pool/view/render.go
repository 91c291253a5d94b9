package view

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Pools(w io.Writer, page PoolsPage) error {
	return r.tmpl.ExecuteTemplate(w, "pools.html", page)
}

func (r *Renderer) Swap(w io.Writer, page SwapPage) error {
	return r.tmpl.ExecuteTemplate(w, "swap.html", page)
}
