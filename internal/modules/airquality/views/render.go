package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
)

var dashboardTmpl *template.Template

// loadTemplatesFromFS loads dashboard templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	dashboardTmpl = tmpl
	return nil
}

// LoadTemplates loads embedded dashboard templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

var funcs = template.FuncMap{
	"selected": func(a, b string) bool { return a == b },
}

// Option is one entry of a select control.
type Option struct {
	Value string
	Label string
}

// ChartURLs are the image sources for the three charts, query included.
type ChartURLs struct {
	AQI         template.URL
	Pollutant   template.URL
	Correlation template.URL
}

// TableData is the view model for the raw data table.
type TableData struct {
	Header []string
	Rows   [][]string
	// Query is the encoded selection, reused by the export links.
	Query template.URL
}

type DashboardData struct {
	Cities     []Option
	City       string
	Start      string
	End        string
	MinDate    string
	MaxDate    string
	Pollutants []Option
	Pollutant  string
	Factors    []Option
	Factor     string

	AQITitle         string
	PollutantTitle   string
	CorrelationTitle string
	Charts           ChartURLs
	// Correlation is Pearson's r for the current selection, empty when undefined.
	Correlation string

	Table TableData
}

func RenderDashboard(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}

// RenderTablePartial executes only the table partial into w.
// Use for HTMX fragment refresh.
func RenderTablePartial(w io.Writer, data *TableData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "partials/table.html", data)
}

// RenderResultsPartial executes the charts and table block of the dashboard.
// The form's change trigger swaps it in as one unit.
func RenderResultsPartial(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "partials/results.html", data)
}
