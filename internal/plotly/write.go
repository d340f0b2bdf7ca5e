package plotly

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

const DefaultCDN = "https://cdn.plot.ly/plotly-2.35.2.min.js"

func WriteJSON(w io.Writer, fig *Figure) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(fig); err != nil {
		return fmt.Errorf("encode figure json: %w", err)
	}
	return nil
}

// MarshalMsgpack encodes fig with the same field names as its JSON form.
func MarshalMsgpack(fig *Figure) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteMsgpack(&buf, fig); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func WriteMsgpack(w io.Writer, fig *Figure) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(fig); err != nil {
		return fmt.Errorf("encode figure msgpack: %w", err)
	}
	return nil
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.CDN}}"></script>
<style>html, body { margin: 0; height: 100%; } #chart { width: 100%; height: 100%; }</style>
</head>
<body>
<div id="chart"></div>
<script>
const fig = {{.Figure}};
Plotly.newPlot(document.getElementById('chart'), fig.data, fig.layout, {responsive: true})
  .then(gd => Plotly.addFrames(gd, fig.frames));
</script>
</body>
</html>
`))

// WriteHTML writes a standalone page that loads plotly.js from cdn and
// plays fig.
func WriteHTML(w io.Writer, fig *Figure, title, cdn string) error {
	if cdn == "" {
		cdn = DefaultCDN
	}
	raw, err := json.Marshal(fig)
	if err != nil {
		return fmt.Errorf("encode figure json: %w", err)
	}
	return page.Execute(w, struct {
		Title  string
		CDN    string
		Figure template.JS
	}{title, cdn, template.JS(raw)})
}
