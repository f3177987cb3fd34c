package render

// templateText holds every named template in the set. Content fields are
// inserted verbatim because they already carry well-formed XHTML; scalar
// fields pass through the xml escape func.
const templateText = `
{{- define "actor" -}}
{{if .ID}}<a href="{{xml .ID}}"{{if .Type}} data-type="{{xml .Type}}"{{end}}>{{xml .Name}}</a>{{else}}{{xml .Name}}{{end}}
{{- end -}}

{{- define "actors" -}}
{{range .Actors}}
<span data-type="{{xml $.Type}}">{{template "actor" .}}</span>
{{- end}}
{{- end -}}

{{- define "metadata" -}}
<div data-type="metadata" style="display: none;">
<h1 data-type="document-title" itemprop="name">{{xml .Title}}</h1>
{{- if .IsPointer}}
<span data-type="document" data-value="pointer" />
{{- end}}
{{- if .ArchiveValue}}
<span data-type="cnx-archive-uri" data-value="{{xml .ArchiveValue}}" />
{{- end}}
{{- if .Translucent}}
<span data-type="binding" data-value="translucent" />
{{- end}}
{{- if .Created}}
<meta itemprop="dateCreated" content="{{xml .Created}}"/>
{{- end}}
{{- if .Revised}}
<meta itemprop="dateModified" content="{{xml .Revised}}"/>
{{- end}}
{{- if .Language}}
<meta data-type="language" itemprop="inLanguage" content="{{xml .Language}}"/>
{{- end}}
{{- if .Summary}}
<div class="description" data-type="description" itemprop="description">{{.Summary}}</div>
{{- end}}
{{- template "actors" (group "author" .Authors)}}
{{- template "actors" (group "editor" .Editors)}}
{{- template "actors" (group "illustrator" .Illustrators)}}
{{- template "actors" (group "translator" .Translators)}}
{{- template "actors" (group "publisher" .Publishers)}}
{{- template "actors" (group "copyright-holder" .CopyrightHolders)}}
{{- range .Subjects}}
<span data-type="subject">{{xml .}}</span>
{{- end}}
{{- range .Keywords}}
<span data-type="keyword">{{xml .}}</span>
{{- end}}
{{- if .LicenseURL}}
<a data-type="license" href="{{xml .LicenseURL}}" itemprop="license">{{xml .LicenseText}}</a>
{{- end}}
{{- if .DerivedFromURI}}
<div class="derivation">Derived from: <a data-type="derived-from" href="{{xml .DerivedFromURI}}">{{xml .DerivedFromTitle}}</a></div>
{{- end}}
{{- if .PrintStyle}}
<span data-type="print-style">{{xml .PrintStyle}}</span>
{{- end}}
</div>
{{- end -}}

{{- define "navtree" -}}
<ol>{{range .}}<li>{{if .Contents}}<span>{{xml .Title}}</span>{{template "navtree" .Contents}}{{else}}<a href="{{xml .Href}}">{{xml .Title}}</a>{{end}}</li>{{end}}</ol>
{{- end -}}

{{- define "resources" -}}
{{if .}}
<div data-type="resources" style="display: none">
<ul>
{{- range .}}
<li>{{xml .}}</li>
{{- end}}
</ul>
</div>
{{- end}}
{{- end -}}

{{- define "page" -}}
<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head>
  <title>{{xml .Title}}</title>
</head>
<body itemscope="itemscope" itemtype="http://schema.org/Book">
{{template "metadata" .Meta}}
{{- if .IsBinder}}
<nav id="toc">{{template "navtree" .Nav}}</nav>
{{- else if .IsPointer}}
<div data-type="document-pointer">
  <p>Click <a href="{{xml .PointerURL}}">here</a> to read {{xml .Title}}.</p>
</div>
{{- else}}
{{.Content}}
{{- end}}
{{- template "resources" .Resources}}
</body>
</html>
{{- end -}}

{{- define "singlehtml" -}}
<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head>
  <title>{{xml .Title}}</title>
</head>
<body itemscope="itemscope" itemtype="http://schema.org/Book">
{{template "metadata" .Meta}}
<nav id="toc">{{template "navtree" .Nav}}</nav>
{{- range .Pieces}}
{{template "piece" .}}
{{- end}}
</body>
</html>
{{- end -}}

{{- define "piece" -}}
{{- if .IsBinder -}}
<div data-type="{{.Kind}}">
<h1 data-type="document-title">{{xml .Title}}</h1>
{{- range .Contents}}
{{template "piece" .}}
{{- end}}
</div>
{{- else -}}
<div data-type="{{.Kind}}" id="{{xml .ID}}">
{{template "metadata" .Meta}}
{{- if .IsPointer}}
<p>Click <a href="{{xml .PointerURL}}">here</a> to read {{xml .Title}}.</p>
{{- else}}
{{.Content}}
{{- end}}
</div>
{{- end -}}
{{- end -}}

{{- define "content" -}}
<html xmlns="http://www.w3.org/1999/xhtml">
  <body>{{.}}</body>
</html>
{{- end -}}

{{- define "summary" -}}
<div class="description" data-type="description" xmlns="http://www.w3.org/1999/xhtml">
  {{.}}
</div>
{{- end -}}
`
