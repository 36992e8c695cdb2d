package chat

import (
	"strings"
	"text/template"

	domdoc "github.com/calyptra/mona/internal/domain/document"
)

// The two prompt shapes mirror the routing decision: retrieval queries get
// the context block, conversational queries get a plain assistant prompt.

var ragTemplate = template.Must(template.New("rag").Parse(`You are a helpful assistant answering questions about internal documents.
Use only the context below to answer. If the context does not contain the
answer, say that you could not find it in the documents. Cite the source
of every statement you take from the context.

Context:
{{- if .Chunks}}
{{- range .Chunks}}
[source: {{.Source}}, part {{.Part}}]
{{.Content}}
{{end}}
{{- else}}
(no matching documents were found)
{{- end}}

Question: {{.Query}}

Answer:`))

var directTemplate = template.Must(template.New("direct").Parse(`You are a helpful assistant for an internal document service. Answer the
user conversationally and briefly. Do not invent document contents; if the
user asks about documents, suggest rephrasing the question so the relevant
document can be looked up.

User: {{.Query}}

Answer:`))

type promptChunk struct {
	Source  string
	Part    int
	Content string
}

type promptData struct {
	Query  string
	Chunks []promptChunk
}

// buildRAGPrompt renders the retrieval prompt with the found chunks.
func buildRAGPrompt(query string, hits []domdoc.Scored) string {
	data := promptData{Query: query}
	for _, h := range hits {
		data.Chunks = append(data.Chunks, promptChunk{
			Source:  h.Document.SourceID(),
			Part:    h.Document.SplitID(),
			Content: h.Document.Content(),
		})
	}
	return render(ragTemplate, data)
}

// buildDirectPrompt renders the conversational prompt.
func buildDirectPrompt(query string) string {
	return render(directTemplate, promptData{Query: query})
}

func render(t *template.Template, data promptData) string {
	var sb strings.Builder
	// The templates only touch fields that exist; Execute cannot fail here.
	_ = t.Execute(&sb, data)
	return sb.String()
}
