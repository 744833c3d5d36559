package mcp

import "net/http"

const landingHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>repo-rag</title>
<style>
  body { margin: 0; font-family: system-ui, sans-serif; background: #f6f7f9; color: #1f2933; }
  main { max-width: 640px; margin: 4rem auto; padding: 2rem; background: #fff; border: 1px solid #d9dee5; border-radius: 8px; }
  h1 { margin: 0 0 0.25rem; font-size: 1.5rem; }
  h2 { margin: 1.5rem 0 0.5rem; font-size: 0.8rem; text-transform: uppercase; color: #616e7c; }
  pre { background: #f0f2f5; padding: 0.75rem; border-radius: 6px; overflow-x: auto; }
  ul { padding-left: 1.2rem; }
  code { font-family: ui-monospace, monospace; }
</style>
</head>
<body>
<main>
  <h1>repo-rag</h1>
  <p>Question answering over ingested git repositories and documents.</p>

  <h2>MCP client</h2>
  <pre><code>claude mcp add repo-rag --transport streamable-http http://localhost:8000/mcp</code></pre>

  <h2>Endpoints</h2>
  <ul>
    <li><a href="/mcp"><code>/mcp</code></a> MCP Streamable HTTP</li>
    <li><a href="/health"><code>/health</code></a> vector store health</li>
    <li><a href="/metrics"><code>/metrics</code></a> Prometheus metrics</li>
    <li><code>POST /repositories</code> ingest a repository</li>
    <li><code>POST /query</code> ask a question</li>
    <li><code>POST /files</code> upload a document</li>
    <li><code>DELETE /collection</code> drop the index</li>
  </ul>
</main>
</body>
</html>`

// NewLandingHandler returns an HTTP handler that serves the landing page at /.
func NewLandingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(landingHTML))
	}
}
