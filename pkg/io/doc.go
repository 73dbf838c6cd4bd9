// Package io provides JSON import and export for module graphs.
//
// # JSON Format
//
//	{
//	  "meta": {"view": "top-level"},
//	  "nodes": [
//	    {"id": "app", "meta": {"path": "app/__init__.py", "lines": 1200}},
//	    {"id": "app.api", "meta": {"path": "app/api.py", "lines": 300}},
//	    {"id": "flask", "kind": "external"}
//	  ],
//	  "edges": [
//	    {"from": "app", "to": "flask"},
//	    {"from": "app.api", "to": "app"}
//	  ]
//	}
//
// Node fields:
//   - id: full module name (required, unique)
//   - kind: "external" for third-party packages; omitted for system modules
//   - meta: free-form object; "path", "lines" and "churn" are filled in by
//     the pipeline and read by the renderers
//
// Edges point from the importing module to the imported one and may form
// cycles.
//
// # Import and Export
//
// [ReadJSON] and [WriteJSON] work on readers and writers; [ImportJSON] and
// [ExportJSON] are file-based wrappers:
//
//	if err := io.ExportJSON(g, "top-level.json"); err != nil {
//	    log.Fatal(err)
//	}
//
// Node order, kinds, edge order and all metadata survive a round trip.
package io
