package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/archlens/pkg/errors"
	"github.com/matzehuels/archlens/pkg/metrics"
	"github.com/matzehuels/archlens/pkg/pipeline"
	"github.com/matzehuels/archlens/pkg/render"
	"github.com/matzehuels/archlens/pkg/store"
)

type viewInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	views, err := s.cfg.CompileViews()
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]viewInfo, len(views))
	for i, v := range views {
		out[i] = viewInfo{Name: v.Name, Title: v.Title}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := s.cfg.View(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	opts, err := graphOptions(r, v.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	scan, err := s.current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	forest := s.runner.View(r.Context(), scan, v, s.cfg.System)
	g := s.runner.Graph(scan, forest, opts)
	artifacts, err := s.runner.Render(r.Context(), g, pipeline.RenderOptions{
		Title:       v.Title,
		Detailed:    queryBool(r, "detailed"),
		WeightScale: v.WeightScale,
		MinWeight:   v.MinWeight,
		Formats:     []render.Format{format},
		CacheKey:    v.Name,
	})
	if err != nil {
		s.logger.Error("render failed", "view", v.Name, "format", format, "error", err)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func graphOptions(r *http.Request, name string) (pipeline.GraphOptions, error) {
	opts := pipeline.GraphOptions{
		View:   name,
		Within: r.URL.Query().Get("within"),
		Reduce: queryBool(r, "reduce"),
	}
	if opts.Within != "" {
		if err := errors.ValidateModuleName(opts.Within); err != nil {
			return opts, err
		}
	}
	if c := r.URL.Query().Get("collapse"); c != "" {
		depth, err := strconv.Atoi(c)
		if err != nil || depth < 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "collapse must be a non-negative integer")
		}
		opts.Collapse = depth
	}
	return opts, nil
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}

type moduleInfo struct {
	Name        string   `json:"name"`
	Path        string   `json:"path"`
	Lines       int      `json:"lines"`
	RolledLines int      `json:"rolled_lines"`
	Churn       *int     `json:"churn,omitempty"`
	Commits     *int     `json:"commits,omitempty"`
	Imports     []string `json:"imports,omitempty"`
}

type modulesResponse struct {
	Root     string             `json:"root"`
	Modules  []moduleInfo       `json:"modules"`
	External []string           `json:"external"`
	Skipped  []pipeline.Skipped `json:"skipped,omitempty"`
}

// handleModules lists the scanned modules in tree order, or the top n by
// rolled-up lines with ?top=n.
func (s *Server) handleModules(w http.ResponseWriter, r *http.Request) {
	scan, err := s.current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	rolled := scan.RolledLines()

	var names []string
	if t := r.URL.Query().Get("top"); t != "" {
		n, err := strconv.Atoi(t)
		if err != nil || n < 1 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "top must be a positive integer"))
			return
		}
		for _, name := range metrics.Top(rolled, -1) {
			if scan.Forest.System.Get(name) != nil {
				names = append(names, name)
			}
			if len(names) == n {
				break
			}
		}
	} else {
		names = scan.Forest.System.Names()
	}

	resp := modulesResponse{Root: scan.Root, External: scan.Forest.External.Names(), Skipped: scan.Skipped}
	for _, name := range names {
		d := scan.Forest.System.Get(name)
		info := moduleInfo{
			Name:        name,
			Path:        d.Path,
			Lines:       d.Lines,
			RolledLines: rolled[name],
			Imports:     d.Resolved,
		}
		if scan.Churn != nil {
			st := scan.Churn[name]
			info.Churn, info.Commits = &st.Churn, &st.Commits
		}
		resp.Modules = append(resp.Modules, info)
	}
	writeJSON(w, http.StatusOK, resp)
}

type scanSummary struct {
	Root     string  `json:"root"`
	Files    int     `json:"files"`
	Modules  int     `json:"modules"`
	External int     `json:"external"`
	Skipped  int     `json:"skipped"`
	Seconds  float64 `json:"seconds"`
}

func (s *Server) handleRescan(w http.ResponseWriter, r *http.Request) {
	scan, err := s.rescan(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scanSummary{
		Root:     scan.Root,
		Files:    scan.Files,
		Modules:  scan.Forest.System.Len(),
		External: scan.Forest.External.Len(),
		Skipped:  len(scan.Skipped),
		Seconds:  scan.Duration.Seconds(),
	})
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	root := r.URL.Query().Get("root")
	if root == "" && r.URL.Query().Get("all") == "" {
		scan, err := s.current(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		root = scan.Root
	}
	snaps, err := s.store.Snapshots(r.Context(), root)
	if err != nil {
		writeError(w, err)
		return
	}
	if snaps == nil {
		snaps = []store.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

// handleSaveSnapshot stores the current scan together with the graph of
// ?view=name (the first configured view by default).
func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("view")
	if name == "" && len(s.cfg.Views) > 0 {
		name = s.cfg.Views[0].Name
	}
	v, err := s.cfg.View(name)
	if err != nil {
		writeError(w, err)
		return
	}
	scan, err := s.current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	g := s.runner.Graph(scan, s.runner.View(r.Context(), scan, v, s.cfg.System), pipeline.GraphOptions{View: v.Name})
	snap, err := s.store.Save(r.Context(), store.Input{Root: scan.Root, View: v.Name, Forest: scan.Forest, Graph: g})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Diff(r.Context(), chi.URLParam(r, "from"), chi.URLParam(r, "to"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
