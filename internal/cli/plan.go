package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpkg/pkg/dag"
	"github.com/matzehuels/stackpkg/pkg/installed"
	"github.com/matzehuels/stackpkg/pkg/render"
	"github.com/matzehuels/stackpkg/pkg/resolve"
	"github.com/matzehuels/stackpkg/pkg/spec"
)

type planFlags struct {
	search   searchFlags
	version  string
	graph    string
	detailed bool
}

// planCommand creates the plan command.
func (c *CLI) planCommand() *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "plan NAME[:REQUIREMENT]...",
		Short: "Resolve packages and print the install plan",
		Long: `Plan resolves the requested packages exactly like install but changes
nothing. The plan lists packages in install order, dependencies first.

Use --graph to export the dependency graph:

  stackpkg plan rails --graph rails.svg
  stackpkg plan rails --graph rails.dot`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlan(cmd.Context(), args, flags)
		},
	}

	flags.search.bind(cmd)
	cmd.Flags().StringVar(&flags.version, "version", "", "version requirement for a single package")
	cmd.Flags().StringVarP(&flags.graph, "graph", "g", "", "write the dependency graph (.dot, .gv or .svg)")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "show requirements and dependents, and package metadata in graph labels")

	return cmd
}

func (c *CLI) runPlan(ctx context.Context, args []string, flags planFlags) error {
	reqs, err := parseRequests(args, flags.version)
	if err != nil {
		return err
	}
	s, err := c.newSession(ctx, &flags.search)
	if err != nil {
		return err
	}
	defer s.close()

	res, err := c.resolveWithSpinner(ctx, s.resolver, reqs)
	if err != nil {
		return err
	}
	printAdvisory(res)
	printPlan(res, s.snapshot, flags.detailed)

	if flags.graph == "" {
		return nil
	}
	g := planGraph(res, s.snapshot)
	if err := render.WriteFile(ctx, flags.graph, g, render.Options{Detailed: flags.detailed, EdgeLabels: true}); err != nil {
		return err
	}
	out.newline()
	out.success("Graph written")
	out.file(flags.graph)
	return nil
}

// planGraph returns the dependency graph of res with requested and
// installed packages marked.
func planGraph(res *resolve.Result, snapshot installed.Snapshot) *dag.DAG {
	g := res.Graph.DAG()
	g.Meta()[render.MetaTitle] = joinArgs(res)
	for _, c := range res.Requested {
		if n, ok := g.Node(c.Spec.FullName()); ok {
			n.Meta[render.MetaRequested] = true
		}
	}
	for _, n := range g.Nodes() {
		if snapshot.Contains(n.ID) && !res.IsRequested(n.ID) {
			n.Meta[render.MetaInstalled] = true
		}
	}
	return g
}

func printPlan(res *resolve.Result, snapshot installed.Snapshot, detailed bool) {
	if len(res.Plan) == 0 {
		out.info("Nothing to install")
		return
	}
	cands := res.Candidates()
	width := 0
	for _, c := range cands {
		width = max(width, len(c.Spec.FullName()))
	}
	g := res.Graph.DAG()
	last := len(cands) - 1
	for i, c := range cands {
		name := c.Spec.FullName()
		if i != last && snapshot.Contains(name) {
			out.keyValue(name, StyleDim.Render("installed"), width)
			continue
		}
		out.keyValue(name, c.Source.String(), width)
		if detailed {
			printPlanDetail(res, g, c.Spec)
		}
	}
	out.stats(len(cands), g.EdgeCount())
	out.nextStep("Install with", fmt.Sprintf("%s install %s", appName, joinArgs(res)))
}

// printPlanDetail prints the accumulated requirement of s and the planned
// packages depending on it.
func printPlanDetail(res *resolve.Result, g *dag.DAG, s *spec.Spec) {
	if dep, ok := res.Graph.Requirement(s.Name); ok {
		out.detail("requirement: %s", dep.Requirement)
	}
	if parents := g.Parents(s.FullName()); len(parents) > 0 {
		out.detail("required by: %s", strings.Join(parents, ", "))
	}
}

func joinArgs(res *resolve.Result) string {
	names := make([]string, len(res.Requested))
	for i, c := range res.Requested {
		names[i] = c.Spec.Name
	}
	return strings.Join(names, " ")
}
