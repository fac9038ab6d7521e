package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/deskcluster/internal/ticketsrc"
	"github.com/cognicore/deskcluster/pkg/deskcluster"
	"github.com/cognicore/deskcluster/pkg/deskcluster/quality"
	"github.com/cognicore/deskcluster/pkg/deskcluster/ticket"
)

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fitted wraps a command body that needs a fitted engine.
func (a *app) fitted(withStore bool, run func(cmd *cobra.Command, args []string, eng *deskcluster.Engine) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		eng, err := a.engine(cmd.Context(), withStore)
		if err != nil {
			return err
		}
		defer eng.Close()
		return run(cmd, args, eng)
	}
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Load tickets from --input into the sqlite store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.input == "" {
				return fmt.Errorf("import requires --input")
			}
			ctx := cmd.Context()
			loaded, err := ticketsrc.Load(a.input, a.logger)
			if err != nil {
				return err
			}
			tickets := loaded[:0]
			for _, t := range loaded {
				if err := t.Validate(); err != nil {
					a.logger.Warn().Err(err).Str("ticket", t.ID).Msg("skipping ticket")
					continue
				}
				tickets = append(tickets, t)
			}
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.SaveTickets(ctx, tickets); err != nil {
				return fmt.Errorf("save tickets: %w", err)
			}
			total, err := st.CountTickets(ctx)
			if err != nil {
				return fmt.Errorf("count tickets: %w", err)
			}
			a.logger.Info().Int("imported", len(tickets)).Int("total", total).Str("db", a.cfg.DBPath).Msg("tickets imported")
			return a.writeJSON(map[string]int{"imported": len(tickets), "total": total})
		},
	}
}

func (a *app) clustersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clusters",
		Short: "Show every cluster, largest first",
		RunE: a.fitted(false, func(cmd *cobra.Command, args []string, eng *deskcluster.Engine) error {
			info, err := eng.ClusterInfo()
			if err != nil {
				return err
			}
			return a.writeJSON(info)
		}),
	}
}

func (a *app) clusterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cluster <id>",
		Short: "Show one cluster with all its keywords",
		Args:  cobra.ExactArgs(1),
		RunE: a.fitted(false, func(cmd *cobra.Command, args []string, eng *deskcluster.Engine) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid cluster id %q", args[0])
			}
			d, err := eng.Cluster(id)
			if err != nil {
				return err
			}
			return a.writeJSON(d)
		}),
	}
}

func (a *app) vocabularyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vocabulary",
		Short: "Show vocabulary size and its most and least frequent terms",
		RunE: a.fitted(false, func(cmd *cobra.Command, args []string, eng *deskcluster.Engine) error {
			info, err := eng.VocabularyInfo()
			if err != nil {
				return err
			}
			return a.writeJSON(info)
		}),
	}
}

func (a *app) qualityCmd() *cobra.Command {
	var text bool
	cmd := &cobra.Command{
		Use:   "quality",
		Short: "Compute clustering quality metrics",
		RunE: a.fitted(false, func(cmd *cobra.Command, args []string, eng *deskcluster.Engine) error {
			q, err := eng.Quality()
			if err != nil {
				return err
			}
			if text {
				return quality.WriteReport(a.out, q)
			}
			return a.writeJSON(struct {
				quality.Quality
				Assessment quality.Assessment `json:"assessment"`
			}{q, q.Assess()})
		}),
	}
	cmd.Flags().BoolVar(&text, "text", false, "print a readable report instead of JSON")
	return cmd
}

func (a *app) stabilityCmd() *cobra.Command {
	var against string
	var histogram bool
	cmd := &cobra.Command{
		Use:   "stability",
		Short: "Refit on a stratified split and score held-out tickets",
		RunE: a.fitted(false, func(cmd *cobra.Command, args []string, eng *deskcluster.Engine) error {
			var tickets []ticket.Ticket
			if against != "" {
				var err error
				if tickets, err = ticketsrc.Load(against, a.logger); err != nil {
					return err
				}
			}
			res, err := eng.Stability(cmd.Context(), tickets)
			if err != nil {
				return err
			}
			if histogram {
				return a.writeJSON(res.Histogram())
			}
			return a.writeJSON(res)
		}),
	}
	cmd.Flags().StringVar(&against, "against", "", "ticket file to evaluate; must have as many tickets as the training set")
	cmd.Flags().BoolVar(&histogram, "histogram", false, "print the cluster transition histogram")
	return cmd
}

func (a *app) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text>",
		Short: "Assign a new ticket to a cluster",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Classifications are logged only when the store is the ticket source.
			return a.fitted(a.input == "", func(cmd *cobra.Command, args []string, eng *deskcluster.Engine) error {
				resp, err := eng.Classify(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				return a.writeJSON(resp)
			})(cmd, args)
		},
	}
}

func (a *app) similarityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "similarity",
		Short: "Show the pairwise cluster similarity matrix",
		RunE: a.fitted(false, func(cmd *cobra.Command, args []string, eng *deskcluster.Engine) error {
			sim, err := eng.Similarity()
			if err != nil {
				return err
			}
			return a.writeJSON(sim)
		}),
	}
}

func (a *app) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Compute clusters, quality and stability in one run",
		RunE: a.fitted(false, func(cmd *cobra.Command, args []string, eng *deskcluster.Engine) error {
			rep, err := eng.Report(cmd.Context(), nil)
			if err != nil {
				return err
			}
			return a.writeJSON(rep)
		}),
	}
}
