package app

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/credentialengine/obpublisher"
	"github.com/credentialengine/obpublisher/internal/cmd/output"
	"github.com/credentialengine/obpublisher/internal/matcher"
	"github.com/credentialengine/obpublisher/pkg/errors"
	"github.com/credentialengine/obpublisher/pkg/publish"
)

// statusView is one row of status output.
type statusView struct {
	Name string `json:"name"`
	publish.Status
	FinderURL string `json:"finderUrl,omitempty"`
}

func (a *App) newPreviewCommand() *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "preview <badges>",
		Short: "Show the credentials that would be published",
		Long: `Preview converts badge classes into the save requests that publish
would send. With --remote the drafts are first reconciled with the
organization's credentials in the registry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadDrafts(args[0])
			if err != nil {
				return err
			}
			if remote {
				if err := p.Initialize(cmd.Context()); err != nil {
					return err
				}
			}

			bodies := p.Preview()
			table := output.Data{Headers: []string{"name", "credential_id", "type", "ctid", "alignments"}}
			for _, d := range p.Drafts() {
				active := 0
				for _, c := range d.Alignments.All() {
					if !c.Skip {
						active++
					}
				}
				ctid := d.Credential.CTID
				if st, ok := p.Status(d.ID()); ok && st.CTID != "" {
					ctid = st.CTID
				}
				table.Rows = append(table.Rows, []string{
					d.Credential.Name,
					d.ID(),
					d.Credential.CredentialType,
					ctid,
					strconv.Itoa(active),
				})
			}
			return a.render(output.Tabular{Value: bodies, Table: table})
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "reconcile with the registry before previewing")
	return cmd
}

func (a *App) newStatusCommand() *cobra.Command {
	var match []string
	cmd := &cobra.Command{
		Use:   "status <badges>",
		Short: "Show which credentials are new, changed or failing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := matcher.NewSet(match...)
			if err != nil {
				return err
			}
			p, err := a.loadDrafts(args[0])
			if err != nil {
				return err
			}
			if err := p.Initialize(cmd.Context()); err != nil {
				return err
			}
			return a.render(statusOutput(p, set))
		},
	}
	cmd.Flags().StringSliceVar(&match, "match", nil, "only show credentials whose id or name matches a glob or regex (repeatable)")
	return cmd
}

func (a *App) newPublishCommand() *cobra.Command {
	var only, match []string
	cmd := &cobra.Command{
		Use:   "publish <badges>",
		Short: "Publish credentials to the registry",
		Long: `Publish reconciles the drafts with the registry and saves every
credential that is new or changed, one at a time. Use --id or --match to
publish selected credentials only. Credentials that fail are reported with the
registry's messages and make the command exit non-zero.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := matcher.NewSet(match...)
			if err != nil {
				return err
			}
			p, err := a.loadDrafts(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := p.Initialize(ctx); err != nil {
				return err
			}

			if len(only) == 0 && len(match) == 0 {
				if err := p.SaveAll(ctx); err != nil {
					return err
				}
			} else {
				for _, id := range selectIDs(p, only, set, len(match) > 0) {
					if err := p.Save(ctx, id); err != nil {
						return err
					}
				}
			}

			if err := a.render(statusOutput(p, nil)); err != nil {
				return err
			}

			failed := 0
			for _, st := range p.Statuses() {
				if st.State == publish.StateSaveError {
					failed++
				}
			}
			if failed > 0 {
				return errors.NewResourceError("publish", "credentials", strconv.Itoa(failed)+" failed", errors.ErrSaveRejected)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&only, "id", nil, "credential id to publish (repeatable)")
	cmd.Flags().StringSliceVar(&match, "match", nil, "publish credentials whose id or name matches a glob or regex (repeatable)")
	return cmd
}

func (a *App) newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the registry account and its organizations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.config.RequireRegistry(); err != nil {
				return err
			}
			p, err := a.Publisher()
			if err != nil {
				return err
			}
			user, err := p.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			user.Token = ""

			table := output.Data{Headers: []string{"organization", "ctid", "type", "selected"}}
			for _, o := range user.Organizations {
				selected := ""
				if o.CTID == a.config.Organization.CTID {
					selected = "*"
				}
				table.Rows = append(table.Rows, []string{o.Name, o.CTID, o.Type, selected})
			}
			return a.render(output.Tabular{Value: user, Table: table})
		},
	}
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "obpublisher %s (commit %s, built %s by %s)\n",
				a.version, a.commit, a.date, a.builtBy)
			return err
		},
	}
}

// loadDrafts builds a publisher and imports the badges at path.
func (a *App) loadDrafts(path string) (*obpublisher.Publisher, error) {
	if err := a.config.RequireOrganization(); err != nil {
		return nil, err
	}
	p, err := a.Publisher()
	if err != nil {
		return nil, err
	}
	if err := p.LoadBadges(path); err != nil {
		return nil, err
	}
	a.logger.Debug().Int("drafts", len(p.Drafts())).Str("path", path).Msg("Loaded badges")
	return p, nil
}

// selectIDs returns the explicit ids followed by the ids of drafts that
// match set, without duplicates.
func selectIDs(p *obpublisher.Publisher, ids []string, set matcher.Set, useSet bool) []string {
	out := slices.Clone(ids)
	if !useSet {
		return out
	}
	for _, d := range p.Drafts() {
		if set.MatchAny(d.ID(), d.Credential.Name) && !slices.Contains(out, d.ID()) {
			out = append(out, d.ID())
		}
	}
	return out
}

// statusOutput lists statuses in draft order, limited to drafts matching
// set.
func statusOutput(p *obpublisher.Publisher, set matcher.Set) output.Tabular {
	statuses := p.Statuses()
	views := make([]statusView, 0, len(statuses))
	table := output.Data{Headers: []string{"name", "credential_id", "state", "ctid", "messages"}}

	for _, d := range p.Drafts() {
		st, ok := statuses[d.ID()]
		if !ok || !set.MatchAny(d.ID(), d.Credential.Name) {
			continue
		}
		st.RemoteData = nil
		views = append(views, statusView{
			Name:      d.Credential.Name,
			Status:    st,
			FinderURL: p.FinderURL(st.CTID),
		})
		table.Rows = append(table.Rows, []string{
			d.Credential.Name,
			st.CredentialID,
			st.State.String(),
			st.CTID,
			strings.Join(st.Messages, "; "),
		})
	}
	return output.Tabular{Value: views, Table: table}
}
